package files

import (
	"context"
	"fmt"
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByID(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	rec := env.mustCreate(t, domain.File{UserID: 1, Name: "doc", Type: domain.KindFolder})

	t.Run("owner sees the record", func(t *testing.T) {
		view, err := env.svc.GetByID(ctx, 1, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, view.ID)
		assert.Equal(t, "doc", view.Name)
	})

	t.Run("foreign record reported as absent", func(t *testing.T) {
		_, err := env.svc.GetByID(ctx, 2, rec.ID)
		require.Error(t, err)
		assert.Equal(t, CodeFileNotFound, errCode(err))
		assert.Equal(t, errx.T_NotFound, errx.AsErrorX(err).Type())
		assert.Equal(t, "Not found", errx.AsErrorX(err).Error())
	})

	t.Run("unknown id reported as absent", func(t *testing.T) {
		_, err := env.svc.GetByID(ctx, 1, 9999)
		require.Error(t, err)
		assert.Equal(t, CodeFileNotFound, errCode(err))
	})
}

func TestListRootOnlyMatchesNullParent(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	folder := env.mustCreate(t, domain.File{UserID: 1, Name: "folder", Type: domain.KindFolder})
	folderID := folder.ID
	env.mustCreate(t, domain.File{UserID: 1, Name: "nested", Type: domain.KindFolder, ParentID: &folderID})
	env.mustCreate(t, domain.File{UserID: 1, Name: "top", Type: domain.KindFolder})

	views, err := env.svc.List(ctx, 1, domain.Root(), pagination.Request{})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "folder", views[0].Name)
	assert.Equal(t, "top", views[1].Name)

	views, err = env.svc.List(ctx, 1, domain.ParentOf(folderID), pagination.Request{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "nested", views[0].Name)
}

func TestListOwnerScoped(t *testing.T) {
	env := newTestEnv(t, Config{})

	env.mustCreate(t, domain.File{UserID: 1, Name: "mine", Type: domain.KindFolder})
	env.mustCreate(t, domain.File{UserID: 2, Name: "theirs", Type: domain.KindFolder})

	views, err := env.svc.List(context.Background(), 1, domain.Root(), pagination.Request{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "mine", views[0].Name)
}

func TestListPagination(t *testing.T) {
	env := newTestEnv(t, Config{PageSize: 20})
	ctx := context.Background()

	for i := 0; i < 45; i++ {
		env.mustCreate(t, domain.File{UserID: 1, Name: fmt.Sprintf("f%02d", i), Type: domain.KindFolder})
	}

	page0, err := env.svc.List(ctx, 1, domain.Root(), pagination.Request{Page: 0})
	require.NoError(t, err)
	assert.Len(t, page0, 20)

	page1, err := env.svc.List(ctx, 1, domain.Root(), pagination.Request{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page1, 20)

	page2, err := env.svc.List(ctx, 1, domain.Root(), pagination.Request{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page2, 5)

	// windows are disjoint
	seen := map[int64]bool{}
	for _, v := range page0 {
		seen[v.ID] = true
	}
	for _, v := range page1 {
		assert.False(t, seen[v.ID])
	}

	// past the end is an empty list, not an error
	page3, err := env.svc.List(ctx, 1, domain.Root(), pagination.Request{Page: 3})
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestListNegativePageDegradesToFirst(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.mustCreate(t, domain.File{UserID: 1, Name: "a", Type: domain.KindFolder})

	views, err := env.svc.List(context.Background(), 1, domain.Root(), pagination.Request{Page: -5})
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestListEmpty(t *testing.T) {
	env := newTestEnv(t, Config{})

	views, err := env.svc.List(context.Background(), 1, domain.Root(), pagination.Request{})
	require.NoError(t, err)
	assert.Empty(t, views)
}
