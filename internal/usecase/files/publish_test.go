package files

import (
	"context"
	"testing"

	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAndUnpublish(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	rec := env.mustCreate(t, domain.File{UserID: 1, Name: "a.txt", Type: domain.KindFile})

	view, err := env.svc.Publish(ctx, 1, rec.ID)
	require.NoError(t, err)
	assert.True(t, view.IsPublic)

	stored, err := env.repo.FirstOrNil(ctx, filtersByID(rec.ID))
	require.NoError(t, err)
	assert.True(t, stored.IsPublic)

	view, err = env.svc.Unpublish(ctx, 1, rec.ID)
	require.NoError(t, err)
	assert.False(t, view.IsPublic)
}

func TestPublishForeignRecord(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	rec := env.mustCreate(t, domain.File{UserID: 1, Name: "a.txt", Type: domain.KindFile})

	_, err := env.svc.Publish(ctx, 2, rec.ID)
	require.Error(t, err)
	assert.Equal(t, CodeFileNotFound, errCode(err))

	_, err = env.svc.Unpublish(ctx, 2, rec.ID)
	require.Error(t, err)
	assert.Equal(t, CodeFileNotFound, errCode(err))
}

func TestPublishUnknownRecord(t *testing.T) {
	env := newTestEnv(t, Config{})

	_, err := env.svc.Publish(context.Background(), 1, 404)
	require.Error(t, err)
	assert.Equal(t, CodeFileNotFound, errCode(err))
}
