package files

import (
	"context"
	"encoding/base64"
	"io"
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestCreateEntryValidationOrder(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	tests := []struct {
		name     string
		in       CreateInput
		wantCode string
	}{
		{
			name:     "missing name",
			in:       CreateInput{UserID: 1, Type: domain.KindFile, Data: b64("x")},
			wantCode: CodeMissingName,
		},
		{
			name:     "missing name reported before invalid type",
			in:       CreateInput{UserID: 1, Type: domain.Kind("bogus")},
			wantCode: CodeMissingName,
		},
		{
			name:     "invalid type",
			in:       CreateInput{UserID: 1, Name: "a", Type: domain.Kind("bogus")},
			wantCode: CodeInvalidType,
		},
		{
			name:     "empty type",
			in:       CreateInput{UserID: 1, Name: "a"},
			wantCode: CodeInvalidType,
		},
		{
			name:     "file without data",
			in:       CreateInput{UserID: 1, Name: "a", Type: domain.KindFile},
			wantCode: CodeMissingData,
		},
		{
			name:     "image without data",
			in:       CreateInput{UserID: 1, Name: "a", Type: domain.KindImage},
			wantCode: CodeMissingData,
		},
		{
			name:     "unknown parent",
			in:       CreateInput{UserID: 1, Name: "a", Type: domain.KindFile, Data: b64("x"), Parent: domain.ParentOf(999)},
			wantCode: CodeParentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.CreateEntry(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errCode(err))
			assert.Equal(t, errx.T_Validation, errx.AsErrorX(err).Type())
		})
	}
}

func TestCreateEntryFolderWithoutData(t *testing.T) {
	env := newTestEnv(t, Config{})

	view, err := env.svc.CreateEntry(context.Background(), CreateInput{
		UserID: 1,
		Name:   "documents",
		Type:   domain.KindFolder,
	})
	require.NoError(t, err)

	assert.NotZero(t, view.ID)
	assert.Equal(t, domain.KindFolder, view.Type)
	assert.True(t, view.ParentID.IsRoot())
	assert.False(t, view.IsPublic)
}

func TestCreateEntryNestedFolder(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	parent, err := env.svc.CreateEntry(ctx, CreateInput{UserID: 1, Name: "root", Type: domain.KindFolder})
	require.NoError(t, err)

	child, err := env.svc.CreateEntry(ctx, CreateInput{
		UserID: 1,
		Name:   "nested",
		Type:   domain.KindFolder,
		Parent: domain.ParentOf(parent.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, child.ParentID.ID())
}

func TestCreateEntryParentNotAFolder(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	file, err := env.svc.CreateEntry(ctx, CreateInput{
		UserID: 1, Name: "a.txt", Type: domain.KindFile, Data: b64("hello"),
	})
	require.NoError(t, err)

	_, err = env.svc.CreateEntry(ctx, CreateInput{
		UserID: 1, Name: "b.txt", Type: domain.KindFile, Data: b64("x"),
		Parent: domain.ParentOf(file.ID),
	})
	require.Error(t, err)
	assert.Equal(t, CodeParentNotAFolder, errCode(err))
}

func TestCreateEntryForeignParent(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed by default", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		parent, err := env.svc.CreateEntry(ctx, CreateInput{UserID: 1, Name: "shared", Type: domain.KindFolder})
		require.NoError(t, err)

		child, err := env.svc.CreateEntry(ctx, CreateInput{
			UserID: 2, Name: "guest.txt", Type: domain.KindFile, Data: b64("x"),
			Parent: domain.ParentOf(parent.ID),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), child.UserID)
	})

	t.Run("reported as absent when strict", func(t *testing.T) {
		env := newTestEnv(t, Config{StrictParentOwnership: true})
		parent, err := env.svc.CreateEntry(ctx, CreateInput{UserID: 1, Name: "private", Type: domain.KindFolder})
		require.NoError(t, err)

		_, err = env.svc.CreateEntry(ctx, CreateInput{
			UserID: 2, Name: "guest.txt", Type: domain.KindFile, Data: b64("x"),
			Parent: domain.ParentOf(parent.ID),
		})
		require.Error(t, err)
		assert.Equal(t, CodeParentNotFound, errCode(err))
	})
}

func TestCreateEntryPersistsBlob(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	const content = "Hello Webstack!"

	view, err := env.svc.CreateEntry(ctx, CreateInput{
		UserID: 1, Name: "hello.txt", Type: domain.KindFile, Data: b64(content),
	})
	require.NoError(t, err)

	rec, err := env.repo.FirstOrNil(ctx, filtersByID(view.ID))
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.LocalPath)

	blob, err := env.svc.store.Get(ctx, *rec.LocalPath)
	require.NoError(t, err)
	defer blob.Content.Close()

	raw, err := io.ReadAll(blob.Content)
	require.NoError(t, err)
	assert.Equal(t, content, string(raw))
}

func TestCreateEntryInvalidBase64(t *testing.T) {
	env := newTestEnv(t, Config{})

	_, err := env.svc.CreateEntry(context.Background(), CreateInput{
		UserID: 1, Name: "bad.bin", Type: domain.KindFile, Data: "%%% not base64 %%%",
	})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidData, errCode(err))
}

func TestCreateEntryDispatchesImageJob(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	view, err := env.svc.CreateEntry(ctx, CreateInput{
		UserID: 3, Name: "cat.png", Type: domain.KindImage, Data: b64("png-bytes"),
	})
	require.NoError(t, err)

	require.Len(t, env.disp.jobs, 1)
	job := env.disp.jobs[0]
	assert.Equal(t, int64(3), job.UserID)
	assert.Equal(t, view.ID, job.FileID)
	assert.NotEmpty(t, job.LocalPath)
}

func TestCreateEntryNoJobForPlainFile(t *testing.T) {
	env := newTestEnv(t, Config{})

	_, err := env.svc.CreateEntry(context.Background(), CreateInput{
		UserID: 1, Name: "a.txt", Type: domain.KindFile, Data: b64("x"),
	})
	require.NoError(t, err)
	assert.Empty(t, env.disp.jobs)
}

func TestCreateEntryDispatchFailureNotSurfaced(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.disp.err = errx.New("broker down")

	view, err := env.svc.CreateEntry(context.Background(), CreateInput{
		UserID: 1, Name: "cat.png", Type: domain.KindImage, Data: b64("png-bytes"),
	})
	require.NoError(t, err)
	assert.NotZero(t, view.ID)

	// the record survived even though dispatch failed
	rec, err := env.repo.FirstOrNil(context.Background(), filtersByID(view.ID))
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
