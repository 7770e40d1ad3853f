package files

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) seedBlob(t *testing.T, path, content string) {
	t.Helper()
	_, err := e.svc.store.Upload(context.Background(), path, strings.NewReader(content))
	require.NoError(t, err)
}

func (e *testEnv) seedFile(t *testing.T, userID int64, name string, kind domain.Kind, public bool, path string) domain.File {
	t.Helper()
	return e.mustCreate(t, domain.File{
		UserID:    userID,
		Name:      name,
		Type:      kind,
		IsPublic:  public,
		LocalPath: &path,
	})
}

func ownerID(id int64) *int64 { return &id }

func TestDownloadFolderHasNoContent(t *testing.T) {
	env := newTestEnv(t, Config{})
	rec := env.mustCreate(t, domain.File{UserID: 1, Name: "docs", Type: domain.KindFolder, IsPublic: true})

	_, err := env.svc.Download(context.Background(), ownerID(1), rec.ID, 0)
	require.Error(t, err)
	assert.Equal(t, CodeFolderHasNoContent, errCode(err))
	assert.Equal(t, errx.T_Validation, errx.AsErrorX(err).Type())
}

func TestDownloadVisibility(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	env.seedBlob(t, "obj-private", "secret")
	rec := env.seedFile(t, 1, "note.txt", domain.KindFile, false, "obj-private")

	t.Run("owner reads private record", func(t *testing.T) {
		dl, err := env.svc.Download(ctx, ownerID(1), rec.ID, 0)
		require.NoError(t, err)
		defer dl.Content.Close()

		raw, err := io.ReadAll(dl.Content)
		require.NoError(t, err)
		assert.Equal(t, "secret", string(raw))
		assert.Equal(t, "note.txt", dl.Name)
	})

	t.Run("non-owner gets not found", func(t *testing.T) {
		_, err := env.svc.Download(ctx, ownerID(2), rec.ID, 0)
		require.Error(t, err)
		assert.Equal(t, CodeFileNotFound, errCode(err))
	})

	t.Run("unauthenticated gets not found", func(t *testing.T) {
		_, err := env.svc.Download(ctx, nil, rec.ID, 0)
		require.Error(t, err)
		assert.Equal(t, CodeFileNotFound, errCode(err))
	})
}

func TestDownloadPublicWithoutToken(t *testing.T) {
	env := newTestEnv(t, Config{})

	env.seedBlob(t, "obj-public", "published")
	rec := env.seedFile(t, 1, "page.html", domain.KindFile, true, "obj-public")

	dl, err := env.svc.Download(context.Background(), nil, rec.ID, 0)
	require.NoError(t, err)
	defer dl.Content.Close()

	raw, err := io.ReadAll(dl.Content)
	require.NoError(t, err)
	assert.Equal(t, "published", string(raw))
	assert.Equal(t, "text/html", dl.ContentType)
}

func TestDownloadThumbnailWidth(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	env.seedBlob(t, "obj-img", "original")
	env.seedBlob(t, "obj-img_250", "thumb-250")
	rec := env.seedFile(t, 1, "cat.png", domain.KindImage, true, "obj-img")

	t.Run("known width selects the derivative", func(t *testing.T) {
		dl, err := env.svc.Download(ctx, nil, rec.ID, 250)
		require.NoError(t, err)
		defer dl.Content.Close()

		raw, err := io.ReadAll(dl.Content)
		require.NoError(t, err)
		assert.Equal(t, "thumb-250", string(raw))
		assert.Equal(t, "image/png", dl.ContentType)
	})

	t.Run("unknown width serves the original", func(t *testing.T) {
		dl, err := env.svc.Download(ctx, nil, rec.ID, 321)
		require.NoError(t, err)
		defer dl.Content.Close()

		raw, err := io.ReadAll(dl.Content)
		require.NoError(t, err)
		assert.Equal(t, "original", string(raw))
	})

	t.Run("missing derivative reported as absent", func(t *testing.T) {
		_, err := env.svc.Download(ctx, nil, rec.ID, 100)
		require.Error(t, err)
		assert.Equal(t, CodeFileNotFound, errCode(err))
	})
}

func TestDownloadMissingBlob(t *testing.T) {
	env := newTestEnv(t, Config{})
	rec := env.seedFile(t, 1, "ghost.txt", domain.KindFile, true, "never-written")

	_, err := env.svc.Download(context.Background(), nil, rec.ID, 0)
	require.Error(t, err)
	assert.Equal(t, CodeFileNotFound, errCode(err))
}

func TestDownloadUnknownRecord(t *testing.T) {
	env := newTestEnv(t, Config{})

	_, err := env.svc.Download(context.Background(), nil, 12345, 0)
	require.Error(t, err)
	assert.Equal(t, CodeFileNotFound, errCode(err))
}
