package diskwr_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/pkg/filestore"
	"github.com/rise-and-shine/filestash/pkg/filestore/diskwr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *diskwr.Store {
	t.Helper()

	store, err := diskwr.New(diskwr.Config{Root: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestUploadAndGet(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	info, err := store.Upload(ctx, "objects/abc", strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "objects/abc", info.Path)
	assert.Equal(t, int64(11), info.Size)

	file, err := store.Get(ctx, "objects/abc")
	require.NoError(t, err)
	defer file.Content.Close()

	content, err := io.ReadAll(file.Content)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
}

func TestUploadOverwrites(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	_, err := store.Upload(ctx, "obj", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = store.Upload(ctx, "obj", strings.NewReader("second"))
	require.NoError(t, err)

	file, err := store.Get(ctx, "obj")
	require.NoError(t, err)
	defer file.Content.Close()

	content, err := io.ReadAll(file.Content)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)

	var e errx.ErrorX
	require.True(t, errors.As(err, &e))
	assert.Equal(t, filestore.CodeFileNotFound, e.Code())
	assert.Equal(t, errx.T_NotFound, e.Type())
}

func TestExistsAndDelete(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "obj")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Upload(ctx, "obj", strings.NewReader("data"))
	require.NoError(t, err)

	exists, err = store.Exists(ctx, "obj")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "obj"))

	exists, err = store.Exists(ctx, "obj")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestConcurrentUploadsSamePrefix(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = store.Upload(ctx, "nested/dir/obj-"+string(rune('a'+i)), strings.NewReader("x"))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}
