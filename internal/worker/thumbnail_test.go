package worker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/IBM/sarama"
	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/pkg/filestore"
	"github.com/rise-and-shine/filestash/pkg/filestore/diskwr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	rec *domain.File
}

func (s *stubRepo) FirstOrNil(_ context.Context, f repository.FileFilters) (*domain.File, error) {
	if s.rec == nil {
		return nil, nil
	}
	if f.ID != nil && s.rec.ID != *f.ID {
		return nil, nil
	}
	if f.UserID != nil && s.rec.UserID != *f.UserID {
		return nil, nil
	}
	return s.rec, nil
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255}) //nolint:gosec // test data
		}
	}

	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func newTestWorker(t *testing.T, rec *domain.File) (*Thumbnailer, filestore.FileStore) {
	t.Helper()

	store, err := diskwr.New(diskwr.Config{Root: t.TempDir()})
	require.NoError(t, err)

	return NewThumbnailer(&stubRepo{rec: rec}, store), store
}

func imagePath(rec *domain.File) string {
	if rec.LocalPath == nil {
		return ""
	}
	return *rec.LocalPath
}

func TestProcessGeneratesDerivatives(t *testing.T) {
	path := "obj-original"
	rec := &domain.File{ID: 5, UserID: 2, Name: "cat.png", Type: domain.KindImage, LocalPath: &path}

	w, store := newTestWorker(t, rec)
	ctx := context.Background()

	_, err := store.Upload(ctx, path, bytes.NewReader(pngBytes(t, 1000, 600)))
	require.NoError(t, err)

	err = w.Process(ctx, domain.Job{UserID: 2, FileID: 5, LocalPath: imagePath(rec)})
	require.NoError(t, err)

	for _, width := range []int{500, 250, 100} {
		blob, err := store.Get(ctx, fmt.Sprintf("%s_%d", path, width))
		require.NoError(t, err, "derivative %d missing", width)

		raw, err := io.ReadAll(blob.Content)
		require.NoError(t, err)
		require.NoError(t, blob.Content.Close())

		img, format, err := image.Decode(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, width, img.Bounds().Dx())
		// aspect ratio preserved: 1000x600 scales to width*0.6
		assert.Equal(t, width*600/1000, img.Bounds().Dy())
	}
}

func TestProcessUnknownRecord(t *testing.T) {
	w, _ := newTestWorker(t, nil)

	err := w.Process(context.Background(), domain.Job{UserID: 1, FileID: 9, LocalPath: "x"})
	require.Error(t, err)
	assert.Equal(t, repository.CodeFileNotFound, errx.AsErrorX(err).Code())
}

func TestProcessWrongOwner(t *testing.T) {
	path := "obj"
	rec := &domain.File{ID: 5, UserID: 2, Name: "cat.png", Type: domain.KindImage, LocalPath: &path}
	w, _ := newTestWorker(t, rec)

	err := w.Process(context.Background(), domain.Job{UserID: 3, FileID: 5, LocalPath: path})
	require.Error(t, err)
	assert.Equal(t, repository.CodeFileNotFound, errx.AsErrorX(err).Code())
}

func TestProcessNonImageRecord(t *testing.T) {
	path := "obj"
	rec := &domain.File{ID: 5, UserID: 2, Name: "a.txt", Type: domain.KindFile, LocalPath: &path}
	w, _ := newTestWorker(t, rec)

	err := w.Process(context.Background(), domain.Job{UserID: 2, FileID: 5, LocalPath: path})
	require.Error(t, err)
	assert.Equal(t, codeInvalidJob, errx.AsErrorX(err).Code())
}

func TestProcessMissingBlob(t *testing.T) {
	path := "missing"
	rec := &domain.File{ID: 5, UserID: 2, Name: "cat.png", Type: domain.KindImage, LocalPath: &path}
	w, _ := newTestWorker(t, rec)

	err := w.Process(context.Background(), domain.Job{UserID: 2, FileID: 5, LocalPath: path})
	assert.Error(t, err)
}

func TestProcessCorruptImage(t *testing.T) {
	path := "corrupt"
	rec := &domain.File{ID: 5, UserID: 2, Name: "cat.png", Type: domain.KindImage, LocalPath: &path}
	w, store := newTestWorker(t, rec)
	ctx := context.Background()

	_, err := store.Upload(ctx, path, bytes.NewReader([]byte("definitely not a png")))
	require.NoError(t, err)

	err = w.Process(ctx, domain.Job{UserID: 2, FileID: 5, LocalPath: path})
	require.Error(t, err)
	assert.Equal(t, codeInvalidJob, errx.AsErrorX(err).Code())
}

func TestHandleMessageDecodesJob(t *testing.T) {
	path := "obj-msg"
	rec := &domain.File{ID: 7, UserID: 4, Name: "dog.png", Type: domain.KindImage, LocalPath: &path}
	w, store := newTestWorker(t, rec)
	ctx := context.Background()

	_, err := store.Upload(ctx, path, bytes.NewReader(pngBytes(t, 200, 200)))
	require.NoError(t, err)

	msg := &sarama.ConsumerMessage{
		Value: []byte(`{"userId":4,"fileId":7,"localPath":"obj-msg"}`),
	}
	require.NoError(t, w.HandleMessage(ctx, msg))

	ok, err := store.Exists(ctx, "obj-msg_100")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHandleMessageInvalidPayload(t *testing.T) {
	w, _ := newTestWorker(t, nil)

	err := w.HandleMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("{broken")})
	require.Error(t, err)
	assert.Equal(t, codeInvalidJob, errx.AsErrorX(err).Code())
}
