// Package diskwr provides a local-filesystem implementation of the
// filestore.FileStore interface. Objects are plain files under a
// configured root directory.
package diskwr

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/rise-and-shine/filestash/pkg/filestore"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store implements the filestore.FileStore interface on the local filesystem.
type Store struct {
	root string
}

var _ filestore.FileStore = (*Store)(nil)

// New creates a disk store rooted at cfg.Root.
// The root directory is created on first use; an already existing
// directory is not an error.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.Root, dirPerm); err != nil {
		return nil, errx.Wrap(err)
	}
	return &Store{root: cfg.Root}, nil
}

// Upload writes the content to root/path. The write goes to a temporary
// file first and is renamed into place, so concurrent readers never
// observe a partially written object.
func (s *Store) Upload(ctx context.Context, path string, reader io.Reader) (*filestore.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, errx.Wrap(err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	target := s.abs(path)
	if err = os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return nil, errx.Wrap(err)
	}

	tmp := target + ".tmp-" + uuid.NewString()
	if err = os.WriteFile(tmp, data, filePerm); err != nil {
		return nil, errx.Wrap(err)
	}
	if err = os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return nil, errx.Wrap(err)
	}

	stat, err := os.Stat(target)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &filestore.FileInfo{
		Path:         path,
		Size:         stat.Size(),
		ContentType:  http.DetectContentType(data),
		LastModified: stat.ModTime(),
	}, nil
}

// Get opens the file at root/path.
func (s *Store) Get(ctx context.Context, path string) (*filestore.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, errx.Wrap(err)
	}

	f, err := os.Open(s.abs(path))
	if os.IsNotExist(err) {
		return nil, errNotFound()
	}
	if err != nil {
		return nil, errx.Wrap(err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errx.Wrap(err)
	}

	return &filestore.File{
		Content: f,
		Info: filestore.FileInfo{
			Path:         path,
			Size:         stat.Size(),
			ContentType:  filestore.ContentTypeForName(path),
			LastModified: stat.ModTime(),
		},
	}, nil
}

// Delete removes the file at root/path.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return errx.Wrap(err)
	}

	err := os.Remove(s.abs(path))
	if os.IsNotExist(err) {
		return errNotFound()
	}
	return errx.Wrap(err)
}

// Exists checks if a file exists at root/path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errx.Wrap(err)
	}

	_, err := os.Stat(s.abs(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errx.Wrap(err)
	}
	return true, nil
}

func (s *Store) abs(path string) string {
	return filepath.Join(s.root, filepath.Clean("/"+path))
}

func errNotFound() error {
	return errx.New(
		"file not found",
		errx.WithCode(filestore.CodeFileNotFound),
		errx.WithType(errx.T_NotFound),
	)
}
