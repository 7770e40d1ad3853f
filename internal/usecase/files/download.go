package files

import (
	"context"
	"fmt"
	"io"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/pkg/filestore"
)

// thumbnailWidths are the derivative sizes the download endpoint accepts.
var thumbnailWidths = []int{500, 250, 100}

// Download streams an entry's content.
//
// viewerID is nil for unauthenticated requests. Private records are only
// served to their owner; everything else is reported as absent. A known
// thumbnail width selects the derivative stored as "<path>_<width>",
// any other value serves the original.
type Download struct {
	Content     io.ReadCloser
	Name        string
	ContentType string
	Size        int64
}

// Download returns the blob behind a record along with its download metadata.
func (s *Service) Download(ctx context.Context, viewerID *int64, fileID int64, width int) (*Download, error) {
	rec, err := s.repo.FirstOrNil(ctx, repository.FileFilters{ID: &fileID})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if rec == nil {
		return nil, notFoundErr()
	}

	if !rec.IsPublic && (viewerID == nil || *viewerID != rec.UserID) {
		return nil, notFoundErr()
	}

	if rec.Type == domain.KindFolder {
		return nil, validationErr(CodeFolderHasNoContent, "A folder doesn't have content")
	}

	if rec.LocalPath == nil {
		return nil, notFoundErr()
	}

	path := *rec.LocalPath
	if isThumbnailWidth(width) {
		path = fmt.Sprintf("%s_%d", path, width)
	}

	blob, err := s.store.Get(ctx, path)
	if err != nil {
		if errx.AsErrorX(err).Type() == errx.T_NotFound {
			return nil, notFoundErr()
		}
		return nil, errx.Wrap(err)
	}

	return &Download{
		Content:     blob.Content,
		Name:        rec.Name,
		ContentType: filestore.ContentTypeForName(rec.Name),
		Size:        blob.Info.Size,
	}, nil
}

func isThumbnailWidth(width int) bool {
	for _, w := range thumbnailWidths {
		if width == w {
			return true
		}
	}
	return false
}
