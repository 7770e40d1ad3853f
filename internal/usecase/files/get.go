package files

import (
	"context"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/pkg/pagination"
)

// GetByID returns the owner's record by id. An absent record and a record
// owned by someone else are indistinguishable to the caller.
func (s *Service) GetByID(ctx context.Context, userID, fileID int64) (domain.FileView, error) {
	var zero domain.FileView

	rec, err := s.repo.FirstOrNil(ctx, repository.FileFilters{
		ID:     &fileID,
		UserID: &userID,
	})
	if err != nil {
		return zero, errx.Wrap(err)
	}
	if rec == nil {
		return zero, notFoundErr()
	}

	return rec.View(), nil
}

// List returns one fixed-size page of the owner's entries under the given
// parent. The root reference matches only records without a parent.
// Ordering follows the store's natural order; no sort stability is
// guaranteed across pages.
func (s *Service) List(
	ctx context.Context,
	userID int64,
	parent domain.ParentRef,
	page pagination.Request,
) ([]domain.FileView, error) {
	page.Normalize(pagination.WithPageSize(s.cfg.PageSize))

	recs, err := s.repo.List(ctx, repository.FileFilters{
		UserID: &userID,
		Parent: &parent,
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	views := make([]domain.FileView, 0, len(recs))
	for i := range recs {
		views = append(views, recs[i].View())
	}

	return views, nil
}
