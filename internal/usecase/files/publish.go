package files

import (
	"context"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/repository"
)

// Publish marks the owner's record as public.
func (s *Service) Publish(ctx context.Context, userID, fileID int64) (domain.FileView, error) {
	return s.setVisibility(ctx, userID, fileID, true)
}

// Unpublish marks the owner's record as private.
func (s *Service) Unpublish(ctx context.Context, userID, fileID int64) (domain.FileView, error) {
	return s.setVisibility(ctx, userID, fileID, false)
}

func (s *Service) setVisibility(ctx context.Context, userID, fileID int64, public bool) (domain.FileView, error) {
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

	rec.IsPublic = public

	rec, err = s.repo.Update(ctx, rec)
	if err != nil {
		return zero, errx.Wrap(err)
	}

	return rec.View(), nil
}
