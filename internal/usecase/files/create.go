package files

import (
	"bytes"
	"context"
	"encoding/base64"
	"strconv"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/pkg/alert"
)

// CreateInput carries a new entry request.
// Data is the base64-encoded content, required for non-folder kinds.
type CreateInput struct {
	UserID   int64
	Name     string
	Type     domain.Kind
	Data     string
	Parent   domain.ParentRef
	IsPublic bool
}

// CreateEntry validates the input, persists the blob for content-bearing
// kinds, records the metadata and dispatches an image job when applicable.
//
// Validation failures are reported in a fixed order: name, type, data,
// parent. Dispatch failures are logged and alerted but never surfaced to
// the caller; the entry is already durable at that point.
func (s *Service) CreateEntry(ctx context.Context, in CreateInput) (domain.FileView, error) {
	var zero domain.FileView

	if in.Name == "" {
		return zero, validationErr(CodeMissingName, "Missing name")
	}
	if !in.Type.Valid() {
		return zero, validationErr(CodeInvalidType, "Invalid type")
	}
	if in.Type.HasContent() && in.Data == "" {
		return zero, validationErr(CodeMissingData, "Missing data")
	}

	if err := s.resolveParent(ctx, in.Parent, in.UserID); err != nil {
		return zero, err
	}

	rec := &domain.File{
		UserID:   in.UserID,
		Name:     in.Name,
		Type:     in.Type,
		IsPublic: in.IsPublic,
	}
	rec.SetParent(in.Parent)

	if in.Type.HasContent() {
		objectName, err := s.persistBlob(ctx, in.Data)
		if err != nil {
			return zero, err
		}
		rec.LocalPath = &objectName
	}

	rec, err := s.repo.Create(ctx, rec)
	if err != nil {
		return zero, errx.Wrap(err)
	}

	if rec.Type == domain.KindImage {
		s.dispatchImageJob(ctx, rec)
	}

	return rec.View(), nil
}

// resolveParent checks that the requested parent exists and is a folder.
// The root reference always resolves.
func (s *Service) resolveParent(ctx context.Context, parent domain.ParentRef, ownerID int64) error {
	if parent.IsRoot() {
		return nil
	}

	id := parent.ID()
	rec, err := s.repo.FirstOrNil(ctx, repository.FileFilters{ID: &id})
	if err != nil {
		return errx.Wrap(err)
	}

	if rec == nil {
		return validationErr(CodeParentNotFound, "Parent not found")
	}

	// A foreign parent is reported as absent to avoid leaking its existence.
	if s.cfg.StrictParentOwnership && rec.UserID != ownerID {
		return validationErr(CodeParentNotFound, "Parent not found")
	}

	if rec.Type != domain.KindFolder {
		return validationErr(CodeParentNotAFolder, "Parent is not a folder")
	}

	return nil
}

// persistBlob decodes the payload and stores it under a fresh uuid object name.
func (s *Service) persistBlob(ctx context.Context, data string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", errx.Wrap(err,
			errx.WithCode(CodeInvalidData),
			errx.WithType(errx.T_Validation),
		)
	}

	objectName := uuid.NewString()

	_, err = s.store.Upload(ctx, objectName, bytes.NewReader(raw))
	if err != nil {
		return "", errx.Wrap(err)
	}

	return objectName, nil
}

// dispatchImageJob hands the record to the image pipeline. Failures do not
// fail the request: the metadata and blob are already durable, so the miss
// is logged and alerted for offline replay.
func (s *Service) dispatchImageJob(ctx context.Context, rec *domain.File) {
	job := domain.Job{
		UserID: rec.UserID,
		FileID: rec.ID,
	}
	if rec.LocalPath != nil {
		job.LocalPath = *rec.LocalPath
	}

	err := s.disp.Dispatch(ctx, job)
	if err == nil {
		return
	}

	s.log.WithContext(ctx).
		With("file_id", rec.ID).
		With("user_id", rec.UserID).
		Errorx(err)

	e := errx.AsErrorX(err)
	sendErr := alert.SendError(ctx, e.Code(), e.Error(), "files.create_entry.dispatch", map[string]string{
		"file_id":     strconv.FormatInt(rec.ID, 10),
		"local_path":  job.LocalPath,
		"error_trace": e.Trace(),
	})
	if sendErr != nil {
		s.log.WithContext(ctx).With("send_error", sendErr.Error()).Warn("failed to send dispatch alert")
	}
}
