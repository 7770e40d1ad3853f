// Package worker consumes image jobs and generates thumbnail derivatives.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/IBM/sarama"
	"github.com/code19m/errx"
	"github.com/disintegration/imaging"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/pkg/filestore"
	"github.com/rise-and-shine/filestash/pkg/logger"
)

// thumbnailWidths are the derivative widths generated for each image,
// stored next to the original as "<path>_<width>".
var thumbnailWidths = []int{500, 250, 100}

const codeInvalidJob = "INVALID_JOB"

// fileLookup is the repository surface the worker needs.
// Satisfied by *repository.FileRepo.
type fileLookup interface {
	FirstOrNil(ctx context.Context, filters repository.FileFilters) (*domain.File, error)
}

// Thumbnailer generates resized derivatives for dispatched image jobs.
type Thumbnailer struct {
	repo  fileLookup
	store filestore.FileStore
	log   logger.Logger
}

// NewThumbnailer creates the worker.
func NewThumbnailer(repo fileLookup, store filestore.FileStore) *Thumbnailer {
	return &Thumbnailer{
		repo:  repo,
		store: store,
		log:   logger.Named("worker.thumbnail"),
	}
}

// HandleMessage is the kafka consumer handler. The consumer chain takes
// care of retries, logging and alerting around it.
func (w *Thumbnailer) HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var job domain.Job
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		return errx.Wrap(err, errx.WithCode(codeInvalidJob), errx.WithType(errx.T_Validation))
	}

	return w.Process(ctx, job)
}

// Process verifies the job against the metadata store and writes the
// derivatives. Jobs referencing missing or non-image records fail
// permanently rather than silently succeeding.
func (w *Thumbnailer) Process(ctx context.Context, job domain.Job) error {
	rec, err := w.repo.FirstOrNil(ctx, repository.FileFilters{
		ID:     &job.FileID,
		UserID: &job.UserID,
	})
	if err != nil {
		return errx.Wrap(err)
	}
	if rec == nil {
		return errx.New("file record not found for job",
			errx.WithCode(repository.CodeFileNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"file_id": job.FileID, "user_id": job.UserID}),
		)
	}
	if rec.Type != domain.KindImage {
		return errx.New("job target is not an image",
			errx.WithCode(codeInvalidJob),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"file_id": job.FileID, "type": string(rec.Type)}),
		)
	}

	path := job.LocalPath
	if path == "" && rec.LocalPath != nil {
		path = *rec.LocalPath
	}
	if path == "" {
		return errx.New("job has no blob path", errx.WithCode(codeInvalidJob))
	}

	blob, err := w.store.Get(ctx, path)
	if err != nil {
		return errx.Wrap(err)
	}
	defer blob.Content.Close()

	raw, err := io.ReadAll(blob.Content)
	if err != nil {
		return errx.Wrap(err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return errx.Wrap(err, errx.WithCode(codeInvalidJob), errx.WithType(errx.T_Validation))
	}

	for _, width := range thumbnailWidths {
		if err := w.writeDerivative(ctx, img, format, path, width); err != nil {
			return err
		}
	}

	w.log.WithContext(ctx).
		With("file_id", rec.ID).
		With("path", path).
		Info("thumbnails generated")

	return nil
}

func (w *Thumbnailer) writeDerivative(
	ctx context.Context,
	img image.Image,
	format string,
	path string,
	width int,
) error {
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := encodeImage(buf, resized, format); err != nil {
		return errx.Wrap(err)
	}

	target := fmt.Sprintf("%s_%d", path, width)
	if _, err := w.store.Upload(ctx, target, buf); err != nil {
		return errx.Wrap(err)
	}

	return nil
}

// encodeImage encodes an image with the specified format.
func encodeImage(buf *bytes.Buffer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(buf, img)
	case "jpg", "jpeg":
		return jpeg.Encode(buf, img, nil)
	default:
		return jpeg.Encode(buf, img, nil)
	}
}
