// Package files implements the file ingestion and query use cases.
package files

import (
	"context"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/dispatch"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/pkg/filestore"
	"github.com/rise-and-shine/filestash/pkg/logger"
)

// Error codes returned by the file use cases.
const (
	CodeMissingName        = "MISSING_NAME"
	CodeInvalidType        = "INVALID_TYPE"
	CodeMissingData        = "MISSING_DATA"
	CodeInvalidData        = "INVALID_DATA"
	CodeParentNotFound     = "PARENT_NOT_FOUND"
	CodeParentNotAFolder   = "PARENT_NOT_A_FOLDER"
	CodeFolderHasNoContent = "FOLDER_HAS_NO_CONTENT"
	CodeFileNotFound       = repository.CodeFileNotFound
)

// Config defines configuration options for the file use cases.
type Config struct {
	// StrictParentOwnership rejects parents owned by another user.
	// The default preserves the historical behavior of allowing
	// cross-user nesting.
	StrictParentOwnership bool `yaml:"strict_parent_ownership" default:"false"`

	// PageSize is the fixed window size for list queries.
	PageSize int `yaml:"page_size" default:"20"`
}

// metadataRepo is the repository surface the use cases need.
// Satisfied by *repository.FileRepo.
type metadataRepo interface {
	Create(ctx context.Context, entity *domain.File) (*domain.File, error)
	Update(ctx context.Context, entity *domain.File) (*domain.File, error)
	FirstOrNil(ctx context.Context, filters repository.FileFilters) (*domain.File, error)
	List(ctx context.Context, filters repository.FileFilters) ([]domain.File, error)
}

// Service coordinates metadata, blob storage and job dispatch.
type Service struct {
	cfg   Config
	repo  metadataRepo
	store filestore.FileStore
	disp  dispatch.Dispatcher
	log   logger.Logger
}

// NewService creates the file service.
func NewService(cfg Config, repo metadataRepo, store filestore.FileStore, disp dispatch.Dispatcher) *Service {
	return &Service{
		cfg:   cfg,
		repo:  repo,
		store: store,
		disp:  disp,
		log:   logger.Named("usecase.files"),
	}
}

func validationErr(code, msg string) error {
	return errx.New(msg, errx.WithCode(code), errx.WithType(errx.T_Validation))
}

func notFoundErr() error {
	return errx.New("Not found", errx.WithCode(CodeFileNotFound), errx.WithType(errx.T_NotFound))
}
