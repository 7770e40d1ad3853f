package httpapi

import (
	"context"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/usecase/files"
	"github.com/rise-and-shine/filestash/pkg/pagination"
	"github.com/spf13/cast"
)

// filesHandlers adapts the file use cases to HTTP.
type filesHandlers struct {
	svc *files.Service
}

type createFileRequest struct {
	Name     string           `json:"name"`
	Type     domain.Kind      `json:"type"`
	Data     string           `json:"data"`
	ParentID domain.ParentRef `json:"parentId"`
	IsPublic bool             `json:"isPublic"`
}

func (h *filesHandlers) create(ctx context.Context, req *createFileRequest) (*domain.FileView, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	view, err := h.svc.CreateEntry(ctx, files.CreateInput{
		UserID:   userID,
		Name:     req.Name,
		Type:     req.Type,
		Data:     req.Data,
		Parent:   req.ParentID,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return &view, nil
}

type fileIDRequest struct {
	ID int64 `params:"id"`
}

func (h *filesHandlers) getByID(ctx context.Context, req *fileIDRequest) (*domain.FileView, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	view, err := h.svc.GetByID(ctx, userID, req.ID)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return &view, nil
}

type listFilesRequest struct {
	pagination.Request

	ParentID int64 `query:"parentId"`
}

func (h *filesHandlers) list(ctx context.Context, req *listFilesRequest) ([]domain.FileView, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	parent := domain.Root()
	if req.ParentID != 0 {
		parent = domain.ParentOf(req.ParentID)
	}

	views, err := h.svc.List(ctx, userID, parent, req.Request)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return views, nil
}

func (h *filesHandlers) publish(ctx context.Context, req *fileIDRequest) (*domain.FileView, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	view, err := h.svc.Publish(ctx, userID, req.ID)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return &view, nil
}

func (h *filesHandlers) unpublish(ctx context.Context, req *fileIDRequest) (*domain.FileView, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	view, err := h.svc.Unpublish(ctx, userID, req.ID)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return &view, nil
}

// download streams the blob behind a record. Kept as a raw fiber handler
// since the response is binary, not JSON.
func (h *filesHandlers) download(c *fiber.Ctx) error {
	fileID, err := c.ParamsInt("id")
	if err != nil {
		return errx.Wrap(err, errx.WithType(errx.T_Validation))
	}

	width := cast.ToInt(c.Query("size"))

	dl, err := h.svc.Download(c.UserContext(), optionalUserID(c.UserContext()), int64(fileID), width)
	if err != nil {
		return errx.Wrap(err)
	}

	c.Set(fiber.HeaderContentType, dl.ContentType)
	return errx.Wrap(c.SendStream(dl.Content, int(dl.Size)))
}
