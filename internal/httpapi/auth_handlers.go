package httpapi

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/filestash/internal/usecase/auth"
)

// authHandlers adapts the auth use cases to HTTP.
type authHandlers struct {
	svc *auth.Service
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandlers) register(ctx context.Context, req *registerRequest) (*auth.UserView, error) {
	view, err := h.svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return &view, nil
}

type connectResponse struct {
	Token string `json:"token"`
}

// connect exchanges Basic credentials for a session token.
func (h *authHandlers) connect(c *fiber.Ctx) error {
	email, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return unauthorizedErr()
	}

	token, err := h.svc.Connect(c.UserContext(), email, password)
	if err != nil {
		return errx.Wrap(err)
	}

	return errx.Wrap(c.JSON(connectResponse{Token: token}))
}

func (h *authHandlers) disconnect(c *fiber.Ctx) error {
	if err := h.svc.Disconnect(c.UserContext(), c.Get(headerToken)); err != nil {
		return errx.Wrap(err)
	}

	c.Status(fiber.StatusNoContent)
	return nil
}

type meRequest struct{}

func (h *authHandlers) me(ctx context.Context, _ *meRequest) (*auth.UserView, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	view, err := h.svc.Me(ctx, userID)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return &view, nil
}

// parseBasicAuth decodes an "Authorization: Basic base64(email:password)" header.
func parseBasicAuth(header string) (string, string, bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return "", "", false
	}

	email, password, found := strings.Cut(string(raw), ":")
	if !found || email == "" {
		return "", "", false
	}

	return email, password, true
}
