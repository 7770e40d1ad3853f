// Package httpapi exposes the service over HTTP.
package httpapi

import (
	"context"
	"strconv"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/filestash/internal/session"
	"github.com/rise-and-shine/filestash/pkg/http/server"
	"github.com/rise-and-shine/filestash/pkg/meta"
)

// headerToken is the session token header.
const headerToken = "X-Token"

// RequireAuth resolves the X-Token header and rejects the request when no
// valid session exists. The resolved user id is stored in the request meta
// context for downstream handlers.
func RequireAuth(sessions *session.Manager, hideErrDetails bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := sessions.Resolve(c.UserContext(), c.Get(headerToken))
		if err != nil {
			return server.WriteErrorResponse(c, errx.Wrap(err), hideErrDetails)
		}
		if !ok {
			return server.WriteErrorResponse(c, unauthorizedErr(), hideErrDetails)
		}

		setRequestUser(c, userID)
		return c.Next()
	}
}

// OptionalAuth resolves the X-Token header when present but never rejects.
// Used by endpoints that serve both public and private content.
func OptionalAuth(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := sessions.Resolve(c.UserContext(), c.Get(headerToken))
		if err == nil && ok {
			setRequestUser(c, userID)
		}
		return c.Next()
	}
}

func setRequestUser(c *fiber.Ctx, userID int64) {
	ctx := meta.InjectMetaToContext(c.UserContext(), map[meta.ContextKey]string{
		meta.RequestUserID: strconv.FormatInt(userID, 10),
	})
	c.SetUserContext(ctx)
}

// requestUserID returns the authenticated user id from the meta context.
func requestUserID(ctx context.Context) (int64, error) {
	raw := meta.Find(ctx, meta.RequestUserID)
	if raw == "" {
		return 0, unauthorizedErr()
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errx.Wrap(err)
	}

	return userID, nil
}

// optionalUserID returns a pointer to the user id, or nil when the request
// is unauthenticated.
func optionalUserID(ctx context.Context) *int64 {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil
	}
	return &userID
}

func unauthorizedErr() error {
	return errx.New("Unauthorized",
		errx.WithCode("UNAUTHORIZED"),
		errx.WithType(errx.T_Authentication),
	)
}
