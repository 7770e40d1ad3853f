package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/internal/session"
	"github.com/rise-and-shine/filestash/internal/usecase/auth"
	"github.com/rise-and-shine/filestash/internal/usecase/files"
	"github.com/rise-and-shine/filestash/pkg/http/server/forward"
	"github.com/uptrace/bun"
)

// Deps carries everything the router needs.
type Deps struct {
	Auth     *auth.Service
	Files    *files.Service
	Sessions *session.Manager

	DB        *bun.DB
	Redis     redis.Cmdable
	FileRepo  *repository.FileRepo
	UserRepo  *repository.UserRepo
	HideError bool
}

// RegisterRoutes mounts all endpoints on the router.
func RegisterRoutes(r fiber.Router, deps Deps) {
	authH := &authHandlers{svc: deps.Auth}
	filesH := &filesHandlers{svc: deps.Files}
	appH := &appHandlers{
		db:    deps.DB,
		rdb:   deps.Redis,
		files: deps.FileRepo,
		users: deps.UserRepo,
	}

	requireAuth := RequireAuth(deps.Sessions, deps.HideError)
	optionalAuth := OptionalAuth(deps.Sessions)

	r.Get("/status", forward.ToUseCase(appH.status))
	r.Get("/stats", forward.ToUseCase(appH.stats))

	r.Post("/users", forward.ToUseCase(authH.register, forward.WithStatus(fiber.StatusCreated)))
	r.Get("/connect", authH.connect)
	r.Get("/disconnect", requireAuth, authH.disconnect)
	r.Get("/users/me", requireAuth, forward.ToUseCase(authH.me))

	r.Post("/files", requireAuth, forward.ToUseCase(filesH.create, forward.WithStatus(fiber.StatusCreated)))
	r.Get("/files", requireAuth, forward.ToUseCase(filesH.list))
	r.Get("/files/:id", requireAuth, forward.ToUseCase(filesH.getByID))
	r.Put("/files/:id/publish", requireAuth, forward.ToUseCase(filesH.publish))
	r.Put("/files/:id/unpublish", requireAuth, forward.ToUseCase(filesH.unpublish))
	r.Get("/files/:id/data", optionalAuth, filesH.download)
}
