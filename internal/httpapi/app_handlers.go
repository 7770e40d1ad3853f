package httpapi

import (
	"context"

	"github.com/code19m/errx"
	"github.com/redis/go-redis/v9"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/uptrace/bun"
)

// appHandlers exposes liveness and usage counters.
type appHandlers struct {
	db    *bun.DB
	rdb   redis.Cmdable
	files *repository.FileRepo
	users *repository.UserRepo
}

type statusRequest struct{}

type statusResponse struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

func (h *appHandlers) status(ctx context.Context, _ *statusRequest) (*statusResponse, error) {
	resp := &statusResponse{}
	resp.DB = h.db.PingContext(ctx) == nil
	resp.Redis = h.rdb.Ping(ctx).Err() == nil
	return resp, nil
}

type statsRequest struct{}

type statsResponse struct {
	Users int `json:"users"`
	Files int `json:"files"`
}

func (h *appHandlers) stats(ctx context.Context, _ *statsRequest) (*statsResponse, error) {
	users, err := h.users.Count(ctx, repository.UserFilters{})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	files, err := h.files.Count(ctx, repository.FileFilters{})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &statsResponse{Users: users, Files: files}, nil
}
