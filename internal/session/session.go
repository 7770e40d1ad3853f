// Package session resolves and issues opaque session tokens backed by Redis.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/code19m/errx"
	"github.com/redis/go-redis/v9"
	"github.com/rise-and-shine/filestash/pkg/token"
)

// Config defines configuration options for the session manager.
type Config struct {
	// Prefix is prepended to the raw token to form the Redis key.
	Prefix string `yaml:"prefix" default:"auth_"`

	// TTL is the session lifetime. Default is 24 hours.
	TTL time.Duration `yaml:"ttl" default:"24h"`
}

// Manager stores sessions as prefix+token -> user id with a TTL.
type Manager struct {
	cfg Config
	rdb redis.Cmdable
}

// NewManager creates a session manager over the given Redis client.
func NewManager(cfg Config, rdb redis.Cmdable) *Manager {
	return &Manager{cfg: cfg, rdb: rdb}
}

// Resolve looks up the user id for a token.
// A missing or empty session yields ok=false with a nil error: an
// unauthenticated request is not a storage failure.
func (m *Manager) Resolve(ctx context.Context, rawToken string) (int64, bool, error) {
	if rawToken == "" {
		return 0, false, nil
	}

	val, err := m.rdb.Get(ctx, m.key(rawToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, errx.Wrap(err)
	}

	if val == "" {
		return 0, false, nil
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, errx.Wrap(err, errx.WithDetails(errx.D{
			"session_value": val,
		}))
	}

	return userID, true, nil
}

// Issue creates a new session for the user and returns the opaque token.
func (m *Manager) Issue(ctx context.Context, userID int64) (string, error) {
	rawToken := token.NewOpaqueToken()

	err := m.rdb.Set(ctx, m.key(rawToken), strconv.FormatInt(userID, 10), m.cfg.TTL).Err()
	if err != nil {
		return "", errx.Wrap(err)
	}

	return rawToken, nil
}

// Revoke deletes the session for the given token. Revoking an unknown
// token is not an error.
func (m *Manager) Revoke(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	err := m.rdb.Del(ctx, m.key(rawToken)).Err()
	if err != nil {
		return errx.Wrap(err)
	}

	return nil
}

func (m *Manager) key(rawToken string) string {
	return m.cfg.Prefix + rawToken
}
