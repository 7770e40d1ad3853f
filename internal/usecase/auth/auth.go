// Package auth implements account registration and session lifecycle.
package auth

import (
	"context"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/pkg/hasher"
)

// Error codes returned by the auth use cases.
const (
	CodeMissingEmail    = "MISSING_EMAIL"
	CodeMissingPassword = "MISSING_PASSWORD"
	CodeUnauthorized    = "UNAUTHORIZED"
)

// userRepo is the repository surface the auth use cases need.
// Satisfied by *repository.UserRepo.
type userRepo interface {
	Create(ctx context.Context, entity *domain.User) (*domain.User, error)
	FirstOrNil(ctx context.Context, filters repository.UserFilters) (*domain.User, error)
}

// sessionStore issues and revokes opaque session tokens.
// Satisfied by *session.Manager.
type sessionStore interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Revoke(ctx context.Context, rawToken string) error
}

// Service implements registration, connect/disconnect and profile lookup.
type Service struct {
	repo     userRepo
	sessions sessionStore
}

// NewService creates the auth service.
func NewService(repo userRepo, sessions sessionStore) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// UserView is the public projection of an account.
type UserView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Register creates a new account with a bcrypt-hashed password.
// A duplicate email surfaces as EMAIL_ALREADY_EXISTS from the repository.
func (s *Service) Register(ctx context.Context, email, password string) (UserView, error) {
	var zero UserView

	if email == "" {
		return zero, validationErr(CodeMissingEmail, "Missing email")
	}
	if password == "" {
		return zero, validationErr(CodeMissingPassword, "Missing password")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return zero, errx.Wrap(err)
	}

	user, err := s.repo.Create(ctx, &domain.User{
		Email:    email,
		Password: hash,
	})
	if err != nil {
		return zero, errx.Wrap(err)
	}

	return UserView{ID: user.ID, Email: user.Email}, nil
}

// Connect verifies credentials and opens a session. Unknown accounts and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Connect(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FirstOrNil(ctx, repository.UserFilters{Email: &email})
	if err != nil {
		return "", errx.Wrap(err)
	}

	if user == nil || !hasher.Compare(password, user.Password) {
		return "", unauthorizedErr()
	}

	rawToken, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return "", errx.Wrap(err)
	}

	return rawToken, nil
}

// Disconnect closes the session behind the token.
func (s *Service) Disconnect(ctx context.Context, rawToken string) error {
	return errx.Wrap(s.sessions.Revoke(ctx, rawToken))
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID int64) (UserView, error) {
	var zero UserView

	user, err := s.repo.FirstOrNil(ctx, repository.UserFilters{ID: &userID})
	if err != nil {
		return zero, errx.Wrap(err)
	}
	if user == nil {
		return zero, unauthorizedErr()
	}

	return UserView{ID: user.ID, Email: user.Email}, nil
}

func validationErr(code, msg string) error {
	return errx.New(msg, errx.WithCode(code), errx.WithType(errx.T_Validation))
}

func unauthorizedErr() error {
	return errx.New("Unauthorized", errx.WithCode(CodeUnauthorized), errx.WithType(errx.T_Authentication))
}
