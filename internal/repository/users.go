package repository

import (
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/pkg/repogen"
	"github.com/uptrace/bun"
)

// UserFilters narrows user queries. Nil fields are ignored.
type UserFilters struct {
	ID    *int64
	Email *string
}

// UserRepo provides access to the users table.
type UserRepo = repogen.PgRepo[domain.User, UserFilters]

// NewUserRepo builds the user repository. A duplicate email violates
// the users_email_key constraint and is reported as EMAIL_ALREADY_EXISTS.
func NewUserRepo(idb bun.IDB) *UserRepo {
	return repogen.NewPgRepoBuilder[domain.User, UserFilters](idb).
		WithNotFoundCode(CodeUserNotFound).
		WithFilterFunc(applyUserFilters).
		WithConflictCodes(map[string]string{
			"users_email_key": CodeEmailTaken,
		}).
		Build()
}

func applyUserFilters(q *bun.SelectQuery, f UserFilters) *bun.SelectQuery {
	if f.ID != nil {
		q = q.Where("u.id = ?", *f.ID)
	}
	if f.Email != nil {
		q = q.Where("u.email = ?", *f.Email)
	}
	return q
}
