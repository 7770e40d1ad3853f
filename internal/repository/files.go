// Package repository wires the domain models to PostgreSQL through repogen.
package repository

import (
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/pkg/repogen"
	"github.com/uptrace/bun"
)

// Error codes surfaced by the repositories.
const (
	CodeFileNotFound = "FILE_NOT_FOUND"
	CodeUserNotFound = "USER_NOT_FOUND"
	CodeEmailTaken   = "EMAIL_ALREADY_EXISTS"
)

// FileFilters narrows file queries. Nil fields are ignored.
type FileFilters struct {
	ID     *int64
	UserID *int64

	// Parent filters by containing folder; the root reference matches
	// only records with a NULL parent.
	Parent *domain.ParentRef

	// Limit/Offset apply a paging window when Limit > 0.
	Limit  int
	Offset int
}

// FileRepo provides access to the files table.
type FileRepo = repogen.PgRepo[domain.File, FileFilters]

// NewFileRepo builds the file repository.
func NewFileRepo(idb bun.IDB) *FileRepo {
	return repogen.NewPgRepoBuilder[domain.File, FileFilters](idb).
		WithNotFoundCode(CodeFileNotFound).
		WithFilterFunc(applyFileFilters).
		Build()
}

func applyFileFilters(q *bun.SelectQuery, f FileFilters) *bun.SelectQuery {
	if f.ID != nil {
		q = q.Where("f.id = ?", *f.ID)
	}
	if f.UserID != nil {
		q = q.Where("f.user_id = ?", *f.UserID)
	}
	if f.Parent != nil {
		if f.Parent.IsRoot() {
			q = q.Where("f.parent_id IS NULL")
		} else {
			q = q.Where("f.parent_id = ?", f.Parent.ID())
		}
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	return q
}
