// Package domain holds the core entities of the file metadata service.
package domain

import (
	"strconv"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/pkg/pg"
	"github.com/uptrace/bun"
)

// Kind classifies a stored entry.
type Kind string

const (
	// KindFolder is a container entry without blob content.
	KindFolder Kind = "folder"

	// KindFile is a regular entry with blob content.
	KindFile Kind = "file"

	// KindImage is a file entry that additionally gets thumbnail derivatives.
	KindImage Kind = "image"
)

// Valid reports whether k is one of the accepted kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFolder, KindFile, KindImage:
		return true
	}
	return false
}

// HasContent reports whether entries of this kind carry blob data.
func (k Kind) HasContent() bool {
	return k == KindFile || k == KindImage
}

// ParentRef points at the containing folder of an entry.
// The zero value is the root sentinel. On the wire the root is represented
// by the numeric literal 0; domain logic must use IsRoot instead of
// comparing ids against zero.
type ParentRef struct {
	id int64
}

// Root returns the root parent reference.
func Root() ParentRef {
	return ParentRef{}
}

// ParentOf returns a reference to the folder with the given id.
func ParentOf(id int64) ParentRef {
	return ParentRef{id: id}
}

// IsRoot reports whether the reference points at the root.
func (p ParentRef) IsRoot() bool {
	return p.id == 0
}

// ID returns the referenced folder id. Only meaningful when IsRoot is false.
func (p ParentRef) ID() int64 {
	return p.id
}

// MarshalJSON writes the root as 0 and any other reference as its id.
func (p ParentRef) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(p.id, 10)), nil
}

// UnmarshalJSON accepts a numeric id, with 0 meaning root.
func (p *ParentRef) UnmarshalJSON(data []byte) error {
	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return errx.Wrap(err, errx.WithType(errx.T_Validation))
	}
	if id < 0 {
		return errx.New("parent id must not be negative", errx.WithType(errx.T_Validation))
	}
	p.id = id
	return nil
}

// File is the metadata record of a stored entry.
type File struct {
	bun.BaseModel `bun:"table:files,alias:f"`
	pg.Timestamps

	ID        int64   `bun:"id,pk,autoincrement"`
	UserID    int64   `bun:"user_id,notnull"`
	Name      string  `bun:"name,notnull"`
	Type      Kind    `bun:"type,notnull"`
	IsPublic  bool    `bun:"is_public,notnull"`
	ParentID  *int64  `bun:"parent_id"`
	LocalPath *string `bun:"local_path"`
}

// Parent returns the entry's parent reference.
func (f *File) Parent() ParentRef {
	if f.ParentID == nil {
		return Root()
	}
	return ParentOf(*f.ParentID)
}

// SetParent stores the parent reference, mapping root to a NULL column.
func (f *File) SetParent(p ParentRef) {
	if p.IsRoot() {
		f.ParentID = nil
		return
	}
	id := p.ID()
	f.ParentID = &id
}

// FileView is the public projection of a File returned by the API.
type FileView struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"userId"`
	Name     string    `json:"name"`
	Type     Kind      `json:"type"`
	IsPublic bool      `json:"isPublic"`
	ParentID ParentRef `json:"parentId"`
}

// View returns the public projection of the record.
func (f *File) View() FileView {
	return FileView{
		ID:       f.ID,
		UserID:   f.UserID,
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: f.Parent(),
	}
}

// User is an account record.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	pg.Timestamps

	ID       int64  `bun:"id,pk,autoincrement"`
	Email    string `bun:"email,notnull,unique"`
	Password string `bun:"password,notnull"`
}
