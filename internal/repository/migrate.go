package repository

import (
	"context"
	_ "embed"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded schema. All statements are idempotent.
func Migrate(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	if err != nil {
		return errx.Wrap(err)
	}
	return nil
}
