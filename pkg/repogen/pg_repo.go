package repogen

import (
	"context"
	"fmt"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/pkg/pg"
	"github.com/uptrace/bun"
)

const (
	codeMultipleRowsFound      = "MULTIPLE_ROWS_FOUND"
	codeIncorrectRowsAffection = "INCORRECT_ROWS_AFFECTION"

	largeBulkSize = 10
)

// PgRepo provides CRUD + bulk operations for a PostgreSQL table using bun ORM.
type PgRepo[E any, F any] struct {
	*PgReadOnlyRepo[E, F]

	// conflictCodesMap maps PostgreSQL constraint names to error codes.
	// E.g. map["users_email_key"] = "EMAIL_ALREADY_EXISTS"
	conflictCodesMap map[string]string
}

// PgRepoBuilder is a builder for PgRepo with sensible defaults.
type PgRepoBuilder[E any, F any] struct {
	roBuilder        *PgReadOnlyRepoBuilder[E, F]
	conflictCodesMap map[string]string
}

// NewPgRepoBuilder creates a new builder with sensible defaults.
func NewPgRepoBuilder[E any, F any](idb bun.IDB) *PgRepoBuilder[E, F] {
	return &PgRepoBuilder[E, F]{
		roBuilder:        NewPgReadOnlyRepoBuilder[E, F](idb),
		conflictCodesMap: map[string]string{},
	}
}

// WithSchemaName sets the schema name.
func (b *PgRepoBuilder[E, F]) WithSchemaName(name string) *PgRepoBuilder[E, F] {
	b.roBuilder.WithSchemaName(name)
	return b
}

// WithNotFoundCode sets the error code for not found errors.
func (b *PgRepoBuilder[E, F]) WithNotFoundCode(code string) *PgRepoBuilder[E, F] {
	b.roBuilder.WithNotFoundCode(code)
	return b
}

// WithFilterFunc sets the filter function.
func (b *PgRepoBuilder[E, F]) WithFilterFunc(
	fn func(q *bun.SelectQuery, filters F) *bun.SelectQuery,
) *PgRepoBuilder[E, F] {
	b.roBuilder.WithFilterFunc(fn)
	return b
}

// WithConflictCodes sets the constraint name to error code mapping.
func (b *PgRepoBuilder[E, F]) WithConflictCodes(m map[string]string) *PgRepoBuilder[E, F] {
	b.conflictCodesMap = m
	return b
}

// Build creates the PgRepo.
func (b *PgRepoBuilder[E, F]) Build() *PgRepo[E, F] {
	return &PgRepo[E, F]{
		PgReadOnlyRepo:   b.roBuilder.Build(),
		conflictCodesMap: b.conflictCodesMap,
	}
}

// Create inserts the entity and returns it materialized by the database,
// including store-assigned id and timestamps (Returning("*")).
func (r *PgRepo[E, F]) Create(ctx context.Context, entity *E) (*E, error) {
	q := r.idb.NewInsert().Model(entity).Returning("*")
	q = r.applyInsertModelTableExpr(q)
	_, err := q.Exec(ctx)
	if err != nil {
		if code, exists := r.conflictCodesMap[pg.ConstraintName(err)]; exists {
			return nil, errx.New(
				fmt.Sprintf("conflict while creating %s", r.entityName),
				errx.WithCode(code),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(pg.GetPgErrorDetails(err, q)),
			)
		}
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return entity, nil
}

// Update persists the entity by primary key and returns it materialized.
func (r *PgRepo[E, F]) Update(ctx context.Context, entity *E) (*E, error) {
	q := r.idb.NewUpdate().Model(entity).WherePK().Returning("*")
	q = r.applyUpdateModelTableExpr(q)
	result, err := q.Exec(ctx)
	if err != nil {
		if code, exists := r.conflictCodesMap[pg.ConstraintName(err)]; exists {
			return nil, errx.New(
				fmt.Sprintf("conflict while updating %s", r.entityName),
				errx.WithCode(code),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(pg.GetPgErrorDetails(err, q)),
			)
		}
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	if rowsAffected == 0 {
		return nil, errx.New(
			fmt.Sprintf("no %s found to update", r.entityName),
			errx.WithCode(codeIncorrectRowsAffection),
			errx.WithDetails(pg.GetPgErrorDetails(err, q)),
		)
	}

	return entity, nil
}

// Delete removes the entity by primary key.
func (r *PgRepo[E, F]) Delete(ctx context.Context, entity *E) error {
	q := r.idb.NewDelete().Model(entity).WherePK()
	q = r.applyDeleteModelTableExpr(q)
	result, err := q.Exec(ctx)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	if rowsAffected == 0 {
		return errx.New(
			fmt.Sprintf("no %s found to delete", r.entityName),
			errx.WithCode(codeIncorrectRowsAffection),
			errx.WithDetails(pg.GetPgErrorDetails(err, q)),
		)
	}

	return nil
}

// BulkCreate inserts all entities in one statement.
func (r *PgRepo[E, F]) BulkCreate(ctx context.Context, entities []E) error {
	q := r.idb.NewInsert().Model(&entities)
	q = r.applyInsertModelTableExpr(q)
	_, err := q.Exec(ctx)
	if err != nil {
		if len(entities) > largeBulkSize {
			q = nil // avoid huge log size in large inserts
		}
		if code, exists := r.conflictCodesMap[pg.ConstraintName(err)]; exists {
			return errx.New(
				fmt.Sprintf("conflict while bulk creating %s", r.entityName),
				errx.WithCode(code),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(pg.GetPgErrorDetails(err, q)),
			)
		}
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return nil
}

// BulkUpdate updates all entities in one statement and verifies every row was affected.
func (r *PgRepo[E, F]) BulkUpdate(ctx context.Context, entities []E) error {
	q := r.idb.NewUpdate().Model(&entities).Bulk()
	q = r.applyUpdateModelTableExpr(q)
	result, err := q.Exec(ctx)
	if err != nil {
		if len(entities) > largeBulkSize {
			q = nil // avoid huge log size in large updates
		}
		if code, exists := r.conflictCodesMap[pg.ConstraintName(err)]; exists {
			return errx.New(
				fmt.Sprintf("conflict while bulk updating %s", r.entityName),
				errx.WithCode(code),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(pg.GetPgErrorDetails(err, q)),
			)
		}
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	if rowsAffected != int64(len(entities)) {
		if len(entities) > largeBulkSize {
			q = nil // avoid huge log size in large updates
		}
		return errx.New(
			fmt.Sprintf("not all %s were updated", r.entityName),
			errx.WithCode(codeIncorrectRowsAffection),
			errx.WithDetails(pg.GetPgErrorDetails(err, q)),
		)
	}

	return nil
}

// BulkDelete deletes all entities by primary key and verifies every row was affected.
func (r *PgRepo[E, F]) BulkDelete(ctx context.Context, entities []E) error {
	q := r.idb.NewDelete().Model(&entities).WherePK()
	q = r.applyDeleteModelTableExpr(q)
	result, err := q.Exec(ctx)
	if err != nil {
		if len(entities) > largeBulkSize {
			q = nil // avoid huge log size in large deletes
		}
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	if rowsAffected != int64(len(entities)) {
		if len(entities) > largeBulkSize {
			q = nil // avoid huge log size in large deletes
		}
		return errx.New(
			fmt.Sprintf("not all %s were deleted", r.entityName),
			errx.WithCode(codeIncorrectRowsAffection),
			errx.WithDetails(pg.GetPgErrorDetails(err, q)),
		)
	}

	return nil
}

func (r *PgRepo[E, F]) applyInsertModelTableExpr(q *bun.InsertQuery) *bun.InsertQuery {
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}

func (r *PgRepo[E, F]) applyUpdateModelTableExpr(q *bun.UpdateQuery) *bun.UpdateQuery {
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}

func (r *PgRepo[E, F]) applyDeleteModelTableExpr(q *bun.DeleteQuery) *bun.DeleteQuery {
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}
