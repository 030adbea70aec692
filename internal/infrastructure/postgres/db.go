package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-task-manager/internal/domain/repository"
)

// DBTX is the subset of *pgxpool.Pool the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

// uniqueFields maps unique constraint names to the field reported to clients.
var uniqueFields = map[string]string{
	"users_email_key":       "email",
	"tasks_description_key": "description",
}

// mapError converts driver errors into repository errors. A malformed uuid
// cannot match any row, so it is reported as not found.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if field, ok := uniqueFields[pgErr.ConstraintName]; ok {
				return &repository.DuplicateError{Field: field}
			}
			return &repository.DuplicateError{Field: pgErr.ColumnName}
		case codeForeignKeyViolation, codeInvalidText:
			return repository.ErrNotFound
		}
	}
	return err
}

// requireRow turns a zero-row command into ErrNotFound.
func requireRow(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
