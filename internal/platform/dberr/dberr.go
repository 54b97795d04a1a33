// Copyright (c) 2026 Critica. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/critica-app/critica/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Classification
//
//   - pgx.ErrNoRows            -> 404 Not Found
//   - SQLSTATE 23505 (unique)  -> 409 Conflict
//   - SQLSTATE 23503 (fkey)    -> 400 Validation (referenced record missing)
//   - SQLSTATE 23514 (check)   -> 400 Validation
//   - SQLSTATE class 08 / ctx  -> 503 Service Unavailable (safe to retry)
//   - anything else            -> 500 Internal
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint violations carry a SQLSTATE we can classify.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return apperr.Conflict("Resource already exists")
		case pgErr.Code == pgerrcode.ForeignKeyViolation:
			return apperr.ValidationError("Referenced resource does not exist")
		case pgErr.Code == pgerrcode.CheckViolation:
			return apperr.ValidationError("Value violates a storage constraint")
		case pgerrcode.IsConnectionException(pgErr.Code):
			return apperr.ServiceUnavailable("Storage temporarily unavailable")
		}
	}

	// 3. Cancelled or timed-out work never leaves partial state: the
	// transaction rolls back, so the caller may retry.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.ServiceUnavailable("Storage temporarily unavailable")
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// IsUniqueViolation reports whether err is a SQLSTATE 23505 unique
// constraint violation. Stores use it to attach a domain-specific Conflict
// message before falling back to Wrap.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation reports whether err is a SQLSTATE 23503 foreign key
// violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// ConstraintName extracts the violated constraint's name, or "" when err is
// not a constraint violation.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
