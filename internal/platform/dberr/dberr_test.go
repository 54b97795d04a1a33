// Copyright (c) 2026 Critica. All rights reserved.

package dberr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/dberr"
)

/*
TestWrap_Classification checks the mapping from driver errors to the
application error taxonomy.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			"no_rows",
			pgx.ErrNoRows,
			"NOT_FOUND", http.StatusNotFound,
		},
		{
			"unique_violation",
			&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "uq_review_title_author"},
			"CONFLICT", http.StatusConflict,
		},
		{
			"foreign_key_violation",
			&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			"VALIDATION_ERROR", http.StatusBadRequest,
		},
		{
			"check_violation",
			&pgconn.PgError{Code: pgerrcode.CheckViolation},
			"VALIDATION_ERROR", http.StatusBadRequest,
		},
		{
			"connection_failure",
			&pgconn.PgError{Code: pgerrcode.ConnectionFailure},
			"SERVICE_UNAVAILABLE", http.StatusServiceUnavailable,
		},
		{
			"deadline",
			fmt.Errorf("query: %w", context.DeadlineExceeded),
			"SERVICE_UNAVAILABLE", http.StatusServiceUnavailable,
		},
		{
			"unknown",
			errors.New("disk on fire"),
			"INTERNAL_ERROR", http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "test_query")
			require.Error(t, wrapped)

			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantCode, ae.Code)
			assert.Equal(t, tt.wantStatus, ae.HTTPStatus)
		})
	}
}

/*
TestWrap_Nil confirms a nil error passes through untouched.
*/
func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))
}

/*
TestConstraintHelpers covers the store-facing helpers used to attach
domain-specific Conflict messages.
*/
func TestConstraintHelpers(t *testing.T) {
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "uq_review_title_author"}
	fkey := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "fk_review_title"}

	assert.True(t, dberr.IsUniqueViolation(unique))
	assert.False(t, dberr.IsUniqueViolation(fkey))
	assert.True(t, dberr.IsForeignKeyViolation(fkey))
	assert.False(t, dberr.IsForeignKeyViolation(errors.New("plain")))

	assert.Equal(t, "uq_review_title_author", dberr.ConstraintName(unique))
	assert.Equal(t, "", dberr.ConstraintName(errors.New("plain")))

	// Wrapped chains still classify.
	assert.True(t, dberr.IsUniqueViolation(fmt.Errorf("insert review: %w", unique)))
}
