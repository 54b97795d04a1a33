// Copyright (c) 2026 Critica. All rights reserved.

package comment

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/database/schema"
	"github.com/critica-app/critica/internal/platform/dberr"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed comment store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// selectColumns joins each comment to its (possibly deleted) author.
func selectColumns() string {
	return fmt.Sprintf(`
		c.%s, c.%s, c.%s, c.%s, c.%s,
		a.%s, a.%s
	`,
		schema.SocialComment.ID, schema.SocialComment.ReviewID, schema.SocialComment.Text,
		schema.SocialComment.CreatedAt, schema.SocialComment.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.Username,
	)
}

func fromClause() string {
	return fmt.Sprintf(`%s c LEFT JOIN %s a ON a.%s = c.%s`,
		schema.SocialComment.Table, schema.UserAccount.Table,
		schema.UserAccount.ID, schema.SocialComment.AuthorID)
}

func scanComment(rows pgx.Rows, withTotal bool) (*Comment, int, error) {
	comment := &Comment{}
	var authorID, authorUsername *string
	var total int

	targets := []any{
		&comment.ID, &comment.ReviewID, &comment.Text,
		&comment.CreatedAt, &comment.UpdatedAt,
		&authorID, &authorUsername,
	}
	if withTotal {
		targets = append(targets, &total)
	}

	if err := rows.Scan(targets...); err != nil {
		return nil, 0, dberr.Wrap(err, "scan_comment")
	}

	if authorID != nil {
		comment.Author = &Author{ID: *authorID}
		if authorUsername != nil {
			comment.Author.Username = *authorUsername
		}
	}

	return comment, total, nil
}

// ListByReview returns the review's comments in thread order (oldest first).
func (repository *postgresRepository) ListByReview(context context.Context, reviewID string, limit, offset int) ([]*Comment, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE c.%s = $1
		ORDER BY c.%s ASC, c.%s ASC
		LIMIT $2 OFFSET $3
	`,
		selectColumns(), fromClause(),
		schema.SocialComment.ReviewID,
		schema.SocialComment.CreatedAt, schema.SocialComment.ID,
	)

	rows, err := repository.pool.Query(context, query, reviewID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_comments")
	}
	defer rows.Close()

	comments := make([]*Comment, 0)
	var totalCount int

	for rows.Next() {
		comment, total, err := scanComment(rows, true)
		if err != nil {
			return nil, 0, err
		}
		totalCount = total
		comments = append(comments, comment)
	}

	return comments, totalCount, nil
}

func (repository *postgresRepository) FindByID(context context.Context, reviewID, commentID string) (*Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE c.%s = $1 AND c.%s = $2
	`,
		selectColumns(), fromClause(),
		schema.SocialComment.ID, schema.SocialComment.ReviewID,
	)

	rows, err := repository.pool.Query(context, query, commentID, reviewID)
	if err != nil {
		return nil, dberr.Wrap(err, "find_comment_by_id")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, dberr.Wrap(err, "find_comment_by_id")
		}
		return nil, apperr.NotFound("Comment")
	}

	comment, _, err := scanComment(rows, false)
	return comment, err
}

func (repository *postgresRepository) Create(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s
	`,
		schema.SocialComment.Table,
		schema.SocialComment.ID, schema.SocialComment.ReviewID,
		schema.SocialComment.AuthorID, schema.SocialComment.Text,
		schema.SocialComment.CreatedAt, schema.SocialComment.UpdatedAt,
	)

	var authorID *string
	if comment.Author != nil {
		authorID = &comment.Author.ID
	}

	err := repository.pool.QueryRow(context, query,
		comment.ID, comment.ReviewID, authorID, comment.Text,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_comment")
	}

	return nil
}

func (repository *postgresRepository) Update(context context.Context, reviewID, commentID string, patch Patch) error {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()",
		schema.SocialComment.Table, schema.SocialComment.UpdatedAt))

	var args []any
	argID := 1

	if patch.Text != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.SocialComment.Text, argID))
		args = append(args, *patch.Text)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d AND %s = $%d",
		schema.SocialComment.ID, argID, schema.SocialComment.ReviewID, argID+1))
	args = append(args, commentID, reviewID)

	response, err := repository.pool.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update_comment")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}

	return nil
}

func (repository *postgresRepository) Delete(context context.Context, reviewID, commentID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2",
		schema.SocialComment.Table, schema.SocialComment.ID, schema.SocialComment.ReviewID)

	result, err := repository.pool.Exec(context, query, commentID, reviewID)
	if err != nil {
		return dberr.Wrap(err, "delete_comment")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}

	return nil
}
