// Copyright (c) 2026 Critica. All rights reserved.

/*
Package review provides the PostgreSQL implementation of the review ledger.

Storage invariants live here:
  - UNIQUE (titleid, authorid) turns a duplicate review into a Conflict even
    under concurrent inserts.
  - Every mutation recomputes the owning title's ratingavg/ratingcount inside
    the same transaction, keeping the derived rating exact.
*/
package review

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

// # PostgreSQL Repository

// postgresRepository implements the [Repository] interface using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed review store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// selectColumns is the shared projection: the review row plus the author
// summary joined from the account table. The join is LEFT so detached
// reviews (deleted author) still hydrate.
func selectColumns() string {
	return fmt.Sprintf(`
		r.%s, r.%s, r.%s, r.%s, r.%s, r.%s,
		a.%s, a.%s
	`,
		schema.SocialReview.ID, schema.SocialReview.TitleID, schema.SocialReview.Text,
		schema.SocialReview.Score, schema.SocialReview.CreatedAt, schema.SocialReview.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.Username,
	)
}

// fromClause joins reviews to their (possibly deleted) authors.
func fromClause() string {
	return fmt.Sprintf(`%s r LEFT JOIN %s a ON a.%s = r.%s`,
		schema.SocialReview.Table, schema.UserAccount.Table,
		schema.UserAccount.ID, schema.SocialReview.AuthorID)
}

// scanReview maps one result row onto a Review, folding the nullable author
// columns into the embedded summary.
func scanReview(rows pgx.Rows, withTotal bool) (*Review, int, error) {
	review := &Review{}
	var authorID, authorUsername *string
	var total int

	targets := []any{
		&review.ID, &review.TitleID, &review.Text,
		&review.Score, &review.CreatedAt, &review.UpdatedAt,
		&authorID, &authorUsername,
	}
	if withTotal {
		targets = append(targets, &total)
	}

	if err := rows.Scan(targets...); err != nil {
		return nil, 0, dberr.Wrap(err, "scan_review")
	}

	if authorID != nil {
		review.Author = &Author{ID: *authorID}
		if authorUsername != nil {
			review.Author.Username = *authorUsername
		}
	}

	return review, total, nil
}

// # Repository Implementation

/*
ListByTitle returns the reviews of one title, newest first.

Description: Uses COUNT(*) OVER() for the total and a LEFT JOIN for author
hydration, keeping the listing a single round-trip.

Parameters:
  - context: context.Context
  - titleID: string (UUID)
  - limit: int
  - offset: int

Returns:
  - []*Review: Hydrated reviews
  - int: Total review count for the title
  - error: Storage failures
*/
func (repository *postgresRepository) ListByTitle(context context.Context, titleID string, limit, offset int) ([]*Review, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE r.%s = $1
		ORDER BY r.%s DESC, r.%s DESC
		LIMIT $2 OFFSET $3
	`,
		selectColumns(), fromClause(),
		schema.SocialReview.TitleID,
		schema.SocialReview.CreatedAt, schema.SocialReview.ID,
	)

	rows, err := repository.pool.Query(context, query, titleID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_reviews")
	}
	defer rows.Close()

	reviews := make([]*Review, 0)
	var totalCount int

	for rows.Next() {
		review, total, err := scanReview(rows, true)
		if err != nil {
			return nil, 0, err
		}
		totalCount = total
		reviews = append(reviews, review)
	}

	return reviews, totalCount, nil
}

/*
FindByID returns one review scoped to its title.

Parameters:
  - context: context.Context
  - titleID: string (UUID)
  - reviewID: string (UUID)

Returns:
  - *Review: The hydrated review
  - error: apperr.NotFound if missing or scoped to another title
*/
func (repository *postgresRepository) FindByID(context context.Context, titleID, reviewID string) (*Review, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE r.%s = $1 AND r.%s = $2
	`,
		selectColumns(), fromClause(),
		schema.SocialReview.ID, schema.SocialReview.TitleID,
	)

	rows, err := repository.pool.Query(context, query, reviewID, titleID)
	if err != nil {
		return nil, dberr.Wrap(err, "find_review_by_id")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, dberr.Wrap(err, "find_review_by_id")
		}
		return nil, apperr.NotFound("Review")
	}

	review, _, err := scanReview(rows, false)
	return review, err
}

/*
Create persists a new review and recomputes the title rating.

Description: The insert and the rating recomputation share one transaction,
so a reader never observes a review without its effect on the average. The
(titleid, authorid) unique constraint converts a duplicate into a Conflict
even when two requests race.

Parameters:
  - context: context.Context
  - review: *Review (TitleID, Author.ID, text, score)

Returns:
  - error: apperr.Conflict for a second review on the same title
*/
func (repository *postgresRepository) Create(context context.Context, review *Review) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_review")
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s
	`,
		schema.SocialReview.Table,
		schema.SocialReview.ID, schema.SocialReview.TitleID, schema.SocialReview.AuthorID,
		schema.SocialReview.Text, schema.SocialReview.Score,
		schema.SocialReview.CreatedAt, schema.SocialReview.UpdatedAt,
	)

	// Detached reviews (bulk import of historical data) carry no author.
	var authorID *string
	if review.Author != nil {
		authorID = &review.Author.ID
	}

	err = transaction.QueryRow(context, query,
		review.ID, review.TitleID, authorID, review.Text, review.Score,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("You have already reviewed this title")
		}
		return dberr.Wrap(err, "create_review")
	}

	if err := recomputeRating(context, transaction, review.TitleID); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_create_review")
	}

	return nil
}

/*
Update applies a partial update to a review.

Description: Builds the SET clause dynamically from the non-nil patch fields.
The rating is recomputed only when the score changed; a text-only edit leaves
the title row untouched.

Parameters:
  - context: context.Context
  - titleID: string (UUID)
  - reviewID: string (UUID)
  - patch: Patch

Returns:
  - error: apperr.NotFound if the scoped review does not exist
*/
func (repository *postgresRepository) Update(context context.Context, titleID, reviewID string, patch Patch) error {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()",
		schema.SocialReview.Table, schema.SocialReview.UpdatedAt))

	var args []any
	argID := 1

	if patch.Text != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.SocialReview.Text, argID))
		args = append(args, *patch.Text)
		argID++
	}

	if patch.Score != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.SocialReview.Score, argID))
		args = append(args, *patch.Score)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d AND %s = $%d",
		schema.SocialReview.ID, argID, schema.SocialReview.TitleID, argID+1))
	args = append(args, reviewID, titleID)

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_update_review")
	}
	defer transaction.Rollback(context)

	response, err := transaction.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update_review")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}

	if patch.Score != nil {
		if err := recomputeRating(context, transaction, titleID); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_update_review")
	}

	return nil
}

/*
Delete removes a review and recomputes the title rating.

Parameters:
  - context: context.Context
  - titleID: string (UUID)
  - reviewID: string (UUID)

Returns:
  - error: apperr.NotFound if the scoped review does not exist
*/
func (repository *postgresRepository) Delete(context context.Context, titleID, reviewID string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_delete_review")
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2",
		schema.SocialReview.Table, schema.SocialReview.ID, schema.SocialReview.TitleID)

	result, err := transaction.Exec(context, query, reviewID, titleID)
	if err != nil {
		return dberr.Wrap(err, "delete_review")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}

	if err := recomputeRating(context, transaction, titleID); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_delete_review")
	}

	return nil
}

/*
recomputeRating refreshes the title's denormalized rating columns.

Description: Computes ROUND(AVG(score), 1) and COUNT(*) over the title's
current review set and writes both onto the title row. With zero reviews the
aggregate yields NULL/0, which resets the title to "unrated". Runs inside the
caller's transaction so the review mutation and the derived value commit or
roll back together.

Parameters:
  - context: context.Context
  - transaction: pgx.Tx (The active transaction boundary)
  - titleID: string (UUID of the affected title)

Returns:
  - error: Execution failures
*/
func recomputeRating(context context.Context, transaction pgx.Tx, titleID string) error {
	query := fmt.Sprintf(`
		UPDATE %s t
		SET %s = sub.avg_score, %s = sub.review_count
		FROM (
			SELECT ROUND(AVG(%s), 1) AS avg_score, COUNT(*) AS review_count
			FROM %s
			WHERE %s = $1
		) sub
		WHERE t.%s = $1
	`,
		schema.CoreTitle.Table,
		schema.CoreTitle.RatingAvg, schema.CoreTitle.RatingCount,
		schema.SocialReview.Score,
		schema.SocialReview.Table,
		schema.SocialReview.TitleID,
		schema.CoreTitle.ID,
	)

	if _, err := transaction.Exec(context, query, titleID); err != nil {
		return dberr.Wrap(err, "recompute_title_rating")
	}

	return nil
}
