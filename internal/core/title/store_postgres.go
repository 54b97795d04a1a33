// Copyright (c) 2026 Critica. All rights reserved.

/*
Package title provides the PostgreSQL implementation for the catalogue's data access.

It leans on Postgres features to keep reads single-round-trip:
  - JSON Aggregation: Embeds the category object and genre array per row.
  - Window Functions: Calculates total result counts without a separate 'COUNT' query.
  - ACID Transactions: Ensures atomicity when updating titles and their junction rows.
*/
package title

import (
	"context"
	"encoding/json"
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

// NewPostgresRepository constructs a PostgreSQL backed title store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// selectColumns is the shared projection for list and single-row lookups:
// the title row, its embedded category object, and its aggregated genre array.
func selectColumns() string {
	return fmt.Sprintf(`
		t.%s, t.%s, t.%s, t.%s,
		t.%s, t.%s, t.%s, t.%s,
		(
			SELECT json_build_object('name', c.%s, 'slug', c.%s)
			FROM %s c
			WHERE c.%s = t.%s
		) AS category,
		COALESCE((
			SELECT json_agg(json_build_object('name', g.%s, 'slug', g.%s) ORDER BY g.%s)
			FROM %s g
			JOIN %s tg ON g.%s = tg.%s
			WHERE tg.%s = t.%s
		), '[]') AS genres
	`,
		schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Year, schema.CoreTitle.Description,
		schema.CoreTitle.RatingAvg, schema.CoreTitle.RatingCount, schema.CoreTitle.CreatedAt, schema.CoreTitle.UpdatedAt,
		schema.CoreCategory.Name, schema.CoreCategory.Slug,
		schema.CoreCategory.Table,
		schema.CoreCategory.ID, schema.CoreTitle.CategoryID,
		schema.CoreGenre.Name, schema.CoreGenre.Slug, schema.CoreGenre.Name,
		schema.CoreGenre.Table,
		schema.CoreTitleGenre.Table, schema.CoreGenre.ID, schema.CoreTitleGenre.GenreID,
		schema.CoreTitleGenre.TitleID, schema.CoreTitle.ID,
	)
}

// scanTitle maps one result row onto a Title, decoding the JSON projections.
func scanTitle(rows pgx.Rows, withTotal bool) (*Title, int, error) {
	title := &Title{}
	var categoryJSON, genresJSON []byte
	var total int

	targets := []any{
		&title.ID, &title.Name, &title.Year, &title.Description,
		&title.Rating, &title.RatingCount, &title.CreatedAt, &title.UpdatedAt,
		&categoryJSON, &genresJSON,
	}
	if withTotal {
		targets = append(targets, &total)
	}

	if err := rows.Scan(targets...); err != nil {
		return nil, 0, dberr.Wrap(err, "scan_title")
	}

	// The category subquery yields NULL when the title has no category.
	if len(categoryJSON) > 0 {
		if err := json.Unmarshal(categoryJSON, &title.Category); err != nil {
			return nil, 0, dberr.Wrap(err, "unmarshal_title_category")
		}
	}
	if err := json.Unmarshal(genresJSON, &title.Genres); err != nil {
		return nil, 0, dberr.Wrap(err, "unmarshal_title_genres")
	}

	return title, total, nil
}

// # Repository Implementation

/*
List returns a filtered, paginated slice of titles and the total count.

Description: Uses COUNT(*) OVER() to retrieve the total record count without a
second query, and JSON sub-queries to embed each title's category and genres
in the same round-trip.

Parameters:
  - context: context.Context
  - filter: Filter (category slug, genre slug, name substring, exact year)
  - limit: int
  - offset: int

Returns:
  - []*Title: Slice of hydrated title entities
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *postgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Title, int, error) {

	// Query build initialization
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s t
		WHERE TRUE
	`, selectColumns(), schema.CoreTitle.Table))

	// Apply Filters (Dynamic WHERE clause construction)
	if filter.CategorySlug != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s = (SELECT %s FROM %s WHERE %s = $%d)",
			schema.CoreTitle.CategoryID,
			schema.CoreCategory.ID, schema.CoreCategory.Table, schema.CoreCategory.Slug, argID))
		args = append(args, filter.CategorySlug)
		argID++
	}

	// Genre Filtering
	if filter.GenreSlug != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM %s tg
			JOIN %s g ON g.%s = tg.%s
			WHERE tg.%s = t.%s AND g.%s = $%d
		)`,
			schema.CoreTitleGenre.Table,
			schema.CoreGenre.Table, schema.CoreGenre.ID, schema.CoreTitleGenre.GenreID,
			schema.CoreTitleGenre.TitleID, schema.CoreTitle.ID, schema.CoreGenre.Slug, argID))
		args = append(args, filter.GenreSlug)
		argID++
	}

	// Name Substring Filtering
	if filter.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s ILIKE '%%' || $%d || '%%'", schema.CoreTitle.Name, argID))
		args = append(args, filter.Name)
		argID++
	}

	// Year Filtering
	if filter.Year != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s = $%d", schema.CoreTitle.Year, argID))
		args = append(args, *filter.Year)
		argID++
	}

	// Apply Sorting and Pagination
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY t.%s ASC, t.%s", schema.CoreTitle.Name, schema.CoreTitle.ID))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	// Query Execution
	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_titles")
	}
	defer rows.Close()

	titles := make([]*Title, 0)
	var totalCount int

	for rows.Next() {
		title, total, err := scanTitle(rows, true)
		if err != nil {
			return nil, 0, err
		}
		totalCount = total
		titles = append(titles, title)
	}

	return titles, totalCount, nil
}

/*
FindByID retrieves a title record by its primary key.

Description: Performs a single-row lookup using the shared JSON projection so
the category and genre associations arrive in the same round-trip.

Parameters:
  - context: context.Context
  - id: string (UUID primary key of the target title)

Returns:
  - *Title: The fully hydrated title entity, or nil if not found
  - error: apperr.NotFound if the title does not exist
*/
func (repository *postgresRepository) FindByID(context context.Context, id string) (*Title, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s t WHERE t.%s = $1`,
		selectColumns(), schema.CoreTitle.Table, schema.CoreTitle.ID)

	rows, err := repository.pool.Query(context, query, id)
	if err != nil {
		return nil, dberr.Wrap(err, "find_title_by_id")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, dberr.Wrap(err, "find_title_by_id")
		}
		return nil, apperr.NotFound("Title")
	}

	title, _, err := scanTitle(rows, false)
	return title, err
}

/*
Create persists a new title entity and its genre junction rows.

Description: Executes the insertion within a single transaction so that a
failed junction write leaves no orphaned title row behind.

Parameters:
  - context: context.Context
  - title: *Title (Metadata plus resolved CategoryID/GenreIDs)

Returns:
  - error: nil on a committed sequence, otherwise the classified storage error
*/
func (repository *postgresRepository) Create(context context.Context, title *Title) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_title")
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s
	`,
		schema.CoreTitle.Table,
		schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Year, schema.CoreTitle.Description, schema.CoreTitle.CategoryID,
		schema.CoreTitle.CreatedAt, schema.CoreTitle.UpdatedAt,
	)

	err = transaction.QueryRow(context, query,
		title.ID, title.Name, title.Year, title.Description, title.CategoryID,
	).Scan(&title.CreatedAt, &title.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_title")
	}

	if len(title.GenreIDs) > 0 {
		if err := syncGenres(context, transaction, title.ID, title.GenreIDs); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_create_title")
	}

	return nil
}

/*
Update persists metadata modifications to an existing title record.

Description: Builds a PATCH-style partial update dynamically, touching only
the populated fields, then replaces the genre junction rows when a genre set
was provided. Both steps share one transaction.

Parameters:
  - context: context.Context
  - title: *Title (Target ID and modified attributes)

Returns:
  - error: apperr.NotFound if the target record does not exist
*/
func (repository *postgresRepository) Update(context context.Context, title *Title) error {

	// Dynamic SET clause construction
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()", schema.CoreTitle.Table, schema.CoreTitle.UpdatedAt))

	var args []any
	argID := 1

	if title.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CoreTitle.Name, argID))
		args = append(args, title.Name)
		argID++
	}

	// Year
	if title.Year != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CoreTitle.Year, argID))
		args = append(args, *title.Year)
		argID++
	}

	// Description
	if title.Description != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CoreTitle.Description, argID))
		args = append(args, title.Description)
		argID++
	}

	// Category reference
	if title.CategoryID != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CoreTitle.CategoryID, argID))
		args = append(args, *title.CategoryID)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d", schema.CoreTitle.ID, argID))
	args = append(args, title.ID)

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_update_title")
	}
	defer transaction.Rollback(context)

	response, err := transaction.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update_title")
	}
	if response.RowsAffected() == 0 {
		return apperr.NotFound("Title")
	}

	// A non-nil (possibly empty) genre set replaces the junction rows.
	if title.GenreIDs != nil {
		if err := syncGenres(context, transaction, title.ID, title.GenreIDs); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_update_title")
	}

	return nil
}

/*
Delete removes a title permanently.

Description: Reviews under the title and comments under those reviews are
removed by the ON DELETE CASCADE chain declared in the schema; no application
level cleanup runs here.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: apperr.NotFound if missing
*/
func (repository *postgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.CoreTitle.Table, schema.CoreTitle.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_title")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Title")
	}

	return nil
}

/*
syncGenres synchronizes the title's genre associations.

Description: Implements a "Clear and Insert" strategy for the junction table.
All rows for the title are removed, then the new set is queued through a
pgx.Batch pipeline to bound the whole replacement to one network trip.

Parameters:
  - context: context.Context
  - transaction: pgx.Tx (The active transaction boundary)
  - titleID: string (UUID of the parent title)
  - genreIDs: []int (The genre keys to associate)

Returns:
  - error: Structural execution failures
*/
func syncGenres(context context.Context, transaction pgx.Tx, titleID string, genreIDs []int) error {
	delQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.CoreTitleGenre.Table, schema.CoreTitleGenre.TitleID)
	if _, err := transaction.Exec(context, delQuery, titleID); err != nil {
		return dberr.Wrap(err, "clear_title_genres")
	}

	if len(genreIDs) == 0 {
		return nil
	}

	insQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2)",
		schema.CoreTitleGenre.Table, schema.CoreTitleGenre.TitleID, schema.CoreTitleGenre.GenreID)
	batch := &pgx.Batch{}
	for _, genreID := range genreIDs {
		batch.Queue(insQuery, titleID, genreID)
	}

	response := transaction.SendBatch(context, batch)
	if err := response.Close(); err != nil {
		return dberr.Wrap(err, "batch_insert_title_genres")
	}

	return nil
}
