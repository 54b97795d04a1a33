package category

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/database/schema"
	"github.com/critica-app/critica/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListCategories(context context.Context, search string, limit, offset int) ([]*Category, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE ($1 = '' OR %s ILIKE '%%' || $1 || '%%')
		ORDER BY %s ASC
		LIMIT $2 OFFSET $3
	`,
		schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.Slug, schema.CoreCategory.CreatedAt,
		schema.CoreCategory.Table,
		schema.CoreCategory.Name,
		schema.CoreCategory.Name,
	)

	rows, err := repository.db.Query(context, query, search, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_categories")
	}
	defer rows.Close()

	categories := make([]*Category, 0)
	var total int

	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_category")
		}
		categories = append(categories, c)
	}

	return categories, total, nil
}

func (repository *PostgresRepository) GetCategoryBySlug(context context.Context, slug string) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.Slug, schema.CoreCategory.CreatedAt,
		schema.CoreCategory.Table, schema.CoreCategory.Slug)

	c := &Category{}
	err := repository.db.QueryRow(context, query, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get_category_by_slug")
	}

	return c, nil
}

func (repository *PostgresRepository) CreateCategory(context context.Context, category *Category) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) RETURNING %s, %s`,
		schema.CoreCategory.Table, schema.CoreCategory.Name, schema.CoreCategory.Slug,
		schema.CoreCategory.ID, schema.CoreCategory.CreatedAt)

	err := repository.db.QueryRow(context, query, category.Name, category.Slug).
		Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Category with this slug already exists")
		}
		return dberr.Wrap(err, "create_category")
	}

	return nil
}

func (repository *PostgresRepository) DeleteCategoryBySlug(context context.Context, slug string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CoreCategory.Table, schema.CoreCategory.Slug)

	result, err := repository.db.Exec(context, query, slug)
	if err != nil {
		return dberr.Wrap(err, "delete_category")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Category")
	}

	return nil
}
