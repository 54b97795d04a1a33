package category

import "context"

type Repository interface {
	ListCategories(context context.Context, search string, limit, offset int) ([]*Category, int, error)
	GetCategoryBySlug(context context.Context, slug string) (*Category, error)
	CreateCategory(context context.Context, category *Category) error
	DeleteCategoryBySlug(context context.Context, slug string) error
}
