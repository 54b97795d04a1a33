package genre

import "context"

type Repository interface {
	ListGenres(context context.Context, search string, limit, offset int) ([]*Genre, int, error)
	GetGenreBySlug(context context.Context, slug string) (*Genre, error)
	CreateGenre(context context.Context, genre *Genre) error
	DeleteGenreBySlug(context context.Context, slug string) error
}
