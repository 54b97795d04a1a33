package genre

import (
	"context"
	"log/slog"

	"github.com/critica-app/critica/internal/platform/policy"
	"github.com/critica-app/critica/internal/platform/validate"
	"github.com/critica-app/critica/pkg/slug"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListGenres(context context.Context, search string, limit, offset int) ([]*Genre, int, error) {
	return service.repo.ListGenres(context, search, limit, offset)
}

func (service *Service) GetGenreBySlug(context context.Context, genreSlug string) (*Genre, error) {
	return service.repo.GetGenreBySlug(context, genreSlug)
}

func (service *Service) CreateGenre(context context.Context, actor policy.Actor, genre *Genre) error {
	if err := policy.Check(actor, policy.ActionManageCatalog, ""); err != nil {
		return err
	}

	if genre.Slug == "" {
		genre.Slug = slug.From(genre.Name)
	}

	v := &validate.Validator{}
	v.Required(FieldName, genre.Name).MaxLen(FieldName, genre.Name, 256).
		Required(FieldSlug, genre.Slug).MaxLen(FieldSlug, genre.Slug, 50).
		Slug(FieldSlug, genre.Slug)
	if err := v.Err(); err != nil {
		return err
	}

	if err := service.repo.CreateGenre(context, genre); err != nil {
		return err
	}

	service.logger.Info("genre_created",
		slog.String("slug", genre.Slug),
		slog.String("actor", actor.Username))
	return nil
}

func (service *Service) DeleteGenre(context context.Context, actor policy.Actor, genreSlug string) error {
	if err := policy.Check(actor, policy.ActionManageCatalog, ""); err != nil {
		return err
	}

	if err := service.repo.DeleteGenreBySlug(context, genreSlug); err != nil {
		return err
	}

	service.logger.Info("genre_deleted",
		slog.String("slug", genreSlug),
		slog.String("actor", actor.Username))
	return nil
}
