package category

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

func (service *Service) ListCategories(context context.Context, search string, limit, offset int) ([]*Category, int, error) {
	return service.repo.ListCategories(context, search, limit, offset)
}

func (service *Service) GetCategoryBySlug(context context.Context, categorySlug string) (*Category, error) {
	return service.repo.GetCategoryBySlug(context, categorySlug)
}

// CreateCategory persists a new category. Catalog mutations are restricted to
// administrators; the slug is derived from the name when the caller omits it.
func (service *Service) CreateCategory(context context.Context, actor policy.Actor, category *Category) error {
	if err := policy.Check(actor, policy.ActionManageCatalog, ""); err != nil {
		return err
	}

	if category.Slug == "" {
		category.Slug = slug.From(category.Name)
	}

	v := &validate.Validator{}
	v.Required(FieldName, category.Name).MaxLen(FieldName, category.Name, 256).
		Required(FieldSlug, category.Slug).MaxLen(FieldSlug, category.Slug, 50).
		Slug(FieldSlug, category.Slug)
	if err := v.Err(); err != nil {
		return err
	}

	if err := service.repo.CreateCategory(context, category); err != nil {
		return err
	}

	service.logger.Info("category_created",
		slog.String("slug", category.Slug),
		slog.String("actor", actor.Username))
	return nil
}

// DeleteCategory removes a category by slug. Titles referencing it keep their
// rows; the reference is cleared by the store layer.
func (service *Service) DeleteCategory(context context.Context, actor policy.Actor, categorySlug string) error {
	if err := policy.Check(actor, policy.ActionManageCatalog, ""); err != nil {
		return err
	}

	if err := service.repo.DeleteCategoryBySlug(context, categorySlug); err != nil {
		return err
	}

	service.logger.Info("category_deleted",
		slog.String("slug", categorySlug),
		slog.String("actor", actor.Username))
	return nil
}
