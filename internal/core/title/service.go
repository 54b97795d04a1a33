// Copyright (c) 2026 Critica. All rights reserved.

/*
Package title implements the business logic for catalogue management.

The service validates incoming data, resolves category and genre slugs to
storage references, and enforces the catalogue authorization policy before
any mutation reaches the repository.
*/
package title

import (
	"context"
	"log/slog"
	"time"

	"github.com/critica-app/critica/internal/core/category"
	"github.com/critica-app/critica/internal/core/genre"
	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/policy"
	"github.com/critica-app/critica/internal/platform/validate"
	"github.com/critica-app/critica/pkg/uuid"
)

// # Collaborator Contracts

// CategoryLookup resolves category slugs during title classification.
// The category repository satisfies it.
type CategoryLookup interface {
	GetCategoryBySlug(context context.Context, slug string) (*category.Category, error)
}

// GenreLookup resolves genre slugs during title classification.
// The genre repository satisfies it.
type GenreLookup interface {
	GetGenreBySlug(context context.Context, slug string) (*genre.Genre, error)
}

// # Service Implementation

// Service orchestrates title operations: validation, slug resolution,
// authorization, and persistence.
type Service struct {
	repo       Repository
	categories CategoryLookup
	genres     GenreLookup
	logger     *slog.Logger
}

// NewService constructs the title [Service] with its dependencies.
func NewService(repo Repository, categories CategoryLookup, genres GenreLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		genres:     genres,
		logger:     logger,
	}
}

// # Read Operations

/*
ListTitles returns a filtered, paginated list of titles.

Description: Reads are open to every actor, including anonymous visitors, so
no policy check applies here.

Parameters:
  - context: context.Context
  - filter: Filter (category slug, genre slug, name substring, exact year)
  - limit: int
  - offset: int

Returns:
  - []*Title: Matching titles with category, genres, and rating embedded
  - int: Total count matching the filter
  - error: Storage failures
*/
func (service *Service) ListTitles(context context.Context, filter Filter, limit, offset int) ([]*Title, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetTitle retrieves a single title by ID.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Title: The hydrated title
  - error: apperr.NotFound when the id is unknown or malformed
*/
func (service *Service) GetTitle(context context.Context, id string) (*Title, error) {
	if !isUUID(id) {
		return nil, apperr.NotFound("Title")
	}
	return service.repo.FindByID(context, id)
}

// # Write Operations

/*
CreateTitle validates and persists a new title.

Description: Requires catalogue management rights. A category and at least
one genre are mandatory at creation; the slugs are resolved to storage
references, and an unknown slug fails validation rather than silently
dropping the association. Release years in the future are rejected.

Parameters:
  - context: context.Context
  - actor: policy.Actor (The authenticated identity performing the call)
  - title: *Title (Name, year, description, and classification slugs)

Returns:
  - *Title: The stored title, re-read with embedded associations
  - error: Forbidden, validation, or storage failures
*/
func (service *Service) CreateTitle(context context.Context, actor policy.Actor, title *Title) (*Title, error) {
	if err := policy.Check(actor, policy.ActionManageCatalog, ""); err != nil {
		return nil, err
	}

	v := &validate.Validator{}
	v.Required(FieldName, title.Name).MaxLen(FieldName, title.Name, 256)
	v.Custom(FieldYear, title.Year == nil, "This field is required")
	if title.Year != nil {
		v.Range(FieldYear, *title.Year, 0, time.Now().Year())
	}
	v.Custom(FieldCategory, title.CategorySlug == nil, "This field is required").
		Custom(FieldGenre, len(title.GenreSlugs) == 0, "This field is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := service.resolveClassification(context, title); err != nil {
		return nil, err
	}

	if title.ID == "" {
		title.ID = uuid.New()
	}

	if err := service.repo.Create(context, title); err != nil {
		return nil, err
	}

	service.logger.Info("title_created",
		slog.String("title_id", title.ID),
		slog.String("name", title.Name),
		slog.String("actor", actor.Username))

	return service.repo.FindByID(context, title.ID)
}

/*
UpdateTitle applies a partial update to an existing title.

Description: Zero-valued fields are treated as "not provided" and left
untouched. A provided genre list fully replaces the previous genre set.
The same year bound as creation applies.

Parameters:
  - context: context.Context
  - actor: policy.Actor
  - title: *Title (Target ID plus the fields to change)

Returns:
  - *Title: The updated title, re-read with embedded associations
  - error: Forbidden, validation, NotFound, or storage failures
*/
func (service *Service) UpdateTitle(context context.Context, actor policy.Actor, title *Title) (*Title, error) {
	if err := policy.Check(actor, policy.ActionManageCatalog, ""); err != nil {
		return nil, err
	}

	if !isUUID(title.ID) {
		return nil, apperr.NotFound("Title")
	}

	v := &validate.Validator{}
	if title.Name != "" {
		v.MaxLen(FieldName, title.Name, 256)
	}
	if title.Year != nil {
		v.Range(FieldYear, *title.Year, 0, time.Now().Year())
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := service.resolveClassification(context, title); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, title); err != nil {
		return nil, err
	}

	service.logger.Info("title_updated",
		slog.String("title_id", title.ID),
		slog.String("actor", actor.Username))

	return service.repo.FindByID(context, title.ID)
}

/*
DeleteTitle removes a title and, through the storage cascade, its reviews
and their comments.

Parameters:
  - context: context.Context
  - actor: policy.Actor
  - id: string (UUID)

Returns:
  - error: Forbidden, NotFound, or storage failures
*/
func (service *Service) DeleteTitle(context context.Context, actor policy.Actor, id string) error {
	if err := policy.Check(actor, policy.ActionManageCatalog, ""); err != nil {
		return err
	}

	if !isUUID(id) {
		return apperr.NotFound("Title")
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("title_deleted",
		slog.String("title_id", id),
		slog.String("actor", actor.Username))
	return nil
}

// # Helpers

// resolveClassification maps the input category and genre slugs onto storage
// references. Unknown slugs fail validation: the caller named a
// classification that does not exist.
func (service *Service) resolveClassification(context context.Context, title *Title) error {
	if title.CategorySlug != nil {
		resolved, err := service.categories.GetCategoryBySlug(context, *title.CategorySlug)
		if err != nil {
			return apperr.ValidationError("Validation failed", apperr.FieldError{
				Field:   FieldCategory,
				Message: "Unknown category slug",
			})
		}
		title.CategoryID = &resolved.ID
	}

	if title.GenreSlugs != nil {
		title.GenreIDs = make([]int, 0, len(title.GenreSlugs))
		for _, genreSlug := range title.GenreSlugs {
			resolved, err := service.genres.GetGenreBySlug(context, genreSlug)
			if err != nil {
				return apperr.ValidationError("Validation failed", apperr.FieldError{
					Field:   FieldGenre,
					Message: "Unknown genre slug: " + genreSlug,
				})
			}
			title.GenreIDs = append(title.GenreIDs, resolved.ID)
		}
	}

	return nil
}

// isUUID reports whether the identifier has the canonical UUID length.
// Storage performs the authoritative parse.
func isUUID(s string) bool {
	return len(s) == 36
}
