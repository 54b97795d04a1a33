// Copyright (c) 2026 Critica. All rights reserved.

/*
Package review implements the business rules of the review ledger.

The service sequence for every mutation is fixed: consult the authorization
policy, validate the payload, resolve the target, then delegate to storage.
A policy denial therefore never reaches the database.
*/
package review

import (
	"context"
	"log/slog"

	"github.com/critica-app/critica/internal/core/title"
	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/metrics"
	"github.com/critica-app/critica/internal/platform/policy"
	"github.com/critica-app/critica/internal/platform/validate"
	"github.com/critica-app/critica/pkg/uuid"
)

// # Collaborator Contracts

// TitleLookup resolves the owning title for nested review routes.
// The title repository satisfies it.
type TitleLookup interface {
	FindByID(context context.Context, id string) (*title.Title, error)
}

// # Service Implementation

// Service orchestrates review operations: authorization, validation,
// persistence, and the derived rating side effect (delegated to storage).
type Service struct {
	repo   Repository
	titles TitleLookup
	logger *slog.Logger
}

// NewService constructs the review [Service] with its dependencies.
func NewService(repo Repository, titles TitleLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		titles: titles,
		logger: logger,
	}
}

// # Read Operations

/*
ListReviews returns the reviews of one title, newest first.

Description: The owning title must exist; the nested route 404s as a whole
otherwise. Reads are open to anonymous visitors.

Parameters:
  - context: context.Context
  - titleID: string (UUID)
  - limit: int
  - offset: int

Returns:
  - []*Review: Reviews with author summaries embedded
  - int: Total review count for the title
  - error: apperr.NotFound when the title is unknown
*/
func (service *Service) ListReviews(context context.Context, titleID string, limit, offset int) ([]*Review, int, error) {
	if err := service.titleExists(context, titleID); err != nil {
		return nil, 0, err
	}
	return service.repo.ListByTitle(context, titleID, limit, offset)
}

/*
GetReview retrieves a single review scoped to its title.

Parameters:
  - context: context.Context
  - titleID: string (UUID)
  - reviewID: string (UUID)

Returns:
  - *Review: The hydrated review
  - error: apperr.NotFound if missing or scoped to another title
*/
func (service *Service) GetReview(context context.Context, titleID, reviewID string) (*Review, error) {
	if !isUUID(titleID) {
		return nil, apperr.NotFound("Title")
	}
	if !isUUID(reviewID) {
		return nil, apperr.NotFound("Review")
	}
	return service.repo.FindByID(context, titleID, reviewID)
}

// # Write Operations

/*
CreateReview posts a new review on a title.

Description: Requires an authenticated actor; the policy engine denies
anonymous creation with Forbidden. A second review by the same author on the
same title fails with Conflict, enforced by the storage constraint so the
rule holds under race. The title's rating is recomputed in the same
transaction as the insert.

Parameters:
  - context: context.Context
  - actor: policy.Actor
  - titleID: string (UUID)
  - text: string
  - score: int (inclusive 1..10)

Returns:
  - *Review: The stored review with the author summary attached
  - error: Forbidden, validation, NotFound (title), or Conflict failures
*/
func (service *Service) CreateReview(context context.Context, actor policy.Actor, titleID, text string, score int) (*Review, error) {
	if err := policy.Check(actor, policy.ActionCreateContent, ""); err != nil {
		return nil, err
	}

	v := &validate.Validator{}
	v.Required(FieldText, text)
	v.Range(FieldScore, score, ScoreMin, ScoreMax)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := service.titleExists(context, titleID); err != nil {
		return nil, err
	}

	review := &Review{
		ID:      uuid.New(),
		TitleID: titleID,
		Author:  &Author{ID: actor.ID, Username: actor.Username},
		Text:    text,
		Score:   score,
	}

	if err := service.repo.Create(context, review); err != nil {
		return nil, err
	}

	metrics.ReviewsCreatedTotal.Inc()
	service.logger.Info("review_created",
		slog.String("review_id", review.ID),
		slog.String("title_id", titleID),
		slog.String("author", actor.Username),
		slog.Int("score", score))

	return review, nil
}

/*
UpdateReview applies a partial update to a review.

Description: The author may edit their own review; moderators and admins may
edit any. Provided fields obey the same rules as creation: text must be
non-blank, score must stay within 1..10. A score change recomputes the
title's rating transactionally.

Parameters:
  - context: context.Context
  - actor: policy.Actor
  - titleID: string (UUID)
  - reviewID: string (UUID)
  - patch: Patch (nil fields untouched)

Returns:
  - *Review: The review re-read after the update
  - error: Forbidden, validation, or NotFound failures
*/
func (service *Service) UpdateReview(context context.Context, actor policy.Actor, titleID, reviewID string, patch Patch) (*Review, error) {
	existing, err := service.GetReview(context, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if err := policy.Check(actor, policy.ActionEditContent, existing.AuthorID()); err != nil {
		return nil, err
	}

	v := &validate.Validator{}
	if patch.Text != nil {
		v.Required(FieldText, *patch.Text)
	}
	if patch.Score != nil {
		v.Range(FieldScore, *patch.Score, ScoreMin, ScoreMax)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, titleID, reviewID, patch); err != nil {
		return nil, err
	}

	service.logger.Info("review_updated",
		slog.String("review_id", reviewID),
		slog.String("title_id", titleID),
		slog.String("actor", actor.Username))

	return service.repo.FindByID(context, titleID, reviewID)
}

/*
DeleteReview removes a review.

Description: Same ownership rule as updating. The title's rating is
recomputed in the deletion transaction; deleting the last review resets the
title to unrated.

Parameters:
  - context: context.Context
  - actor: policy.Actor
  - titleID: string (UUID)
  - reviewID: string (UUID)

Returns:
  - error: Forbidden or NotFound failures
*/
func (service *Service) DeleteReview(context context.Context, actor policy.Actor, titleID, reviewID string) error {
	existing, err := service.GetReview(context, titleID, reviewID)
	if err != nil {
		return err
	}

	if err := policy.Check(actor, policy.ActionEditContent, existing.AuthorID()); err != nil {
		return err
	}

	if err := service.repo.Delete(context, titleID, reviewID); err != nil {
		return err
	}

	service.logger.Info("review_deleted",
		slog.String("review_id", reviewID),
		slog.String("title_id", titleID),
		slog.String("actor", actor.Username))
	return nil
}

// # Helpers

// titleExists resolves the owning title, translating malformed IDs into the
// same NotFound the lookup produces.
func (service *Service) titleExists(context context.Context, titleID string) error {
	if !isUUID(titleID) {
		return apperr.NotFound("Title")
	}
	_, err := service.titles.FindByID(context, titleID)
	return err
}

// isUUID reports whether the identifier has the canonical UUID length.
// Storage performs the authoritative parse.
func isUUID(s string) bool {
	return len(s) == 36
}
