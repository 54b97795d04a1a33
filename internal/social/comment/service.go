// Copyright (c) 2026 Critica. All rights reserved.

package comment

import (
	"context"
	"log/slog"

	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/metrics"
	"github.com/critica-app/critica/internal/platform/policy"
	"github.com/critica-app/critica/internal/platform/validate"
	"github.com/critica-app/critica/internal/social/review"
	"github.com/critica-app/critica/pkg/uuid"
)

// ReviewLookup resolves the owning review for nested comment routes,
// scoped to its title. The review repository satisfies it.
type ReviewLookup interface {
	FindByID(context context.Context, titleID, reviewID string) (*review.Review, error)
}

// Service orchestrates comment operations. Authorization mirrors the review
// domain: creation needs an authenticated actor, editing needs ownership or
// moderator rank.
type Service struct {
	repo    Repository
	reviews ReviewLookup
	logger  *slog.Logger
}

func NewService(repo Repository, reviews ReviewLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		reviews: reviews,
		logger:  logger,
	}
}

// ListComments returns the review's thread in chronological order. The
// (title, review) pair must resolve or the whole nested route 404s.
func (service *Service) ListComments(context context.Context, titleID, reviewID string, limit, offset int) ([]*Comment, int, error) {
	if err := service.reviewExists(context, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return service.repo.ListByReview(context, reviewID, limit, offset)
}

// GetComment retrieves a single comment scoped to its review and title.
func (service *Service) GetComment(context context.Context, titleID, reviewID, commentID string) (*Comment, error) {
	if err := service.reviewExists(context, titleID, reviewID); err != nil {
		return nil, err
	}
	if !isUUID(commentID) {
		return nil, apperr.NotFound("Comment")
	}
	return service.repo.FindByID(context, reviewID, commentID)
}

// CreateComment posts a reply under a review. Anonymous actors are denied
// with Forbidden before any storage work.
func (service *Service) CreateComment(context context.Context, actor policy.Actor, titleID, reviewID, text string) (*Comment, error) {
	if err := policy.Check(actor, policy.ActionCreateContent, ""); err != nil {
		return nil, err
	}

	v := &validate.Validator{}
	v.Required(FieldText, text)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := service.reviewExists(context, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:       uuid.New(),
		ReviewID: reviewID,
		Author:   &Author{ID: actor.ID, Username: actor.Username},
		Text:     text,
	}

	if err := service.repo.Create(context, comment); err != nil {
		return nil, err
	}

	metrics.CommentsCreatedTotal.Inc()
	service.logger.Info("comment_created",
		slog.String("comment_id", comment.ID),
		slog.String("review_id", reviewID),
		slog.String("author", actor.Username))

	return comment, nil
}

// UpdateComment applies a partial update. Authors edit their own comments;
// moderators and admins edit any.
func (service *Service) UpdateComment(context context.Context, actor policy.Actor, titleID, reviewID, commentID string, patch Patch) (*Comment, error) {
	existing, err := service.GetComment(context, titleID, reviewID, commentID)
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
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, reviewID, commentID, patch); err != nil {
		return nil, err
	}

	service.logger.Info("comment_updated",
		slog.String("comment_id", commentID),
		slog.String("actor", actor.Username))

	return service.repo.FindByID(context, reviewID, commentID)
}

// DeleteComment removes a comment under the same ownership rule as updating.
func (service *Service) DeleteComment(context context.Context, actor policy.Actor, titleID, reviewID, commentID string) error {
	existing, err := service.GetComment(context, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if err := policy.Check(actor, policy.ActionEditContent, existing.AuthorID()); err != nil {
		return err
	}

	if err := service.repo.Delete(context, reviewID, commentID); err != nil {
		return err
	}

	service.logger.Info("comment_deleted",
		slog.String("comment_id", commentID),
		slog.String("actor", actor.Username))
	return nil
}

// reviewExists resolves the owning (title, review) pair.
func (service *Service) reviewExists(context context.Context, titleID, reviewID string) error {
	if !isUUID(titleID) {
		return apperr.NotFound("Title")
	}
	if !isUUID(reviewID) {
		return apperr.NotFound("Review")
	}
	_, err := service.reviews.FindByID(context, titleID, reviewID)
	return err
}

// isUUID reports whether the identifier has the canonical UUID length.
func isUUID(s string) bool {
	return len(s) == 36
}
