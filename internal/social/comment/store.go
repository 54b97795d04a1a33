// Copyright (c) 2026 Critica. All rights reserved.

package comment

import "context"

// Repository defines the data access contract for the comment domain.
// All lookups are scoped to the owning review.
type Repository interface {
	ListByReview(context context.Context, reviewID string, limit, offset int) ([]*Comment, int, error)
	FindByID(context context.Context, reviewID, commentID string) (*Comment, error)
	Create(context context.Context, comment *Comment) error
	Update(context context.Context, reviewID, commentID string, patch Patch) error
	Delete(context context.Context, reviewID, commentID string) error
}
