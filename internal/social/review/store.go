// Copyright (c) 2026 Critica. All rights reserved.

package review

import "context"

// # Review Data Access

// Repository defines the data access contract for the review domain.
//
// Every mutating method also recomputes the owning title's derived rating in
// the same transaction, so the catalogue never exposes a stale average.
type Repository interface {
	/*
		ListByTitle returns the reviews of one title, newest first, plus the
		total count.

		Parameters:
		  - context: context.Context
		  - titleID: string (UUID of the owning title)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Review: Reviews with the author summary embedded
		  - int: Total review count for the title
		  - error: Storage failures
	*/
	ListByTitle(context context.Context, titleID string, limit, offset int) ([]*Review, int, error)

	/*
		FindByID returns one review scoped to its title. A review reached
		through the wrong title does not exist.

		Parameters:
		  - context: context.Context
		  - titleID: string (UUID)
		  - reviewID: string (UUID)

		Returns:
		  - *Review: The hydrated review
		  - error: ErrNotFound if missing or scoped to another title
	*/
	FindByID(context context.Context, titleID, reviewID string) (*Review, error)

	/*
		Create persists a new review and recomputes the title rating.

		Parameters:
		  - context: context.Context
		  - review: *Review (TitleID, author ID via Author, text, score)

		Returns:
		  - error: Conflict when the (title, author) pair already holds a review
	*/
	Create(context context.Context, review *Review) error

	/*
		Update applies a partial update to a review and recomputes the title
		rating when the score changed.

		Parameters:
		  - context: context.Context
		  - titleID: string (UUID)
		  - reviewID: string (UUID)
		  - patch: Patch (nil fields untouched)

		Returns:
		  - error: ErrNotFound if the scoped review does not exist
	*/
	Update(context context.Context, titleID, reviewID string, patch Patch) error

	/*
		Delete removes a review and recomputes the title rating.

		Parameters:
		  - context: context.Context
		  - titleID: string (UUID)
		  - reviewID: string (UUID)

		Returns:
		  - error: ErrNotFound if the scoped review does not exist
	*/
	Delete(context context.Context, titleID, reviewID string) error
}
