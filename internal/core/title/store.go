// Copyright (c) 2026 Critica. All rights reserved.

package title

import "context"

// # Title Data Access

// Repository defines the data access contract for the title domain.
type Repository interface {
	/*
		List returns a filtered, paginated slice of titles and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Criteria for category, genre, name, year)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Title: Slice of hydrated title records
		  - int: Total count of records matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Title, int, error)

	/*
		FindByID returns the title with the given ID, with its category and
		genres embedded.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Title: The hydrated domain entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Title, error)

	/*
		Create persists a new title and its genre junction rows.

		Parameters:
		  - context: context.Context
		  - title: *Title (Metadata plus resolved CategoryID/GenreIDs)

		Returns:
		  - error: Storage or constraint failures
	*/
	Create(context context.Context, title *Title) error

	/*
		Update persists changes to an existing title's mutable fields and
		synchronizes its genre junction rows.

		Parameters:
		  - context: context.Context
		  - title: *Title (Target ID and modified attributes)

		Returns:
		  - error: ErrNotFound if the target row does not exist
	*/
	Update(context context.Context, title *Title) error

	/*
		Delete removes a title permanently. Reviews and their comments are
		removed by the storage cascade.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: ErrNotFound if missing
	*/
	Delete(context context.Context, id string) error
}
