// Copyright (c) 2026 Critica. All rights reserved.

/*
Package title defines the reviewable works of the Critica catalogue.

A title is any work users can review: a book, a film, an album. Titles are
classified by a single category and any number of genres, and carry a derived
rating aggregated from their review set.

Core Responsibility:

  - Catalogue: Title metadata (name, year, description) and classification.
  - Rating: The denormalized average score, recomputed transactionally by the
    review domain on every review mutation.
  - Discovery: Filtering by category, genre, name, and release year.

The rating fields are read-only from this package's perspective: only the
review domain writes them.
*/
package title

import "time"

// # Core Entities

// Title is the central aggregate of the Critica catalogue.
// It represents a single reviewable work.
type Title struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Year        *int      `json:"year"`
	Description string    `json:"description"`
	Category    *Category `json:"category"`
	Genres      []Genre   `json:"genre"`

	// # Derived Rating
	// Maintained by the review domain inside the review transaction.
	// A nil rating means the title has no reviews yet.
	Rating      *float64 `json:"rating"`
	RatingCount int      `json:"rating_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// # Junction Slugs (Input only)
	CategorySlug *string  `json:"-"`
	GenreSlugs   []string `json:"-"`

	// # Resolved References (Populated by the service before storage)
	CategoryID *int  `json:"-"`
	GenreIDs   []int `json:"-"`
}

// Category is the embedded classification summary on a title.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Genre is an embedded genre label on a title.
type Genre struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// # Search & Filtering

// Filter holds the parameters for a filtered title list query.
type Filter struct {
	CategorySlug string `json:"category,omitempty"`
	GenreSlug    string `json:"genre,omitempty"`
	Name         string `json:"name,omitempty"`
	Year         *int   `json:"year,omitempty"`
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldYear        = "year"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldGenre       = "genre"
)
