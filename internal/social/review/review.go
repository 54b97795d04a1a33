// Copyright (c) 2026 Critica. All rights reserved.

/*
Package review defines the review ledger of the Critica platform.

A review is a scored opinion (1-10) a user attaches to a title. Each user may
hold at most one review per title; the storage layer enforces the pair
uniqueness so the rule survives concurrent requests.

Core Responsibility:

  - Ledger: Review text, score, and authorship per title.
  - Rating: Every review mutation recomputes the owning title's average score
    and review count inside the same transaction.
  - Ownership: Authors edit their own reviews; moderators and admins edit any.

Reviews outlive their author: deleting an account detaches the review instead
of removing it.
*/
package review

import "time"

// # Core Entities

// Review is a single scored opinion on a title.
type Review struct {
	ID      string  `json:"id"`
	TitleID string  `json:"title_id"`
	Author  *Author `json:"author"` // nil when the authoring account was deleted
	Text    string  `json:"text"`
	Score   int     `json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Author is the embedded identity summary on a review.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthorID returns the owning account's ID, or "" for detached reviews.
// The policy engine treats "" as owned by nobody.
func (r *Review) AuthorID() string {
	if r.Author == nil {
		return ""
	}
	return r.Author.ID
}

// Patch holds the mutable review fields for a partial update.
// A nil field is left untouched.
type Patch struct {
	Text  *string
	Score *int
}

// # Score Bounds

const (
	// ScoreMin is the lowest permitted review score.
	ScoreMin = 1
	// ScoreMax is the highest permitted review score.
	ScoreMax = 10
)

// # Field Identifiers

const (
	FieldText  = "text"
	FieldScore = "score"
)
