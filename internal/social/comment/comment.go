// Copyright (c) 2026 Critica. All rights reserved.

/*
Package comment defines the discussion threads attached to reviews.

A comment is a plain-text reply under a review. Comments follow the same
ownership rules as reviews (authors edit their own, moderators edit any) and
the same survival rule: deleting the author detaches the comment, deleting
the review removes the thread.
*/
package comment

import "time"

// Comment is a single reply in a review's thread.
type Comment struct {
	ID       string  `json:"id"`
	ReviewID string  `json:"review_id"`
	Author   *Author `json:"author"` // nil when the authoring account was deleted
	Text     string  `json:"text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Author is the embedded identity summary on a comment.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthorID returns the owning account's ID, or "" for detached comments.
func (c *Comment) AuthorID() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.ID
}

// Patch holds the mutable comment fields for a partial update.
type Patch struct {
	Text *string
}

const (
	FieldText = "text"
)
