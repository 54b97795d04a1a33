package category

import "time"

// Category is a coarse classification for titles (Books, Films, Music).
// A title belongs to at most one category.
type Category struct {
	ID        int       `json:"-"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"-"`
}

// Field identifiers for validation messages.
const (
	FieldName   = "name"
	FieldSlug   = "slug"
	FieldSearch = "search"
)
