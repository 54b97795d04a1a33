package genre

import "time"

// Genre is a fine-grained classification label. A title may carry any number
// of genres through the core.titlegenre junction.
type Genre struct {
	ID        int       `json:"-"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"-"`
}

const (
	FieldName = "name"
	FieldSlug = "slug"
)
