package schema

// CoreTitleTable represents the 'core.title' table
type CoreTitleTable struct {
	Table       string
	ID          string
	Name        string
	Year        string
	Description string
	CategoryID  string
	RatingAvg   string
	RatingCount string
	CreatedAt   string
	UpdatedAt   string
}

// CoreTitle is the schema definition for core.title
var CoreTitle = CoreTitleTable{
	Table:       "core.title",
	ID:          "id",
	Name:        "name",
	Year:        "year",
	Description: "description",
	CategoryID:  "categoryid",
	RatingAvg:   "ratingavg",
	RatingCount: "ratingcount",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t CoreTitleTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Year, t.Description, t.CategoryID,
		t.RatingAvg, t.RatingCount, t.CreatedAt, t.UpdatedAt,
	}
}
