// Copyright (c) 2026 Critica. All rights reserved.

package title_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critica-app/critica/internal/core/category"
	"github.com/critica-app/critica/internal/core/genre"
	"github.com/critica-app/critica/internal/core/title"
	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/policy"
	"github.com/critica-app/critica/internal/platform/sec"
	"github.com/critica-app/critica/pkg/pointer"
)

// # Test Fixtures

var (
	admin   = policy.Actor{ID: "user-admin", Username: "keeper", Role: sec.RoleAdmin}
	regular = policy.Actor{ID: "user-plain", Username: "plain", Role: sec.RoleUser}
)

// # Test Fakes

// fakeTitleRepo is an in-memory Repository keyed by title ID.
type fakeTitleRepo struct {
	titles      map[string]*title.Title
	createCalls int
}

func newFakeTitleRepo() *fakeTitleRepo {
	return &fakeTitleRepo{titles: make(map[string]*title.Title)}
}

func (f *fakeTitleRepo) List(_ context.Context, filter title.Filter, limit, offset int) ([]*title.Title, int, error) {
	var matched []*title.Title
	for _, t := range f.titles {
		if filter.Name != "" && t.Name != filter.Name {
			continue
		}
		matched = append(matched, t)
	}

	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeTitleRepo) FindByID(_ context.Context, id string) (*title.Title, error) {
	t, ok := f.titles[id]
	if !ok {
		return nil, apperr.NotFound("Title")
	}
	return t, nil
}

func (f *fakeTitleRepo) Create(_ context.Context, t *title.Title) error {
	f.createCalls++
	stored := *t
	f.titles[t.ID] = &stored
	return nil
}

func (f *fakeTitleRepo) Update(_ context.Context, t *title.Title) error {
	existing, ok := f.titles[t.ID]
	if !ok {
		return apperr.NotFound("Title")
	}
	if t.Name != "" {
		existing.Name = t.Name
	}
	if t.Year != nil {
		existing.Year = t.Year
	}
	if t.CategoryID != nil {
		existing.CategoryID = t.CategoryID
	}
	if t.GenreIDs != nil {
		existing.GenreIDs = t.GenreIDs
	}
	return nil
}

func (f *fakeTitleRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.titles[id]; !ok {
		return apperr.NotFound("Title")
	}
	delete(f.titles, id)
	return nil
}

// fakeCategoryLookup resolves category slugs from a fixed map.
type fakeCategoryLookup struct {
	categories map[string]*category.Category
}

func (f *fakeCategoryLookup) GetCategoryBySlug(_ context.Context, slug string) (*category.Category, error) {
	c, ok := f.categories[slug]
	if !ok {
		return nil, apperr.NotFound("Category")
	}
	return c, nil
}

// fakeGenreLookup resolves genre slugs from a fixed map.
type fakeGenreLookup struct {
	genres map[string]*genre.Genre
}

func (f *fakeGenreLookup) GetGenreBySlug(_ context.Context, slug string) (*genre.Genre, error) {
	g, ok := f.genres[slug]
	if !ok {
		return nil, apperr.NotFound("Genre")
	}
	return g, nil
}

func newTitleService(t *testing.T) (*title.Service, *fakeTitleRepo) {
	t.Helper()

	repo := newFakeTitleRepo()
	categories := &fakeCategoryLookup{categories: map[string]*category.Category{
		"books":  {ID: 1, Name: "Books", Slug: "books"},
		"movies": {ID: 2, Name: "Movies", Slug: "movies"},
	}}
	genres := &fakeGenreLookup{genres: map[string]*genre.Genre{
		"drama":  {ID: 1, Name: "Drama", Slug: "drama"},
		"sci-fi": {ID: 2, Name: "Sci-Fi", Slug: "sci-fi"},
	}}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return title.NewService(repo, categories, genres, logger), repo
}

// # Tests

/*
TestCreateTitle_ResolvesClassification verifies slugs are mapped to storage
references before the title is persisted.
*/
func TestCreateTitle_ResolvesClassification(t *testing.T) {
	service, repo := newTitleService(t)

	created, err := service.CreateTitle(context.Background(), admin, &title.Title{
		Name:         "Solaris",
		Year:         pointer.To(1972),
		CategorySlug: pointer.To("movies"),
		GenreSlugs:   []string{"drama", "sci-fi"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	stored := repo.titles[created.ID]
	require.NotNil(t, stored)
	require.NotNil(t, stored.CategoryID)
	assert.Equal(t, 2, *stored.CategoryID)
	assert.Equal(t, []int{1, 2}, stored.GenreIDs)
}

/*
TestCreateTitle_RequiresCatalogRights denies everyone below admin before any
validation or storage work happens.
*/
func TestCreateTitle_RequiresCatalogRights(t *testing.T) {
	service, repo := newTitleService(t)

	for _, actor := range []policy.Actor{policy.Anonymous(), regular} {
		_, err := service.CreateTitle(context.Background(), actor, &title.Title{
			Name: "Not yours to add",
			Year: pointer.To(2001),
		})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	}

	assert.Zero(t, repo.createCalls)
}

/*
TestCreateTitle_Validation covers the required fields and the future-year
bound. The current year itself is allowed.
*/
func TestCreateTitle_Validation(t *testing.T) {
	currentYear := time.Now().Year()

	tests := []struct {
		name  string
		input *title.Title
		field string
	}{
		{"missing_name", &title.Title{Year: pointer.To(1990)}, title.FieldName},
		{"missing_year", &title.Title{Name: "Undated"}, title.FieldYear},
		{"future_year", &title.Title{Name: "From tomorrow", Year: pointer.To(currentYear + 1)}, title.FieldYear},
		{"negative_year", &title.Title{Name: "Before time", Year: pointer.To(-50)}, title.FieldYear},
		{"missing_category", &title.Title{Name: "Unfiled", Year: pointer.To(1990), GenreSlugs: []string{"drama"}}, title.FieldCategory},
		{"empty_genres", &title.Title{Name: "Unlabeled", Year: pointer.To(1990), CategorySlug: pointer.To("books")}, title.FieldGenre},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTitleService(t)

			_, err := service.CreateTitle(context.Background(), admin, tt.input)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}

	t.Run("current_year_accepted", func(t *testing.T) {
		service, _ := newTitleService(t)

		_, err := service.CreateTitle(context.Background(), admin, &title.Title{
			Name:         "Fresh release",
			Year:         pointer.To(currentYear),
			CategorySlug: pointer.To("books"),
			GenreSlugs:   []string{"drama"},
		})
		assert.NoError(t, err)
	})
}

/*
TestCreateTitle_UnknownSlug fails validation instead of silently dropping an
unknown classification.
*/
func TestCreateTitle_UnknownSlug(t *testing.T) {
	service, repo := newTitleService(t)
	ctx := context.Background()

	_, err := service.CreateTitle(ctx, admin, &title.Title{
		Name:         "Misfiled",
		Year:         pointer.To(1999),
		CategorySlug: pointer.To("podcasts"),
		GenreSlugs:   []string{"drama"},
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, title.FieldCategory, ae.Details[0].Field)

	_, err = service.CreateTitle(ctx, admin, &title.Title{
		Name:         "Mislabeled",
		Year:         pointer.To(1999),
		CategorySlug: pointer.To("books"),
		GenreSlugs:   []string{"drama", "vaporwave"},
	})
	require.Error(t, err)
	assert.Equal(t, title.FieldGenre, apperr.As(err).Details[0].Field)

	assert.Zero(t, repo.createCalls)
}

/*
TestUpdateTitle_PartialAndRead checks zero-valued fields stay untouched and
the updated title is re-read with its associations.
*/
func TestUpdateTitle_PartialAndRead(t *testing.T) {
	service, repo := newTitleService(t)
	ctx := context.Background()

	created, err := service.CreateTitle(ctx, admin, &title.Title{
		Name:         "Working title",
		Year:         pointer.To(1980),
		CategorySlug: pointer.To("books"),
		GenreSlugs:   []string{"drama"},
	})
	require.NoError(t, err)

	_, err = service.UpdateTitle(ctx, admin, &title.Title{
		ID:   created.ID,
		Year: pointer.To(1982),
	})
	require.NoError(t, err)

	stored := repo.titles[created.ID]
	assert.Equal(t, "Working title", stored.Name)
	assert.Equal(t, 1982, *stored.Year)

	// Future years are rejected on update too.
	_, err = service.UpdateTitle(ctx, admin, &title.Title{
		ID:   created.ID,
		Year: pointer.To(time.Now().Year() + 2),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestDeleteTitle_AdminOnly confirms deletion rights and the NotFound on a
second delete.
*/
func TestDeleteTitle_AdminOnly(t *testing.T) {
	service, _ := newTitleService(t)
	ctx := context.Background()

	created, err := service.CreateTitle(ctx, admin, &title.Title{
		Name:         "Disposable",
		Year:         pointer.To(1995),
		CategorySlug: pointer.To("books"),
		GenreSlugs:   []string{"drama"},
	})
	require.NoError(t, err)

	err = service.DeleteTitle(ctx, regular, created.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	require.NoError(t, service.DeleteTitle(ctx, admin, created.ID))

	err = service.DeleteTitle(ctx, admin, created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestGetTitle_MalformedID treats identifiers that cannot be UUIDs as missing.
*/
func TestGetTitle_MalformedID(t *testing.T) {
	service, _ := newTitleService(t)

	_, err := service.GetTitle(context.Background(), "42")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
