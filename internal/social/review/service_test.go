// Copyright (c) 2026 Critica. All rights reserved.

package review_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critica-app/critica/internal/core/title"
	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/policy"
	"github.com/critica-app/critica/internal/platform/sec"
	"github.com/critica-app/critica/internal/social/review"
)

// # Test Fixtures

const (
	knownTitleID  = "0198b7a2-6f3e-7c41-9a85-3d2f6c9e4b10"
	secondTitleID = "0198b7a2-6f3e-7c41-9a85-3d2f6c9e4b11"
	missingTitle  = "0198b7a2-6f3e-7c41-9a85-3d2f6c9e4bff"
)

var (
	alice     = policy.Actor{ID: "user-alice", Username: "alice", Role: sec.RoleUser}
	bob       = policy.Actor{ID: "user-bob", Username: "bob", Role: sec.RoleUser}
	carol     = policy.Actor{ID: "user-carol", Username: "carol", Role: sec.RoleUser}
	moderator = policy.Actor{ID: "user-mod", Username: "night_mod", Role: sec.RoleModerator}
)

// # Test Fakes

// fakeReviewRepo is an in-memory Repository that honors the storage contract:
// pair uniqueness per (title, author) and the derived rating kept in step
// with every mutation.
type fakeReviewRepo struct {
	reviews map[string]*review.Review
	order   []string

	ratings map[string]*float64
	counts  map[string]int

	createCalls int
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{
		reviews: make(map[string]*review.Review),
		ratings: make(map[string]*float64),
		counts:  make(map[string]int),
	}
}

func (f *fakeReviewRepo) ListByTitle(_ context.Context, titleID string, limit, offset int) ([]*review.Review, int, error) {
	var matched []*review.Review
	for i := len(f.order) - 1; i >= 0; i-- {
		r := f.reviews[f.order[i]]
		if r.TitleID == titleID {
			matched = append(matched, r)
		}
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

func (f *fakeReviewRepo) FindByID(_ context.Context, titleID, reviewID string) (*review.Review, error) {
	r, ok := f.reviews[reviewID]
	if !ok || r.TitleID != titleID {
		return nil, apperr.NotFound("Review")
	}
	return r, nil
}

func (f *fakeReviewRepo) Create(_ context.Context, r *review.Review) error {
	f.createCalls++

	for _, id := range f.order {
		existing := f.reviews[id]
		if existing.TitleID == r.TitleID && existing.AuthorID() != "" && existing.AuthorID() == r.AuthorID() {
			return apperr.Conflict("You have already reviewed this title")
		}
	}

	stored := *r
	f.reviews[r.ID] = &stored
	f.order = append(f.order, r.ID)
	f.recompute(r.TitleID)
	return nil
}

func (f *fakeReviewRepo) Update(_ context.Context, titleID, reviewID string, patch review.Patch) error {
	r, ok := f.reviews[reviewID]
	if !ok || r.TitleID != titleID {
		return apperr.NotFound("Review")
	}
	if patch.Text != nil {
		r.Text = *patch.Text
	}
	if patch.Score != nil {
		r.Score = *patch.Score
	}
	f.recompute(titleID)
	return nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, titleID, reviewID string) error {
	r, ok := f.reviews[reviewID]
	if !ok || r.TitleID != titleID {
		return apperr.NotFound("Review")
	}
	delete(f.reviews, reviewID)
	for i, id := range f.order {
		if id == reviewID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	f.recompute(titleID)
	return nil
}

// recompute mirrors the storage contract: average rounded to one decimal,
// nil when the title has no reviews left.
func (f *fakeReviewRepo) recompute(titleID string) {
	var sum, count int
	for _, id := range f.order {
		r := f.reviews[id]
		if r.TitleID == titleID {
			sum += r.Score
			count++
		}
	}

	if count == 0 {
		f.ratings[titleID] = nil
		f.counts[titleID] = 0
		return
	}

	average := math.Round(float64(sum)/float64(count)*10) / 10
	f.ratings[titleID] = &average
	f.counts[titleID] = count
}

// fakeTitleLookup resolves title IDs from a fixed map.
type fakeTitleLookup struct {
	titles map[string]*title.Title
}

func (f *fakeTitleLookup) FindByID(_ context.Context, id string) (*title.Title, error) {
	t, ok := f.titles[id]
	if !ok {
		return nil, apperr.NotFound("Title")
	}
	return t, nil
}

func newReviewService(t *testing.T) (*review.Service, *fakeReviewRepo) {
	t.Helper()

	repo := newFakeReviewRepo()
	titles := &fakeTitleLookup{titles: map[string]*title.Title{
		knownTitleID:  {ID: knownTitleID, Name: "Solaris"},
		secondTitleID: {ID: secondTitleID, Name: "Blade Runner"},
	}}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return review.NewService(repo, titles, logger), repo
}

// # Tests

/*
TestReviewLifecycle_RatingDerivation walks a title through the full review
lifecycle and checks the derived rating after every mutation: create,
re-score, delete, and the reset back to unrated.
*/
func TestReviewLifecycle_RatingDerivation(t *testing.T) {
	service, repo := newReviewService(t)
	ctx := context.Background()

	first, err := service.CreateReview(ctx, alice, knownTitleID, "Slow and hypnotic in the best way.", 8)
	require.NoError(t, err)
	require.NotNil(t, repo.ratings[knownTitleID])
	assert.Equal(t, 8.0, *repo.ratings[knownTitleID])
	assert.Equal(t, 1, repo.counts[knownTitleID])

	second, err := service.CreateReview(ctx, bob, knownTitleID, "Did not land for me.", 6)
	require.NoError(t, err)
	assert.Equal(t, 7.0, *repo.ratings[knownTitleID])
	assert.Equal(t, 2, repo.counts[knownTitleID])

	// Re-scoring recomputes the average.
	newScore := 10
	updated, err := service.UpdateReview(ctx, alice, knownTitleID, first.ID, review.Patch{Score: &newScore})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Score)
	assert.Equal(t, 8.0, *repo.ratings[knownTitleID])

	// Removing one review leaves the survivor's score as the average.
	require.NoError(t, service.DeleteReview(ctx, bob, knownTitleID, second.ID))
	assert.Equal(t, 10.0, *repo.ratings[knownTitleID])
	assert.Equal(t, 1, repo.counts[knownTitleID])

	// Deleting the last review resets the title to unrated.
	require.NoError(t, service.DeleteReview(ctx, alice, knownTitleID, first.ID))
	assert.Nil(t, repo.ratings[knownTitleID])
	assert.Equal(t, 0, repo.counts[knownTitleID])
}

/*
TestReviewRating_RoundsToOneDecimal checks the non-terminating average case.
*/
func TestReviewRating_RoundsToOneDecimal(t *testing.T) {
	service, repo := newReviewService(t)
	ctx := context.Background()

	_, err := service.CreateReview(ctx, alice, knownTitleID, "Perfect.", 10)
	require.NoError(t, err)
	_, err = service.CreateReview(ctx, bob, knownTitleID, "Nearly perfect.", 9)
	require.NoError(t, err)
	_, err = service.CreateReview(ctx, carol, knownTitleID, "Also nearly perfect.", 9)
	require.NoError(t, err)

	require.NotNil(t, repo.ratings[knownTitleID])
	assert.InDelta(t, 9.3, *repo.ratings[knownTitleID], 0.001)
}

/*
TestCreateReview_DeniesAnonymous confirms an anonymous visitor is rejected
with Forbidden before storage is ever consulted.
*/
func TestCreateReview_DeniesAnonymous(t *testing.T) {
	service, repo := newReviewService(t)

	_, err := service.CreateReview(context.Background(), policy.Anonymous(), knownTitleID, "Drive-by take.", 5)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)
	assert.Zero(t, repo.createCalls)
}

/*
TestCreateReview_OnePerAuthor verifies a second review by the same author on
the same title fails with Conflict while another title stays open.
*/
func TestCreateReview_OnePerAuthor(t *testing.T) {
	service, _ := newReviewService(t)
	ctx := context.Background()

	_, err := service.CreateReview(ctx, alice, knownTitleID, "First impressions.", 7)
	require.NoError(t, err)

	_, err = service.CreateReview(ctx, alice, knownTitleID, "Second thoughts.", 3)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
	assert.Equal(t, http.StatusConflict, ae.HTTPStatus)

	// The same author may still review a different title.
	_, err = service.CreateReview(ctx, alice, secondTitleID, "Different work, fresh slate.", 9)
	assert.NoError(t, err)
}

/*
TestCreateReview_Validation covers blank text and both sides of the score
bounds, and confirms the boundary scores themselves are accepted.
*/
func TestCreateReview_Validation(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		score int
		field string
	}{
		{"blank_text", "   ", 5, review.FieldText},
		{"score_below_min", "Fine enough.", 0, review.FieldScore},
		{"score_above_max", "Fine enough.", 11, review.FieldScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newReviewService(t)

			_, err := service.CreateReview(context.Background(), alice, knownTitleID, tt.text, tt.score)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}

	t.Run("boundary_scores_accepted", func(t *testing.T) {
		service, _ := newReviewService(t)
		ctx := context.Background()

		_, err := service.CreateReview(ctx, alice, knownTitleID, "Rock bottom.", review.ScoreMin)
		assert.NoError(t, err)
		_, err = service.CreateReview(ctx, bob, knownTitleID, "Top marks.", review.ScoreMax)
		assert.NoError(t, err)
	})
}

/*
TestCreateReview_UnknownTitle ensures reviews cannot attach to titles that do
not exist, including malformed identifiers.
*/
func TestCreateReview_UnknownTitle(t *testing.T) {
	service, repo := newReviewService(t)
	ctx := context.Background()

	_, err := service.CreateReview(ctx, alice, missingTitle, "Ghost title.", 5)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	_, err = service.CreateReview(ctx, alice, "42", "Numeric id from another life.", 5)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	assert.Zero(t, repo.createCalls)
}

/*
TestUpdateReview_Ownership checks the owner-or-moderator rule: strangers are
rejected, the author and moderators get through.
*/
func TestUpdateReview_Ownership(t *testing.T) {
	service, _ := newReviewService(t)
	ctx := context.Background()

	created, err := service.CreateReview(ctx, alice, knownTitleID, "Original wording.", 7)
	require.NoError(t, err)

	revised := "Stranger rewrite."
	_, err = service.UpdateReview(ctx, bob, knownTitleID, created.ID, review.Patch{Text: &revised})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	ownEdit := "Original wording, sharpened."
	updated, err := service.UpdateReview(ctx, alice, knownTitleID, created.ID, review.Patch{Text: &ownEdit})
	require.NoError(t, err)
	assert.Equal(t, ownEdit, updated.Text)
	assert.Equal(t, 7, updated.Score)

	modEdit := "Moderated wording."
	updated, err = service.UpdateReview(ctx, moderator, knownTitleID, created.ID, review.Patch{Text: &modEdit})
	require.NoError(t, err)
	assert.Equal(t, modEdit, updated.Text)
}

/*
TestUpdateReview_ScoreBounds confirms the same score rules apply on update as
on creation.
*/
func TestUpdateReview_ScoreBounds(t *testing.T) {
	service, _ := newReviewService(t)
	ctx := context.Background()

	created, err := service.CreateReview(ctx, alice, knownTitleID, "Solid.", 7)
	require.NoError(t, err)

	tooHigh := 11
	_, err = service.UpdateReview(ctx, alice, knownTitleID, created.ID, review.Patch{Score: &tooHigh})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, review.FieldScore, ae.Details[0].Field)
}

/*
TestDeleteReview_Ownership mirrors the update rule for deletion.
*/
func TestDeleteReview_Ownership(t *testing.T) {
	service, repo := newReviewService(t)
	ctx := context.Background()

	created, err := service.CreateReview(ctx, alice, knownTitleID, "Here today.", 7)
	require.NoError(t, err)

	err = service.DeleteReview(ctx, bob, knownTitleID, created.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	require.NoError(t, service.DeleteReview(ctx, moderator, knownTitleID, created.ID))
	assert.Equal(t, 0, repo.counts[knownTitleID])
}

/*
TestGetReview_ScopedToTitle verifies a review reached through the wrong title
does not exist from the caller's point of view.
*/
func TestGetReview_ScopedToTitle(t *testing.T) {
	service, _ := newReviewService(t)
	ctx := context.Background()

	created, err := service.CreateReview(ctx, alice, knownTitleID, "Scoped to its title.", 8)
	require.NoError(t, err)

	found, err := service.GetReview(ctx, knownTitleID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = service.GetReview(ctx, secondTitleID, created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestListReviews_NewestFirst checks ordering, totals, and the 404 on listing
an unknown title.
*/
func TestListReviews_NewestFirst(t *testing.T) {
	service, _ := newReviewService(t)
	ctx := context.Background()

	_, err := service.CreateReview(ctx, alice, knownTitleID, "The first word.", 6)
	require.NoError(t, err)
	latest, err := service.CreateReview(ctx, bob, knownTitleID, "The last word.", 9)
	require.NoError(t, err)

	reviews, total, err := service.ListReviews(ctx, knownTitleID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, latest.ID, reviews[0].ID)

	_, _, err = service.ListReviews(ctx, missingTitle, 10, 0)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
