// Copyright (c) 2026 Critica. All rights reserved.

package comment_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/policy"
	"github.com/critica-app/critica/internal/platform/sec"
	"github.com/critica-app/critica/internal/social/comment"
	"github.com/critica-app/critica/internal/social/review"
)

const (
	titleID       = "0198b7a2-6f3e-7c41-9a85-3d2f6c9e4b10"
	otherTitleID  = "0198b7a2-6f3e-7c41-9a85-3d2f6c9e4b11"
	reviewID      = "0198b7a2-6f3e-7c41-9a85-3d2f6c9e4c01"
	missingReview = "0198b7a2-6f3e-7c41-9a85-3d2f6c9e4cff"
)

var (
	author    = policy.Actor{ID: "user-author", Username: "author", Role: sec.RoleUser}
	stranger  = policy.Actor{ID: "user-stranger", Username: "stranger", Role: sec.RoleUser}
	moderator = policy.Actor{ID: "user-mod", Username: "night_mod", Role: sec.RoleModerator}
)

type fakeCommentRepo struct {
	comments    map[string]*comment.Comment
	order       []string
	createCalls int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*comment.Comment)}
}

func (f *fakeCommentRepo) ListByReview(_ context.Context, reviewID string, limit, offset int) ([]*comment.Comment, int, error) {
	var matched []*comment.Comment
	for _, id := range f.order {
		c := f.comments[id]
		if c.ReviewID == reviewID {
			matched = append(matched, c)
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

func (f *fakeCommentRepo) FindByID(_ context.Context, reviewID, commentID string) (*comment.Comment, error) {
	c, ok := f.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return nil, apperr.NotFound("Comment")
	}
	return c, nil
}

func (f *fakeCommentRepo) Create(_ context.Context, c *comment.Comment) error {
	f.createCalls++
	stored := *c
	f.comments[c.ID] = &stored
	f.order = append(f.order, c.ID)
	return nil
}

func (f *fakeCommentRepo) Update(_ context.Context, reviewID, commentID string, patch comment.Patch) error {
	c, ok := f.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return apperr.NotFound("Comment")
	}
	if patch.Text != nil {
		c.Text = *patch.Text
	}
	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, reviewID, commentID string) error {
	c, ok := f.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return apperr.NotFound("Comment")
	}
	delete(f.comments, commentID)
	for i, id := range f.order {
		if id == commentID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// fakeReviewLookup resolves (title, review) pairs from a fixed set.
type fakeReviewLookup struct {
	reviews map[string]*review.Review
}

func (f *fakeReviewLookup) FindByID(_ context.Context, titleID, reviewID string) (*review.Review, error) {
	r, ok := f.reviews[reviewID]
	if !ok || r.TitleID != titleID {
		return nil, apperr.NotFound("Review")
	}
	return r, nil
}

func newCommentService(t *testing.T) (*comment.Service, *fakeCommentRepo) {
	t.Helper()

	repo := newFakeCommentRepo()
	reviews := &fakeReviewLookup{reviews: map[string]*review.Review{
		reviewID: {ID: reviewID, TitleID: titleID, Score: 8},
	}}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return comment.NewService(repo, reviews, logger), repo
}

// TestCommentThread_Lifecycle covers create, chronological listing, update,
// and delete on a single review's thread.
func TestCommentThread_Lifecycle(t *testing.T) {
	service, _ := newCommentService(t)
	ctx := context.Background()

	first, err := service.CreateComment(ctx, author, titleID, reviewID, "Opening the thread.")
	require.NoError(t, err)
	second, err := service.CreateComment(ctx, stranger, titleID, reviewID, "Joining in.")
	require.NoError(t, err)

	comments, total, err := service.ListComments(ctx, titleID, reviewID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)

	revised := "Opening the thread, revised."
	updated, err := service.UpdateComment(ctx, author, titleID, reviewID, first.ID, comment.Patch{Text: &revised})
	require.NoError(t, err)
	assert.Equal(t, revised, updated.Text)

	require.NoError(t, service.DeleteComment(ctx, author, titleID, reviewID, first.ID))
	_, total, err = service.ListComments(ctx, titleID, reviewID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

// TestCreateComment_DeniesAnonymous rejects anonymous replies before storage.
func TestCreateComment_DeniesAnonymous(t *testing.T) {
	service, repo := newCommentService(t)

	_, err := service.CreateComment(context.Background(), policy.Anonymous(), titleID, reviewID, "Anonymous reply.")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Zero(t, repo.createCalls)
}

// TestCreateComment_BlankText rejects whitespace-only replies.
func TestCreateComment_BlankText(t *testing.T) {
	service, _ := newCommentService(t)

	_, err := service.CreateComment(context.Background(), author, titleID, reviewID, "   ")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, comment.FieldText, ae.Details[0].Field)
}

// TestCreateComment_UnknownReview 404s when the review is missing or reached
// through the wrong title.
func TestCreateComment_UnknownReview(t *testing.T) {
	service, repo := newCommentService(t)
	ctx := context.Background()

	_, err := service.CreateComment(ctx, author, titleID, missingReview, "Into the void.")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	_, err = service.CreateComment(ctx, author, otherTitleID, reviewID, "Wrong title path.")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	assert.Zero(t, repo.createCalls)
}

// TestUpdateComment_Ownership checks the owner-or-moderator rule, including
// comments whose author account was deleted.
func TestUpdateComment_Ownership(t *testing.T) {
	service, repo := newCommentService(t)
	ctx := context.Background()

	created, err := service.CreateComment(ctx, author, titleID, reviewID, "Mine to edit.")
	require.NoError(t, err)

	hijack := "Stranger edit."
	_, err = service.UpdateComment(ctx, stranger, titleID, reviewID, created.ID, comment.Patch{Text: &hijack})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	modEdit := "Moderated."
	updated, err := service.UpdateComment(ctx, moderator, titleID, reviewID, created.ID, comment.Patch{Text: &modEdit})
	require.NoError(t, err)
	assert.Equal(t, modEdit, updated.Text)

	// A detached comment (author account deleted) belongs to nobody:
	// regular users cannot touch it, moderators can.
	repo.comments[created.ID].Author = nil

	orphanEdit := "Claiming the orphan."
	_, err = service.UpdateComment(ctx, author, titleID, reviewID, created.ID, comment.Patch{Text: &orphanEdit})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	_, err = service.UpdateComment(ctx, moderator, titleID, reviewID, created.ID, comment.Patch{Text: &orphanEdit})
	assert.NoError(t, err)
}

// TestDeleteComment_Ownership mirrors the update rule for deletion.
func TestDeleteComment_Ownership(t *testing.T) {
	service, _ := newCommentService(t)
	ctx := context.Background()

	created, err := service.CreateComment(ctx, author, titleID, reviewID, "Short-lived.")
	require.NoError(t, err)

	err = service.DeleteComment(ctx, stranger, titleID, reviewID, created.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	assert.NoError(t, service.DeleteComment(ctx, moderator, titleID, reviewID, created.ID))
}
