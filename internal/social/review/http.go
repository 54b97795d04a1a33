// Copyright (c) 2026 Critica. All rights reserved.

/*
Package review provides the HTTP interface for the review ledger.

Routes are nested under the owning title:

	/api/v1/titles/{titleID}/reviews

# Routing Strategy

  - Reads are public.
  - Mutations are policy-gated in the service: creation needs an
    authenticated actor, editing needs ownership or moderator rank.
*/
package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/critica-app/critica/internal/platform/request"
	"github.com/critica-app/critica/internal/platform/respond"
	"github.com/critica-app/critica/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for reviews.
type Handler struct {
	service *Service
}

// NewHandler constructs a new review [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the review endpoints on a router already scoped to
// one title ({titleID} is bound by the parent route).
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listReviews)
	router.Post("/", handler.createReview)
	router.Get("/{reviewID}", handler.getReview)
	router.Patch("/{reviewID}", handler.updateReview)
	router.Delete("/{reviewID}", handler.deleteReview)
}

// # Read Endpoints

/*
GET /api/v1/titles/{titleID}/reviews.

Description: Retrieves the title's reviews, newest first.

Request:
  - titleID: string (UUID)
  - limit: int
  - page: int

Response:
  - 200: []Review: Paginated list of reviews
  - 404: ErrNotFound: Title not found
*/
func (handler *Handler) listReviews(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	titleID := requestutil.ID(request, "titleID")

	reviews, total, err := handler.service.ListReviews(request.Context(), titleID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, reviews, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/titles/{titleID}/reviews/{reviewID}.

Response:
  - 200: Review: Success
  - 404: ErrNotFound: Title or review not found
*/
func (handler *Handler) getReview(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")
	reviewID := requestutil.ID(request, "reviewID")

	review, err := handler.service.GetReview(request.Context(), titleID, reviewID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, review)
}

// # Request Payloads

// createReviewRequest defines the inbound JSON schema for posting a review.
type createReviewRequest struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// updateReviewRequest defines the inbound JSON schema for patching a review.
// Absent fields keep their stored values.
type updateReviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// # Mutation Endpoints

/*
POST /api/v1/titles/{titleID}/reviews.

Description: Posts a review on the title. One review per user per title.

Request (Body):
  - text: string
  - score: int (1..10)

Response:
  - 201: Review: Created review
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: ErrForbidden: Anonymous caller
  - 404: ErrNotFound: Title not found
  - 409: ErrConflict: Caller already reviewed this title
*/
func (handler *Handler) createReview(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")

	var input createReviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.service.CreateReview(request.Context(), requestutil.Actor(request), titleID, input.Text, input.Score)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, review)
}

/*
PATCH /api/v1/titles/{titleID}/reviews/{reviewID}.

Description: Partially updates a review. Authors edit their own; moderators
and admins edit any.

Request (Body):
  - text: string (optional)
  - score: int (optional, 1..10)

Response:
  - 200: Review: Updated review
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: ErrForbidden: Not the author and below moderator
  - 404: ErrNotFound: Title or review not found
*/
func (handler *Handler) updateReview(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")
	reviewID := requestutil.ID(request, "reviewID")

	var input updateReviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch := Patch{Text: input.Text, Score: input.Score}
	review, err := handler.service.UpdateReview(request.Context(), requestutil.Actor(request), titleID, reviewID, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, review)
}

/*
DELETE /api/v1/titles/{titleID}/reviews/{reviewID}.

Description: Removes a review. Same ownership rule as updating. The title's
rating is recomputed in the deletion transaction.

Response:
  - 204: No Content: Success
  - 403: ErrForbidden: Not the author and below moderator
  - 404: ErrNotFound: Title or review not found
*/
func (handler *Handler) deleteReview(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")
	reviewID := requestutil.ID(request, "reviewID")

	if err := handler.service.DeleteReview(request.Context(), requestutil.Actor(request), titleID, reviewID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
