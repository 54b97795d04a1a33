// Copyright (c) 2026 Critica. All rights reserved.

package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/critica-app/critica/internal/platform/request"
	"github.com/critica-app/critica/internal/platform/respond"
	"github.com/critica-app/critica/pkg/pagination"
)

// Handler implements the HTTP layer for review comment threads, mounted at
// /api/v1/titles/{titleID}/reviews/{reviewID}/comments.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listComments)
	router.Post("/", handler.createComment)
	router.Get("/{commentID}", handler.getComment)
	router.Patch("/{commentID}", handler.updateComment)
	router.Delete("/{commentID}", handler.deleteComment)
}

func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	titleID := requestutil.ID(request, "titleID")
	reviewID := requestutil.ID(request, "reviewID")

	comments, total, err := handler.service.ListComments(request.Context(), titleID, reviewID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, comments, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getComment(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")
	reviewID := requestutil.ID(request, "reviewID")
	commentID := requestutil.ID(request, "commentID")

	comment, err := handler.service.GetComment(request.Context(), titleID, reviewID, commentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comment)
}

type createCommentRequest struct {
	Text string `json:"text"`
}

type updateCommentRequest struct {
	Text *string `json:"text"`
}

func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")
	reviewID := requestutil.ID(request, "reviewID")

	var input createCommentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.CreateComment(request.Context(), requestutil.Actor(request), titleID, reviewID, input.Text)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, comment)
}

func (handler *Handler) updateComment(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")
	reviewID := requestutil.ID(request, "reviewID")
	commentID := requestutil.ID(request, "commentID")

	var input updateCommentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.UpdateComment(request.Context(), requestutil.Actor(request), titleID, reviewID, commentID, Patch{Text: input.Text})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comment)
}

func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")
	reviewID := requestutil.ID(request, "reviewID")
	commentID := requestutil.ID(request, "commentID")

	if err := handler.service.DeleteComment(request.Context(), requestutil.Actor(request), titleID, reviewID, commentID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
