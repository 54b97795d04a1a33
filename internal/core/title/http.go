// Copyright (c) 2026 Critica. All rights reserved.

/*
Package title provides the HTTP interface for browsing and managing the catalogue.

# Routing Strategy

  - Public: Discovery endpoints accessible to all visitors (GET).
  - Restricted: Mutative endpoints are policy-gated inside the service; the
    engine requires the admin role for catalogue changes.

The handler translates between the web/JSON layer and the domain [Service].
*/
package title

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/critica-app/critica/internal/platform/request"
	"github.com/critica-app/critica/internal/platform/respond"
	"github.com/critica-app/critica/pkg/convert"
	"github.com/critica-app/critica/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for catalogue management and discovery.
type Handler struct {
	service *Service
}

// NewHandler constructs a new title [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the title domain's endpoints on the given router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listTitles)
	router.Post("/", handler.createTitle)
	router.Get("/{titleID}", handler.getTitle)
	router.Patch("/{titleID}", handler.updateTitle)
	router.Delete("/{titleID}", handler.deleteTitle)
}

// # Discovery Endpoints

/*
GET /api/v1/titles.

Description: Retrieves a paginated list of titles with embedded category,
genres, and rating. Supports filtering by classification and metadata.

Request:
  - category: string (Category slug)
  - genre: string (Genre slug)
  - name: string (Substring match)
  - year: int (Exact match)
  - limit: int
  - page: int

Response:
  - 200: []Title: Paginated list of titles
*/
func (handler *Handler) listTitles(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		CategorySlug: queryParams.Get("category"),
		GenreSlug:    queryParams.Get("genre"),
		Name:         queryParams.Get("name"),
	}

	if yearParam := queryParams.Get("year"); yearParam != "" {
		year := convert.ToInt(yearParam)
		filter.Year = &year
	}

	titles, total, err := handler.service.ListTitles(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, titles, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/titles/{titleID}.

Description: Retrieves a single title with its category, genres, and derived
rating embedded.

Request:
  - titleID: string (UUID)

Response:
  - 200: Title: Success
  - 404: ErrNotFound: Title not found
*/
func (handler *Handler) getTitle(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")

	title, err := handler.service.GetTitle(request.Context(), titleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, title)
}

// # Request Payloads

// titleRequest defines the inbound JSON schema for title creation and patching.
type titleRequest struct {
	Name        string   `json:"name"`
	Year        *int     `json:"year"`
	Description string   `json:"description"`
	Category    *string  `json:"category"` // Category slug
	Genre       []string `json:"genre"`    // Genre slugs
}

// entity maps the payload onto a domain Title. Absent JSON fields keep their
// zero value, which the service and store treat as "not provided".
func (input titleRequest) entity(id string) *Title {
	return &Title{
		ID:           id,
		Name:         input.Name,
		Year:         input.Year,
		Description:  input.Description,
		CategorySlug: input.Category,
		GenreSlugs:   input.Genre,
	}
}

// # Mutation Endpoints

/*
POST /api/v1/titles.

Description: Creates a new title in the catalogue. Admin only.

Request (Body):
  - titleRequest: JSON object

Response:
  - 201: Title: Created title with embedded associations
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: ErrForbidden: Insufficient permissions
*/
func (handler *Handler) createTitle(writer http.ResponseWriter, request *http.Request) {
	var input titleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateTitle(request.Context(), requestutil.Actor(request), input.entity(""))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
PATCH /api/v1/titles/{titleID}.

Description: Applies partial updates to an existing title. Admin only.
Clients should only provide the fields that need to be changed.

Request:
  - titleID: string (UUID)
  - body: titleRequest (Partial JSON)

Response:
  - 200: Title: Updated title with embedded associations
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: ErrForbidden: Insufficient permissions
  - 404: ErrNotFound: Title not found
*/
func (handler *Handler) updateTitle(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")

	var input titleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateTitle(request.Context(), requestutil.Actor(request), input.entity(titleID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/titles/{titleID}.

Description: Permanently removes a title. Its reviews and their comments are
removed by the storage cascade. Admin only.

Request:
  - titleID: string (UUID)

Response:
  - 204: No Content: Success
  - 403: ErrForbidden: Insufficient permissions
  - 404: ErrNotFound: Title not found
*/
func (handler *Handler) deleteTitle(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")

	if err := handler.service.DeleteTitle(request.Context(), requestutil.Actor(request), titleID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
