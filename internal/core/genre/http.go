package genre

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/critica-app/critica/internal/platform/request"
	"github.com/critica-app/critica/internal/platform/respond"
	"github.com/critica-app/critica/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listGenres)
	router.Post("/", handler.createGenre)
	router.Delete("/{slug}", handler.deleteGenre)
}

func (handler *Handler) listGenres(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	search := request.URL.Query().Get("search")

	genres, total, err := handler.service.ListGenres(request.Context(), search, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, genres, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

type createGenreRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (handler *Handler) createGenre(writer http.ResponseWriter, request *http.Request) {
	var input createGenreRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	genreDto := &Genre{Name: input.Name, Slug: input.Slug}
	if err := handler.service.CreateGenre(request.Context(), requestutil.Actor(request), genreDto); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, genreDto)
}

func (handler *Handler) deleteGenre(writer http.ResponseWriter, request *http.Request) {
	slug := requestutil.Param(request, "slug")

	if err := handler.service.DeleteGenre(request.Context(), requestutil.Actor(request), slug); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
