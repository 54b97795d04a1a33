// Copyright (c) 2026 Critica. All rights reserved.

/*
Package account provides the HTTP delivery layer for user management.

The /me endpoints serve any authenticated member; every other endpoint is an
administrative surface gated by the manage-users policy inside the service.
*/
package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/critica-app/critica/internal/platform/middleware"
	requestutil "github.com/critica-app/critica/internal/platform/request"
	"github.com/critica-app/critica/internal/platform/respond"
	"github.com/critica-app/critica/internal/platform/sec"
	"github.com/critica-app/critica/pkg/pagination"
	"github.com/critica-app/critica/pkg/pointer"
)

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the users domain's endpoints.
//
// # Endpoints
//   - GET    /me         : Own profile.
//   - PATCH  /me         : Update own profile (role immutable).
//   - GET    /           : List accounts (admin).
//   - POST   /           : Create an account with a role (admin).
//   - GET    /{username} : Fetch one account (admin).
//   - PATCH  /{username} : Update an account, role included (admin).
//   - DELETE /{username} : Remove an account (admin).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Self-service profile. Static /me wins over the {username} wildcard.
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireAuth)
		router.Get("/me", handler.getMe)
		router.Patch("/me", handler.updateMe)
	})

	// Administration. The route guard rejects early; the service runs its own
	// policy check regardless.
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(sec.RoleAdmin))
		router.Get("/", handler.listUsers)
		router.Post("/", handler.createUser)
		router.Get("/{username}", handler.getUser)
		router.Patch("/{username}", handler.updateUser)
		router.Delete("/{username}", handler.deleteUser)
	})

	return router
}

// # Request Payloads

type createUserRequest struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Role      *string `json:"role"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Bio       string  `json:"bio"`
}

type updateUserRequest struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	Role      *string `json:"role"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

// input maps the optional payload fields onto a service-level patch.
func (request updateUserRequest) input() UpdateInput {
	return UpdateInput{
		Email:     request.Email,
		Username:  request.Username,
		Role:      request.Role,
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Bio:       request.Bio,
	}
}

// # Self-Service Endpoints

/*
GetMe retrieves the authenticated caller's own profile.

GET /api/v1/users/me

Response:
  - 200: User: The caller's account
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Profile(request.Context(), claims.Username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateMe applies partial updates to the caller's own profile.

PATCH /api/v1/users/me

Description: Accepts the same field set as the admin patch, except that a
provided role field fails validation.

Request:
  - Body: updateUserRequest (all fields optional)

Response:
  - 200: User: The updated account
  - 400: ErrInvalidJSON: Bad input, format failures, or a role change attempt
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), claims.Username, input.input())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Administration Endpoints

/*
ListUsers returns a page of accounts.

GET /api/v1/users?search=&page=&limit=

Response:
  - 200: []User: Accounts ordered by username, with pagination metadata
  - 403: ErrForbidden: Caller is not an administrator
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	search := request.URL.Query().Get("search")

	users, total, err := handler.accountService.ListUsers(
		request.Context(),
		requestutil.Actor(request),
		search,
		paginationParams.Limit,
		paginationParams.Offset(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
CreateUser registers an account with an explicit role.

POST /api/v1/users

Request:
  - Body: createUserRequest (Email, Username required; Role defaults to "user")

Response:
  - 201: User: The created account
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 403: ErrForbidden: Caller is not an administrator
  - 409: ErrConflict: Username or email already exists
*/
func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	var input createUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.CreateUser(request.Context(), requestutil.Actor(request), CreateInput{
		Email:     input.Email,
		Username:  input.Username,
		Role:      pointer.Fallback(input.Role, string(sec.RoleUser)),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
GetUser fetches one account by username.

GET /api/v1/users/{username}

Response:
  - 200: User: The account
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: No such account
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.Param(request, "username")

	user, err := handler.accountService.GetUser(request.Context(), requestutil.Actor(request), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateUser applies partial updates to any account, role included.

PATCH /api/v1/users/{username}

Response:
  - 200: User: The updated account
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: No such account
  - 409: ErrConflict: Username or email already taken
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.Param(request, "username")

	var input updateUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateUser(request.Context(), requestutil.Actor(request), username, input.input())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DeleteUser permanently removes an account.

DELETE /api/v1/users/{username}

Response:
  - 204: No Content: Account removed
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: No such account
*/
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.Param(request, "username")

	if err := handler.accountService.DeleteUser(request.Context(), requestutil.Actor(request), username); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
