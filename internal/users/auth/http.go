// Copyright (c) 2026 Critica. All rights reserved.

/*
Package auth: HTTP delivery layer for signup and token exchange.

Both endpoints are public; the confirmation code travelling out-of-band is
what gates token issuance. The handler is strictly responsible for transport
concerns (status codes, JSON shape) and delegates every rule to [Service].
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/critica-app/critica/internal/platform/request"
	"github.com/critica-app/critica/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /signup : Registers an account and issues a confirmation code.
//   - POST /token  : Exchanges a confirmation code for an access token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/token", handler.token)

	return router
}

// # Request Payloads

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type tokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

/*
Signup registers a new account or re-issues a confirmation code.

POST /api/v1/auth/signup

Description: Accepts an identity pair. An unknown pair creates an account; a
pair exactly matching an existing account re-issues its code. Either way the
code is delivered out-of-band and never appears in the response, so the
endpoint answers 200 for both outcomes.

Request:
  - Body: signupRequest (Email, Username)

Response:
  - 200: User: The account the code was issued for
  - 400: ErrInvalidJSON: Malformed body, format failures, or identity conflicts
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Signup(request.Context(), SignupInput{
		Email:    input.Email,
		Username: input.Username,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Token exchanges a confirmation code for a signed access token.

POST /api/v1/auth/token

Description: Verifies the submitted code against its stored hash and returns
a JWT carrying the account's id, username, and role. Codes are single-use.

Request:
  - Body: tokenRequest (Username, ConfirmationCode)

Response:
  - 200: Token: Signed JWT access token
  - 400: ErrInvalidJSON: Malformed body or missing fields
  - 401: ErrUnauthorized: Unknown username or non-matching code
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.Exchange(request.Context(), input.Username, input.ConfirmationCode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldToken: token})
}
