// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth provides the HTTP delivery layer for the authentication gate.

# Endpoints

  - POST /signup
  - POST /login
  - POST /logout
  - GET  /get-username

# Security

The session token travels only in an HttpOnly, SameSite=Lax cookie. It is
never written to a response body.
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/platewise/internal/platform/apperr"
	"github.com/taibuivan/platewise/internal/platform/constants"
	requestutil "github.com/taibuivan/platewise/internal/platform/request"
	"github.com/taibuivan/platewise/internal/platform/respond"
)

// CookieOptions controls how the session cookie is written.
type CookieOptions struct {
	Name   string
	Secure bool
}

// Handler implements the HTTP layer for the authentication gate.
type Handler struct {
	authService *Service
	cookie      CookieOptions
}

// NewHandler constructs a new auth [Handler].
func NewHandler(service *Service, cookie CookieOptions) *Handler {
	if cookie.Name == "" {
		cookie.Name = constants.DefaultSessionCookieName
	}
	return &Handler{authService: service, cookie: cookie}
}

// Routes registers the auth endpoints on router. None of them require a session.
func (handler *Handler) Routes(router chi.Router) {
	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/get-username", handler.getUsername)
}

// usernameResponse renders a null username for anonymous requests.
type usernameResponse struct {
	Username *string `json:"username"`
}

/*
POST /signup.

Request:
  - body: SignupInput {username, password, weight, height, targetWeight, goal}

Response:
  - 201: {message}
  - 400: USERNAME_TAKEN or VALIDATION_ERROR
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input SignupInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authService.Signup(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusCreated, "User created successfully")
}

/*
POST /login.

Description: Verifies credentials and sets the session cookie. The cookie has
no Expires attribute; the server-side TTL governs its lifetime.

Response:
  - 200: {message} + Set-Cookie
  - 400: NO_SUCH_USER, BAD_CREDENTIAL or VALIDATION_ERROR
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, handler.sessionCookie(session.Token, 0))
	respond.Message(writer, http.StatusOK, "Login successful!")
}

/*
POST /logout.

Description: Invalidates the session (if any) and always clears the cookie,
even when the store fails.

Response:
  - 200: {message}
  - 500: Session store failure
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var token string
	if cookie, err := request.Cookie(handler.cookie.Name); err == nil {
		token = cookie.Value
	}

	err := handler.authService.Logout(request.Context(), token)
	http.SetCookie(writer, handler.sessionCookie("", -1))

	if err != nil {
		failure := apperr.Internal(err)
		failure.Message = "Failed to logout"
		respond.Error(writer, request, failure)
		return
	}

	respond.Message(writer, http.StatusOK, "Logout successful")
}

/*
GET /get-username.

Response:
  - 200: {username} for a live session, {username: null} otherwise
*/
func (handler *Handler) getUsername(writer http.ResponseWriter, request *http.Request) {
	var response usernameResponse
	if username := requestutil.Username(request); username != "" {
		response.Username = &username
	}
	respond.OK(writer, response)
}

func (handler *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     handler.cookie.Name,
		Value:    value,
		Path:     constants.SessionCookiePath,
		MaxAge:   maxAge,
		Secure:   handler.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
