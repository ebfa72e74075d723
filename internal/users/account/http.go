// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account provides the HTTP delivery layer for profile and history.

# Security

All endpoints in this package must be registered behind the RequireSession
middleware; they read the username from the session only.
*/
package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/platewise/internal/platform/request"
	"github.com/taibuivan/platewise/internal/platform/respond"
)

// Handler implements the HTTP layer for profile management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes registers the account domain's endpoints on router.
func (handler *Handler) Routes(router chi.Router) {
	router.Get("/get-profile", handler.getProfile)
	router.Get("/get-history", handler.getHistory)
	router.Post("/save-profile", handler.saveProfile)
}

/*
GET /get-profile.

Description: Retrieves the authenticated user's profile with its history.

Response:
  - 200: ProfileView
  - 401: ErrUnauthorized: No live session
  - 404: ErrNotFound: Account vanished after the session was issued
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	username, err := requestutil.RequiredUsername(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
GET /get-history.

Response:
  - 200: []HistoryEntry, oldest first
  - 401: ErrUnauthorized
  - 404: ErrNotFound
*/
func (handler *Handler) getHistory(writer http.ResponseWriter, request *http.Request) {
	username, err := requestutil.RequiredUsername(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	history, err := handler.accountService.GetHistory(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, history)
}

/*
POST /save-profile.

Request:
  - body: ProfileInput {currentWeight, height, targetWeight, goal}

Response:
  - 200: {message}
  - 400: ErrInvalidJSON/Validation
  - 401: ErrUnauthorized
  - 404: ErrNotFound
*/
func (handler *Handler) saveProfile(writer http.ResponseWriter, request *http.Request) {
	username, err := requestutil.RequiredUsername(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ProfileInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.accountService.SaveProfile(request.Context(), username, input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Profile updated successfully")
}
