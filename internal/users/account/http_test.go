// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/platewise/internal/platform/ctxutil"
	"github.com/taibuivan/platewise/internal/users/account"
)

// newRouter mounts the handler with an optional fake session.
func newRouter(t *testing.T, username string) http.Handler {
	t.Helper()
	service, _ := seededService(t, "alice")

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if username != "" {
				request = request.WithContext(ctxutil.WithSession(request.Context(), "tok", username))
			}
			next.ServeHTTP(writer, request)
		})
	})
	account.NewHandler(service).Routes(router)
	return router
}

/*
TestHandler_Profile covers the happy path of save then read.
*/
func TestHandler_Profile(t *testing.T) {
	router := newRouter(t, "alice")

	save := httptest.NewRequest(http.MethodPost, "/save-profile",
		strings.NewReader(`{"currentWeight":"78","height":175,"targetWeight":70,"goal":"lose"}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, save)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"message":"Profile updated successfully"}`, recorder.Body.String())

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/get-profile", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var profile struct {
		CurrentWeight float64 `json:"currentWeight"`
		Goal          string  `json:"goal"`
		History       []struct {
			Weight float64 `json:"weight"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &profile))
	assert.Equal(t, 78.0, profile.CurrentWeight)
	assert.Equal(t, "lose", profile.Goal)
	assert.Len(t, profile.History, 2)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/get-history", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var history []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, 78.0, history[1]["weight"])
	assert.Contains(t, history[1], "date")
}

/*
TestHandler_Errors covers the error statuses of the account endpoints.
*/
func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"no_session", "", http.MethodGet, "/get-profile", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"vanished_account", "bob", http.MethodGet, "/get-history", "", http.StatusNotFound, "NOT_FOUND"},
		{"malformed_json", "alice", http.MethodPost, "/save-profile", `{`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad_field", "alice", http.MethodPost, "/save-profile", `{"currentWeight":"x","height":1,"targetWeight":1,"goal":"gain"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t, tt.username)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var envelope struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, tt.wantCode, envelope.Code)
		})
	}
}
