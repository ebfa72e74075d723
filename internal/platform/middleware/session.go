// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/taibuivan/platewise/internal/platform/apperr"
	"github.com/taibuivan/platewise/internal/platform/ctxutil"
	"github.com/taibuivan/platewise/internal/platform/respond"
)

// errUnauthorized is matched by code, so any Unauthorized AppError qualifies.
var errUnauthorized = apperr.Unauthorized("Unauthorized")

// SessionResolver maps an opaque session token to the username it was issued for.
//
// It returns an UNAUTHORIZED [apperr.AppError] for unknown or expired tokens.
type SessionResolver interface {
	CurrentUser(context context.Context, token string) (string, error)
}

// Authenticate resolves the session cookie, if any, into a username.
//
// # Flow
//  1. No cookie: the request proceeds as anonymous.
//  2. Unknown or expired token: the request proceeds as anonymous.
//  3. Live token: the token and username are injected via [ctxutil.WithSession].
//  4. Session store failure: abort with 500.
func Authenticate(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			cookie, err := request.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			username, err := resolver.CurrentUser(request.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, errUnauthorized) {
					next.ServeHTTP(writer, request)
					return
				}
				respond.Error(writer, request, err)
				return
			}

			reportUsername(request.Context(), username)
			ctx := ctxutil.WithSession(request.Context(), cookie.Value, username)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireSession blocks requests that carry no live session.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. The request is
// rejected with 401 before any handler (and therefore any account store)
// is reached.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetUsername(request.Context()) == "" {
			respond.Error(writer, request, apperr.Unauthorized("Unauthorized"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
