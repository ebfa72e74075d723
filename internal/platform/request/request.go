// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away common body decoding patterns and session lookups, ensuring
consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/taibuivan/platewise/internal/platform/apperr"
	"github.com/taibuivan/platewise/internal/platform/ctxutil"
	"github.com/taibuivan/platewise/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Username returns the username bound to the request's session.

Returns an empty string for anonymous requests.
*/
func Username(request *http.Request) string {
	return ctxutil.GetUsername(request.Context())
}

/*
RequiredUsername ensures the request carries a live session and returns its username.

Returns:
  - string: The session's username
  - error: apperr.Unauthorized if there is no session
*/
func RequiredUsername(request *http.Request) (string, error) {
	username := ctxutil.GetUsername(request.Context())
	if username == "" {
		return "", apperr.Unauthorized("Unauthorized")
	}
	return username, nil
}
