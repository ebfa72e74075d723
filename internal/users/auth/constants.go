// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"

	"github.com/taibuivan/platewise/internal/platform/apperr"
)

// # Request Fields

const (
	FieldUsername = "username"
	FieldPassword = "password"

	// FieldWeight is the name the starting weight arrives under at signup.
	FieldWeight = "weight"
)

// # Domain Errors

var (
	// ErrNoSuchUser is returned when logging in with an unknown username.
	ErrNoSuchUser = apperr.BadRequest("NO_SUCH_USER", "User not found. Please sign up.")

	// ErrBadCredential is returned when the password does not match.
	ErrBadCredential = apperr.BadRequest("BAD_CREDENTIAL", "Incorrect password.")

	// ErrUnauthorized is returned for a missing, unknown or expired session token.
	ErrUnauthorized = apperr.Unauthorized("Unauthorized: Please log in")

	// ErrSessionNotFound is returned by session stores for absent or expired records.
	ErrSessionNotFound = errors.New("auth: session not found")
)
