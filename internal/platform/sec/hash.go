// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives: password hashing, opaque
// session tokens and service-to-service JWTs.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. Callers
// never see bcrypt or jwt types, only strings and the [ErrCredential] sentinel.
package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/platewise/internal/platform/constants"
)

// ErrCredential reports that a stored hash could not be checked at all
// (malformed, unsupported version). Callers must treat it as a failed login.
var ErrCredential = errors.New("sec: credential check failed")

// HashPassword hashes a plain-text password using bcrypt at a fixed cost.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), constants.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

/*
VerifyPassword compares a plain-text password with its bcrypt hash in constant time.

Returns:
  - true, nil: the password matches
  - false, nil: the password does not match
  - false, ErrCredential: the hash is unusable
*/
func VerifyPassword(plainTextPassword, existingHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrCredential, err)
	}
}
