// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Domain Entities

// Session is a server-held login. It carries only the identity key; the
// profile is always read from the account store.
type Session struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IssuedSession is what a successful login hands back to the transport layer.
type IssuedSession struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// # Repository Contracts

// SessionRepository defines the persistence contract for sessions.
//
// Records are keyed by the SHA-256 hex digest of the opaque cookie token.
type SessionRepository interface {
	/*
		Create stores a session that expires after ttl.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - session: *Session
		  - ttl: time.Duration

		Returns:
		  - error: Storage failures
	*/
	Create(context context.Context, tokenHash string, session *Session, ttl time.Duration) error

	/*
		Touch loads a live session and pushes its expiry to now+ttl.

		Returns:
		  - *Session: The session with its refreshed ExpiresAt
		  - error: ErrSessionNotFound or storage failures
	*/
	Touch(context context.Context, tokenHash string, ttl time.Duration) (*Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(context context.Context, tokenHash string) error

	// DeleteExpired purges expired records and reports how many were removed.
	DeleteExpired(context context.Context) (int, error)
}
