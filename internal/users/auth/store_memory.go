// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"time"
)

// MemorySessionRepository keeps sessions in process memory.
//
// Sessions do not survive a restart. Expired records are removed lazily on
// Touch and in bulk by the janitor.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemorySessionRepository creates an empty in-process session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create stores a copy of session with its expiry set to now+ttl.
func (repository *MemorySessionRepository) Create(_ context.Context, tokenHash string, session *Session, ttl time.Duration) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored := *session
	stored.ExpiresAt = repository.now().Add(ttl)
	repository.sessions[tokenHash] = stored
	return nil
}

// Touch returns the live session behind tokenHash and slides its expiry.
func (repository *MemorySessionRepository) Touch(_ context.Context, tokenHash string, ttl time.Duration) (*Session, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, found := repository.sessions[tokenHash]
	if !found {
		return nil, ErrSessionNotFound
	}

	now := repository.now()
	if stored.Expired(now) {
		delete(repository.sessions, tokenHash)
		return nil, ErrSessionNotFound
	}

	stored.ExpiresAt = now.Add(ttl)
	repository.sessions[tokenHash] = stored
	return &stored, nil
}

// Delete removes the session if present.
func (repository *MemorySessionRepository) Delete(_ context.Context, tokenHash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	delete(repository.sessions, tokenHash)
	return nil
}

// DeleteExpired purges every session whose expiry has passed.
func (repository *MemorySessionRepository) DeleteExpired(_ context.Context) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	now := repository.now()
	removed := 0
	for tokenHash, stored := range repository.sessions {
		if stored.Expired(now) {
			delete(repository.sessions, tokenHash)
			removed++
		}
	}
	return removed, nil
}
