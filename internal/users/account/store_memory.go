// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/platewise/pkg/pointer"
)

// MemoryRepository implements [Repository] in process memory.
//
// A single mutex serializes every write, so concurrent saves on one account
// append in lock-acquisition order.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*memoryRecord
}

type memoryRecord struct {
	account Account
	history []HistoryEntry
}

// NewMemoryRepository creates an empty in-memory account store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]*memoryRecord)}
}

// Create implements [Repository].
func (repository *MemoryRepository) Create(_ context.Context, account *Account) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.accounts[account.Username]; exists {
		return ErrUsernameTaken
	}

	record := &memoryRecord{
		account: *account,
		history: append([]HistoryEntry(nil), account.History...),
	}
	record.account.Profile = cloneProfile(account.Profile)
	record.account.History = nil
	repository.accounts[account.Username] = record

	return nil
}

// FindByUsername implements [Repository].
func (repository *MemoryRepository) FindByUsername(_ context.Context, username string) (*Account, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	record, ok := repository.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}

	account := record.account
	account.Profile = cloneProfile(record.account.Profile)
	return &account, nil
}

// ListHistory implements [Repository].
func (repository *MemoryRepository) ListHistory(_ context.Context, username string) ([]HistoryEntry, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	record, ok := repository.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]HistoryEntry(nil), record.history...), nil
}

// FindWithHistory implements [Repository]. Both halves are copied under one read lock.
func (repository *MemoryRepository) FindWithHistory(_ context.Context, username string) (*Account, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	record, ok := repository.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}

	account := record.account
	account.Profile = cloneProfile(record.account.Profile)
	account.History = append([]HistoryEntry(nil), record.history...)
	return &account, nil
}

// SaveProfile implements [Repository].
func (repository *MemoryRepository) SaveProfile(_ context.Context, username string, profile Profile, recordedAt time.Time) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	record, ok := repository.accounts[username]
	if !ok {
		return ErrNotFound
	}

	record.history = append(record.history, HistoryEntry{
		Date:   recordedAt,
		Weight: pointer.Val(profile.CurrentWeight),
		Goal:   profile.Goal,
	})
	record.account.Profile = cloneProfile(profile)
	record.account.UpdatedAt = recordedAt

	return nil
}

// cloneProfile copies the measurement pointers so callers cannot mutate stored state.
func cloneProfile(profile Profile) Profile {
	return Profile{
		CurrentWeight: pointer.Clone(profile.CurrentWeight),
		Height:        pointer.Clone(profile.Height),
		TargetWeight:  pointer.Clone(profile.TargetWeight),
		Goal:          profile.Goal,
	}
}
