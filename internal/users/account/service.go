// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/platewise/internal/platform/validate"
)

// # Service Layer

// Service orchestrates reads and writes of a user's profile and history.
type Service struct {
	repository Repository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		logger:     logger,
		now:        time.Now,
	}
}

// # Profile Management

/*
GetProfile retrieves the user's profile with the history embedded.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *ProfileView: Current profile and history, oldest first
  - error: ErrNotFound or storage failures
*/
func (service *Service) GetProfile(context context.Context, username string) (*ProfileView, error) {
	account, err := service.repository.FindWithHistory(context, username)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}

	return &ProfileView{Profile: account.Profile, History: account.History}, nil
}

/*
GetHistory retrieves the user's weigh-ins, oldest first.

The returned slice is a copy; mutating it never affects stored state.
*/
func (service *Service) GetHistory(context context.Context, username string) ([]HistoryEntry, error) {
	history, err := service.repository.ListHistory(context, username)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_history_failed: %w", err)
	}
	return history, nil
}

/*
SaveProfile validates an update, then appends one history entry and
overwrites the profile.

Description: Validation is all-or-nothing. If any field fails, nothing is
written and the caller receives every field error at once.

Parameters:
  - context: context.Context
  - username: string
  - input: ProfileInput

Returns:
  - *Profile: The saved profile
  - error: VALIDATION_ERROR, ErrNotFound or storage failures
*/
func (service *Service) SaveProfile(context context.Context, username string, input ProfileInput) (*Profile, error) {
	v := &validate.Validator{}
	profile := input.Validate(v, "currentWeight")
	if err := v.Err(); err != nil {
		return nil, err
	}

	recordedAt := service.now().UTC().Truncate(time.Microsecond)
	if err := service.repository.SaveProfile(context, username, profile, recordedAt); err != nil {
		return nil, fmt.Errorf("account_service_save_profile_failed: %w", err)
	}

	service.logger.InfoContext(context, "profile_saved",
		slog.String("username", username),
		slog.Float64("current_weight", *profile.CurrentWeight),
		slog.String("goal", string(profile.Goal)),
	)

	return &profile, nil
}
