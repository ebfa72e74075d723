// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/platewise/internal/platform/apperr"
	"github.com/taibuivan/platewise/internal/users/account"
	"github.com/taibuivan/platewise/pkg/pointer"
)

func seededService(t *testing.T, username string) (*account.Service, *account.MemoryRepository) {
	t.Helper()
	repository := account.NewMemoryRepository()
	require.NoError(t, repository.Create(context.Background(), newAccount(username, 80)))
	return account.NewService(repository, discardLogger()), repository
}

func profileInput(currentWeight, height, targetWeight, goal string) account.ProfileInput {
	return account.ProfileInput{
		CurrentWeight: json.RawMessage(currentWeight),
		Height:        json.RawMessage(height),
		TargetWeight:  json.RawMessage(targetWeight),
		Goal:          goal,
	}
}

/*
TestService_SaveProfile covers accepted inputs and all-or-nothing rejection.
*/
func TestService_SaveProfile(t *testing.T) {
	tests := []struct {
		name        string
		input       account.ProfileInput
		wantWeight  float64
		wantInvalid []string
	}{
		{"json_numbers", profileInput(`78.5`, `175`, `70`, "lose"), 78.5, nil},
		{"numeric_strings", profileInput(`"77"`, `"175"`, `"70"`, "gain"), 77, nil},
		{"non_numeric_weight", profileInput(`"heavy"`, `175`, `70`, "lose"), 0, []string{"currentWeight"}},
		{"missing_height", profileInput(`78`, ``, `70`, "lose"), 0, []string{"height"}},
		{"negative_target", profileInput(`78`, `175`, `-70`, "lose"), 0, []string{"targetWeight"}},
		{"unknown_goal", profileInput(`78`, `175`, `70`, "maintain"), 0, []string{"goal"}},
		{"everything_wrong", profileInput(`null`, `"x"`, `0`, ""), 0, []string{"currentWeight", "height", "targetWeight", "goal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			service, repository := seededService(t, "alice")

			profile, err := service.SaveProfile(ctx, "alice", tt.input)
			history, listErr := repository.ListHistory(ctx, "alice")
			require.NoError(t, listErr)

			if tt.wantInvalid != nil {
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)

				fields := make([]string, 0, len(ae.Details))
				for _, detail := range ae.Details {
					fields = append(fields, detail.Field)
				}
				assert.ElementsMatch(t, tt.wantInvalid, fields)

				// Rejected saves leave no trace.
				assert.Len(t, history, 1)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantWeight, pointer.Val(profile.CurrentWeight))
			require.Len(t, history, 2)
			assert.Equal(t, tt.wantWeight, history[1].Weight)
			assert.Equal(t, profile.Goal, history[1].Goal)
		})
	}
}

/*
TestService_SaveProfile_UnknownUser verifies a vanished account is NotFound.
*/
func TestService_SaveProfile_UnknownUser(t *testing.T) {
	service, _ := seededService(t, "alice")

	_, err := service.SaveProfile(context.Background(), "nobody", profileInput(`70`, `170`, `65`, "lose"))
	assert.ErrorIs(t, err, account.ErrNotFound)
}

// interleavingRepository commits a save in the middle of every history read,
// the way a concurrent request could between two separate queries.
type interleavingRepository struct {
	*account.MemoryRepository
}

func (repository *interleavingRepository) ListHistory(ctx context.Context, username string) ([]account.HistoryEntry, error) {
	err := repository.MemoryRepository.SaveProfile(ctx, username, account.Profile{
		CurrentWeight: pointer.To(55.0),
		Height:        pointer.To(175.0),
		TargetWeight:  pointer.To(70.0),
		Goal:          account.GoalLose,
	}, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return repository.MemoryRepository.ListHistory(ctx, username)
}

/*
TestService_GetProfile_ConsistentView verifies that the profile and the
embedded history come from a single read.
*/
func TestService_GetProfile_ConsistentView(t *testing.T) {
	ctx := context.Background()
	repository := &interleavingRepository{MemoryRepository: account.NewMemoryRepository()}
	require.NoError(t, repository.Create(ctx, newAccount("alice", 80)))

	view, err := account.NewService(repository, discardLogger()).GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, view.History)
	assert.Equal(t, pointer.Val(view.CurrentWeight), view.History[len(view.History)-1].Weight)
}

/*
TestService_GetProfile verifies the profile carries its history and that the
last entry mirrors the current weight after a save.
*/
func TestService_GetProfile(t *testing.T) {
	ctx := context.Background()
	service, _ := seededService(t, "alice")

	_, err := service.SaveProfile(ctx, "alice", profileInput(`79`, `175`, `70`, "lose"))
	require.NoError(t, err)

	view, err := service.GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, view.History, 2)
	assert.Equal(t, pointer.Val(view.CurrentWeight), view.History[len(view.History)-1].Weight)

	_, err = service.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, account.ErrNotFound)

	_, err = service.GetHistory(ctx, "nobody")
	assert.ErrorIs(t, err, account.ErrNotFound)
}
