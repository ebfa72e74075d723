// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the user's profile and weight history.

It owns the account record (credentials plus profile) and the append-only
history of weigh-ins recorded on every profile save.

# Architecture

  - Entities: Account, Profile, HistoryEntry.
  - Storage: Repository with PostgreSQL, SQLite and in-memory implementations.
  - Invariant: after every save, the last history entry carries the profile's
    current weight and goal. Stores make the append and overwrite one atomic step.
*/
package account

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/platewise/internal/platform/apperr"
	"github.com/taibuivan/platewise/internal/platform/validate"
)

// # Domain Errors

var (
	// ErrNotFound is returned when the account behind a username does not exist.
	ErrNotFound = apperr.NotFound("User")

	// ErrUsernameTaken is returned when signing up with an existing username.
	ErrUsernameTaken = apperr.BadRequest("USERNAME_TAKEN", "Username already exists")
)

// # Domain Entities

// Goal is the direction the user wants their weight to move.
type Goal string

const (
	GoalGain Goal = "gain"
	GoalLose Goal = "lose"
)

// Valid reports whether g is one of the recognised goals.
func (g Goal) Valid() bool {
	return g == GoalGain || g == GoalLose
}

// Profile is the mutable part of an account.
//
// Measurements are nil until first set. Weights are kilograms, height is centimetres.
type Profile struct {
	CurrentWeight *float64 `json:"currentWeight"`
	Height        *float64 `json:"height"`
	TargetWeight  *float64 `json:"targetWeight"`
	Goal          Goal     `json:"goal"`
}

// HistoryEntry is an immutable snapshot appended on every profile save.
type HistoryEntry struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
	Goal   Goal      `json:"goal"`
}

// Account is the persisted identity of a user.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// History is set on creation and by FindWithHistory; FindByUsername leaves it nil.
	History []HistoryEntry `json:"-"`
}

// ProfileView is the profile as returned to the owner, with its history embedded.
type ProfileView struct {
	Profile
	History []HistoryEntry `json:"history"`
}

// # Input Parsing

// ProfileInput is the wire form of a profile update. Measurements may arrive
// as JSON numbers or numeric strings.
type ProfileInput struct {
	CurrentWeight json.RawMessage `json:"currentWeight"`
	Height        json.RawMessage `json:"height"`
	TargetWeight  json.RawMessage `json:"targetWeight"`
	Goal          string          `json:"goal"`
}

/*
Validate records every field failure on v and returns the parsed profile.

Parameters:
  - v: *validate.Validator shared with the caller's other checks
  - weightField: the JSON name the current weight arrived under ("weight" at signup)

Returns:
  - Profile: only meaningful when v has no errors
*/
func (input ProfileInput) Validate(v *validate.Validator, weightField string) Profile {
	currentWeight := v.Number(weightField, input.CurrentWeight)
	height := v.Number("height", input.Height)
	targetWeight := v.Number("targetWeight", input.TargetWeight)

	v.Positive(weightField, currentWeight).
		Positive("height", height).
		Positive("targetWeight", targetWeight).
		OneOf("goal", input.Goal, string(GoalGain), string(GoalLose))

	return Profile{
		CurrentWeight: &currentWeight,
		Height:        &height,
		TargetWeight:  &targetWeight,
		Goal:          Goal(input.Goal),
	}
}

// NormalizeUsername returns the NFC form of a username. Nothing else is
// folded: case and surrounding whitespace are significant.
func NormalizeUsername(username string) string {
	return norm.NFC.String(username)
}

// # Repository Contracts

// Repository defines the persistence contract for accounts and their history.
type Repository interface {
	/*
		Create inserts a new account together with its initial history.

		Parameters:
		  - context: context.Context
		  - account: *Account (ID, Username, PasswordHash, Profile, History set)

		Returns:
		  - error: ErrUsernameTaken or storage failures
	*/
	Create(context context.Context, account *Account) error

	/*
		FindByUsername retrieves an account without its history.

		Returns:
		  - *Account: Loaded account entity
		  - error: ErrNotFound or storage failures
	*/
	FindByUsername(context context.Context, username string) (*Account, error)

	/*
		ListHistory returns a copy of the account's history, oldest first.

		Returns:
		  - []HistoryEntry: never empty for an existing account
		  - error: ErrNotFound or storage failures
	*/
	ListHistory(context context.Context, username string) ([]HistoryEntry, error)

	/*
		FindWithHistory loads the account and its history from one consistent
		read, so no save can land between the two.

		Returns:
		  - *Account: History set, oldest first; its last weight equals Profile.CurrentWeight
		  - error: ErrNotFound or storage failures
	*/
	FindWithHistory(context context.Context, username string) (*Account, error)

	/*
		SaveProfile appends one history entry {recordedAt, CurrentWeight, Goal}
		and overwrites the profile, atomically with respect to other saves on
		the same account.

		Parameters:
		  - context: context.Context
		  - username: string
		  - profile: Profile (all fields set)
		  - recordedAt: time.Time

		Returns:
		  - error: ErrNotFound or storage failures
	*/
	SaveProfile(context context.Context, username string, profile Profile, recordedAt time.Time) error
}
