// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements signup, login and the server-held session lifecycle.

A login issues an opaque random token. The browser keeps it in an HttpOnly
cookie; the server keeps only its SHA-256 digest mapped to the username.

Architecture:

  - Service: Signup, Login, Logout and CurrentUser.
  - Repository: SessionRepository with in-memory and Redis implementations.
    Accounts come from the account package's Repository.
  - Expiry: sliding. Each successful CurrentUser lookup pushes the expiry
    forward by the configured TTL.
*/
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/platewise/internal/platform/constants"
	"github.com/taibuivan/platewise/internal/platform/sec"
	"github.com/taibuivan/platewise/internal/platform/validate"
	"github.com/taibuivan/platewise/internal/users/account"
	"github.com/taibuivan/platewise/pkg/uuid"
)

// # Contracts & Types

// AccountStore is the subset of [account.Repository] the gate needs.
type AccountStore interface {
	Create(context context.Context, account *account.Account) error
	FindByUsername(context context.Context, username string) (*account.Account, error)
}

// SignupInput is the wire form of a registration request.
type SignupInput struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// Profile seed. The starting weight arrives as "weight".
	Weight       json.RawMessage `json:"weight"`
	Height       json.RawMessage `json:"height"`
	TargetWeight json.RawMessage `json:"targetWeight"`
	Goal         string          `json:"goal"`
}

// LoginInput is the wire form of a login request.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service implements the authentication gate.
type Service struct {
	accounts   AccountStore
	sessions   SessionRepository
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(accounts AccountStore, sessions SessionRepository, sessionTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		accounts:   accounts,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// # Registration Flow

/*
Signup creates an account seeded with a profile and one history entry.

Description: Uniqueness is checked before hashing, then enforced again by the
store's unique constraint. A concurrent signup that loses the race still
receives ErrUsernameTaken.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *account.Account: The created account
  - error: VALIDATION_ERROR, account.ErrUsernameTaken or storage failures
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*account.Account, error) {
	username := account.NormalizeUsername(input.Username)

	// 1. Validate credentials and the profile seed together
	v := &validate.Validator{}
	v.Required(FieldUsername, username).
		MaxLen(FieldUsername, username, constants.MaxUsernameLength).
		Required(FieldPassword, input.Password).
		MaxBytes(FieldPassword, input.Password, constants.MaxPasswordBytes)

	profile := account.ProfileInput{
		CurrentWeight: input.Weight,
		Height:        input.Height,
		TargetWeight:  input.TargetWeight,
		Goal:          input.Goal,
	}.Validate(v, FieldWeight)

	if err := v.Err(); err != nil {
		return nil, err
	}

	// 2. Cheap existence check before paying for bcrypt
	_, err := service.accounts.FindByUsername(context, username)
	switch {
	case err == nil:
		return nil, account.ErrUsernameTaken
	case !errors.Is(err, account.ErrNotFound):
		return nil, fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	// 3. Hash and persist
	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_signup_hash_failed: %w", err)
	}

	now := service.now().UTC().Truncate(time.Microsecond)
	created := &account.Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Profile:      profile,
		CreatedAt:    now,
		UpdatedAt:    now,
		History: []account.HistoryEntry{
			{Date: now, Weight: *profile.CurrentWeight, Goal: profile.Goal},
		},
	}

	if err := service.accounts.Create(context, created); err != nil {
		if errors.Is(err, account.ErrUsernameTaken) {
			return nil, account.ErrUsernameTaken
		}
		return nil, fmt.Errorf("auth_service_signup_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "account_created",
		slog.String("account_id", created.ID),
		slog.String("username", created.Username),
	)

	return created, nil
}

// # Authentication Flow

/*
Login verifies credentials and issues a new session.

Description: A stored hash that cannot be checked is logged and treated as a
wrong password. The login never succeeds on a credential fault.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *IssuedSession: Raw token for the cookie plus its expiry
  - error: ErrNoSuchUser, ErrBadCredential, VALIDATION_ERROR or storage failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*IssuedSession, error) {
	username := account.NormalizeUsername(input.Username)

	v := &validate.Validator{}
	v.Required(FieldUsername, username).Required(FieldPassword, input.Password)
	if err := v.Err(); err != nil {
		return nil, err
	}

	// 1. Resolve the account
	found, err := service.accounts.FindByUsername(context, username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// 2. Verify the password, failing closed
	ok, err := sec.VerifyPassword(input.Password, found.PasswordHash)
	if err != nil {
		service.logger.WarnContext(context, "credential_check_failed",
			slog.String("username", username),
			slog.Any("error", err),
		)
		return nil, ErrBadCredential
	}
	if !ok {
		return nil, ErrBadCredential
	}

	// 3. Issue the session
	token, err := sec.GenerateSecureToken(constants.SessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_token_failed: %w", err)
	}

	now := service.now().UTC()
	session := &Session{Username: found.Username, CreatedAt: now}
	if err := service.sessions.Create(context, sec.HashToken(token), session, service.sessionTTL); err != nil {
		return nil, fmt.Errorf("auth_service_login_session_failed: %w", err)
	}

	service.logger.InfoContext(context, "session_created", slog.String("username", found.Username))

	return &IssuedSession{
		Token:     token,
		Username:  found.Username,
		ExpiresAt: now.Add(service.sessionTTL),
	}, nil
}

/*
Logout invalidates the session behind token.

Description: Idempotent. An empty, unknown or expired token is a success.

Returns:
  - error: Session store failures only
*/
func (service *Service) Logout(context context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := service.sessions.Delete(context, sec.HashToken(token)); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

/*
CurrentUser resolves token to the username it was issued for and slides the
session's expiry forward.

Returns:
  - string: The session's username
  - error: ErrUnauthorized for missing, unknown or expired tokens, or storage failures
*/
func (service *Service) CurrentUser(context context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	session, err := service.sessions.Touch(context, sec.HashToken(token), service.sessionTTL)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("auth_service_current_user_failed: %w", err)
	}

	return session.Username, nil
}

// # Maintenance

// RunJanitor purges expired sessions every interval until ctx is cancelled.
func (service *Service) RunJanitor(context context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := service.sessions.DeleteExpired(context)
			if err != nil {
				service.logger.ErrorContext(context, "session_janitor_failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				service.logger.DebugContext(context, "session_janitor_purged", slog.Int("removed", removed))
			}
		case <-context.Done():
			return
		}
	}
}
