// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/dberr"
	"github.com/taibuivan/authgate/internal/platform/sec"
	"github.com/taibuivan/authgate/internal/platform/validate"
	"github.com/taibuivan/authgate/pkg/emailaddr"
)

// # Contracts & Types

// CredentialHasher derives and checks password hashes.
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(password, stored string) (bool, error)
	NeedsRehash(stored string) bool
}

// TokenCodec signs and verifies bearer tokens.
type TokenCodec interface {
	Issue(subjectID string, now time.Time, ttl time.Duration) (string, error)
	Verify(token string, now time.Time) (*sec.TokenClaims, error)
}

// Service implements the credential lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
//
// # Concurrency
//
// Service holds no mutable state after construction; all methods are safe
// for concurrent use.
type Service struct {
	store    UserStore
	hasher   CredentialHasher
	codec    TokenCodec
	policy   PasswordPolicy
	tokenTTL time.Duration

	clock  func() time.Time
	logger *slog.Logger

	// dummyHash is verified when no account matches a login email.
	dummyHash string
}

// Option customizes a [Service].
type Option func(*Service)

// WithClock replaces the wall clock used for token timestamps.
func WithClock(clock func() time.Time) Option {
	return func(service *Service) { service.clock = clock }
}

// WithLogger sets the logger used when a request carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(service *Service) { service.logger = logger }
}

// WithPasswordPolicy overrides [DefaultPasswordPolicy].
func WithPasswordPolicy(policy PasswordPolicy) Option {
	return func(service *Service) { service.policy = policy }
}

// NewService constructs a new [Service] with its dependencies.
//
// It hashes a throwaway password up front so failed logins for unknown
// emails cost the same as a password mismatch.
func NewService(store UserStore, hasher CredentialHasher, codec TokenCodec, tokenTTL time.Duration, options ...Option) (*Service, error) {
	if tokenTTL < 0 {
		return nil, errors.New("auth: token ttl must not be negative")
	}

	service := &Service{
		store:    store,
		hasher:   hasher,
		codec:    codec,
		policy:   DefaultPasswordPolicy(),
		tokenTTL: tokenTTL,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, option := range options {
		option(service)
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth_service_dummy_hash_failed: %w", err)
	}
	service.dummyHash = dummyHash

	return service, nil
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Password policy and email syntax are checked before any hashing
or storage. Uniqueness is enforced by the store, not by a prior lookup.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: WEAK_PASSWORD, INVALID_EMAIL, VALIDATION_ERROR, DUPLICATE_USER or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {

	// Reject weak passwords first; nothing below runs for them.
	if err := service.policy.Check(input.Password); err != nil {
		return nil, err
	}

	email := emailaddr.Normalize(input.Email)
	if !emailaddr.Valid(email) {
		return nil, ErrInvalidEmail
	}

	displayName := strings.TrimSpace(input.DisplayName)
	validator := &validate.Validator{}
	if err := validator.MaxLen(FieldName, displayName, MaxDisplayNameLength).Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	// Hashing is slow; do not start a write for a caller that already gave up.
	if err := ctx.Err(); err != nil {
		return nil, apperr.Transient(err)
	}

	user, err := service.store.Insert(ctx, email, hashedPassword, displayName)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrDuplicateUser
		}
		return nil, storeError(err, "auth_service_register_failed")
	}

	service.log(ctx).InfoContext(ctx, "user_registered", slog.String("user_id", user.ID))
	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a freshly minted bearer token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	ExpiresIn time.Duration
	User      *User
}

/*
Login validates user credentials and issues a bearer token.

Description: An unknown email and a wrong password produce the same error
after the same amount of hashing work, so callers cannot enumerate accounts.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Token and its expiry
  - err: INVALID_CREDENTIALS, HASH_FORMAT_ERROR or storage errors
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := emailaddr.Normalize(input.Email)
	if !emailaddr.Valid(email) {
		service.equalizeTiming(input.Password)
		return nil, ErrInvalidCredentials
	}

	user, err := service.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			service.equalizeTiming(input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, storeError(err, "auth_service_login_lookup_failed")
	}

	matched, err := service.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, sec.ErrHashFormat) {
			return nil, apperr.HashFormat(fmt.Errorf("auth_service_login_hash_corrupt user_id=%s: %w", user.ID, err))
		}
		return nil, apperr.Internal(fmt.Errorf("auth_service_login_verify_failed: %w", err))
	}
	if !matched {
		return nil, ErrInvalidCredentials
	}

	if service.hasher.NeedsRehash(user.PasswordHash) {
		service.log(ctx).InfoContext(ctx, "credential_rehash_recommended", slog.String("user_id", user.ID))
	}

	now := service.clock()
	token, err := service.codec.Issue(user.ID, now, service.tokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_token_issue_failed: %w", err))
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(service.tokenTTL).Truncate(time.Second).UTC(),
		ExpiresIn: service.tokenTTL,
		User:      user,
	}, nil
}

/*
Authenticate resolves a bearer token to the user it was issued for.

Description: Every token failure collapses to UNAUTHORIZED; the specific kind
is kept as the cause and logged at debug level. A valid token for a user that
no longer exists is also UNAUTHORIZED.

Parameters:
  - ctx: context.Context
  - token: string

Returns:
  - *User: The resolved account
  - err: UNAUTHORIZED or storage errors
*/
func (service *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := service.codec.Verify(token, service.clock())
	if err != nil {
		service.log(ctx).DebugContext(ctx, "token_rejected", slog.String("reason", tokenFailureKind(err)))
		return nil, ErrUnauthorized.WithCause(err)
	}

	user, err := service.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			service.log(ctx).DebugContext(ctx, "token_subject_missing", slog.String("user_id", claims.Subject))
			return nil, ErrUnauthorized.WithCause(err)
		}
		return nil, storeError(err, "auth_service_authenticate_lookup_failed")
	}

	return user, nil
}

// AuthContext adapts [Service.Authenticate] for the authentication middleware.
func (service *Service) AuthContext(ctx context.Context, token string) (*sec.AuthContext, error) {
	user, err := service.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &sec.AuthContext{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}, nil
}

// Ready reports whether the backing store is reachable.
func (service *Service) Ready(ctx context.Context) error {
	return service.store.Ping(ctx)
}

// # Helpers

// equalizeTiming spends one verification on the dummy hash. The result is
// discarded.
func (service *Service) equalizeTiming(password string) {
	_, _ = service.hasher.Verify(password, service.dummyHash)
}

func (service *Service) log(ctx context.Context) *slog.Logger {
	return ctxutil.GetLoggerOr(ctx, service.logger)
}

// storeError passes classified store errors through and classifies the rest.
func storeError(err error, action string) error {
	if apperr.IsAppError(err) {
		return err
	}
	return dberr.Wrap(err, action)
}

func tokenFailureKind(err error) string {
	switch {
	case errors.Is(err, sec.ErrTokenExpired):
		return "expired"
	case errors.Is(err, sec.ErrTokenSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, sec.ErrTokenMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
