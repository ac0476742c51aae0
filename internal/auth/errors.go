// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"

	"github.com/taibuivan/authgate/internal/platform/apperr"
)

// # Store Errors

// Store implementations return these; the service translates them.
var (
	// ErrEmailTaken is returned by [UserStore.Insert] when the normalized email exists.
	ErrEmailTaken = errors.New("auth: email already taken")

	// ErrUserNotFound is returned by lookups that match no record.
	ErrUserNotFound = errors.New("auth: user not found")
)

// # Service Errors

// Client-facing kinds. [apperr.AppError] matches by code, so errors.Is holds
// against these for any instance of the same kind.
var (
	ErrInvalidEmail       = apperr.InvalidEmail("Email address is not valid")
	ErrWeakPassword       = apperr.WeakPassword("Password does not meet the strength policy")
	ErrDuplicateUser      = apperr.DuplicateUser("Email is already registered")
	ErrInvalidCredentials = apperr.InvalidCredentials()
	ErrUnauthorized       = apperr.Unauthorized("Invalid or expired token")
)
