// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/platform/apperr"
)

/*
TestAppError_StatusMapping pins every kind to exactly one status code.
*/
func TestAppError_StatusMapping(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		err    *apperr.AppError
		code   string
		status int
	}{
		{apperr.ValidationError("bad"), apperr.CodeValidation, http.StatusBadRequest},
		{apperr.InvalidEmail("bad"), apperr.CodeInvalidEmail, http.StatusBadRequest},
		{apperr.WeakPassword("bad"), apperr.CodeWeakPassword, http.StatusBadRequest},
		{apperr.DuplicateUser("taken"), apperr.CodeDuplicateUser, http.StatusConflict},
		{apperr.InvalidCredentials(), apperr.CodeInvalidCredentials, http.StatusUnauthorized},
		{apperr.Unauthorized("no"), apperr.CodeUnauthorized, http.StatusUnauthorized},
		{apperr.NotFound("Route"), apperr.CodeNotFound, http.StatusNotFound},
		{apperr.Transient(cause), apperr.CodeTransient, http.StatusServiceUnavailable},
		{apperr.HashFormat(cause), apperr.CodeHashFormat, http.StatusInternalServerError},
		{apperr.Internal(cause), apperr.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

/*
TestAppError_IsMatchesByCode lets a shared sentinel match decorated copies.
*/
func TestAppError_IsMatchesByCode(t *testing.T) {
	sentinel := apperr.Unauthorized("Invalid token")
	decorated := sentinel.WithCause(errors.New("expired"))
	wrapped := fmt.Errorf("auth_service_failed: %w", decorated)

	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, apperr.InvalidCredentials())
	assert.Nil(t, sentinel.Cause, "WithCause must not mutate the receiver")
}

/*
TestAppError_ServerMessagesAreGeneric keeps causes out of client messages.
*/
func TestAppError_ServerMessagesAreGeneric(t *testing.T) {
	cause := errors.New(`pq: relation "users.account" does not exist`)

	for _, err := range []*apperr.AppError{apperr.Internal(cause), apperr.HashFormat(cause), apperr.Transient(cause)} {
		assert.NotContains(t, err.Error(), "users.account")
		assert.ErrorIs(t, err, cause)
	}
}

/*
TestHelpers covers As, IsAppError and CodeOf.
*/
func TestHelpers(t *testing.T) {
	plain := errors.New("plain")
	assert.False(t, apperr.IsAppError(plain))
	assert.Nil(t, apperr.As(plain))
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(plain))

	wrapped := fmt.Errorf("ctx: %w", apperr.DuplicateUser("taken").WithDetails(apperr.FieldError{Field: "email", Message: "taken"}))
	assert.True(t, apperr.IsAppError(wrapped))
	require.NotNil(t, apperr.As(wrapped))
	assert.Len(t, apperr.As(wrapped).Details, 1)
	assert.Equal(t, apperr.CodeDuplicateUser, apperr.CodeOf(wrapped))
}
