// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"unicode"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/validate"
)

// PasswordPolicy is the minimum-strength rule set applied at registration.
//
// Length is counted in characters; the upper bound is in bytes because that
// is what bcrypt consumes.
type PasswordPolicy struct {
	MinLength        int
	RequireMixedCase bool
	RequireDigit     bool
	RequireSymbol    bool
}

// DefaultPasswordPolicy requires only the minimum length.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: MinPasswordLength}
}

// Check returns a WEAK_PASSWORD error listing every failed rule, or nil.
func (policy PasswordPolicy) Check(password string) error {
	minLength := max(policy.MinLength, MinPasswordLength)

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	validator := &validate.Validator{}
	validator.
		MinLen(FieldPassword, password, minLength).
		MaxBytes(FieldPassword, password, MaxPasswordBytes).
		Custom(FieldPassword, policy.RequireMixedCase && !(hasUpper && hasLower), "Must contain upper and lower case letters").
		Custom(FieldPassword, policy.RequireDigit && !hasDigit, "Must contain a digit").
		Custom(FieldPassword, policy.RequireSymbol && !hasSymbol, "Must contain a symbol")

	if !validator.HasErrors() {
		return nil
	}
	return apperr.WeakPassword(ErrWeakPassword.Message).WithDetails(validator.Details()...)
}
