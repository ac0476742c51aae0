// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package emailaddr canonicalizes email addresses for identity comparison.
//
// # Usage
//
// Emails are the login identifier, so "Alice@Example.com" and
// "alice@example.com" must resolve to the same account. Every lookup and every
// uniqueness check goes through [Normalize] first.
package emailaddr

import (
	"net/mail"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest address accepted (RFC 5321 path limit).
const MaxLength = 254

// Normalize returns the canonical form of an address.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFC so composed and decomposed accents compare equal.
// 3. Applies full case folding.
//
// Normalize is idempotent.
func Normalize(address string) string {
	result := strings.TrimSpace(address)
	result = norm.NFC.String(result)

	// A Caser is stateful and not safe for concurrent use.
	return cases.Fold().String(result)
}

// Valid reports whether a normalized address is a bare addr-spec
// ("local@domain"), without display names or angle brackets.
func Valid(address string) bool {
	if address == "" || len(address) > MaxLength {
		return false
	}

	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return false
	}
	if parsed.Address != address {
		return false
	}

	at := strings.LastIndexByte(address, '@')
	return at > 0 && at < len(address)-1
}
