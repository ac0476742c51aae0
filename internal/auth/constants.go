// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Authentication Constraints

const (
	// MinPasswordLength is the floor no configuration can lower.
	MinPasswordLength = 8

	// MaxPasswordBytes is bcrypt's input window; longer passwords are rejected
	// rather than silently truncated.
	MaxPasswordBytes = 72

	// MaxDisplayNameLength bounds the free-form profile name (in characters).
	MaxDisplayNameLength = 100

	// dummyPassword seeds the hash verified for unknown emails at login.
	dummyPassword = "authgate-timing-equalizer"
)
