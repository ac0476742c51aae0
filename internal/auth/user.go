// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements credential registration, password verification and
bearer-token authentication.

Architecture:

  - Service: Orchestrates Register, Login and Authenticate.
  - UserStore: Durable email-keyed user records with three backends
    (PostgreSQL, SQLite, Redis), each enforcing email uniqueness atomically.
  - Handler: The HTTP delivery layer mapping requests onto the service.

Hashing and token signing live in the sec package and are injected.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered account.
//
// Email is stored normalized and never changes after creation.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the outward-facing projection of a [User].
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips credential material from the user.
func (user *User) Public() PublicUser {
	return PublicUser{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.DisplayName,
		CreatedAt: user.CreatedAt,
	}
}

// # Field Identifiers

// Field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldName      = "name"
	FieldToken     = "token"
	FieldTokenType = "token_type"
	FieldExpiresIn = "expires_in"
	FieldExpiresAt = "expires_at"
)
