// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserStore is the durable mapping from normalized email to user record.
//
// Implementations normalize the email argument themselves and must enforce
// uniqueness atomically: of two concurrent Inserts for one email exactly one
// succeeds. Infrastructure failures are returned as TRANSIENT or INTERNAL
// [apperr.AppError] values.
type UserStore interface {

	/*
		Insert creates a user and assigns its ID and creation time.

		Parameters:
		  - ctx: context.Context
		  - email: string (normalized again by the store)
		  - passwordHash: string
		  - displayName: string

		Returns:
		  - *User: The stored record
		  - error: [ErrEmailTaken] or storage failures
	*/
	Insert(ctx context.Context, email, passwordHash, displayName string) (*User, error)

	/*
		FindByEmail returns the user registered under email.

		Returns:
		  - *User: Hydrated entity
		  - error: [ErrUserNotFound] or storage failures
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	/*
		FindByID returns the user with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: [ErrUserNotFound] or storage failures
	*/
	FindByID(ctx context.Context, id string) (*User, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
