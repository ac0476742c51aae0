// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/authgate/internal/platform/database/schema"
	"github.com/taibuivan/authgate/internal/platform/dberr"
	"github.com/taibuivan/authgate/internal/platform/postgres"
	"github.com/taibuivan/authgate/pkg/emailaddr"
	"github.com/taibuivan/authgate/pkg/uuidv7"
)

// # PostgreSQL User Store

// PostgresUserStore implements [UserStore] over the users.account table.
//
// # Uniqueness
//
// The table carries a UNIQUE constraint on email. Insert uses
// ON CONFLICT DO NOTHING so a lost race returns no row instead of aborting.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a PostgreSQL implementation of the UserStore.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

/*
Insert persists a new user record into the users.account table.

Parameters:
  - ctx: context.Context
  - email: string
  - passwordHash: string
  - displayName: string

Returns:
  - *User: Stored entity with server-assigned createdat
  - error: ErrEmailTaken or classified storage errors
*/
func (store *PostgresUserStore) Insert(ctx context.Context, email, passwordHash, displayName string) (*User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s) DO NOTHING
		RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.Password, schema.UserAccount.DisplayName,
		schema.UserAccount.Email,
		schema.UserAccount.ColumnList(),
	)

	row := store.pool.QueryRow(ctx, query, uuidv7.New(), emailaddr.Normalize(email), passwordHash, displayName)

	user, err := scanPostgresUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || dberr.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, dberr.Wrap(err, "postgres_user_store_insert_failed")
	}

	return user, nil
}

/*
FindByEmail retrieves a user record by normalized email.

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or classified storage errors
*/
func (store *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.UserAccount.ColumnList(), schema.UserAccount.Table, schema.UserAccount.Email)

	user, err := scanPostgresUser(store.pool.QueryRow(ctx, query, emailaddr.Normalize(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, dberr.Wrap(err, "postgres_user_store_find_by_email_failed")
	}

	return user, nil
}

/*
FindByID retrieves a user record by its UUID.

Description: Strings that are not UUIDs cannot match and skip the round trip.

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or classified storage errors
*/
func (store *PostgresUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	if !uuidv7.Valid(id) {
		return nil, ErrUserNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.UserAccount.ColumnList(), schema.UserAccount.Table, schema.UserAccount.ID)

	user, err := scanPostgresUser(store.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, dberr.Wrap(err, "postgres_user_store_find_by_id_failed")
	}

	return user, nil
}

// Ping reports whether the pool can reach the database.
func (store *PostgresUserStore) Ping(ctx context.Context) error {
	return postgres.Ping(ctx, store.pool)
}

func scanPostgresUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
