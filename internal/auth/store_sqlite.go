// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/authgate/internal/platform/database/schema"
	"github.com/taibuivan/authgate/internal/platform/dberr"
	"github.com/taibuivan/authgate/internal/platform/sqlite"
	"github.com/taibuivan/authgate/pkg/emailaddr"
	"github.com/taibuivan/authgate/pkg/uuidv7"
)

// # SQLite User Store

var sqliteSchema = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	%s TEXT    PRIMARY KEY,
	%s TEXT    NOT NULL UNIQUE,
	%s TEXT    NOT NULL,
	%s TEXT    NOT NULL DEFAULT '',
	%s INTEGER NOT NULL
);`,
	schema.UserAccountLocal.Table,
	schema.UserAccountLocal.ID,
	schema.UserAccountLocal.Email,
	schema.UserAccountLocal.Password,
	schema.UserAccountLocal.DisplayName,
	schema.UserAccountLocal.CreatedAt,
)

// SQLiteUserStore implements [UserStore] over a single SQLite file.
//
// Timestamps are stored as Unix milliseconds in UTC.
type SQLiteUserStore struct {
	database *sql.DB
}

// NewSQLiteUserStore applies the schema and returns the store.
func NewSQLiteUserStore(ctx context.Context, database *sql.DB) (*SQLiteUserStore, error) {
	if _, err := database.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("sqlite_user_store_schema_failed: %w", err)
	}
	return &SQLiteUserStore{database: database}, nil
}

/*
Insert persists a new user row.

The UNIQUE column rejects the second of two concurrent inserts for one email;
the statement commits fully or not at all.

Returns:
  - *User: Stored entity
  - error: ErrEmailTaken or classified storage errors
*/
func (store *SQLiteUserStore) Insert(ctx context.Context, email, passwordHash, displayName string) (*User, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?)`,
		schema.UserAccountLocal.Table, schema.UserAccountLocal.ColumnList())

	user := &User{
		ID:           uuidv7.New(),
		Email:        emailaddr.Normalize(email),
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	_, err := store.database.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, dberr.Wrap(err, "sqlite_user_store_insert_failed")
	}

	return user, nil
}

// FindByEmail retrieves a user row by normalized email.
func (store *SQLiteUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		schema.UserAccountLocal.ColumnList(), schema.UserAccountLocal.Table, schema.UserAccountLocal.Email)

	user, err := scanSQLiteUser(store.database.QueryRowContext(ctx, query, emailaddr.Normalize(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, dberr.Wrap(err, "sqlite_user_store_find_by_email_failed")
	}
	return user, nil
}

// FindByID retrieves a user row by ID.
func (store *SQLiteUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		schema.UserAccountLocal.ColumnList(), schema.UserAccountLocal.Table, schema.UserAccountLocal.ID)

	user, err := scanSQLiteUser(store.database.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, dberr.Wrap(err, "sqlite_user_store_find_by_id_failed")
	}
	return user, nil
}

// Ping reports whether the database file is usable.
func (store *SQLiteUserStore) Ping(ctx context.Context) error {
	return sqlite.Ping(ctx, store.database)
}

// Delete removes a user row. It exists for operational tooling and tests;
// the service never deletes accounts.
func (store *SQLiteUserStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, schema.UserAccountLocal.Table, schema.UserAccountLocal.ID)
	if _, err := store.database.ExecContext(ctx, query, id); err != nil {
		return dberr.Wrap(err, "sqlite_user_store_delete_failed")
	}
	return nil
}

func scanSQLiteUser(row *sql.Row) (*User, error) {
	var createdAt int64

	user := &User{}
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &createdAt); err != nil {
		return nil, err
	}

	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	return user, nil
}
