// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/auth"
	"github.com/taibuivan/authgate/internal/platform/migration"
	"github.com/taibuivan/authgate/internal/platform/postgres"
)

// newPostgresStore connects to AUTHGATE_TEST_DATABASE_URL or skips.
func newPostgresStore(t *testing.T) *auth.PostgresUserStore {
	t.Helper()

	dsn := os.Getenv("AUTHGATE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("AUTHGATE_TEST_DATABASE_URL not set")
	}

	migrationsPath, err := filepath.Abs(filepath.Join("..", "..", "data", "migrations"))
	require.NoError(t, err)

	_, err = migration.RunUp(dsn, migrationsPath, discardLogger())
	require.NoError(t, err)

	pool, err := postgres.NewPool(context.Background(), dsn, 5*time.Second, discardLogger())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return auth.NewPostgresUserStore(pool)
}

func TestPostgresUserStore_Contract(t *testing.T) {
	runUserStoreContract(t, newPostgresStore(t))
}

/*
TestPostgresUserStore_NonUUIDLookup verifies an ID that cannot be a UUID
reads as not found instead of a query error.
*/
func TestPostgresUserStore_NonUUIDLookup(t *testing.T) {
	store := newPostgresStore(t)

	_, err := store.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
