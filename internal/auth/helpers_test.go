// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/auth"
	"github.com/taibuivan/authgate/internal/platform/sec"
	"github.com/taibuivan/authgate/internal/platform/sqlite"
)

const testSecret = "test-signing-secret-0123456789abcdef"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSQLiteStore opens a fresh database file under t.TempDir().
func newSQLiteStore(t *testing.T) *auth.SQLiteUserStore {
	t.Helper()

	database, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "auth.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store, err := auth.NewSQLiteUserStore(context.Background(), database)
	require.NoError(t, err)
	return store
}

// newFastHasher uses the minimum bcrypt cost to keep tests quick.
func newFastHasher(t *testing.T) *sec.Hasher {
	t.Helper()

	hasher, err := sec.NewHasher(sec.HashParams{Algorithm: sec.AlgorithmBcrypt, BcryptCost: 4})
	require.NoError(t, err)
	return hasher
}

func newCodec(t *testing.T, secret string) *sec.TokenCodec {
	t.Helper()

	codec, err := sec.NewTokenCodec(secret, "authgate-test")
	require.NoError(t, err)
	return codec
}

func newService(t *testing.T, store auth.UserStore, hasher auth.CredentialHasher, ttl time.Duration, options ...auth.Option) *auth.Service {
	t.Helper()

	options = append([]auth.Option{auth.WithLogger(discardLogger())}, options...)
	service, err := auth.NewService(store, hasher, newCodec(t, testSecret), ttl, options...)
	require.NoError(t, err)
	return service
}

// countingHasher records how many verifications a flow performs.
type countingHasher struct {
	auth.CredentialHasher

	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(password, stored string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.CredentialHasher.Verify(password, stored)
}

func (h *countingHasher) reset() {
	h.mu.Lock()
	h.verifies = 0
	h.mu.Unlock()
}

func (h *countingHasher) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}

// fixedClock returns a clock that can be moved by the test.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
