// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/auth"
	"github.com/taibuivan/authgate/pkg/uuidv7"
)

// runUserStoreContract exercises the behaviour every UserStore backend shares.
// Emails are unique per run so shared servers need no cleanup.
func runUserStoreContract(t *testing.T, store auth.UserStore) {
	ctx := context.Background()

	t.Run("insert_and_find", func(t *testing.T) {
		email := uuidv7.New() + "@Example.COM"

		created, err := store.Insert(ctx, email, "$2a$04$hash", "Alice")
		require.NoError(t, err)
		assert.True(t, uuidv7.Valid(created.ID))
		assert.Equal(t, "Alice", created.DisplayName)
		assert.False(t, created.CreatedAt.IsZero())

		byEmail, err := store.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
		assert.Equal(t, "$2a$04$hash", byEmail.PasswordHash)

		byID, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, byEmail.Email, byID.Email)
		assert.True(t, created.CreatedAt.Equal(byID.CreatedAt))
	})

	t.Run("email_is_normalized", func(t *testing.T) {
		local := uuidv7.New()

		created, err := store.Insert(ctx, "  "+local+"@EXAMPLE.com ", "h", "")
		require.NoError(t, err)
		assert.Equal(t, local+"@example.com", created.Email)

		found, err := store.FindByEmail(ctx, local+"@example.COM")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		local := uuidv7.New()

		_, err := store.Insert(ctx, local+"@example.com", "h", "")
		require.NoError(t, err)

		_, err = store.Insert(ctx, local+"@Example.com", "h2", "")
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})

	t.Run("concurrent_duplicate", func(t *testing.T) {
		email := uuidv7.New() + "@example.com"

		const writers = 8
		results := make([]error, writers)

		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, results[i] = store.Insert(ctx, email, "h", "")
			}()
		}
		wg.Wait()

		succeeded, taken := 0, 0
		for _, err := range results {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, auth.ErrEmailTaken):
				taken++
			default:
				t.Errorf("unexpected insert error: %v", err)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, writers-1, taken)
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := store.FindByEmail(ctx, uuidv7.New()+"@example.com")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)

		_, err = store.FindByID(ctx, uuidv7.New())
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}
