// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/authgate/internal/platform/constants"
	"github.com/taibuivan/authgate/internal/platform/dberr"
	redisplatform "github.com/taibuivan/authgate/internal/platform/redis"
	"github.com/taibuivan/authgate/pkg/emailaddr"
	"github.com/taibuivan/authgate/pkg/uuidv7"
)

// # Redis User Store

// insertUserScript claims the email index and writes the user hash in one
// atomic step. KEYS[1] is the email index, KEYS[2] the user hash.
// Returns 0 when the email is already claimed.
var insertUserScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2],
	'id', ARGV[1],
	'email', ARGV[2],
	'password_hash', ARGV[3],
	'display_name', ARGV[4],
	'created_at', ARGV[5])
return 1
`)

// redisUser is the hash layout of one user record.
type redisUser struct {
	ID           string `redis:"id"`
	Email        string `redis:"email"`
	PasswordHash string `redis:"password_hash"`
	DisplayName  string `redis:"display_name"`
	CreatedAt    int64  `redis:"created_at"`
}

// RedisUserStore implements [UserStore] on Redis.
//
// # Key Layout
//
//   - auth:user:<id>          hash with the user fields
//   - auth:user_email:<email> string holding the user id
//
// Both keys of a record are written by one Lua script, so a single Redis
// node never exposes an index without its record.
type RedisUserStore struct {
	client *redis.Client
}

// NewRedisUserStore creates a new Redis-backed UserStore.
func NewRedisUserStore(client *redis.Client) *RedisUserStore {
	return &RedisUserStore{client: client}
}

/*
Insert claims the email and writes the record atomically.

Returns:
  - *User: Stored entity
  - error: ErrEmailTaken or classified storage errors
*/
func (store *RedisUserStore) Insert(ctx context.Context, email, passwordHash, displayName string) (*User, error) {
	user := &User{
		ID:           uuidv7.New(),
		Email:        emailaddr.Normalize(email),
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	keys := []string{emailKey(user.Email), userKey(user.ID)}
	created, err := insertUserScript.Run(ctx, store.client, keys,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		strconv.FormatInt(user.CreatedAt.UnixMilli(), 10),
	).Int()
	if err != nil {
		return nil, dberr.Wrap(err, "redis_user_store_insert_failed")
	}

	if created == 0 {
		return nil, ErrEmailTaken
	}
	return user, nil
}

/*
FindByEmail resolves the email index and then loads the record.

Returns:
  - *User: Hydrated entity
  - error: ErrUserNotFound or classified storage errors
*/
func (store *RedisUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	id, err := store.client.Get(ctx, emailKey(emailaddr.Normalize(email))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, dberr.Wrap(err, "redis_user_store_find_by_email_failed")
	}

	return store.FindByID(ctx, id)
}

// FindByID loads the user hash. A missing hash reads as an empty map.
func (store *RedisUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	command := store.client.HGetAll(ctx, userKey(id))
	if err := command.Err(); err != nil {
		return nil, dberr.Wrap(err, "redis_user_store_find_by_id_failed")
	}
	if len(command.Val()) == 0 {
		return nil, ErrUserNotFound
	}

	var record redisUser
	if err := command.Scan(&record); err != nil {
		return nil, dberr.Wrap(err, "redis_user_store_decode_failed")
	}

	return &User{
		ID:           record.ID,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		DisplayName:  record.DisplayName,
		CreatedAt:    time.UnixMilli(record.CreatedAt).UTC(),
	}, nil
}

// Ping reports whether the Redis server answers.
func (store *RedisUserStore) Ping(ctx context.Context) error {
	return redisplatform.Ping(ctx, store.client)
}

func userKey(id string) string {
	return constants.RedisPrefixUser + id
}

func emailKey(normalizedEmail string) string {
	return constants.RedisPrefixUserEmail + normalizedEmail
}
