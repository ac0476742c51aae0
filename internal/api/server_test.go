// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/api"
	"github.com/taibuivan/authgate/internal/auth"
	"github.com/taibuivan/authgate/internal/platform/config"
	"github.com/taibuivan/authgate/internal/platform/sec"
	"github.com/taibuivan/authgate/internal/platform/sqlite"
)

func newTestServer(t *testing.T, checkStore func(ctx context.Context) error) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	database, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "api.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store, err := auth.NewSQLiteUserStore(context.Background(), database)
	require.NoError(t, err)

	hasher, err := sec.NewHasher(sec.HashParams{Algorithm: sec.AlgorithmBcrypt, BcryptCost: 4})
	require.NoError(t, err)

	codec, err := sec.NewTokenCodec("api-test-secret", "authgate")
	require.NoError(t, err)

	service, err := auth.NewService(store, hasher, codec, time.Hour, auth.WithLogger(logger))
	require.NoError(t, err)

	if checkStore == nil {
		checkStore = service.Ready
	}
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		StoreName:  config.DriverSQLite,
		CheckStore: checkStore,
	}, logger)

	cfg := &config.Config{ServerPort: "0", Environment: "development", RequestTimeout: 5 * time.Second}
	server := api.NewServer(cfg, logger, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(service),
	})
	return server.Handler()
}

func send(handler http.Handler, method, path, body, authorization string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if authorization != "" {
		request.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestServer_EndToEnd drives register, login and /me through the full chain.
*/
func TestServer_EndToEnd(t *testing.T) {
	handler := newTestServer(t, nil)

	registered := send(handler, http.MethodPost, "/api/v1/auth/register",
		`{"email":"end@example.com","password":"securepass123"}`, "")
	require.Equal(t, http.StatusCreated, registered.Code, registered.Body.String())
	assert.NotEmpty(t, registered.Header().Get("X-Request-ID"))

	login := send(handler, http.MethodPost, "/api/v1/auth/login",
		`{"email":"end@example.com","password":"securepass123"}`, "")
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())

	var token struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &token))

	me := send(handler, http.MethodGet, "/api/v1/auth/me", "", "Bearer "+token.Data.Token)
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())
	assert.Contains(t, me.Body.String(), "end@example.com")

	anonymous := send(handler, http.MethodGet, "/api/v1/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)
}

/*
TestServer_PublicRoutesIgnoreStaleBearer verifies an old or foreign token
does not change the outcome of routes that need no identity.
*/
func TestServer_PublicRoutesIgnoreStaleBearer(t *testing.T) {
	handler := newTestServer(t, nil)
	stale := "Bearer expired.or.foreign"

	registered := send(handler, http.MethodPost, "/api/v1/auth/register",
		`{"email":"stale@example.com","password":"securepass123"}`, stale)
	assert.Equal(t, http.StatusCreated, registered.Code, registered.Body.String())

	login := send(handler, http.MethodPost, "/api/v1/auth/login",
		`{"email":"stale@example.com","password":"securepass123"}`, stale)
	assert.Equal(t, http.StatusOK, login.Code, login.Body.String())
	assert.Contains(t, login.Body.String(), `"token_type":"Bearer"`)

	live := send(handler, http.MethodGet, "/health", "", stale)
	assert.Equal(t, http.StatusOK, live.Code)

	ready := send(handler, http.MethodGet, "/ready", "", "Basic malformed")
	assert.Equal(t, http.StatusOK, ready.Code)

	me := send(handler, http.MethodGet, "/api/v1/auth/me", "", stale)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestServer_NotFound(t *testing.T) {
	handler := newTestServer(t, nil)

	recorder := send(handler, http.MethodGet, "/api/v1/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "NOT_FOUND")
}

/*
TestHealth_LivenessAndReadiness verifies liveness and both readiness outcomes.
*/
func TestHealth_LivenessAndReadiness(t *testing.T) {
	healthy := newTestServer(t, nil)

	live := send(healthy, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, live.Code)
	assert.Contains(t, live.Body.String(), `"status":"ok"`)

	ready := send(healthy, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Contains(t, ready.Body.String(), `"status":"ready"`)

	degraded := newTestServer(t, func(context.Context) error { return errors.New("dial tcp: refused") })

	notReady := send(degraded, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, notReady.Code)
	assert.Contains(t, notReady.Body.String(), `"status":"degraded"`)
	assert.NotContains(t, notReady.Body.String(), "refused")
}
