// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/middleware"
	"github.com/taibuivan/authgate/internal/platform/sec"
)

// # Stubs

type stubAuthenticator struct {
	identity *sec.AuthContext
	err      error
	tokens   []string
}

func (s *stubAuthenticator) AuthContext(_ context.Context, token string) (*sec.AuthContext, error) {
	s.tokens = append(s.tokens, token)
	return s.identity, s.err
}

type stubConfig struct {
	development bool
	origins     []string
}

func (c stubConfig) IsDevelopment() bool      { return c.development }
func (c stubConfig) AllowedOrigins() []string { return c.origins }

// echoIdentity writes the caller's user ID, or "anonymous".
var echoIdentity = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	identity := ctxutil.GetAuthContext(request.Context())
	if identity == nil {
		_, _ = io.WriteString(writer, "anonymous")
		return
	}
	_, _ = io.WriteString(writer, identity.UserID)
})

// # Request Tracing

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))
	})

	t.Run("propagated", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Request-ID", "client-123")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Equal(t, "client-123", seen)
	})

	t.Run("oversized_replaced", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Request-ID", strings.Repeat("x", 200))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Len(t, seen, 36)
	})
}

// # Authentication

/*
TestAuthenticate covers anonymous, malformed, rejected and accepted requests.
*/
func TestAuthenticate(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		stub := &stubAuthenticator{}
		recorder := httptest.NewRecorder()
		middleware.Authenticate(stub)(echoIdentity).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "anonymous", recorder.Body.String())
		assert.Empty(t, stub.tokens)
	})

	t.Run("malformed_header", func(t *testing.T) {
		stub := &stubAuthenticator{}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Token abc")

		recorder := httptest.NewRecorder()
		middleware.Authenticate(stub)(echoIdentity).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Empty(t, stub.tokens)
	})

	t.Run("rejected", func(t *testing.T) {
		stub := &stubAuthenticator{err: apperr.Unauthorized("Invalid or expired token")}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer bad-token")

		recorder := httptest.NewRecorder()
		middleware.Authenticate(stub)(echoIdentity).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, []string{"bad-token"}, stub.tokens)
	})

	t.Run("store_unavailable", func(t *testing.T) {
		stub := &stubAuthenticator{err: apperr.Transient(io.ErrUnexpectedEOF)}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer good-token")

		recorder := httptest.NewRecorder()
		middleware.Authenticate(stub)(echoIdentity).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})

	t.Run("accepted", func(t *testing.T) {
		stub := &stubAuthenticator{identity: &sec.AuthContext{UserID: "user-1"}}
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "bearer good-token")

		recorder := httptest.NewRecorder()
		middleware.Authenticate(stub)(echoIdentity).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "user-1", recorder.Body.String())
		assert.Equal(t, []string{"good-token"}, stub.tokens)
	})
}

func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(echoIdentity)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithAuthContext(request.Context(), &sec.AuthContext{UserID: "user-2"}))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "user-2", recorder.Body.String())
}

/*
TestStructuredLogger_RecordsUserID verifies the access log carries the
identity resolved further down the chain.
*/
func TestStructuredLogger_RecordsUserID(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buffer, nil))

	stub := &stubAuthenticator{identity: &sec.AuthContext{UserID: "user-3"}}
	handler := middleware.RequestID()(middleware.StructuredLogger(logger)(middleware.Authenticate(stub)(echoIdentity)))

	request := httptest.NewRequest(http.MethodGet, "/me", nil)
	request.Header.Set("Authorization", "Bearer token")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
	assert.Equal(t, "http_request_finished", entry["msg"])
	assert.Equal(t, "user-3", entry["user_id"])
	assert.Equal(t, "/me", entry["path"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
}

// # Reliability & Safety

func TestPanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), apperr.CodeInternal)
	assert.NotContains(t, recorder.Body.String(), "boom")
}

// # Cross-Origin Resource Sharing

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name    string
		cfg     stubConfig
		origin  string
		method  string
		allowed bool
		status  int
	}{
		{"development_any_origin", stubConfig{development: true}, "https://x.example", http.MethodGet, true, http.StatusOK},
		{"allow_listed", stubConfig{origins: []string{"https://app.example"}}, "https://app.example", http.MethodGet, true, http.StatusOK},
		{"not_listed", stubConfig{origins: []string{"https://app.example"}}, "https://evil.example", http.MethodGet, false, http.StatusOK},
		{"preflight", stubConfig{origins: []string{"https://app.example"}}, "https://app.example", http.MethodOptions, true, http.StatusNoContent},
		{"no_origin", stubConfig{}, "", http.MethodGet, false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				request.Header.Set("Origin", tt.origin)
			}

			recorder := httptest.NewRecorder()
			middleware.CORS(tt.cfg)(next).ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", middleware.RealIP(request))

	request.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", middleware.RealIP(request))
}
