// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlite opens the embedded, single-file SQL backend.
//
// # Architecture
//
// This package is part of the Infrastructure layer, next to [postgres] and
// [redis]. It owns connection settings only; schema belongs to the store that
// uses the handle.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Pure-Go driver registered as "sqlite".
	_ "modernc.org/sqlite"
)

const (
	// busyTimeoutMillis lets a writer wait for the lock instead of failing fast.
	busyTimeoutMillis = 5000
	// maxOpenConns bounds concurrent connections to the file.
	maxOpenConns = 8
	// pingTimeout is the maximum duration for a health check ping.
	pingTimeout = 2 * time.Second
)

// Open creates the parent directory if needed and returns a verified handle.
//
// # Pragmas
//
// WAL lets readers proceed during a write; busy_timeout serializes
// conflicting writers; foreign_keys is off by default in SQLite.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: failed to create directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)",
		cleanPath, busyTimeoutMillis)

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %s: %w", cleanPath, err)
	}
	database.SetMaxOpenConns(maxOpenConns)

	if err := Ping(ctx, database); err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("sqlite database opened",
		slog.String("path", cleanPath),
		slog.Int("max_conns", maxOpenConns),
	)

	return database, nil
}

// Ping verifies that the SQLite handle is usable.
func Ping(ctx context.Context, database *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := database.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	return nil
}
