// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Authgate HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Build the credential hasher and token codec.
//  4. Open the configured user store (PostgreSQL, SQLite or Redis).
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/authgate/internal/api"
	"github.com/taibuivan/authgate/internal/auth"
	"github.com/taibuivan/authgate/internal/platform/config"
	"github.com/taibuivan/authgate/internal/platform/constants"
	"github.com/taibuivan/authgate/internal/platform/migration"
	pgstore "github.com/taibuivan/authgate/internal/platform/postgres"
	redisstore "github.com/taibuivan/authgate/internal/platform/redis"
	"github.com/taibuivan/authgate/internal/platform/sec"
	"github.com/taibuivan/authgate/internal/platform/sqlite"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[Authgate] service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded", slog.String("config", cfg.String()))

	// Root context for startup, bounded so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. Credentials ────────────────────────────────────────────────────
	hasher, err := sec.NewHasher(sec.HashParams{
		Algorithm:         cfg.HashAlgorithm,
		BcryptCost:        cfg.HashCost,
		Argon2MemoryKiB:   cfg.Argon2MemoryKiB,
		Argon2Iterations:  cfg.Argon2Iterations,
		Argon2Parallelism: cfg.Argon2Parallelism,
	})
	must(log, err, "initialize credential hasher")

	codec, err := sec.NewTokenCodec(cfg.TokenSecret, cfg.TokenIssuer)
	must(log, err, "initialize token codec")

	// ── 4. User Store ─────────────────────────────────────────────────────
	store, closeStore, err := openStore(startupCtx, cfg, log)
	must(log, err, "open user store")
	defer closeStore()

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	authService, err := auth.NewService(store, hasher, codec, cfg.TokenTTL,
		auth.WithLogger(log),
		auth.WithPasswordPolicy(auth.PasswordPolicy{
			MinLength:        cfg.PasswordMinLength,
			RequireMixedCase: cfg.PasswordRequireMixedCase,
			RequireDigit:     cfg.PasswordRequireDigit,
			RequireSymbol:    cfg.PasswordRequireSymbol,
		}),
	)
	must(log, err, "initialize auth service")

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		StoreName:  cfg.StoreDriver,
		CheckStore: authService.Ready,
	}, log)

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
	})

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		closeStore()
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// openStore connects the backend selected by STORE_DRIVER and returns it with
// its close function.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.UserStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if _, err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return nil, nil, err
		}

		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, cfg.RequestTimeout, log)
		if err != nil {
			return nil, nil, err
		}
		return auth.NewPostgresUserStore(pool), func() {
			log.Info("closing postgres pool")
			pool.Close()
		}, nil

	case config.DriverSQLite:
		database, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}

		store, err := auth.NewSQLiteUserStore(ctx, database)
		if err != nil {
			_ = database.Close()
			return nil, nil, err
		}
		return store, func() {
			log.Info("closing sqlite database")
			if cerr := database.Close(); cerr != nil {
				log.Error("sqlite close error", slog.Any("error", cerr))
			}
		}, nil

	case config.DriverRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}
		return auth.NewRedisUserStore(client), func() {
			log.Info("closing redis client")
			if cerr := client.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}, nil
	}

	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
