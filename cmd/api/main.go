// Package main is the entry point for the Mileage Log API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/mileage-log/internal/config"
	"github.com/pkordes/mileage-log/internal/export"
	"github.com/pkordes/mileage-log/internal/handler"
	"github.com/pkordes/mileage-log/internal/identity"
	"github.com/pkordes/mileage-log/internal/middleware"
	"github.com/pkordes/mileage-log/internal/repo"
	"github.com/pkordes/mileage-log/internal/service"
	"github.com/pkordes/mileage-log/migrations"
)

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default stderr logger before the JSON logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage ----------------------------------------------------------
	entries, closeRepo, err := openEntryRepo(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open data backend", "backend", cfg.DataBackend, "error", err)
		os.Exit(1)
	}
	defer closeRepo()
	slog.Info("data backend ready", "backend", cfg.DataBackend)

	// --- Export template --------------------------------------------------
	tmpl, err := loadTemplate(cfg.TemplatePath)
	if err != nil {
		slog.Error("failed to load export template", "path", cfg.TemplatePath, "error", err)
		os.Exit(1)
	}

	// --- Auth -------------------------------------------------------------
	authMW, err := newAuthMiddleware(cfg)
	if err != nil {
		slog.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AuthMode == config.AuthModeDev {
		slog.Warn("dev auth enabled: X-Debug-Subject is trusted without verification")
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → MaxBodySize → Auth.
	svc := service.NewEntryService(entries, export.New(tmpl), service.WithLogger(logger))
	srv := handler.NewServer(svc, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(authMW)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openEntryRepo builds the EntryRepo selected by DATA_BACKEND and returns a
// function that releases its resources.
func openEntryRepo(ctx context.Context, cfg config.Config) (repo.EntryRepo, func(), error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		slog.Warn("memory backend: entries are lost on restart")
		return repo.NewMemoryEntryRepo(), func() {}, nil

	case config.BackendSQLite:
		// OpenSQLite always brings the schema up to date.
		db, err := repo.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo.NewSQLiteEntryRepo(db), func() { db.Close() }, nil

	case config.BackendPostgres:
		// pgxpool manages a pool of Postgres connections.
		// New() does not open connections immediately; the first query does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if cfg.AutoMigrate {
			// goose drives database/sql; borrow connections from the pool.
			db := stdlib.OpenDBFromPool(pool)
			n, err := migrations.Up(ctx, goose.DialectPostgres, db)
			_ = db.Close()
			if err != nil {
				pool.Close()
				return nil, nil, err
			}
			slog.Info("migrations applied", "count", n)
		}
		return repo.NewEntryRepo(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
}

func loadTemplate(path string) ([]byte, error) {
	if path == "" {
		return export.DefaultTemplate()
	}
	return export.LoadTemplate(path)
}

func newAuthMiddleware(cfg config.Config) (func(http.Handler) http.Handler, error) {
	if cfg.AuthMode == config.AuthModeDev {
		return middleware.NewDevAuthMiddleware(cfg.DevSubject, cfg.DevName, handler.PublicPaths...), nil
	}
	v, err := identity.NewVerifier(identity.Config{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		return nil, err
	}
	return middleware.NewAuthMiddleware(v, handler.PublicPaths...), nil
}
