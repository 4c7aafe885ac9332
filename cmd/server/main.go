// Knee OA Management Platform - demo server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/kneeoa/internal/api"
	"github.com/ashureev/kneeoa/internal/chat"
	"github.com/ashureev/kneeoa/internal/config"
	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/identity"
	"github.com/ashureev/kneeoa/internal/live"
	"github.com/ashureev/kneeoa/internal/middleware"
	"github.com/ashureev/kneeoa/internal/pages"
	"github.com/ashureev/kneeoa/internal/session"
	"github.com/ashureev/kneeoa/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "responder", cfg.Responder.Mode)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	contentStore, err := content.Open(cfg.ContentDir)
	if err != nil {
		slog.Error("Failed to open content", "error", err, "dir", cfg.ContentDir)
		os.Exit(1)
	}
	if cfg.ContentDir == "" {
		slog.Info("Serving embedded demo content")
	} else {
		slog.Info("Serving content directory", "dir", cfg.ContentDir)
	}

	responder, err := chat.NewResponder(cfg.Responder)
	if err != nil {
		slog.Error("Failed to initialize responder", "error", err)
		os.Exit(1)
	}

	// Initialize services.
	sessions := session.NewManager(repo)
	chatHandler := chat.NewHandler(responder)
	registry := live.NewRegistry()
	feed := live.NewFeed(sessions, cfg.Reveal.Interval)

	// Initialize handlers.
	pageServer, err := pages.New(contentStore, sessions, chatHandler, cfg.Reveal)
	if err != nil {
		slog.Error("Failed to parse page templates", "error", err)
		os.Exit(1)
	}
	apiHandler := api.NewHandler(sessions, contentStore, chatHandler, cfg.Reveal.Interval)
	healthHandler := api.NewHealthHandler(repo, contentStore)
	wsHandler := live.NewWebSocketHandler(feed, registry, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	// Public routes.
	healthHandler.RegisterHealth(r)

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CORS(middleware.Origins(cfg.FrontendURL)))
			apiHandler.RegisterRoutes(r)
		})

		r.Get("/ws/chat", wsHandler.ServeHTTP)
		pageServer.RegisterRoutes(r)
	})

	// Create server.
	// Note: the therapy page streams for several seconds, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start session TTL sweeper.
	session.StartSweeper(ctx, sessions, cfg.SessionTTL, registry.Close)
	slog.Info("Session sweeper started", "session_ttl", cfg.SessionTTL)

	if cfg.WatchContent {
		go func() {
			if err := contentStore.Watch(ctx); err != nil {
				slog.Error("Content watcher stopped", "error", err)
			}
		}()
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
