// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the page template server.
// It loads configuration, opens the configured template store, sets up
// routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagestore/internal/backend"
	"pagestore/internal/cache"
	"pagestore/internal/config"
	"pagestore/internal/handlers"
	"pagestore/internal/ident"
	"pagestore/internal/logging"
	"pagestore/internal/middleware"
	"pagestore/internal/router"
	"pagestore/internal/templates"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		slog.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"backend", cfg.StorageBackend,
	)

	backendCfg, err := backend.FromConfig(cfg)
	if err != nil {
		slog.Error("invalid storage backend", "error", err)
		os.Exit(1)
	}
	templateStore, err := backend.Open(backendCfg)
	if err != nil {
		slog.Error("failed to open template store", "error", err)
		os.Exit(1)
	}
	defer templateStore.Close()

	newID, err := ident.ForStrategy(cfg.IDStrategy)
	if err != nil {
		slog.Error("invalid id strategy", "error", err)
		os.Exit(1)
	}

	opts := []templates.Option{
		templates.WithIDGenerator(newID),
		templates.WithLogger(logger),
	}

	// Connect to Valkey for the read-through cache (optional).
	if cfg.CacheEnabled {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()

		templateCache := cache.NewTemplateCache(valkeyClient, cfg.CacheTTL)
		// Entries may be stale if another process wrote while we were down.
		templateCache.InvalidateAll(context.Background())
		opts = append(opts, templates.WithCache(templateCache))
	} else {
		slog.Info("template cache disabled")
	}

	repo := templates.New(templateStore, opts...)

	routerOpts := router.Options{TokenHash: cfg.APITokenHash}
	if cfg.APITokenHash == "" {
		slog.Warn("API_TOKEN_HASH not set, mutating routes are unprotected")
	}
	if cfg.RateLimitWrites > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitWrites, time.Minute)
		defer limiter.Stop()
		routerOpts.WriteLimiter = limiter
	}

	r := router.New(handlers.NewTemplates(repo), routerOpts)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("server stopped gracefully")
}
