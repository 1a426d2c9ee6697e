// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// page template API. Reads are open; mutating routes require the API token
// and are rate-limited per client IP.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pagestore/internal/handlers"
	"pagestore/internal/middleware"
)

// Options configures the protection applied to mutating routes.
type Options struct {
	// TokenHash is the bcrypt hash of the API token. Empty disables the check.
	TokenHash string

	// WriteLimiter rate-limits mutating routes. Nil disables rate limiting.
	WriteLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(tmpl *handlers.Templates, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check, no auth.
	r.Get("/health", healthHandler)

	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", tmpl.List)
		r.Get("/slug/{slug}", tmpl.GetBySlug)
		r.Get("/{id}", tmpl.Get)
		r.Get("/{id}/export", tmpl.Export)

		// Mutations: rate limit, then token. Rejected tokens still count
		// against the limit.
		r.Group(func(r chi.Router) {
			if opts.WriteLimiter != nil {
				r.Use(opts.WriteLimiter.Middleware)
			}
			r.Use(middleware.RequireToken(opts.TokenHash))

			r.Post("/", tmpl.Create)
			r.Post("/import", tmpl.Import)
			r.Patch("/{id}", tmpl.Update)
			r.Delete("/{id}", tmpl.Delete)
			r.Post("/{id}/duplicate", tmpl.Duplicate)
			r.Post("/{id}/publish", tmpl.Publish)
			r.Post("/{id}/unpublish", tmpl.Unpublish)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
