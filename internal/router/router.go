// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// replybot dashboard: the JSON API, the server-rendered pages, static
// assets, health and metrics.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"replybot/internal/handlers"
	"replybot/internal/middleware"
	"replybot/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. runNowLimiter may be nil to disable throttling
// of manual runs.
func New(api *handlers.API, pages *handlers.Pages, runNowLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err) // the embed directive guarantees the directory
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Route("/api", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", api.ListTemplates)
			r.Post("/", api.CreateTemplate)
			r.Put("/{id}", api.UpdateTemplate)
			r.Delete("/{id}", api.DeleteTemplate)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", api.ListRules)
			r.Post("/", api.CreateRule)
			r.Put("/{id}", api.UpdateRule)
			r.Delete("/{id}", api.DeleteRule)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", api.History)
			r.Put("/{commentID}/engagement", api.UpdateEngagement)
			r.Delete("/{commentID}", api.DeleteComment)
		})

		r.Get("/settings", api.GetSettings)
		r.Put("/settings", api.UpdateSettings)
		r.Get("/analytics", api.Analytics)
		r.Get("/stats", api.Stats)
		r.Post("/preview", api.Preview)
		r.Post("/generate", api.Generate)

		r.Group(func(r chi.Router) {
			if runNowLimiter != nil {
				r.Use(runNowLimiter.Middleware)
			}
			r.Post("/run-now", api.RunNow)
		})
	})

	r.Get("/", pages.Dashboard)
	r.Get("/templates", pages.Templates)
	r.Get("/rules", pages.Rules)
	r.Get("/analytics", pages.Analytics)
	r.Get("/settings", pages.Settings)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
