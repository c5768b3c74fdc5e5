// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/aurasync/internal/middleware"
)

// Router builds the chi route tree for the status API.
type Router struct {
	handler *Handler
	metrics http.Handler
}

// NewRouter creates a router serving handler and the default Prometheus registry.
func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler, metrics: promhttp.Handler()}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ErrCodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, ErrCodeMethod, "Method not allowed", nil)
	})

	r.Method(http.MethodGet, "/metrics", router.metrics)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/sync", func(r chi.Router) {
		r.Get("/status", router.handler.SyncStatus)
		r.Post("/trigger", router.handler.SyncTrigger)
	})

	return r
}
