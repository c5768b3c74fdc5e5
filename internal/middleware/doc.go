// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
Package middleware provides HTTP middleware for the status API.

Key Components:

  - RequestID: UUID-based request tracking. The ID is echoed in the
    X-Request-ID response header and placed in the logging context
    together with a new correlation ID.
  - PrometheusMetrics: request count and latency per chi route pattern.

Both have the standard func(http.Handler) http.Handler shape and plug
directly into chi's r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

See Also:

  - internal/api: the status API router
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
