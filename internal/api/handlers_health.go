// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/aurasync/internal/models"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of Immich or Aura.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:        "alive",
		UptimeSeconds: h.uptime(),
	}, start)
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Ready means the manager is running and the transfer tag is resolved;
// before that no cycle can tag anything, so the daemon is not doing its job.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := h.sync.Status()

	health := models.HealthStatus{
		Status:        "ready",
		UptimeSeconds: h.uptime(),
	}
	code := http.StatusOK
	switch {
	case !status.Running:
		health.Status, health.Reason = "not_ready", "sync manager is not running"
		code = http.StatusServiceUnavailable
	case !status.TagResolved:
		health.Status, health.Reason = "not_ready", "transfer tag is not resolved"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, &models.APIResponse{
		Status: health.Status,
		Data:   health,
		Metadata: models.Metadata{
			Timestamp:  time.Now(),
			DurationMS: time.Since(start).Milliseconds(),
		},
	})
}
