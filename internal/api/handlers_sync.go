// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/aurasync/internal/logging"
	"github.com/tomtom215/aurasync/internal/models"
	"github.com/tomtom215/aurasync/internal/sync"
)

// TriggerResponse is the data of a successful POST /api/v1/sync/trigger.
type TriggerResponse struct {
	Stats models.CycleStats `json:"stats"`
	Total int               `json:"total"`
}

// SyncStatus handles GET /api/v1/sync/status
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.sync.Status(), start)
}

// SyncTrigger handles POST /api/v1/sync/trigger. It blocks until the
// cycle finishes and answers 409 if another cycle is already running.
func (h *Handler) SyncTrigger(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.triggerTimeout)
	defer cancel()

	logging.Ctx(r.Context()).Info().Msg("Manual sync requested")
	stats, err := h.sync.TriggerSync(ctx)
	switch {
	case errors.Is(err, sync.ErrCycleInProgress):
		respondError(w, r, http.StatusConflict, ErrCodeSyncInProgress, "A sync cycle is already running", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusBadGateway, ErrCodeSyncFailed, "Sync cycle aborted: "+err.Error(), err)
		return
	}

	respondSuccess(w, http.StatusOK, TriggerResponse{Stats: stats, Total: stats.Total()}, start)
}
