// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package api

import (
	"context"
	"time"

	"github.com/tomtom215/aurasync/internal/models"
)

// SyncController is the slice of the sync manager the API needs.
// Implemented by sync.Manager.
type SyncController interface {
	Status() models.SyncStatus
	TriggerSync(ctx context.Context) (models.CycleStats, error)
}

// Handler holds the dependencies shared by all API handlers.
type Handler struct {
	sync      SyncController
	startTime time.Time

	// triggerTimeout bounds a manual cycle. It is detached from the
	// request so a client disconnect cannot abort an upload halfway.
	triggerTimeout time.Duration
	now            func() time.Time
}

// DefaultTriggerTimeout bounds a manually requested cycle.
const DefaultTriggerTimeout = 30 * time.Minute

// NewHandler creates the API handler set.
func NewHandler(sync SyncController) *Handler {
	return &Handler{
		sync:           sync,
		startTime:      time.Now(),
		triggerTimeout: DefaultTriggerTimeout,
		now:            time.Now,
	}
}

func (h *Handler) uptime() float64 {
	return h.now().Sub(h.startTime).Seconds()
}
