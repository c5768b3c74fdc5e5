// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/aurasync/internal/logging"
)

// StartStopManager is the lifecycle of *sync.Manager.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SyncService runs the sync manager under a supervisor.
//
// Serve calls Start, waits for ctx to end, then calls Stop. Start fails when
// the sync tag cannot be resolved; the error is returned so the supervisor
// retries with its backoff instead of the process exiting.
type SyncService struct {
	manager StartStopManager
	name    string
}

// NewSyncService wraps manager.
//
//	manager := sync.NewManager(cfg, engine)
//	tree.AddSyncService(services.NewSyncService(manager))
func NewSyncService(manager StartStopManager) *SyncService {
	return &SyncService{
		manager: manager,
		name:    "sync-manager",
	}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		logging.Error().Err(err).Str("service", s.name).Msg("Sync manager failed to start; supervisor will retry")
		return fmt.Errorf("sync manager start failed: %w", err)
	}

	<-ctx.Done()

	// Stop waits for an in-flight cycle, whose tag call outlives ctx.
	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("sync manager stop failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer. Suture uses it in log messages.
func (s *SyncService) String() string {
	return s.name
}
