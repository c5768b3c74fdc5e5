// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
manager.go - Sync Manager Lifecycle and Scheduling

Lifecycle Methods:
  - NewManager(): Initialize manager with configuration and the cycle engine
  - Start(): Resolve the sync tag and begin the periodic loop
  - Stop(): Cancel the loop and wait for the in-flight cycle
  - TriggerSync(): Manual cycle execution (fails fast while one runs)

Scheduling:
The first cycle runs as soon as the loop starts. After every cycle the loop
sleeps for the configured interval, so cycles never overlap and the interval
is measured from the end of one cycle to the start of the next. A failed or
panicking cycle is logged and the schedule carries on.

Thread Safety:
  - syncMu: Serializes cycles between the loop and TriggerSync
  - mu: Protects shared state (running, lastSync, lastStats, lastErr)
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/aurasync/internal/config"
	"github.com/tomtom215/aurasync/internal/logging"
	"github.com/tomtom215/aurasync/internal/metrics"
	"github.com/tomtom215/aurasync/internal/models"
)

// ErrCycleInProgress is returned by TriggerSync while another cycle runs.
var ErrCycleInProgress = errors.New("sync cycle already in progress")

// CycleEngine is what the manager schedules. Implemented by *Engine.
type CycleEngine interface {
	EnsureTag(ctx context.Context) (string, error)
	RunCycle(ctx context.Context) (models.CycleStats, error)
}

// Manager runs the engine on a fixed interval.
type Manager struct {
	engine   CycleEngine
	interval time.Duration

	// tag resolution retries at Start
	retryAttempts int
	retryDelay    time.Duration

	lastSync    time.Time
	lastStats   models.CycleStats
	lastErr     error
	nextSync    time.Time
	running     bool
	starting    bool
	tagResolved bool
	inProgress  atomic.Bool
	mu          sync.RWMutex
	syncMu      sync.Mutex // Protects concurrent sync execution
	stopChan    chan struct{}
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewManager creates a manager for engine using the sync interval from cfg.
func NewManager(cfg *config.Config, engine CycleEngine) *Manager {
	return &Manager{
		engine:        engine,
		interval:      cfg.Sync.Interval(),
		retryAttempts: 3,
		retryDelay:    2 * time.Second,
	}
}

// Start resolves the sync tag and launches the sync loop. A tag that cannot
// be resolved is returned as an error so the caller (normally the
// supervisor) can restart with backoff.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running || m.starting {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.starting = true
	m.mu.Unlock()

	err := m.retryWithBackoff(ctx, func() error {
		_, err := m.engine.EnsureTag(ctx)
		return err
	})
	if err != nil {
		m.mu.Lock()
		m.starting = false
		m.mu.Unlock()
		return fmt.Errorf("resolve sync tag: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.starting = false
	m.running = true
	m.tagResolved = true
	m.stopChan = make(chan struct{})
	m.cancel = cancel
	stop := m.stopChan
	m.mu.Unlock()

	logging.Info().Dur("interval", m.interval).Msg("Starting sync manager")

	m.wg.Add(1)
	go m.syncLoop(loopCtx, stop)

	return nil
}

// Stop halts the loop, cancelling an in-flight cycle, and waits for it.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	close(m.stopChan)
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")
	return nil
}

// syncLoop runs a cycle, sleeps, and repeats until stopped.
func (m *Manager) syncLoop(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	for {
		m.syncMu.Lock()
		_, _ = m.runCycle(ctx)
		m.syncMu.Unlock()

		next := time.Now().Add(m.interval)
		m.mu.Lock()
		m.nextSync = next
		m.mu.Unlock()
		logging.Info().Dur("interval", m.interval).Time("next_sync", next).Msg("Sleeping until next sync")

		timer := time.NewTimer(m.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// TriggerSync runs one cycle now. It returns ErrCycleInProgress instead of
// waiting when a cycle is already running.
func (m *Manager) TriggerSync(ctx context.Context) (models.CycleStats, error) {
	if !m.syncMu.TryLock() {
		return models.CycleStats{}, ErrCycleInProgress
	}
	defer m.syncMu.Unlock()

	logging.Info().Msg("Manual sync triggered")
	return m.runCycle(ctx)
}

// runCycle executes one cycle under a fresh correlation ID. syncMu must be
// held by the caller.
func (m *Manager) runCycle(ctx context.Context) (stats models.CycleStats, err error) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)
	start := time.Now()

	m.inProgress.Store(true)
	defer m.inProgress.Store(false)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync cycle panicked: %v", r)
			log.Error().Err(err).Msg("Sync cycle failed")
		}

		duration := time.Since(start)
		metrics.RecordSyncCycle(duration, stats.Uploaded, stats.Failed, err)

		m.mu.Lock()
		m.lastStats = stats
		m.lastErr = err
		if err == nil {
			m.lastSync = time.Now()
		}
		m.mu.Unlock()

		log.Info().
			Dur("duration", duration).
			Int("uploaded", stats.Uploaded).
			Int("failed", stats.Failed).
			Bool("aborted", err != nil).
			Msg("Sync cycle completed")
	}()

	log.Info().Msg("Starting sync cycle")
	stats, err = m.engine.RunCycle(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Sync cycle failed")
	}
	return stats, err
}

// LastSyncTime returns the end time of the last cycle that did not abort.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// LastStats returns the stats of the most recent cycle.
func (m *Manager) LastStats() models.CycleStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastStats
}

// LastError returns the error of the most recent cycle, nil if it succeeded.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// NextSync returns when the loop will run next, zero before the first sleep.
func (m *Manager) NextSync() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nextSync
}

// Running reports whether the loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// TagResolved reports whether Start resolved the sync tag.
func (m *Manager) TagResolved() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tagResolved
}

// CycleInProgress reports whether a cycle is running right now.
func (m *Manager) CycleInProgress() bool {
	return m.inProgress.Load()
}

// Interval returns the configured pause between cycles.
func (m *Manager) Interval() time.Duration {
	return m.interval
}

// Status returns a snapshot for the status API.
func (m *Manager) Status() models.SyncStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := models.SyncStatus{
		Running:         m.running,
		TagResolved:     m.tagResolved,
		CycleInProgress: m.inProgress.Load(),
		LastStats:       m.lastStats,
		IntervalMinutes: int(m.interval / time.Minute),
	}
	if !m.lastSync.IsZero() {
		t := m.lastSync
		status.LastSync = &t
	}
	if !m.nextSync.IsZero() && m.running {
		t := m.nextSync
		status.NextSync = &t
	}
	if m.lastErr != nil {
		status.LastError = m.lastErr.Error()
	}
	return status
}
