// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package models

import (
	"time"
)

// APIResponse is the envelope every status API endpoint returns.
//
// Status is "success" with Data set, or "error" with Error set.
//
//	{
//	  "status": "success",
//	  "data": {"uploaded": 3, "failed": 0},
//	  "metadata": {"timestamp": "2026-10-14T12:00:00Z", "duration_ms": 5120}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}

// APIError is a machine-readable code plus a human-readable message.
//
// Codes used by the status API:
//   - SYNC_IN_PROGRESS: a cycle is already running
//   - SYNC_FAILED: the cycle aborted (search or login failure)
//   - NOT_READY: the sync manager has not started
//   - NOT_FOUND, METHOD_NOT_ALLOWED
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SyncStatus is the body of GET /api/v1/sync/status.
type SyncStatus struct {
	Running         bool       `json:"running"`
	TagResolved     bool       `json:"tag_resolved"`
	CycleInProgress bool       `json:"cycle_in_progress"`
	LastSync        *time.Time `json:"last_sync,omitempty"`
	NextSync        *time.Time `json:"next_sync,omitempty"`
	LastStats       CycleStats `json:"last_stats"`
	LastError       string     `json:"last_error,omitempty"`
	IntervalMinutes int        `json:"interval_minutes"`
}

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Reason        string  `json:"reason,omitempty"`
}
