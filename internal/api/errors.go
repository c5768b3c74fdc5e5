// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package api

// Error codes returned in models.APIError.Code.
const (
	ErrCodeSyncInProgress = "SYNC_IN_PROGRESS"
	ErrCodeSyncFailed     = "SYNC_FAILED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeMethod         = "METHOD_NOT_ALLOWED"
)
