// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package models

// CycleStats is the outcome of one reconciliation cycle. It is logged and
// reported by the status API but never persisted.
type CycleStats struct {
	Uploaded int `json:"uploaded"`
	Failed   int `json:"failed"`
}

// Total returns the number of assets the cycle attempted.
func (s CycleStats) Total() int {
	return s.Uploaded + s.Failed
}

// MediaKind distinguishes the two transfer variants.
type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

func (k MediaKind) String() string {
	return string(k)
}
