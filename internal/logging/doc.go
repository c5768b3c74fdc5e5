// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

// Package logging provides the process-wide zerolog logger for aurasync.
//
// The service runs unattended, so every decision point of a sync cycle is
// logged as a structured line: cycle start and end, per-asset outcome, tag
// outcome and the next scheduled run. Output goes to stderr and, optionally,
// to an append-only log file.
//
// # Quick Start
//
//	if err := logging.Init(logging.Config{Level: "INFO", Format: "console", File: "aurasync.log"}); err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to initialize logging")
//	}
//	defer logging.Close()
//
//	logging.Info().Int("interval_minutes", 15).Msg("Starting sync service")
//
// # Cycle Correlation
//
// Each sync cycle runs under a context with a short correlation ID:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Int("uploaded", 3).Msg("Sync complete")
//
// # Levels
//
// Both zerolog level names and the DEBUG, INFO, WARNING, ERROR, CRITICAL
// names accepted by the configuration file are understood. CRITICAL maps to
// zerolog's fatal level.
//
// # Supervisor Integration
//
// NewSlogLogger bridges zerolog to log/slog for sutureslog event hooks.
//
// # Redaction
//
// SanitizeToken and SanitizeEmail mask credentials before they are logged.
package logging
