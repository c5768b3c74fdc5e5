// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
Package sync mirrors untagged assets of an Immich album to an Aura frame.

# Components

  - ImmichClient: search, download and tagging against the Immich API
  - AuraClient: login, asset selection and metadata updates against the Aura
    API, with S3BlobStore and SQSReadinessQueue for the storage half of the
    upload protocol
  - ImmichCircuitBreakerClient, AuraCircuitBreakerClient: gobreaker wrappers
  - Pipeline: moves one asset end to end through a scratch directory
  - Engine: one sync cycle (search, transfer each asset, tag the successes)
  - Manager: runs the engine on an interval, plus manual triggers

# Delivery Model

The Immich tag is the only record of what was sent. A cycle that fails
between an upload and the tag call leaves the asset untagged, so the next
cycle sends it again. Delivery is at-least-once.

# Failure Isolation

Each asset is transferred independently. A failed download or upload counts
against that asset only and the cycle continues. A failed tag call is logged
and leaves the stats unchanged. Only a failed search or Aura login aborts a
cycle.

# Usage

	immich := sync.NewImmichCircuitBreakerClient(sync.NewImmichClient(cfg.Immich))
	aura := sync.NewAuraCircuitBreakerClient(sync.NewAuraClient(cfg.Aura, blobs, queue))
	pipeline := sync.NewPipeline(immich, aura, cfg.Aura.FrameID, cfg.Sync.TempDir)
	engine := sync.NewEngine(cfg, immich, aura, pipeline)
	manager := sync.NewManager(cfg, engine)
	if err := manager.Start(ctx); err != nil {
	    return err
	}
	defer manager.Stop()
*/
package sync
