// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/aurasync/internal/config"
	"github.com/tomtom215/aurasync/internal/logging"
	"github.com/tomtom215/aurasync/internal/metrics"
	"github.com/tomtom215/aurasync/internal/models"
)

// tagTimeout bounds the final tag call, which runs detached from shutdown.
const tagTimeout = 30 * time.Second

// Engine runs sync cycles: find untagged album assets, transfer each one, tag
// the ones that made it.
type Engine struct {
	immich   ImmichClientInterface
	aura     AuraClientInterface
	pipeline *Pipeline

	albumID  string
	tagName  string
	email    string
	password string

	tagMu sync.RWMutex
	tagID string
}

// NewEngine creates an engine. The clients are normally the circuit breaker
// wrappers and pipeline uses the same ones.
func NewEngine(cfg *config.Config, immich ImmichClientInterface, aura AuraClientInterface, pipeline *Pipeline) *Engine {
	return &Engine{
		immich:   immich,
		aura:     aura,
		pipeline: pipeline,
		albumID:  cfg.Immich.AlbumID,
		tagName:  cfg.Sync.TagName,
		email:    cfg.Aura.Email,
		password: cfg.Aura.Password,
	}
}

// TagID returns the cached sync tag ID, or "" before EnsureTag succeeded.
func (e *Engine) TagID() string {
	e.tagMu.RLock()
	defer e.tagMu.RUnlock()
	return e.tagID
}

// EnsureTag resolves the sync tag once, creating it if needed. Later calls
// return the cached ID.
func (e *Engine) EnsureTag(ctx context.Context) (string, error) {
	if id := e.TagID(); id != "" {
		return id, nil
	}

	e.tagMu.Lock()
	defer e.tagMu.Unlock()
	if e.tagID != "" {
		return e.tagID, nil
	}

	id, err := e.immich.GetOrCreateTag(ctx, e.tagName)
	if err != nil {
		return "", fmt.Errorf("resolve tag %q: %w", e.tagName, err)
	}
	e.tagID = id
	logging.Info().Str("tag", e.tagName).Str("tag_id", id).Msg("Using sync tag")
	return id, nil
}

// RunCycle performs one sync pass.
//
// The error is non-nil only when the search or the Aura login fails; nothing
// is transferred or tagged in that case. Per-asset failures are counted in
// the stats, and a failed tag call is logged without changing them.
// Cancelling ctx stops the cycle between assets.
func (e *Engine) RunCycle(ctx context.Context) (models.CycleStats, error) {
	log := logging.Ctx(ctx)
	var stats models.CycleStats

	assets, err := e.immich.SearchUntaggedAlbumAssets(ctx, e.albumID)
	if err != nil {
		log.Error().Err(err).Str("album_id", e.albumID).Msg("Failed to search album")
		return stats, fmt.Errorf("search untagged assets: %w", err)
	}
	metrics.RecordPendingAssets(len(assets))
	log.Info().Int("assets", len(assets)).Str("album_id", e.albumID).Msg("Found unsynced assets in album")

	if len(assets) == 0 {
		log.Info().Msg("No new assets to sync")
		return stats, nil
	}

	if _, err := e.aura.Login(ctx, e.email, e.password); err != nil {
		log.Error().Err(err).Msg("Failed to log in to Aura")
		return stats, fmt.Errorf("aura login: %w", err)
	}

	uploaded := make([]string, 0, len(assets))
	for i, asset := range assets {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Int("remaining", len(assets)-i).Msg("Sync cycle interrupted")
			break
		}

		result := e.pipeline.Transfer(ctx, asset)
		if !result.OK() {
			stats.Failed++
			log.Error().
				Err(result.Err).
				Str("asset_id", asset.ID).
				Str("kind", result.Kind.String()).
				Str("last_state", result.LastGood.String()).
				Msg("Failed to process asset")
			continue
		}

		stats.Uploaded++
		uploaded = append(uploaded, asset.ID)
	}

	e.tagUploaded(ctx, uploaded)

	log.Info().Int("uploaded", stats.Uploaded).Int("failed", stats.Failed).Msg("Sync complete")
	return stats, nil
}

// tagUploaded tags assetIDs with one bulk call. It outlives cancellation of
// ctx so an interrupted cycle still records what it transferred.
func (e *Engine) tagUploaded(ctx context.Context, assetIDs []string) {
	if len(assetIDs) == 0 {
		return
	}
	log := logging.Ctx(ctx)

	tagCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tagTimeout)
	defer cancel()

	tagID, err := e.EnsureTag(tagCtx)
	if err == nil {
		err = e.immich.TagAssets(tagCtx, tagID, assetIDs)
	}
	if err != nil {
		metrics.RecordTagFailure()
		log.Error().Err(err).Int("assets", len(assetIDs)).Msg("Failed to tag assets; they will be retried next cycle")
		return
	}

	log.Info().Int("assets", len(assetIDs)).Str("tag", e.tagName).Msg("Tagged assets")
}
