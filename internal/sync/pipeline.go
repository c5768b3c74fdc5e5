// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/aurasync/internal/logging"
	"github.com/tomtom215/aurasync/internal/metrics"
	"github.com/tomtom215/aurasync/internal/models"
)

// Fallback file names inside the scratch directory.
const (
	defaultPhotoFileName = "photo.jpg"
	defaultVideoFileName = "video.mp4"
	posterFileSuffix     = "_poster.jpg"
)

// TransferState is a step of the per-asset transfer.
type TransferState int

// Transfer states in the order a transfer passes through them.
// StatePosterFetched only occurs for videos.
const (
	StateStart TransferState = iota
	StateDownloaded
	StatePosterFetched
	StateRegisteredWithFrame
	StateUploaded
	StateMetadataAttached
	StateDone
	StateFailed
)

var transferStateNames = map[TransferState]string{
	StateStart:               "START",
	StateDownloaded:          "DOWNLOADED",
	StatePosterFetched:       "POSTER_FETCHED",
	StateRegisteredWithFrame: "REGISTERED_WITH_FRAME",
	StateUploaded:            "UPLOADED",
	StateMetadataAttached:    "METADATA_ATTACHED",
	StateDone:                "DONE",
	StateFailed:              "FAILED",
}

func (s TransferState) String() string {
	if name, ok := transferStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TransferState(%d)", int(s))
}

// TransferResult is the outcome of one asset transfer. State is StateDone on
// success and StateFailed otherwise; LastGood is the last state reached
// before the failure.
type TransferResult struct {
	AssetID  string
	Kind     models.MediaKind
	State    TransferState
	LastGood TransferState
	Err      error
}

// OK reports whether the transfer completed.
func (r TransferResult) OK() bool {
	return r.State == StateDone && r.Err == nil
}

func (r *TransferResult) advance(s TransferState) {
	r.State = s
	r.LastGood = s
}

func (r *TransferResult) fail(err error) {
	r.State = StateFailed
	r.Err = err
}

// Pipeline moves single assets from Immich to a frame.
type Pipeline struct {
	immich  ImmichClientInterface
	aura    AuraClientInterface
	frameID string
	tempDir string
	now     func() time.Time
}

// NewPipeline creates a pipeline uploading to frameID. Scratch directories
// are created under tempDir, or the OS default when it is empty.
func NewPipeline(immich ImmichClientInterface, aura AuraClientInterface, frameID, tempDir string) *Pipeline {
	return &Pipeline{
		immich:  immich,
		aura:    aura,
		frameID: frameID,
		tempDir: tempDir,
		now:     time.Now,
	}
}

// Transfer downloads one asset and registers it with the frame. It never
// panics and never returns with files left in its scratch directory.
func (p *Pipeline) Transfer(ctx context.Context, asset models.ImmichAsset) (result TransferResult) {
	start := time.Now()
	result = TransferResult{
		AssetID:  asset.ID,
		Kind:     Classify(asset),
		State:    StateStart,
		LastGood: StateStart,
	}
	defer func() {
		metrics.RecordAssetTransfer(result.Kind.String(), time.Since(start), result.Err)
	}()

	if asset.ID == "" {
		result.fail(errors.New("asset has no id"))
		return result
	}

	scratch, err := os.MkdirTemp(p.tempDir, "aurasync-*")
	if err != nil {
		result.fail(fmt.Errorf("create scratch dir: %w", err))
		return result
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("path", scratch).Msg("Failed to remove scratch directory")
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			result.fail(fmt.Errorf("panic during transfer: %v", r))
		}
	}()

	logging.Ctx(ctx).Info().
		Str("asset_id", asset.ID).
		Str("kind", result.Kind.String()).
		Str("file", asset.OriginalFileName).
		Msg("Processing asset")

	if result.Kind == models.MediaKindVideo {
		err = p.transferVideo(ctx, asset, scratch, &result)
	} else {
		err = p.transferPhoto(ctx, asset, scratch, &result)
	}
	if err != nil {
		result.fail(err)
		return result
	}

	result.advance(StateDone)
	return result
}

func (p *Pipeline) transferPhoto(ctx context.Context, asset models.ImmichAsset, scratch string, result *TransferResult) error {
	photoPath := filepath.Join(scratch, safeFileName(asset.FileNameOr(defaultPhotoFileName), defaultPhotoFileName))
	if err := p.immich.DownloadOriginal(ctx, asset.ID, photoPath); err != nil {
		return err
	}
	result.advance(StateDownloaded)

	frameAsset := BuildFrameAsset(asset, p.now)
	logging.Ctx(ctx).Debug().Str("asset_id", asset.ID).Str("local_identifier", frameAsset.LocalIdentifier).Msg("Uploading photo to Aura")
	if err := p.aura.UploadImage(ctx, p.frameID, photoPath, frameAsset); err != nil {
		return err
	}
	markFrameSteps(result)

	logging.Ctx(ctx).Info().Str("asset_id", asset.ID).Str("file", asset.OriginalFileName).Msg("Uploaded photo")
	return nil
}

func (p *Pipeline) transferVideo(ctx context.Context, asset models.ImmichAsset, scratch string, result *TransferResult) error {
	videoPath := filepath.Join(scratch, safeFileName(asset.FileNameOr(defaultVideoFileName), defaultVideoFileName))
	if err := p.immich.DownloadOriginal(ctx, asset.ID, videoPath); err != nil {
		return err
	}
	result.advance(StateDownloaded)

	posterPath := filepath.Join(scratch, safeFileName(asset.ID+posterFileSuffix, "poster.jpg"))
	if err := p.immich.DownloadThumbnail(ctx, asset.ID, posterPath); err != nil {
		return err
	}
	result.advance(StatePosterFetched)

	duration := ParseDuration(asset.DurationOr(defaultVideoDuration))
	frameAsset := BuildFrameAsset(asset, p.now)
	logging.Ctx(ctx).Debug().
		Str("asset_id", asset.ID).
		Str("local_identifier", frameAsset.LocalIdentifier).
		Float64("duration_seconds", duration).
		Msg("Uploading video to Aura")
	if err := p.aura.UploadVideo(ctx, p.frameID, videoPath, posterPath, duration, frameAsset); err != nil {
		return err
	}
	markFrameSteps(result)

	logging.Ctx(ctx).Info().Str("asset_id", asset.ID).Str("file", asset.OriginalFileName).Float64("duration_seconds", duration).Msg("Uploaded video")
	return nil
}

// markFrameSteps records the frame-side steps, which the Aura client runs as
// one hand-off.
func markFrameSteps(result *TransferResult) {
	result.advance(StateRegisteredWithFrame)
	result.advance(StateUploaded)
	result.advance(StateMetadataAttached)
}

// safeFileName keeps only the final element of name so downloads stay inside
// the scratch directory.
func safeFileName(name, fallback string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	switch base {
	case "", ".", "..", "/":
		return fallback
	}
	return base
}
