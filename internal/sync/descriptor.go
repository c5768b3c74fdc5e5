// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package sync

import (
	"time"

	"github.com/tomtom215/aurasync/internal/models"
)

const (
	// localIdentifierPrefix namespaces Immich IDs on the frame side.
	localIdentifierPrefix = "immich_"

	defaultUploadPriority = 10
)

// LocalIdentifier derives the frame-side identifier for an Immich asset ID.
func LocalIdentifier(assetID string) string {
	return localIdentifierPrefix + assetID
}

// BuildFrameAsset maps an Immich asset to the record used for its first
// registration with the frame. The upload fields are filled in later by the
// Aura client.
//
// taken_at is fileCreatedAt verbatim, or now() when Immich has none. Width
// and height start from Immich's exif data and stay zero when it has none.
func BuildFrameAsset(asset models.ImmichAsset, now func() time.Time) models.FrameAsset {
	takenAt := asset.FileCreatedAt
	if takenAt == "" {
		takenAt = now().Format(time.RFC3339)
	}

	width, height, _ := asset.Dimensions()

	return models.FrameAsset{
		LocalIdentifier: LocalIdentifier(asset.ID),
		Width:           width,
		Height:          height,
		TakenAt:         takenAt,
		Selected:        true,
		UploadPriority:  defaultUploadPriority,
		RotationCW:      0,
		Favorite:        asset.Favorite(),
		HDR:             false,
		Panorama:        false,
	}
}
