// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package sync

import (
	"strings"

	"github.com/tomtom215/aurasync/internal/models"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".avi":  {},
	".mkv":  {},
	".m4v":  {},
	".mpg":  {},
	".mpeg": {},
	".wmv":  {},
	".flv":  {},
}

// IsVideo reports whether an asset is a video. A MIME type starting with
// "video/" (exact case, as Immich sends it) wins; otherwise the extension
// (any case, with or without the dot) decides.
// Everything else is a photo.
func IsVideo(mimeType, ext string) bool {
	if strings.HasPrefix(mimeType, "video/") {
		return true
	}

	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return false
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	_, ok := videoExtensions[ext]
	return ok
}

// Classify returns the media kind of an Immich asset.
func Classify(asset models.ImmichAsset) models.MediaKind {
	if IsVideo(asset.OriginalMimeType, asset.Extension()) {
		return models.MediaKindVideo
	}
	return models.MediaKindPhoto
}
