// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package models

import (
	"path/filepath"
	"strings"
)

// Immich REST API Models
// Only the fields aurasync reads are declared; everything else in the
// server's response is ignored by the decoder.

// ImmichAsset is one asset record from POST /search/metadata.
type ImmichAsset struct {
	ID               string      `json:"id"`
	Type             string      `json:"type,omitempty"`             // IMAGE, VIDEO, AUDIO, OTHER
	OriginalFileName string      `json:"originalFileName,omitempty"` // e.g. "IMG_0042.HEIC"
	OriginalMimeType string      `json:"originalMimeType,omitempty"`
	FileCreatedAt    string      `json:"fileCreatedAt,omitempty"` // RFC3339, forwarded verbatim as taken_at
	IsFavorite       *bool       `json:"isFavorite,omitempty"`
	Duration         string      `json:"duration,omitempty"` // "H:MM:SS.ffffff"
	ExifInfo         *ImmichExif `json:"exifInfo,omitempty"`
	Tags             []ImmichTag `json:"tags,omitempty"`
}

// ImmichExif is the subset of exifInfo used to size photos the image
// decoder cannot read, such as HEIC.
type ImmichExif struct {
	ExifImageWidth  int `json:"exifImageWidth,omitempty"`
	ExifImageHeight int `json:"exifImageHeight,omitempty"`
}

// Dimensions returns the pixel size Immich extracted from the file's
// metadata. ok is false unless both sides are known.
func (a ImmichAsset) Dimensions() (width, height int, ok bool) {
	if a.ExifInfo == nil || a.ExifInfo.ExifImageWidth <= 0 || a.ExifInfo.ExifImageHeight <= 0 {
		return 0, 0, false
	}
	return a.ExifInfo.ExifImageWidth, a.ExifInfo.ExifImageHeight, true
}

// FileNameOr returns the original file name, or def when the server sent none.
func (a ImmichAsset) FileNameOr(def string) string {
	if a.OriginalFileName == "" {
		return def
	}
	return a.OriginalFileName
}

// Extension returns the original file name's extension including the dot,
// or "" if there is none.
func (a ImmichAsset) Extension() string {
	return filepath.Ext(a.OriginalFileName)
}

// Favorite reports the favorite flag, false when absent.
func (a ImmichAsset) Favorite() bool {
	return a.IsFavorite != nil && *a.IsFavorite
}

// DurationOr returns the duration string, or def when absent.
func (a ImmichAsset) DurationOr(def string) string {
	if strings.TrimSpace(a.Duration) == "" {
		return def
	}
	return a.Duration
}

// ImmichSearchRequest is the body of POST /search/metadata.
// TagIDs is always serialized; null selects assets with no tags at all.
type ImmichSearchRequest struct {
	AlbumIDs []string `json:"albumIds"`
	TagIDs   []string `json:"tagIds"`
	WithExif bool     `json:"withExif"`
	Size     int      `json:"size"`
	Page     int      `json:"page"`
}

// ImmichSearchResponse wraps one page of search results.
type ImmichSearchResponse struct {
	Assets ImmichSearchPage `json:"assets"`
}

// ImmichSearchPage is the assets section of a search response.
type ImmichSearchPage struct {
	Total    int           `json:"total"`
	Count    int           `json:"count"`
	Items    []ImmichAsset `json:"items"`
	NextPage *string       `json:"nextPage"`
}

// ImmichTag is a tag from GET /tags or POST /tags.
type ImmichTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"` // full hierarchical path, e.g. "parent/child"
}

// ImmichCreateTagRequest is the body of POST /tags.
type ImmichCreateTagRequest struct {
	Name string `json:"name"`
}

// ImmichBulkIDsRequest is the body of PUT /tags/{id}/assets.
type ImmichBulkIDsRequest struct {
	IDs []string `json:"ids"`
}

// ImmichBulkIDResult is one entry of the PUT /tags/{id}/assets response.
type ImmichBulkIDResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"` // duplicate, no_permission, not_found, unknown
}
