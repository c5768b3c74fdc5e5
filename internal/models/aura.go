// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package models

import "errors"

// ErrNoIdentifier is returned for an AssetPartialID with neither field set.
var ErrNoIdentifier = errors.New("asset reference needs an id or a local identifier")

// Aura frame API Models

// FrameAsset is the asset record the frame service stores. The first block
// is always sent; the rest is filled in after the blob upload and omitted
// until then.
type FrameAsset struct {
	LocalIdentifier string `json:"local_identifier"`
	TakenAt         string `json:"taken_at"`
	Selected        bool   `json:"selected"`
	UploadPriority  int    `json:"upload_priority"`
	RotationCW      int    `json:"rotation_cw"`
	Favorite        bool   `json:"favorite"`
	HDR             bool   `json:"hdr"`
	Panorama        bool   `json:"panorama"`

	ID       string `json:"id,omitempty"` // assigned by the frame service
	UserID   string `json:"user_id,omitempty"`
	FileName string `json:"file_name,omitempty"`
	MD5Hash  string `json:"md5_hash,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`

	// Video companion fields
	VideoFileName          string   `json:"video_file_name,omitempty"`
	Duration               *float64 `json:"duration,omitempty"`
	DurationUnclipped      *float64 `json:"duration_unclipped,omitempty"`
	VideoClipStart         *float64 `json:"video_clip_start,omitempty"`
	VideoClipExcludesAudio *bool    `json:"video_clip_excludes_audio,omitempty"`
	DataUTI                string   `json:"data_uti,omitempty"`
	IsLive                 *bool    `json:"is_live,omitempty"`
	IOSMediaSubtypes       *int     `json:"ios_media_subtypes,omitempty"`
}

// AssetPartialID references an asset by server ID or by local identifier.
type AssetPartialID struct {
	ID              string
	LocalIdentifier string
}

// RequestBody returns the select_asset request body; the server ID wins
// when both are set.
func (p AssetPartialID) RequestBody() (map[string]string, error) {
	switch {
	case p.ID != "":
		return map[string]string{"asset_id": p.ID}, nil
	case p.LocalIdentifier != "":
		return map[string]string{"asset_local_identifier": p.LocalIdentifier}, nil
	default:
		return nil, ErrNoIdentifier
	}
}

// AuraUser is the authenticated account returned by login.
type AuraUser struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	AuthToken string `json:"auth_token"`
}

// AuraLoginRequest is the body of POST /login.json.
type AuraLoginRequest struct {
	User                AuraCredentials `json:"user"`
	Locale              string          `json:"locale"`
	AppIdentifier       string          `json:"app_identifier"`
	IdentifierForVendor string          `json:"identifier_for_vendor"`
	ClientDeviceID      string          `json:"client_device_id"`
}

// AuraCredentials is the user section of a login request.
type AuraCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuraLoginResponse is the response of POST /login.json.
type AuraLoginResponse struct {
	Error  bool `json:"error,omitempty"`
	Result struct {
		CurrentUser AuraUser `json:"current_user"`
	} `json:"result"`
}

// AuraBatchUpdateRequest is the body of POST /assets/batch_update.json.
type AuraBatchUpdateRequest struct {
	Assets []FrameAsset `json:"assets"`
}
