// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
Package models defines the data types exchanged with Immich, the Aura frame
service and clients of the status API.

# Immich

ImmichAsset normalizes the open-ended search record to the handful of fields
the sync path reads. Accessors supply defaults for absent fields so callers
never touch raw optional values:

	name := asset.FileNameOr("photo.jpg")
	fav := asset.Favorite()            // false when isFavorite is absent
	dur := asset.DurationOr("0:00:00.00")

# Aura

FrameAsset is the frame service's asset record in its own snake_case JSON.
Post-upload fields are pointers or zero-omitting so a first registration
carries only the descriptor fields. AssetPartialID addresses an asset in
select_asset calls by server ID or local identifier.

# Status API

APIResponse, Metadata and APIError form the response envelope. SyncStatus
and HealthStatus are the payloads of the status and health endpoints.
*/
package models
