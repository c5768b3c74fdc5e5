// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
immich_client.go - Immich REST API Client

Client Features:
  - x-api-key authentication on every request
  - Client-side request pacing with golang.org/x/time/rate
  - Automatic HTTP 429 handling with exponential backoff (1s, 2s, 4s, 8s, 16s)
  - Streaming downloads straight to disk
  - Context support for cancellation and timeouts

Endpoints used:
  - GET  /server/ping
  - POST /search/metadata
  - GET  /assets/{id}/original
  - GET  /assets/{id}/thumbnail
  - GET  /tags, POST /tags
  - PUT  /tags/{id}/assets
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tomtom215/aurasync/internal/config"
	"github.com/tomtom215/aurasync/internal/logging"
	"github.com/tomtom215/aurasync/internal/models"
)

const immichServiceName = "immich"

// ImmichClientInterface defines the Immich operations a sync cycle needs.
//
// Implemented by ImmichClient for production, ImmichCircuitBreakerClient as
// a resilience wrapper, and fakes in tests.
type ImmichClientInterface interface {
	Ping(ctx context.Context) error
	SearchUntaggedAlbumAssets(ctx context.Context, albumID string) ([]models.ImmichAsset, error)
	DownloadOriginal(ctx context.Context, assetID, dst string) error
	DownloadThumbnail(ctx context.Context, assetID, dst string) error
	ListTags(ctx context.Context) ([]models.ImmichTag, error)
	CreateTag(ctx context.Context, name string) (*models.ImmichTag, error)
	GetOrCreateTag(ctx context.Context, name string) (string, error)
	TagAssets(ctx context.Context, tagID string, assetIDs []string) error
}

// ImmichClient talks to the Immich API.
type ImmichClient struct {
	*restClient
	apiKey   string
	pageSize int
}

var _ ImmichClientInterface = (*ImmichClient)(nil)

// NewImmichClient creates a client from configuration.
func NewImmichClient(cfg config.ImmichConfig) *ImmichClient {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultImmichPageSize
	}
	return &ImmichClient{
		restClient: newRESTClient(immichServiceName, cfg.URL, cfg.Timeout, newLimiter(cfg.RequestsPerSecond)),
		apiKey:     cfg.APIKey,
		pageSize:   pageSize,
	}
}

func (c *ImmichClient) headers() http.Header {
	h := make(http.Header)
	h.Set("x-api-key", c.apiKey)
	h.Set("Accept", "application/json")
	return h
}

// Ping verifies connectivity and the API key.
func (c *ImmichClient) Ping(ctx context.Context) error {
	if err := c.doJSON(ctx, "ping", http.MethodGet, "/server/ping", c.headers(), nil, nil); err != nil {
		return fmt.Errorf("immich ping: %w", err)
	}
	return nil
}

// SearchUntaggedAlbumAssets returns every asset in the album that carries no
// tags, in server order, across all pages.
//
// Paging stops on an empty page, once the accumulated count reaches the
// reported total, or once page*size covers the total.
func (c *ImmichClient) SearchUntaggedAlbumAssets(ctx context.Context, albumID string) ([]models.ImmichAsset, error) {
	req := models.ImmichSearchRequest{
		AlbumIDs: []string{albumID},
		TagIDs:   nil, // serialized as null: assets with no tags
		WithExif: true,
		Size:     c.pageSize,
		Page:     1,
	}

	var all []models.ImmichAsset
	for {
		var resp models.ImmichSearchResponse
		if err := c.doJSON(ctx, "search_metadata", http.MethodPost, "/search/metadata", c.headers(), req, &resp); err != nil {
			return nil, fmt.Errorf("search album %s page %d: %w", albumID, req.Page, err)
		}

		items := resp.Assets.Items
		if len(items) == 0 {
			break
		}
		all = append(all, items...)

		total := resp.Assets.Total
		if len(all) >= total {
			break
		}
		req.Page++
	}

	logging.Debug().Str("album_id", albumID).Int("assets", len(all)).Int("pages", req.Page).Msg("Searched untagged album assets")
	return all, nil
}

// DownloadOriginal streams the original file of an asset to dst.
func (c *ImmichClient) DownloadOriginal(ctx context.Context, assetID, dst string) error {
	path := "/assets/" + url.PathEscape(assetID) + "/original"
	if err := c.download(ctx, "download_original", path, dst, c.headers()); err != nil {
		return fmt.Errorf("download asset %s: %w", assetID, err)
	}
	logging.Debug().Str("asset_id", assetID).Str("path", dst).Msg("Downloaded asset")
	return nil
}

// DownloadThumbnail streams the thumbnail of an asset to dst. Used as the
// video poster frame.
func (c *ImmichClient) DownloadThumbnail(ctx context.Context, assetID, dst string) error {
	path := "/assets/" + url.PathEscape(assetID) + "/thumbnail"
	if err := c.download(ctx, "download_thumbnail", path, dst, c.headers()); err != nil {
		return fmt.Errorf("download thumbnail %s: %w", assetID, err)
	}
	logging.Debug().Str("asset_id", assetID).Str("path", dst).Msg("Downloaded thumbnail")
	return nil
}

// ListTags returns every tag visible to the API key.
func (c *ImmichClient) ListTags(ctx context.Context) ([]models.ImmichTag, error) {
	var tags []models.ImmichTag
	if err := c.doJSON(ctx, "list_tags", http.MethodGet, "/tags", c.headers(), nil, &tags); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// CreateTag creates a tag named name.
func (c *ImmichClient) CreateTag(ctx context.Context, name string) (*models.ImmichTag, error) {
	var tag models.ImmichTag
	if err := c.doJSON(ctx, "create_tag", http.MethodPost, "/tags", c.headers(), models.ImmichCreateTagRequest{Name: name}, &tag); err != nil {
		return nil, fmt.Errorf("create tag %q: %w", name, err)
	}
	if tag.ID == "" {
		return nil, fmt.Errorf("create tag %q: response has no id", name)
	}
	logging.Debug().Str("tag", name).Str("tag_id", tag.ID).Msg("Created tag")
	return &tag, nil
}

// GetOrCreateTag returns the ID of the tag named name, creating it if needed.
func (c *ImmichClient) GetOrCreateTag(ctx context.Context, name string) (string, error) {
	tags, err := c.ListTags(ctx)
	if err != nil {
		return "", err
	}
	for _, tag := range tags {
		if tag.Name == name {
			logging.Debug().Str("tag", name).Str("tag_id", tag.ID).Msg("Found existing tag")
			return tag.ID, nil
		}
	}

	tag, err := c.CreateTag(ctx, name)
	if err != nil {
		return "", err
	}
	return tag.ID, nil
}

// TagAssets adds tagID to every asset in assetIDs with one bulk call.
func (c *ImmichClient) TagAssets(ctx context.Context, tagID string, assetIDs []string) error {
	path := "/tags/" + url.PathEscape(tagID) + "/assets"
	var results []models.ImmichBulkIDResult
	if err := c.doJSON(ctx, "tag_assets", http.MethodPut, path, c.headers(), models.ImmichBulkIDsRequest{IDs: assetIDs}, &results); err != nil {
		return fmt.Errorf("tag %d assets: %w", len(assetIDs), err)
	}

	for _, r := range results {
		// duplicate means already tagged, which is the state we want
		if !r.Success && r.Error != "duplicate" {
			logging.Warn().Str("asset_id", r.ID).Str("error", r.Error).Msg("Tag assignment rejected for asset")
		}
	}
	logging.Debug().Str("tag_id", tagID).Int("assets", len(assetIDs)).Msg("Tagged assets")
	return nil
}
