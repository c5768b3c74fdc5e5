// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
aura_client.go - Aura Frame REST API Client

The frame service registers media in three parts: a REST call selecting the
asset on a frame, blob uploads to the service's S3 bucket, and a batch update
attaching the uploaded blob names to the asset. Between selections the
service is given a chance to catch up through its SQS readiness queue.

Upload sequence (image and video):
 1. select_asset by local identifier
 2. readiness wait
 3. select_asset again
 4. blob upload(s)
 5. batch_update with file names, hash, dimensions (and video fields)
 6. readiness wait
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/tomtom215/aurasync/internal/config"
	"github.com/tomtom215/aurasync/internal/logging"
	"github.com/tomtom215/aurasync/internal/models"
)

const auraServiceName = "aura"

// Login request constants expected by the frame service.
const (
	auraLocale        = "en"
	auraAppIdentifier = "com.pushd.Framelord"
)

// Blob extensions and video metadata constants.
const (
	imageBlobExt  = ".jpg"
	posterBlobExt = ".jpeg"
	videoBlobExt  = ".mp4"

	posterDataUTI = "public.jpeg"

	// iosMediaSubtypeVideo marks a local asset that has an attached video.
	iosMediaSubtypeVideo = 1048576
)

// ErrNotAuthenticated is returned by frame calls made before Login.
var ErrNotAuthenticated = errors.New("aura: not authenticated")

// AuraClientInterface defines the frame service operations a sync cycle needs.
type AuraClientInterface interface {
	Login(ctx context.Context, email, password string) (*models.AuraUser, error)
	SelectAsset(ctx context.Context, frameID string, ref models.AssetPartialID) error
	BatchUpdate(ctx context.Context, asset models.FrameAsset) error
	UploadImage(ctx context.Context, frameID, imagePath string, asset models.FrameAsset) error
	UploadVideo(ctx context.Context, frameID, videoPath, posterPath string, duration float64, asset models.FrameAsset) error
}

// AuraClient talks to the Aura REST API and its storage endpoints.
type AuraClient struct {
	*restClient
	blobs     BlobStore
	readiness ReadinessQueue
	deviceID  func() string

	mu   sync.RWMutex
	user *models.AuraUser
}

var _ AuraClientInterface = (*AuraClient)(nil)

// NewAuraClient creates a frame client. blobs and readiness carry the S3 and
// SQS halves of the upload protocol.
func NewAuraClient(cfg config.AuraConfig, blobs BlobStore, readiness ReadinessQueue) *AuraClient {
	return &AuraClient{
		restClient: newRESTClient(auraServiceName, cfg.BaseURL, cfg.Timeout, nil),
		blobs:      blobs,
		readiness:  readiness,
		deviceID:   func() string { return uuid.NewString() },
	}
}

// Login authenticates and stores the session used by every later call.
func (c *AuraClient) Login(ctx context.Context, email, password string) (*models.AuraUser, error) {
	req := models.AuraLoginRequest{
		User:                models.AuraCredentials{Email: email, Password: password},
		Locale:              auraLocale,
		AppIdentifier:       auraAppIdentifier,
		IdentifierForVendor: c.deviceID(),
		ClientDeviceID:      c.deviceID(),
	}

	header := make(http.Header)
	header.Set("Accept", "application/json")

	var resp models.AuraLoginResponse
	if err := c.doJSON(ctx, "login", http.MethodPost, "/login.json", header, req, &resp); err != nil {
		return nil, fmt.Errorf("aura login: %w", err)
	}
	user := resp.Result.CurrentUser
	if resp.Error || user.AuthToken == "" || user.ID == "" {
		return nil, fmt.Errorf("aura login: response carries no session for %s", logging.SanitizeEmail(email))
	}

	c.mu.Lock()
	c.user = &user
	c.mu.Unlock()

	logging.Info().Str("user_id", user.ID).Str("email", logging.SanitizeEmail(email)).Msg("Logged in to Aura")
	return &user, nil
}

func (c *AuraClient) authHeaders() (http.Header, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.user == nil {
		return nil, ErrNotAuthenticated
	}
	h := make(http.Header)
	h.Set("Accept", "application/json")
	h.Set("x-token-auth", c.user.AuthToken)
	h.Set("x-user-id", c.user.ID)
	return h, nil
}

// SelectAsset marks an asset as selected on a frame.
func (c *AuraClient) SelectAsset(ctx context.Context, frameID string, ref models.AssetPartialID) error {
	header, err := c.authHeaders()
	if err != nil {
		return err
	}
	body, err := ref.RequestBody()
	if err != nil {
		return err
	}

	path := "/frames/" + url.PathEscape(frameID) + "/select_asset.json"
	if err := c.doJSON(ctx, "select_asset", http.MethodPost, path, header, body, nil); err != nil {
		return fmt.Errorf("select asset on frame %s: %w", frameID, err)
	}
	return nil
}

// BatchUpdate writes asset metadata to the frame service.
func (c *AuraClient) BatchUpdate(ctx context.Context, asset models.FrameAsset) error {
	header, err := c.authHeaders()
	if err != nil {
		return err
	}

	req := models.AuraBatchUpdateRequest{Assets: []models.FrameAsset{asset}}
	if err := c.doJSON(ctx, "batch_update", http.MethodPost, "/assets/batch_update.json", header, req, nil); err != nil {
		return fmt.Errorf("batch update %s: %w", asset.LocalIdentifier, err)
	}
	return nil
}

// UploadImage registers a photo with a frame.
//
// The size comes from decoding the file. Formats the decoder cannot read
// (HEIC) use the dimensions already set on asset from Immich's exif data.
func (c *AuraClient) UploadImage(ctx context.Context, frameID, imagePath string, asset models.FrameAsset) error {
	width, height, err := imageDimensions(imagePath)
	if err != nil {
		if asset.Width <= 0 || asset.Height <= 0 {
			return err
		}
		logging.Debug().Err(err).Str("local_identifier", asset.LocalIdentifier).
			Int("width", asset.Width).Int("height", asset.Height).Msg("Using Immich dimensions for undecodable image")
		width, height = asset.Width, asset.Height
	}

	if err := c.prepareFrame(ctx, frameID, asset); err != nil {
		return err
	}

	filename, md5hex, err := c.blobs.Upload(ctx, imagePath, imageBlobExt)
	if err != nil {
		return fmt.Errorf("upload image blob: %w", err)
	}

	asset.FileName = filename
	asset.MD5Hash = md5hex
	asset.Width = width
	asset.Height = height

	if err := c.BatchUpdate(ctx, asset); err != nil {
		return err
	}

	c.settle(ctx, asset)
	return nil
}

// UploadVideo registers a video with a frame. The poster image becomes the
// asset's primary file and the video its companion.
func (c *AuraClient) UploadVideo(ctx context.Context, frameID, videoPath, posterPath string, duration float64, asset models.FrameAsset) error {
	width, height, err := imageDimensions(posterPath)
	if err != nil {
		return err
	}

	if err := c.prepareFrame(ctx, frameID, asset); err != nil {
		return err
	}

	posterName, posterMD5, err := c.blobs.Upload(ctx, posterPath, posterBlobExt)
	if err != nil {
		return fmt.Errorf("upload poster blob: %w", err)
	}
	logging.Debug().Str("local_identifier", asset.LocalIdentifier).Str("blob", posterName).Msg("Uploaded poster")

	videoName, _, err := c.blobs.Upload(ctx, videoPath, videoBlobExt)
	if err != nil {
		return fmt.Errorf("upload video blob: %w", err)
	}
	logging.Debug().Str("local_identifier", asset.LocalIdentifier).Str("blob", videoName).Msg("Uploaded video")

	asset.FileName = posterName
	asset.VideoFileName = videoName
	asset.MD5Hash = posterMD5
	asset.Width = width
	asset.Height = height
	asset.Duration = float64Ptr(duration)
	asset.DurationUnclipped = float64Ptr(duration)
	asset.VideoClipStart = float64Ptr(0)
	asset.VideoClipExcludesAudio = boolPtr(false)
	asset.DataUTI = posterDataUTI
	asset.IsLive = boolPtr(true)
	asset.IOSMediaSubtypes = intPtr(iosMediaSubtypeVideo)

	if err := c.BatchUpdate(ctx, asset); err != nil {
		return err
	}

	c.settle(ctx, asset)
	return nil
}

// prepareFrame runs select, readiness wait, select.
func (c *AuraClient) prepareFrame(ctx context.Context, frameID string, asset models.FrameAsset) error {
	ref := models.AssetPartialID{ID: asset.ID, LocalIdentifier: asset.LocalIdentifier}

	if err := c.SelectAsset(ctx, frameID, ref); err != nil {
		return err
	}
	if err := c.readiness.Wait(ctx); err != nil {
		return fmt.Errorf("readiness wait: %w", err)
	}
	if err := c.SelectAsset(ctx, frameID, ref); err != nil {
		return err
	}
	return nil
}

// settle runs the trailing readiness wait. The asset is already registered
// at this point, so a failure here is logged rather than returned.
func (c *AuraClient) settle(ctx context.Context, asset models.FrameAsset) {
	if err := c.readiness.Wait(ctx); err != nil {
		logging.Warn().Err(err).Str("local_identifier", asset.LocalIdentifier).Msg("Readiness wait after batch update failed")
	}
}

// imageDimensions decodes the image at path and returns its size.
func imageDimensions(path string) (width, height int, err error) {
	img, err := imaging.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image %s: %w: %w", path, ErrAssetLocal, err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
