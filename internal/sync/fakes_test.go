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
	"sync"
	"time"

	"github.com/tomtom215/aurasync/internal/config"
	"github.com/tomtom215/aurasync/internal/models"
)

// newTestConfig returns a valid configuration pointing at nothing real.
func newTestConfig() *config.Config {
	return &config.Config{
		Immich: config.ImmichConfig{
			URL:      "http://immich.test/api",
			APIKey:   "test-api-key",
			AlbumID:  "album-1",
			Timeout:  5 * time.Second,
			PageSize: 1000,
		},
		Aura: config.AuraConfig{
			Email:          "frame@example.com",
			Password:       "hunter2-but-longer",
			FrameID:        "frame-1",
			BaseURL:        "http://aura.test/v5",
			Timeout:        5 * time.Second,
			ReadinessQueue: "queue-1",
			ReadinessWait:  0,
			S3Bucket:       "bucket",
			S3Region:       "us-east-1",
		},
		Sync: config.SyncConfig{
			IntervalMinutes: 1,
			TagName:         "synced-to-aura",
		},
	}
}

// fakeImmich implements ImmichClientInterface in memory.
type fakeImmich struct {
	mu sync.Mutex

	assets    []models.ImmichAsset
	searchErr error

	downloadErr  map[string]error
	thumbnailErr map[string]error
	content      []byte
	downloads    []string
	thumbnails   []string

	tagID        string
	tagErr       error
	tagAssetsErr error
	tagResolves  int
	tagCalls     [][]string
	searches     int
	pings        int
}

var _ ImmichClientInterface = (*fakeImmich)(nil)

func (f *fakeImmich) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return nil
}

func (f *fakeImmich) SearchUntaggedAlbumAssets(context.Context, string) ([]models.ImmichAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return append([]models.ImmichAsset(nil), f.assets...), nil
}

func (f *fakeImmich) write(dst string) error {
	content := f.content
	if content == nil {
		content = []byte("bytes")
	}
	return os.WriteFile(dst, content, 0o600)
}

func (f *fakeImmich) DownloadOriginal(_ context.Context, assetID, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, dst)
	if err := f.downloadErr[assetID]; err != nil {
		// leave a partial file behind, like an interrupted download would
		_ = os.WriteFile(dst, []byte("partial"), 0o600)
		return err
	}
	return f.write(dst)
}

func (f *fakeImmich) DownloadThumbnail(_ context.Context, assetID, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thumbnails = append(f.thumbnails, dst)
	if err := f.thumbnailErr[assetID]; err != nil {
		return err
	}
	return f.write(dst)
}

func (f *fakeImmich) ListTags(context.Context) ([]models.ImmichTag, error) {
	return nil, errors.New("not used")
}

func (f *fakeImmich) CreateTag(context.Context, string) (*models.ImmichTag, error) {
	return nil, errors.New("not used")
}

func (f *fakeImmich) GetOrCreateTag(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagResolves++
	if f.tagErr != nil {
		return "", f.tagErr
	}
	if f.tagID == "" {
		return "tag-1", nil
	}
	return f.tagID, nil
}

func (f *fakeImmich) TagAssets(_ context.Context, _ string, assetIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagCalls = append(f.tagCalls, append([]string(nil), assetIDs...))
	return f.tagAssetsErr
}

type imageUpload struct {
	frameID    string
	path       string
	asset      models.FrameAsset
	fileExists bool
}

type videoUpload struct {
	frameID    string
	videoPath  string
	posterPath string
	duration   float64
	asset      models.FrameAsset
}

// fakeAura implements AuraClientInterface in memory. Errors and panics are
// keyed by local identifier.
type fakeAura struct {
	mu sync.Mutex

	loginErr  error
	logins    int
	uploadErr map[string]error
	panicOn   string

	images []imageUpload
	videos []videoUpload
}

var _ AuraClientInterface = (*fakeAura)(nil)

func (f *fakeAura) Login(context.Context, string, string) (*models.AuraUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.AuraUser{ID: "user-1", AuthToken: "token"}, nil
}

func (f *fakeAura) SelectAsset(context.Context, string, models.AssetPartialID) error {
	return nil
}

func (f *fakeAura) BatchUpdate(context.Context, models.FrameAsset) error {
	return nil
}

func (f *fakeAura) UploadImage(_ context.Context, frameID, imagePath string, asset models.FrameAsset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if asset.LocalIdentifier == f.panicOn {
		panic("frame exploded")
	}
	_, statErr := os.Stat(imagePath)
	f.images = append(f.images, imageUpload{frameID: frameID, path: imagePath, asset: asset, fileExists: statErr == nil})
	return f.uploadErr[asset.LocalIdentifier]
}

func (f *fakeAura) UploadVideo(_ context.Context, frameID, videoPath, posterPath string, duration float64, asset models.FrameAsset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if asset.LocalIdentifier == f.panicOn {
		panic("frame exploded")
	}
	f.videos = append(f.videos, videoUpload{frameID: frameID, videoPath: videoPath, posterPath: posterPath, duration: duration, asset: asset})
	return f.uploadErr[asset.LocalIdentifier]
}

// fakeBlobStore implements BlobStore, naming blobs blob-N.ext.
type fakeBlobStore struct {
	mu      sync.Mutex
	err     error
	uploads []string // ext of each upload in order
	paths   []string
}

func (f *fakeBlobStore) Upload(_ context.Context, path, ext string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", "", f.err
	}
	f.uploads = append(f.uploads, ext)
	f.paths = append(f.paths, path)
	n := len(f.uploads)
	return fmt.Sprintf("blob-%d%s", n, ext), fmt.Sprintf("md5-%d", n), nil
}

// fakeQueue implements ReadinessQueue and counts waits.
type fakeQueue struct {
	mu    sync.Mutex
	err   error
	waits int
}

func (f *fakeQueue) Wait(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits++
	return f.err
}

func photoAsset(id string) models.ImmichAsset {
	return models.ImmichAsset{
		ID:               id,
		Type:             "IMAGE",
		OriginalFileName: id + ".jpg",
		OriginalMimeType: "image/jpeg",
		FileCreatedAt:    "2024-05-01T10:00:00.000Z",
	}
}

func videoAsset(id string) models.ImmichAsset {
	return models.ImmichAsset{
		ID:               id,
		Type:             "VIDEO",
		OriginalFileName: id + ".MOV",
		OriginalMimeType: "video/quicktime",
		FileCreatedAt:    "2024-05-01T10:00:00.000Z",
		Duration:         "0:00:06.57",
	}
}
