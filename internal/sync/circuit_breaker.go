// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/aurasync/internal/logging"
	"github.com/tomtom215/aurasync/internal/metrics"
	"github.com/tomtom215/aurasync/internal/models"
)

// Breaker names, used as the "name" label on circuit breaker metrics.
const (
	immichBreakerName = "immich-api"
	auraBreakerName   = "aura-api"
)

// breaker is the gobreaker instance shared by both client wrappers.
//
// Configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
//
// A cancelled context does not count as a failure, so shutting down mid-call
// never trips the circuit. Neither do asset-local errors: one bad file must
// not stop the healthy assets behind it.
type breaker struct {
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

func newBreaker(name string) *breaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || isAssetLocal(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &breaker{cb: cb, name: name}
}

// ErrAssetLocal marks a failure confined to one asset's file, such as an
// image the decoder cannot read.
var ErrAssetLocal = errors.New("asset-local failure")

// isAssetLocal reports whether err says nothing about service health: a
// marked file error, a local file system error, or a 4xx answer other than
// 429 for one specific asset.
func isAssetLocal(err error) bool {
	if errors.Is(err, ErrAssetLocal) {
		return true
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return true
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		return code >= 400 && code < 500 && code != http.StatusTooManyRequests
	}
	return false
}

// execute runs fn under the breaker and records the outcome.
func (b *breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Str("breaker", b.name).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	return result, nil
}

// State returns the current breaker state.
func (b *breaker) State() gobreaker.State {
	return b.cb.State()
}

// castResult type-asserts a breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// ImmichCircuitBreakerClient wraps an Immich client with circuit breaker
// protection. Downloads are included: a library that can list assets but not
// serve their bytes is as unavailable as one that is down.
type ImmichCircuitBreakerClient struct {
	client ImmichClientInterface
	*breaker
}

var _ ImmichClientInterface = (*ImmichCircuitBreakerClient)(nil)

// NewImmichCircuitBreakerClient wraps client.
func NewImmichCircuitBreakerClient(client ImmichClientInterface) *ImmichCircuitBreakerClient {
	return &ImmichCircuitBreakerClient{client: client, breaker: newBreaker(immichBreakerName)}
}

// Ping verifies connectivity with circuit breaker protection
func (c *ImmichCircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.Ping(ctx)
	})
	return err
}

// SearchUntaggedAlbumAssets runs the paginated search with circuit breaker protection
func (c *ImmichCircuitBreakerClient) SearchUntaggedAlbumAssets(ctx context.Context, albumID string) ([]models.ImmichAsset, error) {
	return castResult[[]models.ImmichAsset](c.execute(func() (interface{}, error) {
		return c.client.SearchUntaggedAlbumAssets(ctx, albumID)
	}))
}

// DownloadOriginal downloads the original file with circuit breaker protection
func (c *ImmichCircuitBreakerClient) DownloadOriginal(ctx context.Context, assetID, dst string) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.DownloadOriginal(ctx, assetID, dst)
	})
	return err
}

// DownloadThumbnail downloads the thumbnail with circuit breaker protection
func (c *ImmichCircuitBreakerClient) DownloadThumbnail(ctx context.Context, assetID, dst string) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.DownloadThumbnail(ctx, assetID, dst)
	})
	return err
}

// ListTags lists tags with circuit breaker protection
func (c *ImmichCircuitBreakerClient) ListTags(ctx context.Context) ([]models.ImmichTag, error) {
	return castResult[[]models.ImmichTag](c.execute(func() (interface{}, error) {
		return c.client.ListTags(ctx)
	}))
}

// CreateTag creates a tag with circuit breaker protection
func (c *ImmichCircuitBreakerClient) CreateTag(ctx context.Context, name string) (*models.ImmichTag, error) {
	return castResult[*models.ImmichTag](c.execute(func() (interface{}, error) {
		return c.client.CreateTag(ctx, name)
	}))
}

// GetOrCreateTag resolves a tag ID with circuit breaker protection
func (c *ImmichCircuitBreakerClient) GetOrCreateTag(ctx context.Context, name string) (string, error) {
	return castResult[string](c.execute(func() (interface{}, error) {
		return c.client.GetOrCreateTag(ctx, name)
	}))
}

// TagAssets assigns a tag with circuit breaker protection
func (c *ImmichCircuitBreakerClient) TagAssets(ctx context.Context, tagID string, assetIDs []string) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.TagAssets(ctx, tagID, assetIDs)
	})
	return err
}

// AuraCircuitBreakerClient wraps an Aura client with circuit breaker protection.
type AuraCircuitBreakerClient struct {
	client AuraClientInterface
	*breaker
}

var _ AuraClientInterface = (*AuraCircuitBreakerClient)(nil)

// NewAuraCircuitBreakerClient wraps client.
func NewAuraCircuitBreakerClient(client AuraClientInterface) *AuraCircuitBreakerClient {
	return &AuraCircuitBreakerClient{client: client, breaker: newBreaker(auraBreakerName)}
}

// Login authenticates with circuit breaker protection
func (c *AuraCircuitBreakerClient) Login(ctx context.Context, email, password string) (*models.AuraUser, error) {
	return castResult[*models.AuraUser](c.execute(func() (interface{}, error) {
		return c.client.Login(ctx, email, password)
	}))
}

// SelectAsset selects an asset on a frame with circuit breaker protection
func (c *AuraCircuitBreakerClient) SelectAsset(ctx context.Context, frameID string, ref models.AssetPartialID) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.SelectAsset(ctx, frameID, ref)
	})
	return err
}

// BatchUpdate updates asset metadata with circuit breaker protection
func (c *AuraCircuitBreakerClient) BatchUpdate(ctx context.Context, asset models.FrameAsset) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.BatchUpdate(ctx, asset)
	})
	return err
}

// UploadImage runs the whole image sequence as one breaker call.
func (c *AuraCircuitBreakerClient) UploadImage(ctx context.Context, frameID, imagePath string, asset models.FrameAsset) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.UploadImage(ctx, frameID, imagePath, asset)
	})
	return err
}

// UploadVideo runs the whole video sequence as one breaker call.
func (c *AuraCircuitBreakerClient) UploadVideo(ctx context.Context, frameID, videoPath, posterPath string, duration float64, asset models.FrameAsset) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.UploadVideo(ctx, frameID, videoPath, posterPath, duration, asset)
	})
	return err
}
