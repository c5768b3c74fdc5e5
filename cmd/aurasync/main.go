// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/aurasync/internal/api"
	"github.com/tomtom215/aurasync/internal/config"
	"github.com/tomtom215/aurasync/internal/logging"
	"github.com/tomtom215/aurasync/internal/metrics"
	"github.com/tomtom215/aurasync/internal/supervisor"
	"github.com/tomtom215/aurasync/internal/supervisor/services"
	"github.com/tomtom215/aurasync/internal/sync"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// startupTimeout bounds AWS config loading and the Immich connectivity check.
const startupTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	if err := logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		File:      cfg.Logging.File,
	}); err != nil {
		logging.Error().Err(err).Msg("Failed to initialize logging")
		return 1
	}
	defer func() {
		if err := logging.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing log file")
		}
	}()

	metrics.SetAppInfo(version, runtime.Version())
	logging.Info().
		Str("version", version).
		Str("immich_url", cfg.Immich.URL).
		Str("album_id", cfg.Immich.AlbumID).
		Str("frame_id", cfg.Aura.FrameID).
		Str("aura_email", logging.SanitizeEmail(cfg.Aura.Email)).
		Int("interval_minutes", cfg.Sync.IntervalMinutes).
		Str("tag_name", cfg.Sync.TagName).
		Msg("Starting aurasync with supervisor tree")
	for _, w := range cfg.Warnings() {
		logging.Warn().Msg(w)
	}

	// SIGINT/SIGTERM cancel the root context; the tree stops gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	immich, aura, err := buildClients(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize clients")
		return 1
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, startupTimeout)
	err = immich.Ping(pingCtx)
	cancelPing()
	if err != nil {
		logging.Error().Err(err).Str("immich_url", cfg.Immich.URL).Msg("Immich connection test failed")
		return 1
	}
	logging.Info().Msg("Immich connection test succeeded")

	pipeline := sync.NewPipeline(immich, aura, cfg.Aura.FrameID, cfg.Sync.TempDir)
	engine := sync.NewEngine(cfg, immich, aura, pipeline)
	manager := sync.NewManager(cfg, engine)

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	tree.AddSyncService(services.NewSyncService(manager))
	if cfg.Server.Enabled {
		tree.AddAPIService(services.NewHTTPServerService(newStatusServer(cfg, manager), cfg.Server.ShutdownTimeout))
	} else {
		logging.Info().Msg("Status server disabled")
	}

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
	return 0
}

// buildClients wires the remote clients, each behind its circuit breaker.
func buildClients(ctx context.Context, cfg *config.Config) (*sync.ImmichCircuitBreakerClient, *sync.AuraCircuitBreakerClient, error) {
	awsCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	awsCfg, err := sync.LoadAWSConfig(awsCtx, cfg.Aura)
	if err != nil {
		return nil, nil, err
	}

	blobs := sync.NewS3BlobStore(awsCfg, cfg.Aura)
	readiness := sync.NewSQSReadinessQueue(awsCfg, cfg.Aura)

	immich := sync.NewImmichCircuitBreakerClient(sync.NewImmichClient(cfg.Immich))
	aura := sync.NewAuraCircuitBreakerClient(sync.NewAuraClient(cfg.Aura, blobs, readiness))
	return immich, aura, nil
}

func newStatusServer(cfg *config.Config, manager *sync.Manager) *http.Server {
	router := api.NewRouter(api.NewHandler(manager))
	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// POST /api/v1/sync/trigger holds the response open for a whole cycle
		WriteTimeout: api.DefaultTriggerTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}
