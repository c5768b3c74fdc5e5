// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
Package supervisor provides process supervision for aurasync using suture v4.

The supervisor tree owns the lifecycle of the long-running services:

	RootSupervisor ("aurasync")
	├── SyncSupervisor ("sync-layer")
	│   └── SyncService ("sync-manager")
	└── APISupervisor ("api-layer")
	    └── HTTPServerService ("http-server", if server.enabled)

The layers fail independently. A status server that cannot bind its port
does not stop the sync loop, and a sync manager that cannot resolve its
transfer tag is restarted with backoff while the health endpoints keep
reporting not_ready.

# Restart Policy

  - FailureThreshold (default 5): failures tolerated before backoff
  - FailureDecay (default 30s): seconds for the failure count to halve
  - FailureBackoff (default 15s): pause once the threshold is crossed
  - ShutdownTimeout (default 10s): per-service stop deadline

Supervisor events (start, failure, restart, backoff) are logged through
sutureslog onto the zerolog-backed slog handler from internal/logging.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddSyncService(services.NewSyncService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

After shutdown, UnstoppedServiceReport lists services that missed the
shutdown deadline.
*/
package supervisor
