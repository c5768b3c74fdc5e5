// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
Package services adapts aurasync components to suture's Serve pattern.

	type Service interface {
	    Serve(ctx context.Context) error
	}

SyncService wraps the sync manager's Start/Stop lifecycle. HTTPServerService
wraps the status server's ListenAndServe/Shutdown pair. Both return the
context error on a requested shutdown and a wrapped error on failure, which
suture answers with a restart.

	tree.AddSyncService(services.NewSyncService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
*/
package services
