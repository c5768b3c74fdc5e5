// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
Package api provides the HTTP status API of the sync daemon.

The API is small and read-mostly. It exists so an operator or an
orchestrator can see whether the daemon is alive, whether it is ready
(running with the transfer tag resolved), what the last cycle did, and
can request a cycle without waiting for the next tick.

Routes:

	GET  /metrics               Prometheus exposition
	GET  /api/v1/health/live    always 200 while the process serves
	GET  /api/v1/health/ready   200 when syncing, 503 otherwise
	GET  /api/v1/sync/status    manager state and last cycle stats
	POST /api/v1/sync/trigger   run one cycle now

Every JSON response uses the models.APIResponse envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-01-02T03:04:05Z"}
	}

Errors carry a machine-readable code:

	{
	  "status": "error",
	  "data": null,
	  "metadata": {...},
	  "error": {"code": "SYNC_IN_PROGRESS", "message": "..."}
	}

The API has no authentication. Bind it to a loopback or cluster-internal
address (server.host) when the trigger endpoint must not be public.
*/
package api
