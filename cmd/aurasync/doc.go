// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
Command aurasync copies photos and videos from an Immich album to an Aura
digital photo frame and tags every transferred asset in Immich so it is
never sent twice.

# Application Architecture

	RootSupervisor ("aurasync")
	├── SyncSupervisor ("sync-layer")
	│   └── Sync Manager (one cycle per interval, first cycle at start)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (/metrics and the status API, optional)

Startup order:

 1. Configuration: Koanf v2 with defaults, config.yml and environment
 2. Logging: zerolog with JSON/console output and an optional log file
 3. Clients: Immich REST, Aura REST, S3 blob store, SQS readiness queue,
    each remote client behind a circuit breaker
 4. Immich connectivity check (exit 1 on failure)
 5. Supervisor Tree: Suture v4 process supervision
 6. Signal handling: SIGINT/SIGTERM stop the tree gracefully

# Configuration

Required environment variables:

	IMMICH_URL=https://photos.example.com/api
	IMMICH_API_KEY=...
	IMMICH_ALBUM_ID=...
	AURA_EMAIL=frame-owner@example.com
	AURA_PASSWORD=...
	AURA_FRAME_ID=...

See config.example.yml for the full set, including the interval, the
transfer tag name, the S3 and SQS settings and the status server.

# Exit Codes

  - 0: stopped by signal after a graceful shutdown
  - 1: invalid configuration, log file failure, or Immich unreachable
*/
package main
