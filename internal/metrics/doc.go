// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
Package metrics provides Prometheus metrics for aurasync.

All collectors are registered on the default registry with promauto and
exposed by the status server at /metrics:

	curl http://127.0.0.1:9105/metrics

# Available Metrics

Sync cycle:
  - aurasync_sync_duration_seconds (histogram)
  - aurasync_sync_cycles_total{outcome} (counter): success, partial, failure, empty, aborted
  - aurasync_sync_pending_assets (gauge)
  - aurasync_sync_tag_failures_total (counter)
  - aurasync_sync_last_success_timestamp (gauge)

Asset transfer:
  - aurasync_asset_transfers_total{kind,outcome} (counter)
  - aurasync_asset_transfer_duration_seconds{kind} (histogram)

Upstream clients:
  - aurasync_client_requests_total{service,operation,status_code} (counter)
  - aurasync_client_request_duration_seconds{service,operation} (histogram)
  - aurasync_client_rate_limit_retries_total{service} (counter)

Circuit breakers (name is immich-api or aura-api):
  - circuit_breaker_state{name} (gauge): 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name,result} (counter)
  - circuit_breaker_consecutive_failures{name} (gauge)
  - circuit_breaker_state_transitions_total{name,from_state,to_state} (counter)

Status API:
  - aurasync_api_requests_total{method,endpoint,status_code} (counter)
  - aurasync_api_request_duration_seconds{method,endpoint} (histogram)

# Example Alerts

	- alert: AurasyncCyclesAborting
	  expr: increase(aurasync_sync_cycles_total{outcome="aborted"}[1h]) > 2
	- alert: AurasyncBreakerOpen
	  expr: circuit_breaker_state == 2
*/
package metrics
