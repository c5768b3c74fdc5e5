// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by the sync and transfer counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
	OutcomeEmpty   = "empty"
	OutcomeAborted = "aborted"
)

var (
	// Sync Cycle Metrics
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aurasync_sync_duration_seconds",
			Help:    "Duration of sync cycles in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800}, // a cycle uploads every pending asset serially
		},
	)

	SyncCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aurasync_sync_cycles_total",
			Help: "Total number of sync cycles by outcome",
		},
		[]string{"outcome"}, // success, partial, failure, empty, aborted
	)

	SyncPendingAssets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aurasync_sync_pending_assets",
			Help: "Untransferred assets found by the most recent search",
		},
	)

	SyncTagFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aurasync_sync_tag_failures_total",
			Help: "Total number of failed calls tagging transferred assets",
		},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aurasync_sync_last_success_timestamp",
			Help: "Unix timestamp of the last cycle that completed without aborting",
		},
	)

	// Asset Transfer Metrics
	AssetTransfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aurasync_asset_transfers_total",
			Help: "Total number of asset transfers by media kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: photo, video
	)

	AssetTransferDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aurasync_asset_transfer_duration_seconds",
			Help:    "Duration of a single asset transfer in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"kind"},
	)

	// Upstream Client Metrics
	ClientRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aurasync_client_requests_total",
			Help: "Total number of requests to Immich and Aura",
		},
		[]string{"service", "operation", "status_code"}, // status_code "0" for transport errors
	)

	ClientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aurasync_client_request_duration_seconds",
			Help:    "Duration of requests to Immich and Aura in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service", "operation"},
	)

	ClientRateLimitRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aurasync_client_rate_limit_retries_total",
			Help: "Total number of retries after HTTP 429 responses",
		},
		[]string{"service"},
	)

	// Status API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aurasync_api_requests_total",
			Help: "Total number of status API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aurasync_api_request_duration_seconds",
			Help:    "Status API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120}, // trigger runs a whole cycle
		},
		[]string{"method", "endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aurasync_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aurasync_app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordSyncCycle records one finished cycle. err is the cycle-aborting
// error (search or login failure); per-asset failures are in failed.
func RecordSyncCycle(duration time.Duration, uploaded, failed int, err error) {
	SyncDuration.Observe(duration.Seconds())
	SyncCycles.WithLabelValues(cycleOutcome(uploaded, failed, err)).Inc()
	if err == nil {
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

func cycleOutcome(uploaded, failed int, err error) string {
	switch {
	case err != nil:
		return OutcomeAborted
	case uploaded == 0 && failed == 0:
		return OutcomeEmpty
	case failed == 0:
		return OutcomeSuccess
	case uploaded == 0:
		return OutcomeFailure
	default:
		return OutcomePartial
	}
}

// RecordPendingAssets sets the pending-asset gauge from the latest search.
func RecordPendingAssets(n int) {
	SyncPendingAssets.Set(float64(n))
}

// RecordTagFailure records a failed tagging call.
func RecordTagFailure() {
	SyncTagFailures.Inc()
}

// RecordAssetTransfer records the outcome of one asset transfer.
func RecordAssetTransfer(kind string, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	AssetTransfers.WithLabelValues(kind, outcome).Inc()
	AssetTransferDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordClientRequest records an upstream HTTP call. statusCode is 0 when
// the request never produced a response.
func RecordClientRequest(service, operation string, statusCode int, duration time.Duration) {
	ClientRequests.WithLabelValues(service, operation, strconv.Itoa(statusCode)).Inc()
	ClientRequestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordRateLimitRetry records a retry after HTTP 429.
func RecordRateLimitRetry(service string) {
	ClientRateLimitRetries.WithLabelValues(service).Inc()
}

// RecordAPIRequest records a status API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetAppInfo publishes the build version.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
