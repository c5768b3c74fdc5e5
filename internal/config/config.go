// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for all optional settings
//  2. Config File: Optional YAML file (config.yml, or CONFIG_PATH)
//  3. Environment Variables: Override any setting; a .env file in the
//     working directory is loaded into the environment first
//
// Configuration Categories:
//   - Immich: source library server, API key and album to mirror
//   - Aura: frame service account, target frame and upload storage
//   - Sync: poll interval, sync tag and scratch directory
//   - Logging: level, format and optional log file
//   - Server: local status/metrics HTTP server
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//	client := sync.NewImmichClient(cfg.Immich)
type Config struct {
	Immich  ImmichConfig  `koanf:"immich"`
	Aura    AuraConfig    `koanf:"aura"`
	Sync    SyncConfig    `koanf:"sync"`
	Logging LoggingConfig `koanf:"logging"`
	Server  ServerConfig  `koanf:"server"`
}

// ImmichConfig holds the source library connection settings.
//
// Environment Variables:
//   - IMMICH_URL: API base URL, normally ending in /api (required)
//   - IMMICH_API_KEY: API key sent as x-api-key (required)
//   - IMMICH_ALBUM_ID: album whose untagged assets are synced (required)
//   - IMMICH_TIMEOUT: per-request timeout (default: 60s)
//   - IMMICH_REQUESTS_PER_SECOND: client-side rate limit, 0 = unlimited (default: 10)
//   - IMMICH_PAGE_SIZE: search page size (default: 1000)
type ImmichConfig struct {
	URL               string        `koanf:"url" validate:"required,httpurl"`
	APIKey            string        `koanf:"api_key" validate:"required"`
	AlbumID           string        `koanf:"album_id" validate:"required"`
	Timeout           time.Duration `koanf:"timeout" validate:"min=1s"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	PageSize          int           `koanf:"page_size" validate:"min=1,max=1000"`
}

// AuraConfig holds the frame service account and the storage endpoints the
// frame upload protocol uses.
//
// Environment Variables:
//   - AURA_EMAIL, AURA_PASSWORD: account credentials (required)
//   - AURA_FRAME_ID: target frame (required)
//   - AURA_BASE_URL: REST API base (default: https://api.pushd.com/v5)
//   - AURA_TIMEOUT: per-request timeout (default: 60s)
//   - AURA_READINESS_QUEUE: queue name polled between upload steps
//   - AURA_READINESS_WAIT: long-poll wait, 0-20s (default: 5s)
//   - AURA_S3_BUCKET, AURA_S3_REGION, AURA_S3_ENDPOINT: blob storage target
//   - AURA_AWS_ACCESS_KEY_ID, AURA_AWS_SECRET_ACCESS_KEY: static credentials;
//     the default AWS credential chain is used when unset
type AuraConfig struct {
	Email    string `koanf:"email" validate:"required,email"`
	Password string `koanf:"password" validate:"required"`
	FrameID  string `koanf:"frame_id" validate:"required"`

	BaseURL string        `koanf:"base_url" validate:"required,httpurl"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`

	ReadinessQueue string        `koanf:"readiness_queue" validate:"required"`
	ReadinessWait  time.Duration `koanf:"readiness_wait" validate:"min=0s,max=20s"`

	S3Bucket   string `koanf:"s3_bucket" validate:"required"`
	S3Region   string `koanf:"s3_region" validate:"required"`
	S3Endpoint string `koanf:"s3_endpoint" validate:"omitempty,httpurl"`

	AWSAccessKeyID     string `koanf:"aws_access_key_id"`
	AWSSecretAccessKey string `koanf:"aws_secret_access_key"`
}

// HasStaticCredentials reports whether both AWS keys were configured.
func (a AuraConfig) HasStaticCredentials() bool {
	return a.AWSAccessKeyID != "" && a.AWSSecretAccessKey != ""
}

// SyncConfig holds the poll loop settings.
//
// Environment Variables:
//   - SYNC_INTERVAL_MINUTES: minutes between cycles, at least 1 (default: 15)
//   - SYNC_TAG_NAME: tag applied to transferred assets (default: synced-to-aura)
//   - SYNC_TEMP_DIR: parent of per-asset scratch directories (default: OS temp dir)
type SyncConfig struct {
	IntervalMinutes int    `koanf:"interval_minutes" validate:"min=1"`
	TagName         string `koanf:"tag_name" validate:"required"`
	TempDir         string `koanf:"temp_dir"`
}

// Interval returns the wait between cycles.
func (s SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: DEBUG, INFO, WARNING, ERROR, CRITICAL (default: INFO)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
//   - LOG_FILE: also append JSON log lines to this file
type LoggingConfig struct {
	// Level is the minimum log level. Case-insensitive.
	// Default: INFO
	Level string `koanf:"level" validate:"loglevel"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`

	// File is an optional log file, created if missing and appended to.
	File string `koanf:"file"`
}

// ServerConfig holds the status/metrics HTTP server settings.
//
// Environment Variables:
//   - HTTP_ENABLED: serve /metrics and the status API (default: true)
//   - HTTP_HOST: bind address (default: 127.0.0.1)
//   - HTTP_PORT: listen port (default: 9105)
//   - HTTP_SHUTDOWN_TIMEOUT: graceful shutdown limit (default: 10s)
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from all sources in priority order:
//  1. Built-in defaults
//  2. Config file (first of DefaultConfigPaths, or CONFIG_PATH)
//  3. Environment variables, after .env has been loaded
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	if err := loadDotenv(DotenvPath); err != nil {
		return nil, err
	}
	return LoadWithKoanf()
}
