// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yml",
	"config.yaml",
	"/etc/aurasync/config.yml",
	"/etc/aurasync/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotenvPath is the dotenv file loaded into the process environment before
// the environment layer is read. Existing variables are not overwritten.
var DotenvPath = ".env"

// Defaults used by defaultConfig and referenced by tests.
const (
	DefaultAuraBaseURL        = "https://api.pushd.com/v5"
	DefaultReadinessQueue     = "4ab446b4-33a7-4a76-881d-d545d153ab5a"
	DefaultS3Bucket           = "images.senseapp.co"
	DefaultS3Region           = "us-east-1"
	DefaultTagName            = "synced-to-aura"
	DefaultIntervalMinutes    = 15
	DefaultImmichPageSize     = 1000
	DefaultServerPort         = 9105
	DefaultRequestsPerSecond  = 10
	DefaultHTTPRequestTimeout = 60 * time.Second
)

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Immich: ImmichConfig{
			Timeout:           DefaultHTTPRequestTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
			PageSize:          DefaultImmichPageSize,
		},
		Aura: AuraConfig{
			BaseURL:        DefaultAuraBaseURL,
			Timeout:        DefaultHTTPRequestTimeout,
			ReadinessQueue: DefaultReadinessQueue,
			ReadinessWait:  5 * time.Second,
			S3Bucket:       DefaultS3Bucket,
			S3Region:       DefaultS3Region,
		},
		Sync: SyncConfig{
			IntervalMinutes: DefaultIntervalMinutes,
			TagName:         DefaultTagName,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "json",
			Caller: false,
		},
		Server: ServerConfig{
			Enabled:         true,
			Host:            "127.0.0.1",
			Port:            DefaultServerPort,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// The merged result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables (highest priority)
	// IMMICH_API_KEY -> immich.api_key, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotenv loads path into the environment. A missing file is not an error.
func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	"immich_url":                 "immich.url",
	"immich_api_key":             "immich.api_key",
	"immich_album_id":            "immich.album_id",
	"immich_timeout":             "immich.timeout",
	"immich_requests_per_second": "immich.requests_per_second",
	"immich_page_size":           "immich.page_size",

	"aura_email":                 "aura.email",
	"aura_password":              "aura.password",
	"aura_frame_id":              "aura.frame_id",
	"aura_base_url":              "aura.base_url",
	"aura_timeout":               "aura.timeout",
	"aura_readiness_queue":       "aura.readiness_queue",
	"aura_readiness_wait":        "aura.readiness_wait",
	"aura_s3_bucket":             "aura.s3_bucket",
	"aura_s3_region":             "aura.s3_region",
	"aura_s3_endpoint":           "aura.s3_endpoint",
	"aura_aws_access_key_id":     "aura.aws_access_key_id",
	"aura_aws_secret_access_key": "aura.aws_secret_access_key",

	"sync_interval_minutes": "sync.interval_minutes",
	"sync_tag_name":         "sync.tag_name",
	"sync_temp_dir":         "sync.temp_dir",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
	"log_file":   "logging.file",

	"http_enabled":          "server.enabled",
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_shutdown_timeout": "server.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
