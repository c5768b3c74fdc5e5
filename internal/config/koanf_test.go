// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// requiredEnv is the minimal environment for a valid configuration.
var requiredEnv = map[string]string{
	"IMMICH_URL":      "http://immich.local:2283/api",
	"IMMICH_API_KEY":  "immich-key-123",
	"IMMICH_ALBUM_ID": "album-1",
	"AURA_EMAIL":      "me@example.com",
	"AURA_PASSWORD":   "s3cret",
	"AURA_FRAME_ID":   "frame-9",
}

// isolate points config discovery at an empty working directory so a
// developer's config.yml or .env never leaks into tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	for key := range envMappings {
		t.Setenv(strings.ToUpper(key), "")
		os.Unsetenv(strings.ToUpper(key))
	}
	return dir
}

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Immich.URL != "" || cfg.Immich.APIKey != "" || cfg.Immich.AlbumID != "" {
		t.Error("required Immich fields should have no default")
	}
	if cfg.Immich.PageSize != 1000 {
		t.Errorf("Immich.PageSize = %d, want 1000", cfg.Immich.PageSize)
	}
	if cfg.Immich.Timeout != 60*time.Second {
		t.Errorf("Immich.Timeout = %v, want 60s", cfg.Immich.Timeout)
	}
	if cfg.Aura.BaseURL != "https://api.pushd.com/v5" {
		t.Errorf("Aura.BaseURL = %q", cfg.Aura.BaseURL)
	}
	if cfg.Aura.ReadinessQueue != "4ab446b4-33a7-4a76-881d-d545d153ab5a" {
		t.Errorf("Aura.ReadinessQueue = %q", cfg.Aura.ReadinessQueue)
	}
	if cfg.Aura.ReadinessWait != 5*time.Second {
		t.Errorf("Aura.ReadinessWait = %v, want 5s", cfg.Aura.ReadinessWait)
	}
	if cfg.Aura.S3Bucket != "images.senseapp.co" || cfg.Aura.S3Region != "us-east-1" {
		t.Errorf("unexpected S3 defaults: %q %q", cfg.Aura.S3Bucket, cfg.Aura.S3Region)
	}
	if cfg.Sync.IntervalMinutes != 15 {
		t.Errorf("Sync.IntervalMinutes = %d, want 15", cfg.Sync.IntervalMinutes)
	}
	if cfg.Sync.TagName != "synced-to-aura" {
		t.Errorf("Sync.TagName = %q, want synced-to-aura", cfg.Sync.TagName)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want INFO", cfg.Logging.Level)
	}
	if !cfg.Server.Enabled || cfg.Server.Port != 9105 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
}

func TestLoadWithKoanf_EnvOnly(t *testing.T) {
	isolate(t)
	setEnv(t, requiredEnv)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Immich.URL != "http://immich.local:2283/api" {
		t.Errorf("Immich.URL = %q", cfg.Immich.URL)
	}
	if cfg.Aura.FrameID != "frame-9" {
		t.Errorf("Aura.FrameID = %q", cfg.Aura.FrameID)
	}
	if cfg.Sync.Interval() != 15*time.Minute {
		t.Errorf("Sync.Interval() = %v, want 15m", cfg.Sync.Interval())
	}
}

func TestLoadWithKoanf_MissingRequired(t *testing.T) {
	isolate(t)

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected error with no configuration")
	}
	for _, key := range []string{"immich.url", "immich.api_key", "immich.album_id", "aura.email", "aura.password", "aura.frame_id"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error should name %s: %v", key, err)
		}
	}
}

func TestLoadWithKoanf_FileAndEnvPrecedence(t *testing.T) {
	dir := isolate(t)

	yml := `
immich:
  url: http://from-file:2283/api/
  api_key: file-key
  album_id: file-album
  page_size: 250
aura:
  email: file@example.com
  password: file-pass
  frame_id: file-frame
  readiness_wait: 10s
sync:
  interval_minutes: 30
  tag_name: on-frame
logging:
  level: debug
  format: console
server:
  enabled: false
`
	path := filepath.Join(dir, "custom.yml")
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SYNC_INTERVAL_MINUTES", "5")
	t.Setenv("IMMICH_API_KEY", "env-key")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Immich.URL != "http://from-file:2283/api" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.Immich.URL)
	}
	if cfg.Immich.APIKey != "env-key" {
		t.Errorf("env should override file, got %q", cfg.Immich.APIKey)
	}
	if cfg.Immich.PageSize != 250 {
		t.Errorf("Immich.PageSize = %d, want 250", cfg.Immich.PageSize)
	}
	if cfg.Sync.IntervalMinutes != 5 {
		t.Errorf("Sync.IntervalMinutes = %d, want 5 from env", cfg.Sync.IntervalMinutes)
	}
	if cfg.Sync.TagName != "on-frame" {
		t.Errorf("Sync.TagName = %q", cfg.Sync.TagName)
	}
	if cfg.Aura.ReadinessWait != 10*time.Second {
		t.Errorf("Aura.ReadinessWait = %v", cfg.Aura.ReadinessWait)
	}
	if cfg.Logging.Level != "DEBUG" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Server.Enabled {
		t.Error("server should be disabled by file")
	}
	// Untouched defaults survive the file layer.
	if cfg.Aura.BaseURL != DefaultAuraBaseURL {
		t.Errorf("Aura.BaseURL = %q", cfg.Aura.BaseURL)
	}
}

func TestLoadWithKoanf_DefaultPathDiscovery(t *testing.T) {
	dir := isolate(t)
	setEnv(t, requiredEnv)

	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("sync:\n  tag_name: found-it\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Sync.TagName != "found-it" {
		t.Errorf("config.yml in working directory not picked up, tag = %q", cfg.Sync.TagName)
	}
}

func TestLoadWithKoanf_InvalidFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "broken.yml")
	if err := os.WriteFile(path, []byte("immich: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_Dotenv(t *testing.T) {
	dir := isolate(t)

	var b strings.Builder
	for k, v := range requiredEnv {
		if k == "AURA_FRAME_ID" {
			continue
		}
		b.WriteString(k + "=" + v + "\n")
	}
	b.WriteString("AURA_FRAME_ID=from-dotenv\n")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Aura.FrameID != "from-dotenv" {
		t.Errorf("Aura.FrameID = %q, want from-dotenv", cfg.Aura.FrameID)
	}
}

func TestLoad_DotenvDoesNotOverride(t *testing.T) {
	dir := isolate(t)
	setEnv(t, requiredEnv)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("AURA_FRAME_ID=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Aura.FrameID != "frame-9" {
		t.Errorf("real environment should win over .env, got %q", cfg.Aura.FrameID)
	}
}

func TestLoadDotenv_Missing(t *testing.T) {
	if err := loadDotenv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
	if err := loadDotenv(""); err != nil {
		t.Errorf("empty path should be ignored, got %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"IMMICH_URL", "immich.url"},
		{"IMMICH_API_KEY", "immich.api_key"},
		{"AURA_READINESS_WAIT", "aura.readiness_wait"},
		{"AURA_AWS_SECRET_ACCESS_KEY", "aura.aws_secret_access_key"},
		{"SYNC_INTERVAL_MINUTES", "sync.interval_minutes"},
		{"LOG_FILE", "logging.file"},
		{"HTTP_PORT", "server.port"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile_EnvPathMissing(t *testing.T) {
	isolate(t)
	t.Setenv(ConfigPathEnvVar, "/does/not/exist.yml")

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty", got)
	}
}
