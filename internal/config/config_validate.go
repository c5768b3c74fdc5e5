// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/aurasync/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Struct tag rules run first; the hand-written checks below cover what the
// tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateCredentials(); err != nil {
		return err
	}

	return c.validateServer()
}

// validateCredentials rejects values copied unchanged from config.example.yml.
func (c *Config) validateCredentials() error {
	checks := []struct {
		key   string
		value string
	}{
		{"immich.api_key", c.Immich.APIKey},
		{"aura.password", c.Aura.Password},
		{"aura.frame_id", c.Aura.FrameID},
	}
	for _, chk := range checks {
		if containsPlaceholder(chk.value) {
			return fmt.Errorf("%s contains a placeholder value; set the real value", chk.key)
		}
	}

	if (c.Aura.AWSAccessKeyID == "") != (c.Aura.AWSSecretAccessKey == "") {
		return fmt.Errorf("aura.aws_access_key_id and aura.aws_secret_access_key must be set together")
	}
	return nil
}

// validateServer validates the status server settings (only if enabled).
func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required when server.enabled is true")
	}
	return nil
}

// Warnings returns non-fatal configuration problems for the caller to log.
func (c *Config) Warnings() []string {
	var warnings []string
	if !hasAPISuffix(c.Immich.URL) {
		warnings = append(warnings, fmt.Sprintf(
			"immich.url %q does not end in /api; Immich API requests will probably fail", c.Immich.URL))
	}
	if c.Server.Enabled && !isLoopbackHost(c.Server.Host) {
		warnings = append(warnings, fmt.Sprintf(
			"server.host %q is not a loopback address; the unauthenticated sync trigger endpoint is reachable from the network", c.Server.Host))
	}
	return warnings
}

// normalize trims whitespace and trailing slashes so URL joins stay predictable.
func (c *Config) normalize() {
	c.Immich.URL = trimBaseURL(c.Immich.URL)
	c.Aura.BaseURL = trimBaseURL(c.Aura.BaseURL)
	c.Aura.S3Endpoint = trimBaseURL(c.Aura.S3Endpoint)
	c.Sync.TagName = strings.TrimSpace(c.Sync.TagName)
	c.Logging.Level = strings.ToUpper(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// placeholderPatterns are markers of a value the operator forgot to replace.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"CHANGE-ME",
	"YOUR_API_KEY",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
}

func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
