// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

// Package validation wraps go-playground/validator v10 with a thread-safe
// singleton and human-readable error messages.
//
// Field names in errors are taken from the koanf struct tag, so a failure on
// Config.Immich.URL is reported as "immich.url is required", matching the
// key the operator wrote in config.yml or the variable they need to set.
//
// # Custom Tags
//
//   - loglevel: DEBUG, INFO, WARNING, ERROR or CRITICAL, case-insensitive
//   - httpurl: absolute URL with an http or https scheme and a host
//
// # Usage
//
//	type ImmichConfig struct {
//	    URL    string `koanf:"url" validate:"required,httpurl"`
//	    APIKey string `koanf:"api_key" validate:"required"`
//	}
//
//	if verr := validation.ValidateStruct(&cfg); verr != nil {
//	    for _, fe := range verr.Fields() {
//	        fmt.Println(fe.Field(), fe.Error())
//	    }
//	}
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use. The validator
// caches struct metadata after the first call for each type.
package validation
