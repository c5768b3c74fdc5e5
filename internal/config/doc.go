// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

/*
Package config provides configuration management for aurasync.

Configuration is layered with Koanf v2, lowest priority first:

 1. Built-in defaults (defaultConfig)
 2. YAML file: CONFIG_PATH, else the first of config.yml, config.yaml,
    /etc/aurasync/config.yml, /etc/aurasync/config.yaml
 3. Environment variables via an explicit mapping table

Before layer 3 is read, a .env file in the working directory is loaded into
the process environment with godotenv. Variables already set win.

# Configuration File

	immich:
	  url: http://immich.local:2283/api
	  api_key: <api key>
	  album_id: 7c1f...
	aura:
	  email: me@example.com
	  password: <password>
	  frame_id: 1234
	sync:
	  interval_minutes: 15
	  tag_name: synced-to-aura
	logging:
	  level: INFO

# Environment Variables

Required:
  - IMMICH_URL, IMMICH_API_KEY, IMMICH_ALBUM_ID
  - AURA_EMAIL, AURA_PASSWORD, AURA_FRAME_ID

Optional:
  - IMMICH_TIMEOUT, IMMICH_REQUESTS_PER_SECOND, IMMICH_PAGE_SIZE
  - AURA_BASE_URL, AURA_TIMEOUT, AURA_READINESS_QUEUE, AURA_READINESS_WAIT
  - AURA_S3_BUCKET, AURA_S3_REGION, AURA_S3_ENDPOINT
  - AURA_AWS_ACCESS_KEY_ID, AURA_AWS_SECRET_ACCESS_KEY
  - SYNC_INTERVAL_MINUTES, SYNC_TAG_NAME, SYNC_TEMP_DIR
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER, LOG_FILE
  - HTTP_ENABLED, HTTP_HOST, HTTP_PORT, HTTP_SHUTDOWN_TIMEOUT

# Validation

Load validates the merged configuration and returns an error naming every
failed key. Callers treat that as fatal. Non-fatal findings, such as an
Immich URL that does not end in /api, are returned by Config.Warnings.
*/
package config
