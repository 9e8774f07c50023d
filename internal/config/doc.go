// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package config provides centralized configuration management for the
ingestion and projection engine.

# Configuration Sources

The package reads configuration from, in increasing precedence:
  - Built-in defaults
  - An optional YAML config file (config.yaml, or the path named by CONFIG_PATH)
  - Environment variables prefixed with HARMONIA_

# Configuration Structure

  - LibraryConfig: configured storage roots (id, path, watch mode)
  - ScanConfig: poll interval and scan concurrency
  - BusConfig: event bus delivery mode (synchronous or fire-and-forget)
  - MemtableConfig: flush thresholds for the write-behind projection store
  - SecurityConfig: secrets for the encryptor and token service
  - LoggingConfig: zerolog level/format/caller settings

# Usage Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("failed to load config: %v", err)
	}

# Environment Variables

	HARMONIA_SCAN_POLL_INTERVAL
	HARMONIA_SCAN_CONCURRENCY
	HARMONIA_BUS_MODE
	HARMONIA_MEMTABLE_MAX_ENTRIES
	HARMONIA_MEMTABLE_FLUSH_INTERVAL
	HARMONIA_SECURITY_ENCRYPTION_SECRET
	HARMONIA_SECURITY_TOKEN_SECRET
	HARMONIA_LOGGING_LEVEL

Library roots are configured via the YAML file only; there's no sane way to
express an array of structs as flat environment variables.

# Thread Safety

The Config struct is immutable after Load() returns, making it safe for
concurrent access from multiple goroutines without synchronization.
*/
package config
