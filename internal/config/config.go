// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates the engine's configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config File: optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: override any setting via environment variables
//
// Configuration Categories:
//
//  1. Library: storage roots the scan service and media-parse service operate on
//  2. Scan: poll interval and optional fsnotify watch mode
//  3. Bus: event bus delivery mode
//  4. Memtable: buffer flush thresholds for the write-behind projection store
//  5. Security: secrets for the password hasher, encryptor, and token service
//  6. Logging: zerolog level/format/caller settings
//
// Example - Load configuration from environment:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    log.Fatal("failed to load config:", err)
//	}
//
// Thread Safety:
// Config is immutable after LoadWithKoanf() and safe for concurrent read
// access from multiple goroutines.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from environment variables and config files.
type Config struct {
	Library  []LibraryConfig `koanf:"library"`
	Scan     ScanConfig      `koanf:"scan"`
	Bus      BusConfig       `koanf:"bus"`
	Memtable MemtableConfig  `koanf:"memtable"`
	Security SecurityConfig  `koanf:"security"`
	Admin    AdminConfig     `koanf:"admin"`
	Logging  LoggingConfig   `koanf:"logging"`
}

// AdminConfig seeds the initial administrator account on first run. Both
// fields empty disables bootstrap; accounts are then created through the
// admin API.
type AdminConfig struct {
	// Username of the bootstrap administrator.
	Username string `koanf:"username"`

	// Password of the bootstrap administrator, in plaintext; it is bcrypt
	// hashed (and AES-GCM encrypted for Subsonic token auth) before storage.
	Password string `koanf:"password"`
}

// LibraryConfig describes one configured storage root.
// Every library is scanned independently and carries its own id so that
// scan-status and location rollups can be attributed correctly.
type LibraryConfig struct {
	// ID is the library's stable identifier as configured by the operator.
	// The first time a library with this ID is seen, a Library aggregate
	// is created for it.
	ID int64 `koanf:"id"`

	// Name is a human-readable label, used only for logging and the admin API.
	Name string `koanf:"name"`

	// Path is the storage root, expressed in the protocol-qualified form
	// the configured StorageClient understands (e.g. "file:///music").
	Path string `koanf:"path"`

	// Watch enables the fsnotify-driven live trigger in addition to the
	// poll-based scan for this library.
	Watch bool `koanf:"watch"`
}

// ScanConfig controls the library scan service.
type ScanConfig struct {
	// PollInterval is how often each configured library is walked and
	// diffed against its last known item set.
	PollInterval time.Duration `koanf:"poll_interval"`

	// Concurrency is the number of libraries that may be scanned at once.
	Concurrency int `koanf:"concurrency"`

	// FullScan re-processes every discovered file on each poll pass, even
	// if unchanged since the last scan. Off by default; turn on to rebuild
	// projections after data loss, then turn back off.
	FullScan bool `koanf:"full_scan"`
}

// BusMode selects the event bus's delivery semantics.
type BusMode string

const (
	// BusModeSynchronous awaits every handler before Publish returns.
	BusModeSynchronous BusMode = "synchronous"

	// BusModeFireAndForget spawns a detached task per publish; Publish
	// returns once the task has been scheduled, not once handlers finish.
	BusModeFireAndForget BusMode = "fire_and_forget"
)

// BusConfig controls the in-process event bus.
type BusConfig struct {
	Mode BusMode `koanf:"mode"`
}

// MemtableConfig controls the write-behind buffer shared by the projection
// repositories. A single threshold/interval pair applies to every memtable
// instance; each memtable-buffered badger repository constructs its own memtable at startup using
// these values.
type MemtableConfig struct {
	// MaxEntries triggers a flush once the active table holds this many keys.
	MaxEntries int `koanf:"max_entries"`

	// FlushInterval triggers a time-based flush even if MaxEntries hasn't
	// been reached, bounding how stale a projection can get.
	FlushInterval time.Duration `koanf:"flush_interval"`

	// ShutdownFlushTimeout bounds how long graceful shutdown waits for the
	// final flush of each memtable before giving up.
	ShutdownFlushTimeout time.Duration `koanf:"shutdown_flush_timeout"`
}

// SecurityConfig holds secrets for the password hasher, encryptor, and
// token service collaborators described in §6.
type SecurityConfig struct {
	// EncryptionSecret seeds the AES-256-GCM key (via SHA-256) used to
	// encrypt stored credentials.
	EncryptionSecret string `koanf:"encryption_secret"`

	// TokenSecret signs issued JWTs.
	TokenSecret string `koanf:"token_secret"`

	// TokenTTL is how long an issued token remains valid.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// BcryptCost is the bcrypt work factor used by the password hasher.
	BcryptCost int `koanf:"bcrypt_cost"`
}

// LoggingConfig holds logging settings for zerolog.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Validate checks that the loaded configuration is internally consistent.
func (c *Config) Validate() error {
	seen := make(map[int64]bool, len(c.Library))
	for _, lib := range c.Library {
		if lib.Path == "" {
			return fmt.Errorf("library %d: path is required", lib.ID)
		}
		if seen[lib.ID] {
			return fmt.Errorf("library %d: duplicate id", lib.ID)
		}
		seen[lib.ID] = true
	}

	if c.Scan.PollInterval <= 0 {
		return fmt.Errorf("scan.poll_interval must be positive")
	}
	if c.Scan.Concurrency <= 0 {
		return fmt.Errorf("scan.concurrency must be positive")
	}

	switch c.Bus.Mode {
	case BusModeSynchronous, BusModeFireAndForget:
	default:
		return fmt.Errorf("bus.mode must be %q or %q, got %q", BusModeSynchronous, BusModeFireAndForget, c.Bus.Mode)
	}

	if c.Memtable.MaxEntries <= 0 {
		return fmt.Errorf("memtable.max_entries must be positive")
	}
	if c.Memtable.FlushInterval <= 0 {
		return fmt.Errorf("memtable.flush_interval must be positive")
	}

	if c.Security.EncryptionSecret == "" {
		return fmt.Errorf("security.encryption_secret is required")
	}
	if c.Security.TokenSecret == "" {
		return fmt.Errorf("security.token_secret is required")
	}
	if c.Security.BcryptCost <= 0 {
		return fmt.Errorf("security.bcrypt_cost must be positive")
	}

	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		return fmt.Errorf("admin.username and admin.password must be set together")
	}

	return nil
}

// Load reads configuration from environment variables and optional config
// file, in that precedence order (env overrides file overrides defaults).
func Load() (*Config, error) {
	return LoadWithKoanf()
}
