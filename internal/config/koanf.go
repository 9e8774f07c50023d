// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/harmonia/config.yaml",
	"/etc/harmonia/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Library: nil,
		Scan: ScanConfig{
			PollInterval: 5 * time.Minute,
			Concurrency:  2,
		},
		Bus: BusConfig{
			Mode: BusModeFireAndForget,
		},
		Memtable: MemtableConfig{
			MaxEntries:           1000,
			FlushInterval:        10 * time.Second,
			ShutdownFlushTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			EncryptionSecret: "",
			TokenSecret:      "",
			TokenTTL:         24 * time.Hour,
			BcryptCost:       12,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// HARMONIA_SCAN_POLL_INTERVAL -> scan.poll_interval
	envProvider := env.Provider("HARMONIA_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
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

// envMappings maps HARMONIA_-prefixed environment variable suffixes to
// koanf config paths. Explicit mapping (rather than blind underscore-to-dot
// translation) avoids ambiguity between the section separator and
// multi-word leaf names like poll_interval.
var envMappings = map[string]string{
	"scan_poll_interval":             "scan.poll_interval",
	"scan_concurrency":               "scan.concurrency",
	"scan_full_scan":                 "scan.full_scan",
	"bus_mode":                       "bus.mode",
	"memtable_max_entries":           "memtable.max_entries",
	"memtable_flush_interval":        "memtable.flush_interval",
	"memtable_shutdown_flush_timeout": "memtable.shutdown_flush_timeout",
	"security_encryption_secret":     "security.encryption_secret",
	"security_token_secret":          "security.token_secret",
	"security_token_ttl":             "security.token_ttl",
	"security_bcrypt_cost":           "security.bcrypt_cost",
	"admin_username":                 "admin.username",
	"admin_password":                 "admin.password",
	"logging_level":                  "logging.level",
	"logging_format":                 "logging.format",
	"logging_caller":                 "logging.caller",
}

// envTransformFunc transforms HARMONIA_-prefixed environment variable names
// into koanf config paths, e.g. HARMONIA_SCAN_POLL_INTERVAL -> scan.poll_interval.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "HARMONIA_"))
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage, such as
// hot-reload scenarios guarded by a caller-supplied mutex.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}
