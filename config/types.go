// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config loads and validates the gateway's deployment configuration.
package config

import "github.com/ib823/benteng-sdk/kms"

// Config is the gateway's top-level configuration structure.
type Config struct {
	Environment string          `yaml:"environment" json:"environment"`
	Gateway     GatewayConfig   `yaml:"gateway" json:"gateway"`
	Kms         kms.Config      `yaml:"kms" json:"kms"`
	Policy      PolicyConfig    `yaml:"policy" json:"policy"`
	Witness     WitnessConfig   `yaml:"witness" json:"witness"`
	RateLimit   RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Replay      ReplayConfig    `yaml:"replay" json:"replay"`
	Storage     StorageConfig   `yaml:"storage" json:"storage"`
	Logging     LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics     MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// GatewayConfig configures the HTTP surface.
type GatewayConfig struct {
	ListenAddr    string `yaml:"listen_addr" json:"listen_addr"`
	HybridDefault bool   `yaml:"hybrid_default" json:"hybrid_default"`
}

// PolicyConfig configures policy bundle distribution.
type PolicyConfig struct {
	SignerPublicKeyPath string `yaml:"signer_public_key_path" json:"signer_public_key_path"`
	BundlePath          string `yaml:"bundle_path" json:"bundle_path"`
	RefreshIntervalSecs int    `yaml:"refresh_interval_secs" json:"refresh_interval_secs"`
}

// WitnessConfig configures checkpoint cosignature fan-out. PublicKeyPaths,
// when set, must be the same length as Endpoints and parallel to it: each
// path is the PEM/raw-marshalled sig.PublicKey used to verify that
// witness's cosignatures.
type WitnessConfig struct {
	Endpoints      []string `yaml:"endpoints" json:"endpoints"`
	PublicKeyPaths []string `yaml:"public_key_paths" json:"public_key_paths"`
	Quorum         int      `yaml:"quorum" json:"quorum"`
	TimeoutMs      int      `yaml:"timeout_ms" json:"timeout_ms"`
}

// RateLimitConfig configures the admission layer's token bucket.
type RateLimitConfig struct {
	CapacityTokens  int     `yaml:"capacity_tokens" json:"capacity_tokens"`
	RefillPerSecond float64 `yaml:"refill_per_second" json:"refill_per_second"`
}

// ReplayConfig configures replay suppression.
type ReplayConfig struct {
	TTLSecs int `yaml:"ttl_secs" json:"ttl_secs"`
}

// StorageConfig configures durable backends.
type StorageConfig struct {
	PostgresDSN string `yaml:"postgres_dsn" json:"postgres_dsn"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, text
	Output string `yaml:"output" json:"output"` // stdout, stderr, file path
}

// MetricsConfig configures the Prometheus exporter.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
	Path       string `yaml:"path" json:"path"`
}
