// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML or JSON file, trying YAML
// first as the reference source does.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile writes cfg to path, choosing JSON or YAML by file extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Gateway.ListenAddr == "" {
		cfg.Gateway.ListenAddr = ":8443"
	}

	if cfg.Kms.QuorumThreshold == 0 {
		cfg.Kms.QuorumThreshold = 2
	}
	if cfg.Kms.TimeoutMs == 0 {
		cfg.Kms.TimeoutMs = 5000
	}
	if cfg.Kms.MaxCacheEntries == 0 {
		cfg.Kms.MaxCacheEntries = 100
	}
	if cfg.Kms.CacheTTLSecs == 0 {
		cfg.Kms.CacheTTLSecs = 300
	}

	if cfg.Policy.RefreshIntervalSecs == 0 {
		cfg.Policy.RefreshIntervalSecs = 60
	}

	if cfg.Witness.Quorum == 0 && len(cfg.Witness.Endpoints) > 0 {
		cfg.Witness.Quorum = 1
	}
	if cfg.Witness.TimeoutMs == 0 {
		cfg.Witness.TimeoutMs = 5000
	}

	if cfg.RateLimit.CapacityTokens == 0 {
		cfg.RateLimit.CapacityTokens = 100
	}
	if cfg.RateLimit.RefillPerSecond == 0 {
		cfg.RateLimit.RefillPerSecond = 10
	}

	if cfg.Replay.TTLSecs == 0 {
		cfg.Replay.TTLSecs = 300
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
