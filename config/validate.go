// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import "fmt"

// Validate checks cfg for internally inconsistent settings that defaults
// alone cannot repair. It returns human-readable messages, not errors,
// since the loader only fails the process on the first one.
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Kms.RequireQuorum && cfg.Kms.QuorumThreshold < 1 {
		errs = append(errs, "kms.quorum_threshold must be at least 1 when kms.require_quorum is set")
	}
	if cfg.Witness.Quorum > len(cfg.Witness.Endpoints) {
		errs = append(errs, fmt.Sprintf(
			"witness.quorum (%d) exceeds the number of configured witness endpoints (%d)",
			cfg.Witness.Quorum, len(cfg.Witness.Endpoints)))
	}
	if cfg.RateLimit.CapacityTokens < 1 {
		errs = append(errs, "rate_limit.capacity_tokens must be positive")
	}
	if cfg.RateLimit.RefillPerSecond <= 0 {
		errs = append(errs, "rate_limit.refill_per_second must be positive")
	}
	return errs
}
