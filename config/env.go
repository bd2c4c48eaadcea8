// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR} or ${VAR:default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// SubstituteEnvVars replaces ${VAR} or ${VAR:default} with environment
// variable values.
func SubstituteEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		varName, defaultValue := parts[1], ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// SubstituteEnvVarsInConfig recursively substitutes environment variables
// across the string fields of cfg that are expected to carry secrets or
// host-specific paths: DSNs, endpoint URLs, and key file paths.
func SubstituteEnvVarsInConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Storage.PostgresDSN = SubstituteEnvVars(cfg.Storage.PostgresDSN)
	cfg.Kms.HsmAEndpoint = SubstituteEnvVars(cfg.Kms.HsmAEndpoint)
	cfg.Kms.HsmBEndpoint = SubstituteEnvVars(cfg.Kms.HsmBEndpoint)
	cfg.Policy.SignerPublicKeyPath = SubstituteEnvVars(cfg.Policy.SignerPublicKeyPath)
	cfg.Policy.BundlePath = SubstituteEnvVars(cfg.Policy.BundlePath)
	for i, ep := range cfg.Witness.Endpoints {
		cfg.Witness.Endpoints[i] = SubstituteEnvVars(ep)
	}
	cfg.Logging.Output = SubstituteEnvVars(cfg.Logging.Output)
}

// GetEnvironment returns the deployment environment from BENTENG_ENV,
// falling back to ENVIRONMENT, then "development".
func GetEnvironment() string {
	env := os.Getenv("BENTENG_ENV")
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	if env == "" {
		env = "development"
	}
	return strings.ToLower(env)
}

// IsProduction reports whether the current environment is production.
func IsProduction() bool { return GetEnvironment() == "production" }

// IsDevelopment reports whether the current environment is development or
// local.
func IsDevelopment() bool {
	env := GetEnvironment()
	return env == "development" || env == "local"
}
