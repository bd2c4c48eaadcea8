// SPDX-License-Identifier: LGPL-3.0-or-later

// Package policy implements per-(tenant,policy,path) admission constraints
// and their signed, versioned, staged-activation distribution bundle.
package policy

import (
	"bytes"

	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// Policy is an immutable, versioned constraint record for one
// (tenant_id, policy_id, path) triple.
type Policy struct {
	TenantID            []byte `json:"tenant_id"`
	PolicyID            []byte `json:"policy_id"`
	Path                string `json:"path"`
	RequiredAlgs        string `json:"required_algs"`
	MaxAgeMs            uint64 `json:"max_age_ms"`
	MaxBodyBytes        uint64 `json:"max_body_bytes"`
	RequireDeviceAttest bool   `json:"require_device_attest"`
	HybridAllowed       bool   `json:"hybrid_allowed"`
	ReplayTTLMs         uint64 `json:"replay_ttl_ms"`
	Version             uint64 `json:"version"`
}

// Default returns the conservative default policy applied when no stored
// policy matches a (tenant, policy, path) lookup.
func Default() Policy {
	return Policy{
		MaxAgeMs:      30_000,
		MaxBodyBytes:  65_536,
		HybridAllowed: true,
		ReplayTTLMs:   30_000,
	}
}

// Validate checks envelope-derived fields against the policy: tenant,
// policy, path, and required-algorithm equality, plus freshness when
// nowMs >= tsEpochMs.
func (p Policy) Validate(tenantID, policyID []byte, path string, tsEpochMs, nowMs uint64, requiredAlgs string) error {
	if !bytes.Equal(p.TenantID, tenantID) {
		return gwerr.New(gwerr.PolicyMismatch, "tenant_id does not match policy")
	}
	if !bytes.Equal(p.PolicyID, policyID) {
		return gwerr.New(gwerr.PolicyMismatch, "policy_id does not match policy")
	}
	if p.Path != path {
		return gwerr.New(gwerr.PolicyMismatch, "path does not match policy")
	}
	if p.RequiredAlgs != requiredAlgs {
		return gwerr.New(gwerr.PolicyMismatch, "required_algs does not match policy")
	}
	if nowMs >= tsEpochMs && nowMs-tsEpochMs > p.MaxAgeMs {
		return gwerr.New(gwerr.Stale, "envelope exceeds policy max_age_ms")
	}
	return nil
}

// Key identifies a policy within a bundle/cache by its (tenant, policy,
// path) triple.
type Key struct {
	TenantID string
	PolicyID string
	Path     string
}

func KeyOf(tenantID, policyID []byte, path string) Key {
	return Key{TenantID: string(tenantID), PolicyID: string(policyID), Path: path}
}
