// SPDX-License-Identifier: LGPL-3.0-or-later

package audit

import "time"

// zeroTime is the fixed modification timestamp stamped into every zip
// entry, so the archive's bytes depend only on Sources, never on wall
// clock time.
var zeroTime = time.Unix(0, 0).UTC()

// CheckpointRecord is one checkpoints.json entry.
type CheckpointRecord struct {
	TreeSize  uint64 `json:"tree_size"`
	RootHash  string `json:"root_hash_hex"`
	Ts        uint64 `json:"ts"`
	Ver       uint8  `json:"ver"`
	Signature string `json:"signature_hex"`
}

// WitnessRecord is one witness_signatures.json entry.
type WitnessRecord struct {
	WitnessID string `json:"witness_id"`
	TreeSize  uint64 `json:"tree_size"`
	RootHash  string `json:"root_hash_hex"`
	Timestamp uint64 `json:"timestamp"`
	Signature string `json:"signature_hex"`
}

// InclusionProofRecord is one sampled inclusion_proofs.json entry.
type InclusionProofRecord struct {
	LeafIndex uint64   `json:"leaf_index"`
	TreeSize  uint64   `json:"tree_size"`
	AuditPath []string `json:"audit_path_hex"`
}

// PolicyRecord is one policy_snapshots.json entry.
type PolicyRecord struct {
	TenantID        string `json:"tenant_id"`
	PolicyID        string `json:"policy_id"`
	Path            string `json:"path"`
	RequiredAlgs    string `json:"required_algs"`
	MaxAgeMs        uint64 `json:"max_age_ms"`
	MaxBodyBytes    uint64 `json:"max_body_bytes"`
	RequireDeviceAt bool   `json:"require_device_attest"`
	HybridAllowed   bool   `json:"hybrid_allowed"`
	ReplayTTLMs     uint64 `json:"replay_ttl_ms"`
	Version         uint64 `json:"version"`
}

// KeyCatalogEntry is one key_catalog.json entry: metadata only, never key
// material.
type KeyCatalogEntry struct {
	KID       string `json:"kid"`
	Algorithm string `json:"algorithm"`
	CreatedAt uint64 `json:"created_at"`
	Purpose   string `json:"purpose"` // "server-sig" | "server-kem" | "witness" | "policy-signer"
}

// SBOM is a minimal CycloneDX-shaped software bill of materials: only the
// fields the audit pack needs to fill in, not a full CycloneDX client.
type SBOM struct {
	BomFormat   string          `json:"bomFormat"`
	SpecVersion string          `json:"specVersion"`
	Version     int             `json:"version"`
	Components  []SBOMComponent `json:"components"`
}

type SBOMComponent struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Version string `json:"version"`
	PURL    string `json:"purl,omitempty"`
}
