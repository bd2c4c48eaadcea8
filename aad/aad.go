// SPDX-License-Identifier: LGPL-3.0-or-later

// Package aad builds the gateway's additional-authenticated-data blob: a
// canonical binding over {ver, tenant_id, policy_id, path, ts_epoch_ms,
// required_algs, hybrid, device_attest_hash?}. Identical inputs always
// yield byte-identical output. The encoding is used both as the AEAD
// associated-data and, hashed, as part of the signature message.
package aad

import (
	"crypto/sha256"

	"github.com/ib823/benteng-sdk/canon"
)

// Tag numbers within the AAD's own canonical sub-encoding.
const (
	tagVer               = 1
	tagTenantID          = 3
	tagPolicyID          = 4
	tagPath              = 5
	tagTsEpochMs         = 6
	tagRequiredAlgs      = 20
	tagHybrid            = 21
	tagDeviceAttestHash  = 22
)

// AAD is the decoded additional-authenticated-data binding.
type AAD struct {
	Ver              uint8
	TenantID         []byte
	PolicyID         []byte
	Path             string
	TsEpochMs        uint64
	RequiredAlgs     string
	Hybrid           bool
	DeviceAttestHash []byte // 32 bytes, or nil
}

// Build constructs the canonical AAD encoding for these fields.
func Build(a AAD) []byte {
	b := canon.NewBuilder().
		Uint(tagVer, uint64(a.Ver)).
		Bytes(tagTenantID, a.TenantID).
		Bytes(tagPolicyID, a.PolicyID).
		String(tagPath, a.Path).
		Uint(tagTsEpochMs, a.TsEpochMs).
		String(tagRequiredAlgs, a.RequiredAlgs).
		Bool(tagHybrid, a.Hybrid)
	if a.DeviceAttestHash != nil {
		b = b.Bytes(tagDeviceAttestHash, a.DeviceAttestHash)
	}
	return b.Build()
}

// Hash returns SHA256 of the canonical AAD encoding.
func Hash(a AAD) [32]byte {
	return sha256.Sum256(Build(a))
}
