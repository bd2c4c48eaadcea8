// SPDX-License-Identifier: LGPL-3.0-or-later

// Package envelope defines the gateway's wire envelope — a 12-field
// tagged structure bound to a tenant, policy, path, timestamp, and
// algorithm set — and its canonical deterministic binary codec.
package envelope

import (
	"github.com/ib823/benteng-sdk/aad"
	"github.com/ib823/benteng-sdk/canon"
	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// Version is the only envelope version this gateway speaks.
const Version = 1

// Top-level field tags, matching the data model exactly.
const (
	TagVer         = 1
	TagAlgs        = 2
	TagTenantID    = 3
	TagPolicyID    = 4
	TagPath        = 5
	TagTsEpochMs   = 6
	TagNonce       = 7
	TagAadExt      = 8
	TagKemPubEphem = 9
	TagKemCt       = 10
	TagSig         = 11
	TagCt          = 12
)

// Sub-tags within the algs submessage.
const (
	algTagKem    = 1
	algTagSig    = 2
	algTagAead   = 3
	algTagHybrid = 4
)

// Sub-tags within the aad_ext submessage.
const (
	aadExtTagRequiredAlgs     = 1
	aadExtTagDeviceAttestHash = 2
)

// AlgorithmSet names the three algorithms an envelope uses.
type AlgorithmSet struct {
	Kem    string
	Sig    string
	Aead   string
	Hybrid bool
}

// DefaultAlgorithmSet is the gateway's only supported combination.
func DefaultAlgorithmSet(hybrid bool) AlgorithmSet {
	return AlgorithmSet{Kem: "ML-KEM-768", Sig: "ML-DSA-65", Aead: "AES-256-GCM", Hybrid: hybrid}
}

// AadExt is the envelope's extension to the AAD binding.
type AadExt struct {
	RequiredAlgs     string
	DeviceAttestHash []byte // 32 bytes, optional
}

// Envelope is the full 12-field wire structure.
type Envelope struct {
	Ver         uint8
	Algs        AlgorithmSet
	TenantID    []byte
	PolicyID    []byte
	Path        string
	TsEpochMs   uint64
	Nonce       []byte // 12 bytes
	AadExt      AadExt
	KemPubEphem []byte // present iff Algs.Hybrid
	KemCt       []byte
	Sig         []byte
	Ct          []byte
}

// AAD projects the envelope's binding fields into an aad.AAD value, per
// Invariant (c): the AAD binding string is a function only of
// {ver, tenant_id, policy_id, path, ts_epoch_ms, aad_ext.required_algs,
// algs.hybrid, aad_ext.device_attest_hash}.
func (e *Envelope) AAD() aad.AAD {
	return aad.AAD{
		Ver:              e.Ver,
		TenantID:         e.TenantID,
		PolicyID:         e.PolicyID,
		Path:             e.Path,
		TsEpochMs:        e.TsEpochMs,
		RequiredAlgs:     e.AadExt.RequiredAlgs,
		Hybrid:           e.Algs.Hybrid,
		DeviceAttestHash: e.AadExt.DeviceAttestHash,
	}
}

func encodeAlgs(a AlgorithmSet) []byte {
	return canon.NewBuilder().
		String(algTagKem, a.Kem).
		String(algTagSig, a.Sig).
		String(algTagAead, a.Aead).
		Bool(algTagHybrid, a.Hybrid).
		Build()
}

func decodeAlgs(b []byte) (AlgorithmSet, error) {
	var a AlgorithmSet
	r := canon.NewReader(b)
	for {
		f, ok, err := r.Next()
		if err != nil {
			return a, err
		}
		if !ok {
			break
		}
		switch f.Tag {
		case algTagKem:
			a.Kem = f.S
		case algTagSig:
			a.Sig = f.S
		case algTagAead:
			a.Aead = f.S
		case algTagHybrid:
			a.Hybrid = f.Bool
		}
	}
	return a, nil
}

func encodeAadExt(e AadExt) []byte {
	b := canon.NewBuilder().String(aadExtTagRequiredAlgs, e.RequiredAlgs)
	if e.DeviceAttestHash != nil {
		b = b.Bytes(aadExtTagDeviceAttestHash, e.DeviceAttestHash)
	}
	return b.Build()
}

func decodeAadExt(b []byte) (AadExt, error) {
	var e AadExt
	r := canon.NewReader(b)
	for {
		f, ok, err := r.Next()
		if err != nil {
			return e, err
		}
		if !ok {
			break
		}
		switch f.Tag {
		case aadExtTagRequiredAlgs:
			e.RequiredAlgs = f.S
		case aadExtTagDeviceAttestHash:
			e.DeviceAttestHash = f.B
		}
	}
	return e, nil
}

// encode builds the canonical envelope encoding. When sigCleared is true,
// field 11 is written as an empty byte string regardless of e.Sig — this
// is the form hashed into the signature message, per Invariant (b).
func encode(e *Envelope, sigCleared bool) []byte {
	b := canon.NewBuilder().
		Uint(TagVer, uint64(e.Ver)).
		Sub(TagAlgs, encodeAlgs(e.Algs)).
		Bytes(TagTenantID, e.TenantID).
		Bytes(TagPolicyID, e.PolicyID).
		String(TagPath, e.Path).
		Uint(TagTsEpochMs, e.TsEpochMs).
		Bytes(TagNonce, e.Nonce).
		Sub(TagAadExt, encodeAadExt(e.AadExt))
	if e.Algs.Hybrid {
		b = b.Bytes(TagKemPubEphem, e.KemPubEphem)
	}
	b = b.Bytes(TagKemCt, e.KemCt)
	if sigCleared {
		b = b.Bytes(TagSig, nil)
	} else {
		b = b.Bytes(TagSig, e.Sig)
	}
	b = b.Bytes(TagCt, e.Ct)
	return b.Build()
}

// Encode returns the canonical wire bytes for e.
func Encode(e *Envelope) []byte { return encode(e, false) }

// EncodeForSigning returns the canonical bytes with the signature field
// cleared, as required before computing or verifying Sig.
func EncodeForSigning(e *Envelope) []byte { return encode(e, true) }

// Decode parses the canonical wire bytes into an Envelope.
func Decode(buf []byte) (*Envelope, error) {
	e := &Envelope{}
	r := canon.NewReader(buf)
	for {
		f, ok, err := r.Next()
		if err != nil {
			return nil, gwerr.Wrap(gwerr.PolicyMismatch, "malformed envelope", err)
		}
		if !ok {
			break
		}
		switch f.Tag {
		case TagVer:
			e.Ver = uint8(f.U)
		case TagAlgs:
			a, err := decodeAlgs(f.B)
			if err != nil {
				return nil, gwerr.Wrap(gwerr.PolicyMismatch, "malformed algs", err)
			}
			e.Algs = a
		case TagTenantID:
			e.TenantID = f.B
		case TagPolicyID:
			e.PolicyID = f.B
		case TagPath:
			e.Path = f.S
		case TagTsEpochMs:
			e.TsEpochMs = f.U
		case TagNonce:
			e.Nonce = f.B
		case TagAadExt:
			ext, err := decodeAadExt(f.B)
			if err != nil {
				return nil, gwerr.Wrap(gwerr.PolicyMismatch, "malformed aad_ext", err)
			}
			e.AadExt = ext
		case TagKemPubEphem:
			e.KemPubEphem = f.B
		case TagKemCt:
			e.KemCt = f.B
		case TagSig:
			e.Sig = f.B
		case TagCt:
			e.Ct = f.B
		}
	}
	if e.Ver != Version {
		return nil, gwerr.New(gwerr.PolicyMismatch, "unsupported envelope version")
	}
	if len(e.TenantID) == 0 || len(e.TenantID) > 64 {
		return nil, gwerr.New(gwerr.PolicyMismatch, "tenant_id out of bounds")
	}
	if len(e.PolicyID) == 0 || len(e.PolicyID) > 64 {
		return nil, gwerr.New(gwerr.PolicyMismatch, "policy_id out of bounds")
	}
	if len(e.Path) == 0 || e.Path[0] != '/' || len(e.Path) > 1024 {
		return nil, gwerr.New(gwerr.PolicyMismatch, "path must start with / and be <= 1024 bytes")
	}
	if len(e.Nonce) != 12 {
		return nil, gwerr.New(gwerr.PolicyMismatch, "nonce must be 12 bytes")
	}
	return e, nil
}
