// SPDX-License-Identifier: LGPL-3.0-or-later

// Package tlog implements the gateway's append-only transparency log: an
// RFC-6962-style Merkle tree over verify/decrypt receipts, with signed
// checkpoints, real inclusion proofs, and real consistency proofs.
package tlog

import (
	"github.com/ib823/benteng-sdk/canon"
)

// Op names the operation a log entry records.
type Op string

const (
	OpVerify  Op = "verify"
	OpDecrypt Op = "decrypt"
)

const entryVersion = 1

// Entry is one append-only transparency-log record.
type Entry struct {
	V        uint8
	TenantID []byte
	Typ      Op
	Ts       uint64
	HdrH     [32]byte
	SigH     [32]byte
	Kid      string
	PolicyID []byte
	Rc       uint16
}

// canon tags, local to this leaf encoding.
const (
	tagV        = 1
	tagTenantID = 2
	tagTyp      = 3
	tagTs       = 4
	tagHdrH     = 5
	tagSigH     = 6
	tagKid      = 7
	tagPolicyID = 8
	tagRc       = 9
)

// CanonicalBytes deterministically encodes e; this is the tree leaf's
// payload, never rewritten after append.
func CanonicalBytes(e Entry) []byte {
	return canon.NewBuilder().
		Uint(tagV, uint64(e.V)).
		Bytes(tagTenantID, e.TenantID).
		String(tagTyp, string(e.Typ)).
		Uint(tagTs, e.Ts).
		Bytes(tagHdrH, e.HdrH[:]).
		Bytes(tagSigH, e.SigH[:]).
		String(tagKid, e.Kid).
		Bytes(tagPolicyID, e.PolicyID).
		Uint(tagRc, uint64(e.Rc)).
		Build()
}

// NewEntry fills in V and returns an Entry ready for Append.
func NewEntry(tenantID, policyID []byte, typ Op, ts uint64, hdrH, sigH [32]byte, kid string, rc uint16) Entry {
	return Entry{
		V: entryVersion, TenantID: tenantID, Typ: typ, Ts: ts,
		HdrH: hdrH, SigH: sigH, Kid: kid, PolicyID: policyID, Rc: rc,
	}
}
