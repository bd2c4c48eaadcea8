// SPDX-License-Identifier: LGPL-3.0-or-later

// Package gateway composes the envelope, policy, KMS, transparency-log,
// and admission components into the two operations the edge trust
// gateway exposes externally: verify and decrypt.
package gateway

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ib823/benteng-sdk/aad"
	"github.com/ib823/benteng-sdk/admission"
	"github.com/ib823/benteng-sdk/crypto/aead"
	"github.com/ib823/benteng-sdk/crypto/sig"
	"github.com/ib823/benteng-sdk/envelope"
	"github.com/ib823/benteng-sdk/internal/gwerr"
	"github.com/ib823/benteng-sdk/internal/metrics"
	"github.com/ib823/benteng-sdk/kms"
	"github.com/ib823/benteng-sdk/policy"
	"github.com/ib823/benteng-sdk/tlog"
)

// Orchestrator composes C2-C8 into verify() and decrypt(). Its fields are
// the gateway's shared state, none holding a reference to another: the log writes
// receipts that reference policy decisions, admission reads tenant/policy
// identifiers the policy component owns, and so on — all concrete, not
// duck-typed, since this is in-process composition, not a plugin system.
type Orchestrator struct {
	Policies    *policy.Distributor
	KMS         *kms.DualControlKms
	Log         *tlog.Log
	Replay      *admission.ReplayCache
	RateLimiter *admission.RateLimiter
	ClientKeys  ClientKeyResolver
}

// ClientKeyResolver resolves the signature public key a tenant/policy
// presents, so the gateway can verify without baking in a single global
// trust root.
type ClientKeyResolver interface {
	ResolveSigKey(tenantID, policyID []byte) (*sig.PublicKey, error)
}

// Decision is the outward-facing verdict the HTTP surface renders.
type Decision struct {
	Decision  string // "OK" | "REJECTED" | "INTERNAL"
	Reason    string // only set when Decision != "OK"
	Claims    *Claims
	KID       string
	Receipt   *Receipt
	RequestID string // correlates this decision with operator-side logs
}

type Claims struct {
	Alg   string `json:"alg"`
	AgeMs uint64 `json:"age_ms"`
	Path  string `json:"path"`
}

type Receipt struct {
	TlogHash   string `json:"tlog_hash"`
	Checkpoint *CheckpointView `json:"checkpoint,omitempty"`
}

type CheckpointView struct {
	TreeSize uint64 `json:"tree_size"`
	RootHash string `json:"root_hash_hex"`
	Ts       uint64 `json:"ts"`
}

// Verify checks envelope bytes against admission controls, policy, and the
// client's signature; it never touches key material. nowMs is supplied by
// the caller, not read from the system clock, keeping this deterministic
// and testable.
func (o *Orchestrator) Verify(ctx context.Context, body []byte, clientIP string, nowMs uint64) Decision {
	reqID := uuid.NewString()
	start := time.Now()
	defer func() {
		metrics.AdmissionDuration.Observe(time.Since(start).Seconds())
	}()

	e, gerr := decodeEnvelope(body)
	if gerr != nil {
		return o.reject(gerr, reqID)
	}

	if gerr := o.admit(e, nowMs, "verify"); gerr != nil {
		return o.reject(gerr, reqID)
	}

	pk, err := o.ClientKeys.ResolveSigKey(e.TenantID, e.PolicyID)
	if err != nil {
		return o.reject(gwerr.Wrap(gwerr.InvalidSignature, "signature key resolution failed", err), reqID)
	}
	if err := envelope.Verify(e, pk); err != nil {
		metrics.RequestsAdmitted.WithLabelValues("rejected").Inc()
		return o.reject(err, reqID)
	}

	pol, _ := o.Policies.Lookup(e.TenantID, e.PolicyID, e.Path)
	if mismatch := policyMismatch(e, pol); mismatch != nil {
		return o.reject(mismatch, reqID)
	}

	sigHash := sha256.Sum256(e.Sig)
	_, receipt := o.appendReceipt(tlog.OpVerify, e, sigHash, 0, nowMs)
	metrics.RequestsAdmitted.WithLabelValues("admitted").Inc()

	return Decision{
		Decision:  "OK",
		Claims:    &Claims{Alg: e.Algs.Sig, AgeMs: nowMs - e.TsEpochMs, Path: e.Path},
		KID:       KID(e.TenantID, "sig", e.Algs.Sig),
		Receipt:   receipt,
		RequestID: reqID,
	}
}

// Decrypt performs everything Verify does, then derives the DEK via the
// dual-control KMS and opens the AEAD payload. The plaintext is handed to
// consume rather than returned, per spec: the HTTP surface never echoes
// decrypted payload bytes.
func (o *Orchestrator) Decrypt(ctx context.Context, body []byte, clientIP string, nowMs uint64, consume func([]byte)) Decision {
	reqID := uuid.NewString()

	e, gerr := decodeEnvelope(body)
	if gerr != nil {
		return o.reject(gerr, reqID)
	}

	if gerr := o.admit(e, nowMs, "decrypt"); gerr != nil {
		return o.reject(gerr, reqID)
	}

	pk, err := o.ClientKeys.ResolveSigKey(e.TenantID, e.PolicyID)
	if err != nil {
		return o.reject(gwerr.Wrap(gwerr.InvalidSignature, "signature key resolution failed", err), reqID)
	}
	if err := envelope.Verify(e, pk); err != nil {
		metrics.RequestsAdmitted.WithLabelValues("rejected").Inc()
		return o.reject(err, reqID)
	}

	pol, _ := o.Policies.Lookup(e.TenantID, e.PolicyID, e.Path)
	if mismatch := policyMismatch(e, pol); mismatch != nil {
		return o.reject(mismatch, reqID)
	}

	dek, err := o.KMS.DualDecrypt(ctx, e.KemCt, string(e.TenantID), string(e.PolicyID), e.Path)
	if err != nil {
		metrics.RequestsAdmitted.WithLabelValues("rejected").Inc()
		return o.reject(err, reqID)
	}
	defer dek.Wipe()

	aadBytes := aad.Build(e.AAD())
	pt, err := aead.Open(e.Algs.Aead, dek.Bytes(), e.Nonce, e.Ct, aadBytes)
	if err != nil {
		metrics.RequestsAdmitted.WithLabelValues("rejected").Inc()
		return o.reject(gwerr.Wrap(gwerr.AeadFailure, "aead open failed", err), reqID)
	}
	if consume != nil {
		consume(pt)
	}

	_, receipt := o.appendReceipt(tlog.OpDecrypt, e, sha256.Sum256(e.Sig), responseCodeFromNonce(e.Nonce), nowMs)
	metrics.RequestsAdmitted.WithLabelValues("admitted").Inc()

	return Decision{
		Decision:  "OK",
		Claims:    &Claims{Alg: e.Algs.Aead, AgeMs: nowMs - e.TsEpochMs, Path: e.Path},
		KID:       KID(e.TenantID, "kem", e.Algs.Kem),
		Receipt:   receipt,
		RequestID: reqID,
	}
}

func decodeEnvelope(body []byte) (*envelope.Envelope, *gwerr.Error) {
	e, err := envelope.Decode(body)
	if err != nil {
		if ge, ok := gwerr.As(err); ok {
			return nil, ge
		}
		return nil, gwerr.Wrap(gwerr.InternalError, "envelope decode failed", err)
	}
	return e, nil
}

// admit runs freshness, replay, and rate-limit checks, in that order, so
// the cheapest checks run first. op selects the rate-limit bucket.
func (o *Orchestrator) admit(e *envelope.Envelope, nowMs uint64, op string) *gwerr.Error {
	pol, _ := o.Policies.Lookup(e.TenantID, e.PolicyID, e.Path)

	if admission.CheckFreshness(nowMs, e.TsEpochMs, pol.MaxAgeMs) {
		metrics.FreshnessRejections.Inc()
		metrics.RequestsAdmitted.WithLabelValues("stale").Inc()
		return gwerr.New(gwerr.Stale, "envelope timestamp outside freshness window")
	}

	replayKey := admission.ReplayKey(e.Sig)
	if o.Replay.CheckAndRecord(replayKey, time.UnixMilli(int64(nowMs))) {
		metrics.ReplaysDetected.Inc()
		metrics.RequestsAdmitted.WithLabelValues("replay").Inc()
		return gwerr.New(gwerr.Replay, "signature hash already seen within replay window")
	}

	rlKey := admission.Key(op, tenantPrefix(e.TenantID), policyPrefix(e.PolicyID))
	if !o.RateLimiter.Allow(rlKey, time.UnixMilli(int64(nowMs))) {
		metrics.RateLimitRejections.Inc()
		metrics.RequestsAdmitted.WithLabelValues("rate_limited").Inc()
		return gwerr.New(gwerr.RateLimited, "rate limit exceeded")
	}

	return nil
}

func policyMismatch(e *envelope.Envelope, pol policy.Policy) *gwerr.Error {
	if e.Algs.Hybrid && !pol.HybridAllowed {
		return gwerr.New(gwerr.PolicyMismatch, "hybrid mode not permitted by policy")
	}
	if uint64(len(e.Ct)) > pol.MaxBodyBytes && pol.MaxBodyBytes != 0 {
		return gwerr.New(gwerr.PolicyMismatch, "ciphertext exceeds policy max_body_bytes")
	}
	return nil
}

func (o *Orchestrator) reject(err error, reqID string) Decision {
	ge, ok := gwerr.As(err)
	if !ok {
		ge = gwerr.Wrap(gwerr.InternalError, "unclassified error", err)
	}
	return Decision{Decision: ge.Kind.Decision(), Reason: ge.Kind.ExternalReason(), RequestID: reqID}
}

// appendReceipt writes a transparency-log entry for this operation and
// returns its response-code placeholder plus a caller-facing receipt.
func (o *Orchestrator) appendReceipt(op tlog.Op, e *envelope.Envelope, sigHash [32]byte, rc uint16, nowMs uint64) (uint16, *Receipt) {
	var hdrH [32]byte
	discriminator := sigHash[:]
	if op == tlog.OpDecrypt {
		discriminator = e.Nonce
	}
	hdrH = hdrHash(op, e.TenantID, e.PolicyID, discriminator)

	entry := tlog.NewEntry(e.TenantID, e.PolicyID, op, nowMs, hdrH, sigHash, KID(e.TenantID, "sig", e.Algs.Sig), rc)
	idx, err := o.Log.Append(entry)
	leafHash := tlog.LeafHash(tlog.CanonicalBytes(entry))
	_ = idx

	receipt := &Receipt{TlogHash: hexString(leafHash)}
	if cp, ok := o.Log.LatestCheckpoint(); ok {
		receipt.Checkpoint = &CheckpointView{TreeSize: cp.TreeSize, RootHash: hexString(cp.RootHash[:]), Ts: cp.Ts}
	}
	if err != nil {
		metrics.TlogAppends.WithLabelValues("error").Inc()
	} else {
		metrics.TlogAppends.WithLabelValues("ok").Inc()
		metrics.TlogTreeSize.Set(float64(o.Log.Size()))
	}
	return rc, receipt
}

func hdrHash(op tlog.Op, tenantID, policyID, discriminator []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(op))
	h.Write(tenantID)
	h.Write(policyID)
	h.Write(discriminator)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func responseCodeFromNonce(nonce []byte) uint16 {
	if len(nonce) == 0 {
		return 0
	}
	return uint16(nonce[0])
}

func tenantPrefix(tenantID []byte) string {
	if len(tenantID) > 4 {
		return fmt.Sprintf("%x", tenantID[:4])
	}
	return fmt.Sprintf("%x", tenantID)
}

func policyPrefix(policyID []byte) string {
	if len(policyID) > 8 {
		return fmt.Sprintf("%x", policyID[:8])
	}
	return fmt.Sprintf("%x", policyID)
}

// KID builds the gateway's key-identifier format: btk/ten-<tenant_hex8>/
// server-{sig|kem}/<algname>/v1.
func KID(tenantID []byte, purpose, algName string) string {
	return fmt.Sprintf("btk/ten-%s/server-%s/%s/v1", tenantPrefix(tenantID), purpose, algName)
}

func hexString(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}
