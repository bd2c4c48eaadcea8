// SPDX-License-Identifier: LGPL-3.0-or-later

package policy

import (
	"encoding/json"
	"sync"

	"github.com/ib823/benteng-sdk/crypto/sig"
	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// SignedPolicyBundle is a signed, versioned set of policies distributed to
// the gateway's control plane.
type SignedPolicyBundle struct {
	Policies  []Policy `json:"policies"`
	Version   uint64   `json:"version"`
	CreatedAt uint64   `json:"created_at"` // epoch ms
	NotAfter  uint64   `json:"not_after"`  // epoch ms
	SignerKID string   `json:"signer_kid"`
	Signature []byte   `json:"signature"`
}

// serializeForSigning marshals the bundle to canonical JSON with the
// signature field cleared, matching the source this bundle format is
// grounded on.
func serializeForSigning(b SignedPolicyBundle) ([]byte, error) {
	b.Signature = nil
	return json.Marshal(b)
}

// Sign computes and sets b.Signature using signingKey.
func Sign(b SignedPolicyBundle, signingKey *sig.PrivateKey) (SignedPolicyBundle, error) {
	msg, err := serializeForSigning(b)
	if err != nil {
		return b, gwerr.Wrap(gwerr.InternalError, "policy bundle serialization failed", err)
	}
	b.Signature = sig.Sign(signingKey, msg)
	return b, nil
}

// VerifySignature checks the bundle's signature under publicKey.
func VerifySignature(b SignedPolicyBundle, publicKey *sig.PublicKey) bool {
	msg, err := serializeForSigning(b)
	if err != nil {
		return false
	}
	return sig.Verify(publicKey, msg, b.Signature)
}

// IsValid reports whether the bundle's validity window contains nowMs.
func (b SignedPolicyBundle) IsValid(nowMs uint64) bool {
	return nowMs >= b.CreatedAt && nowMs < b.NotAfter
}

// Distributor implements the two-slot current/staged activation model:
// lookups always read current; a control-plane push preloads staged
// without perturbing live traffic until Activate is called.
type Distributor struct {
	mu      sync.RWMutex
	current *SignedPolicyBundle
	staged  *SignedPolicyBundle
}

func NewDistributor() *Distributor { return &Distributor{} }

// Stage validates and stages a new bundle. It is accepted into staged iff
// its signature verifies, its version is strictly greater than current's,
// and it is not already expired.
func (d *Distributor) Stage(b SignedPolicyBundle, signerPK *sig.PublicKey, nowMs uint64) error {
	if !VerifySignature(b, signerPK) {
		return gwerr.New(gwerr.InvalidSignature, "policy bundle signature verification failed")
	}
	if nowMs >= b.NotAfter {
		return gwerr.New(gwerr.PolicyMismatch, "policy bundle already expired")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil && b.Version <= d.current.Version {
		return gwerr.New(gwerr.PolicyMismatch, "policy bundle version must be strictly greater than current")
	}
	staged := b
	d.staged = &staged
	return nil
}

// Activate atomically moves staged to current. A no-op if nothing is
// staged.
func (d *Distributor) Activate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.staged == nil {
		return
	}
	d.current = d.staged
	d.staged = nil
}

// CurrentVersion returns the active bundle's version, or 0 if none.
func (d *Distributor) CurrentVersion() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.current == nil {
		return 0
	}
	return d.current.Version
}

// Lookup returns the stored policy for key from the current bundle, the
// conservative Default() if none matches, and whether a match was found.
func (d *Distributor) Lookup(tenantID, policyID []byte, path string) (Policy, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.current == nil {
		return Default(), false
	}
	want := KeyOf(tenantID, policyID, path)
	for _, p := range d.current.Policies {
		if KeyOf(p.TenantID, p.PolicyID, p.Path) == want {
			return p, true
		}
	}
	return Default(), false
}

// Snapshot returns the current bundle's policies, for the audit-pack
// exporter's policy_snapshots.json. Returns nil if no bundle is active.
func (d *Distributor) Snapshot() []Policy {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.current == nil {
		return nil
	}
	out := make([]Policy, len(d.current.Policies))
	copy(out, d.current.Policies)
	return out
}
