// SPDX-License-Identifier: LGPL-3.0-or-later

package kms

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/ib823/benteng-sdk/crypto/kem"
	"github.com/ib823/benteng-sdk/crypto/scrub"
	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// HsmAGate is the out-of-scope HSM-A RPC surface: given a kid naming a
// configured KEM key and a ciphertext, it decapsulates and returns the
// raw shared secret. The wire transport to a real HSM is deliberately not
// specified here; this package only depends on the interface.
type HsmAGate interface {
	Decapsulate(ctx context.Context, kid string, kemCt []byte) (*scrub.Bytes, error)
}

// InProcessHsmA is a reference HsmAGate backed by an in-memory key table.
// It stands in for the opaque RPC surface in tests and local deployments.
type InProcessHsmA struct {
	mu   sync.RWMutex
	keys map[string]*kem.PrivateKey
}

func NewInProcessHsmA() *InProcessHsmA {
	return &InProcessHsmA{keys: make(map[string]*kem.PrivateKey)}
}

// RegisterKey associates kid with a KEM private key.
func (h *InProcessHsmA) RegisterKey(kid string, sk *kem.PrivateKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys[kid] = sk
}

func (h *InProcessHsmA) Decapsulate(ctx context.Context, kid string, kemCt []byte) (*scrub.Bytes, error) {
	h.mu.RLock()
	sk, ok := h.keys[kid]
	h.mu.RUnlock()
	if !ok {
		return nil, gwerr.New(gwerr.KmsError, "KEM key not found in HSM-A")
	}
	return kem.Decapsulate(sk, kemCt)
}

// HsmKID derives the internal key-lookup identifier HSM-A uses: the first
// four bytes of tenant_id and policy_id, hex-encoded and hyphenated. This
// aliases short tenant/policy identifiers that share a 4-byte prefix — a
// known, deliberately unresolved limitation (see the design notes on KID
// derivation); production deployments should use full-length identifiers
// or collision-resistant hashes instead.
func HsmKID(tenantID, policyID []byte) string {
	return hex.EncodeToString(prefix4(tenantID)) + "-" + hex.EncodeToString(prefix4(policyID))
}

func prefix4(b []byte) []byte {
	if len(b) >= 4 {
		return b[:4]
	}
	out := make([]byte, 4)
	copy(out, b)
	return out
}
