// SPDX-License-Identifier: LGPL-3.0-or-later

package gateway

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ib823/benteng-sdk/crypto/sig"
	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// FileKeyResolver implements ClientKeyResolver by loading marshalled
// sig.PublicKey bytes from a directory, one file per tenant/policy pair,
// named <tenant_hex>__<policy_hex>.pub, where each part is the full hex
// encoding of the id (not the four-byte prefixes kms.HsmKID uses).
type FileKeyResolver struct {
	mu   sync.RWMutex
	keys map[string]*sig.PublicKey
}

// NewFileKeyResolver loads every *.pub file in dir eagerly; a resolver
// with no registered keys is valid and simply rejects every lookup.
func NewFileKeyResolver(dir string) (*FileKeyResolver, error) {
	r := &FileKeyResolver{keys: make(map[string]*sig.PublicKey)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read client key directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pub" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read client key file %s: %w", entry.Name(), err)
		}
		pk, err := sig.ParsePublicKey(raw)
		if err != nil {
			return nil, fmt.Errorf("parse client key file %s: %w", entry.Name(), err)
		}
		key := entry.Name()[:len(entry.Name())-len(".pub")]
		r.keys[key] = pk
	}
	return r, nil
}

// Register adds or replaces a key in-process, alongside the keys loaded
// from the directory; nothing is written to disk.
func (r *FileKeyResolver) Register(tenantID, policyID []byte, pk *sig.PublicKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[clientKeyName(tenantID, policyID)] = pk
}

func (r *FileKeyResolver) ResolveSigKey(tenantID, policyID []byte) (*sig.PublicKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pk, ok := r.keys[clientKeyName(tenantID, policyID)]
	if !ok {
		return nil, gwerr.New(gwerr.InvalidSignature, "no client signature key registered for tenant/policy")
	}
	return pk, nil
}

func clientKeyName(tenantID, policyID []byte) string {
	return hex.EncodeToString(tenantID) + "__" + hex.EncodeToString(policyID)
}
