// SPDX-License-Identifier: LGPL-3.0-or-later

package kms

import (
	"sync"
	"time"

	"github.com/ib823/benteng-sdk/crypto/scrub"
)

type cacheEntry struct {
	dek       *scrub.Bytes
	expiresAt time.Time
}

// derivationCache is the KMS's bounded DEK cache, keyed on the full
// cache_key = kem_ct‖policy_id‖tenant_id‖path. It is a side channel and is
// never persisted.
type derivationCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	maxEntries int
	ttl        time.Duration
}

func newDerivationCache(maxEntries int, ttl time.Duration) *derivationCache {
	return &derivationCache{entries: make(map[string]cacheEntry), maxEntries: maxEntries, ttl: ttl}
}

func (c *derivationCache) get(key string, now time.Time) (*scrub.Bytes, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || now.After(e.expiresAt) {
		return nil, false
	}
	return e.dek, true
}

// insert stores dek under key, evicting expired entries first and then, if
// still at capacity, one arbitrary remaining entry — matching the
// reference source's eviction policy exactly.
func (c *derivationCache) insert(key string, dek *scrub.Bytes, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
	if len(c.entries) >= c.maxEntries {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = cacheEntry{dek: dek, expiresAt: now.Add(c.ttl)}
}

func (c *derivationCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
