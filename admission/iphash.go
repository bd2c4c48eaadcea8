// SPDX-License-Identifier: LGPL-3.0-or-later

package admission

import (
	"crypto/rand"
	"crypto/sha256"
	"net"
	"sync"
	"time"
)

const defaultSaltRotation = 24 * time.Hour

// IPHasher produces short-term-correlatable, non-reversible hashes of
// client IP /24 (or /64 for IPv6) prefixes. The salt rotates periodically;
// no transition window is needed since the hashes are never compared
// across a rotation boundary for anything durable.
type IPHasher struct {
	mu         sync.Mutex
	salt       [32]byte
	expiresAt  time.Time
	rotateEvery time.Duration
}

func NewIPHasher(rotateEvery time.Duration, now time.Time) (*IPHasher, error) {
	if rotateEvery <= 0 {
		rotateEvery = defaultSaltRotation
	}
	h := &IPHasher{rotateEvery: rotateEvery}
	if err := h.rotate(now); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *IPHasher) rotate(now time.Time) error {
	var s [32]byte
	if _, err := rand.Read(s[:]); err != nil {
		return err
	}
	h.salt = s
	h.expiresAt = now.Add(h.rotateEvery)
	return nil
}

// MaybeRotate replaces the salt atomically if it has expired as of now.
// Intended to be called from a periodic wake (default hourly per spec);
// a no-op when the current salt is still valid.
func (h *IPHasher) MaybeRotate(now time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if now.Before(h.expiresAt) {
		return nil
	}
	return h.rotate(now)
}

// Hash returns SHA256(salt ‖ prefix) for addr's network prefix: the
// leading 3 octets for IPv4, the leading 8 bytes for IPv6.
func (h *IPHasher) Hash(addr net.IP) [32]byte {
	prefix := addressPrefix(addr)

	h.mu.Lock()
	salt := h.salt
	h.mu.Unlock()

	buf := make([]byte, 0, len(salt)+len(prefix))
	buf = append(buf, salt[:]...)
	buf = append(buf, prefix...)
	return sha256.Sum256(buf)
}

func addressPrefix(addr net.IP) []byte {
	if v4 := addr.To4(); v4 != nil {
		return v4[:3]
	}
	v6 := addr.To16()
	if v6 == nil {
		return addr
	}
	return v6[:8]
}
