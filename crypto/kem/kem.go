// SPDX-License-Identifier: LGPL-3.0-or-later

// Package kem wraps the gateway's post-quantum key encapsulation mechanism,
// ML-KEM-768, via circl's generic KEM scheme registry. Failures are
// collapsed to a single opaque error: the design explicitly forbids
// distinguishing bad-key from bad-ciphertext at this boundary, since doing
// so would be an oracle for an attacker probing either half.
package kem

import (
	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/schemes"

	"github.com/ib823/benteng-sdk/crypto/scrub"
	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// SchemeName is the only KEM algorithm name this gateway speaks.
const SchemeName = "ML-KEM-768"

func scheme() kem.Scheme {
	s := schemes.ByName(SchemeName)
	if s == nil {
		panic("kem: scheme " + SchemeName + " not registered in circl build")
	}
	return s
}

// PublicKey and PrivateKey are opaque encoded key material.
type PublicKey struct{ pk kem.PublicKey }
type PrivateKey struct{ sk kem.PrivateKey }

// GenerateKeyPair generates a fresh ML-KEM-768 key pair.
func GenerateKeyPair() (*PublicKey, *PrivateKey, error) {
	pk, sk, err := scheme().GenerateKeyPair()
	if err != nil {
		return nil, nil, gwerr.Wrap(gwerr.InternalError, "kem keypair generation failed", err)
	}
	return &PublicKey{pk: pk}, &PrivateKey{sk: sk}, nil
}

// Marshal encodes a public key to bytes for transport or storage.
func (p *PublicKey) Marshal() ([]byte, error) { return p.pk.MarshalBinary() }

// ParsePublicKey decodes a public key previously produced by Marshal.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	pk, err := scheme().UnmarshalBinaryPublicKey(b)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.InternalError, "malformed kem public key", err)
	}
	return &PublicKey{pk: pk}, nil
}

// Marshal encodes a private key for storage at rest (e.g. an HSM key table).
func (s *PrivateKey) Marshal() ([]byte, error) { return s.sk.MarshalBinary() }

// ParsePrivateKey decodes a private key previously produced by Marshal.
func ParsePrivateKey(b []byte) (*PrivateKey, error) {
	sk, err := scheme().UnmarshalBinaryPrivateKey(b)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.InternalError, "malformed kem private key", err)
	}
	return &PrivateKey{sk: sk}, nil
}

// Encapsulate generates a ciphertext and shared secret bound to pk.
func Encapsulate(pk *PublicKey) (ciphertext []byte, sharedSecret *scrub.Bytes, err error) {
	ct, ss, err := scheme().Encapsulate(pk.pk)
	if err != nil {
		return nil, nil, gwerr.Wrap(gwerr.InternalError, "kem encapsulate failed", err)
	}
	return ct, scrub.New(ss), nil
}

// Decapsulate recovers the shared secret from a ciphertext under sk.
//
// Any failure — malformed ciphertext, wrong key — collapses to the same
// InternalError kind. Distinguishing them externally would leak which half
// of a request was invalid.
func Decapsulate(sk *PrivateKey, ciphertext []byte) (*scrub.Bytes, error) {
	ss, err := scheme().Decapsulate(sk.sk, ciphertext)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.InternalError, "kem decapsulate failed", err)
	}
	return scrub.New(ss), nil
}

// CiphertextSize returns the scheme's fixed ciphertext length.
func CiphertextSize() int { return scheme().CiphertextSize() }

// SharedKeySize returns the scheme's fixed shared-secret length.
func SharedKeySize() int { return scheme().SharedKeySize() }
