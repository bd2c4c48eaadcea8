// SPDX-License-Identifier: LGPL-3.0-or-later

// Package sig wraps the gateway's post-quantum signature scheme,
// ML-DSA-65, via circl's generic signature scheme registry. Signatures
// are detached; verification is total and returns false on malformed
// input rather than raising.
package sig

import (
	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/schemes"

	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// SchemeName is the only signature algorithm name this gateway speaks.
const SchemeName = "ML-DSA-65"

func scheme() sign.Scheme {
	s := schemes.ByName(SchemeName)
	if s == nil {
		panic("sig: scheme " + SchemeName + " not registered in circl build")
	}
	return s
}

type PublicKey struct{ pk sign.PublicKey }
type PrivateKey struct{ sk sign.PrivateKey }

// GenerateKeyPair generates a fresh ML-DSA-65 key pair.
func GenerateKeyPair() (*PublicKey, *PrivateKey, error) {
	pk, sk, err := scheme().GenerateKey()
	if err != nil {
		return nil, nil, gwerr.Wrap(gwerr.InternalError, "signature keypair generation failed", err)
	}
	return &PublicKey{pk: pk}, &PrivateKey{sk: sk}, nil
}

func (p *PublicKey) Marshal() ([]byte, error) { return p.pk.MarshalBinary() }

func ParsePublicKey(b []byte) (*PublicKey, error) {
	if len(b) == 0 {
		// A length-zero public key is a programmer error, not a
		// malformed-input case to be tolerated at runtime.
		panic("sig: empty public key")
	}
	pk, err := scheme().UnmarshalBinaryPublicKey(b)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.InternalError, "malformed signature public key", err)
	}
	return &PublicKey{pk: pk}, nil
}

func (s *PrivateKey) Marshal() ([]byte, error) { return s.sk.MarshalBinary() }

func ParsePrivateKey(b []byte) (*PrivateKey, error) {
	sk, err := scheme().UnmarshalBinaryPrivateKey(b)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.InternalError, "malformed signature private key", err)
	}
	return &PrivateKey{sk: sk}, nil
}

// Sign produces a detached signature over message.
func Sign(sk *PrivateKey, message []byte) []byte {
	return scheme().Sign(sk.sk, message, nil)
}

// Verify checks a detached signature. It never panics on malformed sig or
// message; it returns false.
func Verify(pk *PublicKey, message, signature []byte) bool {
	return scheme().Verify(pk.pk, message, signature, nil)
}

// SignatureSize returns the scheme's fixed signature length.
func SignatureSize() int { return scheme().SignatureSize() }
