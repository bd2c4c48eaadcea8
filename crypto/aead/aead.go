// SPDX-License-Identifier: LGPL-3.0-or-later

// Package aead implements the gateway's two authenticated-encryption
// algorithms: AES-256-GCM (primary) and ChaCha20-Poly1305 (selectable
// fallback). Nonces are caller-supplied 12-byte values generated fresh by
// the envelope layer; reuse is a contract violation and is the caller's
// responsibility.
package aead

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// Algorithm names as they appear in the envelope's AlgorithmSet.
const (
	AES256GCM         = "AES-256-GCM"
	ChaCha20Poly1305  = "ChaCha20-Poly1305"
)

// Seal encrypts plaintext under key, nonce, and aad using the named
// algorithm, returning ciphertext‖tag.
func Seal(algorithm string, key, nonce, plaintext, aad []byte) ([]byte, error) {
	aead, err := newAEAD(algorithm, key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open decrypts ciphertext‖tag under key, nonce, and aad.
//
// Any failure — wrong key, tampered ciphertext, tampered aad, truncated
// input — collapses to a single AeadFailure kind; the design forbids
// distinguishing these reasons externally.
func Open(algorithm string, key, nonce, ciphertext, aad []byte) ([]byte, error) {
	aead, err := newAEAD(algorithm, key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.AeadFailure, "aead open failed", err)
	}
	return pt, nil
}

func newAEAD(algorithm string, key []byte) (cipher.AEAD, error) {
	switch algorithm {
	case AES256GCM:
		if len(key) != 32 {
			return nil, gwerr.New(gwerr.InternalError, "AES-256-GCM requires a 32-byte key")
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, gwerr.Wrap(gwerr.InternalError, "aes cipher init failed", err)
		}
		a, err := cipher.NewGCM(block)
		if err != nil {
			return nil, gwerr.Wrap(gwerr.InternalError, "gcm init failed", err)
		}
		return a, nil
	case ChaCha20Poly1305:
		a, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, gwerr.Wrap(gwerr.InternalError, "chacha20poly1305 init failed", err)
		}
		return a, nil
	default:
		return nil, gwerr.New(gwerr.PolicyMismatch, "unsupported aead algorithm: "+algorithm)
	}
}
