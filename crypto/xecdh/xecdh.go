// SPDX-License-Identifier: LGPL-3.0-or-later

// Package xecdh implements the hybrid mode's classical key agreement: real
// X25519 scalar multiplication via the standard library's crypto/ecdh.
//
// The reference source this gateway was distilled from stubs its shared
// secret as a bitwise XOR of the two public keys. That is not
// Diffie-Hellman and provides no discrete-log hardness; this package
// replaces it with a real ECDH computation.
package xecdh

import (
	"crypto/ecdh"
	"crypto/rand"

	"github.com/ib823/benteng-sdk/crypto/scrub"
)

// KeyPair is an ephemeral X25519 key pair.
type KeyPair struct {
	Private *ecdh.PrivateKey
	Public  []byte // 32-byte encoded public key
}

// Generate creates a fresh ephemeral X25519 key pair.
func Generate() (*KeyPair, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyPair{Private: priv, Public: priv.PublicKey().Bytes()}, nil
}

// SharedSecret performs the real X25519 Diffie-Hellman computation between
// the local private key and a peer's 32-byte encoded public key.
func SharedSecret(priv *ecdh.PrivateKey, peerPublic []byte) (*scrub.Bytes, error) {
	peer, err := ecdh.X25519().NewPublicKey(peerPublic)
	if err != nil {
		return nil, err
	}
	ss, err := priv.ECDH(peer)
	if err != nil {
		return nil, err
	}
	return scrub.New(ss), nil
}
