// SPDX-License-Identifier: LGPL-3.0-or-later

package xecdh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedSecretAgrees(t *testing.T) {
	alice, err := Generate()
	require.NoError(t, err)
	bob, err := Generate()
	require.NoError(t, err)

	ssA, err := SharedSecret(alice.Private, bob.Public)
	require.NoError(t, err)
	ssB, err := SharedSecret(bob.Private, alice.Public)
	require.NoError(t, err)

	assert.Equal(t, ssA.Bytes(), ssB.Bytes())
	assert.Len(t, ssA.Bytes(), 32)
}

func TestSharedSecretIsNotXOR(t *testing.T) {
	alice, err := Generate()
	require.NoError(t, err)
	bob, err := Generate()
	require.NoError(t, err)

	ss, err := SharedSecret(alice.Private, bob.Public)
	require.NoError(t, err)

	xored := make([]byte, 32)
	for i := range xored {
		xored[i] = alice.Public[i] ^ bob.Public[i]
	}
	assert.NotEqual(t, xored, ss.Bytes())
}

func TestDifferentPeersDifferentSecrets(t *testing.T) {
	alice, err := Generate()
	require.NoError(t, err)
	bob, err := Generate()
	require.NoError(t, err)
	carol, err := Generate()
	require.NoError(t, err)

	ssBob, err := SharedSecret(alice.Private, bob.Public)
	require.NoError(t, err)
	ssCarol, err := SharedSecret(alice.Private, carol.Public)
	require.NoError(t, err)

	assert.NotEqual(t, ssBob.Bytes(), ssCarol.Bytes())
}
