// SPDX-License-Identifier: LGPL-3.0-or-later

package aead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key32() []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func nonce12() []byte { return make([]byte, 12) }

func TestAES256GCMRoundTrip(t *testing.T) {
	k, n := key32(), nonce12()
	aad := []byte("aad-bytes")
	pt := []byte("hello world")

	ct, err := Seal(AES256GCM, k, n, pt, aad)
	require.NoError(t, err)

	got, err := Open(AES256GCM, k, n, ct, aad)
	require.NoError(t, err)
	assert.Equal(t, pt, got)
}

func TestChaCha20Poly1305RoundTrip(t *testing.T) {
	k, n := key32(), nonce12()
	aad := []byte("aad-bytes")
	pt := []byte("hello world")

	ct, err := Seal(ChaCha20Poly1305, k, n, pt, aad)
	require.NoError(t, err)

	got, err := Open(ChaCha20Poly1305, k, n, ct, aad)
	require.NoError(t, err)
	assert.Equal(t, pt, got)
}

func TestOpenFailsOnTamperedCiphertext(t *testing.T) {
	k, n := key32(), nonce12()
	ct, err := Seal(AES256GCM, k, n, []byte("hello"), []byte("aad"))
	require.NoError(t, err)

	ct[0] ^= 0xFF
	_, err = Open(AES256GCM, k, n, ct, []byte("aad"))
	require.Error(t, err)
}

func TestOpenFailsOnTamperedAAD(t *testing.T) {
	k, n := key32(), nonce12()
	ct, err := Seal(AES256GCM, k, n, []byte("hello"), []byte("aad"))
	require.NoError(t, err)

	_, err = Open(AES256GCM, k, n, ct, []byte("different-aad"))
	require.Error(t, err)
}

func TestUnsupportedAlgorithmRejected(t *testing.T) {
	_, err := Seal("AES-128-CBC", key32(), nonce12(), []byte("x"), nil)
	require.Error(t, err)
}
