// SPDX-License-Identifier: LGPL-3.0-or-later

package sig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	pk, sk, err := GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("tenant123|policy456|/payments/transfer")
	signature := Sign(sk, msg)

	assert.True(t, Verify(pk, msg, signature))
}

func TestVerifyFailsOnTamperedMessage(t *testing.T) {
	pk, sk, err := GenerateKeyPair()
	require.NoError(t, err)

	signature := Sign(sk, []byte("original"))
	assert.False(t, Verify(pk, []byte("tampered"), signature))
}

func TestVerifyFailsOnMalformedSignature(t *testing.T) {
	pk, sk, err := GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("hello")
	_ = Sign(sk, msg)

	badSig := make([]byte, 3293)
	assert.False(t, Verify(pk, msg, badSig))
}

func TestPublicKeyMarshalRoundTrip(t *testing.T) {
	pk, _, err := GenerateKeyPair()
	require.NoError(t, err)

	raw, err := pk.Marshal()
	require.NoError(t, err)

	pk2, err := ParsePublicKey(raw)
	require.NoError(t, err)

	raw2, err := pk2.Marshal()
	require.NoError(t, err)
	assert.Equal(t, raw, raw2)
}
