// SPDX-License-Identifier: LGPL-3.0-or-later

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib823/benteng-sdk/crypto/sig"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	pk, sk, err := sig.GenerateKeyPair()
	require.NoError(t, err)

	b := SignedPolicyBundle{
		Policies:  []Policy{samplePolicy()},
		Version:   1,
		CreatedAt: 1000,
		NotAfter:  2000,
		SignerKID: "btk/ten-aabbccdd/server-sig/ML-DSA-65/v1",
	}
	signed, err := Sign(b, sk)
	require.NoError(t, err)

	assert.True(t, VerifySignature(signed, pk))
}

func TestVerifyFailsOnTamperedBundle(t *testing.T) {
	pk, sk, err := sig.GenerateKeyPair()
	require.NoError(t, err)

	b := SignedPolicyBundle{Version: 1, CreatedAt: 1000, NotAfter: 2000}
	signed, err := Sign(b, sk)
	require.NoError(t, err)

	signed.Version = 2
	assert.False(t, VerifySignature(signed, pk))
}

func TestIsValid(t *testing.T) {
	b := SignedPolicyBundle{CreatedAt: 1000, NotAfter: 2000}
	assert.True(t, b.IsValid(1500))
	assert.False(t, b.IsValid(999))
	assert.False(t, b.IsValid(2000))
}

func TestDistributorStageActivateLookup(t *testing.T) {
	pk, sk, err := sig.GenerateKeyPair()
	require.NoError(t, err)

	d := NewDistributor()
	assert.Equal(t, uint64(0), d.CurrentVersion())

	b := SignedPolicyBundle{
		Policies:  []Policy{samplePolicy()},
		Version:   1,
		CreatedAt: 0,
		NotAfter:  1_800_000_000_000,
	}
	signed, err := Sign(b, sk)
	require.NoError(t, err)

	require.NoError(t, d.Stage(signed, pk, 1_700_000_000_000))
	// Staging must not perturb lookups against the still-unset current.
	_, found := d.Lookup([]byte("tenant123"), []byte("policy456"), "/payments/transfer")
	assert.False(t, found)

	d.Activate()
	assert.Equal(t, uint64(1), d.CurrentVersion())

	p, found := d.Lookup([]byte("tenant123"), []byte("policy456"), "/payments/transfer")
	require.True(t, found)
	assert.Equal(t, uint64(1), p.Version)
}

func TestDistributorRejectsBadSignature(t *testing.T) {
	pk, sk, err := sig.GenerateKeyPair()
	require.NoError(t, err)
	other, _, err := sig.GenerateKeyPair()
	require.NoError(t, err)
	_ = other

	d := NewDistributor()
	b := SignedPolicyBundle{Version: 1, CreatedAt: 0, NotAfter: 1_800_000_000_000}
	signed, err := Sign(b, sk)
	require.NoError(t, err)
	signed.Policies = append(signed.Policies, samplePolicy()) // tamper after signing

	assert.Error(t, d.Stage(signed, pk, 1_700_000_000_000))
}

func TestDistributorRejectsNonIncreasingVersion(t *testing.T) {
	pk, sk, err := sig.GenerateKeyPair()
	require.NoError(t, err)

	d := NewDistributor()
	b1 := SignedPolicyBundle{Version: 2, CreatedAt: 0, NotAfter: 1_800_000_000_000}
	signed1, err := Sign(b1, sk)
	require.NoError(t, err)
	require.NoError(t, d.Stage(signed1, pk, 1_700_000_000_000))
	d.Activate()

	b2 := SignedPolicyBundle{Version: 2, CreatedAt: 0, NotAfter: 1_800_000_000_000}
	signed2, err := Sign(b2, sk)
	require.NoError(t, err)
	assert.Error(t, d.Stage(signed2, pk, 1_700_000_000_000))
}

func TestActivateNoOpWithNoStaged(t *testing.T) {
	d := NewDistributor()
	assert.NotPanics(t, func() { d.Activate() })
	assert.Equal(t, uint64(0), d.CurrentVersion())
}
