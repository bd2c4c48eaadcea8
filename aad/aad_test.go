// SPDX-License-Identifier: LGPL-3.0-or-later

package aad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sample() AAD {
	return AAD{
		Ver:          1,
		TenantID:     []byte("tenant123"),
		PolicyID:     []byte("policy456"),
		Path:         "/payments/transfer",
		TsEpochMs:    1700000000000,
		RequiredAlgs: "ML-KEM-768+ML-DSA-65",
		Hybrid:       true,
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a := sample()
	assert.Equal(t, Build(a), Build(a))
}

func TestHashChangesWithAnyField(t *testing.T) {
	base := Hash(sample())

	a := sample()
	a.TenantID = []byte("tenant999")
	assert.NotEqual(t, base, Hash(a))

	b := sample()
	b.Hybrid = false
	assert.NotEqual(t, base, Hash(b))

	c := sample()
	c.TsEpochMs++
	assert.NotEqual(t, base, Hash(c))

	d := sample()
	d.Path = "/payments/other"
	assert.NotEqual(t, base, Hash(d))
}

func TestDeviceAttestHashOptional(t *testing.T) {
	withHash := sample()
	withHash.DeviceAttestHash = make([]byte, 32)
	withHash.DeviceAttestHash[0] = 0xAB

	assert.NotEqual(t, Build(sample()), Build(withHash))
}
