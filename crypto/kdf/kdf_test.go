// SPDX-License-Identifier: LGPL-3.0-or-later

package kdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIsDeterministic(t *testing.T) {
	ikm := []byte("shared-secret-material")
	salt := []byte("tenant123policy456")
	info := []byte(DomainAead + "tenant123policy456/payments/transfer")

	a, err := Derive(ikm, salt, info, 32)
	require.NoError(t, err)
	b, err := Derive(ikm, salt, info, 32)
	require.NoError(t, err)

	assert.Equal(t, a.Bytes(), b.Bytes())
	assert.Len(t, a.Bytes(), 32)
}

func TestDeriveDiffersByInfo(t *testing.T) {
	ikm := []byte("shared-secret-material")
	salt := []byte("salt")

	a, err := Derive(ikm, salt, []byte(DomainHsmAK1), 32)
	require.NoError(t, err)
	b, err := Derive(ikm, salt, []byte(DomainHsmBK2), 32)
	require.NoError(t, err)

	assert.NotEqual(t, a.Bytes(), b.Bytes())
}
