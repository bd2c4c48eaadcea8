// SPDX-License-Identifier: LGPL-3.0-or-later

package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	b := NewBuilder().
		Uint(1, 1).
		Bytes(3, []byte("tenant123")).
		String(5, "/payments/transfer").
		Bool(9, true)
	buf := b.Build()

	r := NewReader(buf)

	f1, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, f1.Tag)
	assert.Equal(t, uint64(1), f1.U)

	f2, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("tenant123"), f2.B)

	f3, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/payments/transfer", f3.S)

	f4, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, f4.Bool)

	_, ok, err = r.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeterministic(t *testing.T) {
	build := func() []byte {
		return NewBuilder().Uint(1, 1).Bytes(2, []byte("x")).Build()
	}
	assert.Equal(t, build(), build())
}

func TestSubMessage(t *testing.T) {
	inner := NewBuilder().Uint(1, 7).Build()
	outer := NewBuilder().Sub(2, inner).Build()

	r := NewReader(outer)
	f, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, inner, f.B)
}

func TestTruncatedInputErrors(t *testing.T) {
	r := NewReader([]byte{5})
	_, _, err := r.Next()
	assert.Error(t, err)
}
