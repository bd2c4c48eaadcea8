// SPDX-License-Identifier: LGPL-3.0-or-later

package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib823/benteng-sdk/tlog"
)

func buildTestLog(t *testing.T, n int) *tlog.Log {
	t.Helper()
	l := tlog.New()
	for i := 0; i < n; i++ {
		var hdrH, sigH [32]byte
		hdrH[0] = byte(i)
		_, err := l.Append(tlog.NewEntry([]byte("tenant"), []byte("policy"), tlog.OpVerify, uint64(i), hdrH, sigH, "kid", 200))
		require.NoError(t, err)
	}
	return l
}

func TestSampleInclusionProofsWithinBounds(t *testing.T) {
	l := buildTestLog(t, 20)
	records, err := SampleInclusionProofs(l, 20)
	require.NoError(t, err)
	assert.Len(t, records, 20)

	for _, r := range records {
		assert.Less(t, r.LeafIndex, uint64(20))
	}
}

func TestSampleInclusionProofsCapsAt256(t *testing.T) {
	l := buildTestLog(t, 300)
	records, err := SampleInclusionProofs(l, 300)
	require.NoError(t, err)
	assert.Len(t, records, maxInclusionProofSample)
}

func TestCollectCheckpointsConvertsAllFields(t *testing.T) {
	var root [32]byte
	root[0] = 0xAB
	cps := []tlog.Checkpoint{{TreeSize: 5, RootHash: root, Ts: 999, Ver: 1, Signature: []byte{1, 2, 3}}}
	out := CollectCheckpoints(cps)
	require.Len(t, out, 1)
	assert.Equal(t, uint64(5), out[0].TreeSize)
	assert.Equal(t, uint64(999), out[0].Ts)
}
