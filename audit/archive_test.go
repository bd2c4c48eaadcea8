// SPDX-License-Identifier: LGPL-3.0-or-later

package audit

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSources() Sources {
	return Sources{
		SBOM: SBOM{
			BomFormat:   "CycloneDX",
			SpecVersion: "1.5",
			Version:     1,
			Components: []SBOMComponent{
				{Type: "library", Name: "github.com/cloudflare/circl", Version: "v1.6.1"},
			},
		},
		Checkpoints: []CheckpointRecord{
			{TreeSize: 7, RootHash: "aa", Ts: 1000, Ver: 1, Signature: "bb"},
		},
		WitnessSignatures: []WitnessRecord{
			{WitnessID: "w1", TreeSize: 7, RootHash: "aa", Timestamp: 1000, Signature: "cc"},
		},
		InclusionProofs: []InclusionProofRecord{
			{LeafIndex: 3, TreeSize: 7, AuditPath: []string{"dd", "ee"}},
		},
		PolicySnapshots: []PolicyRecord{
			{TenantID: "t1", PolicyID: "p1", Path: "/x", Version: 2},
		},
		KeyCatalog: []KeyCatalogEntry{
			{KID: "btk/ten-1/server-sig/ML-DSA-65/v1", Algorithm: "ML-DSA-65", Purpose: "server-sig"},
		},
		GeneratedAtEpochMs: 123456,
		Version:            "1.0.0",
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	s := sampleSources()
	a, err := Build(s)
	require.NoError(t, err)
	b, err := Build(s)
	require.NoError(t, err)
	assert.Equal(t, a, b, "two exports over identical Sources must be byte-identical")
}

func TestBuildContainsAllCanonicalFiles(t *testing.T) {
	s := sampleSources()
	data, err := Build(s)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
		assert.Equal(t, zip.Deflate, f.Method)
	}

	for _, want := range []string{
		"sbom.cyclonedx.json",
		"checkpoints.json",
		"witness_signatures.json",
		"inclusion_proofs.json",
		"policy_snapshots.json",
		"key_catalog.json",
		"METADATA.json",
	} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestMetadataChecksumsMatchFileBytes(t *testing.T) {
	s := sampleSources()
	data, err := Build(s)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	byName := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		buf := new(bytes.Buffer)
		_, err = buf.ReadFrom(rc)
		require.NoError(t, err)
		rc.Close()
		byName[f.Name] = buf.Bytes()
	}

	var meta metadata
	require.NoError(t, json.Unmarshal(byName["METADATA.json"], &meta))
	assert.Equal(t, uint64(123456), meta.GeneratedAt)

	for _, c := range meta.Checksums {
		sum := sha256.Sum256(byName[c.Filename])
		assert.Equal(t, hex.EncodeToString(sum[:]), c.SHA256)
	}
}
