// SPDX-License-Identifier: LGPL-3.0-or-later

// Package audit builds the gateway's sealed audit pack: a deterministic
// ZIP archive binding an SBOM, the transparency log's checkpoints and
// witness cosignatures, a sample of inclusion proofs, policy snapshots,
// and the key catalog, closed out with a checksum manifest.
package audit

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// Sources gathers everything the exporter reads from; each field is a
// snapshot already owned by its component (e.g. policy.Distributor's
// Snapshot(), tlog.Log's Checkpoints()), never a live handle.
type Sources struct {
	SBOM               SBOM
	Checkpoints        []CheckpointRecord
	WitnessSignatures  []WitnessRecord
	InclusionProofs    []InclusionProofRecord
	PolicySnapshots    []PolicyRecord
	KeyCatalog         []KeyCatalogEntry
	GeneratedAtEpochMs uint64
	Version            string
}

const (
	fileSBOM            = "sbom.cyclonedx.json"
	fileCheckpoints      = "checkpoints.json"
	fileWitnessSigs      = "witness_signatures.json"
	fileInclusionProofs  = "inclusion_proofs.json"
	filePolicySnapshots  = "policy_snapshots.json"
	fileKeyCatalog       = "key_catalog.json"
	fileMetadata         = "METADATA.json"
)

// checksumEntry is one METADATA.json checksums[] record.
type checksumEntry struct {
	Filename string `json:"filename"`
	SHA256   string `json:"sha256"`
}

type metadata struct {
	GeneratedAt uint64          `json:"generated_at"`
	Version     string          `json:"version"`
	Checksums   []checksumEntry `json:"checksums"`
}

// Build produces the complete, deterministic ZIP archive bytes for s.
// Determinism comes from: a fixed file ordering, zero file modification
// times, and deflate compression with no OS-specific metadata.
func Build(s Sources) ([]byte, error) {
	files := []struct {
		name string
		data []byte
	}{}

	add := func(name string, v interface{}) error {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return gwerr.Wrap(gwerr.InternalError, "audit pack: failed to encode "+name, err)
		}
		files = append(files, struct {
			name string
			data []byte
		}{name, data})
		return nil
	}

	if err := add(fileSBOM, s.SBOM); err != nil {
		return nil, err
	}
	if err := add(fileCheckpoints, s.Checkpoints); err != nil {
		return nil, err
	}
	if err := add(fileWitnessSigs, s.WitnessSignatures); err != nil {
		return nil, err
	}
	if err := add(fileInclusionProofs, s.InclusionProofs); err != nil {
		return nil, err
	}
	if err := add(filePolicySnapshots, s.PolicySnapshots); err != nil {
		return nil, err
	}
	if err := add(fileKeyCatalog, s.KeyCatalog); err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var checksums []checksumEntry
	for _, f := range files {
		if err := writeDeterministicFile(zw, f.name, f.data); err != nil {
			return nil, err
		}
		sum := sha256.Sum256(f.data)
		checksums = append(checksums, checksumEntry{Filename: f.name, SHA256: hex.EncodeToString(sum[:])})
	}

	meta := metadata{
		GeneratedAt: s.GeneratedAtEpochMs,
		Version:     s.Version,
		Checksums:   checksums,
	}
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, gwerr.Wrap(gwerr.InternalError, "audit pack: failed to encode metadata", err)
	}
	if err := writeDeterministicFile(zw, fileMetadata, metaData); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, gwerr.Wrap(gwerr.InternalError, "audit pack: zip finalize failed", err)
	}
	return buf.Bytes(), nil
}

// writeDeterministicFile writes one zip entry with a fixed (zero) mod
// time, 0o644 permissions, and deflate compression — so two exports over
// identical Sources produce byte-identical archives.
func writeDeterministicFile(zw *zip.Writer, name string, data []byte) error {
	hdr := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}
	hdr.SetMode(0o644)
	hdr.Modified = zeroTime

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return gwerr.Wrap(gwerr.InternalError, "audit pack: zip entry creation failed for "+name, err)
	}
	if _, err := w.Write(data); err != nil {
		return gwerr.Wrap(gwerr.InternalError, "audit pack: zip write failed for "+name, err)
	}
	return nil
}
