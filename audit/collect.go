// SPDX-License-Identifier: LGPL-3.0-or-later

package audit

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"github.com/ib823/benteng-sdk/policy"
	"github.com/ib823/benteng-sdk/tlog"
)

const maxInclusionProofSample = 256

// CollectCheckpoints converts a log's checkpoint chain to its audit-pack
// record form.
func CollectCheckpoints(cps []tlog.Checkpoint) []CheckpointRecord {
	out := make([]CheckpointRecord, 0, len(cps))
	for _, c := range cps {
		out = append(out, CheckpointRecord{
			TreeSize:  c.TreeSize,
			RootHash:  hex.EncodeToString(c.RootHash[:]),
			Ts:        c.Ts,
			Ver:       c.Ver,
			Signature: hex.EncodeToString(c.Signature),
		})
	}
	return out
}

// CollectWitnessSignatures converts collected cosignatures to their
// audit-pack record form.
func CollectWitnessSignatures(cs []WitnessCosignature) []WitnessRecord {
	out := make([]WitnessRecord, 0, len(cs))
	for _, c := range cs {
		out = append(out, WitnessRecord{
			WitnessID: c.WitnessID,
			TreeSize:  c.TreeSize,
			RootHash:  hex.EncodeToString(c.RootHash[:]),
			Timestamp: c.Timestamp,
			Signature: hex.EncodeToString(c.Signature),
		})
	}
	return out
}

// WitnessCosignature is the subset of witness.Cosignature the audit
// package needs; kept local to avoid an import cycle back into witness
// for what is otherwise a plain data shape.
type WitnessCosignature struct {
	WitnessID string
	TreeSize  uint64
	RootHash  [32]byte
	Timestamp uint64
	Signature []byte
}

// SampleInclusionProofs draws up to maxInclusionProofSample leaf indices
// uniformly at random from [0, treeSize) and generates a real inclusion
// proof for each, under the log's current checkpointed size.
func SampleInclusionProofs(log *tlog.Log, treeSize uint64) ([]InclusionProofRecord, error) {
	if treeSize == 0 {
		return nil, nil
	}
	n := treeSize
	if n > maxInclusionProofSample {
		n = maxInclusionProofSample
	}

	indices, err := sampleIndices(treeSize, n)
	if err != nil {
		return nil, err
	}

	out := make([]InclusionProofRecord, 0, len(indices))
	for _, i := range indices {
		proof, err := log.InclusionProof(i, treeSize)
		if err != nil {
			return nil, err
		}
		hexProof := make([]string, len(proof))
		for j, p := range proof {
			hexProof[j] = hex.EncodeToString(p)
		}
		out = append(out, InclusionProofRecord{LeafIndex: i, TreeSize: treeSize, AuditPath: hexProof})
	}
	return out, nil
}

func sampleIndices(treeSize, count uint64) ([]uint64, error) {
	chosen := make(map[uint64]struct{}, count)
	out := make([]uint64, 0, count)
	for uint64(len(out)) < count {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(treeSize)))
		if err != nil {
			return nil, err
		}
		idx := n.Uint64()
		if _, ok := chosen[idx]; ok {
			continue
		}
		chosen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out, nil
}

// CollectPolicySnapshots converts a policy distributor's snapshot to the
// audit-pack record form.
func CollectPolicySnapshots(policies []policy.Policy) []PolicyRecord {
	out := make([]PolicyRecord, 0, len(policies))
	for _, p := range policies {
		out = append(out, PolicyRecord{
			TenantID:        string(p.TenantID),
			PolicyID:        string(p.PolicyID),
			Path:            p.Path,
			RequiredAlgs:    p.RequiredAlgs,
			MaxAgeMs:        p.MaxAgeMs,
			MaxBodyBytes:    p.MaxBodyBytes,
			RequireDeviceAt: p.RequireDeviceAttest,
			HybridAllowed:   p.HybridAllowed,
			ReplayTTLMs:     p.ReplayTTLMs,
			Version:         p.Version,
		})
	}
	return out
}
