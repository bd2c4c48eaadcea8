// SPDX-License-Identifier: LGPL-3.0-or-later

// Package witness coordinates external cosignature collection over the
// transparency log's checkpoints. Each witness independently attests that
// it observed a given (tree_size, root_hash), defending against an
// equivocating log operator showing different histories to different
// readers.
package witness

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/ib823/benteng-sdk/crypto/sig"
	"github.com/ib823/benteng-sdk/internal/gwerr"
	"github.com/ib823/benteng-sdk/internal/metrics"
)

const perWitnessTimeout = 5 * time.Second

// Cosignature is one witness's attestation over a checkpoint.
type Cosignature struct {
	WitnessID string
	TreeSize  uint64
	RootHash  [32]byte
	Timestamp uint64 // epoch ms, witness's own clock
	Signature []byte
}

// Client is the coordinator's view of a single witness: an RPC boundary
// the spec treats as opaque (the concrete transport, e.g. HTTP, lives
// behind an implementation of this interface).
type Client interface {
	// ID identifies the witness for logging and quorum bookkeeping.
	ID() string
	// Cosign asks the witness to attest to (treeSize, rootHash).
	Cosign(ctx context.Context, treeSize uint64, rootHash [32]byte) (Cosignature, error)
}

// RegisteredWitness pairs a Client with the public key used to verify its
// responses.
type RegisteredWitness struct {
	Client    Client
	PublicKey *sig.PublicKey
}

// Coordinator fans a checkpoint out to all registered witnesses in
// parallel and collects a quorum of valid cosignatures.
type Coordinator struct {
	witnesses []RegisteredWitness
	quorum    int
}

func NewCoordinator(witnesses []RegisteredWitness, quorum int) *Coordinator {
	return &Coordinator{witnesses: witnesses, quorum: quorum}
}

// Note encodes the bytes a witness signs: tree_size_le || root_hash ||
// timestamp_le, identical to the log's own checkpoint note encoding so
// cosignatures and the checkpoint signature are interchangeable formats.
func Note(treeSize uint64, rootHash [32]byte, timestamp uint64) []byte {
	buf := make([]byte, 8+32+8)
	binary.LittleEndian.PutUint64(buf[0:8], treeSize)
	copy(buf[8:40], rootHash[:])
	binary.LittleEndian.PutUint64(buf[40:48], timestamp)
	return buf
}

// CollectQuorum contacts every registered witness in parallel, each bounded
// by perWitnessTimeout, and returns every valid cosignature received. It
// succeeds once at least quorum valid responses are in hand; it still
// waits out the remaining in-flight calls so late, above-quorum responses
// are captured opportunistically, per spec. Invalid signatures and
// failures are dropped silently into the per-witness outcome count,
// recorded via metrics, and never fail the overall call by themselves.
func (c *Coordinator) CollectQuorum(ctx context.Context, treeSize uint64, rootHash [32]byte) ([]Cosignature, error) {
	results := make([]witnessResult, len(c.witnesses))
	var wg sync.WaitGroup
	for i, rw := range c.witnesses {
		wg.Add(1)
		go func(i int, rw RegisteredWitness) {
			defer wg.Done()
			results[i] = c.collectOne(ctx, rw, treeSize, rootHash)
		}(i, rw)
	}
	wg.Wait()

	var valid []Cosignature
	for _, r := range results {
		if r.err == nil {
			valid = append(valid, r.cs)
		}
	}

	if len(valid) < c.quorum {
		metrics.WitnessQuorumMet.WithLabelValues("false").Inc()
		return valid, gwerr.New(gwerr.InternalError, "witness quorum not met")
	}
	metrics.WitnessQuorumMet.WithLabelValues("true").Inc()
	return valid, nil
}

type witnessResult struct {
	cs  Cosignature
	err error
}

func (c *Coordinator) collectOne(ctx context.Context, rw RegisteredWitness, treeSize uint64, rootHash [32]byte) witnessResult {
	wctx, cancel := context.WithTimeout(ctx, perWitnessTimeout)
	defer cancel()

	start := time.Now()
	cs, err := rw.Client.Cosign(wctx, treeSize, rootHash)
	metrics.WitnessCosignDuration.WithLabelValues(rw.Client.ID()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.WitnessCosignsRequested.WithLabelValues(rw.Client.ID(), "error").Inc()
		return witnessResult{err: err}
	}
	if cs.WitnessID != rw.Client.ID() || cs.TreeSize != treeSize || !bytes.Equal(cs.RootHash[:], rootHash[:]) {
		metrics.WitnessCosignsRequested.WithLabelValues(rw.Client.ID(), "mismatch").Inc()
		return witnessResult{err: gwerr.New(gwerr.InvalidSignature, "witness response does not match requested checkpoint")}
	}
	if !sig.Verify(rw.PublicKey, Note(cs.TreeSize, cs.RootHash, cs.Timestamp), cs.Signature) {
		metrics.WitnessCosignsRequested.WithLabelValues(rw.Client.ID(), "bad_signature").Inc()
		return witnessResult{err: gwerr.New(gwerr.InvalidSignature, "witness cosignature verification failed")}
	}

	metrics.WitnessCosignsRequested.WithLabelValues(rw.Client.ID(), "ok").Inc()
	return witnessResult{cs: cs}
}
