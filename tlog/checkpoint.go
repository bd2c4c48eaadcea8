// SPDX-License-Identifier: LGPL-3.0-or-later

package tlog

import (
	"encoding/binary"
	"sync"

	"github.com/ib823/benteng-sdk/crypto/sig"
	"github.com/ib823/benteng-sdk/internal/gwerr"
)

const checkpointVersion = 1

// Checkpoint is a signed snapshot of the log at a point in time. Its note
// encoding (tree_size_le || root_hash || timestamp_le) is exactly the
// message witnesses cosign, so a checkpoint's own Signature and a
// witness's cosignature are produced and verified identically.
type Checkpoint struct {
	TreeSize  uint64
	RootHash  [32]byte
	Ts        uint64 // epoch ms
	Ver       uint8
	Signature []byte
}

// Note encodes the portion of the checkpoint that is signed.
func Note(treeSize uint64, rootHash [32]byte, ts uint64) []byte {
	buf := make([]byte, 8+32+8)
	binary.LittleEndian.PutUint64(buf[0:8], treeSize)
	copy(buf[8:40], rootHash[:])
	binary.LittleEndian.PutUint64(buf[40:48], ts)
	return buf
}

func VerifyCheckpointSignature(c Checkpoint, pk *sig.PublicKey) bool {
	return sig.Verify(pk, Note(c.TreeSize, c.RootHash, c.Ts), c.Signature)
}

// checkpoints tracks the chain of checkpoints a Log has issued, enforcing
// non-decreasing tree_size and timestamp.
type checkpoints struct {
	mu   sync.Mutex
	list []Checkpoint
}

// CreateCheckpoint signs a new checkpoint over the log's current root and
// size, and records it in the log's checkpoint chain. now is epoch ms,
// supplied by the caller since the log package must not call time.Now or
// a clock directly (kept deterministic and mockable by higher layers).
func (t *Log) CreateCheckpoint(signer *sig.PrivateKey, now uint64) (Checkpoint, error) {
	t.mu.Lock()
	size := uint64(len(t.leaves))
	root := t.rootLocked()
	t.mu.Unlock()

	var rootArr [32]byte
	copy(rootArr[:], root)

	t.cp.mu.Lock()
	defer t.cp.mu.Unlock()
	if n := len(t.cp.list); n > 0 {
		last := t.cp.list[n-1]
		if size < last.TreeSize {
			return Checkpoint{}, gwerr.New(gwerr.InternalError, "tlog: checkpoint tree_size went backwards")
		}
		if now < last.Ts {
			return Checkpoint{}, gwerr.New(gwerr.InternalError, "tlog: checkpoint timestamp went backwards")
		}
	}

	c := Checkpoint{
		TreeSize: size,
		RootHash: rootArr,
		Ts:       now,
		Ver:      checkpointVersion,
	}
	c.Signature = sig.Sign(signer, Note(c.TreeSize, c.RootHash, c.Ts))
	t.cp.list = append(t.cp.list, c)
	return c, nil
}

// LatestCheckpoint returns the most recently issued checkpoint, if any.
func (t *Log) LatestCheckpoint() (Checkpoint, bool) {
	t.cp.mu.Lock()
	defer t.cp.mu.Unlock()
	if len(t.cp.list) == 0 {
		return Checkpoint{}, false
	}
	return t.cp.list[len(t.cp.list)-1], true
}

// Checkpoints returns a copy of the full checkpoint chain, for the audit
// pack exporter.
func (t *Log) Checkpoints() []Checkpoint {
	t.cp.mu.Lock()
	defer t.cp.mu.Unlock()
	out := make([]Checkpoint, len(t.cp.list))
	copy(out, t.cp.list)
	return out
}
