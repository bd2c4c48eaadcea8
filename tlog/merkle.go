// SPDX-License-Identifier: LGPL-3.0-or-later

package tlog

import "crypto/sha256"

func leafHash(data []byte) []byte {
	h := sha256.New()
	h.Write([]byte{0x00})
	h.Write(data)
	return h.Sum(nil)
}

func interiorHash(left, right []byte) []byte {
	h := sha256.New()
	h.Write([]byte{0x01})
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

func emptyHash() []byte {
	h := sha256.Sum256(nil)
	return h[:]
}

// split returns the largest power of two strictly less than n, the
// canonical left/right subtree boundary used throughout RFC 6962.
func split(n uint64) uint64 {
	k := uint64(1)
	for k*2 < n {
		k *= 2
	}
	return k
}

// mth computes the Merkle tree hash over leaves[lo:hi]. Leaves already
// hold leaf-level hashes (leafHash has been applied).
func mth(leaves [][]byte, lo, hi uint64) []byte {
	n := hi - lo
	if n == 0 {
		return emptyHash()
	}
	if n == 1 {
		return leaves[lo]
	}
	k := split(n)
	return interiorHash(mth(leaves, lo, lo+k), mth(leaves, lo+k, hi))
}

// path returns the RFC-6962 inclusion audit path for leaf m within
// leaves[lo:hi], ordered from the leaf's sibling up to the root's child.
func path(m, lo, hi uint64, leaves [][]byte) [][]byte {
	n := hi - lo
	if n == 1 {
		return nil
	}
	k := split(n)
	if m-lo < k {
		return append(path(m, lo, lo+k, leaves), mth(leaves, lo+k, hi))
	}
	return append(path(m, lo+k, hi, leaves), mth(leaves, lo, lo+k))
}

// verifyPath mirrors path's recursion to reconstruct the root from a
// leaf hash and its audit path, without needing the rest of the tree.
func verifyPath(m, lo, hi uint64, leaf []byte, proof [][]byte) (root []byte, rest [][]byte, ok bool) {
	n := hi - lo
	if n == 1 {
		return leaf, proof, true
	}
	k := split(n)
	if m-lo < k {
		left, rest, ok := verifyPath(m, lo, lo+k, leaf, proof)
		if !ok || len(rest) == 0 {
			return nil, nil, false
		}
		return interiorHash(left, rest[0]), rest[1:], true
	}
	right, rest, ok := verifyPath(m, lo+k, hi, leaf, proof)
	if !ok || len(rest) == 0 {
		return nil, nil, false
	}
	return interiorHash(rest[0], right), rest[1:], true
}

// subProof implements RFC 6962's consistency-proof SUBPROOF algorithm.
func subProof(m, lo, hi uint64, leaves [][]byte, complete bool) [][]byte {
	n := hi - lo
	if m == n {
		if complete {
			return nil
		}
		return [][]byte{mth(leaves, lo, hi)}
	}
	k := split(n)
	if m <= k {
		return append(subProof(m, lo, lo+k, leaves, complete), mth(leaves, lo+k, hi))
	}
	return append(subProof(m-k, lo+k, hi, leaves, false), mth(leaves, lo, lo+k))
}
