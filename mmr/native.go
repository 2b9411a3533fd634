// Package mmr verifies membership in Merkle mountain ranges built with the
// sponge HashPair function.
//
// Nodes of every perfect subtree use heap indexing: the root of a tree is 1
// and the children of node i are 2i and 2i+1, so the leaves of a tree of
// height h have indices in [2^h, 2^(h+1)). The peaks of a range are ordered
// from the tallest tree to the smallest one.
package mmr

import (
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

var (
	ErrLeafIndexOutOfRange = errors.New("leaf index out of range")
	ErrPeakCount           = errors.New("number of peaks does not match the leaf count")
)

// LeafIndexToMtIndexAndPeakIndex locates a leaf of a range with leafCount
// leaves. It returns the heap index of the leaf inside the perfect tree that
// contains it and the position of that tree in the list of peaks.
func LeafIndexToMtIndexAndPeakIndex(leafIndex, leafCount arith.U64) (arith.U64, uint32, error) {
	if !leafIndex.Lt(leafCount) {
		return arith.U64{}, 0, errors.Wrapf(ErrLeafIndexOutOfRange, "leaf %s of %s", leafIndex, leafCount)
	}
	var (
		rest      = leafCount
		remaining = leafIndex
		peakIndex uint32
	)
	for !rest.IsZero() {
		height, _ := rest.Log2Floor()
		size, _ := arith.Pow2U64(height)
		if remaining.Lt(size) {
			return size.Add(remaining), peakIndex, nil
		}
		remaining = remaining.Sub(size)
		rest = rest.Xor(size)
		peakIndex++
	}
	// unreachable, leafIndex < leafCount
	return arith.U64{}, 0, errors.Wrapf(ErrLeafIndexOutOfRange, "leaf %s of %s", leafIndex, leafCount)
}

// ComputePeak walks the authentication path from leaf, whose heap index is
// mtIndex, and returns the root it reaches together with the heap index left
// after the walk. A path of the right length ends at index 1.
func ComputePeak(leaf sponge.Digest, mtIndex arith.U64, path []sponge.Digest) (sponge.Digest, arith.U64) {
	acc := leaf
	for _, sibling := range path {
		if mtIndex.Lo&1 == 0 {
			acc = sponge.HashPair(acc, sibling)
		} else {
			acc = sponge.HashPair(sibling, acc)
		}
		mtIndex = mtIndex.Shr(1)
	}
	return acc, mtIndex
}

// Verify reports whether path authenticates leaf at position leafIndex
// against peak. It returns false when the leaf index is out of range or the
// path does not have the height of the tree holding the leaf.
func Verify(peak, leaf sponge.Digest, leafIndex, leafCount arith.U64, path []sponge.Digest) bool {
	mtIndex, _, err := LeafIndexToMtIndexAndPeakIndex(leafIndex, leafCount)
	if err != nil {
		return false
	}
	root, end := ComputePeak(leaf, mtIndex, path)
	return end.Eq(arith.NewU64(1)) && root.Equal(peak)
}

// MembershipProof is the authentication path of a leaf, bottom-up.
type MembershipProof struct {
	LeafIndex          arith.U64
	AuthenticationPath []sponge.Digest
}

// Verify checks the proof against a full list of peaks. The peak is picked
// by the peak index of the leaf.
func (p *MembershipProof) Verify(leaf sponge.Digest, peaks []sponge.Digest, leafCount arith.U64) bool {
	if uint32(len(peaks)) != leafCount.PopCount() {
		return false
	}
	_, peakIndex, err := LeafIndexToMtIndexAndPeakIndex(p.LeafIndex, leafCount)
	if err != nil {
		return false
	}
	return Verify(peaks[peakIndex], leaf, p.LeafIndex, leafCount, p.AuthenticationPath)
}
