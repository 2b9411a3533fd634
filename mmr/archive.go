package mmr

import (
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

// Archive is an append-only range that keeps every node, so it can produce
// membership proofs for any leaf. It is used to build witnesses.
type Archive struct {
	// levels[h][i] is the root of the i-th perfect subtree of height h
	levels [][]sponge.Digest
}

func NewArchive() *Archive {
	return &Archive{levels: [][]sponge.Digest{nil}}
}

// Append adds a leaf and returns its index.
func (a *Archive) Append(leaf sponge.Digest) arith.U64 {
	index := len(a.levels[0])
	a.levels[0] = append(a.levels[0], leaf)
	for h := 0; len(a.levels[h])%2 == 0; h++ {
		n := len(a.levels[h])
		if h+1 == len(a.levels) {
			a.levels = append(a.levels, nil)
		}
		a.levels[h+1] = append(a.levels[h+1], sponge.HashPair(a.levels[h][n-2], a.levels[h][n-1]))
	}
	return arith.NewU64(uint64(index))
}

func (a *Archive) LeafCount() arith.U64 {
	return arith.NewU64(uint64(len(a.levels[0])))
}

// Leaf returns the leaf at index i.
func (a *Archive) Leaf(i uint64) (sponge.Digest, error) {
	if i >= uint64(len(a.levels[0])) {
		return sponge.Digest{}, errors.Wrapf(ErrLeafIndexOutOfRange, "leaf %d of %d", i, len(a.levels[0]))
	}
	return a.levels[0][i], nil
}

// Peaks returns the peaks, tallest tree first.
func (a *Archive) Peaks() []sponge.Digest {
	count := uint64(len(a.levels[0]))
	var peaks []sponge.Digest
	for h := len(a.levels) - 1; h >= 0; h-- {
		if count&(1<<h) == 0 {
			continue
		}
		// the subtree comes after all the taller ones
		peaks = append(peaks, a.levels[h][(count>>(h+1))<<1])
	}
	return peaks
}

// Snapshot returns the current peaks and leaf count.
func (a *Archive) Snapshot() Snapshot {
	return Snapshot{Peaks: a.Peaks(), LeafCount: a.LeafCount()}
}

// Prove returns the membership proof of the leaf at index i.
func (a *Archive) Prove(i uint64) (MembershipProof, error) {
	mtIndex, _, err := LeafIndexToMtIndexAndPeakIndex(arith.NewU64(i), a.LeafCount())
	if err != nil {
		return MembershipProof{}, err
	}
	height, _ := mtIndex.Log2Floor()
	proof := MembershipProof{LeafIndex: arith.NewU64(i)}
	for h := 0; h < int(height); h++ {
		proof.AuthenticationPath = append(proof.AuthenticationPath, a.levels[h][(i>>h)^1])
	}
	return proof, nil
}
