package mmr

import (
	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

// EmptyBag is the commitment of a range without leaves.
func EmptyBag() sponge.Digest {
	return sponge.HashVarlen([]goldilocks.Element{{}})
}

// BagPeaks folds the peaks into a single commitment, from the smallest tree
// to the tallest one:
//
//	[p1, p2, p3] -> HashPair(p1, HashPair(p3, p2))
func BagPeaks(peaks []sponge.Digest) sponge.Digest {
	switch n := len(peaks); n {
	case 0:
		return EmptyBag()
	case 1:
		return peaks[0]
	default:
		acc := sponge.HashPair(peaks[n-1], peaks[n-2])
		for i := n - 3; i >= 0; i-- {
			acc = sponge.HashPair(peaks[i], acc)
		}
		return acc
	}
}

// Snapshot is a read-only view of a range: its peaks and its leaf count.
type Snapshot struct {
	Peaks     []sponge.Digest
	LeafCount arith.U64
}

// Validate checks that the number of peaks matches the leaf count.
func (s *Snapshot) Validate() error {
	if want := s.LeafCount.PopCount(); uint32(len(s.Peaks)) != want {
		return errors.Wrapf(ErrPeakCount, "%d peaks for %s leaves, want %d", len(s.Peaks), s.LeafCount, want)
	}
	return nil
}

// Bag returns the commitment of the snapshot.
func (s *Snapshot) Bag() sponge.Digest {
	return BagPeaks(s.Peaks)
}

// Verify checks a membership proof of leaf against the snapshot.
func (s *Snapshot) Verify(leaf sponge.Digest, proof *MembershipProof) bool {
	return proof.Verify(leaf, s.Peaks, s.LeafCount)
}
