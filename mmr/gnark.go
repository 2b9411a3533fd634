package mmr

import (
	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

// ComputePeakGadget is the in-circuit ComputePeak. The height of the tree is
// the length of path, fixed at compile time, while the heap index of the leaf
// is a variable. The index is decomposed in len(path)+1 bits and the most
// significant one is asserted to be set, which forces the index into
// [2^height, 2^(height+1)).
func ComputePeakGadget(api frontend.API, h *sponge.Hasher, leaf sponge.DigestVar,
	mtIndex frontend.Variable, path []sponge.DigestVar,
) sponge.DigestVar {
	bits := api.ToBinary(mtIndex, len(path)+1)
	api.AssertIsEqual(bits[len(path)], 1)
	acc := leaf
	for i := range path {
		// l, r = bit == 1 ? sibling, acc : acc, sibling
		l := h.SelectDigest(bits[i], path[i], acc)
		r := h.SelectDigest(bits[i], acc, path[i])
		acc = h.HashPair(l, r)
	}
	return acc
}

// AssertMembership asserts that path authenticates leaf against peak.
func AssertMembership(api frontend.API, h *sponge.Hasher, peak, leaf sponge.DigestVar,
	mtIndex frontend.Variable, path []sponge.DigestVar,
) {
	h.AssertDigestIsEqual(ComputePeakGadget(api, h, leaf, mtIndex, path), peak)
}

// BagPeaksGadget is the in-circuit BagPeaks for a number of peaks known at
// compile time.
func BagPeaksGadget(h *sponge.Hasher, peaks []sponge.DigestVar) sponge.DigestVar {
	switch n := len(peaks); n {
	case 0:
		return h.HashVarlen(h.Field().Zero())
	case 1:
		return peaks[0]
	default:
		acc := h.HashPair(peaks[n-1], peaks[n-2])
		for i := n - 3; i >= 0; i-- {
			acc = h.HashPair(peaks[i], acc)
		}
		return acc
	}
}
