package mutatorset

import (
	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/codec"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

// SampleIndices derives count indices in [0, 2^windowBits) from item and
// randomness. The i-th index is taken from HashVarlen(item ++ randomness ++
// [i]): the low 32 bits of the first four digest elements form a 128-bit
// value that is masked down to windowBits bits. The loop runs exactly count
// times and repeated indices are kept in place.
func SampleIndices(count uint32, item, randomness sponge.Digest, windowBits uint32) ([]arith.U128, error) {
	if windowBits == 0 || windowBits > 32 {
		return nil, errors.Wrapf(ErrInvalidParameters, "window bits %d not in [1, 32]", windowBits)
	}
	input := make([]goldilocks.Element, 2*sponge.DigestLen+1)
	copy(input, item[:])
	copy(input[sponge.DigestLen:], randomness[:])
	indices := make([]arith.U128, count)
	for counter := uint32(0); counter < count; counter++ {
		input[2*sponge.DigestLen].SetUint64(uint64(counter))
		d := sponge.HashVarlen(input)
		var wide arith.U128
		for i := range wide.Limbs {
			wide.Limbs[i] = uint32(d[i].Uint64())
		}
		indices[counter] = wide.Mask(uint(windowBits))
	}
	return indices, nil
}

// AbsoluteIndexSet is the fixed size list of Bloom filter indices of an
// item. Its order is the derivation order.
type AbsoluteIndexSet []arith.U128

// GetSwbfIndices derives the absolute index set of an item inserted at
// aoclLeafIndex. The randomness of the sampler binds the sender randomness,
// the receiver preimage and the leaf index, and the sampled window indices
// are shifted to the window of the batch the item was inserted in.
func GetSwbfIndices(item, senderRandomness, receiverPreimage sponge.Digest,
	aoclLeafIndex arith.U64, params Parameters,
) (AbsoluteIndexSet, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	leafIndex := aoclLeafIndex.Elements()
	s := sponge.NewVarlen()
	s.AbsorbRepeatedly(append(append(senderRandomness.Elements(), receiverPreimage[:]...), leafIndex[:]...))
	relative, err := SampleIndices(params.NumTrials, item, s.Digest(), params.WindowBits)
	if err != nil {
		return nil, err
	}
	offset := params.BatchOffset(aoclLeafIndex)
	set := make(AbsoluteIndexSet, len(relative))
	for i, r := range relative {
		set[i] = r.Add(offset)
	}
	return set, nil
}

// AbsoluteIndexSetShape is the layout of a set of n indices: n u128 values
// without count.
func AbsoluteIndexSetShape(n uint32) codec.Shape {
	return codec.Named("absolute_index_set", codec.Array(codec.U128(), int(n)))
}

func (s AbsoluteIndexSet) Encode(e *codec.Encoder) {
	for _, v := range s {
		e.U128(v)
	}
}

// DecodeAbsoluteIndexSet reads a set of n indices.
func DecodeAbsoluteIndexSet(r *codec.Reader, n uint32) (AbsoluteIndexSet, error) {
	set := make(AbsoluteIndexSet, n)
	for i := range set {
		var err error
		if set[i], err = r.U128(); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Hash commits to the whole set, order included.
func (s AbsoluteIndexSet) Hash() sponge.Digest {
	return sponge.HashVarlen(codec.Encode(s))
}

func (s AbsoluteIndexSet) Equal(o AbsoluteIndexSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].Eq(o[i]) {
			return false
		}
	}
	return true
}

// ChunkIndex splits an absolute index into the index of its chunk and its
// position inside the chunk.
func ChunkIndex(index arith.U128, params Parameters) (arith.U64, uint32, error) {
	chunk := index.Shr(uint(params.ChunkBits))
	if chunk.Hi64() != 0 {
		return arith.U64{}, 0, errors.Wrapf(ErrInvalidParameters, "chunk index of %s does not fit in 64 bits", index)
	}
	relative := index.Mask(uint(params.ChunkBits))
	return arith.NewU64(chunk.Lo64()), relative.Limbs[0], nil
}
