// Package sponge implements the sponge hash used by the mutator set programs:
// a width-12 Poseidon2 permutation over the Goldilocks field, with rate 8 and
// capacity 4, squeezing digests of four field elements. The package contains
// the native implementation, used to compute witnesses, and an emulated gnark
// gadget (gnark.go) that produces the same digests inside a circuit.
package sponge

import (
	"encoding/hex"
	"strings"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/consensys/gnark-crypto/field/goldilocks/poseidon2"
	"github.com/pkg/errors"
)

const (
	// Width is the number of field elements in the sponge state.
	Width = 12
	// Rate is the number of state elements overwritten by each absorption.
	Rate = 8
	// Capacity is the part of the state never touched by the input.
	Capacity = Width - Rate
	// DigestLen is the number of field elements in a digest.
	DigestLen = 4
	// FullRounds and PartialRounds configure the Poseidon2 permutation.
	FullRounds    = 6
	PartialRounds = 17
)

// ErrStaticSizeMismatch is returned by HashStaticSize when the input length
// differs from the declared one.
var ErrStaticSizeMismatch = errors.New("input length does not match the static size")

// Element is a Goldilocks field element.
type Element = goldilocks.Element

var permutation = poseidon2.NewPermutation(Width, FullRounds, PartialRounds)

// Digest is the output of the hash functions of this package.
type Digest [DigestLen]Element

// NewDigest builds a digest from the canonical values of its elements.
func NewDigest(v [DigestLen]uint64) Digest {
	var d Digest
	for i := range v {
		d[i].SetUint64(v[i])
	}
	return d
}

// Equal compares both digests element-wise.
func (d Digest) Equal(o Digest) bool {
	for i := range d {
		if !d[i].Equal(&o[i]) {
			return false
		}
	}
	return true
}

// Elements returns the digest as a slice, ready to be concatenated with other
// inputs of the hash functions.
func (d Digest) Elements() []Element {
	return append([]Element(nil), d[:]...)
}

// Uint64s returns the canonical value of every element.
func (d Digest) Uint64s() [DigestLen]uint64 {
	var v [DigestLen]uint64
	for i := range d {
		v[i] = d[i].Uint64()
	}
	return v
}

// String returns the hex encoding of the big-endian bytes of each element.
func (d Digest) String() string {
	var sb strings.Builder
	for i := range d {
		b := d[i].Bytes()
		sb.WriteString(hex.EncodeToString(b[:]))
	}
	return sb.String()
}

// Sponge owns a sponge state. The zero value is not usable, create one with
// NewVarlen or NewFixedLength.
type Sponge struct {
	state [Width]Element
}

// NewVarlen returns a sponge in the variable-length domain, whose state
// starts at zero.
func NewVarlen() *Sponge {
	return &Sponge{}
}

// NewFixedLength returns a sponge in the fixed-length domain, whose capacity
// starts filled with ones.
func NewFixedLength() *Sponge {
	s := &Sponge{}
	for i := Rate; i < Width; i++ {
		s.state[i].SetOne()
	}
	return s
}

func (s *Sponge) permute() {
	// the only error is a wrong state length, which the array type rules out
	_ = permutation.Permutation(s.state[:])
}

// Absorb overwrites the rate part of the state with block and applies the
// permutation.
func (s *Sponge) Absorb(block [Rate]Element) {
	copy(s.state[:Rate], block[:])
	s.permute()
}

// AbsorbMultiple absorbs elems followed by the framing padding: a one and
// then zeros up to the next multiple of the rate. When len(elems) is already
// a multiple of the rate a whole padding block is absorbed.
func (s *Sponge) AbsorbMultiple(elems []Element) {
	for len(elems) >= Rate {
		s.Absorb([Rate]Element(elems[:Rate]))
		elems = elems[Rate:]
	}
	var last [Rate]Element
	copy(last[:], elems)
	last[len(elems)].SetOne()
	s.Absorb(last)
}

// AbsorbRepeatedly is AbsorbMultiple under the name used by the index
// derivation routines.
func (s *Sponge) AbsorbRepeatedly(elems []Element) {
	s.AbsorbMultiple(elems)
}

// Squeeze returns the rate part of the state and permutes it.
func (s *Sponge) Squeeze() [Rate]Element {
	var out [Rate]Element
	copy(out[:], s.state[:Rate])
	s.permute()
	return out
}

// Digest returns the first DigestLen elements of the state.
func (s *Sponge) Digest() Digest {
	var d Digest
	copy(d[:], s.state[:DigestLen])
	return d
}

// HashVarlen hashes a sequence of any length in the variable-length domain.
func HashVarlen(elems []Element) Digest {
	s := NewVarlen()
	s.AbsorbMultiple(elems)
	return s.Digest()
}

// HashStaticSize hashes a sequence whose length is known in advance. The
// result is the same as HashVarlen, but the block count and the position of
// the framing element are fixed by size instead of being derived from the
// input.
func HashStaticSize(elems []Element, size int) (Digest, error) {
	if len(elems) != size {
		return Digest{}, errors.Wrapf(ErrStaticSizeMismatch, "got %d elements, want %d", len(elems), size)
	}
	fullBlocks, tail := size/Rate, size%Rate
	s := NewVarlen()
	for i := 0; i < fullBlocks; i++ {
		s.Absorb([Rate]Element(elems[i*Rate : (i+1)*Rate]))
	}
	var last [Rate]Element
	copy(last[:tail], elems[fullBlocks*Rate:])
	last[tail].SetOne()
	s.Absorb(last)
	return s.Digest(), nil
}

// HashPair hashes two digests in the fixed-length domain. It is the node
// hash of the Merkle trees and the peak folding function.
func HashPair(left, right Digest) Digest {
	s := NewFixedLength()
	copy(s.state[:DigestLen], left[:])
	copy(s.state[DigestLen:2*DigestLen], right[:])
	s.permute()
	return s.Digest()
}
