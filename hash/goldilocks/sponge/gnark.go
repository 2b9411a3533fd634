package sponge

import (
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/field/goldilocks/poseidon2"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/emulated/emparams"
)

// GoldilocksElement is an emulated Goldilocks element inside a circuit.
type GoldilocksElement = emulated.Element[emparams.Goldilocks]

// DigestVar is the in-circuit counterpart of Digest.
type DigestVar [DigestLen]GoldilocksElement

// DigestValueOf converts a native digest into a witness assignment.
func DigestValueOf(d Digest) DigestVar {
	var v DigestVar
	for i := range d {
		v[i] = ElementValueOf(d[i])
	}
	return v
}

// ElementValueOf converts a native element into a witness assignment.
func ElementValueOf(e Element) GoldilocksElement {
	return emulated.ValueOf[emparams.Goldilocks](e.Uint64())
}

// internal diagonal of the width-12 Poseidon2 matrix, as used by gnark-crypto
var diag12 = [Width]uint64{
	14102670999874605824, 15585654191999307702, 940187017142450255, 8747386241522630711,
	6750641561540124747, 7440998025584530007, 6136358134615751536, 12413576830284969611,
	11675438539028694709, 17580553691069642926, 892707462476851331, 15167485180850043744,
}

// the round keys are derived once from the same parameters as the native
// permutation
var roundKeys = sync.OnceValue(func() [][]*big.Int {
	params := poseidon2.NewParameters(Width, FullRounds, PartialRounds)
	keys := make([][]*big.Int, len(params.RoundKeys))
	for i, round := range params.RoundKeys {
		keys[i] = make([]*big.Int, len(round))
		for j := range round {
			keys[i][j] = round[j].BigInt(new(big.Int))
		}
	}
	return keys
})

// Hasher computes the sponge hash functions over emulated Goldilocks
// elements. It mirrors the native functions of this package.
type Hasher struct {
	api   frontend.API
	field *emulated.Field[emparams.Goldilocks]
}

// NewHasher returns a Hasher bound to the circuit api.
func NewHasher(api frontend.API) (*Hasher, error) {
	field, err := emulated.NewField[emparams.Goldilocks](api)
	if err != nil {
		return nil, err
	}
	return &Hasher{api: api, field: field}, nil
}

// Field returns the emulated Goldilocks field used by the hasher.
func (h *Hasher) Field() *emulated.Field[emparams.Goldilocks] {
	return h.field
}

// Permute applies the Poseidon2 permutation to state in place.
func (h *Hasher) Permute(state []*GoldilocksElement) {
	keys := roundKeys()
	h.matMulExternal(state)
	rf := FullRounds / 2
	for i := 0; i < rf; i++ {
		h.addRoundKey(state, keys[i])
		for j := range state {
			state[j] = h.sBox(state[j])
		}
		h.matMulExternal(state)
	}
	for i := rf; i < rf+PartialRounds; i++ {
		h.addRoundKey(state, keys[i])
		state[0] = h.sBox(state[0])
		h.matMulInternal(state)
	}
	for i := rf + PartialRounds; i < FullRounds+PartialRounds; i++ {
		h.addRoundKey(state, keys[i])
		for j := range state {
			state[j] = h.sBox(state[j])
		}
		h.matMulExternal(state)
	}
}

func (h *Hasher) addRoundKey(state []*GoldilocksElement, keys []*big.Int) {
	for i := range keys {
		state[i] = h.field.Add(state[i], h.field.NewElement(keys[i]))
	}
}

// sBox computes x^7
func (h *Hasher) sBox(x *GoldilocksElement) *GoldilocksElement {
	x2 := h.field.Mul(x, x)
	x4 := h.field.Mul(x2, x2)
	return h.field.Mul(h.field.Mul(x4, x), x2)
}

func (h *Hasher) double(x *GoldilocksElement) *GoldilocksElement {
	return h.field.Add(x, x)
}

// matMulM4 multiplies every chunk of four elements by the M4 matrix using
// the addition chain of the Poseidon2 paper.
func (h *Hasher) matMulM4(s []*GoldilocksElement) {
	f := h.field
	for i := 0; i < len(s)/4; i++ {
		s0, s1, s2, s3 := s[4*i], s[4*i+1], s[4*i+2], s[4*i+3]
		t0 := f.Add(s0, s1)
		t1 := f.Add(s2, s3)
		t2 := f.Add(h.double(s1), t1)
		t3 := f.Add(h.double(s3), t0)
		t4 := f.Add(h.double(h.double(t1)), t3)
		t5 := f.Add(h.double(h.double(t0)), t2)
		t6 := f.Add(t3, t5)
		t7 := f.Add(t2, t4)
		s[4*i], s[4*i+1], s[4*i+2], s[4*i+3] = t6, t5, t7, t4
	}
}

func (h *Hasher) matMulExternal(s []*GoldilocksElement) {
	h.matMulM4(s)
	var sums [4]*GoldilocksElement
	for k := range sums {
		sums[k] = h.field.Zero()
	}
	for i := 0; i < len(s)/4; i++ {
		for k := range sums {
			sums[k] = h.field.Add(sums[k], s[4*i+k])
		}
	}
	for i := 0; i < len(s)/4; i++ {
		for k := range sums {
			s[4*i+k] = h.field.Add(s[4*i+k], sums[k])
		}
	}
}

func (h *Hasher) matMulInternal(s []*GoldilocksElement) {
	sum := s[0]
	for i := 1; i < len(s); i++ {
		sum = h.field.Add(sum, s[i])
	}
	for i := range s {
		d := h.field.NewElement(diag12[i])
		s[i] = h.field.Add(h.field.Mul(s[i], d), sum)
	}
}

func (h *Hasher) absorb(state []*GoldilocksElement, block []*GoldilocksElement) {
	copy(state[:Rate], block)
	h.Permute(state)
}

func (h *Hasher) digest(state []*GoldilocksElement) DigestVar {
	var d DigestVar
	for i := range d {
		d[i] = *state[i]
	}
	return d
}

// HashVarlen is the in-circuit HashVarlen. The number of elements is fixed
// at compile time, so the framing block position is a constant.
func (h *Hasher) HashVarlen(elems ...*GoldilocksElement) DigestVar {
	state := make([]*GoldilocksElement, Width)
	for i := range state {
		state[i] = h.field.Zero()
	}
	for len(elems) >= Rate {
		h.absorb(state, elems[:Rate])
		elems = elems[Rate:]
	}
	last := make([]*GoldilocksElement, Rate)
	for i := range last {
		switch {
		case i < len(elems):
			last[i] = elems[i]
		case i == len(elems):
			last[i] = h.field.One()
		default:
			last[i] = h.field.Zero()
		}
	}
	h.absorb(state, last)
	return h.digest(state)
}

// HashPair is the in-circuit HashPair.
func (h *Hasher) HashPair(left, right DigestVar) DigestVar {
	state := make([]*GoldilocksElement, Width)
	for i := 0; i < DigestLen; i++ {
		state[i] = &left[i]
		state[DigestLen+i] = &right[i]
	}
	for i := Rate; i < Width; i++ {
		state[i] = h.field.One()
	}
	h.Permute(state)
	return h.digest(state)
}

// Elements returns pointers to the elements of d, to be passed to HashVarlen.
func (d *DigestVar) Elements() []*GoldilocksElement {
	out := make([]*GoldilocksElement, DigestLen)
	for i := range d {
		out[i] = &d[i]
	}
	return out
}

// SelectDigest returns a when sel is 1 and b when sel is 0.
func (h *Hasher) SelectDigest(sel frontend.Variable, a, b DigestVar) DigestVar {
	var d DigestVar
	for i := range d {
		d[i] = *h.field.Select(sel, &a[i], &b[i])
	}
	return d
}

// AssertDigestIsEqual constrains both digests to be equal.
func (h *Hasher) AssertDigestIsEqual(a, b DigestVar) {
	for i := range a {
		h.field.AssertIsEqual(&a[i], &b[i])
	}
}

// DigestIsEqual returns 1 when both digests are equal and 0 otherwise.
func (h *Hasher) DigestIsEqual(a, b DigestVar) frontend.Variable {
	res := frontend.Variable(1)
	for i := range a {
		res = h.api.And(res, h.field.IsZero(h.field.Sub(&a[i], &b[i])))
	}
	return res
}
