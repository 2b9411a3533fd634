package arith

import (
	"math/bits"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// U128 is an unsigned 128-bit integer made of four u32 limbs, Limbs[0] being
// the least significant one.
type U128 struct {
	Limbs [4]uint32
}

// NewU128 builds a U128 from its low and high 64-bit halves.
func NewU128(lo, hi uint64) U128 {
	return U128{Limbs: [4]uint32{uint32(lo), uint32(lo >> 32), uint32(hi), uint32(hi >> 32)}}
}

// U128FromU64 zero-extends a.
func U128FromU64(a U64) U128 {
	return U128{Limbs: [4]uint32{a.Lo, a.Hi, 0, 0}}
}

// Lo64 returns the low 64 bits.
func (a U128) Lo64() uint64 {
	return uint64(a.Limbs[1])<<32 | uint64(a.Limbs[0])
}

// Hi64 returns the high 64 bits.
func (a U128) Hi64() uint64 {
	return uint64(a.Limbs[3])<<32 | uint64(a.Limbs[2])
}

func (a U128) IsZero() bool {
	return a.Limbs == [4]uint32{}
}

// AddWithCarry returns a+b modulo 2^128 and the final carry.
func (a U128) AddWithCarry(b U128) (U128, uint32) {
	var r U128
	var carry uint32
	for i := range a.Limbs {
		r.Limbs[i], carry = bits.Add32(a.Limbs[i], b.Limbs[i], carry)
	}
	return r, carry
}

// Add returns a+b, wrapping on overflow.
func (a U128) Add(b U128) U128 {
	r, _ := a.AddWithCarry(b)
	return r
}

// SubWithBorrow returns a-b modulo 2^128 and the final borrow.
func (a U128) SubWithBorrow(b U128) (U128, uint32) {
	var r U128
	var borrow uint32
	for i := range a.Limbs {
		r.Limbs[i], borrow = bits.Sub32(a.Limbs[i], b.Limbs[i], borrow)
	}
	return r, borrow
}

// Sub returns a-b, wrapping on underflow.
func (a U128) Sub(b U128) U128 {
	r, _ := a.SubWithBorrow(b)
	return r
}

// Cmp compares the limbs from the most significant one down.
func (a U128) Cmp(b U128) int {
	for i := len(a.Limbs) - 1; i >= 0; i-- {
		if a.Limbs[i] < b.Limbs[i] {
			return -1
		}
		if a.Limbs[i] > b.Limbs[i] {
			return 1
		}
	}
	return 0
}

func (a U128) Lt(b U128) bool { return a.Cmp(b) < 0 }

func (a U128) Eq(b U128) bool { return a == b }

func (a U128) And(b U128) U128 {
	var r U128
	for i := range a.Limbs {
		r.Limbs[i] = a.Limbs[i] & b.Limbs[i]
	}
	return r
}

func (a U128) Or(b U128) U128 {
	var r U128
	for i := range a.Limbs {
		r.Limbs[i] = a.Limbs[i] | b.Limbs[i]
	}
	return r
}

// Shl shifts a to the left by n bits. Shifting by 128 or more returns zero.
func (a U128) Shl(n uint) U128 {
	if n >= 128 {
		return U128{}
	}
	var r U128
	words, shift := int(n/32), n%32
	for i := len(a.Limbs) - 1; i >= words; i-- {
		v := a.Limbs[i-words] << shift
		if shift > 0 && i-words > 0 {
			v |= a.Limbs[i-words-1] >> (32 - shift)
		}
		r.Limbs[i] = v
	}
	return r
}

// Shr shifts a to the right by n bits. Shifting by 128 or more returns zero.
func (a U128) Shr(n uint) U128 {
	if n >= 128 {
		return U128{}
	}
	var r U128
	words, shift := int(n/32), n%32
	for i := 0; i+words < len(a.Limbs); i++ {
		v := a.Limbs[i+words] >> shift
		if shift > 0 && i+words+1 < len(a.Limbs) {
			v |= a.Limbs[i+words+1] << (32 - shift)
		}
		r.Limbs[i] = v
	}
	return r
}

// Mask keeps the n least significant bits of a, that is a mod 2^n.
func (a U128) Mask(n uint) U128 {
	if n >= 128 {
		return a
	}
	var r U128
	for i := range a.Limbs {
		lo := uint(32 * i)
		switch {
		case n >= lo+32:
			r.Limbs[i] = a.Limbs[i]
		case n > lo:
			r.Limbs[i] = a.Limbs[i] & (1<<(n-lo) - 1)
		}
	}
	return r
}

func (a U128) PopCount() uint32 {
	var c int
	for _, l := range a.Limbs {
		c += bits.OnesCount32(l)
	}
	return uint32(c)
}

// Log2Floor returns floor(log2(a)), ErrLog2Zero when a is zero.
func (a U128) Log2Floor() (uint32, error) {
	for i := len(a.Limbs) - 1; i >= 0; i-- {
		if a.Limbs[i] != 0 {
			return uint32(32*i+bits.Len32(a.Limbs[i])) - 1, nil
		}
	}
	return 0, ErrLog2Zero
}

// Pow2U128 returns 2^n for n < 128.
func Pow2U128(n uint32) (U128, error) {
	if n >= 128 {
		return U128{}, errors.Wrapf(ErrExponentOutOfRange, "2^%d does not fit in 128 bits", n)
	}
	return U128{Limbs: [4]uint32{1, 0, 0, 0}}.Shl(uint(n)), nil
}

// Elements returns the four limbs as field elements, least significant first.
func (a U128) Elements() [4]goldilocks.Element {
	var e [4]goldilocks.Element
	for i, l := range a.Limbs {
		e[i] = goldilocks.NewElement(uint64(l))
	}
	return e
}

// U128FromElements is the inverse of U128.Elements.
func U128FromElements(e [4]goldilocks.Element) (U128, error) {
	var r U128
	for i := range e {
		l, err := LimbFromElement(e[i])
		if err != nil {
			return U128{}, errors.Wrapf(err, "limb %d", i)
		}
		r.Limbs[i] = l
	}
	return r, nil
}

// ToUint256 widens a into a uint256.Int.
func (a U128) ToUint256() *uint256.Int {
	return &uint256.Int{a.Lo64(), a.Hi64(), 0, 0}
}

// U128FromUint256 truncates v to its 128 least significant bits.
func U128FromUint256(v *uint256.Int) U128 {
	return NewU128(v[0], v[1])
}

// String returns the decimal representation of a.
func (a U128) String() string {
	return a.ToUint256().Dec()
}
