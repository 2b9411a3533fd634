// Package arith implements the unsigned 64 and 128 bit integers used by the
// witness programs. Values are stored as u32 limbs, the native word of the
// execution model, and every operation propagates carries and borrows between
// limbs explicitly so the result is bit-identical to the limb-wise computation
// performed when proving.
package arith

import (
	"math/bits"
	"strconv"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/pkg/errors"
)

var (
	// ErrLog2Zero is returned by Log2Floor when the operand is zero.
	ErrLog2Zero = errors.New("log2 floor of zero")
	// ErrExponentOutOfRange is returned by Pow2 when the result does not fit.
	ErrExponentOutOfRange = errors.New("power of two exponent out of range")
	// ErrNotU32 is returned when a field element used as a limb is not a u32.
	ErrNotU32 = errors.New("field element is not a u32")
)

// U64 is an unsigned 64-bit integer split in two u32 limbs.
type U64 struct {
	Hi uint32
	Lo uint32
}

// NewU64 splits v into its limbs.
func NewU64(v uint64) U64 {
	return U64{Hi: uint32(v >> 32), Lo: uint32(v)}
}

// Uint64 joins the limbs back into a native integer.
func (a U64) Uint64() uint64 {
	return uint64(a.Hi)<<32 | uint64(a.Lo)
}

func (a U64) IsZero() bool {
	return a.Hi == 0 && a.Lo == 0
}

// AddWithCarry returns a+b modulo 2^64 and the carry out of the high limb.
func (a U64) AddWithCarry(b U64) (U64, uint32) {
	lo, carry := bits.Add32(a.Lo, b.Lo, 0)
	hi, carry := bits.Add32(a.Hi, b.Hi, carry)
	return U64{Hi: hi, Lo: lo}, carry
}

// Add returns a+b, wrapping on overflow.
func (a U64) Add(b U64) U64 {
	r, _ := a.AddWithCarry(b)
	return r
}

// SubWithBorrow returns a-b modulo 2^64 and the borrow out of the high limb.
func (a U64) SubWithBorrow(b U64) (U64, uint32) {
	lo, borrow := bits.Sub32(a.Lo, b.Lo, 0)
	hi, borrow := bits.Sub32(a.Hi, b.Hi, borrow)
	return U64{Hi: hi, Lo: lo}, borrow
}

// Sub returns a-b, wrapping on underflow.
func (a U64) Sub(b U64) U64 {
	r, _ := a.SubWithBorrow(b)
	return r
}

// Cmp returns -1, 0 or 1 depending on whether a is lower, equal or greater
// than b. The high limbs are compared first.
func (a U64) Cmp(b U64) int {
	switch {
	case a.Hi < b.Hi:
		return -1
	case a.Hi > b.Hi:
		return 1
	case a.Lo < b.Lo:
		return -1
	case a.Lo > b.Lo:
		return 1
	}
	return 0
}

func (a U64) Lt(b U64) bool { return a.Cmp(b) < 0 }

func (a U64) Eq(b U64) bool { return a == b }

func (a U64) And(b U64) U64 { return U64{Hi: a.Hi & b.Hi, Lo: a.Lo & b.Lo} }

func (a U64) Or(b U64) U64 { return U64{Hi: a.Hi | b.Hi, Lo: a.Lo | b.Lo} }

func (a U64) Xor(b U64) U64 { return U64{Hi: a.Hi ^ b.Hi, Lo: a.Lo ^ b.Lo} }

// Shl shifts a to the left by n bits. Shifting by 64 or more returns zero.
func (a U64) Shl(n uint) U64 {
	switch {
	case n == 0:
		return a
	case n >= 64:
		return U64{}
	case n >= 32:
		return U64{Hi: a.Lo << (n - 32)}
	}
	return U64{Hi: a.Hi<<n | a.Lo>>(32-n), Lo: a.Lo << n}
}

// Shr shifts a to the right by n bits. Shifting by 64 or more returns zero.
func (a U64) Shr(n uint) U64 {
	switch {
	case n == 0:
		return a
	case n >= 64:
		return U64{}
	case n >= 32:
		return U64{Lo: a.Hi >> (n - 32)}
	}
	return U64{Hi: a.Hi >> n, Lo: a.Lo>>n | a.Hi<<(32-n)}
}

// PopCount returns the number of set bits.
func (a U64) PopCount() uint32 {
	return uint32(bits.OnesCount32(a.Hi) + bits.OnesCount32(a.Lo))
}

// Log2Floor returns floor(log2(a)). Callers must guarantee a is not zero, the
// zero case is reported as ErrLog2Zero.
func (a U64) Log2Floor() (uint32, error) {
	if a.Hi != 0 {
		return 32 + uint32(bits.Len32(a.Hi)) - 1, nil
	}
	if a.Lo != 0 {
		return uint32(bits.Len32(a.Lo)) - 1, nil
	}
	return 0, ErrLog2Zero
}

// Pow2U64 returns 2^n for n < 64.
func Pow2U64(n uint32) (U64, error) {
	if n >= 64 {
		return U64{}, errors.Wrapf(ErrExponentOutOfRange, "2^%d does not fit in 64 bits", n)
	}
	return U64{Lo: 1}.Shl(uint(n)), nil
}

// Elements returns the limbs as field elements, lowest limb first.
func (a U64) Elements() [2]goldilocks.Element {
	return [2]goldilocks.Element{
		goldilocks.NewElement(uint64(a.Lo)),
		goldilocks.NewElement(uint64(a.Hi)),
	}
}

// U64FromElements is the inverse of U64.Elements.
func U64FromElements(lo, hi goldilocks.Element) (U64, error) {
	l, err := LimbFromElement(lo)
	if err != nil {
		return U64{}, err
	}
	h, err := LimbFromElement(hi)
	if err != nil {
		return U64{}, err
	}
	return U64{Hi: h, Lo: l}, nil
}

// LimbFromElement returns the value of e as a u32 limb or ErrNotU32.
func LimbFromElement(e goldilocks.Element) (uint32, error) {
	v := e.Uint64()
	if v > 0xffffffff {
		return 0, errors.Wrapf(ErrNotU32, "value %d", v)
	}
	return uint32(v), nil
}

func (a U64) String() string {
	return strconv.FormatUint(a.Uint64(), 10)
}
