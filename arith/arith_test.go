package arith

import (
	"math/bits"
	"math/rand/v2"
	"testing"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	qt "github.com/frankban/quicktest"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

func TestU64AgainstNative(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewPCG(1, 2))
	edge := []uint64{0, 1, 0xffffffff, 0x100000000, 1<<63 - 1, 1 << 63, ^uint64(0)}
	for i := 0; i < 500; i++ {
		x, y := rng.Uint64(), rng.Uint64()
		if i < len(edge)*len(edge) {
			x, y = edge[i/len(edge)], edge[i%len(edge)]
		}
		a, b := NewU64(x), NewU64(y)

		sum, carry := a.AddWithCarry(b)
		wantSum, wantCarry := bits.Add64(x, y, 0)
		c.Assert(sum.Uint64(), qt.Equals, wantSum)
		c.Assert(uint64(carry), qt.Equals, wantCarry)

		diff, borrow := a.SubWithBorrow(b)
		wantDiff, wantBorrow := bits.Sub64(x, y, 0)
		c.Assert(diff.Uint64(), qt.Equals, wantDiff)
		c.Assert(uint64(borrow), qt.Equals, wantBorrow)

		c.Assert(a.Lt(b), qt.Equals, x < y)
		c.Assert(a.Eq(b), qt.Equals, x == y)
		c.Assert(a.And(b).Uint64(), qt.Equals, x&y)
		c.Assert(a.Or(b).Uint64(), qt.Equals, x|y)
		c.Assert(a.Xor(b).Uint64(), qt.Equals, x^y)
		c.Assert(a.PopCount(), qt.Equals, uint32(bits.OnesCount64(x)))

		n := uint(y % 70)
		c.Assert(a.Shl(n).Uint64(), qt.Equals, shl64(x, n), qt.Commentf("x=%d n=%d", x, n))
		c.Assert(a.Shr(n).Uint64(), qt.Equals, shr64(x, n), qt.Commentf("x=%d n=%d", x, n))

		if x != 0 {
			l, err := a.Log2Floor()
			c.Assert(err, qt.IsNil)
			c.Assert(l, qt.Equals, uint32(bits.Len64(x)-1))
		}
	}
}

func shl64(x uint64, n uint) uint64 {
	if n >= 64 {
		return 0
	}
	return x << n
}

func shr64(x uint64, n uint) uint64 {
	if n >= 64 {
		return 0
	}
	return x >> n
}

func TestU64Log2AndPow2(t *testing.T) {
	c := qt.New(t)
	_, err := U64{}.Log2Floor()
	c.Assert(errors.Is(err, ErrLog2Zero), qt.IsTrue)

	for n := uint32(0); n < 64; n++ {
		p, err := Pow2U64(n)
		c.Assert(err, qt.IsNil)
		c.Assert(p.Uint64(), qt.Equals, uint64(1)<<n)
		l, err := p.Log2Floor()
		c.Assert(err, qt.IsNil)
		c.Assert(l, qt.Equals, n)
	}
	_, err = Pow2U64(64)
	c.Assert(errors.Is(err, ErrExponentOutOfRange), qt.IsTrue)
}

var mask128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

func randU128(rng *rand.Rand) U128 {
	switch rng.IntN(6) {
	case 0:
		return U128{}
	case 1:
		return NewU128(^uint64(0), ^uint64(0))
	case 2:
		return NewU128(rng.Uint64(), 0)
	}
	return NewU128(rng.Uint64(), rng.Uint64())
}

func TestU128AgainstUint256(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		a, b := randU128(rng), randU128(rng)
		x, y := a.ToUint256(), b.ToUint256()

		want := new(uint256.Int).Add(x, y)
		sum, carry := a.AddWithCarry(b)
		c.Assert(sum.ToUint256().Eq(new(uint256.Int).And(want, mask128)), qt.IsTrue)
		c.Assert(carry == 1, qt.Equals, want.BitLen() > 128)

		diff, borrow := a.SubWithBorrow(b)
		wantDiff := new(uint256.Int).And(new(uint256.Int).Sub(x, y), mask128)
		c.Assert(diff.ToUint256().Eq(wantDiff), qt.IsTrue)
		c.Assert(borrow == 1, qt.Equals, x.Lt(y))

		c.Assert(a.Cmp(b), qt.Equals, x.Cmp(y))
		c.Assert(a.And(b).ToUint256().Eq(new(uint256.Int).And(x, y)), qt.IsTrue)

		n := uint(rng.IntN(140))
		wantShl := new(uint256.Int).And(new(uint256.Int).Lsh(x, n), mask128)
		c.Assert(a.Shl(n).ToUint256().Eq(wantShl), qt.IsTrue, qt.Commentf("a=%s n=%d", a, n))
		c.Assert(a.Shr(n).ToUint256().Eq(new(uint256.Int).Rsh(x, n)), qt.IsTrue, qt.Commentf("a=%s n=%d", a, n))

		m := uint(rng.IntN(130))
		wantMask := x
		if m < 128 {
			bound := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), m), uint256.NewInt(1))
			wantMask = new(uint256.Int).And(x, bound)
		}
		c.Assert(a.Mask(m).ToUint256().Eq(wantMask), qt.IsTrue, qt.Commentf("a=%s m=%d", a, m))

		if !a.IsZero() {
			l, err := a.Log2Floor()
			c.Assert(err, qt.IsNil)
			c.Assert(int(l), qt.Equals, x.BitLen()-1)
		}
		c.Assert(U128FromUint256(x), qt.Equals, a)
	}
}

func TestU128Pow2AndString(t *testing.T) {
	c := qt.New(t)
	p, err := Pow2U128(100)
	c.Assert(err, qt.IsNil)
	c.Assert(p.String(), qt.Equals, "1267650600228229401496703205376")
	c.Assert(p.PopCount(), qt.Equals, uint32(1))
	_, err = Pow2U128(128)
	c.Assert(errors.Is(err, ErrExponentOutOfRange), qt.IsTrue)
	_, err = U128{}.Log2Floor()
	c.Assert(errors.Is(err, ErrLog2Zero), qt.IsTrue)
	c.Assert(U128FromU64(NewU64(42)).String(), qt.Equals, "42")
}

func TestElementConversions(t *testing.T) {
	c := qt.New(t)
	a := NewU64(0x1234567890abcdef)
	e := a.Elements()
	back, err := U64FromElements(e[0], e[1])
	c.Assert(err, qt.IsNil)
	c.Assert(back, qt.Equals, a)

	w := NewU128(0xdeadbeefcafebabe, 0x0123456789abcdef)
	back128, err := U128FromElements(w.Elements())
	c.Assert(err, qt.IsNil)
	c.Assert(back128, qt.Equals, w)

	_, err = U64FromElements(goldilocks.NewElement(1<<32), goldilocks.NewElement(0))
	c.Assert(errors.Is(err, ErrNotU32), qt.IsTrue)
}
