package codec

import (
	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

// Encodable is implemented by every witness object that can be written to
// an input tape.
type Encodable interface {
	Encode(e *Encoder)
}

// Encoder appends the encoding of values to a growing tape.
type Encoder struct {
	buf []goldilocks.Element
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode returns the tape of a single value.
func Encode(v Encodable) []goldilocks.Element {
	e := NewEncoder()
	v.Encode(e)
	return e.Elements()
}

// Elements returns the tape written so far.
func (e *Encoder) Elements() []goldilocks.Element {
	return e.buf
}

// Len returns the number of elements written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) Element(v goldilocks.Element) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) Uint64(v uint64) {
	var el goldilocks.Element
	el.SetUint64(v)
	e.buf = append(e.buf, el)
}

func (e *Encoder) Uint32(v uint32) {
	e.Uint64(uint64(v))
}

func (e *Encoder) U64(v arith.U64) {
	limbs := v.Elements()
	e.buf = append(e.buf, limbs[:]...)
}

func (e *Encoder) U128(v arith.U128) {
	limbs := v.Elements()
	e.buf = append(e.buf, limbs[:]...)
}

func (e *Encoder) Digest(d sponge.Digest) {
	e.buf = append(e.buf, d[:]...)
}

// Length writes an item count or a size indicator.
func (e *Encoder) Length(n int) {
	e.Uint64(uint64(n))
}

// Sized writes the elements produced by fn preceded by their number. It is
// how dynamically sized tuple fields and list items are written.
func (e *Encoder) Sized(fn func(*Encoder)) {
	at := len(e.buf)
	e.buf = append(e.buf, goldilocks.Element{})
	fn(e)
	e.buf[at].SetUint64(uint64(len(e.buf) - at - 1))
}

// None writes an empty option.
func (e *Encoder) None() {
	e.Uint64(0)
}

// Some writes a present option whose payload is produced by fn.
func (e *Encoder) Some(fn func(*Encoder)) {
	e.Uint64(1)
	fn(e)
}

// WriteList writes a counted list. When dynamic is set every item is
// preceded by its size, as the layout rules require for items whose size
// depends on their value.
func WriteList[T any](e *Encoder, items []T, dynamic bool, fn func(*Encoder, T)) {
	e.Length(len(items))
	for _, item := range items {
		if dynamic {
			e.Sized(func(e *Encoder) { fn(e, item) })
		} else {
			fn(e, item)
		}
	}
}
