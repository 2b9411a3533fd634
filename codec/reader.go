package codec

import (
	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

// Decodable is implemented by witness objects that can be read back from a
// tape.
type Decodable interface {
	Decode(r *Reader) error
}

// Decode verifies raw against shape and only then decodes it into v. The
// whole tape must be consumed.
func Decode(raw []goldilocks.Element, shape Shape, v Decodable) error {
	if err := Verify(raw, shape); err != nil {
		return err
	}
	r := NewReader(raw)
	if err := v.Decode(r); err != nil {
		return err
	}
	return r.Done()
}

// Reader reads values from a tape in the order they were encoded. All
// errors wrap ErrIntegrity.
type Reader struct {
	raw []goldilocks.Element
	pos int
}

func NewReader(raw []goldilocks.Element) *Reader {
	return &Reader{raw: raw}
}

// Remaining returns the number of unread elements.
func (r *Reader) Remaining() int {
	return len(r.raw) - r.pos
}

// Done fails if some elements were not read.
func (r *Reader) Done() error {
	if n := r.Remaining(); n != 0 {
		return errors.Wrapf(ErrIntegrity, "%d unread elements", n)
	}
	return nil
}

func (r *Reader) take(n int) ([]goldilocks.Element, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errors.Wrapf(ErrIntegrity, "reading %d elements at offset %d of %d", n, r.pos, len(r.raw))
	}
	out := r.raw[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *Reader) Element() (goldilocks.Element, error) {
	v, err := r.take(1)
	if err != nil {
		return goldilocks.Element{}, err
	}
	return v[0], nil
}

func (r *Reader) Uint32() (uint32, error) {
	v, err := r.Element()
	if err != nil {
		return 0, err
	}
	limb, err := arith.LimbFromElement(v)
	if err != nil {
		return 0, errors.Wrap(ErrIntegrity, err.Error())
	}
	return limb, nil
}

func (r *Reader) U64() (arith.U64, error) {
	v, err := r.take(2)
	if err != nil {
		return arith.U64{}, err
	}
	out, err := arith.U64FromElements(v[0], v[1])
	if err != nil {
		return arith.U64{}, errors.Wrap(ErrIntegrity, err.Error())
	}
	return out, nil
}

func (r *Reader) U128() (arith.U128, error) {
	v, err := r.take(4)
	if err != nil {
		return arith.U128{}, err
	}
	out, err := arith.U128FromElements([4]goldilocks.Element(v))
	if err != nil {
		return arith.U128{}, errors.Wrap(ErrIntegrity, err.Error())
	}
	return out, nil
}

func (r *Reader) Digest() (sponge.Digest, error) {
	v, err := r.take(sponge.DigestLen)
	if err != nil {
		return sponge.Digest{}, err
	}
	return sponge.Digest(v), nil
}

// Length reads an item count or a size indicator.
func (r *Reader) Length() (int, error) {
	v, err := r.Element()
	if err != nil {
		return 0, err
	}
	n := v.Uint64()
	if n > uint64(r.Remaining()) {
		return 0, errors.Wrapf(ErrIntegrity, "length %d exceeds the %d remaining elements", n, r.Remaining())
	}
	return int(n), nil
}

// Sized reads a size indicator and decodes the following value with fn,
// which must consume exactly that many elements.
func (r *Reader) Sized(fn func(*Reader) error) error {
	n, err := r.Length()
	if err != nil {
		return err
	}
	body, err := r.take(n)
	if err != nil {
		return err
	}
	sub := NewReader(body)
	if err := fn(sub); err != nil {
		return err
	}
	return sub.Done()
}

// Option reads an option tag and reports whether a payload follows.
func (r *Reader) Option() (bool, error) {
	v, err := r.Element()
	if err != nil {
		return false, err
	}
	switch v.Uint64() {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errors.Wrapf(ErrIntegrity, "invalid option tag %d", v.Uint64())
}

// ReadList reads a list written by WriteList.
func ReadList[T any](r *Reader, dynamic bool, fn func(*Reader) (T, error)) ([]T, error) {
	n, err := r.Length()
	if err != nil {
		return nil, err
	}
	out := make([]T, n)
	for i := range out {
		if dynamic {
			err = r.Sized(func(r *Reader) error {
				var err error
				out[i], err = fn(r)
				return err
			})
		} else {
			out[i], err = fn(r)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
