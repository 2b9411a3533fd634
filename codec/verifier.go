package codec

import (
	"fmt"
	"strconv"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/pkg/errors"
)

// MaxDepth bounds the nesting of shapes accepted by Verify.
const MaxDepth = 32

// ErrIntegrity is wrapped by every error caused by a malformed tape.
var ErrIntegrity = errors.New("structural integrity violation")

func integrityErrorf(path, format string, args ...any) error {
	return errors.Wrapf(ErrIntegrity, "%s: %s", path, fmt.Sprintf(format, args...))
}

// Verify checks that raw is exactly one encoding of shape: every declared
// length matches the size actually consumed by the nested value, option tags
// are 0 or 1, u32 limbs are in range and no element is left over.
func Verify(raw []goldilocks.Element, shape Shape) error {
	n, err := consume(raw, shape, shape.Name, 0)
	if err != nil {
		return err
	}
	if n != len(raw) {
		return integrityErrorf(shape.Name, "%d trailing elements", len(raw)-n)
	}
	return nil
}

// consume walks the encoding of s at the start of raw and returns how many
// elements it takes.
func consume(raw []goldilocks.Element, s Shape, path string, depth int) (int, error) {
	if depth > MaxDepth {
		return 0, integrityErrorf(path, "nesting deeper than %d", MaxDepth)
	}
	switch s.Kind {
	case KindElement:
		if len(raw) < 1 {
			return 0, integrityErrorf(path, "unexpected end of input")
		}
		return 1, nil
	case KindU32:
		if len(raw) < 1 {
			return 0, integrityErrorf(path, "unexpected end of input")
		}
		if v := raw[0].Uint64(); v > 0xffffffff {
			return 0, integrityErrorf(path, "value %d is not a u32", v)
		}
		return 1, nil
	case KindArray:
		pos := 0
		for i := 0; i < s.Len; i++ {
			n, err := consume(raw[pos:], *s.Inner, path+"["+strconv.Itoa(i)+"]", depth+1)
			if err != nil {
				return 0, err
			}
			pos += n
		}
		return pos, nil
	case KindTuple:
		pos := 0
		for i, f := range s.Fields {
			fpath := path + "." + f.Name
			if f.Name == "" {
				fpath = path + "." + strconv.Itoa(i)
			}
			var (
				n   int
				err error
			)
			if _, static := f.StaticSize(); static {
				n, err = consume(raw[pos:], f, fpath, depth+1)
			} else {
				n, err = consumeSized(raw[pos:], f, fpath, depth+1)
			}
			if err != nil {
				return 0, err
			}
			pos += n
		}
		return pos, nil
	case KindOption:
		if len(raw) < 1 {
			return 0, integrityErrorf(path, "unexpected end of input")
		}
		switch tag := raw[0].Uint64(); tag {
		case 0:
			return 1, nil
		case 1:
			n, err := consume(raw[1:], *s.Inner, path, depth+1)
			if err != nil {
				return 0, err
			}
			return 1 + n, nil
		default:
			return 0, integrityErrorf(path, "invalid option tag %d", tag)
		}
	case KindList:
		count, err := readLength(raw, path)
		if err != nil {
			return 0, err
		}
		pos := 1
		size, static := s.Inner.StaticSize()
		if static && size == 0 {
			// zero-size items carry nothing to check
			return pos, nil
		}
		// every remaining item takes at least one element, so the count cannot
		// exceed what is left of the input
		if count > len(raw)-pos {
			return 0, integrityErrorf(path, "declared %d items but only %d elements remain", count, len(raw)-pos)
		}
		for i := 0; i < count; i++ {
			ipath := path + "[" + strconv.Itoa(i) + "]"
			var n int
			if static {
				n, err = consume(raw[pos:], *s.Inner, ipath, depth+1)
			} else {
				n, err = consumeSized(raw[pos:], *s.Inner, ipath, depth+1)
			}
			if err != nil {
				return 0, err
			}
			pos += n
		}
		return pos, nil
	}
	return 0, integrityErrorf(path, "unknown shape kind %s", s.Kind)
}

// consumeSized reads a length indicator and checks that the value following
// it takes exactly that many elements.
func consumeSized(raw []goldilocks.Element, s Shape, path string, depth int) (int, error) {
	size, err := readLength(raw, path)
	if err != nil {
		return 0, err
	}
	if size > len(raw)-1 {
		return 0, integrityErrorf(path, "declared size %d exceeds the %d remaining elements", size, len(raw)-1)
	}
	n, err := consume(raw[1:1+size], s, path, depth)
	if err != nil {
		return 0, err
	}
	if n != size {
		return 0, integrityErrorf(path, "declared size %d but the value takes %d elements", size, n)
	}
	return 1 + size, nil
}

func readLength(raw []goldilocks.Element, path string) (int, error) {
	if len(raw) < 1 {
		return 0, integrityErrorf(path, "unexpected end of input")
	}
	v := raw[0].Uint64()
	if v > uint64(len(raw)) {
		return 0, integrityErrorf(path, "length indicator %d exceeds the input size", v)
	}
	return int(v), nil
}
