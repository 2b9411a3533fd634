// Package codec describes how witness objects are laid out on the input tape
// as sequences of Goldilocks elements, and verifies the structural integrity
// of a tape against such a description before anything is decoded.
//
// The layout rules are:
//   - statically sized values are written inline;
//   - a dynamically sized tuple field is preceded by its length in elements;
//   - a list starts with its item count, and every dynamically sized item is
//     preceded by its own length;
//   - an option is a tag, 0 for none (nothing follows) or 1 followed by the
//     payload;
//   - an array is a fixed number of items without count.
package codec

import "fmt"

// Kind identifies the layout rule of a Shape.
type Kind uint8

const (
	KindElement Kind = iota
	KindU32
	KindArray
	KindTuple
	KindOption
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindU32:
		return "u32"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindOption:
		return "option"
	case KindList:
		return "list"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Shape is a declarative description of a serialized object. Shapes are
// values and can be freely shared between descriptions.
type Shape struct {
	Kind   Kind
	Name   string
	Inner  *Shape
	Fields []Shape
	Len    int
}

// Element is a single field element with no range restriction.
func Element() Shape { return Shape{Kind: KindElement, Name: "element"} }

// U32 is a single field element that must be lower than 2^32.
func U32() Shape { return Shape{Kind: KindU32, Name: "u32"} }

// Array is n consecutive items of the inner shape.
func Array(inner Shape, n int) Shape {
	return Shape{Kind: KindArray, Name: fmt.Sprintf("[%s; %d]", inner.Name, n), Inner: &inner, Len: n}
}

// Tuple is a record whose fields are laid out in order.
func Tuple(fields ...Shape) Shape {
	return Shape{Kind: KindTuple, Name: "tuple", Fields: fields}
}

// Option is a tagged optional value.
func Option(inner Shape) Shape {
	return Shape{Kind: KindOption, Name: "option<" + inner.Name + ">", Inner: &inner}
}

// List is a counted sequence of items of the inner shape.
func List(inner Shape) Shape {
	return Shape{Kind: KindList, Name: "list<" + inner.Name + ">", Inner: &inner}
}

// Digest is four field elements.
func Digest() Shape { return Named("digest", Array(Element(), 4)) }

// U64 is two u32 limbs, least significant first.
func U64() Shape { return Named("u64", Array(U32(), 2)) }

// U128 is four u32 limbs, least significant first.
func U128() Shape { return Named("u128", Array(U32(), 4)) }

// Named returns s labelled with name, the label is used in error paths.
func Named(name string, s Shape) Shape {
	s.Name = name
	return s
}

// StaticSize returns the encoded size of s and true when it does not depend
// on the encoded value.
func (s Shape) StaticSize() (int, bool) {
	switch s.Kind {
	case KindElement, KindU32:
		return 1, true
	case KindArray:
		n, ok := s.Inner.StaticSize()
		return n * s.Len, ok
	case KindTuple:
		total := 0
		for _, f := range s.Fields {
			n, ok := f.StaticSize()
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	}
	return 0, false
}
