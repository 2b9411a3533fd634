// Package programs contains the two witness programs of the mutator set:
// RemovalRecordsIntegrity, which proves that a removal record was derived
// from a genuine member of the accumulator, and KernelToOutputs, which proves
// that the outputs of a transaction kernel are the canonical commitments of
// the claimed outputs.
//
// Both programs follow the same steps: read the witness tape, verify its
// structural integrity, compute the cryptographic values and assert they
// equal the public ones. Any failure is final, there is no retry nor partial
// result.
package programs

import (
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/codec"
)

var (
	// ErrIntegrity is returned when the witness tape is malformed. It is the
	// same error returned by the codec package.
	ErrIntegrity = codec.ErrIntegrity
	// ErrAssertion is returned when a computed value differs from its
	// public counterpart.
	ErrAssertion = errors.New("assertion failed")
)

func assertionErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrAssertion, format, args...)
}
