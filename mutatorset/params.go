// Package mutatorset holds the data model of the mutator set, the
// authenticated set that tracks unspent outputs: the canonical commitment of
// an output, the derivation of its sliding window Bloom filter indices and
// the accumulator snapshot against which removal records are checked.
package mutatorset

import (
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/arith"
)

// ErrInvalidParameters is returned by Parameters.Validate.
var ErrInvalidParameters = errors.New("invalid mutator set parameters")

// Parameters configures the sliding window Bloom filter. All sizes are
// powers of two and are given by their base 2 logarithm.
type Parameters struct {
	// WindowBits is log2 of the number of bits of the active window.
	WindowBits uint32
	// NumTrials is the number of indices derived for every item.
	NumTrials uint32
	// ChunkBits is log2 of the number of bits of a chunk.
	ChunkBits uint32
	// BatchBits is log2 of the number of insertions after which the window
	// slides by one chunk.
	BatchBits uint32
}

// DefaultParameters returns a window of 2^20 bits, 45 trials, chunks of
// 2^12 bits and batches of 8 insertions.
func DefaultParameters() Parameters {
	return Parameters{
		WindowBits: 20,
		NumTrials:  45,
		ChunkBits:  12,
		BatchBits:  3,
	}
}

func (p Parameters) Validate() error {
	switch {
	case p.WindowBits == 0 || p.WindowBits > 32:
		return errors.Wrapf(ErrInvalidParameters, "window bits %d not in [1, 32]", p.WindowBits)
	case p.NumTrials == 0:
		return errors.Wrap(ErrInvalidParameters, "zero trials")
	case p.ChunkBits > p.WindowBits:
		return errors.Wrapf(ErrInvalidParameters, "chunk bits %d larger than window bits %d", p.ChunkBits, p.WindowBits)
	case p.BatchBits >= 64:
		return errors.Wrapf(ErrInvalidParameters, "batch bits %d", p.BatchBits)
	}
	return nil
}

// ChunkSize is the number of bits of a chunk.
func (p Parameters) ChunkSize() uint32 {
	return 1 << p.ChunkBits
}

// BatchOffset returns the first absolute index of the window in use when the
// item with the given leaf index in the append-only commitment list was
// added.
func (p Parameters) BatchOffset(aoclLeafIndex arith.U64) arith.U128 {
	return arith.U128FromU64(aoclLeafIndex.Shr(uint(p.BatchBits))).Shl(uint(p.ChunkBits))
}
