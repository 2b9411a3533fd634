package mutatorset

import (
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/codec"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
	"github.com/vocdoni/mutator-set-programs/mmr"
)

// Accumulator is a read-only snapshot of the mutator set: the append-only
// commitment list, the MMR of the chunks that left the active window and the
// digest of the active window itself.
type Accumulator struct {
	Aocl         mmr.Snapshot
	SwbfInactive mmr.Snapshot
	SwbfActive   sponge.Digest
}

func AccumulatorShape() codec.Shape {
	return codec.Named("mutator_set_accumulator", codec.Tuple(
		codec.Named("aocl", mmr.SnapshotShape()),
		codec.Named("swbf_inactive", mmr.SnapshotShape()),
		codec.Named("swbf_active", codec.Digest()),
	))
}

func (a *Accumulator) Encode(e *codec.Encoder) {
	e.Sized(a.Aocl.Encode)
	e.Sized(a.SwbfInactive.Encode)
	e.Digest(a.SwbfActive)
}

func (a *Accumulator) Decode(r *codec.Reader) error {
	if err := r.Sized(a.Aocl.Decode); err != nil {
		return err
	}
	if err := r.Sized(a.SwbfInactive.Decode); err != nil {
		return err
	}
	var err error
	a.SwbfActive, err = r.Digest()
	return err
}

// Validate checks the peak counts of both ranges.
func (a *Accumulator) Validate() error {
	if err := a.Aocl.Validate(); err != nil {
		return errors.Wrap(err, "aocl")
	}
	if err := a.SwbfInactive.Validate(); err != nil {
		return errors.Wrap(err, "swbf inactive")
	}
	return nil
}

// Hash is the public commitment of the accumulator:
//
//	HashPair(HashPair(bag(aocl), bag(swbfInactive)), HashPair(swbfActive, 0))
func (a *Accumulator) Hash() sponge.Digest {
	return sponge.HashPair(
		sponge.HashPair(a.Aocl.Bag(), a.SwbfInactive.Bag()),
		sponge.HashPair(a.SwbfActive, sponge.Digest{}),
	)
}

// InactiveBoundary is the number of chunks that left the active window.
// Absolute indices whose chunk index is lower live in the inactive MMR.
func (a *Accumulator) InactiveBoundary() arith.U64 {
	return a.SwbfInactive.LeafCount
}
