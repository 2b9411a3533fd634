package programs

import (
	"time"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/rs/zerolog"
	"github.com/vocdoni/mutator-set-programs/codec"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

// Claim is the statement proven by an accepted run: the program identified
// by ProgramDigest maps the public Input to Output.
type Claim struct {
	ProgramDigest sponge.Digest
	Input         []goldilocks.Element
	Output        []goldilocks.Element
}

func (c *Claim) Encode(e *codec.Encoder) {
	e.Digest(c.ProgramDigest)
	e.Sized(func(e *codec.Encoder) {
		codec.WriteList(e, c.Input, false, (*codec.Encoder).Element)
	})
	e.Sized(func(e *codec.Encoder) {
		codec.WriteList(e, c.Output, false, (*codec.Encoder).Element)
	})
}

// Hash commits to the claim.
func (c *Claim) Hash() sponge.Digest {
	return sponge.HashVarlen(codec.Encode(c))
}

// programDigest identifies a program by the hash of its name.
func programDigest(name string) sponge.Digest {
	elems := make([]goldilocks.Element, len(name))
	for i := 0; i < len(name); i++ {
		elems[i].SetUint64(uint64(name[i]))
	}
	return sponge.HashVarlen(elems)
}

// observe records the outcome of a run in the metrics and the log.
func observe(logger zerolog.Logger, program string, start time.Time, err error) {
	RunsTotal.WithLabelValues(program, outcome(err)).Inc()
	RunDuration.WithLabelValues(program).Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Debug().Err(err).Str("program", program).Msg("rejected")
		return
	}
	logger.Debug().Str("program", program).Dur("took", time.Since(start)).Msg("accepted")
}
