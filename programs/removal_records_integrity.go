package programs

import (
	"time"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/codec"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
	"github.com/vocdoni/mutator-set-programs/mmr"
	"github.com/vocdoni/mutator-set-programs/mutatorset"
)

const removalRecordsIntegrityName = "removal_records_integrity"

// RemovalRecordsIntegrityDigest identifies the RemovalRecordsIntegrity
// program in its claims.
var RemovalRecordsIntegrityDigest = programDigest(removalRecordsIntegrityName)

// RemovalRecordsIntegrityWitness is the secret input of the program: the
// output being spent, the data needed to recompute its commitment and its
// indices, and the accumulator it is a member of.
type RemovalRecordsIntegrityWitness struct {
	Utxo                mutatorset.Utxo
	SenderRandomness    sponge.Digest
	ReceiverPreimage    sponge.Digest
	AoclLeafIndex       arith.U64
	AoclMembershipProof mmr.MembershipProof
	Accumulator         mutatorset.Accumulator
	TargetChunks        mutatorset.ChunkDictionary
}

func RemovalRecordsIntegrityWitnessShape() codec.Shape {
	return codec.Named("removal_records_integrity_witness", codec.Tuple(
		codec.Named("utxo", mutatorset.UtxoShape()),
		codec.Named("sender_randomness", codec.Digest()),
		codec.Named("receiver_preimage", codec.Digest()),
		codec.Named("aocl_leaf_index", codec.U64()),
		codec.Named("aocl_membership_proof", mmr.MembershipProofShape()),
		codec.Named("accumulator", mutatorset.AccumulatorShape()),
		codec.Named("target_chunks", mutatorset.ChunkDictionaryShape()),
	))
}

func (w *RemovalRecordsIntegrityWitness) Encode(e *codec.Encoder) {
	e.Sized(w.Utxo.Encode)
	e.Digest(w.SenderRandomness)
	e.Digest(w.ReceiverPreimage)
	e.U64(w.AoclLeafIndex)
	e.Sized(w.AoclMembershipProof.Encode)
	e.Sized(w.Accumulator.Encode)
	e.Sized(w.TargetChunks.Encode)
}

func (w *RemovalRecordsIntegrityWitness) Decode(r *codec.Reader) error {
	var err error
	if err = r.Sized(w.Utxo.Decode); err != nil {
		return err
	}
	if w.SenderRandomness, err = r.Digest(); err != nil {
		return err
	}
	if w.ReceiverPreimage, err = r.Digest(); err != nil {
		return err
	}
	if w.AoclLeafIndex, err = r.U64(); err != nil {
		return err
	}
	if err = r.Sized(w.AoclMembershipProof.Decode); err != nil {
		return err
	}
	if err = r.Sized(w.Accumulator.Decode); err != nil {
		return err
	}
	return r.Sized(func(r *codec.Reader) error {
		w.TargetChunks, err = mutatorset.DecodeChunkDictionary(r)
		return err
	})
}

// RemovalRecordsIntegrityInput is the public input of the program: the
// commitment of the accumulator and the index set of the removal record.
type RemovalRecordsIntegrityInput struct {
	AccumulatorHash sponge.Digest
	AbsoluteIndices mutatorset.AbsoluteIndexSet
}

func (in *RemovalRecordsIntegrityInput) Encode(e *codec.Encoder) {
	e.Digest(in.AccumulatorHash)
	in.AbsoluteIndices.Encode(e)
}

// RemovalRecordsIntegrity checks that a removal record is consistent with a
// member of the accumulator.
type RemovalRecordsIntegrity struct {
	cfg config
}

func NewRemovalRecordsIntegrity(opts ...Option) *RemovalRecordsIntegrity {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RemovalRecordsIntegrity{cfg: cfg}
}

// Run executes the program on a witness tape. On success it returns the
// claim whose output is the hash of the index set.
func (p *RemovalRecordsIntegrity) Run(tape []goldilocks.Element, public RemovalRecordsIntegrityInput) (claim *Claim, err error) {
	start := time.Now()
	defer func() { observe(p.cfg.logger, removalRecordsIntegrityName, start, err) }()
	log := p.cfg.logger.With().Str("program", removalRecordsIntegrityName).Logger()

	if err := p.cfg.params.Validate(); err != nil {
		return nil, err
	}
	var w RemovalRecordsIntegrityWitness
	if err := codec.Decode(tape, RemovalRecordsIntegrityWitnessShape(), &w); err != nil {
		return nil, err
	}
	log.Debug().Str("phase", "integrity").Int("tape", len(tape)).Msg("witness verified")

	acc := &w.Accumulator
	if err := acc.Validate(); err != nil {
		return nil, assertionErrorf("malformed accumulator: %v", err)
	}
	item := w.Utxo.Hash()
	commitment := mutatorset.Commit(item, w.SenderRandomness, mutatorset.ReceiverDigest(w.ReceiverPreimage))

	if !w.AoclLeafIndex.Eq(w.AoclMembershipProof.LeafIndex) {
		return nil, assertionErrorf("aocl leaf index %s differs from the proof leaf index %s",
			w.AoclLeafIndex, w.AoclMembershipProof.LeafIndex)
	}
	if !acc.Aocl.Verify(commitment, &w.AoclMembershipProof) {
		return nil, assertionErrorf("commitment is not a member of the aocl at leaf %s", w.AoclLeafIndex)
	}
	log.Debug().Str("phase", "membership").Stringer("commitment", commitment).Msg("aocl membership verified")

	if got := acc.Hash(); !got.Equal(public.AccumulatorHash) {
		return nil, assertionErrorf("accumulator hash %s, want %s", got, public.AccumulatorHash)
	}

	indices, err := mutatorset.GetSwbfIndices(item, w.SenderRandomness, w.ReceiverPreimage, w.AoclLeafIndex, p.cfg.params)
	if err != nil {
		return nil, err
	}
	if !indices.Equal(public.AbsoluteIndices) {
		return nil, assertionErrorf("derived index set differs from the public one")
	}
	log.Debug().Str("phase", "indices").Int("indices", len(indices)).Msg("index set verified")

	if err := p.checkTargetChunks(acc, indices, w.TargetChunks); err != nil {
		return nil, err
	}

	in := codec.Encode(&public)
	return &Claim{
		ProgramDigest: RemovalRecordsIntegrityDigest,
		Input:         in,
		Output:        indices.Hash().Elements(),
	}, nil
}

// checkTargetChunks asserts that every chunk of the dictionary authenticates
// against the inactive part of the filter, and that every index falling in
// the inactive part has its chunk in the dictionary.
func (p *RemovalRecordsIntegrity) checkTargetChunks(acc *mutatorset.Accumulator,
	indices mutatorset.AbsoluteIndexSet, chunks mutatorset.ChunkDictionary,
) error {
	for i := range chunks {
		entry := &chunks[i]
		if err := entry.Chunk.Validate(p.cfg.params); err != nil {
			return assertionErrorf("chunk %s: %v", entry.ChunkIndex, err)
		}
		if !entry.ChunkIndex.Eq(entry.Proof.LeafIndex) {
			return assertionErrorf("chunk %s is proven at leaf %s", entry.ChunkIndex, entry.Proof.LeafIndex)
		}
		if !acc.SwbfInactive.Verify(entry.Chunk.Hash(), &entry.Proof) {
			return assertionErrorf("chunk %s is not a member of the inactive window", entry.ChunkIndex)
		}
	}
	boundary := acc.InactiveBoundary()
	for _, index := range indices {
		chunkIndex, _, err := mutatorset.ChunkIndex(index, p.cfg.params)
		if err != nil {
			return assertionErrorf("index %s: %v", index, err)
		}
		if !chunkIndex.Lt(boundary) {
			continue
		}
		if _, ok := chunks.Lookup(chunkIndex); !ok {
			return assertionErrorf("missing chunk %s of index %s", chunkIndex, index)
		}
	}
	return nil
}
