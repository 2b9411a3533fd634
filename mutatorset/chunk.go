package mutatorset

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/codec"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
	"github.com/vocdoni/mutator-set-programs/mmr"
)

// ErrInvalidChunk is returned for chunks whose indices are not sorted or do
// not fit in a chunk.
var ErrInvalidChunk = errors.New("invalid chunk")

// Chunk is a segment of the inactive part of the Bloom filter, stored as the
// sorted list of the positions of its set bits. Its hash is a leaf of the
// inactive window MMR.
type Chunk struct {
	RelativeIndices []uint32
}

func ChunkShape() codec.Shape {
	return codec.Named("chunk", codec.Tuple(
		codec.Named("relative_indices", codec.List(codec.U32())),
	))
}

func (c *Chunk) Encode(e *codec.Encoder) {
	e.Sized(func(e *codec.Encoder) {
		codec.WriteList(e, c.RelativeIndices, false, (*codec.Encoder).Uint32)
	})
}

func (c *Chunk) Decode(r *codec.Reader) error {
	return r.Sized(func(r *codec.Reader) error {
		var err error
		c.RelativeIndices, err = codec.ReadList(r, false, (*codec.Reader).Uint32)
		return err
	})
}

// Hash returns the MMR leaf of the chunk.
func (c *Chunk) Hash() sponge.Digest {
	return sponge.HashVarlen(codec.Encode(c))
}

// Validate checks that the indices are sorted and below the chunk size.
func (c *Chunk) Validate(params Parameters) error {
	for i, v := range c.RelativeIndices {
		if v >= params.ChunkSize() {
			return errors.Wrapf(ErrInvalidChunk, "index %d out of a chunk of %d bits", v, params.ChunkSize())
		}
		if i > 0 && c.RelativeIndices[i-1] > v {
			return errors.Wrapf(ErrInvalidChunk, "indices not sorted at position %d", i)
		}
	}
	return nil
}

// Contains reports whether the bit at position relative is set.
func (c *Chunk) Contains(relative uint32) bool {
	_, found := slices.BinarySearch(c.RelativeIndices, relative)
	return found
}

// Insert sets the bit at position relative, keeping the indices sorted.
func (c *Chunk) Insert(relative uint32) {
	i, _ := slices.BinarySearch(c.RelativeIndices, relative)
	c.RelativeIndices = slices.Insert(c.RelativeIndices, i, relative)
}

// ChunkEntry is a chunk together with the proof that authenticates it
// against the inactive window MMR.
type ChunkEntry struct {
	ChunkIndex arith.U64
	Proof      mmr.MembershipProof
	Chunk      Chunk
}

// ChunkDictionary holds the chunks touched by a removal record.
type ChunkDictionary []ChunkEntry

func ChunkEntryShape() codec.Shape {
	return codec.Named("chunk_entry", codec.Tuple(
		codec.Named("chunk_index", codec.U64()),
		codec.Named("membership_proof", mmr.MembershipProofShape()),
		codec.Named("chunk", ChunkShape()),
	))
}

func ChunkDictionaryShape() codec.Shape {
	return codec.Named("chunk_dictionary", codec.List(ChunkEntryShape()))
}

func (ce *ChunkEntry) Encode(e *codec.Encoder) {
	e.U64(ce.ChunkIndex)
	e.Sized(ce.Proof.Encode)
	e.Sized(ce.Chunk.Encode)
}

func (ce *ChunkEntry) Decode(r *codec.Reader) error {
	var err error
	if ce.ChunkIndex, err = r.U64(); err != nil {
		return err
	}
	if err := r.Sized(ce.Proof.Decode); err != nil {
		return err
	}
	return r.Sized(ce.Chunk.Decode)
}

func (d ChunkDictionary) Encode(e *codec.Encoder) {
	codec.WriteList(e, d, true, func(e *codec.Encoder, ce ChunkEntry) { ce.Encode(e) })
}

// DecodeChunkDictionary reads a dictionary written by Encode.
func DecodeChunkDictionary(r *codec.Reader) (ChunkDictionary, error) {
	return codec.ReadList(r, true, func(r *codec.Reader) (ChunkEntry, error) {
		var ce ChunkEntry
		err := ce.Decode(r)
		return ce, err
	})
}

// Lookup returns the entry of the chunk with the given index.
func (d ChunkDictionary) Lookup(chunkIndex arith.U64) (*ChunkEntry, bool) {
	for i := range d {
		if d[i].ChunkIndex.Eq(chunkIndex) {
			return &d[i], true
		}
	}
	return nil, false
}

// RemovalRecord is the token published when an output is spent: its
// absolute indices and the chunks of the inactive window they fall in.
type RemovalRecord struct {
	AbsoluteIndices AbsoluteIndexSet
	TargetChunks    ChunkDictionary
}

func RemovalRecordShape(params Parameters) codec.Shape {
	return codec.Named("removal_record", codec.Tuple(
		codec.Named("absolute_indices", AbsoluteIndexSetShape(params.NumTrials)),
		codec.Named("target_chunks", ChunkDictionaryShape()),
	))
}

func (rr *RemovalRecord) Encode(e *codec.Encoder) {
	rr.AbsoluteIndices.Encode(e)
	e.Sized(rr.TargetChunks.Encode)
}

// DecodeRemovalRecord reads a removal record with params.NumTrials indices.
func DecodeRemovalRecord(r *codec.Reader, params Parameters) (RemovalRecord, error) {
	var (
		rr  RemovalRecord
		err error
	)
	if rr.AbsoluteIndices, err = DecodeAbsoluteIndexSet(r, params.NumTrials); err != nil {
		return rr, err
	}
	err = r.Sized(func(r *codec.Reader) error {
		rr.TargetChunks, err = DecodeChunkDictionary(r)
		return err
	})
	return rr, err
}
