package mutatorset

import (
	"math/rand/v2"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/codec"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
	"github.com/vocdoni/mutator-set-programs/mmr"
)

func randomDigest(rng *rand.Rand) sponge.Digest {
	var d sponge.Digest
	for i := range d {
		d[i].SetUint64(rng.Uint64())
	}
	return d
}

func TestParameters(t *testing.T) {
	c := qt.New(t)
	p := DefaultParameters()
	c.Assert(p.Validate(), qt.IsNil)
	c.Assert(p.ChunkSize(), qt.Equals, uint32(4096))
	// leaf 17 is in batch 2, whose window starts at chunk 2
	c.Assert(p.BatchOffset(arith.NewU64(17)).Lo64(), qt.Equals, uint64(2*4096))

	for _, bad := range []Parameters{
		{WindowBits: 0, NumTrials: 1},
		{WindowBits: 33, NumTrials: 1},
		{WindowBits: 20, NumTrials: 0},
		{WindowBits: 10, NumTrials: 1, ChunkBits: 11},
		{WindowBits: 10, NumTrials: 1, BatchBits: 64},
	} {
		c.Assert(errors.Is(bad.Validate(), ErrInvalidParameters), qt.IsTrue, qt.Commentf("%+v", bad))
	}
}

func TestSampleIndices(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewPCG(1, 2))
	item, randomness := randomDigest(rng), randomDigest(rng)

	for _, bits := range []uint32{1, 5, 20, 32} {
		indices, err := SampleIndices(45, item, randomness, bits)
		c.Assert(err, qt.IsNil)
		c.Assert(indices, qt.HasLen, 45)
		bound, err := arith.Pow2U128(bits)
		c.Assert(err, qt.IsNil)
		for _, v := range indices {
			c.Assert(v.Lt(bound), qt.IsTrue)
		}
		again, err := SampleIndices(45, item, randomness, bits)
		c.Assert(err, qt.IsNil)
		c.Assert(AbsoluteIndexSet(again).Equal(indices), qt.IsTrue)
	}

	// with a two-bit window 45 samples must repeat, and repeats are kept
	indices, err := SampleIndices(45, item, randomness, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(indices, qt.HasLen, 45)
	seen := map[arith.U128]int{}
	for _, v := range indices {
		seen[v]++
	}
	c.Assert(len(seen) <= 4, qt.IsTrue)

	// the i-th index only depends on i
	prefix, err := SampleIndices(10, item, randomness, 20)
	c.Assert(err, qt.IsNil)
	full, err := SampleIndices(45, item, randomness, 20)
	c.Assert(err, qt.IsNil)
	c.Assert(AbsoluteIndexSet(prefix).Equal(full[:10]), qt.IsTrue)

	other, err := SampleIndices(45, item, randomDigest(rng), 20)
	c.Assert(err, qt.IsNil)
	c.Assert(AbsoluteIndexSet(other).Equal(full), qt.IsFalse)

	empty, err := SampleIndices(0, item, randomness, 20)
	c.Assert(err, qt.IsNil)
	c.Assert(empty, qt.HasLen, 0)

	_, err = SampleIndices(1, item, randomness, 0)
	c.Assert(errors.Is(err, ErrInvalidParameters), qt.IsTrue)
	_, err = SampleIndices(1, item, randomness, 33)
	c.Assert(errors.Is(err, ErrInvalidParameters), qt.IsTrue)
}

func TestGetSwbfIndices(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewPCG(3, 4))
	params := DefaultParameters()
	item, sr, rp := randomDigest(rng), randomDigest(rng), randomDigest(rng)

	leaf := arith.NewU64(1000)
	set, err := GetSwbfIndices(item, sr, rp, leaf, params)
	c.Assert(err, qt.IsNil)
	c.Assert(set, qt.HasLen, int(params.NumTrials))

	// the set is the sampler output moved to the window of batch 1000/8
	leafElems := leaf.Elements()
	randomness := sponge.HashVarlen(append(append(sr.Elements(), rp[:]...), leafElems[:]...))
	relative, err := SampleIndices(params.NumTrials, item, randomness, params.WindowBits)
	c.Assert(err, qt.IsNil)
	offset := arith.NewU128(125*4096, 0)
	window := arith.NewU128(1<<20, 0)
	for i := range set {
		c.Assert(set[i], qt.Equals, relative[i].Add(offset))
		c.Assert(set[i].Sub(offset).Lt(window), qt.IsTrue)
	}

	// a different leaf index changes the randomness
	next, err := GetSwbfIndices(item, sr, rp, arith.NewU64(1001), params)
	c.Assert(err, qt.IsNil)
	c.Assert(next.Equal(set), qt.IsFalse)

	_, err = GetSwbfIndices(item, sr, rp, leaf, Parameters{})
	c.Assert(errors.Is(err, ErrInvalidParameters), qt.IsTrue)
}

func TestAbsoluteIndexSetEncoding(t *testing.T) {
	c := qt.New(t)
	set := AbsoluteIndexSet{arith.NewU128(1, 2), arith.NewU128(1<<40, 0), arith.NewU128(0, 0)}
	raw := codec.Encode(set)
	c.Assert(raw, qt.HasLen, 12)
	c.Assert(codec.Verify(raw, AbsoluteIndexSetShape(3)), qt.IsNil)
	c.Assert(errors.Is(codec.Verify(raw, AbsoluteIndexSetShape(4)), codec.ErrIntegrity), qt.IsTrue)

	decoded, err := DecodeAbsoluteIndexSet(codec.NewReader(raw), 3)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.Equal(set), qt.IsTrue)
	c.Assert(decoded.Hash(), qt.Equals, set.Hash())

	swapped := AbsoluteIndexSet{set[1], set[0], set[2]}
	c.Assert(swapped.Hash().Equal(set.Hash()), qt.IsFalse)
}

func TestChunkIndex(t *testing.T) {
	c := qt.New(t)
	params := DefaultParameters()
	chunk, relative, err := ChunkIndex(arith.NewU128(5*4096+17, 0), params)
	c.Assert(err, qt.IsNil)
	c.Assert(chunk.Uint64(), qt.Equals, uint64(5))
	c.Assert(relative, qt.Equals, uint32(17))

	_, _, err = ChunkIndex(arith.NewU128(0, 1<<20), params)
	c.Assert(errors.Is(err, ErrInvalidParameters), qt.IsTrue)
}

func TestCommit(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewPCG(5, 6))
	item, sr, rd := randomDigest(rng), randomDigest(rng), randomDigest(rng)

	var input []goldilocks.Element
	input = append(input, item[:]...)
	input = append(input, sr[:]...)
	input = append(input, rd[:]...)
	c.Assert(Commit(item, sr, rd), qt.Equals, sponge.HashVarlen(input))
	c.Assert(Commit(item, rd, sr).Equal(Commit(item, sr, rd)), qt.IsFalse)
	c.Assert(Commit(sr, item, rd).Equal(Commit(item, sr, rd)), qt.IsFalse)

	seen := make(map[sponge.Digest]struct{})
	for i := 0; i < 2000; i++ {
		d := Commit(randomDigest(rng), randomDigest(rng), randomDigest(rng))
		_, dup := seen[d]
		c.Assert(dup, qt.IsFalse)
		seen[d] = struct{}{}
	}

	preimage := randomDigest(rng)
	c.Assert(ReceiverDigest(preimage), qt.Equals, sponge.HashVarlen(preimage.Elements()))
}

type testCommitCircuit struct {
	Item, SenderRandomness, ReceiverDigest sponge.DigestVar
	Commitment                             sponge.DigestVar `gnark:",public"`
}

func (circuit *testCommitCircuit) Define(api frontend.API) error {
	h, err := sponge.NewHasher(api)
	if err != nil {
		return err
	}
	h.AssertDigestIsEqual(CommitGadget(h, circuit.Item, circuit.SenderRandomness, circuit.ReceiverDigest), circuit.Commitment)
	return nil
}

func TestCommitGadget(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewPCG(7, 8))
	item, sr, rd := randomDigest(rng), randomDigest(rng), randomDigest(rng)
	assignment := &testCommitCircuit{
		Item:             sponge.DigestValueOf(item),
		SenderRandomness: sponge.DigestValueOf(sr),
		ReceiverDigest:   sponge.DigestValueOf(rd),
		Commitment:       sponge.DigestValueOf(Commit(item, sr, rd)),
	}
	c.Assert(test.IsSolved(&testCommitCircuit{}, assignment, ecc.BN254.ScalarField()), qt.IsNil)

	assignment.SenderRandomness, assignment.ReceiverDigest = assignment.ReceiverDigest, assignment.SenderRandomness
	c.Assert(test.IsSolved(&testCommitCircuit{}, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
}

func sampleUtxo(rng *rand.Rand) Utxo {
	return Utxo{
		LockScriptHash: randomDigest(rng),
		Coins: []Coin{
			{TypeScriptHash: randomDigest(rng), State: []goldilocks.Element{goldilocks.NewElement(100), goldilocks.NewElement(0)}},
			{TypeScriptHash: randomDigest(rng)},
		},
	}
}

func TestUtxoEncoding(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewPCG(9, 10))
	u := sampleUtxo(rng)
	raw := codec.Encode(&u)
	// digest, size, count, then [size, digest, size, count, state...] per coin
	c.Assert(raw, qt.HasLen, 4+1+1+(1+4+1+1+2)+(1+4+1+1))

	var decoded Utxo
	c.Assert(codec.Decode(raw, UtxoShape(), &decoded), qt.IsNil)
	c.Assert(decoded.LockScriptHash, qt.Equals, u.LockScriptHash)
	c.Assert(decoded.Coins, qt.HasLen, 2)
	c.Assert(decoded.Coins[0].State, qt.DeepEquals, u.Coins[0].State)
	c.Assert(decoded.Hash(), qt.Equals, u.Hash())

	// the hash covers the coin state
	u.Coins[0].State[0].SetUint64(101)
	c.Assert(u.Hash().Equal(decoded.Hash()), qt.IsFalse)

	raw[6].SetUint64(9)
	c.Assert(errors.Is(codec.Decode(raw, UtxoShape(), &decoded), codec.ErrIntegrity), qt.IsTrue)
}

func TestChunk(t *testing.T) {
	c := qt.New(t)
	params := DefaultParameters()
	var chunk Chunk
	for _, v := range []uint32{40, 7, 4095, 7, 0} {
		chunk.Insert(v)
	}
	c.Assert(chunk.RelativeIndices, qt.DeepEquals, []uint32{0, 7, 7, 40, 4095})
	c.Assert(chunk.Validate(params), qt.IsNil)
	c.Assert(chunk.Contains(40), qt.IsTrue)
	c.Assert(chunk.Contains(41), qt.IsFalse)

	bad := Chunk{RelativeIndices: []uint32{3, 2}}
	c.Assert(errors.Is(bad.Validate(params), ErrInvalidChunk), qt.IsTrue)
	bad = Chunk{RelativeIndices: []uint32{4096}}
	c.Assert(errors.Is(bad.Validate(params), ErrInvalidChunk), qt.IsTrue)

	var decoded Chunk
	c.Assert(codec.Decode(codec.Encode(&chunk), ChunkShape(), &decoded), qt.IsNil)
	c.Assert(decoded.Hash(), qt.Equals, chunk.Hash())
}

func TestRemovalRecordEncoding(t *testing.T) {
	c := qt.New(t)
	params := Parameters{WindowBits: 8, NumTrials: 3, ChunkBits: 4, BatchBits: 1}

	archive := mmr.NewArchive()
	chunks := []Chunk{{RelativeIndices: []uint32{1, 2}}, {RelativeIndices: []uint32{15}}, {}}
	for i := range chunks {
		archive.Append(chunks[i].Hash())
	}
	proof, err := archive.Prove(1)
	c.Assert(err, qt.IsNil)

	rr := RemovalRecord{
		AbsoluteIndices: AbsoluteIndexSet{arith.NewU128(17, 0), arith.NewU128(60, 0), arith.NewU128(3, 0)},
		TargetChunks: ChunkDictionary{
			{ChunkIndex: arith.NewU64(1), Proof: proof, Chunk: chunks[1]},
		},
	}
	raw := codec.Encode(&rr)
	c.Assert(codec.Verify(raw, RemovalRecordShape(params)), qt.IsNil)
	decoded, err := DecodeRemovalRecord(codec.NewReader(raw), params)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.AbsoluteIndices.Equal(rr.AbsoluteIndices), qt.IsTrue)

	entry, ok := decoded.TargetChunks.Lookup(arith.NewU64(1))
	c.Assert(ok, qt.IsTrue)
	snap := archive.Snapshot()
	c.Assert(snap.Verify(entry.Chunk.Hash(), &entry.Proof), qt.IsTrue)
	_, ok = decoded.TargetChunks.Lookup(arith.NewU64(0))
	c.Assert(ok, qt.IsFalse)
}

func TestAccumulatorHash(t *testing.T) {
	c := qt.New(t)
	rng := rand.New(rand.NewPCG(13, 14))
	aocl := mmr.NewArchive()
	for i := 0; i < 4; i++ {
		aocl.Append(randomDigest(rng))
	}
	acc := Accumulator{
		Aocl:         aocl.Snapshot(),
		SwbfInactive: mmr.Snapshot{},
		SwbfActive:   randomDigest(rng),
	}
	c.Assert(acc.Validate(), qt.IsNil)
	c.Assert(acc.InactiveBoundary().IsZero(), qt.IsTrue)

	want := sponge.HashPair(
		sponge.HashPair(aocl.Peaks()[0], mmr.EmptyBag()),
		sponge.HashPair(acc.SwbfActive, sponge.Digest{}),
	)
	c.Assert(acc.Hash(), qt.Equals, want)

	var decoded Accumulator
	c.Assert(codec.Decode(codec.Encode(&acc), AccumulatorShape(), &decoded), qt.IsNil)
	c.Assert(decoded.Hash(), qt.Equals, acc.Hash())

	acc.Aocl.Peaks = append(acc.Aocl.Peaks, randomDigest(rng))
	c.Assert(errors.Is(acc.Validate(), mmr.ErrPeakCount), qt.IsTrue)
}
