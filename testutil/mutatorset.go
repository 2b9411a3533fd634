package testutil

import (
	"math/rand/v2"

	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/arith"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
	"github.com/vocdoni/mutator-set-programs/mmr"
	"github.com/vocdoni/mutator-set-programs/mutatorset"
)

// MutatorSetTestConfig is a configuration for generating a mutator set for
// testing purposes. It includes the parameters of the set, the number of
// outputs added to the append-only commitment list, the number of chunks
// that already left the active window and the seed of the random source.
type MutatorSetTestConfig struct {
	Params         mutatorset.Parameters
	Outputs        int
	InactiveChunks int
	Seed           uint64
}

// TestMutatorSet stores every secret of the generated outputs together with
// the archives of both ranges, so witnesses can be built for any output.
type TestMutatorSet struct {
	Params            mutatorset.Parameters
	Utxos             []mutatorset.Utxo
	SenderRandomness  []sponge.Digest
	ReceiverPreimages []sponge.Digest
	Aocl              *mmr.Archive
	SwbfInactive      *mmr.Archive
	Chunks            []mutatorset.Chunk
	SwbfActive        sponge.Digest
}

// RandomDigest returns a digest of uniformly random field elements.
func RandomDigest(rng *rand.Rand) sponge.Digest {
	var d sponge.Digest
	for i := range d {
		d[i].SetUint64(rng.Uint64N(goldilocks.Modulus().Uint64()))
	}
	return d
}

// RandomUtxo returns an output with a native coin holding amount.
func RandomUtxo(rng *rand.Rand, amount uint64) mutatorset.Utxo {
	return mutatorset.Utxo{
		LockScriptHash: RandomDigest(rng),
		Coins: []mutatorset.Coin{{
			TypeScriptHash: RandomDigest(rng),
			State:          []goldilocks.Element{goldilocks.NewElement(amount)},
		}},
	}
}

// GenerateMutatorSet adds conf.Outputs random outputs to a new mutator set
// and fills conf.InactiveChunks chunks of the inactive window with random
// bits.
func GenerateMutatorSet(conf MutatorSetTestConfig) (*TestMutatorSet, error) {
	if err := conf.Params.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(conf.Seed, conf.Seed+1))
	ms := &TestMutatorSet{
		Params:       conf.Params,
		Aocl:         mmr.NewArchive(),
		SwbfInactive: mmr.NewArchive(),
		SwbfActive:   RandomDigest(rng),
	}
	for i := 0; i < conf.Outputs; i++ {
		utxo := RandomUtxo(rng, rng.Uint64N(1<<32))
		sr, rp := RandomDigest(rng), RandomDigest(rng)
		ms.Utxos = append(ms.Utxos, utxo)
		ms.SenderRandomness = append(ms.SenderRandomness, sr)
		ms.ReceiverPreimages = append(ms.ReceiverPreimages, rp)
		ms.Aocl.Append(mutatorset.Commit(utxo.Hash(), sr, mutatorset.ReceiverDigest(rp)))
	}
	for i := 0; i < conf.InactiveChunks; i++ {
		var chunk mutatorset.Chunk
		for j := 0; j < 4; j++ {
			chunk.Insert(rng.Uint32N(conf.Params.ChunkSize()))
		}
		ms.Chunks = append(ms.Chunks, chunk)
		ms.SwbfInactive.Append(chunk.Hash())
	}
	return ms, nil
}

// Accumulator returns the current snapshot of the set.
func (ms *TestMutatorSet) Accumulator() mutatorset.Accumulator {
	return mutatorset.Accumulator{
		Aocl:         ms.Aocl.Snapshot(),
		SwbfInactive: ms.SwbfInactive.Snapshot(),
		SwbfActive:   ms.SwbfActive,
	}
}

// Indices returns the absolute index set of the i-th output.
func (ms *TestMutatorSet) Indices(i int) (mutatorset.AbsoluteIndexSet, error) {
	if i < 0 || i >= len(ms.Utxos) {
		return nil, errors.Errorf("output %d of %d", i, len(ms.Utxos))
	}
	return mutatorset.GetSwbfIndices(ms.Utxos[i].Hash(), ms.SenderRandomness[i], ms.ReceiverPreimages[i],
		arith.NewU64(uint64(i)), ms.Params)
}

// TargetChunks returns the dictionary of the inactive chunks touched by the
// index set, each chunk once.
func (ms *TestMutatorSet) TargetChunks(indices mutatorset.AbsoluteIndexSet) (mutatorset.ChunkDictionary, error) {
	var dict mutatorset.ChunkDictionary
	boundary := ms.SwbfInactive.LeafCount()
	for _, index := range indices {
		chunkIndex, _, err := mutatorset.ChunkIndex(index, ms.Params)
		if err != nil {
			return nil, err
		}
		if !chunkIndex.Lt(boundary) {
			continue
		}
		if _, ok := dict.Lookup(chunkIndex); ok {
			continue
		}
		proof, err := ms.SwbfInactive.Prove(chunkIndex.Uint64())
		if err != nil {
			return nil, err
		}
		dict = append(dict, mutatorset.ChunkEntry{
			ChunkIndex: chunkIndex,
			Proof:      proof,
			Chunk:      ms.Chunks[chunkIndex.Uint64()],
		})
	}
	return dict, nil
}
