package testutil

import (
	"math/rand/v2"

	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
	"github.com/vocdoni/mutator-set-programs/mmr"
)

// TestKernel is a transaction kernel committed as a Merkle tree whose leaves
// are random except the one carrying the outputs.
type TestKernel struct {
	Digest          sponge.Digest
	Leaves          []sponge.Digest
	OutputsAuthPath []sponge.Digest
}

// GenerateKernel builds a kernel of leafCount leaves with outputsLeaf at
// position outputsIndex. leafCount must be a power of two so the kernel is a
// single tree.
func GenerateKernel(rng *rand.Rand, leafCount, outputsIndex int, outputsLeaf sponge.Digest) (*TestKernel, error) {
	archive := mmr.NewArchive()
	k := &TestKernel{}
	for i := 0; i < leafCount; i++ {
		leaf := RandomDigest(rng)
		if i == outputsIndex {
			leaf = outputsLeaf
		}
		k.Leaves = append(k.Leaves, leaf)
		archive.Append(leaf)
	}
	proof, err := archive.Prove(uint64(outputsIndex))
	if err != nil {
		return nil, err
	}
	k.Digest = archive.Peaks()[0]
	k.OutputsAuthPath = proof.AuthenticationPath
	return k, nil
}
