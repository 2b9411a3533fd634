// Package circuits expresses the mutator set programs as gnark circuits over
// emulated Goldilocks arithmetic, for a number of outputs fixed at compile
// time.
package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/pkg/errors"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
	"github.com/vocdoni/mutator-set-programs/mmr"
	"github.com/vocdoni/mutator-set-programs/mutatorset"
	"github.com/vocdoni/mutator-set-programs/programs"
)

// kernelHeight is the height of the kernel Merkle tree.
const kernelHeight = 3

// KernelToOutputsCircuit proves that the kernel public digest authenticates
// the list of canonical commitments of the private outputs. The item digests
// of the outputs are private inputs, the hashing of the outputs themselves
// is left to the native program.
type KernelToOutputsCircuit struct {
	KernelDigest     sponge.DigestVar `gnark:",public"`
	Items            []sponge.DigestVar
	SenderRandomness []sponge.DigestVar
	ReceiverDigests  []sponge.DigestVar
	OutputsAuthPath  [kernelHeight]sponge.DigestVar
}

// NewKernelToOutputsCircuit returns a placeholder for n outputs, to be
// compiled.
func NewKernelToOutputsCircuit(n int) *KernelToOutputsCircuit {
	return &KernelToOutputsCircuit{
		Items:            make([]sponge.DigestVar, n),
		SenderRandomness: make([]sponge.DigestVar, n),
		ReceiverDigests:  make([]sponge.DigestVar, n),
	}
}

func (c *KernelToOutputsCircuit) Define(api frontend.API) error {
	n := len(c.Items)
	if len(c.SenderRandomness) != n || len(c.ReceiverDigests) != n {
		return errors.Errorf("%d items, %d sender randomnesses and %d receiver digests",
			n, len(c.SenderRandomness), len(c.ReceiverDigests))
	}
	h, err := sponge.NewHasher(api)
	if err != nil {
		return err
	}
	// outputs leaf = HashVarlen([n] ++ commitments)
	encoded := []*sponge.GoldilocksElement{h.Field().NewElement(uint64(n))}
	for i := range c.Items {
		commitment := mutatorset.CommitGadget(h, c.Items[i], c.SenderRandomness[i], c.ReceiverDigests[i])
		encoded = append(encoded, commitment.Elements()...)
	}
	leaf := h.HashVarlen(encoded...)
	mtIndex := programs.KernelLeafCount + programs.KernelOutputsLeafIndex
	mmr.AssertMembership(api, h, c.KernelDigest, leaf, mtIndex, c.OutputsAuthPath[:])
	return nil
}

// KernelToOutputsAssignment builds the full assignment of the circuit from
// the witness of the native program.
func KernelToOutputsAssignment(w *programs.KernelToOutputsWitness, kernel sponge.Digest) (*KernelToOutputsCircuit, error) {
	n := len(w.Utxos)
	if len(w.SenderRandomnesses) != n || len(w.ReceiverDigests) != n {
		return nil, errors.Errorf("%d utxos, %d sender randomnesses and %d receiver digests",
			n, len(w.SenderRandomnesses), len(w.ReceiverDigests))
	}
	if len(w.OutputsAuthPath) != kernelHeight {
		return nil, errors.Errorf("kernel path of %d digests, want %d", len(w.OutputsAuthPath), kernelHeight)
	}
	a := NewKernelToOutputsCircuit(n)
	a.KernelDigest = sponge.DigestValueOf(kernel)
	for i := range w.Utxos {
		a.Items[i] = sponge.DigestValueOf(w.Utxos[i].Hash())
		a.SenderRandomness[i] = sponge.DigestValueOf(w.SenderRandomnesses[i])
		a.ReceiverDigests[i] = sponge.DigestValueOf(w.ReceiverDigests[i])
	}
	for i := range a.OutputsAuthPath {
		a.OutputsAuthPath[i] = sponge.DigestValueOf(w.OutputsAuthPath[i])
	}
	return a, nil
}
