package mutatorset

import (
	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

// Commit returns the canonical commitment of an output:
//
//	HashVarlen(item ++ senderRandomness ++ receiverDigest)
//
// The order of the operands is part of the commitment.
func Commit(item, senderRandomness, receiverDigest sponge.Digest) sponge.Digest {
	input := make([]goldilocks.Element, 0, 3*sponge.DigestLen)
	input = append(input, item[:]...)
	input = append(input, senderRandomness[:]...)
	input = append(input, receiverDigest[:]...)
	return sponge.HashVarlen(input)
}

// ReceiverDigest is the public digest of the receiver preimage.
func ReceiverDigest(preimage sponge.Digest) sponge.Digest {
	return sponge.HashVarlen(preimage[:])
}

// CommitGadget is the in-circuit Commit.
func CommitGadget(h *sponge.Hasher, item, senderRandomness, receiverDigest sponge.DigestVar) sponge.DigestVar {
	input := append(item.Elements(), senderRandomness.Elements()...)
	input = append(input, receiverDigest.Elements()...)
	return h.HashVarlen(input...)
}
