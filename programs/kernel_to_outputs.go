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

const kernelToOutputsName = "kernel_to_outputs"

// The transaction kernel is committed as a Merkle tree of eight fields, the
// list of output commitments being the second one.
const (
	KernelLeafCount        = 8
	KernelOutputsLeafIndex = 1
)

// KernelToOutputsDigest identifies the KernelToOutputs program in its
// claims.
var KernelToOutputsDigest = programDigest(kernelToOutputsName)

// KernelToOutputsWitness is the secret input of the program: the outputs of
// the transaction with the randomness and receiver of each one, and the
// output commitments of the kernel with their authentication path.
type KernelToOutputsWitness struct {
	Utxos              []mutatorset.Utxo
	SenderRandomnesses []sponge.Digest
	ReceiverDigests    []sponge.Digest
	OutputCommitments  []sponge.Digest
	OutputsAuthPath    []sponge.Digest
}

func KernelToOutputsWitnessShape() codec.Shape {
	return codec.Named("kernel_to_outputs_witness", codec.Tuple(
		codec.Named("utxos", codec.List(mutatorset.UtxoShape())),
		codec.Named("sender_randomnesses", codec.List(codec.Digest())),
		codec.Named("receiver_digests", codec.List(codec.Digest())),
		codec.Named("output_commitments", codec.List(codec.Digest())),
		codec.Named("outputs_auth_path", codec.List(codec.Digest())),
	))
}

func encodeUtxos(e *codec.Encoder, utxos []mutatorset.Utxo) {
	codec.WriteList(e, utxos, true, func(e *codec.Encoder, u mutatorset.Utxo) { u.Encode(e) })
}

func encodeDigests(e *codec.Encoder, ds []sponge.Digest) {
	codec.WriteList(e, ds, false, (*codec.Encoder).Digest)
}

func decodeDigests(r *codec.Reader, out *[]sponge.Digest) error {
	return r.Sized(func(r *codec.Reader) error {
		var err error
		*out, err = codec.ReadList(r, false, (*codec.Reader).Digest)
		return err
	})
}

func (w *KernelToOutputsWitness) Encode(e *codec.Encoder) {
	e.Sized(func(e *codec.Encoder) { encodeUtxos(e, w.Utxos) })
	for _, ds := range [][]sponge.Digest{w.SenderRandomnesses, w.ReceiverDigests, w.OutputCommitments, w.OutputsAuthPath} {
		e.Sized(func(e *codec.Encoder) { encodeDigests(e, ds) })
	}
}

func (w *KernelToOutputsWitness) Decode(r *codec.Reader) error {
	err := r.Sized(func(r *codec.Reader) error {
		var err error
		w.Utxos, err = codec.ReadList(r, true, func(r *codec.Reader) (mutatorset.Utxo, error) {
			var u mutatorset.Utxo
			err := u.Decode(r)
			return u, err
		})
		return err
	})
	if err != nil {
		return err
	}
	for _, out := range []*[]sponge.Digest{&w.SenderRandomnesses, &w.ReceiverDigests, &w.OutputCommitments, &w.OutputsAuthPath} {
		if err := decodeDigests(r, out); err != nil {
			return err
		}
	}
	return nil
}

// OutputsLeaf is the kernel leaf that commits to the list of outputs.
func OutputsLeaf(outputs []sponge.Digest) sponge.Digest {
	e := codec.NewEncoder()
	encodeDigests(e, outputs)
	return sponge.HashVarlen(e.Elements())
}

// SaltedOutputsHash binds the outputs to their sender randomness. It is the
// output of the KernelToOutputs claim.
func SaltedOutputsHash(utxos []mutatorset.Utxo, senderRandomnesses []sponge.Digest) sponge.Digest {
	e := codec.NewEncoder()
	encodeUtxos(e, utxos)
	encodeDigests(e, senderRandomnesses)
	return sponge.HashVarlen(e.Elements())
}

// KernelToOutputs checks that the output commitments of a transaction
// kernel are the canonical commitments of the claimed outputs.
type KernelToOutputs struct {
	cfg config
}

func NewKernelToOutputs(opts ...Option) *KernelToOutputs {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &KernelToOutputs{cfg: cfg}
}

// Run executes the program on a witness tape against the kernel digest. On
// success it returns the claim whose output is the salted outputs hash.
func (p *KernelToOutputs) Run(tape []goldilocks.Element, kernelDigest sponge.Digest) (claim *Claim, err error) {
	start := time.Now()
	defer func() { observe(p.cfg.logger, kernelToOutputsName, start, err) }()
	log := p.cfg.logger.With().Str("program", kernelToOutputsName).Logger()

	var w KernelToOutputsWitness
	if err := codec.Decode(tape, KernelToOutputsWitnessShape(), &w); err != nil {
		return nil, err
	}
	log.Debug().Str("phase", "integrity").Int("outputs", len(w.Utxos)).Msg("witness verified")

	n := len(w.Utxos)
	if len(w.SenderRandomnesses) != n || len(w.ReceiverDigests) != n || len(w.OutputCommitments) != n {
		return nil, assertionErrorf("%d utxos, %d sender randomnesses, %d receiver digests and %d output commitments",
			n, len(w.SenderRandomnesses), len(w.ReceiverDigests), len(w.OutputCommitments))
	}
	for i := range w.Utxos {
		commitment := mutatorset.Commit(w.Utxos[i].Hash(), w.SenderRandomnesses[i], w.ReceiverDigests[i])
		if !commitment.Equal(w.OutputCommitments[i]) {
			return nil, assertionErrorf("output %d: commitment %s, kernel has %s", i, commitment, w.OutputCommitments[i])
		}
	}
	log.Debug().Str("phase", "commitments").Int("outputs", n).Msg("commitments verified")

	leaf := OutputsLeaf(w.OutputCommitments)
	if !mmr.Verify(kernelDigest, leaf, arith.NewU64(KernelOutputsLeafIndex), arith.NewU64(KernelLeafCount), w.OutputsAuthPath) {
		return nil, assertionErrorf("outputs are not authenticated by kernel %s", kernelDigest)
	}
	log.Debug().Str("phase", "kernel").Msg("outputs authenticated")

	return &Claim{
		ProgramDigest: KernelToOutputsDigest,
		Input:         kernelDigest.Elements(),
		Output:        SaltedOutputsHash(w.Utxos, w.SenderRandomnesses).Elements(),
	}, nil
}
