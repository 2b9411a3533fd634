package mmr

import (
	"github.com/vocdoni/mutator-set-programs/codec"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

// MembershipProofShape is the tape layout of a MembershipProof.
func MembershipProofShape() codec.Shape {
	return codec.Named("mmr_membership_proof", codec.Tuple(
		codec.Named("leaf_index", codec.U64()),
		codec.Named("authentication_path", codec.List(codec.Digest())),
	))
}

// SnapshotShape is the tape layout of a Snapshot.
func SnapshotShape() codec.Shape {
	return codec.Named("mmr_accumulator", codec.Tuple(
		codec.Named("leaf_count", codec.U64()),
		codec.Named("peaks", codec.List(codec.Digest())),
	))
}

func encodeDigests(e *codec.Encoder, ds []sponge.Digest) {
	e.Sized(func(e *codec.Encoder) {
		codec.WriteList(e, ds, false, (*codec.Encoder).Digest)
	})
}

func decodeDigests(r *codec.Reader) ([]sponge.Digest, error) {
	var out []sponge.Digest
	err := r.Sized(func(r *codec.Reader) error {
		var err error
		out, err = codec.ReadList(r, false, (*codec.Reader).Digest)
		return err
	})
	return out, err
}

func (p *MembershipProof) Encode(e *codec.Encoder) {
	e.U64(p.LeafIndex)
	encodeDigests(e, p.AuthenticationPath)
}

func (p *MembershipProof) Decode(r *codec.Reader) error {
	var err error
	if p.LeafIndex, err = r.U64(); err != nil {
		return err
	}
	p.AuthenticationPath, err = decodeDigests(r)
	return err
}

func (s *Snapshot) Encode(e *codec.Encoder) {
	e.U64(s.LeafCount)
	encodeDigests(e, s.Peaks)
}

func (s *Snapshot) Decode(r *codec.Reader) error {
	var err error
	if s.LeafCount, err = r.U64(); err != nil {
		return err
	}
	s.Peaks, err = decodeDigests(r)
	return err
}
