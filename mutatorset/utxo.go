package mutatorset

import (
	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/vocdoni/mutator-set-programs/codec"
	"github.com/vocdoni/mutator-set-programs/hash/goldilocks/sponge"
)

// Coin is a typed piece of state held by an output.
type Coin struct {
	TypeScriptHash sponge.Digest
	State          []goldilocks.Element
}

// Utxo is an unspent output: the hash of the lock script that guards it and
// the coins it holds.
type Utxo struct {
	LockScriptHash sponge.Digest
	Coins          []Coin
}

func CoinShape() codec.Shape {
	return codec.Named("coin", codec.Tuple(
		codec.Named("type_script_hash", codec.Digest()),
		codec.Named("state", codec.List(codec.Element())),
	))
}

func UtxoShape() codec.Shape {
	return codec.Named("utxo", codec.Tuple(
		codec.Named("lock_script_hash", codec.Digest()),
		codec.Named("coins", codec.List(CoinShape())),
	))
}

func (c *Coin) Encode(e *codec.Encoder) {
	e.Digest(c.TypeScriptHash)
	e.Sized(func(e *codec.Encoder) {
		codec.WriteList(e, c.State, false, (*codec.Encoder).Element)
	})
}

func (c *Coin) Decode(r *codec.Reader) error {
	var err error
	if c.TypeScriptHash, err = r.Digest(); err != nil {
		return err
	}
	return r.Sized(func(r *codec.Reader) error {
		c.State, err = codec.ReadList(r, false, (*codec.Reader).Element)
		return err
	})
}

func (u *Utxo) Encode(e *codec.Encoder) {
	e.Digest(u.LockScriptHash)
	e.Sized(func(e *codec.Encoder) {
		codec.WriteList(e, u.Coins, true, func(e *codec.Encoder, c Coin) { c.Encode(e) })
	})
}

func (u *Utxo) Decode(r *codec.Reader) error {
	var err error
	if u.LockScriptHash, err = r.Digest(); err != nil {
		return err
	}
	return r.Sized(func(r *codec.Reader) error {
		u.Coins, err = codec.ReadList(r, true, func(r *codec.Reader) (Coin, error) {
			var c Coin
			err := c.Decode(r)
			return c, err
		})
		return err
	})
}

// Hash returns the item digest of the output, the hash of its encoding.
func (u *Utxo) Hash() sponge.Digest {
	return sponge.HashVarlen(codec.Encode(u))
}
