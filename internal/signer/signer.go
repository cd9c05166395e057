// Package signer wraps a keypair as the handle that authorizes transactions.
package signer

import (
	"errors"
	"fmt"

	"github.com/AlexZinkM/cosmic-wallet/internal/crypto"

	"github.com/gagliardetto/solana-go"
)

var ErrNotRequiredSigner = errors.New("key is not a required signer of the transaction")

// Signer signs on behalf of one account.
type Signer interface {
	PublicKey() solana.PublicKey
	SignMessage(msg []byte) (solana.Signature, error)
	// SignTransaction fills this key's signature slot, other slots are untouched
	SignTransaction(tx *solana.Transaction) error
	DiffieHellman(peer solana.PublicKey) (*crypto.BoxKeyPair, error)
	ExportSecret() solana.PrivateKey
}

// KeypairSigner signs with an in-memory private key.
type KeypairSigner struct {
	key solana.PrivateKey
	pub solana.PublicKey
}

// NewKeypairSigner takes a copy of key.
func NewKeypairSigner(key solana.PrivateKey) (*KeypairSigner, error) {
	if len(key) != 64 {
		return nil, fmt.Errorf("invalid private key length %d", len(key))
	}
	k := make(solana.PrivateKey, len(key))
	copy(k, key)
	return &KeypairSigner{key: k, pub: k.PublicKey()}, nil
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.pub
}

func (s *KeypairSigner) SignMessage(msg []byte) (solana.Signature, error) {
	return s.key.Sign(msg)
}

func (s *KeypairSigner) SignTransaction(tx *solana.Transaction) error {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	idx := -1
	for i := 0; i < required && i < len(tx.Message.AccountKeys); i++ {
		if tx.Message.AccountKeys[i].Equals(s.pub) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotRequiredSigner
	}

	sig, err := s.key.Sign(msg)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	if len(tx.Signatures) < required {
		sigs := make([]solana.Signature, required)
		copy(sigs, tx.Signatures)
		tx.Signatures = sigs
	}
	tx.Signatures[idx] = sig
	return nil
}

func (s *KeypairSigner) DiffieHellman(peer solana.PublicKey) (*crypto.BoxKeyPair, error) {
	return crypto.DiffieHellmanKeyPair(peer[:], s.key)
}

// ExportSecret returns a copy of the 64-byte secret key.
func (s *KeypairSigner) ExportSecret() solana.PrivateKey {
	out := make(solana.PrivateKey, len(s.key))
	copy(out, s.key)
	return out
}

// Wipe zeroes the private key. The signer is unusable afterwards.
func (s *KeypairSigner) Wipe() {
	clear(s.key)
}
