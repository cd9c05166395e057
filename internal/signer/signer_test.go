package signer

import (
	"crypto/ed25519"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSigner(t *testing.T) *KeypairSigner {
	t.Helper()
	s, err := NewKeypairSigner(solana.NewWallet().PrivateKey)
	require.NoError(t, err)
	return s
}

func TestKeypairSigner_SignMessage(t *testing.T) {
	t.Parallel()
	s := newSigner(t)
	pub := s.PublicKey()

	sig, err := s.SignMessage([]byte("hello"))
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub[:], []byte("hello"), sig[:]))
}

func TestKeypairSigner_SignTransaction(t *testing.T) {
	t.Parallel()
	payer := newSigner(t)
	other := newSigner(t)
	to := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, payer.PublicKey(), to).Build(),
			system.NewTransferInstruction(2, other.PublicKey(), to).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)
	require.EqualValues(t, 2, tx.Message.Header.NumRequiredSignatures)

	require.NoError(t, other.SignTransaction(tx))
	require.Len(t, tx.Signatures, 2)
	assert.Equal(t, solana.Signature{}, tx.Signatures[0])

	require.NoError(t, payer.SignTransaction(tx))
	msg, err := tx.Message.MarshalBinary()
	require.NoError(t, err)
	payerPub, otherPub := payer.PublicKey(), other.PublicKey()
	assert.True(t, ed25519.Verify(payerPub[:], msg, tx.Signatures[0][:]))
	assert.True(t, ed25519.Verify(otherPub[:], msg, tx.Signatures[1][:]))

	stranger := newSigner(t)
	require.ErrorIs(t, stranger.SignTransaction(tx), ErrNotRequiredSigner)
}

func TestKeypairSigner_ExportAndWipe(t *testing.T) {
	t.Parallel()
	key := solana.NewWallet().PrivateKey
	s, err := NewKeypairSigner(key)
	require.NoError(t, err)

	out := s.ExportSecret()
	assert.Equal(t, key, out)
	out[0] ^= 0xff
	assert.Equal(t, key, s.ExportSecret())

	s.Wipe()
	assert.Equal(t, make(solana.PrivateKey, 64), s.ExportSecret())
	// the caller's slice is not shared
	assert.NotEqual(t, make(solana.PrivateKey, 64), key)

	_, err = NewKeypairSigner(key[:32])
	require.Error(t, err)
}

func TestKeypairSigner_DiffieHellman(t *testing.T) {
	t.Parallel()
	s := newSigner(t)
	peer := solana.NewWallet().PublicKey()

	pair, err := s.DiffieHellman(peer)
	require.NoError(t, err)
	assert.Len(t, pair.PublicKey, 32)
	assert.Len(t, pair.SecretKey, 32)
}
