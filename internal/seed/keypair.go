package seed

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/cosmic-wallet/internal/crypto"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// importsKeyPath is the SLIP-0016 path of the key that encrypts imported accounts
const importsKeyPath = "m/10016'/0"

var ErrInvalidKeypair = errors.New("invalid private key")

// SeedToKeypair derives the keypair for a wallet index. Same inputs, same key.
func SeedToKeypair(seed []byte, walletIndex uint32, path DerivationPath, accountIndex uint32) (solana.PrivateKey, error) {
	p, err := path.Path(walletIndex, accountIndex)
	if err != nil {
		return nil, err
	}

	var derived []byte
	if path == Deprecated {
		derived, err = crypto.DeriveSecp256k1(seed, p)
	} else {
		derived, err = crypto.DeriveEd25519(seed, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to derive %s: %w", path, err)
	}
	defer clear(derived)

	return solana.PrivateKey(ed25519.NewKeyFromSeed(derived)), nil
}

// DeriveImportsEncryptionKey returns the 32-byte key for imported account blobs.
func DeriveImportsEncryptionKey(seed []byte) ([]byte, error) {
	return crypto.DeriveSecp256k1(seed, importsKeyPath)
}

// DecodeKeypair accepts a JSON byte array ("[12,55,...]") or a base58 string.
func DecodeKeypair(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKeypair
	}

	if raw, ok := decodeByteArray(s); ok {
		if key, err := keypairFromSecret(raw); err == nil {
			return key, nil
		}
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return nil, ErrInvalidKeypair
	}
	return keypairFromSecret(raw)
}

// EncodeKeypair returns the base58 form of the 64-byte secret key.
func EncodeKeypair(key solana.PrivateKey) string {
	return base58.Encode(key)
}

// EncodeKeypairJSON returns the byte array form used by CLI keypair files.
func EncodeKeypairJSON(key solana.PrivateKey) string {
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	out, _ := json.Marshal(ints)
	return string(out)
}

func decodeByteArray(s string) ([]byte, bool) {
	if !strings.HasPrefix(s, "[") {
		return nil, false
	}
	var ints []int
	if err := json.Unmarshal([]byte(s), &ints); err != nil {
		return nil, false
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, false
		}
		out[i] = byte(v)
	}
	return out, true
}

// keypairFromSecret checks that the public half matches the private seed.
func keypairFromSecret(raw []byte) (solana.PrivateKey, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeypair
	}
	expected := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(expected[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
		clear(expected)
		return nil, ErrInvalidKeypair
	}
	return solana.PrivateKey(expected), nil
}
