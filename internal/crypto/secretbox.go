package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const NonceLen = 24

// ErrAuthenticationFailed means the ciphertext was tampered with or the key is wrong.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Encrypt seals plaintext under key with a fresh random nonce.
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	k, err := toKey(key)
	if err != nil {
		return nil, nil, err
	}

	var n [NonceLen]byte
	if _, err := io.ReadFull(rand.Reader, n[:]); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = secretbox.Seal(nil, plaintext, &n, k)
	clear(k[:])
	return ciphertext, n[:], nil
}

// Decrypt opens ciphertext. It never returns partial plaintext.
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	if len(nonce) != NonceLen {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}
	k, err := toKey(key)
	if err != nil {
		return nil, err
	}
	defer clear(k[:])

	var n [NonceLen]byte
	copy(n[:], nonce)

	plaintext, ok := secretbox.Open(nil, ciphertext, &n, k)
	if !ok {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

func toKey(key []byte) (*[KeyLen]byte, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("invalid key length %d", len(key))
	}
	var k [KeyLen]byte
	copy(k[:], key)
	return &k, nil
}
