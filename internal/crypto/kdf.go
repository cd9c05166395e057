// Package crypto holds the primitives that protect wallet secrets at rest
// and derive account keys from the seed.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KDFName is the only key derivation function written to records
	KDFName = "pbkdf2"

	DefaultIterations = 100000
	DefaultDigest     = "sha256"

	KeyLen  = 32
	SaltLen = 16
)

var (
	ErrUnknownDigest = errors.New("unknown digest")
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// DeriveEncryptionKey runs PBKDF2-HMAC over password and returns a KeyLen key.
func DeriveEncryptionKey(password, salt []byte, iterations int, digest string) ([]byte, error) {
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("invalid iteration count %d", iterations)
	}

	var h func() hash.Hash
	switch digest {
	case "", "sha256":
		h = sha256.New
	case "sha512":
		h = sha512.New
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, digest)
	}

	return pbkdf2.Key(password, salt, iterations, KeyLen, h), nil
}

// NewSalt returns SaltLen random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
