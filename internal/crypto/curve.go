package crypto

import (
	"crypto/ed25519"
	"crypto/sha512"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

// ErrInvalidPublicKey is returned when an ed25519 public key is not a curve point.
var ErrInvalidPublicKey = errors.New("invalid ed25519 public key")

// BoxKeyPair is an X25519 key pair.
type BoxKeyPair struct {
	PublicKey []byte
	SecretKey []byte
}

// ConvertToCurve25519 maps an ed25519 public key to its Montgomery (X25519) form.
func ConvertToCurve25519(pub []byte) ([]byte, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidPublicKey, len(pub))
	}
	p, err := edwards25519.NewIdentityPoint().SetBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return p.BytesMontgomery(), nil
}

// ConvertSecretToCurve25519 maps an ed25519 secret key (64-byte key or 32-byte
// seed) to a clamped X25519 scalar.
func ConvertSecretToCurve25519(secret []byte) ([]byte, error) {
	var seed []byte
	switch len(secret) {
	case ed25519.PrivateKeySize:
		seed = secret[:ed25519.SeedSize]
	case ed25519.SeedSize:
		seed = secret
	default:
		return nil, fmt.Errorf("invalid ed25519 secret key length %d", len(secret))
	}

	h := sha512.Sum512(seed)
	defer clear(h[:])

	out := make([]byte, 32)
	copy(out, h[:32])
	out[0] &= 248
	out[31] &= 127
	out[31] |= 64
	return out, nil
}

// DiffieHellmanKeyPair converts the peer's ed25519 public key and our ed25519
// secret key into an X25519 pair usable with nacl/box.
func DiffieHellmanKeyPair(peerPublicKey, secret []byte) (*BoxKeyPair, error) {
	pub, err := ConvertToCurve25519(peerPublicKey)
	if err != nil {
		return nil, err
	}
	sk, err := ConvertSecretToCurve25519(secret)
	if err != nil {
		return nil, err
	}
	return &BoxKeyPair{PublicKey: pub, SecretKey: sk}, nil
}
