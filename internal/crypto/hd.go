package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip32"
)

// HardenedOffset is added to hardened path segments.
const HardenedOffset uint32 = 0x80000000

var (
	ErrInvalidPath = errors.New("invalid derivation path")
	// ErrNonHardened is returned for ed25519 paths with a normal segment
	ErrNonHardened = errors.New("ed25519 derivation supports hardened segments only")
)

var ed25519Curve = []byte("ed25519 seed")

// ExtendedKey is a SLIP-0010 node.
type ExtendedKey struct {
	Key       []byte
	ChainCode []byte
}

// ParsePath parses a path like "m/44'/501'/0'/0'" into child indexes,
// hardened segments carrying HardenedOffset.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	out := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		hardened := strings.HasSuffix(p, "'")
		p = strings.TrimSuffix(p, "'")
		n, err := strconv.ParseUint(p, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
		idx := uint32(n)
		if hardened {
			idx += HardenedOffset
		}
		out = append(out, idx)
	}
	return out, nil
}

// Ed25519MasterKey computes the SLIP-0010 master node for seed.
func Ed25519MasterKey(seed []byte) ExtendedKey {
	mac := hmac.New(sha512.New, ed25519Curve)
	mac.Write(seed)
	sum := mac.Sum(nil)
	return ExtendedKey{Key: sum[:32], ChainCode: sum[32:]}
}

// Child derives the hardened child at index (HardenedOffset is added if missing).
func (k ExtendedKey) Child(index uint32) ExtendedKey {
	if index < HardenedOffset {
		index += HardenedOffset
	}
	data := make([]byte, 0, 1+32+4)
	data = append(data, 0x00)
	data = append(data, k.Key...)
	data = binary.BigEndian.AppendUint32(data, index)

	mac := hmac.New(sha512.New, k.ChainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	clear(data)
	return ExtendedKey{Key: sum[:32], ChainCode: sum[32:]}
}

// DeriveEd25519 returns the 32-byte ed25519 private seed at path.
func DeriveEd25519(seed []byte, path string) ([]byte, error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	for _, idx := range indexes {
		if idx < HardenedOffset {
			return nil, ErrNonHardened
		}
	}

	node := Ed25519MasterKey(seed)
	for _, idx := range indexes {
		node = node.Child(idx)
	}
	return node.Key, nil
}

// DeriveSecp256k1 returns the 32-byte BIP32 private key at path.
func DeriveSecp256k1(seed []byte, path string) ([]byte, error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	for _, idx := range indexes {
		key, err = key.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", idx, err)
		}
	}

	out := make([]byte, 32)
	copy(out[32-len(key.Key):], key.Key)
	return out, nil
}
