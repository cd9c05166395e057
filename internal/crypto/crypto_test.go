package crypto

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/curve25519"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDeriveEncryptionKey(t *testing.T) {
	t.Parallel()

	// well-known PBKDF2-HMAC-SHA256 vector
	key, err := DeriveEncryptionKey([]byte("password"), []byte("salt"), 1, "sha256")
	require.NoError(t, err)
	assert.Equal(t, "120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b", hex.EncodeToString(key))

	again, err := DeriveEncryptionKey([]byte("password"), []byte("salt"), 1, "")
	require.NoError(t, err)
	assert.Equal(t, key, again)

	other, err := DeriveEncryptionKey([]byte("password"), []byte("salt"), 1, "sha512")
	require.NoError(t, err)
	assert.Len(t, other, KeyLen)
	assert.NotEqual(t, key, other)

	_, err = DeriveEncryptionKey([]byte("password"), []byte("salt"), 1, "md5")
	require.ErrorIs(t, err, ErrUnknownDigest)

	_, err = DeriveEncryptionKey(nil, []byte("salt"), 1, "sha256")
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, err = DeriveEncryptionKey([]byte("p"), []byte("salt"), 0, "sha256")
	require.Error(t, err)
}

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()
	salt, err := NewSalt()
	require.NoError(t, err)
	assert.Len(t, salt, SaltLen)

	key, err := DeriveEncryptionKey([]byte("correct horse"), salt, 1000, DefaultDigest)
	require.NoError(t, err)

	plaintext := []byte(`{"mnemonic":"abandon"}`)
	ct, nonce, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	assert.Len(t, nonce, NonceLen)

	got, err := Decrypt(ct, nonce, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)

	wrong, err := DeriveEncryptionKey([]byte("battery staple"), salt, 1000, DefaultDigest)
	require.NoError(t, err)
	got, err = Decrypt(ct, nonce, wrong)
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Nil(t, got)

	tampered := bytes.Clone(ct)
	tampered[len(tampered)-1] ^= 0x01
	_, err = Decrypt(tampered, nonce, key)
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	_, err = Decrypt(ct, nonce[:10], key)
	require.Error(t, err)
	_, _, err = Encrypt(plaintext, key[:16])
	require.Error(t, err)
}

func TestEncrypt_FreshNonce(t *testing.T) {
	t.Parallel()
	key := bytes.Repeat([]byte{7}, KeyLen)
	_, n1, err := Encrypt([]byte("x"), key)
	require.NoError(t, err)
	_, n2, err := Encrypt([]byte("x"), key)
	require.NoError(t, err)
	assert.NotEqual(t, n1, n2)
}

func TestParsePath(t *testing.T) {
	t.Parallel()
	got, err := ParsePath("m/44'/501'/0'/0'")
	require.NoError(t, err)
	assert.Equal(t, []uint32{44 + HardenedOffset, 501 + HardenedOffset, HardenedOffset, HardenedOffset}, got)

	got, err = ParsePath("m/501'/3'/0/1")
	require.NoError(t, err)
	assert.Equal(t, []uint32{501 + HardenedOffset, 3 + HardenedOffset, 0, 1}, got)

	got, err = ParsePath("m")
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, bad := range []string{"", "44'/501'", "m/x'", "m//1", "m/4294967296"} {
		_, err := ParsePath(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestDeriveEd25519_SLIP10Vector(t *testing.T) {
	t.Parallel()
	seed := mustHex(t, "000102030405060708090a0b0c0d0e0f")

	master := Ed25519MasterKey(seed)
	assert.Equal(t, "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7", hex.EncodeToString(master.Key))
	assert.Equal(t, "90046a93de5380a72b5e45010748567d5ea02bbf6522f979e05c0d8d8ca9fffb", hex.EncodeToString(master.ChainCode))

	child := master.Child(0)
	assert.Equal(t, "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3", hex.EncodeToString(child.Key))
	assert.Equal(t, "8b59aa11380b624e81507a27fedda59fea6d0b779a778918a2fd3590e16e9c69", hex.EncodeToString(child.ChainCode))

	key, err := DeriveEd25519(seed, "m/0'")
	require.NoError(t, err)
	assert.Equal(t, child.Key, key)

	_, err = DeriveEd25519(seed, "m/0'/1")
	require.ErrorIs(t, err, ErrNonHardened)
}

func TestDeriveEd25519_Deterministic(t *testing.T) {
	t.Parallel()
	seed := bytes.Repeat([]byte{0xab}, 64)
	a, err := DeriveEd25519(seed, "m/44'/501'/2'/0'")
	require.NoError(t, err)
	b, err := DeriveEd25519(seed, "m/44'/501'/2'/0'")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := DeriveEd25519(seed, "m/44'/501'/3'/0'")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDeriveSecp256k1(t *testing.T) {
	t.Parallel()
	seed := mustHex(t, "000102030405060708090a0b0c0d0e0f")

	// BIP32 test vector 1, chain m/0'
	key, err := DeriveSecp256k1(seed, "m/0'")
	require.NoError(t, err)
	assert.Equal(t, "edb2e14f9ee77d26dd93b4ecede8d16ed408ce149b6cd80b0715a2d911a0afea", hex.EncodeToString(key))

	master, err := DeriveSecp256k1(seed, "m")
	require.NoError(t, err)
	assert.Equal(t, "e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35", hex.EncodeToString(master))

	normal, err := DeriveSecp256k1(seed, "m/10016'/0")
	require.NoError(t, err)
	assert.Len(t, normal, 32)
}

func TestDiffieHellmanKeyPair(t *testing.T) {
	t.Parallel()
	peerPub, peerPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, ourPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	pair, err := DiffieHellmanKeyPair(peerPub, ourPriv)
	require.NoError(t, err)
	assert.Len(t, pair.PublicKey, 32)
	assert.Len(t, pair.SecretKey, 32)

	// the converted peer public key must match the peer's converted secret
	peerSecret, err := ConvertSecretToCurve25519(peerPriv)
	require.NoError(t, err)
	derived, err := curve25519.X25519(peerSecret, curve25519.Basepoint)
	require.NoError(t, err)
	assert.Equal(t, derived, pair.PublicKey)

	fromSeed, err := ConvertSecretToCurve25519(ourPriv.Seed())
	require.NoError(t, err)
	assert.Equal(t, pair.SecretKey, fromSeed)

	_, err = DiffieHellmanKeyPair(peerPub[:31], ourPriv)
	require.ErrorIs(t, err, ErrInvalidPublicKey)
	_, err = ConvertSecretToCurve25519(make([]byte, 10))
	require.Error(t, err)
}
