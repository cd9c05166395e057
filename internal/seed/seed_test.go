package seed

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/AlexZinkM/cosmic-wallet/internal/storage"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zeroMnemonic = strings.Repeat("abandon ", 23) + "art"

const zeroSeedHex = "408b285c123836004f4b8842c89324c1f01382450c0d439af345ba7fc49acf705489c6fc77dbd4e3dc1dd8cc6bc9f043db8ada1e243c4a0eafb290d399480840"

func newTestManager(t *testing.T) (*Manager, *storage.MemoryStore, *storage.MemoryStore) {
	t.Helper()
	durable, session := storage.NewMemoryStore(), storage.NewMemoryStore()
	return NewManager(durable, session, zerolog.Nop(), WithIterations(1000)), durable, session
}

func TestNormalizeMnemonic(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "word1 word2 word3", NormalizeMnemonic("word1   word2\tword3"))
	assert.Equal(t, "a b", NormalizeMnemonic("  \n a \r\n b \t "))

	for _, in := range []string{"", "  x  y ", "a\t\tb\nc", "one"} {
		once := NormalizeMnemonic(in)
		assert.Equal(t, once, NormalizeMnemonic(once), in)
	}
}

func TestMnemonicToSeed(t *testing.T) {
	t.Parallel()
	seed, err := MnemonicToSeed(zeroMnemonic)
	require.NoError(t, err)
	assert.Equal(t, zeroSeedHex, hex.EncodeToString(seed))

	messy, err := MnemonicToSeed("  " + strings.ReplaceAll(zeroMnemonic, " ", "\t \n") + " ")
	require.NoError(t, err)
	assert.Equal(t, seed, messy)

	// bad checksum
	_, err = MnemonicToSeed(strings.Repeat("abandon ", 24))
	require.ErrorIs(t, err, ErrInvalidMnemonic)

	_, err = MnemonicToSeed("")
	require.ErrorIs(t, err, ErrInvalidMnemonic)

	_, err = MnemonicToSeed(strings.Replace(zeroMnemonic, "art", "arx", 1))
	require.ErrorIs(t, err, ErrInvalidMnemonic)
	assert.Contains(t, err.Error(), "word 24")
}

func TestDetectTypos(t *testing.T) {
	t.Parallel()
	typos := DetectTypos("abandon abandom zzzzzzzzzz")
	require.Len(t, typos, 2)
	assert.Equal(t, Typo{Index: 1, Word: "abandom", Suggestion: "abandon"}, typos[0])
	assert.Equal(t, 2, typos[1].Index)
	assert.Empty(t, typos[1].Suggestion)
}

func TestGenerateMnemonicAndSeed(t *testing.T) {
	t.Parallel()
	mnemonic, seed, err := GenerateMnemonicAndSeed()
	require.NoError(t, err)
	assert.Len(t, strings.Fields(mnemonic), 24)
	assert.Len(t, seed, 64)

	again, err := MnemonicToSeed(mnemonic)
	require.NoError(t, err)
	assert.Equal(t, seed, again)
}

func TestDerivationPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path DerivationPath
		want string
	}{
		{Deprecated, "m/501'/3'/0/1"},
		{BIP44, "m/44'/501'/3'"},
		{BIP44Change, "m/44'/501'/3'/0'"},
	}
	for _, tt := range tests {
		got, err := tt.path.Path(3, 1)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)

		parsed, err := ParseDerivationPath(tt.path.String())
		require.NoError(t, err)
		assert.Equal(t, tt.path, parsed)
	}

	_, err := BIP44Root.Path(0, 0)
	require.ErrorIs(t, err, ErrUnsupportedPath)

	p, err := ParseDerivationPath("")
	require.NoError(t, err)
	assert.Equal(t, Deprecated, p)

	_, err = ParseDerivationPath("bip9000")
	require.Error(t, err)

	out, err := json.Marshal(struct {
		P DerivationPath `json:"p"`
	}{BIP44Change})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"bip44Change"}`, string(out))
}

func TestSeedToKeypair(t *testing.T) {
	t.Parallel()
	seed, err := hex.DecodeString(zeroSeedHex)
	require.NoError(t, err)

	for _, path := range []DerivationPath{Deprecated, BIP44, BIP44Change} {
		a, err := SeedToKeypair(seed, 0, path, 0)
		require.NoError(t, err)
		b, err := SeedToKeypair(seed, 0, path, 0)
		require.NoError(t, err)
		assert.Equal(t, a, b, path.String())
		assert.Len(t, a, 64)

		c, err := SeedToKeypair(seed, 1, path, 0)
		require.NoError(t, err)
		assert.NotEqual(t, a.PublicKey(), c.PublicKey(), path.String())
	}

	bip44, _ := SeedToKeypair(seed, 0, BIP44, 0)
	change, _ := SeedToKeypair(seed, 0, BIP44Change, 0)
	assert.NotEqual(t, bip44.PublicKey(), change.PublicKey())

	_, err = SeedToKeypair(seed, 0, BIP44Root, 0)
	require.ErrorIs(t, err, ErrUnsupportedPath)
}

func TestSeedToKeypair_KnownAddress(t *testing.T) {
	t.Parallel()
	seed, err := MnemonicToSeed(strings.Repeat("abandon ", 11) + "about")
	require.NoError(t, err)

	key, err := SeedToKeypair(seed, 0, BIP44Change, 0)
	require.NoError(t, err)
	assert.Equal(t, "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk", key.PublicKey().String())
}

func TestDecodeKeypair(t *testing.T) {
	t.Parallel()
	seed, err := hex.DecodeString(zeroSeedHex)
	require.NoError(t, err)
	key, err := SeedToKeypair(seed, 2, BIP44Change, 0)
	require.NoError(t, err)

	fromJSON, err := DecodeKeypair(EncodeKeypairJSON(key))
	require.NoError(t, err)
	fromB58, err := DecodeKeypair(EncodeKeypair(key))
	require.NoError(t, err)
	assert.Equal(t, key, fromJSON)
	assert.Equal(t, fromJSON, fromB58)

	ints := make([]string, len(key))
	for i, b := range key {
		ints[i] = strconv.Itoa(int(b))
	}
	spaced, err := DecodeKeypair(" [" + strings.Join(ints, ", ") + "] ")
	require.NoError(t, err)
	assert.Equal(t, key, spaced)

	// public half does not match
	bad := append(solana.PrivateKey(nil), key...)
	bad[63] ^= 0xff
	_, err = DecodeKeypair(base58.Encode(bad))
	require.ErrorIs(t, err, ErrInvalidKeypair)

	for _, s := range []string{"", "[1,2,3]", "[300]", "not base58 0OIl", base58.Encode(key[:32])} {
		_, err := DecodeKeypair(s)
		assert.ErrorIs(t, err, ErrInvalidKeypair, s)
	}
}

func TestManager_StoreEncryptedAndLoad(t *testing.T) {
	t.Parallel()
	m, durable, session := newTestManager(t)
	seed, _ := hex.DecodeString(zeroSeedHex)

	var states []State
	m.Subscribe(func(s State) { states = append(states, s) })

	require.NoError(t, m.Store(zeroMnemonic, seed, []byte("hunter2"), BIP44Change))
	assert.Equal(t, Unlocked, m.State())

	var record EncryptedRecord
	ok, err := storage.GetJSON(durable, storage.KeyLocked, &record)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pbkdf2", record.KDF)
	assert.Equal(t, "sha256", record.Digest)
	assert.Equal(t, 1000, record.Iterations)
	salt, err := base58.Decode(record.Salt)
	require.NoError(t, err)
	assert.Len(t, salt, 16)
	_, ok, _ = durable.Get(storage.KeyUnlocked)
	assert.False(t, ok)

	cur, err := m.Current()
	require.NoError(t, err)
	assert.Equal(t, zeroMnemonic, cur.Mnemonic)
	assert.Equal(t, seed, cur.Seed)
	assert.Len(t, cur.ImportsEncryptionKey, 32)

	require.NoError(t, m.Lock())
	assert.Equal(t, Locked, m.State())
	_, err = m.Current()
	require.ErrorIs(t, err, ErrLocked)
	hasLocked, err := m.HasLocked()
	require.NoError(t, err)
	assert.True(t, hasLocked)

	_, err = m.Load([]byte("wrong"), false)
	require.ErrorIs(t, err, ErrIncorrectPassword)
	assert.Equal(t, Locked, m.State())

	loaded, err := m.Load([]byte("hunter2"), false)
	require.NoError(t, err)
	assert.Equal(t, seed, loaded.Seed)
	assert.Equal(t, BIP44Change, loaded.DerivationPath)
	assert.Equal(t, cur.ImportsEncryptionKey, loaded.ImportsEncryptionKey)
	_, ok, _ = session.Get(storage.KeyUnlocked)
	assert.False(t, ok)

	assert.Equal(t, []State{Unlocked, Locked, Unlocked}, states)
}

func TestManager_StayLoggedIn(t *testing.T) {
	t.Parallel()
	m, durable, session := newTestManager(t)
	seed, _ := hex.DecodeString(zeroSeedHex)
	require.NoError(t, m.Store(zeroMnemonic, seed, []byte("pw"), BIP44))
	require.NoError(t, m.Lock())

	_, err := m.Load([]byte("pw"), true)
	require.NoError(t, err)
	_, ok, _ := session.Get(storage.KeyUnlocked)
	assert.True(t, ok)

	// a restart within the session skips the password
	restarted := NewManager(durable, session, zerolog.Nop())
	state, err := restarted.Restore()
	require.NoError(t, err)
	assert.Equal(t, Unlocked, state)
	cur, err := restarted.Current()
	require.NoError(t, err)
	assert.Equal(t, BIP44, cur.DerivationPath)

	// lock clears the mirror
	require.NoError(t, restarted.Lock())
	_, ok, _ = session.Get(storage.KeyUnlocked)
	assert.False(t, ok)

	fresh := NewManager(durable, storage.NewMemoryStore(), zerolog.Nop())
	state, err = fresh.Restore()
	require.NoError(t, err)
	assert.Equal(t, Locked, state)
}

func TestManager_Plaintext(t *testing.T) {
	t.Parallel()
	m, durable, _ := newTestManager(t)
	seed, _ := hex.DecodeString(zeroSeedHex)

	require.NoError(t, m.Store(zeroMnemonic, seed, []byte("pw"), BIP44Change))
	require.NoError(t, m.Store(zeroMnemonic, seed, nil, BIP44Change))

	_, ok, _ := durable.Get(storage.KeyLocked)
	assert.False(t, ok)
	raw, ok, _ := durable.Get(storage.KeyUnlocked)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"seed":"`+zeroSeedHex+`"`)

	require.ErrorIs(t, m.Lock(), ErrNotEncrypted)
	require.ErrorIs(t, m.ChangePassword([]byte("a"), []byte("b")), ErrNotEncrypted)

	restarted := NewManager(durable, storage.NewMemoryStore(), zerolog.Nop())
	state, err := restarted.Restore()
	require.NoError(t, err)
	assert.Equal(t, Unlocked, state)
}

func TestManager_RestoreLegacyExpiration(t *testing.T) {
	t.Parallel()
	durable := storage.NewMemoryStore()
	seed, _ := hex.DecodeString(zeroSeedHex)
	plain, _ := json.Marshal(plainRecord{Mnemonic: zeroMnemonic, Seed: hex.EncodeToString(seed), DerivationPath: BIP44})
	require.NoError(t, durable.Set(storage.KeyUnlocked, plain))

	now := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, durable.Set(storage.KeyUnlockedExpiration, []byte(strconv.FormatInt(now.UnixMilli()-1, 10))))

	m := NewManager(durable, storage.NewMemoryStore(), zerolog.Nop(), WithClock(func() time.Time { return now }))
	state, err := m.Restore()
	require.NoError(t, err)
	assert.Equal(t, Uninitialized, state)
	keys, _ := durable.Keys()
	assert.Empty(t, keys)
}

func TestManager_Forget(t *testing.T) {
	t.Parallel()
	m, durable, session := newTestManager(t)
	seed, _ := hex.DecodeString(zeroSeedHex)
	require.NoError(t, m.Store(zeroMnemonic, seed, []byte("pw"), BIP44Change))
	require.NoError(t, durable.Set(storage.NameKey(0), []byte(`"Main account"`)))
	require.NoError(t, session.Set(storage.KeyUnlocked, []byte("{}")))

	require.NoError(t, m.Forget())
	assert.Equal(t, Forgotten, m.State())

	keys, _ := durable.Keys()
	assert.Empty(t, keys)
	_, ok, _ := session.Get(storage.KeyUnlocked)
	assert.False(t, ok)

	_, err := m.Load([]byte("pw"), false)
	require.ErrorIs(t, err, ErrNoWallet)
	_, err = m.Current()
	require.ErrorIs(t, err, ErrNoWallet)

	// a new wallet can be created afterwards
	require.NoError(t, m.Store(zeroMnemonic, seed, []byte("pw2"), BIP44Change))
	assert.Equal(t, Unlocked, m.State())
}

func TestManager_ChangePassword(t *testing.T) {
	t.Parallel()
	m, durable, _ := newTestManager(t)
	seed, _ := hex.DecodeString(zeroSeedHex)
	require.NoError(t, m.Store(zeroMnemonic, seed, []byte("old"), BIP44Change))

	var before EncryptedRecord
	_, _ = storage.GetJSON(durable, storage.KeyLocked, &before)

	require.ErrorIs(t, m.ChangePassword([]byte("nope"), []byte("new")), ErrIncorrectPassword)
	require.Error(t, m.ChangePassword([]byte("old"), nil))
	require.NoError(t, m.ChangePassword([]byte("old"), []byte("new")))

	var after EncryptedRecord
	_, _ = storage.GetJSON(durable, storage.KeyLocked, &after)
	assert.NotEqual(t, before.Salt, after.Salt)
	assert.NotEqual(t, before.Nonce, after.Nonce)

	require.NoError(t, m.Lock())
	_, err := m.Load([]byte("old"), false)
	require.ErrorIs(t, err, ErrIncorrectPassword)
	loaded, err := m.Load([]byte("new"), false)
	require.NoError(t, err)
	assert.Equal(t, seed, loaded.Seed)
}

func TestManager_StoreRejectsLedgerPath(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(t)
	seed, _ := hex.DecodeString(zeroSeedHex)
	require.ErrorIs(t, m.Store(zeroMnemonic, seed, nil, BIP44Root), ErrUnsupportedPath)
	assert.Equal(t, Uninitialized, m.State())
}
