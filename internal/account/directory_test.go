package account

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/AlexZinkM/cosmic-wallet/internal/common"
	"github.com/AlexZinkM/cosmic-wallet/internal/seed"
	"github.com/AlexZinkM/cosmic-wallet/internal/storage"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSeeds struct {
	ms  seed.MnemonicSeed
	err error
}

func (f *fakeSeeds) Current() (seed.MnemonicSeed, error) {
	if f.err != nil {
		return seed.MnemonicSeed{}, f.err
	}
	out := f.ms
	out.Seed = append([]byte(nil), f.ms.Seed...)
	out.ImportsEncryptionKey = append([]byte(nil), f.ms.ImportsEncryptionKey...)
	return out, nil
}

func newTestDirectory(t *testing.T) (*Directory, *storage.MemoryStore, *fakeSeeds) {
	t.Helper()
	s := make([]byte, 64)
	for i := range s {
		s[i] = byte(i)
	}
	key, err := seed.DeriveImportsEncryptionKey(s)
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	seeds := &fakeSeeds{ms: seed.MnemonicSeed{Seed: s, ImportsEncryptionKey: key, DerivationPath: seed.BIP44Change}}
	return NewDirectory(store, seeds, zerolog.Nop()), store, seeds
}

func TestDirectory_DefaultList(t *testing.T) {
	t.Parallel()
	d, _, seeds := newTestDirectory(t)

	accounts, err := d.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Main account", accounts[0].Name)
	assert.True(t, accounts[0].IsSelected)
	assert.False(t, accounts[0].Imported)

	want, err := seed.SeedToKeypair(seeds.ms.Seed, 0, seed.BIP44Change, 0)
	require.NoError(t, err)
	assert.Equal(t, want.PublicKey(), accounts[0].Address)
}

func TestDirectory_ListWhileLocked(t *testing.T) {
	t.Parallel()
	d, _, seeds := newTestDirectory(t)
	seeds.err = seed.ErrLocked

	accounts, err := d.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	_, err = d.AddDerivedAccount("x")
	require.ErrorIs(t, err, seed.ErrLocked)
}

func TestDirectory_AddDerivedAccount(t *testing.T) {
	t.Parallel()
	d, store, _ := newTestDirectory(t)

	acc, err := d.AddDerivedAccount("  Savings ")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), *acc.Selector.WalletIndex)
	assert.Equal(t, "Savings", acc.Name)

	acc2, err := d.AddDerivedAccount("")
	require.NoError(t, err)
	assert.Equal(t, "Account 2", acc2.Name)

	count, err := d.WalletCount()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), count)

	raw, ok, _ := store.Get(storage.NameKey(1))
	require.True(t, ok)
	assert.Equal(t, "Savings", string(raw))

	accounts, err := d.List()
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, []string{"Main account", "Savings", "Account 2"},
		[]string{accounts[0].Name, accounts[1].Name, accounts[2].Name})
	assert.NotEqual(t, accounts[0].Address, accounts[1].Address)
	assert.Equal(t, acc.Address, accounts[1].Address)

	// derived keys are never persisted
	keys, _ := store.Keys()
	assert.ElementsMatch(t, []string{storage.KeyWalletCount, storage.NameKey(1)}, keys)
}

// countFailStore fails writes of the wallet count.
type countFailStore struct {
	*storage.MemoryStore
}

func (s countFailStore) Set(key string, value []byte) error {
	if key == storage.KeyWalletCount {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(key, value)
}

func TestDirectory_AddDerivedAccountRollsBackName(t *testing.T) {
	t.Parallel()
	_, _, seeds := newTestDirectory(t)
	store := countFailStore{storage.NewMemoryStore()}
	d := NewDirectory(store, seeds, zerolog.Nop())

	_, err := d.AddDerivedAccount("Savings")
	require.ErrorContains(t, err, "disk full")

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	count, err := d.WalletCount()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)
}

func TestDirectory_ImportedAccounts(t *testing.T) {
	t.Parallel()
	d, store, _ := newTestDirectory(t)
	key := solana.NewWallet().PrivateKey

	acc, err := d.AddImportedAccount("Hot", key)
	require.NoError(t, err)
	assert.True(t, acc.Imported)
	assert.Equal(t, key.PublicKey(), acc.Address)

	_, err = d.AddImportedAccount("Again", key)
	require.ErrorIs(t, err, ErrDuplicateAccount)

	raw, ok, _ := store.Get(storage.KeyImportedAccounts)
	require.True(t, ok)
	var persisted map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &persisted))
	rec := persisted[key.PublicKey().String()]
	assert.Equal(t, "Hot", rec["name"])
	assert.NotEmpty(t, rec["ciphertext"])
	assert.NotEmpty(t, rec["nonce"])
	assert.NotContains(t, string(raw), key.String())

	s, err := d.Select(Imported(key.PublicKey()))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), s.PublicKey())
	assert.Equal(t, key, s.ExportSecret())

	accounts, err := d.List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.False(t, accounts[0].IsSelected)
	assert.True(t, accounts[1].IsSelected)

	require.NoError(t, d.RemoveImportedAccount(key.PublicKey()))
	sel, err := d.Selected()
	require.NoError(t, err)
	assert.True(t, sel.Equal(DefaultSelector()))
	require.ErrorIs(t, d.RemoveImportedAccount(key.PublicKey()), ErrUnknownAccount)
}

func TestDirectory_ImportedNeedsSameSeed(t *testing.T) {
	t.Parallel()
	d, _, seeds := newTestDirectory(t)
	key := solana.NewWallet().PrivateKey
	_, err := d.AddImportedAccount("", key)
	require.NoError(t, err)

	other := make([]byte, 32)
	seeds.ms.ImportsEncryptionKey = other
	_, err = d.Resolve(Imported(key.PublicKey()))
	require.Error(t, err)
}

func TestDirectory_SelectAndResolve(t *testing.T) {
	t.Parallel()
	d, store, seeds := newTestDirectory(t)
	_, err := d.AddDerivedAccount("")
	require.NoError(t, err)

	s, err := d.Select(Derived(1))
	require.NoError(t, err)
	want, _ := seed.SeedToKeypair(seeds.ms.Seed, 1, seed.BIP44Change, 0)
	assert.Equal(t, want.PublicKey(), s.PublicKey())

	raw, _, _ := store.Get(storage.KeyWalletSelector)
	assert.JSONEq(t, `{"walletIndex":1}`, string(raw))

	_, err = d.Select(Derived(5))
	require.ErrorIs(t, err, ErrUnknownAccount)
	_, err = d.Resolve(Imported(solana.NewWallet().PublicKey()))
	require.ErrorIs(t, err, ErrUnknownAccount)

	_, err = d.Select(Selector{})
	require.True(t, common.IsValidationError(err))

	// selection unchanged by failed selects
	sel, err := d.Selected()
	require.NoError(t, err)
	assert.True(t, sel.Equal(Derived(1)))
}

func TestDirectory_Rename(t *testing.T) {
	t.Parallel()
	d, _, _ := newTestDirectory(t)
	key := solana.NewWallet().PrivateKey
	_, err := d.AddImportedAccount("old", key)
	require.NoError(t, err)

	require.NoError(t, d.Rename(Derived(0), "Primary"))
	require.NoError(t, d.Rename(Imported(key.PublicKey()), "new"))
	require.ErrorIs(t, d.Rename(Derived(3), "x"), ErrUnknownAccount)

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	require.True(t, common.IsValidationError(d.Rename(Derived(0), string(long))))

	accounts, err := d.List()
	require.NoError(t, err)
	assert.Equal(t, "Primary", accounts[0].Name)
	assert.Equal(t, "new", accounts[1].Name)

	// keypair unaffected by rename
	s, err := d.Resolve(Imported(key.PublicKey()))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), s.PublicKey())

	require.NoError(t, d.Rename(Derived(0), ""))
	accounts, _ = d.List()
	assert.Equal(t, "Main account", accounts[0].Name)
}

func TestSelector(t *testing.T) {
	t.Parallel()
	pk := solana.NewWallet().PublicKey()

	assert.NoError(t, Derived(0).Validate())
	assert.NoError(t, Imported(pk).Validate())
	assert.ErrorIs(t, Selector{}.Validate(), ErrInvalidSelector)
	i := uint32(1)
	assert.ErrorIs(t, Selector{WalletIndex: &i, ImportedPubkey: &pk}.Validate(), ErrInvalidSelector)

	assert.True(t, Derived(2).Equal(Derived(2)))
	assert.False(t, Derived(2).Equal(Derived(3)))
	assert.False(t, Derived(0).Equal(Imported(pk)))

	out, err := json.Marshal(Imported(pk))
	require.NoError(t, err)
	assert.JSONEq(t, `{"importedPubkey":"`+pk.String()+`"}`, string(out))

	var back Selector
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, back.Equal(Imported(pk)))
}
