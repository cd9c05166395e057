// Package account maps derived indexes and imported keys to named accounts
// and tracks which one is active.
package account

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/AlexZinkM/cosmic-wallet/internal/common"
	"github.com/AlexZinkM/cosmic-wallet/internal/crypto"
	"github.com/AlexZinkM/cosmic-wallet/internal/seed"
	"github.com/AlexZinkM/cosmic-wallet/internal/signer"
	"github.com/AlexZinkM/cosmic-wallet/internal/storage"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
)

const (
	mainAccountName     = "Main account"
	importedAccountName = "Imported account"
	maxNameLen          = 64
)

var (
	ErrUnknownAccount   = errors.New("unknown account")
	ErrDuplicateAccount = errors.New("account already imported")
)

// SeedSource hands out the unlocked seed.
type SeedSource interface {
	Current() (seed.MnemonicSeed, error)
}

// Account is one entry of the account list.
type Account struct {
	Selector       Selector
	Address        solana.PublicKey
	Name           string
	IsSelected     bool
	Imported       bool
	DerivationPath seed.DerivationPath
}

// importedRecord is the persisted form of an imported account, keyed by address.
// Only the encrypted secret is stored.
type importedRecord struct {
	Name       string `json:"name"`
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
}

// Directory persists account metadata. Derived keys are never stored.
type Directory struct {
	mu    sync.Mutex
	store storage.Store
	seeds SeedSource
	log   zerolog.Logger
}

// NewDirectory creates a Directory over store.
func NewDirectory(store storage.Store, seeds SeedSource, log zerolog.Logger) *Directory {
	return &Directory{store: store, seeds: seeds, log: log}
}

// DefaultName is the display name of a derived account with no stored name.
func DefaultName(walletIndex uint32) string {
	if walletIndex == 0 {
		return mainAccountName
	}
	return "Account " + strconv.FormatUint(uint64(walletIndex), 10)
}

// WalletCount returns the number of derived accounts (at least 1).
func (d *Directory) WalletCount() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.walletCount()
}

// List returns derived accounts in index order, then imported accounts ordered
// by address. It is empty while no seed is unlocked.
func (d *Directory) List() ([]Account, error) {
	ms, err := d.seeds.Current()
	if err != nil {
		if errors.Is(err, seed.ErrLocked) || errors.Is(err, seed.ErrNoWallet) {
			return []Account{}, nil
		}
		return nil, err
	}
	defer ms.Wipe()

	d.mu.Lock()
	defer d.mu.Unlock()

	count, err := d.walletCount()
	if err != nil {
		return nil, err
	}
	selected, err := d.selected()
	if err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, count)
	for i := uint32(0); i < count; i++ {
		key, err := seed.SeedToKeypair(ms.Seed, i, ms.DerivationPath, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to derive account %d: %w", i, err)
		}
		name, err := d.name(i)
		if err != nil {
			return nil, err
		}
		sel := Derived(i)
		accounts = append(accounts, Account{
			Selector:       sel,
			Address:        key.PublicKey(),
			Name:           name,
			IsSelected:     sel.Equal(selected),
			DerivationPath: ms.DerivationPath,
		})
		clear(key)
	}

	imports, err := d.imports()
	if err != nil {
		return nil, err
	}
	for _, addr := range slices.Sorted(maps.Keys(imports)) {
		pk, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			d.log.Warn().Str("address", addr).Msg("skipping imported account with invalid address")
			continue
		}
		sel := Imported(pk)
		name := imports[addr].Name
		if name == "" {
			name = importedAccountName
		}
		accounts = append(accounts, Account{
			Selector:   sel,
			Address:    pk,
			Name:       name,
			IsSelected: sel.Equal(selected),
			Imported:   true,
		})
	}
	return accounts, nil
}

// Selected returns the persisted active account selector.
func (d *Directory) Selected() (Selector, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selected()
}

// Resolve derives or decrypts the keypair that sel refers to.
func (d *Directory) Resolve(sel Selector) (*signer.KeypairSigner, error) {
	if err := sel.Validate(); err != nil {
		return nil, common.Invalid("selector", err)
	}
	ms, err := d.seeds.Current()
	if err != nil {
		return nil, err
	}
	defer ms.Wipe()

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolve(ms, sel)
}

// Select resolves sel and persists it as the active account.
func (d *Directory) Select(sel Selector) (*signer.KeypairSigner, error) {
	if err := sel.Validate(); err != nil {
		return nil, common.Invalid("selector", err)
	}
	ms, err := d.seeds.Current()
	if err != nil {
		return nil, err
	}
	defer ms.Wipe()

	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.resolve(ms, sel)
	if err != nil {
		return nil, err
	}
	if err := storage.SetJSON(d.store, storage.KeyWalletSelector, sel); err != nil {
		s.Wipe()
		return nil, err
	}
	d.log.Info().Str("selector", sel.String()).Str("address", s.PublicKey().String()).Msg("account selected")
	return s, nil
}

// AddDerivedAccount allocates the next index and records its name.
func (d *Directory) AddDerivedAccount(name string) (Account, error) {
	name, err := cleanName(name)
	if err != nil {
		return Account{}, err
	}
	ms, err := d.seeds.Current()
	if err != nil {
		return Account{}, err
	}
	defer ms.Wipe()

	d.mu.Lock()
	defer d.mu.Unlock()

	index, err := d.walletCount()
	if err != nil {
		return Account{}, err
	}
	key, err := seed.SeedToKeypair(ms.Seed, index, ms.DerivationPath, 0)
	if err != nil {
		return Account{}, fmt.Errorf("failed to derive account %d: %w", index, err)
	}
	defer clear(key)

	if err := d.setName(index, name); err != nil {
		return Account{}, err
	}
	if err := storage.SetJSON(d.store, storage.KeyWalletCount, index+1); err != nil {
		if rbErr := d.store.Delete(storage.NameKey(index)); rbErr != nil {
			d.log.Error().Err(rbErr).Uint32("wallet_index", index).Msg("failed to roll back account name")
		}
		return Account{}, err
	}

	if name == "" {
		name = DefaultName(index)
	}
	d.log.Info().Uint32("wallet_index", index).Msg("derived account added")
	return Account{
		Selector:       Derived(index),
		Address:        key.PublicKey(),
		Name:           name,
		DerivationPath: ms.DerivationPath,
	}, nil
}

// AddImportedAccount encrypts key under the seed's imports key and stores it by address.
func (d *Directory) AddImportedAccount(name string, key solana.PrivateKey) (Account, error) {
	name, err := cleanName(name)
	if err != nil {
		return Account{}, err
	}
	if len(key) != 64 {
		return Account{}, common.Invalid("privateKey", seed.ErrInvalidKeypair)
	}
	ms, err := d.seeds.Current()
	if err != nil {
		return Account{}, err
	}
	defer ms.Wipe()

	ciphertext, nonce, err := crypto.Encrypt(key, ms.ImportsEncryptionKey)
	if err != nil {
		return Account{}, fmt.Errorf("failed to encrypt imported key: %w", err)
	}

	pub := key.PublicKey()
	addr := pub.String()

	d.mu.Lock()
	defer d.mu.Unlock()

	imports, err := d.imports()
	if err != nil {
		return Account{}, err
	}
	if _, ok := imports[addr]; ok {
		return Account{}, ErrDuplicateAccount
	}
	imports[addr] = importedRecord{
		Name:       name,
		Ciphertext: base58.Encode(ciphertext),
		Nonce:      base58.Encode(nonce),
	}
	if err := storage.SetJSON(d.store, storage.KeyImportedAccounts, imports); err != nil {
		return Account{}, err
	}

	if name == "" {
		name = importedAccountName
	}
	d.log.Info().Str("address", addr).Msg("imported account added")
	return Account{Selector: Imported(pub), Address: pub, Name: name, Imported: true}, nil
}

// Rename updates the display name only. An empty name restores the default.
func (d *Directory) Rename(sel Selector, name string) error {
	if err := sel.Validate(); err != nil {
		return common.Invalid("selector", err)
	}
	name, err := cleanName(name)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if sel.WalletIndex != nil {
		count, err := d.walletCount()
		if err != nil {
			return err
		}
		if *sel.WalletIndex >= count {
			return ErrUnknownAccount
		}
		return d.setName(*sel.WalletIndex, name)
	}

	imports, err := d.imports()
	if err != nil {
		return err
	}
	addr := sel.ImportedPubkey.String()
	rec, ok := imports[addr]
	if !ok {
		return ErrUnknownAccount
	}
	rec.Name = name
	imports[addr] = rec
	return storage.SetJSON(d.store, storage.KeyImportedAccounts, imports)
}

// RemoveImportedAccount deletes an imported account. If it was active the
// selection falls back to the first derived account.
func (d *Directory) RemoveImportedAccount(pubkey solana.PublicKey) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	imports, err := d.imports()
	if err != nil {
		return err
	}
	addr := pubkey.String()
	if _, ok := imports[addr]; !ok {
		return ErrUnknownAccount
	}
	delete(imports, addr)
	if err := storage.SetJSON(d.store, storage.KeyImportedAccounts, imports); err != nil {
		return err
	}

	selected, err := d.selected()
	if err != nil {
		return err
	}
	if selected.Equal(Imported(pubkey)) {
		if err := storage.SetJSON(d.store, storage.KeyWalletSelector, DefaultSelector()); err != nil {
			return err
		}
	}
	d.log.Info().Str("address", addr).Msg("imported account removed")
	return nil
}

func (d *Directory) resolve(ms seed.MnemonicSeed, sel Selector) (*signer.KeypairSigner, error) {
	if sel.WalletIndex != nil {
		count, err := d.walletCount()
		if err != nil {
			return nil, err
		}
		if *sel.WalletIndex >= count {
			return nil, ErrUnknownAccount
		}
		key, err := seed.SeedToKeypair(ms.Seed, *sel.WalletIndex, ms.DerivationPath, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to derive account %d: %w", *sel.WalletIndex, err)
		}
		defer clear(key)
		return signer.NewKeypairSigner(key)
	}

	imports, err := d.imports()
	if err != nil {
		return nil, err
	}
	rec, ok := imports[sel.ImportedPubkey.String()]
	if !ok {
		return nil, ErrUnknownAccount
	}
	ciphertext, err := base58.Decode(rec.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode imported ciphertext: %w", err)
	}
	nonce, err := base58.Decode(rec.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode imported nonce: %w", err)
	}
	secret, err := crypto.Decrypt(ciphertext, nonce, ms.ImportsEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt imported account: %w", err)
	}
	defer clear(secret)

	s, err := signer.NewKeypairSigner(solana.PrivateKey(secret))
	if err != nil {
		return nil, err
	}
	if !s.PublicKey().Equals(*sel.ImportedPubkey) {
		s.Wipe()
		return nil, errors.New("imported key does not match address")
	}
	return s, nil
}

func (d *Directory) walletCount() (uint32, error) {
	var count uint32
	ok, err := storage.GetJSON(d.store, storage.KeyWalletCount, &count)
	if err != nil {
		return 0, err
	}
	if !ok || count == 0 {
		return 1, nil
	}
	return count, nil
}

func (d *Directory) selected() (Selector, error) {
	var sel Selector
	ok, err := storage.GetJSON(d.store, storage.KeyWalletSelector, &sel)
	if err != nil {
		return Selector{}, err
	}
	if !ok || sel.Validate() != nil {
		return DefaultSelector(), nil
	}
	return sel, nil
}

func (d *Directory) name(index uint32) (string, error) {
	raw, ok, err := d.store.Get(storage.NameKey(index))
	if err != nil {
		return "", err
	}
	if !ok || len(raw) == 0 {
		return DefaultName(index), nil
	}
	return string(raw), nil
}

func (d *Directory) setName(index uint32, name string) error {
	if name == "" {
		return d.store.Delete(storage.NameKey(index))
	}
	return d.store.Set(storage.NameKey(index), []byte(name))
}

func (d *Directory) imports() (map[string]importedRecord, error) {
	imports := map[string]importedRecord{}
	if _, err := storage.GetJSON(d.store, storage.KeyImportedAccounts, &imports); err != nil {
		return nil, err
	}
	if imports == nil {
		imports = map[string]importedRecord{}
	}
	return imports, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) > maxNameLen {
		return "", common.Invalid("name", fmt.Errorf("longer than %d bytes", maxNameLen))
	}
	return name, nil
}
