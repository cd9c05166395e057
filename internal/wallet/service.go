// Package wallet composes the seed, account, cluster, transaction and cache
// components into the operations a wallet front end calls.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AlexZinkM/cosmic-wallet/internal/account"
	"github.com/AlexZinkM/cosmic-wallet/internal/cache"
	"github.com/AlexZinkM/cosmic-wallet/internal/cluster"
	"github.com/AlexZinkM/cosmic-wallet/internal/seed"
	"github.com/AlexZinkM/cosmic-wallet/internal/signer"
	"github.com/AlexZinkM/cosmic-wallet/internal/transaction"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// ErrNoActiveAccount is returned by operations that need a signer while the
// wallet is locked or has not been created.
var ErrNoActiveAccount = fmt.Errorf("%w: wallet is locked or has no account", transaction.ErrNoSigner)

var ErrCooldown = errors.New("cooldown active")

// Config tunes the service.
type Config struct {
	RefreshInterval  time.Duration
	TransferCooldown time.Duration
	SkipPreflight    bool
	// BackupScryptN is the scrypt cost of backup files; 0 uses crypto.DefaultScryptN
	BackupScryptN int
}

// Deps are the components the service composes.
type Deps struct {
	Seeds    *seed.Manager
	Accounts *account.Directory
	Clusters *cluster.Manager
	Caches   cache.BalanceCaches
}

// session is the active account: its signer and the watcher of its balances.
// It is swapped as one value.
type session struct {
	selector account.Selector
	signer   *signer.KeypairSigner
	watcher  *cache.BalanceWatcher
}

// Service is the wallet facade.
type Service struct {
	seeds    *seed.Manager
	accounts *account.Directory
	clusters *cluster.Manager
	caches   cache.BalanceCaches
	txs      *transaction.Manager
	cfg      Config
	log      zerolog.Logger

	// switchMu serializes everything that replaces the session
	switchMu sync.Mutex
	active   atomic.Pointer[session]

	payMu        sync.Mutex
	lastTransfer time.Time
	now          func() time.Time
}

// NewService wires the components together.
func NewService(deps Deps, cfg Config, log zerolog.Logger) *Service {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = cache.DefaultInterval
	}
	s := &Service{
		seeds:    deps.Seeds,
		accounts: deps.Accounts,
		clusters: deps.Clusters,
		caches:   deps.Caches,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
	s.txs = transaction.NewManager(
		deps.Clusters,
		log.With().Str("component", "transaction").Logger(),
		transaction.WithRefresher(s),
		transaction.WithSkipPreflight(cfg.SkipPreflight),
	)
	return s
}

// Start restores the persisted seed state and activates the selected account
// when the wallet is already unlocked.
func (s *Service) Start(ctx context.Context) (seed.State, error) {
	state, err := s.seeds.Restore()
	if err != nil {
		return state, err
	}
	if state == seed.Unlocked {
		if err := s.activateSelected(ctx); err != nil {
			return state, err
		}
	}
	return state, nil
}

// State returns the seed manager state.
func (s *Service) State() seed.State {
	return s.seeds.State()
}

// Close deactivates the session and stops every refresh loop.
func (s *Service) Close() {
	s.deactivate()
	s.caches.Close()
}

// CreateWallet generates a new mnemonic, stores it and activates the first account.
// An empty password stores the wallet unencrypted.
func (s *Service) CreateWallet(ctx context.Context, password []byte, path seed.DerivationPath) (string, error) {
	mnemonic, sd, err := seed.GenerateMnemonicAndSeed()
	if err != nil {
		return "", err
	}
	defer clear(sd)

	if err := s.seeds.Store(mnemonic, sd, password, path); err != nil {
		return "", err
	}
	if err := s.activateSelected(ctx); err != nil {
		return "", err
	}
	return mnemonic, nil
}

// RestoreWallet stores the seed of an existing mnemonic.
func (s *Service) RestoreWallet(ctx context.Context, mnemonic string, password []byte, path seed.DerivationPath) error {
	sd, err := seed.MnemonicToSeed(mnemonic)
	if err != nil {
		return err
	}
	defer clear(sd)

	if err := s.seeds.Store(seed.NormalizeMnemonic(mnemonic), sd, password, path); err != nil {
		return err
	}
	return s.activateSelected(ctx)
}

// Unlock decrypts the stored seed and activates the selected account.
func (s *Service) Unlock(ctx context.Context, password []byte, stayLoggedIn bool) error {
	ms, err := s.seeds.Load(password, stayLoggedIn)
	if err != nil {
		return err
	}
	ms.Wipe()
	return s.activateSelected(ctx)
}

// Lock drops the in-memory seed and the active account.
func (s *Service) Lock() error {
	if err := s.seeds.Lock(); err != nil {
		return err
	}
	s.deactivate()
	return nil
}

// Forget erases every persisted wallet record and returns the cluster
// selection to its default.
func (s *Service) Forget() error {
	if err := s.seeds.Forget(); err != nil {
		return err
	}
	s.deactivate()
	s.clusters.Reset()
	return nil
}

// OnForget registers fn to run after the wallet is forgotten.
func (s *Service) OnForget(fn func()) (unsubscribe func()) {
	return s.seeds.Subscribe(func(st seed.State) {
		if st == seed.Forgotten {
			fn()
		}
	})
}

// ChangePassword re-encrypts the stored seed under newPassword.
func (s *Service) ChangePassword(oldPassword, newPassword []byte) error {
	return s.seeds.ChangePassword(oldPassword, newPassword)
}

// ExportMnemonic returns the mnemonic of the unlocked wallet.
func (s *Service) ExportMnemonic() (string, error) {
	ms, err := s.seeds.Current()
	if err != nil {
		return "", err
	}
	defer ms.Wipe()
	return ms.Mnemonic, nil
}

// Accounts lists the derived and imported accounts.
func (s *Service) Accounts() ([]account.Account, error) {
	return s.accounts.List()
}

// SelectAccount makes sel the active account. The new signer is resolved and
// its balances fetched before the session is swapped, so once this returns
// every balance read reflects sel.
func (s *Service) SelectAccount(ctx context.Context, sel account.Selector) (account.Account, error) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	sg, err := s.accounts.Select(sel)
	if err != nil {
		return account.Account{}, err
	}
	s.swapLocked(ctx, sel, sg)
	return s.describe(sg.PublicKey())
}

// AddAccount derives the next account.
func (s *Service) AddAccount(name string) (account.Account, error) {
	return s.accounts.AddDerivedAccount(name)
}

// ImportAccount stores an external secret key, accepted as base58 or a JSON byte array.
func (s *Service) ImportAccount(name, secret string) (account.Account, error) {
	key, err := seed.DecodeKeypair(secret)
	if err != nil {
		return account.Account{}, err
	}
	defer clear(key)
	return s.accounts.AddImportedAccount(name, key)
}

// RenameAccount updates the display name of sel.
func (s *Service) RenameAccount(sel account.Selector, name string) error {
	return s.accounts.Rename(sel, name)
}

// RemoveImportedAccount deletes an imported account, switching to the first
// derived account when it was active.
func (s *Service) RemoveImportedAccount(ctx context.Context, pubkey solana.PublicKey) error {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	if err := s.accounts.RemoveImportedAccount(pubkey); err != nil {
		return err
	}
	cur := s.active.Load()
	if cur == nil || !cur.signer.PublicKey().Equals(pubkey) {
		return nil
	}
	sg, err := s.accounts.Resolve(account.DefaultSelector())
	if err != nil {
		return err
	}
	s.swapLocked(ctx, account.DefaultSelector(), sg)
	return nil
}

// ExportSecretKey returns the base58 secret key of sel.
func (s *Service) ExportSecretKey(sel account.Selector) (string, error) {
	sg, err := s.accounts.Resolve(sel)
	if err != nil {
		return "", err
	}
	defer sg.Wipe()
	secret := sg.ExportSecret()
	defer clear(secret)
	return seed.EncodeKeypair(secret), nil
}

// ActiveAccount returns the active account.
func (s *Service) ActiveAccount() (account.Account, error) {
	cur := s.active.Load()
	if cur == nil {
		return account.Account{}, ErrNoActiveAccount
	}
	return s.describe(cur.signer.PublicKey())
}

// ActivePublicKey returns the address of the active account.
func (s *Service) ActivePublicKey() (solana.PublicKey, error) {
	cur := s.active.Load()
	if cur == nil {
		return solana.PublicKey{}, ErrNoActiveAccount
	}
	return cur.signer.PublicKey(), nil
}

// Balances returns the cached balances of the active account.
func (s *Service) Balances() (cache.Balances, error) {
	cur := s.active.Load()
	if cur == nil {
		return cache.Balances{}, ErrNoActiveAccount
	}
	return cur.watcher.Snapshot(), nil
}

// RefreshBalances re-fetches the balances of owner if it is the active account.
func (s *Service) RefreshBalances(ctx context.Context, owner solana.PublicKey) error {
	cur := s.active.Load()
	if cur == nil || !cur.signer.PublicKey().Equals(owner) {
		return nil
	}
	return cur.watcher.RefreshEverything(ctx)
}

// RefreshBalanceForMint re-reads one token balance of the active account.
func (s *Service) RefreshBalanceForMint(ctx context.Context, mint solana.PublicKey) error {
	cur := s.active.Load()
	if cur == nil {
		return ErrNoActiveAccount
	}
	return cur.watcher.RefreshBalanceForMint(ctx, mint)
}

// SetVisibility throttles background refreshes.
func (s *Service) SetVisibility(v cache.Visibility) {
	s.caches.SetVisibility(v)
}

// signer returns the active signer, captured once per operation.
func (s *Service) signer() (*signer.KeypairSigner, error) {
	cur := s.active.Load()
	if cur == nil {
		return nil, ErrNoActiveAccount
	}
	return cur.signer, nil
}

func (s *Service) describe(pubkey solana.PublicKey) (account.Account, error) {
	accounts, err := s.accounts.List()
	if err != nil {
		return account.Account{}, err
	}
	for _, acc := range accounts {
		if acc.Address.Equals(pubkey) {
			return acc, nil
		}
	}
	return account.Account{}, account.ErrUnknownAccount
}

// activateSelected installs the persisted selection, falling back to the first
// derived account when it no longer resolves.
func (s *Service) activateSelected(ctx context.Context) error {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	sel, err := s.accounts.Selected()
	if err != nil {
		return err
	}
	sg, err := s.accounts.Resolve(sel)
	if errors.Is(err, account.ErrUnknownAccount) {
		s.log.Warn().Str("selector", sel.String()).Msg("selected account not found, using default")
		sel = account.DefaultSelector()
		sg, err = s.accounts.Select(sel)
	}
	if err != nil {
		return err
	}
	s.swapLocked(ctx, sel, sg)
	return nil
}

// swapLocked builds the watcher for sg on the current connection, waits for its
// first refresh and only then publishes the new session.
func (s *Service) swapLocked(ctx context.Context, sel account.Selector, sg *signer.KeypairSigner) {
	binding := s.clusters.Current()
	w := cache.NewBalanceWatcher(s.caches, binding.Connection, sg.PublicKey(), s.cfg.RefreshInterval, nil)
	if err := w.RefreshEverything(ctx); err != nil {
		// the watcher keeps polling; readers see the failure flag
		s.log.Warn().Err(err).Str("address", sg.PublicKey().String()).Msg("initial balance refresh failed")
	}

	old := s.active.Swap(&session{selector: sel, signer: sg, watcher: w})
	if old != nil {
		old.watcher.Close()
	}
	s.log.Info().Str("address", sg.PublicKey().String()).Str("cluster", string(binding.Cluster.Slug)).Msg("active account changed")
}

func (s *Service) deactivate() {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()
	old := s.active.Swap(nil)
	if old == nil {
		return
	}
	old.watcher.Close()
	old.signer.Wipe()
}
