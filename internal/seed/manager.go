// Package seed owns the mnemonic and seed lifecycle: generation, derivation,
// encrypted persistence, lock/unlock and forget.
package seed

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/AlexZinkM/cosmic-wallet/internal/crypto"
	"github.com/AlexZinkM/cosmic-wallet/internal/event"
	"github.com/AlexZinkM/cosmic-wallet/internal/storage"

	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
)

var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrNoWallet          = errors.New("no wallet found")
	ErrLocked            = errors.New("wallet is locked")
	// ErrNotEncrypted is returned for password operations on a wallet stored without one
	ErrNotEncrypted = errors.New("wallet is not password protected")
)

// State of the seed manager.
type State int

const (
	Uninitialized State = iota
	Unlocked
	Locked
	Forgotten
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Unlocked:
		return "unlocked"
	case Locked:
		return "locked"
	case Forgotten:
		return "forgotten"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// MnemonicSeed is the unlocked secret material of the wallet.
type MnemonicSeed struct {
	Mnemonic             string
	Seed                 []byte
	ImportsEncryptionKey []byte
	DerivationPath       DerivationPath
}

func (m MnemonicSeed) clone() MnemonicSeed {
	m.Seed = append([]byte(nil), m.Seed...)
	m.ImportsEncryptionKey = append([]byte(nil), m.ImportsEncryptionKey...)
	return m
}

// Wipe zeroes the secret byte slices.
func (m *MnemonicSeed) Wipe() {
	clear(m.Seed)
	clear(m.ImportsEncryptionKey)
	*m = MnemonicSeed{}
}

// EncryptedRecord is the persisted form of a password protected seed.
type EncryptedRecord struct {
	Encrypted  string `json:"encrypted"`
	Nonce      string `json:"nonce"`
	KDF        string `json:"kdf"`
	Salt       string `json:"salt"`
	Iterations int    `json:"iterations"`
	Digest     string `json:"digest"`
}

type plainRecord struct {
	Mnemonic       string         `json:"mnemonic"`
	Seed           string         `json:"seed"`
	DerivationPath DerivationPath `json:"derivationPath"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithIterations overrides the PBKDF2 iteration count for new records.
func WithIterations(n int) Option {
	return func(m *Manager) { m.iterations = n }
}

// WithClock overrides the time source used for legacy expiry cleanup.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager holds the unlocked seed in memory and its persisted forms.
// durable holds the encrypted or plaintext record, session the "stay logged in" mirror.
type Manager struct {
	mu      sync.RWMutex
	durable storage.Store
	session storage.Store
	log     zerolog.Logger

	iterations int
	now        func() time.Time

	state   State
	current MnemonicSeed

	feed event.Feed[State]
}

// NewManager creates a Manager. Call Restore to pick up persisted state.
func NewManager(durable, session storage.Store, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		durable:    durable,
		session:    session,
		log:        log,
		iterations: crypto.DefaultIterations,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads the seed from the session mirror or the plaintext record,
// otherwise reports Locked when an encrypted record exists.
func (m *Manager) Restore() (State, error) {
	m.mu.Lock()
	state, err := m.restoreLocked()
	m.mu.Unlock()
	if err != nil {
		return state, err
	}

	m.log.Info().Str("state", state.String()).Msg("seed restored")
	m.feed.Send(state)
	return state, nil
}

func (m *Manager) restoreLocked() (State, error) {
	if err := m.cleanupLegacyExpiration(); err != nil {
		return m.state, err
	}

	for _, s := range []storage.Store{m.session, m.durable} {
		raw, ok, err := s.Get(storage.KeyUnlocked)
		if err != nil {
			return m.state, fmt.Errorf("failed to read unlocked seed: %w", err)
		}
		if !ok || len(raw) == 0 {
			continue
		}
		ms, err := decodePlaintext(raw)
		clear(raw)
		if err != nil {
			return m.state, err
		}
		m.setCurrentLocked(ms, Unlocked)
		return m.state, nil
	}

	hasLocked, err := m.hasEncryptedRecord()
	if err != nil {
		return m.state, err
	}
	if hasLocked {
		m.setCurrentLocked(MnemonicSeed{}, Locked)
	} else {
		m.setCurrentLocked(MnemonicSeed{}, Uninitialized)
	}
	return m.state, nil
}

// cleanupLegacyExpiration drops plaintext seeds left by the old expiring unlock scheme.
func (m *Manager) cleanupLegacyExpiration() error {
	raw, ok, err := m.durable.Get(storage.KeyUnlockedExpiration)
	if err != nil || !ok {
		return err
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || ms < m.now().UnixMilli() {
		if err := m.durable.Delete(storage.KeyUnlocked, storage.KeyUnlockedExpiration); err != nil {
			return fmt.Errorf("failed to clean up expired seed: %w", err)
		}
		m.log.Info().Msg("removed expired plaintext seed")
	}
	return nil
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current returns a copy of the unlocked seed. The caller should Wipe it.
func (m *Manager) Current() (MnemonicSeed, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != Unlocked {
		return MnemonicSeed{}, m.stateErr()
	}
	return m.current.clone(), nil
}

// HasLocked reports whether an encrypted record is waiting for a password.
func (m *Manager) HasLocked() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == Unlocked {
		return false, nil
	}
	return m.hasEncryptedRecord()
}

// Subscribe registers fn for state changes.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	return m.feed.Subscribe(fn)
}

// Store persists a mnemonic and seed, encrypted when password is non-empty,
// and unlocks it. Exactly one persisted form exists afterwards.
func (m *Manager) Store(mnemonic string, seed []byte, password []byte, path DerivationPath) error {
	if _, err := path.Path(0, 0); err != nil {
		return err
	}

	plaintext, err := json.Marshal(plainRecord{
		Mnemonic:       mnemonic,
		Seed:           hex.EncodeToString(seed),
		DerivationPath: path,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal seed: %w", err)
	}
	defer clear(plaintext)

	importsKey, err := DeriveImportsEncryptionKey(seed)
	if err != nil {
		return fmt.Errorf("failed to derive imports key: %w", err)
	}

	m.mu.Lock()
	if len(password) > 0 {
		record, err := encryptRecord(plaintext, password, m.iterations)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		if err := storage.SetJSON(m.durable, storage.KeyLocked, record); err != nil {
			m.mu.Unlock()
			return err
		}
		err = m.durable.Delete(storage.KeyUnlocked)
		if err != nil {
			m.mu.Unlock()
			return err
		}
	} else {
		if err := m.durable.Set(storage.KeyUnlocked, plaintext); err != nil {
			m.mu.Unlock()
			return err
		}
		if err := m.durable.Delete(storage.KeyLocked); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	if err := m.session.Delete(storage.KeyUnlocked); err != nil {
		m.mu.Unlock()
		return err
	}

	m.setCurrentLocked(MnemonicSeed{
		Mnemonic:             mnemonic,
		Seed:                 append([]byte(nil), seed...),
		ImportsEncryptionKey: importsKey,
		DerivationPath:       path,
	}, Unlocked)
	m.mu.Unlock()

	m.log.Info().Bool("encrypted", len(password) > 0).Str("derivation_path", path.String()).Msg("seed stored")
	m.feed.Send(Unlocked)
	return nil
}

// Load decrypts the encrypted record. With stayLoggedIn the plaintext is
// mirrored to the session store so a restart within the session skips the password.
func (m *Manager) Load(password []byte, stayLoggedIn bool) (MnemonicSeed, error) {
	m.mu.Lock()
	record, err := m.readRecord()
	if err != nil {
		m.mu.Unlock()
		return MnemonicSeed{}, err
	}

	plaintext, err := decryptRecord(record, password)
	if err != nil {
		m.mu.Unlock()
		if errors.Is(err, ErrIncorrectPassword) {
			m.log.Warn().Msg("unlock failed: incorrect password")
		}
		return MnemonicSeed{}, err
	}
	defer clear(plaintext)

	ms, err := decodePlaintext(plaintext)
	if err != nil {
		m.mu.Unlock()
		return MnemonicSeed{}, err
	}

	if stayLoggedIn {
		if err := m.session.Set(storage.KeyUnlocked, plaintext); err != nil {
			m.mu.Unlock()
			ms.Wipe()
			return MnemonicSeed{}, fmt.Errorf("failed to write session seed: %w", err)
		}
	}

	m.setCurrentLocked(ms, Unlocked)
	out := m.current.clone()
	m.mu.Unlock()

	m.log.Info().Bool("stay_logged_in", stayLoggedIn).Msg("wallet unlocked")
	m.feed.Send(Unlocked)
	return out, nil
}

// Lock drops the in-memory seed and the session mirror. The encrypted record stays.
func (m *Manager) Lock() error {
	m.mu.Lock()
	if m.state != Unlocked {
		err := m.stateErr()
		m.mu.Unlock()
		return err
	}
	hasLocked, err := m.hasEncryptedRecord()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if !hasLocked {
		m.mu.Unlock()
		return ErrNotEncrypted
	}
	if err := m.session.Delete(storage.KeyUnlocked); err != nil {
		m.mu.Unlock()
		return err
	}
	m.setCurrentLocked(MnemonicSeed{}, Locked)
	m.mu.Unlock()

	m.log.Info().Msg("wallet locked")
	m.feed.Send(Locked)
	return nil
}

// Forget wipes every persisted wallet value and the in-memory seed.
func (m *Manager) Forget() error {
	m.mu.Lock()
	if err := m.durable.Clear(); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to clear wallet storage: %w", err)
	}
	if err := m.session.Delete(storage.KeyUnlocked); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to clear session seed: %w", err)
	}
	m.setCurrentLocked(MnemonicSeed{}, Forgotten)
	m.mu.Unlock()

	m.log.Warn().Msg("wallet forgotten")
	m.feed.Send(Forgotten)
	return nil
}

// ChangePassword re-encrypts the record under newPassword with a fresh salt and nonce.
func (m *Manager) ChangePassword(oldPassword, newPassword []byte) error {
	if len(newPassword) == 0 {
		return crypto.ErrEmptyPassword
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record, err := m.readRecord()
	if err != nil {
		return err
	}
	plaintext, err := decryptRecord(record, oldPassword)
	if err != nil {
		return err
	}
	defer clear(plaintext)

	next, err := encryptRecord(plaintext, newPassword, m.iterations)
	if err != nil {
		return err
	}
	if err := storage.SetJSON(m.durable, storage.KeyLocked, next); err != nil {
		return err
	}

	m.log.Info().Msg("password changed")
	return nil
}

func (m *Manager) setCurrentLocked(ms MnemonicSeed, state State) {
	m.current.Wipe()
	m.current = ms
	m.state = state
}

func (m *Manager) stateErr() error {
	switch m.state {
	case Locked:
		return ErrLocked
	default:
		return ErrNoWallet
	}
}

func (m *Manager) hasEncryptedRecord() (bool, error) {
	_, ok, err := m.durable.Get(storage.KeyLocked)
	if err != nil {
		return false, fmt.Errorf("failed to read encrypted seed: %w", err)
	}
	return ok, nil
}

func (m *Manager) readRecord() (EncryptedRecord, error) {
	var record EncryptedRecord
	ok, err := storage.GetJSON(m.durable, storage.KeyLocked, &record)
	if err != nil {
		return record, err
	}
	if !ok {
		if _, plain, _ := m.durable.Get(storage.KeyUnlocked); plain {
			return record, ErrNotEncrypted
		}
		return record, ErrNoWallet
	}
	return record, nil
}

func encryptRecord(plaintext, password []byte, iterations int) (EncryptedRecord, error) {
	salt, err := crypto.NewSalt()
	if err != nil {
		return EncryptedRecord{}, err
	}
	key, err := crypto.DeriveEncryptionKey(password, salt, iterations, crypto.DefaultDigest)
	if err != nil {
		return EncryptedRecord{}, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	encrypted, nonce, err := crypto.Encrypt(plaintext, key)
	if err != nil {
		return EncryptedRecord{}, fmt.Errorf("failed to encrypt seed: %w", err)
	}

	return EncryptedRecord{
		Encrypted:  base58.Encode(encrypted),
		Nonce:      base58.Encode(nonce),
		KDF:        crypto.KDFName,
		Salt:       base58.Encode(salt),
		Iterations: iterations,
		Digest:     crypto.DefaultDigest,
	}, nil
}

func decryptRecord(record EncryptedRecord, password []byte) ([]byte, error) {
	if record.KDF != "" && record.KDF != crypto.KDFName {
		return nil, fmt.Errorf("unsupported kdf %q", record.KDF)
	}
	encrypted, err := base58.Decode(record.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	nonce, err := base58.Decode(record.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	salt, err := base58.Decode(record.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	key, err := crypto.DeriveEncryptionKey(password, salt, record.Iterations, record.Digest)
	if err != nil {
		if errors.Is(err, crypto.ErrEmptyPassword) {
			return nil, ErrIncorrectPassword
		}
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	plaintext, err := crypto.Decrypt(encrypted, nonce, key)
	if err != nil {
		if errors.Is(err, crypto.ErrAuthenticationFailed) {
			return nil, ErrIncorrectPassword
		}
		return nil, fmt.Errorf("failed to decrypt seed: %w", err)
	}
	return plaintext, nil
}

func decodePlaintext(raw []byte) (MnemonicSeed, error) {
	var rec plainRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return MnemonicSeed{}, fmt.Errorf("failed to unmarshal seed: %w", err)
	}
	seed, err := hex.DecodeString(rec.Seed)
	if err != nil || len(seed) == 0 {
		return MnemonicSeed{}, fmt.Errorf("failed to decode seed: invalid hex")
	}
	importsKey, err := DeriveImportsEncryptionKey(seed)
	if err != nil {
		clear(seed)
		return MnemonicSeed{}, fmt.Errorf("failed to derive imports key: %w", err)
	}
	return MnemonicSeed{
		Mnemonic:             rec.Mnemonic,
		Seed:                 seed,
		ImportsEncryptionKey: importsKey,
		DerivationPath:       rec.DerivationPath,
	}, nil
}
