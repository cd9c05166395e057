// Package storage holds the wallet's key/value persistence.
package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Persisted keys
const (
	KeyLocked             = "locked"
	KeyUnlocked           = "unlocked"
	KeyUnlockedExpiration = "unlockedExpiration"
	KeyWalletCount        = "walletCount"
	KeyImportedAccounts   = "walletImportedAddresses"
	KeyWalletSelector     = "walletSelector"
	KeyCustomCluster      = "customCluster"
	KeySelectedCluster    = "selectedCluster"
	KeyConnectedWallets   = "connectedWallets"
)

// Store is a flat key/value store. Values are opaque bytes, JSON unless noted.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(keys ...string) error
	Clear() error
	Keys() ([]string, error)
}

// NameKey returns the key of the display name for a derived account.
func NameKey(walletIndex uint32) string {
	return "name" + strconv.FormatUint(uint64(walletIndex), 10)
}

// GetJSON reads key and decodes it into v. Returns false if the key is absent.
func GetJSON(s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(key, raw)
}
