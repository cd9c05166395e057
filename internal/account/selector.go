package account

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ErrInvalidSelector = errors.New("selector must name exactly one of walletIndex or importedPubkey")

// Selector references the active account without holding its key.
type Selector struct {
	WalletIndex    *uint32           `json:"walletIndex,omitempty"`
	ImportedPubkey *solana.PublicKey `json:"importedPubkey,omitempty"`
}

// DefaultSelector points at the first derived account.
func DefaultSelector() Selector {
	return Derived(0)
}

// Derived selects the derived account at index.
func Derived(index uint32) Selector {
	return Selector{WalletIndex: &index}
}

// Imported selects the imported account with the given public key.
func Imported(pubkey solana.PublicKey) Selector {
	return Selector{ImportedPubkey: &pubkey}
}

// Validate checks that exactly one field is set.
func (s Selector) Validate() error {
	if (s.WalletIndex == nil) == (s.ImportedPubkey == nil) {
		return ErrInvalidSelector
	}
	return nil
}

// IsImported reports whether s names an imported account.
func (s Selector) IsImported() bool {
	return s.ImportedPubkey != nil
}

// Equal compares two selectors by value.
func (s Selector) Equal(o Selector) bool {
	switch {
	case s.WalletIndex != nil && o.WalletIndex != nil:
		return *s.WalletIndex == *o.WalletIndex
	case s.ImportedPubkey != nil && o.ImportedPubkey != nil:
		return s.ImportedPubkey.Equals(*o.ImportedPubkey)
	default:
		return false
	}
}

func (s Selector) String() string {
	switch {
	case s.WalletIndex != nil:
		return fmt.Sprintf("derived:%d", *s.WalletIndex)
	case s.ImportedPubkey != nil:
		return "imported:" + s.ImportedPubkey.String()
	default:
		return "none"
	}
}
