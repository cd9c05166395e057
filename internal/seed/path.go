package seed

import (
	"errors"
	"fmt"
)

// DerivationPath selects how account keys are derived from the seed.
type DerivationPath int

const (
	// Deprecated is BIP32 secp256k1 m/501'/{wallet}'/0/{account}
	Deprecated DerivationPath = iota
	// BIP44 is SLIP-0010 m/44'/501'/{wallet}'
	BIP44
	// BIP44Change is SLIP-0010 m/44'/501'/{wallet}'/0'
	BIP44Change
	// BIP44Root is m/44'/501'. Ledger only.
	BIP44Root
)

// DefaultDerivationPath is used for newly created wallets.
const DefaultDerivationPath = BIP44Change

var ErrUnsupportedPath = errors.New("derivation path is not supported for software keys")

var pathNames = map[DerivationPath]string{
	Deprecated:  "deprecated",
	BIP44:       "bip44",
	BIP44Change: "bip44Change",
	BIP44Root:   "bip44Root",
}

func (p DerivationPath) String() string {
	if s, ok := pathNames[p]; ok {
		return s
	}
	return fmt.Sprintf("DerivationPath(%d)", int(p))
}

// ParseDerivationPath parses the stored name. An empty string is Deprecated.
func ParseDerivationPath(s string) (DerivationPath, error) {
	if s == "" {
		return Deprecated, nil
	}
	for p, name := range pathNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown derivation path %q", s)
}

func (p DerivationPath) MarshalText() ([]byte, error) {
	if _, ok := pathNames[p]; !ok {
		return nil, fmt.Errorf("unknown derivation path %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *DerivationPath) UnmarshalText(text []byte) error {
	v, err := ParseDerivationPath(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Path returns the concrete path string for a wallet and account index.
func (p DerivationPath) Path(walletIndex, accountIndex uint32) (string, error) {
	switch p {
	case Deprecated:
		return fmt.Sprintf("m/501'/%d'/0/%d", walletIndex, accountIndex), nil
	case BIP44:
		return fmt.Sprintf("m/44'/501'/%d'", walletIndex), nil
	case BIP44Change:
		return fmt.Sprintf("m/44'/501'/%d'/0'", walletIndex), nil
	case BIP44Root:
		return "", ErrUnsupportedPath
	default:
		return "", fmt.Errorf("unknown derivation path %d", int(p))
	}
}
