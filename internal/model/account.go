package model

// AccountSelector references a derived or imported account, exactly one field set
type AccountSelector struct {
	WalletIndex    *uint32 `json:"walletIndex,omitempty"`
	ImportedPubkey string  `json:"importedPubkey,omitempty"`
}

// Account represents one entry of GET /wallet/accounts
type Account struct {
	Address        string          `json:"address"`
	Name           string          `json:"name"`
	Selector       AccountSelector `json:"selector"`
	IsSelected     bool            `json:"isSelected"`
	Imported       bool            `json:"imported"`
	DerivationPath string          `json:"derivationPath,omitempty"`
}

// AddAccountRequest represents request for POST /wallet/accounts.
// SecretKey is set to import an external key, as base58 or a JSON byte array.
type AddAccountRequest struct {
	Name      string `json:"name"`
	SecretKey string `json:"secretKey,omitempty"`
}

// SelectAccountRequest represents request for POST /wallet/accounts/select
type SelectAccountRequest struct {
	AccountSelector
}

// RenameAccountRequest represents request for POST /wallet/accounts/rename
type RenameAccountRequest struct {
	AccountSelector
	Name string `json:"name" binding:"required"`
}

// ExportAccountResponse represents response for POST /wallet/accounts/export
type ExportAccountResponse struct {
	Address   string `json:"address"`
	SecretKey string `json:"secretKey"`
}
