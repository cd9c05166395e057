package model

// CreateWalletRequest represents request for POST /wallet/create
type CreateWalletRequest struct {
	Password       string `json:"password"`
	DerivationPath string `json:"derivationPath,omitempty"`
}

// CreateWalletResponse represents response for POST /wallet/create
type CreateWalletResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Mnemonic string `json:"mnemonic"`
	Address  string `json:"address,omitempty"`
}

// RestoreWalletRequest represents request for POST /wallet/restore
type RestoreWalletRequest struct {
	Mnemonic       string `json:"mnemonic" binding:"required"`
	Password       string `json:"password"`
	DerivationPath string `json:"derivationPath,omitempty"`
}

// UnlockRequest represents request for POST /wallet/unlock
type UnlockRequest struct {
	Password     string `json:"password" binding:"required"`
	StayLoggedIn bool   `json:"stayLoggedIn"`
}

// ChangePasswordRequest represents request for POST /wallet/password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// StatusResponse is returned by state changing endpoints without a payload
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	State   string `json:"state"`
}

// MnemonicResponse represents response for GET /wallet/mnemonic
type MnemonicResponse struct {
	Mnemonic string `json:"mnemonic"`
}
