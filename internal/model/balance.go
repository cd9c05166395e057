package model

import "time"

// TokenBalance is one SPL token account of the owner
type TokenBalance struct {
	TokenAccount string `json:"tokenAccount"`
	Mint         string `json:"mint"`
	Amount       string `json:"amount"`
	Decimals     uint8  `json:"decimals"`
	UIAmount     string `json:"uiAmount"`
}

// BalanceResponse represents response for GET /wallet/balance.
// Error is set when the latest refresh failed; the amounts are then the last known ones.
type BalanceResponse struct {
	Address     string         `json:"address"`
	Endpoint    string         `json:"endpoint"`
	SOL         string         `json:"sol"`
	Lamports    uint64         `json:"lamports"`
	Loaded      bool           `json:"loaded"`
	Error       string         `json:"error,omitempty"`
	Tokens      []TokenBalance `json:"tokens"`
	TokensError string         `json:"tokensError,omitempty"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
}

// ReceiveResponse represents response for GET /wallet/receive
type ReceiveResponse struct {
	Address  string `json:"address"`
	Explorer string `json:"explorer"`
	QR       string `json:"QR"`
}

// VisibilityRequest represents request for POST /wallet/visibility
type VisibilityRequest struct {
	// Visibility is visible, unfocused or hidden
	Visibility string `json:"visibility" binding:"required"`
}
