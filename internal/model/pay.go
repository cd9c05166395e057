package model

// TransferRequest represents request for POST /wallet/transfer.
// Mint is empty for SOL transfers.
type TransferRequest struct {
	ToAddress string `json:"toAddress" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Mint      string `json:"mint,omitempty"`
}

// TransferResponse represents response for POST /wallet/transfer
type TransferResponse struct {
	TxID     string `json:"txId"`
	Explorer string `json:"explorer"`
}
