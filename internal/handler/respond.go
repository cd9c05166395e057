package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/AlexZinkM/cosmic-wallet/internal/account"
	"github.com/AlexZinkM/cosmic-wallet/internal/common"
	"github.com/AlexZinkM/cosmic-wallet/internal/crypto"
	"github.com/AlexZinkM/cosmic-wallet/internal/model"
	"github.com/AlexZinkM/cosmic-wallet/internal/seed"
	"github.com/AlexZinkM/cosmic-wallet/internal/transaction"
	"github.com/AlexZinkM/cosmic-wallet/internal/wallet"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Error codes of model.ErrorResponse
const (
	CodeInvalidInput      = "invalid_input"
	CodeIncorrectPassword = "incorrect_password"
	CodeLocked            = "wallet_locked"
	CodeNoWallet          = "no_wallet"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeInsufficientFunds = "insufficient_funds"
	CodeCooldown          = "cooldown"
	CodeSubmissionFailed  = "submission_failed"
	CodeInternal          = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

// classify maps a core error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, seed.ErrIncorrectPassword), errors.Is(err, crypto.ErrInvalidBackupPassword):
		return http.StatusUnauthorized, CodeIncorrectPassword
	case errors.Is(err, seed.ErrLocked), errors.Is(err, wallet.ErrNoActiveAccount), errors.Is(err, transaction.ErrNoSigner):
		return http.StatusLocked, CodeLocked
	case errors.Is(err, seed.ErrNoWallet):
		return http.StatusNotFound, CodeNoWallet
	case errors.Is(err, account.ErrUnknownAccount):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, account.ErrDuplicateAccount), crypto.IsFileExistsError(err):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, transaction.ErrInsufficientFunds), errors.Is(err, transaction.ErrNoTokenAccount):
		return http.StatusBadRequest, CodeInsufficientFunds
	case errors.Is(err, wallet.ErrCooldown):
		return http.StatusTooManyRequests, CodeCooldown
	case errors.Is(err, transaction.ErrSubmissionFailed):
		return http.StatusBadGateway, CodeSubmissionFailed
	case common.IsValidationError(err),
		errors.Is(err, seed.ErrInvalidMnemonic),
		errors.Is(err, seed.ErrInvalidKeypair),
		errors.Is(err, seed.ErrUnsupportedPath),
		errors.Is(err, seed.ErrNotEncrypted),
		errors.Is(err, crypto.ErrEmptyPassword),
		errors.Is(err, wallet.ErrNoMnemonic),
		errors.Is(err, account.ErrInvalidSelector),
		errors.Is(err, transaction.ErrTransactionTooBig):
		return http.StatusBadRequest, CodeInvalidInput
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// decode reads a JSON body into v, reporting malformed input as a validation error.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, common.Invalid("body", fmt.Errorf("invalid JSON: %w", err)))
		return false
	}
	return true
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed. Should be "+method, http.StatusMethodNotAllowed)
		return false
	}
	return true
}
