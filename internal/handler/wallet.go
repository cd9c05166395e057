package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/AlexZinkM/cosmic-wallet/internal/account"
	"github.com/AlexZinkM/cosmic-wallet/internal/cache"
	"github.com/AlexZinkM/cosmic-wallet/internal/common"
	"github.com/AlexZinkM/cosmic-wallet/internal/model"
	"github.com/AlexZinkM/cosmic-wallet/internal/seed"
	"github.com/AlexZinkM/cosmic-wallet/internal/transaction"
	"github.com/AlexZinkM/cosmic-wallet/internal/wallet"

	"github.com/gagliardetto/solana-go"
)

// WalletHandler serves the wallet lifecycle, account and transfer endpoints
type WalletHandler struct {
	svc *wallet.Service
}

// NewWalletHandler creates a WalletHandler over svc
func NewWalletHandler(svc *wallet.Service) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// Create handles POST /wallet/create
// @Summary      Create wallet
// @Description  Generates a 24 word mnemonic, stores the seed (encrypted when a password is given) and activates the first account
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateWalletRequest  true  "Password and derivation path"
// @Success      200      {object}  model.CreateWalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/create [post]
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.CreateWalletRequest
	if !decode(w, r, &req) {
		return
	}
	path, err := derivationPath(req.DerivationPath)
	if err != nil {
		writeError(w, err)
		return
	}

	password := []byte(req.Password)
	defer clear(password) // Always clear password from memory

	mnemonic, err := h.svc.CreateWallet(r.Context(), password, path)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := model.CreateWalletResponse{
		Success:  true,
		Message:  "Wallet created successfully",
		Mnemonic: mnemonic,
	}
	if pk, err := h.svc.ActivePublicKey(); err == nil {
		resp.Address = pk.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Restore handles POST /wallet/restore
// @Summary      Restore wallet
// @Description  Restores a wallet from its mnemonic
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.RestoreWalletRequest  true  "Mnemonic, password and derivation path"
// @Success      200      {object}  model.StatusResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/restore [post]
func (h *WalletHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.RestoreWalletRequest
	if !decode(w, r, &req) {
		return
	}
	path, err := derivationPath(req.DerivationPath)
	if err != nil {
		writeError(w, err)
		return
	}

	password := []byte(req.Password)
	defer clear(password)

	if err := h.svc.RestoreWallet(r.Context(), req.Mnemonic, password, path); err != nil {
		writeError(w, err)
		return
	}
	h.status(w, "Wallet restored successfully")
}

// Unlock handles POST /wallet/unlock
// @Summary      Unlock wallet
// @Description  Decrypts the stored seed and activates the selected account
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.UnlockRequest  true  "Password"
// @Success      200      {object}  model.StatusResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /wallet/unlock [post]
func (h *WalletHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.UnlockRequest
	if !decode(w, r, &req) {
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	if err := h.svc.Unlock(r.Context(), password, req.StayLoggedIn); err != nil {
		writeError(w, err)
		return
	}
	h.status(w, "Wallet unlocked")
}

// Lock handles POST /wallet/lock
// @Summary      Lock wallet
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /wallet/lock [post]
func (h *WalletHandler) Lock(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if err := h.svc.Lock(); err != nil {
		writeError(w, err)
		return
	}
	h.status(w, "Wallet locked")
}

// Forget handles POST /wallet/forget
// @Summary      Forget wallet
// @Description  Erases the seed, account names and imported keys
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /wallet/forget [post]
func (h *WalletHandler) Forget(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if err := h.svc.Forget(); err != nil {
		writeError(w, err)
		return
	}
	h.status(w, "Wallet forgotten")
}

// ChangePassword handles POST /wallet/password
// @Summary      Change password
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ChangePasswordRequest  true  "Old and new password"
// @Success      200      {object}  model.StatusResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /wallet/password [post]
func (h *WalletHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	oldPassword, newPassword := []byte(req.OldPassword), []byte(req.NewPassword)
	defer clear(oldPassword)
	defer clear(newPassword)

	if err := h.svc.ChangePassword(oldPassword, newPassword); err != nil {
		writeError(w, err)
		return
	}
	h.status(w, "Password changed")
}

// Mnemonic handles GET /wallet/mnemonic
// @Summary      Export mnemonic
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.MnemonicResponse
// @Failure      423  {object}  model.ErrorResponse
// @Router       /wallet/mnemonic [get]
func (h *WalletHandler) Mnemonic(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	mnemonic, err := h.svc.ExportMnemonic()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MnemonicResponse{Mnemonic: mnemonic})
}

// Accounts handles GET and POST /wallet/accounts
// @Summary      List or add accounts
// @Description  GET lists derived then imported accounts. POST derives the next account, or imports secretKey when set
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.AddAccountRequest  false  "Name and optional secret key"
// @Success      200      {array}   model.Account
// @Router       /wallet/accounts [get]
// @Router       /wallet/accounts [post]
func (h *WalletHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := h.svc.Accounts()
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]model.Account, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, toAccount(a))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var req model.AddAccountRequest
		if !decode(w, r, &req) {
			return
		}
		var (
			acc account.Account
			err error
		)
		if req.SecretKey != "" {
			acc, err = h.svc.ImportAccount(req.Name, req.SecretKey)
		} else {
			acc, err = h.svc.AddAccount(req.Name)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccount(acc))
	default:
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
	}
}

// SelectAccount handles POST /wallet/accounts/select
// @Summary      Select account
// @Description  Makes the account active; returns once its balances are loaded
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.SelectAccountRequest  true  "Account selector"
// @Success      200      {object}  model.Account
// @Failure      404      {object}  model.ErrorResponse
// @Router       /wallet/accounts/select [post]
func (h *WalletHandler) SelectAccount(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.SelectAccountRequest
	if !decode(w, r, &req) {
		return
	}
	sel, err := toSelector(req.AccountSelector)
	if err != nil {
		writeError(w, err)
		return
	}
	acc, err := h.svc.SelectAccount(r.Context(), sel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccount(acc))
}

// RenameAccount handles POST /wallet/accounts/rename
// @Summary      Rename account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.RenameAccountRequest  true  "Account selector and name"
// @Success      200      {object}  model.StatusResponse
// @Router       /wallet/accounts/rename [post]
func (h *WalletHandler) RenameAccount(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.RenameAccountRequest
	if !decode(w, r, &req) {
		return
	}
	sel, err := toSelector(req.AccountSelector)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.RenameAccount(sel, req.Name); err != nil {
		writeError(w, err)
		return
	}
	h.status(w, "Account renamed")
}

// RemoveAccount handles POST /wallet/accounts/remove
// @Summary      Remove imported account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.AccountSelector  true  "importedPubkey of the account"
// @Success      200      {object}  model.StatusResponse
// @Router       /wallet/accounts/remove [post]
func (h *WalletHandler) RemoveAccount(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.AccountSelector
	if !decode(w, r, &req) {
		return
	}
	sel, err := toSelector(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if !sel.IsImported() {
		writeError(w, common.Invalid("importedPubkey", account.ErrInvalidSelector))
		return
	}
	if err := h.svc.RemoveImportedAccount(r.Context(), *sel.ImportedPubkey); err != nil {
		writeError(w, err)
		return
	}
	h.status(w, "Account removed")
}

// ExportAccount handles POST /wallet/accounts/export
// @Summary      Export secret key
// @Description  Returns the base58 secret key of the account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.AccountSelector  true  "Account selector"
// @Success      200      {object}  model.ExportAccountResponse
// @Router       /wallet/accounts/export [post]
func (h *WalletHandler) ExportAccount(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.AccountSelector
	if !decode(w, r, &req) {
		return
	}
	sel, err := toSelector(req)
	if err != nil {
		writeError(w, err)
		return
	}
	secret, err := h.svc.ExportSecretKey(sel)
	if err != nil {
		writeError(w, err)
		return
	}
	key, err := solana.PrivateKeyFromBase58(secret)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ExportAccountResponse{Address: key.PublicKey().String(), SecretKey: secret})
}

// Receive handles GET /wallet/receive
// @Summary      Receive address
// @Description  Active address with explorer link and a base64 PNG QR code
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.ReceiveResponse
// @Router       /wallet/receive [get]
func (h *WalletHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	info, err := h.svc.Receive()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ReceiveResponse{
		Address:  info.Address.String(),
		Explorer: info.Explorer,
		QR:       info.QRCode,
	})
}

// GetBalance handles GET /wallet/balance
// @Summary      Get balances
// @Description  Cached SOL and token balances of the active account. refresh=true fetches them first
// @Tags         wallet
// @Produce      json
// @Param        refresh  query     bool  false  "Fetch before answering"
// @Param        mint     query     string  false  "Only re-read this token"
// @Success      200      {object}  model.BalanceResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	if mint := q.Get("mint"); mint != "" {
		pk, err := transaction.ParseAddress("mint", mint)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := h.svc.RefreshBalanceForMint(r.Context(), pk); err != nil {
			writeError(w, err)
			return
		}
	} else if q.Get("refresh") == "true" {
		owner, err := h.svc.ActivePublicKey()
		if err != nil {
			writeError(w, err)
			return
		}
		// failures are reported through the entry error below
		_ = h.svc.RefreshBalances(r.Context(), owner)
	}

	b, err := h.svc.Balances()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalance(b))
}

// Transfer handles POST /wallet/transfer
// @Summary      Send SOL or tokens
// @Description  Sends SOL, or the SPL token given by mint, to the specified address
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransferRequest  true  "Payment data"
// @Success      200      {object}  model.TransferResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      429      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /wallet/transfer [post]
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.TransferRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Transfer(r.Context(), wallet.TransferRequest{
		Recipient: req.ToAddress,
		Amount:    req.Amount,
		Mint:      req.Mint,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TransferResponse{TxID: res.Signature.String(), Explorer: res.Explorer})
}

func (h *WalletHandler) status(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, model.StatusResponse{
		Success: true,
		Message: message,
		State:   h.svc.State().String(),
	})
}

func derivationPath(s string) (seed.DerivationPath, error) {
	if strings.TrimSpace(s) == "" {
		return seed.DefaultDerivationPath, nil
	}
	p, err := seed.ParseDerivationPath(s)
	if err != nil {
		return 0, common.Invalid("derivationPath", err)
	}
	return p, nil
}

func toSelector(m model.AccountSelector) (account.Selector, error) {
	var sel account.Selector
	sel.WalletIndex = m.WalletIndex
	if m.ImportedPubkey != "" {
		pk, err := transaction.ParseAddress("importedPubkey", m.ImportedPubkey)
		if err != nil {
			return sel, err
		}
		sel.ImportedPubkey = &pk
	}
	if err := sel.Validate(); err != nil {
		return sel, common.Invalid("selector", err)
	}
	return sel, nil
}

func toAccount(a account.Account) model.Account {
	out := model.Account{
		Address:    a.Address.String(),
		Name:       a.Name,
		IsSelected: a.IsSelected,
		Imported:   a.Imported,
	}
	out.Selector.WalletIndex = a.Selector.WalletIndex
	if a.Selector.ImportedPubkey != nil {
		out.Selector.ImportedPubkey = a.Selector.ImportedPubkey.String()
	}
	if !a.Imported {
		out.DerivationPath = a.DerivationPath.String()
	}
	return out
}

func toBalance(b cache.Balances) model.BalanceResponse {
	out := model.BalanceResponse{
		Address:  b.Owner.String(),
		Endpoint: b.Endpoint,
		SOL:      common.LamportsToSOL(b.Native.Value),
		Lamports: b.Native.Value,
		Loaded:   b.Native.Loaded,
		Tokens:   make([]model.TokenBalance, 0, len(b.Tokens.Value)),
	}
	if b.Native.Err != nil {
		out.Error = b.Native.Err.Error()
	}
	if b.Tokens.Err != nil {
		out.TokensError = b.Tokens.Err.Error()
	}
	if !b.Native.UpdatedAt.IsZero() {
		t := b.Native.UpdatedAt
		out.UpdatedAt = &t
	}
	for _, t := range b.Tokens.Value {
		ui := t.UIAmount
		if ui == "" {
			ui = common.FormatUnits(t.Amount, t.Decimals)
		}
		out.Tokens = append(out.Tokens, model.TokenBalance{
			TokenAccount: t.TokenAccount.String(),
			Mint:         t.Mint.String(),
			Amount:       common.FormatUnits(t.Amount, 0),
			Decimals:     t.Decimals,
			UIAmount:     ui,
		})
	}
	return out
}

// Backup handles POST /wallet/backup
// @Summary      Write backup file
// @Description  Encrypts the mnemonic and imported keys with scrypt and AES-GCM and writes them to a .cwt file
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.BackupRequest  true  "File path and backup password"
// @Success      200      {object}  model.BackupResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallet/backup [post]
func (h *WalletHandler) Backup(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.BackupRequest
	if !decode(w, r, &req) {
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	addr, err := h.svc.ExportBackup(req.FilePath, password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BackupResponse{
		Success:  true,
		Message:  "Backup written successfully",
		FilePath: req.FilePath,
		Address:  addr.String(),
	})
}

// RestoreBackup handles POST /wallet/backup/restore
// @Summary      Restore from backup file
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.RestoreBackupRequest  true  "File path and passwords"
// @Success      200      {object}  model.StatusResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /wallet/backup/restore [post]
func (h *WalletHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.RestoreBackupRequest
	if !decode(w, r, &req) {
		return
	}
	backupPassword, password := []byte(req.BackupPassword), []byte(req.Password)
	defer clear(backupPassword)
	defer clear(password)

	if err := h.svc.RestoreBackup(r.Context(), req.FilePath, backupPassword, password); err != nil {
		writeError(w, err)
		return
	}
	h.status(w, "Wallet restored from backup")
}

// Visibility handles POST /wallet/visibility
// @Summary      Report UI visibility
// @Description  Hidden or unfocused front ends slow the background balance refresh
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.VisibilityRequest  true  "visible, unfocused or hidden"
// @Success      200      {object}  model.StatusResponse
// @Router       /wallet/visibility [post]
func (h *WalletHandler) Visibility(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.VisibilityRequest
	if !decode(w, r, &req) {
		return
	}
	var v cache.Visibility
	switch req.Visibility {
	case cache.Visible.String():
		v = cache.Visible
	case cache.Unfocused.String():
		v = cache.Unfocused
	case cache.Hidden.String():
		v = cache.Hidden
	default:
		writeError(w, common.Invalid("visibility", fmt.Errorf("unknown visibility %q", req.Visibility)))
		return
	}
	h.svc.SetVisibility(v)
	h.status(w, "Visibility set to "+req.Visibility)
}
