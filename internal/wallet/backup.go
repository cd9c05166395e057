package wallet

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/AlexZinkM/cosmic-wallet/internal/account"
	"github.com/AlexZinkM/cosmic-wallet/internal/common"
	"github.com/AlexZinkM/cosmic-wallet/internal/crypto"
	"github.com/AlexZinkM/cosmic-wallet/internal/model"
	"github.com/AlexZinkM/cosmic-wallet/internal/seed"

	"github.com/gagliardetto/solana-go"
)

var ErrNoMnemonic = errors.New("wallet has no mnemonic to back up")

// ExportBackup writes the mnemonic and the imported keys of the unlocked wallet
// to an encrypted .cwt file. Returns the address recorded in the file header.
// password must be []byte for security (caller should zero it after use)
func (s *Service) ExportBackup(filePath string, password []byte) (solana.PublicKey, error) {
	if filepath.Ext(filePath) != crypto.BackupExt {
		return solana.PublicKey{}, common.Invalid("filePath", fmt.Errorf("file must have %s extension", crypto.BackupExt))
	}
	ms, err := s.seeds.Current()
	if err != nil {
		return solana.PublicKey{}, err
	}
	defer ms.Wipe()
	if ms.Mnemonic == "" {
		return solana.PublicKey{}, ErrNoMnemonic
	}

	accounts, err := s.accounts.List()
	if err != nil {
		return solana.PublicKey{}, err
	}
	data := &model.BackupData{
		Mnemonic:       ms.Mnemonic,
		DerivationPath: ms.DerivationPath.String(),
		CreatedAt:      s.now().UTC().Format(time.RFC3339),
	}
	var address solana.PublicKey
	for _, acc := range accounts {
		if acc.IsSelected || address.IsZero() {
			address = acc.Address
		}
		if !acc.Imported {
			continue
		}
		secret, err := s.ExportSecretKey(acc.Selector)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("failed to export %s: %w", acc.Address, err)
		}
		data.Imported = append(data.Imported, model.ImportedKey{Name: acc.Name, SecretKey: secret})
	}

	// Generate QR code
	qr, err := generateQRCode(address.String())
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to generate QR code: %w", err)
	}
	header := crypto.BackupHeader{
		Network: string(s.clusters.Cluster().Slug),
		Address: address.String(),
		QR:      qr,
	}

	file, err := crypto.SealBackup(header, data, password, s.cfg.BackupScryptN)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to encrypt backup: %w", err)
	}
	if err := crypto.WriteBackupFile(filePath, file); err != nil {
		return solana.PublicKey{}, err
	}
	s.log.Info().Str("address", header.Address).Int("imported", len(data.Imported)).Msg("backup written")
	return address, nil
}

// RestoreBackup restores the wallet stored in a .cwt file and re-imports its
// imported keys. The seed is stored under password; empty keeps it unencrypted.
func (s *Service) RestoreBackup(ctx context.Context, filePath string, backupPassword, password []byte) error {
	file, err := crypto.ReadBackupFile(filePath)
	if err != nil {
		return common.Invalid("filePath", err)
	}
	data, err := crypto.OpenBackup(file, backupPassword)
	if err != nil {
		return err
	}
	path, err := seed.ParseDerivationPath(data.DerivationPath)
	if err != nil {
		return err
	}

	if err := s.RestoreWallet(ctx, data.Mnemonic, password, path); err != nil {
		return err
	}
	for _, k := range data.Imported {
		_, err := s.ImportAccount(k.Name, k.SecretKey)
		if err != nil && !errors.Is(err, account.ErrDuplicateAccount) {
			return fmt.Errorf("failed to import %q: %w", k.Name, err)
		}
	}
	return nil
}
