// Re-encrypts the stored seed record under a new password.
// Usage: WALLET_DB_PATH=wallet.db go run ./cmd/rekey
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/cosmic-wallet/internal/config"
	"github.com/AlexZinkM/cosmic-wallet/internal/logging"
	"github.com/AlexZinkM/cosmic-wallet/internal/seed"
	"github.com/AlexZinkM/cosmic-wallet/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "rekey:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	store, err := storage.OpenBolt(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open wallet database: %w", err)
	}
	defer store.Close()

	seeds := seed.NewManager(store, storage.NewMemoryStore(), logging.Component(log, "seed"))
	state, err := seeds.Restore()
	if err != nil {
		return err
	}
	if state != seed.Locked {
		return fmt.Errorf("no encrypted wallet in %s (state %s)", cfg.DBPath, state)
	}

	oldPassword, err := config.PromptForPassword("Current password: ")
	if err != nil {
		return err
	}
	defer clear(oldPassword)

	newPassword, err := config.PromptForPassword("New password: ")
	if err != nil {
		return err
	}
	defer clear(newPassword)

	confirm, err := config.PromptForPassword("Repeat new password: ")
	if err != nil {
		return err
	}
	defer clear(confirm)
	if !bytes.Equal(newPassword, confirm) {
		return errors.New("passwords do not match")
	}

	if err := seeds.ChangePassword(oldPassword, newPassword); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "password changed")
	return nil
}
