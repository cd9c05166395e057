package wallet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/cosmic-wallet/internal/crypto"
	"github.com/AlexZinkM/cosmic-wallet/internal/seed"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_BackupRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := Config{BackupScryptN: 1 << 10}
	path := filepath.Join(t.TempDir(), "wallet.cwt")

	src := newEnv().service(t, cfg)
	_, err := src.CreateWallet(ctx, password, seed.BIP44)
	require.NoError(t, err)
	imported := solana.NewWallet().PrivateKey
	_, err = src.ImportAccount("hot", imported.String())
	require.NoError(t, err)

	addr, err := src.ExportBackup(path, []byte("backup pw"))
	require.NoError(t, err)
	want, err := src.Accounts()
	require.NoError(t, err)
	assert.Equal(t, want[0].Address, addr)

	_, err = src.ExportBackup(path, []byte("backup pw"))
	assert.True(t, crypto.IsFileExistsError(err))

	dst := newEnv().service(t, cfg)
	require.ErrorIs(t, dst.RestoreBackup(ctx, path, []byte("nope"), password), crypto.ErrInvalidBackupPassword)
	require.NoError(t, dst.RestoreBackup(ctx, path, []byte("backup pw"), password))

	got, err := dst.Accounts()
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Address, got[i].Address)
		assert.Equal(t, want[i].Imported, got[i].Imported)
	}
	assert.Equal(t, "hot", got[len(got)-1].Name)

	// restored seed is encrypted under the new password
	require.NoError(t, dst.Lock())
	require.ErrorIs(t, dst.Unlock(ctx, []byte("backup pw"), false), seed.ErrIncorrectPassword)
	require.NoError(t, dst.Unlock(ctx, password, false))
}

func TestService_BackupRequiresUnlocked(t *testing.T) {
	t.Parallel()
	s := newEnv().service(t, Config{BackupScryptN: 1 << 10})
	_, err := s.ExportBackup(filepath.Join(t.TempDir(), "w.cwt"), []byte("pw"))
	assert.Error(t, err)
}
