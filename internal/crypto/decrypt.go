package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/cosmic-wallet/internal/model"
)

// ErrInvalidBackupPassword is returned when a backup cannot be opened with the given password
var ErrInvalidBackupPassword = errors.New("invalid backup password")

// ReadBackupFile reads a .cwt file without decrypting it
func ReadBackupFile(filePath string) (*model.BackupFile, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("file does not exist")
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if fileInfo.Size() == 0 {
		return nil, errors.New("file is empty")
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Skip UTF-8 BOM if present
	if len(fileData) >= 3 && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[3:]
	}

	var file model.BackupFile
	if err := json.Unmarshal(fileData, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backup file: %w", err)
	}
	if file.KDF != kdfScrypt {
		return nil, fmt.Errorf("unsupported backup kdf %q", file.KDF)
	}
	return &file, nil
}

// OpenBackup decrypts the contents of file.
// password must be []byte for security (caller should zero it after use)
func OpenBackup(file *model.BackupFile, password []byte) (*model.BackupData, error) {
	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(file.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(file.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(nonce) != gcmNonceLen {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	aesGCM, err := backupCipher(password, salt, file.ScryptN)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidBackupPassword
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	var data model.BackupData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backup data: %w", err)
	}
	return &data, nil
}
