package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AlexZinkM/cosmic-wallet/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for backup files
	// N=2^18 (~256MB RAM, 0.5-2s); backups are written rarely
	DefaultScryptN = 1 << 18
	scryptR        = 8
	scryptP        = 1
	scryptKeyLen   = 32
	backupSaltLen  = 32
	gcmNonceLen    = 12

	kdfScrypt = "scrypt"

	// BackupExt is the required extension of backup files
	BackupExt = ".cwt"
)

// FileExistsError is an error when file already exists and is not empty
type FileExistsError struct {
	Path string
}

func (e *FileExistsError) Error() string {
	return fmt.Sprintf("file %s is not empty", e.Path)
}

// IsFileExistsError checks if error is FileExistsError
func IsFileExistsError(err error) bool {
	var target *FileExistsError
	return errors.As(err, &target)
}

// BackupHeader is the plaintext part of a backup file
type BackupHeader struct {
	Network string
	Address string
	QR      string
}

// SealBackup encrypts data with a key derived from password.
// password must be []byte for security (caller should zero it after use)
func SealBackup(header BackupHeader, data *model.BackupData, password []byte, scryptN int) (*model.BackupFile, error) {
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}
	if scryptN <= 1 {
		scryptN = DefaultScryptN
	}

	// Generate salt and nonce
	salt := make([]byte, backupSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, gcmNonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := backupCipher(password, salt, scryptN)
	if err != nil {
		return nil, err
	}

	// Serialize backup data
	plaintext, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup data: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	return &model.BackupFile{
		Network:    header.Network,
		Address:    header.Address,
		QR:         header.QR,
		KDF:        kdfScrypt,
		ScryptN:    scryptN,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// WriteBackupFile writes file to filePath. An existing non-empty file is never overwritten.
func WriteBackupFile(filePath string, file *model.BackupFile) error {
	// Check file extension (.cwt)
	if filepath.Ext(filePath) != BackupExt {
		return fmt.Errorf("file must have %s extension", BackupExt)
	}

	// Check if file exists
	if info, err := os.Stat(filePath); err == nil && info.Size() > 0 {
		return &FileExistsError{Path: filePath}
	}

	fileData, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup file: %w", err)
	}

	// Add UTF-8 BOM for proper display in Windows
	utf8BOM := []byte{0xEF, 0xBB, 0xBF}
	fileDataWithBOM := append(utf8BOM, fileData...)

	if err := os.WriteFile(filePath, fileDataWithBOM, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func backupCipher(password, salt []byte, scryptN int) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
