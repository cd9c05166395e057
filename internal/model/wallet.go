package model

// BackupFile represents .cwt backup file structure
type BackupFile struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	QR         string `json:"QR"`
	KDF        string `json:"kdf"`
	ScryptN    int    `json:"scryptN"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// BackupData represents decrypted backup contents
type BackupData struct {
	Mnemonic       string        `json:"mnemonic"`
	DerivationPath string        `json:"derivationPath"`
	Imported       []ImportedKey `json:"imported,omitempty"`
	CreatedAt      string        `json:"createdAt"`
}

// ImportedKey is an imported account inside a backup
type ImportedKey struct {
	Name      string `json:"name"`
	SecretKey string `json:"secretKey"` // base58
}

// BackupRequest represents request for POST /wallet/backup
type BackupRequest struct {
	FilePath string `json:"filePath" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// BackupResponse represents response for POST /wallet/backup
type BackupResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
	Address  string `json:"address"`
}

// RestoreBackupRequest represents request for POST /wallet/backup/restore
type RestoreBackupRequest struct {
	FilePath       string `json:"filePath" binding:"required"`
	BackupPassword string `json:"backupPassword" binding:"required"`
	// Password encrypts the restored seed; empty stores it unencrypted
	Password string `json:"password"`
}
