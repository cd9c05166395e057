package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: Password is prompted at runtime and never read from the environment.
type Config struct {
	Port               string        `envconfig:"PORT" default:"8080"`
	DBPath             string        `envconfig:"WALLET_DB_PATH" required:"true"`
	SessionDBPath      string        `envconfig:"WALLET_SESSION_PATH"`
	Cluster            string        `envconfig:"SOLANA_CLUSTER" default:"localnet"`
	MainnetRPCURL      string        `envconfig:"SOLANA_MAINNET_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	MainnetWSURL       string        `envconfig:"SOLANA_MAINNET_WS_URL"`
	LocalnetRPCURL     string        `envconfig:"SOLANA_LOCALNET_RPC_URL" default:"http://localhost:8899"`
	SkipPreflight      bool          `envconfig:"USE_SKIP_PREFLIGHT" default:"false"`
	RequestsPerSecond  float64       `envconfig:"RPC_REQUESTS_PER_SECOND" default:"10"`
	RefreshInterval    time.Duration `envconfig:"BALANCE_REFRESH_INTERVAL" default:"60s"`
	TransferCooldown   time.Duration `envconfig:"TRANSFER_COOLDOWN" default:"0s"`
	TrustedOrigins     []string      `envconfig:"TRUSTED_ORIGINS"`
	AutoApproveTrusted bool          `envconfig:"AUTO_APPROVE_TRUSTED" default:"false"`
	UnlockOnStart      bool          `envconfig:"UNLOCK_ON_START" default:"true"`
	StayLoggedIn       bool          `envconfig:"STAY_LOGGED_IN" default:"false"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat          string        `envconfig:"LOG_FORMAT" default:"text"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads and validates the environment without touching the global instance.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("WALLET_DB_PATH not set")
	}
	switch c.Cluster {
	case "mainnet-beta", "localnet", "custom":
	default:
		return fmt.Errorf("SOLANA_CLUSTER must be mainnet-beta, localnet or custom, got %q", c.Cluster)
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("RPC_REQUESTS_PER_SECOND cannot be negative")
	}
	if c.RefreshInterval <= 0 {
		return errors.New("BALANCE_REFRESH_INTERVAL must be positive")
	}
	if c.TransferCooldown < 0 {
		return errors.New("TRANSFER_COOLDOWN cannot be negative")
	}
	for i, o := range c.TrustedOrigins {
		c.TrustedOrigins[i] = strings.TrimSpace(o)
	}
	return nil
}

// SessionPath returns where the "stay logged in" mirror is kept:
// WALLET_SESSION_PATH, else a file under XDG_RUNTIME_DIR, else "" for memory only.
func (c *Config) SessionPath() string {
	if c.SessionDBPath != "" {
		return c.SessionDBPath
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "cosmicwallet", "session.db")
	}
	return ""
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// PromptForPassword reads a password from the terminal without echoing it.
// Caller must zero the returned slice after use.
func PromptForPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}
