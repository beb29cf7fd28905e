// Package config handles xsn-trezor configuration.
//
// Settings are layered: network defaults, then the config file, then
// environment variables (optionally loaded from a .env file), then
// command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds the runtime configuration.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Device names the signing device. Each device gets its own address
	// book and, for the software signer, its own keystore entry.
	Device string `conf:"device"`

	// Store is the address-book backend: badger, bolt or memory.
	Store string `conf:"store"`

	Explorer ExplorerConfig
	Log      LogConfig
}

// ExplorerConfig holds explorer backend settings.
type ExplorerConfig struct {
	URL      string        `conf:"explorer.url"`
	Timeout  time.Duration `conf:"explorer.timeout"`
	Cache    bool          `conf:"explorer.cache"`    // cache raw transactions
	CacheTTL time.Duration `conf:"explorer.cachettl"` // raw transaction cache lifetime
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.xsn-trezor
//	macOS:   ~/Library/Application Support/XSNTrezor
//	Windows: %APPDATA%\XSNTrezor
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xsn-trezor"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "XSNTrezor")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "XSNTrezor")
		}
		return filepath.Join(home, "AppData", "Roaming", "XSNTrezor")
	default:
		return filepath.Join(home, ".xsn-trezor")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// StoreDir returns the address-book database directory.
func (c *Config) StoreDir() string {
	return filepath.Join(c.NetworkDataDir(), "store")
}

// KeystoreDir returns the software signer keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDataDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "xsn-trezor.conf")
}

// EnvFile returns the .env file path inside the data directory.
func (c *Config) EnvFile() string {
	return filepath.Join(c.DataDir, ".env")
}
