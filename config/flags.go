package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Flags holds the global command-line flags.
type Flags struct {
	Config   string
	EnvFile  string
	Network  string
	Testnet  bool
	DataDir  string
	Explorer string
	Timeout  time.Duration
	NoCache  bool
	Store    string
	Device   string

	LogLevel string
	LogFile  string
	LogJSON  bool

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON bool
}

// Register adds the global flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Config, "config", "c", "", "Config file path")
	fs.StringVar(&f.EnvFile, "env-file", "", "Load environment variables from this .env file")
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.BoolVar(&f.Testnet, "testnet", false, "Use testnet (shorthand for --network=testnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Explorer, "explorer", "", "Explorer API base URL")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Explorer request timeout")
	fs.BoolVar(&f.NoCache, "no-cache", false, "Disable the raw transaction cache")
	fs.StringVar(&f.Store, "store", "", "Address-book store (badger, bolt, memory)")
	fs.StringVar(&f.Device, "device", "", "Signing device name")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")
}

// Parsed records which flags were given explicitly. Call it after fs has
// been parsed.
func (f *Flags) Parsed(fs *pflag.FlagSet) {
	f.SetLogJSON = fs.Changed("log-json")
	if f.Testnet {
		f.Network = string(Testnet)
	}
}

// ApplyFlags applies command-line flags to cfg.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.Network != "" {
		cfg.Network = NetworkType(f.Network)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Device != "" {
		cfg.Device = f.Device
	}
	if f.Store != "" {
		cfg.Store = f.Store
	}

	if f.Explorer != "" {
		cfg.Explorer.URL = f.Explorer
	}
	if f.Timeout != 0 {
		cfg.Explorer.Timeout = f.Timeout
	}
	if f.NoCache {
		cfg.Explorer.Cache = false
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// Load builds the configuration. Priority (lowest first):
//  1. Network defaults
//  2. Config file
//  3. Environment (XSN_*, plus .env in the working and data directories)
//  4. Command-line flags
//
// Data directories and a default config file are created on first use.
func Load(f *Flags) (*Config, error) {
	if f == nil {
		f = &Flags{}
	}

	envFiles := []string{".env"}
	if f.EnvFile != "" {
		envFiles = append([]string{f.EnvFile}, envFiles...)
	}
	if err := LoadEnvFile(envFiles...); err != nil {
		return nil, err
	}
	env := EnvValues()

	// Network and datadir decide where the config file lives.
	network := Mainnet
	if n := firstNonEmpty(f.Network, env["network"]); strings.EqualFold(n, string(Testnet)) {
		network = Testnet
	}
	cfg := Default(network)
	if d := firstNonEmpty(f.DataDir, env["datadir"]); d != "" {
		cfg.DataDir = d
	}

	// A .env in the data directory fills what is still unset.
	if err := LoadEnvFile(cfg.EnvFile()); err != nil {
		return nil, err
	}

	configPath := f.Config
	if configPath == "" {
		if err := EnsureDataDirs(cfg); err != nil {
			return nil, fmt.Errorf("ensuring data dirs: %w", err)
		}
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, fmt.Errorf("applying config file: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	ApplyFlags(cfg, f)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("ensuring data dirs: %w", err)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. It is idempotent.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.StoreDir(),
		cfg.KeystoreDir(),
		cfg.LogsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
