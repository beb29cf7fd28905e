package config

import (
	"fmt"
	"net/url"
	"strings"

	klog "github.com/xsnexplorer/xsn-trezor/internal/log"
	"github.com/xsnexplorer/xsn-trezor/internal/storage"
)

// Validate checks the configuration for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir is empty")
	}

	if cfg.Device == "" {
		return fmt.Errorf("device name is empty")
	}
	if strings.ContainsAny(cfg.Device, `/\`) || cfg.Device == "." || cfg.Device == ".." {
		return fmt.Errorf("device name %q must not contain path separators", cfg.Device)
	}

	switch cfg.Store {
	case storage.BackendBadger, storage.BackendBolt, storage.BackendMemory:
	default:
		return fmt.Errorf("store must be %s, %s or %s", storage.BackendBadger, storage.BackendBolt, storage.BackendMemory)
	}

	u, err := url.Parse(cfg.Explorer.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("explorer.url %q must be an http(s) URL", cfg.Explorer.URL)
	}
	if cfg.Explorer.Timeout <= 0 {
		return fmt.Errorf("explorer.timeout must be positive")
	}
	if cfg.Explorer.Cache && cfg.Explorer.CacheTTL <= 0 {
		return fmt.Errorf("explorer.cachettl must be positive when the cache is enabled")
	}

	if !klog.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not a valid level", cfg.Log.Level)
	}
	return nil
}
