package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables and the config keys they set.
var envKeys = []struct{ env, key string }{
	{"XSN_NETWORK", "network"},
	{"XSN_DATADIR", "datadir"},
	{"XSN_DEVICE", "device"},
	{"XSN_STORE", "store"},
	{"XSN_EXPLORER_URL", "explorer.url"},
	{"XSN_EXPLORER_TIMEOUT", "explorer.timeout"},
	{"XSN_EXPLORER_CACHE", "explorer.cache"},
	{"XSN_LOG_LEVEL", "log.level"},
	{"XSN_LOG_FILE", "log.file"},
	{"XSN_LOG_JSON", "log.json"},
}

// LoadEnvFile loads variables from .env files into the process
// environment. Variables that are already set win. Missing files are
// skipped.
func LoadEnvFile(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// EnvValues returns the config values set through XSN_* variables.
func EnvValues() map[string]string {
	values := make(map[string]string)
	for _, e := range envKeys {
		if v, ok := os.LookupEnv(e.env); ok && v != "" {
			values[e.key] = v
		}
	}
	return values
}

// ApplyEnv applies XSN_* environment variables to cfg.
func ApplyEnv(cfg *Config) error {
	for key, value := range EnvValues() {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("environment %q: %w", key, err)
		}
	}
	return nil
}
