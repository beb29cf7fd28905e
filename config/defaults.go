package config

import "time"

// Explorer endpoints.
const (
	MainnetExplorerURL = "https://xsnexplorer.io/api/xsn"
	TestnetExplorerURL = "http://localhost:9000/xsn"
)

// DefaultDevice is the device name used when none is configured.
const DefaultDevice = "default"

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Device:  DefaultDevice,
		Store:   "badger",
		Explorer: ExplorerConfig{
			URL:      MainnetExplorerURL,
			Timeout:  10 * time.Second,
			Cache:    true,
			CacheTTL: 10 * time.Minute,
		},
		Log: LogConfig{
			Level: "warn",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet. Testnet
// has no public explorer; the URL points at a local backend.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Explorer.URL = TestnetExplorerURL
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
