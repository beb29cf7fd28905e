package signer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrDeviceNotFound is returned when no seed file exists for a device.
var ErrDeviceNotFound = errors.New("device not found")

const deviceExt = ".device"

// deviceFile is the on-disk JSON format of a software device.
type deviceFile struct {
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	Network    string    `json:"network"`
	SealedSeed []byte    `json:"sealed_seed"`
}

// Keystore keeps one password-sealed seed file per software device.
type Keystore struct {
	dir string
}

// NewKeystore creates a keystore in dir, creating the directory if needed.
func NewKeystore(dir string) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{dir: dir}, nil
}

func (ks *Keystore) path(name string) string {
	return filepath.Join(ks.dir, name+deviceExt)
}

// Exists reports whether a device file exists.
func (ks *Keystore) Exists(name string) bool {
	_, err := os.Stat(ks.path(name))
	return err == nil
}

// Create seals seed under password and writes the device file. It refuses
// to overwrite an existing device.
func (ks *Keystore) Create(name, network string, seed, password []byte, params KDFParams) error {
	if ks.Exists(name) {
		return fmt.Errorf("device %q already exists", name)
	}
	sealed, err := SealSeed(seed, password, params)
	if err != nil {
		return fmt.Errorf("seal seed: %w", err)
	}
	data, err := json.MarshalIndent(deviceFile{
		Version:    1,
		CreatedAt:  time.Now().UTC(),
		Network:    network,
		SealedSeed: sealed,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal device: %w", err)
	}
	if err := os.WriteFile(ks.path(name), data, 0o600); err != nil {
		return fmt.Errorf("write device: %w", err)
	}
	return nil
}

// Load opens the device file and returns the seed and the network it was
// created for.
func (ks *Keystore) Load(name string, password []byte) (seed []byte, network string, err error) {
	data, err := os.ReadFile(ks.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read device: %w", err)
	}
	var df deviceFile
	if err := json.Unmarshal(data, &df); err != nil {
		return nil, "", fmt.Errorf("parse device: %w", err)
	}
	if df.Version != 1 {
		return nil, "", fmt.Errorf("unsupported device version: %d", df.Version)
	}
	seed, err = OpenSeed(df.SealedSeed, password)
	if err != nil {
		return nil, "", err
	}
	return seed, df.Network, nil
}

// List returns the names of all device files.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), deviceExt) {
			names = append(names, strings.TrimSuffix(e.Name(), deviceExt))
		}
	}
	return names, nil
}

// Delete removes a device file.
func (ks *Keystore) Delete(name string) error {
	err := os.Remove(ks.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
	}
	return err
}
