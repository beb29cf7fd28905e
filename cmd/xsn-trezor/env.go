package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/allegro/bigcache/v3"
	"github.com/btcsuite/btcd/chaincfg"
	"golang.org/x/term"

	"github.com/xsnexplorer/xsn-trezor/config"
	"github.com/xsnexplorer/xsn-trezor/internal/explorer"
	klog "github.com/xsnexplorer/xsn-trezor/internal/log"
	"github.com/xsnexplorer/xsn-trezor/internal/payment"
	"github.com/xsnexplorer/xsn-trezor/internal/signer"
	"github.com/xsnexplorer/xsn-trezor/internal/storage"
	"github.com/xsnexplorer/xsn-trezor/internal/wallet"
)

// passwordEnv lets scripts supply the device password.
const passwordEnv = "XSN_PASSWORD"

// appEnv holds what the commands share. The store and the explorer client
// are opened eagerly; the signer only when a command needs keys.
type appEnv struct {
	cfg      *config.Config
	params   *chaincfg.Params
	db       storage.DB
	book     *wallet.Store
	explorer *explorer.Client
	cache    *bigcache.BigCache
	keystore *signer.Keystore

	ctx    context.Context
	cancel context.CancelFunc
}

func newAppEnv(f *config.Flags) (*appEnv, error) {
	cfg, err := config.Load(f)
	if err != nil {
		return nil, err
	}
	logFile := cfg.Log.File
	if logFile != "" && !filepath.IsAbs(logFile) {
		logFile = filepath.Join(cfg.LogsDir(), logFile)
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	params, err := signer.ParamsFor(string(cfg.Network))
	if err != nil {
		return nil, err
	}

	e := &appEnv{cfg: cfg, params: params}
	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.db, err = storage.Open(cfg.Store, cfg.StoreDir())
	if err != nil {
		e.Close()
		return nil, err
	}
	e.book = wallet.NewStore(e.db, cfg.Device)

	e.keystore, err = signer.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		e.Close()
		return nil, err
	}

	var opts []explorer.Option
	if cfg.Explorer.Cache {
		e.cache, err = explorer.NewRawTxCache(e.ctx, cfg.Explorer.CacheTTL)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("raw tx cache: %w", err)
		}
		opts = append(opts, explorer.WithCache(e.cache))
	}
	e.explorer = explorer.NewWithTimeout(cfg.Explorer.URL, cfg.Explorer.Timeout, opts...)

	devLog := klog.WithDevice(cfg.Device)
	devLog.Debug().
		Str("network", string(cfg.Network)).
		Str("explorer", cfg.Explorer.URL).
		Str("store", cfg.Store).
		Msg("Environment ready")
	return e, nil
}

// Close releases the store and the cache.
func (e *appEnv) Close() error {
	var errs []error
	if e.cache != nil {
		errs = append(errs, e.cache.Close())
	}
	if e.db != nil {
		errs = append(errs, e.db.Close())
	}
	if e.cancel != nil {
		e.cancel()
	}
	return errors.Join(errs...)
}

// openSigner unlocks the configured device.
func (e *appEnv) openSigner() (signer.Signer, error) {
	if !e.keystore.Exists(e.cfg.Device) {
		return nil, fmt.Errorf("%w: %q (run `xsn-trezor device init`)", signer.ErrDeviceNotFound, e.cfg.Device)
	}
	password, err := devicePassword(fmt.Sprintf("Password for device %q: ", e.cfg.Device), false)
	if err != nil {
		return nil, err
	}
	seed, network, err := e.keystore.Load(e.cfg.Device, password)
	if err != nil {
		return nil, err
	}
	defer wipe(seed)
	if network != string(e.cfg.Network) {
		return nil, fmt.Errorf("device %q belongs to %s, not %s", e.cfg.Device, network, e.cfg.Network)
	}
	return signer.NewSoftware(seed, e.params)
}

// service returns the payment service, unlocking the device when withSigner
// is set.
func (e *appEnv) service(withSigner bool) (*payment.Service, error) {
	var sg signer.Signer
	if withSigner {
		var err error
		if sg, err = e.openSigner(); err != nil {
			return nil, err
		}
	}
	return payment.New(e.explorer, sg, e.book), nil
}

func devicePassword(prompt string, confirm bool) ([]byte, error) {
	if p, ok := os.LookupEnv(passwordEnv); ok {
		return []byte(p), nil
	}
	password, err := readPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if confirm {
		again, err := readPassword("Confirm password: ")
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		if string(password) != string(again) {
			return nil, errors.New("passwords do not match")
		}
	}
	return password, nil
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
