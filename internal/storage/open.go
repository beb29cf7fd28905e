package storage

import (
	"fmt"
	"os"
	"path/filepath"

	klog "github.com/xsnexplorer/xsn-trezor/internal/log"
)

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Open opens the named backend under dir. Bolt keeps a single file
// dir/addressbook.db, Badger a directory dir/addressbook.
func Open(backend, dir string) (DB, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendBolt, BackendBadger:
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	var (
		db   DB
		path string
		err  error
	)
	if backend == BackendBolt {
		path = filepath.Join(dir, "addressbook.db")
		db, err = NewBolt(path)
	} else {
		path = filepath.Join(dir, "addressbook")
		db, err = NewBadger(path)
	}
	if err != nil {
		return nil, err
	}
	klog.Storage.Debug().Str("backend", backend).Str("path", path).Msg("Store opened")
	return db, nil
}
