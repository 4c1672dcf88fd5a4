// ABOUTME: Local BadgerDB backend for the preferences store
// ABOUTME: Used when charm sync is disabled; lives under the XDG data directory
package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/dgraph-io/badger/v3"
)

// DefaultDir returns $XDG_DATA_HOME/crmtui/prefs.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "crmtui", "prefs")
}

// BadgerBackend stores preferences in a local BadgerDB.
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the store in dir.
func OpenBadger(dir string) (*BadgerBackend, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create prefs dir: %w", err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open prefs store: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

func (b *BadgerBackend) Get(key []byte) ([]byte, error) {
	var result []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (b *BadgerBackend) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
