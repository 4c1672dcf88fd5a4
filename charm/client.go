// ABOUTME: Charm KV client that backs synced UI preferences
// ABOUTME: Satisfies the prefs backend interface and pushes after writes when auto-sync is on

package charm

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"

	"github.com/harperreed/crmtui/config"
)

// AppName names the charm KV database.
const AppName = "crmtui"

// store is the subset of charm kv the client uses.
type store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
}

// Client wraps charm KV for the preferences store.
type Client struct {
	kv       store
	host     string
	autoSync bool
	mu       sync.RWMutex
}

// Status describes the sync connection.
type Status struct {
	Host     string
	AutoSync bool
	Keys     int
}

// Open connects to the configured charm host and pulls remote changes when auto-sync is on.
func Open(cfg config.PrefsConfig) (*Client, error) {
	host := cfg.Host
	if host == "" {
		host = config.DefaultCharmHost
	}

	// charm reads its server from the environment
	_ = os.Setenv("CHARM_HOST", host)

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := newClient(db, host, cfg.AutoSync)
	if cfg.AutoSync {
		_ = db.Sync()
	}
	return c, nil
}

func newClient(s store, host string, autoSync bool) *Client {
	return &Client{kv: s, host: host, autoSync: autoSync}
}

// ID returns the charm user ID for this device.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// Status reports the host, auto-sync flag and how many preference keys are stored.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{Host: c.host, AutoSync: c.autoSync}
	if keys, err := c.kv.Keys(); err == nil {
		st.Keys = len(keys)
	}
	return st
}

// Sync pushes and pulls preferences now.
func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Sync()
}

// Get retrieves a value by key. Missing keys return badger.ErrKeyNotFound.
func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Get(key)
}

// Set stores a value and syncs if enabled.
func (c *Client) Set(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Set(key, value); err != nil {
		return err
	}

	// Sync under the lock so a concurrent Set cannot interleave with the push
	if c.autoSync {
		_ = c.kv.Sync()
	}
	return nil
}

// Wipe deletes every synced preference.
func (c *Client) Wipe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}
	return nil
}
