// ABOUTME: TOML configuration with defaults, .env loading and environment overrides
// ABOUTME: Owns the single base-URL policy used by every entry point
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/harperreed/crmtui/api"
)

const (
	// AppName is the directory name used under the XDG base dirs.
	AppName = "crmtui"

	// EnvDevelopment selects the local backend origin.
	EnvDevelopment = "development"

	// EnvProduction selects the hosted backend origin.
	EnvProduction = "production"
)

// Duration decodes TOML strings such as "60s" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" || s == "0" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config represents the main configuration.
type Config struct {
	API   APIConfig   `toml:"api"`
	UI    UIConfig    `toml:"ui"`
	Poll  PollConfig  `toml:"poll"`
	Log   LogConfig   `toml:"log"`
	Prefs PrefsConfig `toml:"prefs"`
}

// APIConfig selects and tunes the backend connection.
type APIConfig struct {
	BaseURL string   `toml:"base_url"` // explicit origin; wins over env
	Env     string   `toml:"env"`      // "development" or "production"
	Timeout Duration `toml:"timeout"`  // 0 means no timeout
}

// UIConfig holds renderer defaults.
type UIConfig struct {
	DefaultView         string `toml:"default_view"`
	PageSize            int    `toml:"page_size"`
	KanbanPaginateFirst bool   `toml:"kanban_paginate_first"`
}

// PollConfig holds fixed polling intervals.
type PollConfig struct {
	Notifications Duration `toml:"notifications"`
	Inbox         Duration `toml:"inbox"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// PrefsConfig controls where UI preferences persist.
type PrefsConfig struct {
	Sync     bool   `toml:"sync"`      // use the synced charm KV instead of the local store
	Dir      string `toml:"dir"`       // local store directory
	Host     string `toml:"host"`      // charm server for synced preferences
	AutoSync bool   `toml:"auto_sync"` // push after every write
}

// DefaultCharmHost is the charm server used for preference sync.
const DefaultCharmHost = "charm.2389.dev"

// DefaultPrefsConfig keeps preferences local, with auto-sync ready once sync is turned on.
func DefaultPrefsConfig() PrefsConfig {
	return PrefsConfig{Host: DefaultCharmHost, AutoSync: true}
}

// DefaultUIConfig returns renderer defaults.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		DefaultView:         "table",
		PageSize:            10,
		KanbanPaginateFirst: true,
	}
}

// DefaultPollConfig matches the web client's intervals.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Notifications: Duration{60 * time.Second},
		Inbox:         Duration{30 * time.Second},
	}
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		API:   APIConfig{Env: EnvProduction},
		UI:    DefaultUIConfig(),
		Poll:  DefaultPollConfig(),
		Log:   LogConfig{Level: "info"},
		Prefs: DefaultPrefsConfig(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/crmtui/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// DataDir returns $XDG_DATA_HOME/crmtui, creating it.
func DataDir() (string, error) {
	dir := filepath.Join(xdg.DataHome, AppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return dir, nil
}

// LoadDotEnv loads .env from the working directory when present. Existing environment
// variables win.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// Load reads the config file, applies defaults for missing values and env overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.UI.PageSize <= 0 {
		cfg.UI.PageSize = DefaultUIConfig().PageSize
	}
	if cfg.UI.DefaultView == "" {
		cfg.UI.DefaultView = DefaultUIConfig().DefaultView
	}
	if cfg.Poll.Notifications.Duration <= 0 {
		cfg.Poll.Notifications = DefaultPollConfig().Notifications
	}
	if cfg.Poll.Inbox.Duration <= 0 {
		cfg.Poll.Inbox = DefaultPollConfig().Inbox
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.API.Env == "" {
		cfg.API.Env = EnvProduction
	}
	if cfg.Prefs.Host == "" {
		cfg.Prefs.Host = DefaultCharmHost
	}
}

func applyEnv(cfg *Config) {
	if url := os.Getenv("CRM_API_URL"); url != "" {
		cfg.API.BaseURL = url
	}
	if env := os.Getenv("CRM_ENV"); env != "" {
		cfg.API.Env = env
	}
	if level := os.Getenv("CRM_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if host := os.Getenv("CHARM_HOST"); host != "" {
		cfg.Prefs.Host = host
	}
}

// ResolveBaseURL is the one base-URL policy: an explicit override (flag), then the
// configured/env base URL, then the environment switch between the local and hosted origins.
func (c *Config) ResolveBaseURL(override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	if c.API.BaseURL != "" {
		return strings.TrimRight(c.API.BaseURL, "/")
	}
	if strings.EqualFold(c.API.Env, EnvDevelopment) {
		return api.DevelopmentURL
	}
	return api.ProductionURL
}

// Save writes the config as TOML, creating the directory.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Print(cfg, f)
}

// Print writes config to a writer in TOML format.
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# crmtui configuration")
	fmt.Fprintln(w)
	return toml.NewEncoder(w).Encode(cfg)
}
