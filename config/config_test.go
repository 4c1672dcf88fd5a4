// ABOUTME: Tests for config loading, env overrides, the base-URL policy and hot reload
// ABOUTME: Uses temp dirs and t.Setenv so nothing touches the real XDG directories
package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmtui/api"
)

func clearEnv(t *testing.T) {
	t.Setenv("CRM_API_URL", "")
	t.Setenv("CRM_ENV", "")
	t.Setenv("CRM_LOG_LEVEL", "")
	t.Setenv("CHARM_HOST", "")
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.UI.PageSize)
	assert.Equal(t, "table", cfg.UI.DefaultView)
	assert.True(t, cfg.UI.KanbanPaginateFirst)
	assert.Equal(t, 60*time.Second, cfg.Poll.Notifications.Duration)
	assert.Equal(t, 30*time.Second, cfg.Poll.Inbox.Duration)
	assert.Equal(t, EnvProduction, cfg.API.Env)
	assert.Zero(t, cfg.API.Timeout.Duration)
	assert.False(t, cfg.Prefs.Sync)
	assert.Equal(t, DefaultCharmHost, cfg.Prefs.Host)
	assert.True(t, cfg.Prefs.AutoSync)
}

func TestLoadParsesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
env = "development"
timeout = "15s"

[ui]
default_view = "kanban"
page_size = 25
kanban_paginate_first = false

[poll]
inbox = "2m"

[log]
level = "debug"

[prefs]
sync = true
auto_sync = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.API.Env)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout.Duration)
	assert.Equal(t, "kanban", cfg.UI.DefaultView)
	assert.Equal(t, 25, cfg.UI.PageSize)
	assert.False(t, cfg.UI.KanbanPaginateFirst)
	assert.Equal(t, 2*time.Minute, cfg.Poll.Inbox.Duration)
	assert.Equal(t, 60*time.Second, cfg.Poll.Notifications.Duration, "unset interval keeps default")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Prefs.Sync)
	assert.False(t, cfg.Prefs.AutoSync)
	assert.Equal(t, DefaultCharmHost, cfg.Prefs.Host, "unset host keeps default")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[poll]\ninbox = \"soon\"\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CRM_API_URL", "http://api.test:9000/")
	t.Setenv("CRM_ENV", "development")
	t.Setenv("CRM_LOG_LEVEL", "warn")
	t.Setenv("CHARM_HOST", "charm.test")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://api.test:9000/", cfg.API.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "charm.test", cfg.Prefs.Host)
}

func TestResolveBaseURL(t *testing.T) {
	cfg := Default()
	assert.Equal(t, api.ProductionURL, cfg.ResolveBaseURL(""))

	cfg.API.Env = "Development"
	assert.Equal(t, api.DevelopmentURL, cfg.ResolveBaseURL(""))

	cfg.API.BaseURL = "http://configured.test/"
	assert.Equal(t, "http://configured.test", cfg.ResolveBaseURL(""))

	assert.Equal(t, "http://flag.test", cfg.ResolveBaseURL("http://flag.test/"))
}

func TestSaveAndReload(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.UI.PageSize = 5
	cfg.Poll.Inbox = Duration{45 * time.Second}
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.UI.PageSize)
	assert.Equal(t, 45*time.Second, loaded.Poll.Inbox.Duration)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(Default(), &buf))
	assert.Contains(t, buf.String(), "# crmtui configuration")
	assert.Contains(t, buf.String(), "[ui]")
	assert.Contains(t, buf.String(), `notifications = "1m0s"`)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\npage_size = 10\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads, err := Watch(ctx, path, 20*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[ui]\npage_size = 42\n"), 0644))

	select {
	case r := <-reloads:
		require.NoError(t, r.Err)
		assert.Equal(t, 42, r.Config.UI.PageSize)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	for range reloads {
	}
}
