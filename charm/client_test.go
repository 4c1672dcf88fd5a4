// ABOUTME: Tests for the charm preferences client against a local badger store
// ABOUTME: Verifies auto-sync behavior, status, wipe and that it plugs into the prefs store
package charm

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmtui/config"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/prefs"
)

func TestSetSyncsWhenAutoSyncEnabled(t *testing.T) {
	c, syncs := NewTestClient(t, true)

	require.NoError(t, c.Set([]byte("k"), []byte("v")))
	require.NoError(t, c.Set([]byte("k"), []byte("w")))
	assert.Equal(t, 2, syncs())

	_, err := c.Get([]byte("missing"))
	assert.ErrorIs(t, err, badger.ErrKeyNotFound)
}

func TestSetSkipsSyncWhenDisabled(t *testing.T) {
	c, syncs := NewTestClient(t, false)

	require.NoError(t, c.Set([]byte("k"), []byte("v")))
	got, err := c.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	assert.Zero(t, syncs())
}

func TestClientBacksPrefsStore(t *testing.T) {
	c, _ := NewTestClient(t, false)

	s, err := prefs.Open(c, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetLayout(models.LayoutHidden))

	reopened, err := prefs.Open(c, nil)
	require.NoError(t, err)
	assert.Equal(t, models.LayoutHidden, reopened.Layout())

	st := c.Status()
	assert.Equal(t, "localhost", st.Host)
	assert.False(t, st.AutoSync)
	assert.Equal(t, 1, st.Keys)
}

func TestWipe(t *testing.T) {
	c, _ := NewTestClient(t, false)
	require.NoError(t, c.Set([]byte("a"), []byte("1")))

	var out strings.Builder
	require.NoError(t, Wipe(&out, c))
	assert.Contains(t, out.String(), "wiped")
	assert.Zero(t, c.Status().Keys)
}

func TestAutoCommandWritesConfig(t *testing.T) {
	t.Setenv("CHARM_HOST", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()

	var out strings.Builder
	require.NoError(t, SyncCommand(&out, cfg, path, []string{"auto", "--disable"}))
	assert.Contains(t, out.String(), "Auto-sync disabled")

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.False(t, loaded.Prefs.AutoSync)
}

func TestSyncCommandUsage(t *testing.T) {
	cfg := config.Default()
	var out strings.Builder

	require.NoError(t, SyncCommand(&out, cfg, "", nil))
	assert.Contains(t, out.String(), "Usage")

	out.Reset()
	require.NoError(t, SyncCommand(&out, cfg, "", []string{"wipe"}))
	assert.Contains(t, out.String(), "--confirm")

	assert.Error(t, SyncCommand(&out, cfg, "", []string{"bogus"}))
}
