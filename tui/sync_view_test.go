// ABOUTME: Tests for the settings and profile pages
// ABOUTME: Toggles round-trip through a fake backend; layout and view land in the prefs store
package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmtui/config"
	"github.com/harperreed/crmtui/logging"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/prefs"
)

func newSettingsHarness(t *testing.T) (*harness, *settingsPage, *prefs.Store) {
	t.Helper()
	h := newHarness(t)
	store, err := prefs.Open(nil, nil)
	require.NoError(t, err)
	d := &deps{
		ctx:     context.Background(),
		client:  h.client,
		prefs:   store,
		cfg:     config.Default(),
		logger:  logging.Discard(),
		account: &account{user: uma},
	}
	p := newSettingsPage(d)
	p.Update(p.Enter()())
	require.True(t, p.loaded)
	return h, p, store
}

func TestHumanizeKey(t *testing.T) {
	assert.Equal(t, "Email Alerts", humanizeKey("emailAlerts"))
	assert.Equal(t, "System Announcements", humanizeKey("systemAnnouncements"))
	assert.Equal(t, "Layout", humanizeKey("layout"))
	assert.Equal(t, "", humanizeKey(""))
}

func TestSettingsToggleSaves(t *testing.T) {
	h, p, _ := newSettingsHarness(t)
	require.True(t, p.settings.Notifications.EmailAlerts)

	cmd := p.Update(keyMsg(" "))
	require.NotNil(t, cmd)
	assert.False(t, p.settings.Notifications.EmailAlerts, "flipped before the server answers")
	assert.Nil(t, p.Update(keyMsg(" ")), "one save at a time")

	p.Update(cmd())
	assert.False(t, p.saving)

	var sent struct {
		Notifications models.NotificationSettings `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(h.backend.body("PUT /api/settings"), &sent))
	assert.False(t, sent.Notifications.EmailAlerts)
	assert.True(t, sent.Notifications.TaskReminders)

	notices := h.notices.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Notification Preferences Updated", notices[0].Title)
	assert.Equal(t, "Email Alerts disabled.", notices[0].Message)
}

func TestSettingsToggleRevertsOnFailure(t *testing.T) {
	h, p, _ := newSettingsHarness(t)
	h.backend.status["PUT /api/settings"] = http.StatusInternalServerError

	p.cursor = 3
	cmd := p.Update(keyMsg("enter"))
	require.True(t, p.settings.Notifications.SystemAnnouncements)
	p.Update(cmd())

	assert.False(t, p.settings.Notifications.SystemAnnouncements)
	notices := h.notices.Notices()
	require.NotEmpty(t, notices)
	assert.Equal(t, "Failed to update settings", notices[len(notices)-1].Message)
}

func TestSettingsLayoutCyclesIntoPrefs(t *testing.T) {
	h, p, store := newSettingsHarness(t)
	p.cursor = 4

	cmd := p.Update(keyMsg("l"))
	assert.Equal(t, models.LayoutCollapsed, store.Layout())
	p.Update(cmd())

	var sent struct {
		Theme models.ThemeSettings `json:"theme"`
	}
	require.NoError(t, json.Unmarshal(h.backend.body("PUT /api/settings"), &sent))
	assert.Equal(t, models.LayoutCollapsed, sent.Theme.SidebarLayout)

	p.Update(p.change(-1)())
	p.Update(p.change(-1)())
	assert.Equal(t, models.LayoutHidden, store.Layout(), "cycling wraps")
}

func TestSettingsLoadAdoptsServerLayout(t *testing.T) {
	h := newHarness(t)
	s := models.DefaultSettings()
	s.Theme.SidebarLayout = models.LayoutHidden
	h.backend.set("/api/settings", s)

	store, err := prefs.Open(nil, nil)
	require.NoError(t, err)
	d := &deps{ctx: context.Background(), client: h.client, prefs: store, cfg: config.Default(), logger: logging.Discard(), account: &account{}}
	p := newSettingsPage(d)
	p.Update(p.Enter()())

	assert.Equal(t, models.LayoutHidden, store.Layout())
	assert.Contains(t, p.View(80, 40), models.LayoutHidden)
}

func TestSettingsDefaultView(t *testing.T) {
	_, p, store := newSettingsHarness(t)
	p.cursor = 5

	assert.Nil(t, p.Update(keyMsg("l")))
	assert.Equal(t, "kanban", store.Get().DefaultView)
	p.Update(keyMsg("h"))
	p.Update(keyMsg("h"))
	assert.Equal(t, "board", store.Get().DefaultView)
}

func TestProfileLogoutNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	d := &deps{ctx: context.Background(), client: h.client, cfg: config.Default(), logger: logging.Discard(), account: &account{user: uma}}
	p := newProfilePage(d)

	assert.Nil(t, p.Update(keyMsg("L")))
	assert.True(t, p.Typing())
	assert.Nil(t, p.Update(keyMsg("n")))
	assert.False(t, p.Typing())
	assert.False(t, h.backend.called("POST /api/auth/logout"))

	p.Update(keyMsg("L"))
	cmd := p.Update(keyMsg("y"))
	require.NotNil(t, cmd)
	out, ok := cmd().(loggedOutMsg)
	require.True(t, ok)
	assert.NoError(t, out.err)
	assert.Empty(t, h.notices.Notices())
}
