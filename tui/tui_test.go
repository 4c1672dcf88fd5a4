package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/config"
	"github.com/harperreed/crmtui/models"
)

// fakeBackend answers GETs from a path table and records every other request.
type fakeBackend struct {
	mu     sync.Mutex
	get    map[string]any
	status map[string]int // "METHOD /path" -> status
	bodies map[string]json.RawMessage
	calls  []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		get: map[string]any{
			"/api/auth/me":                 map[string]any{"user": models.User{ID: "u1", Name: "Uma", Email: "uma@crm.test"}},
			"/api/leads":                   []models.Person{},
			"/api/contacts":                []models.Person{},
			"/api/deals":                   []models.Deal{},
			"/api/tasks":                   []models.Task{},
			"/api/meetings":                []models.Meeting{},
			"/api/groups":                  []models.Group{},
			"/api/users":                   []models.User{{ID: "u1", Name: "Uma"}},
			"/api/notifications":           []models.Notification{},
			"/api/settings":                models.DefaultSettings(),
			"/api/business-email/inbox":    models.Inbox{},
		},
		status: map[string]int{},
		bodies: map[string]json.RawMessage{},
	}
}

func (f *fakeBackend) set(path string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.get[path] = v
}

func (f *fakeBackend) body(key string) json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *fakeBackend) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.calls, key)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, key)
	if code, ok := f.status[key]; ok {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"message":"denied"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodGet {
		v, ok := f.get[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(v)
		return
	}
	var raw json.RawMessage
	_ = json.NewDecoder(r.Body).Decode(&raw)
	f.bodies[key] = raw

	// Creates echo the record back with an id, like the backend does.
	var obj map[string]any
	if r.Method == http.MethodPost && json.Unmarshal(raw, &obj) == nil && obj != nil {
		obj["_id"] = fmt.Sprintf("new%d", len(f.calls))
		_ = json.NewEncoder(w).Encode(obj)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

type fakeSession struct {
	saved   []models.User
	cleared int
}

func (s *fakeSession) SaveUser(u models.User) error {
	s.saved = append(s.saved, u)
	return nil
}

func (s *fakeSession) ClearUser() error {
	s.cleared++
	return nil
}

type harness struct {
	backend *fakeBackend
	client  *api.Client
	notices *api.RecordingNotifier
	session *fakeSession
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := newFakeBackend()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	rec := &api.RecordingNotifier{}
	return &harness{
		backend: backend,
		client:  api.NewClient(api.WithBaseURL(server.URL), api.WithNotifier(rec)),
		notices: rec,
		session: &fakeSession{},
	}
}

func (h *harness) model(t *testing.T, start Route, user *models.User) Model {
	t.Helper()
	return NewModel(context.Background(), Options{
		Client:  h.client,
		Config:  config.Default(),
		Session: h.session,
		User:    user,
		Start:   start,
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var uma = &models.User{ID: "u1", Name: "Uma"}

func checked(t *testing.T, m Model) Model {
	t.Helper()
	status, err := m.d.client.Me(context.Background())
	require.NoError(t, err)
	m, _ = update(t, m, authCheckedMsg{status: status})
	return m
}

func TestAuthCheckKeepsRequestedRoute(t *testing.T) {
	h := newHarness(t)
	m := checked(t, h.model(t, RouteLeads, nil))

	assert.Equal(t, RouteLeads, m.Route())
	require.NotNil(t, m.User())
	assert.Equal(t, "Uma", m.User().Name)
	require.Len(t, h.session.saved, 1)
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	h := newHarness(t)
	h.backend.status["GET /api/auth/me"] = http.StatusUnauthorized
	m := checked(t, h.model(t, RoutePipeline, uma))

	assert.Equal(t, RouteLogin, m.Route())
	assert.Nil(t, m.User())
	assert.Equal(t, 1, h.session.cleared)
	assert.Empty(t, h.notices.Notices(), "the session probe stays quiet")
}

func TestPublicRoutesOpenWithoutSession(t *testing.T) {
	h := newHarness(t)
	h.backend.status["GET /api/auth/me"] = http.StatusUnauthorized
	m := checked(t, h.model(t, RouteTerms, nil))
	assert.Equal(t, RouteTerms, m.Route())

	m, _ = update(t, m, navigateMsg{route: RouteRegister})
	assert.Equal(t, RouteRegister, m.Route())

	m, _ = update(t, m, navigateMsg{route: RouteTasks})
	assert.Equal(t, RouteLogin, m.Route())
}

func TestSessionExpiredNoticeReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	m := checked(t, h.model(t, RouteLeads, nil))
	require.Equal(t, RouteLeads, m.Route())

	expired := api.Notice{Kind: api.NoticeSessionExpired, Title: "Error", Message: api.MessageSessionExpired}
	m, _ = update(t, m, noticeMsg(expired))
	assert.Equal(t, RouteLogin, m.Route())
	assert.Nil(t, m.User())
	assert.Equal(t, 1, h.session.cleared)

	// A burst of 401s shows one toast.
	m, _ = update(t, m, noticeMsg(expired))
	require.Equal(t, 1, m.toasts.Len())
	assert.Equal(t, expired, m.toasts.items[0].notice)
}

func TestSessionExpiredOnPublicRouteStays(t *testing.T) {
	h := newHarness(t)
	m := checked(t, h.model(t, RoutePolicy, nil))

	m, _ = update(t, m, noticeMsg(api.Notice{Kind: api.NoticeSessionExpired, Message: api.MessageSessionExpired}))
	assert.Equal(t, RoutePolicy, m.Route())
}

func TestShellKeys(t *testing.T) {
	h := newHarness(t)
	m := checked(t, h.model(t, RouteDashboard, nil))

	m, _ = update(t, m, keyMsg("tab"))
	assert.Equal(t, RouteLeads, m.Route())
	m, _ = update(t, m, keyMsg("shift+tab"))
	assert.Equal(t, RouteDashboard, m.Route())
	m, _ = update(t, m, keyMsg("4"))
	assert.Equal(t, RoutePipeline, m.Route())
	m, _ = update(t, m, keyMsg("0"))
	assert.Equal(t, RouteSettings, m.Route())

	m, _ = update(t, m, keyMsg("?"))
	assert.Contains(t, m.View(), "HELP")

	_, cmd := update(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTypingPageKeepsKeys(t *testing.T) {
	h := newHarness(t)
	h.backend.status["GET /api/auth/me"] = http.StatusUnauthorized
	m := checked(t, h.model(t, RouteDashboard, nil))
	require.Equal(t, RouteLogin, m.Route())

	m, cmd := update(t, m, keyMsg("q"))
	if cmd != nil {
		_, isQuit := cmd().(tea.QuitMsg)
		assert.False(t, isQuit, "q is typed into the login form")
	}
	login := m.pages[RouteLogin].(*loginPage)
	assert.Equal(t, "q", login.form.Values()["email"])

	_, cmd = update(t, m, keyMsg("ctrl+c"))
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t)
	h.backend.status["GET /api/auth/me"] = http.StatusUnauthorized
	m := checked(t, h.model(t, RouteDashboard, nil))
	require.Equal(t, RouteLogin, m.Route())

	m, cmd := update(t, m, pageMsg{route: RouteLogin, msg: loginResultMsg{user: uma}})
	assert.Equal(t, RouteLogin, m.Route(), "the page reports first, then hands over")
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Equal(t, RouteDashboard, m.Route())
	require.NotNil(t, m.User())
	assert.Equal(t, "Uma", m.User().Name)

	notices := h.notices.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, api.NoticeSuccess, notices[0].Kind)
	assert.Equal(t, "Login successful!", notices[0].Message)
}

func TestLoginFailureShowsBackendMessage(t *testing.T) {
	h := newHarness(t)
	h.backend.status["POST /api/auth/login"] = http.StatusBadRequest
	m := checked(t, h.model(t, RouteLogin, nil))

	login := m.pages[RouteLogin].(*loginPage)
	msg := login.submit(map[string]string{"email": "a@b.test", "password": "x"})()
	login.Update(msg)

	notices := h.notices.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, api.NoticeError, notices[0].Kind)
	assert.Equal(t, "denied", notices[0].Message)
}

type pingMsg struct{ n int }

func TestTagRoutesBatches(t *testing.T) {
	inner := tea.Batch(
		func() tea.Msg { return pingMsg{n: 1} },
		func() tea.Msg { return pingMsg{n: 2} },
	)
	msg := tag(RouteTasks, inner)()
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)
	for i, c := range batch {
		pm, ok := c().(pageMsg)
		require.True(t, ok)
		assert.Equal(t, RouteTasks, pm.route)
		assert.Equal(t, pingMsg{n: i + 1}, pm.msg)
	}

	assert.Nil(t, tag(RouteTasks, nil))
	assert.Nil(t, tag(RouteTasks, func() tea.Msg { return nil })())
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestNotificationsPollAndMarkRead(t *testing.T) {
	h := newHarness(t)
	m := checked(t, h.model(t, RouteDashboard, nil))

	items := []models.Notification{
		{ID: "n1", Type: "lead", Message: "Ann was assigned to you", CreatedAt: models.NewTimestamp(mustTime(t, "2026-01-02T10:00:00Z"))},
		{ID: "n2", Type: "task", Message: "Call Bo", CreatedAt: models.NewTimestamp(mustTime(t, "2026-01-03T10:00:00Z"))},
	}
	m, _ = update(t, m, notificationsMsg{items: items})
	require.Len(t, m.notifications, 2)
	assert.Equal(t, "n2", m.notifications[0].ID, "newest first")
	assert.Equal(t, 1, m.toasts.Len())
	assert.Contains(t, m.renderHeader(), "N 2")

	m, _ = update(t, m, keyMsg("N"))
	require.True(t, m.showNotes)
	assert.Contains(t, m.View(), "New Task Assigned")

	m, cmd := update(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.Len(t, m.notifications, 1)
	assert.Equal(t, "n1", m.notifications[0].ID)
	assert.True(t, h.backend.called("PUT /api/notifications/n2/read"))

	m, _ = update(t, m, keyMsg("esc"))
	assert.False(t, m.showNotes)
}

func TestNotificationsSkippedWithoutUser(t *testing.T) {
	h := newHarness(t)
	h.backend.status["GET /api/auth/me"] = http.StatusUnauthorized
	m := checked(t, h.model(t, RouteLogin, nil))

	cmd := m.pollNotifications()
	require.NotNil(t, cmd, "the poll is rescheduled")
	m, _ = update(t, m, notificationsMsg{err: assert.AnError})
	assert.Empty(t, m.notifications)
}

func TestConfigReload(t *testing.T) {
	h := newHarness(t)
	m := checked(t, h.model(t, RouteDashboard, nil))

	cfg := config.Default()
	cfg.UI.PageSize = 3
	m, _ = update(t, m, reloadMsg(config.Reload{Config: cfg}))
	assert.Equal(t, 3, m.d.viewSettings().PageSize)

	m, _ = update(t, m, reloadMsg(config.Reload{Err: assert.AnError}))
	assert.Equal(t, 3, m.d.cfg.UI.PageSize)
	assert.Equal(t, 2, m.toasts.Len())
}

func TestRailFollowsLayout(t *testing.T) {
	h := newHarness(t)
	m := checked(t, h.model(t, RouteDashboard, nil))

	assert.Contains(t, m.renderRail(20), "Pipeline")
	m.layout = models.LayoutCollapsed
	assert.NotContains(t, m.renderRail(20), "Pipeline")
	m.layout = models.LayoutHidden
	assert.Empty(t, m.renderRail(20))
}

func TestLogoutFromProfile(t *testing.T) {
	h := newHarness(t)
	m := checked(t, h.model(t, RouteProfile, nil))
	require.Equal(t, RouteProfile, m.Route())

	m, _ = update(t, m, keyMsg("L"))
	m, cmd := update(t, m, keyMsg("y"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, RouteLogin, m.Route())
	assert.Nil(t, m.User())
	assert.True(t, h.backend.called("POST /api/auth/logout"))
}
