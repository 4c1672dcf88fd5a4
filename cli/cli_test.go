package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/logging"
)

// fakeCRM serves the collection endpoints plus a cookie session.
type fakeCRM struct {
	mu     sync.Mutex
	nextID int
	data   map[string][]map[string]any
	calls  []string
}

func newFakeCRM() *fakeCRM {
	f := &fakeCRM{data: map[string][]map[string]any{}}
	for _, kind := range []string{"leads", "contacts", "deals", "tasks", "meetings", "groups"} {
		f.data[kind] = []map[string]any{}
	}
	f.data["users"] = []map[string]any{{"_id": "u1", "name": "Uma"}}
	return f
}

func (f *fakeCRM) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

func (f *fakeCRM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/api/auth/login":
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/"})
		_, _ = w.Write([]byte(`{"user":{"_id":"u1","name":"Uma","email":"` + creds["email"] + `"}}`))
		return
	case "/api/auth/me":
		if c, err := r.Cookie("token"); err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Not authenticated"}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"_id":"u1","name":"Uma","email":"uma@example.com"}}`))
		return
	case "/api/auth/logout":
		_, _ = w.Write([]byte(`{}`))
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/"), "/")
	kind := parts[0]
	list, ok := f.data[kind]
	if !ok {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		return
	}

	switch {
	case r.Method == http.MethodGet && len(parts) == 1:
		_ = json.NewEncoder(w).Encode(list)
	case r.Method == http.MethodPost && len(parts) == 1:
		var item map[string]any
		_ = json.NewDecoder(r.Body).Decode(&item)
		f.nextID++
		item["_id"] = fmt.Sprintf("%s%d", kind[:1], f.nextID)
		f.data[kind] = append(list, item)
		_ = json.NewEncoder(w).Encode(item)
	case r.Method == http.MethodPut && len(parts) == 2:
		for _, item := range list {
			if item["_id"] == parts[1] {
				var patch map[string]any
				_ = json.NewDecoder(r.Body).Decode(&patch)
				for k, v := range patch {
					item[k] = v
				}
				_ = json.NewEncoder(w).Encode(item)
				return
			}
		}
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	case r.Method == http.MethodDelete && len(parts) == 2 && parts[1] == "delete-all":
		f.data[kind] = []map[string]any{}
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodDelete && len(parts) == 2:
		kept := list[:0:0]
		for _, item := range list {
			if item["_id"] != parts[1] {
				kept = append(kept, item)
			}
		}
		f.data[kind] = kept
		_, _ = w.Write([]byte(`{}`))
	default:
		http.Error(w, `{"message":"unsupported"}`, http.StatusMethodNotAllowed)
	}
}

type testEnv struct {
	*Env
	crm     *fakeCRM
	out     *bytes.Buffer
	notices *api.RecordingNotifier
	opts    EnvOptions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	crm := newFakeCRM()
	server := httptest.NewServer(crm)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	notices := &api.RecordingNotifier{}
	opts := EnvOptions{
		ConfigPath: filepath.Join(dir, "config.toml"),
		APIURL:     server.URL,
		DBPath:     filepath.Join(dir, "session.db"),
		Notifier:   notices,
		Logger:     logging.Discard(),
	}
	env, err := OpenEnv(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })

	out := &bytes.Buffer{}
	env.Out = out
	return &testEnv{Env: env, crm: crm, out: out, notices: notices, opts: opts}
}

func (e *testEnv) seed(t *testing.T, kind string, items ...map[string]any) {
	t.Helper()
	e.crm.mu.Lock()
	defer e.crm.mu.Unlock()
	e.crm.data[kind] = items
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	var got []string
	commands := map[string]Command{
		"list": func(ctx context.Context, env *Env, args []string) error {
			got = args
			return nil
		},
		"add": func(ctx context.Context, env *Env, args []string) error { return nil },
	}

	require.NoError(t, Dispatch(ctx, nil, "leads", commands, []string{"list", "--status", "New"}))
	assert.Equal(t, []string{"--status", "New"}, got)

	err := Dispatch(ctx, nil, "leads", commands, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add, list")

	err = Dispatch(ctx, nil, "leads", commands, []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown leads command: frobnicate")
}

func TestOpenEnvResolvesFlagURL(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, env.opts.APIURL, env.BaseURL)
	assert.Equal(t, env.BaseURL, env.Client.BaseURL())
	assert.Same(t, env.Workspace(), env.Workspace())
}

func TestLoginWhoamiLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	err := LoginCommand(ctx, env.Env, []string{"--email", "uma@example.com", "--password", "wrong"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")

	require.NoError(t, LoginCommand(ctx, env.Env, []string{"--email", "uma@example.com", "--password", "hunter2"}))
	assert.Contains(t, env.out.String(), "✓ Logged in as Uma (uma@example.com)")

	cached, err := env.Session().User()
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Uma", cached.Name)

	// A fresh env over the same database reuses the persisted cookie.
	again, err := OpenEnv(env.opts)
	require.NoError(t, err)
	defer again.Close()
	out := &bytes.Buffer{}
	again.Out = out
	require.NoError(t, WhoamiCommand(ctx, again, nil))
	assert.Contains(t, out.String(), "Uma <uma@example.com>")

	env.out.Reset()
	require.NoError(t, LogoutCommand(ctx, env.Env, nil))
	assert.Contains(t, env.out.String(), "✓ Logged out")
	assert.True(t, env.crm.called("POST /api/auth/logout"))

	cached, err = env.Session().User()
	require.NoError(t, err)
	assert.Nil(t, cached)

	env.out.Reset()
	require.NoError(t, WhoamiCommand(ctx, env.Env, nil))
	assert.Contains(t, env.out.String(), "Not logged in")
}

func TestLeadsList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "leads",
		map[string]any{"_id": "l1", "name": "Ada Lovelace", "company": "Engines", "email": "ada@example.com", "status": "New", "value": 1200, "assignee": "u1"},
		map[string]any{"_id": "l2", "name": "Grace Hopper", "company": "Navy", "email": "grace@example.com", "status": "Qualified", "value": 5000},
	)
	env.seed(t, "groups", map[string]any{"_id": "g1", "name": "Pioneers", "members": []map[string]any{{"memberId": "l2", "type": "lead"}}})

	require.NoError(t, LeadsCommand(ctx, env.Env, []string{"list"}))
	out := env.out.String()
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "Grace Hopper")
	assert.Contains(t, out, "$1,200")
	assert.Contains(t, out, "Uma")

	env.out.Reset()
	require.NoError(t, LeadsCommand(ctx, env.Env, []string{"list", "--status", "Qualified"}))
	assert.NotContains(t, env.out.String(), "Ada Lovelace")
	assert.Contains(t, env.out.String(), "Grace Hopper")

	env.out.Reset()
	require.NoError(t, LeadsCommand(ctx, env.Env, []string{"list", "--group", "pioneers"}))
	assert.NotContains(t, env.out.String(), "Ada Lovelace")
	assert.Contains(t, env.out.String(), "Grace Hopper")

	err := LeadsCommand(ctx, env.Env, []string{"list", "--status", "Bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")

	err = LeadsCommand(ctx, env.Env, []string{"list", "--group", "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group not found")
}

func TestLeadsAddValidatesBeforeSending(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	err := LeadsCommand(ctx, env.Env, []string{"add", "--name", "Ada"})
	require.Error(t, err)
	assert.False(t, env.crm.called("POST /api/leads"))

	require.NoError(t, LeadsCommand(ctx, env.Env, []string{"add", "--name", "Ada", "--company", "Engines", "--email", "ada@example.com"}))
	assert.True(t, env.crm.called("POST /api/leads"))
	assert.Contains(t, env.out.String(), "Ada (ID: l1)")

	notices := env.notices.Notices()
	require.NotEmpty(t, notices)
	assert.Equal(t, "New lead has been added successfully", notices[len(notices)-1].Message)
}

func TestLeadsStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "leads", map[string]any{"_id": "l1", "name": "Ada", "company": "Engines", "email": "ada@example.com", "status": "New"})

	require.NoError(t, LeadsCommand(ctx, env.Env, []string{"status", "l1", "Qualified"}))
	assert.True(t, env.crm.called("PUT /api/leads/l1"))
	assert.Equal(t, "Qualified", env.crm.data["leads"][0]["status"])

	err := LeadsCommand(ctx, env.Env, []string{"status", "l1", "Sideways"})
	require.Error(t, err)

	require.NoError(t, LeadsCommand(ctx, env.Env, []string{"delete", "l1"}))
	assert.True(t, env.crm.called("DELETE /api/leads/l1"))
	assert.Empty(t, env.crm.data["leads"])
}

func TestDeleteAllNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "contacts", map[string]any{"_id": "c1", "name": "Cy", "company": "Co", "email": "cy@example.com"})

	// Tests have no terminal, so the prompt answers no.
	err := ContactsCommand(ctx, env.Env, []string{"delete-all"})
	require.Error(t, err)
	assert.False(t, env.crm.called("DELETE /api/contacts/delete-all"))

	require.NoError(t, ContactsCommand(ctx, env.Env, []string{"delete-all", "--yes"}))
	assert.True(t, env.crm.called("DELETE /api/contacts/delete-all"))
}

func TestDealsListShowsStageTotals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "deals",
		map[string]any{"_id": "d1", "name": "Big", "company": "Acme", "stage": "Proposal", "value": 10000, "probability": 50},
		map[string]any{"_id": "d2", "name": "Small", "company": "Beta", "stage": "Lead In", "value": 2000, "probability": 10},
	)

	require.NoError(t, DealsCommand(ctx, env.Env, []string{"list"}))
	out := env.out.String()
	assert.Contains(t, out, "Big")
	assert.Contains(t, out, "$10,000")
	assert.Contains(t, out, "WEIGHTED")
	assert.Contains(t, out, "$5,000")

	require.NoError(t, DealsCommand(ctx, env.Env, []string{"stage", "d2", "Negotiation"}))
	assert.Equal(t, "Negotiation", env.crm.data["deals"][1]["stage"])

	err := DealsCommand(ctx, env.Env, []string{"stage", "d2", "Closed Lost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid stage")
}

func TestTasksAddAndToggle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "leads", map[string]any{"_id": "l1", "name": "Ada", "company": "Engines", "email": "ada@example.com"})

	err := TasksCommand(ctx, env.Env, []string{"add", "--title", "Call", "--lead", "l1", "--deal", "d1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one of")

	require.NoError(t, TasksCommand(ctx, env.Env, []string{"add", "--title", "Call Ada", "--lead", "l1", "--due", "2026-03-01"}))
	assert.Contains(t, env.out.String(), "Lead: Ada")
	created := env.crm.data["tasks"][0]
	assert.Equal(t, "Lead", created["relatedModel"])
	assert.Equal(t, "l1", created["relatedTo"])

	id := created["_id"].(string)
	require.NoError(t, TasksCommand(ctx, env.Env, []string{"toggle", id}))
	assert.Equal(t, "In Progress", env.crm.data["tasks"][0]["status"])
}

func TestMeetingsAdd(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, MeetingsCommand(ctx, env.Env, []string{"add", "--contact", "Ada", "--date", "2026-03-02", "--time", "10:30"}))
	created := env.crm.data["meetings"][0]
	assert.Equal(t, "Pending", created["status"])
	assert.Equal(t, "15 min", created["duration"])
	assert.Equal(t, "Scheduled", created["type"])

	err := MeetingsCommand(ctx, env.Env, []string{"add", "--contact", "Ada"})
	require.Error(t, err)
}

func TestPrefsLayoutAndView(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.Config.Prefs.Dir = filepath.Join(t.TempDir(), "prefs")

	require.NoError(t, PrefsCommand(ctx, env.Env, []string{"layout", "collapsed"}))
	require.NoError(t, PrefsCommand(ctx, env.Env, []string{"view", "--page", "leads", "kanban"}))

	err := PrefsCommand(ctx, env.Env, []string{"layout", "sideways"})
	require.Error(t, err)

	env.out.Reset()
	require.NoError(t, PrefsCommand(ctx, env.Env, []string{"show"}))
	assert.Contains(t, env.out.String(), "Sidebar layout: collapsed")
	assert.Contains(t, env.out.String(), "kanban")
}

func TestConfigInit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, ConfigCommand(ctx, env.Env, []string{"init"}))
	data, err := os.ReadFile(env.ConfigPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[api]")

	err = ConfigCommand(ctx, env.Env, []string{"init"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
