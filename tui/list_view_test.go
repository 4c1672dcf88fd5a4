package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
)

func leadsPage(t *testing.T, h *harness) *peoplePage {
	t.Helper()
	m := h.model(t, RouteLeads, uma)
	p, ok := m.pages[RouteLeads].(*peoplePage)
	require.True(t, ok)
	require.NoError(t, p.people.Load(context.Background()))
	p.Update(actionMsg{op: pages.ActionLoad})
	return p
}

func TestPeoplePageShowsLoadedRecords(t *testing.T) {
	h := newHarness(t)
	h.backend.set("/api/leads", []models.Person{
		{ID: "l1", Name: "Ann Lee", Company: "Acme", Email: "ann@acme.test", Status: models.StatusNew},
		{ID: "l2", Name: "Bo Diaz", Company: "Initech", Email: "bo@initech.test", Status: models.StatusNew},
	})
	p := leadsPage(t, h)

	view := p.View(140, 40)
	assert.Contains(t, view, "LEADS")
	assert.Contains(t, view, "Ann Lee")
	assert.Contains(t, view, "Bo Diaz")
	assert.False(t, p.Typing())
}

func TestPeopleSearchNarrowsRecords(t *testing.T) {
	h := newHarness(t)
	h.backend.set("/api/leads", []models.Person{
		{ID: "l1", Name: "Ann Lee", Company: "Acme", Email: "ann@acme.test"},
		{ID: "l2", Name: "Bo Diaz", Company: "Initech", Email: "bo@initech.test"},
	})
	p := leadsPage(t, h)

	p.Update(keyMsg("/"))
	require.True(t, p.Typing())
	for _, r := range "initech" {
		p.Update(keyMsg(string(r)))
	}
	p.Update(keyMsg("enter"))
	assert.False(t, p.Typing())

	visible := p.people.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Bo Diaz", visible[0].Name)

	p.Update(keyMsg("/"))
	p.Update(keyMsg("esc"))
	assert.Len(t, p.people.Visible(), 2)
}

func TestPeopleAddForm(t *testing.T) {
	h := newHarness(t)
	p := leadsPage(t, h)

	p.Update(keyMsg("a"))
	require.NotNil(t, p.form)
	assert.True(t, p.Typing())
	assert.Contains(t, p.View(100, 40), "NEW LEAD")

	p.form.Set("name", "Cy Park")
	p.form.Set("company", "Globex")
	p.form.Set("email", "cy@globex.test")
	p.form.Set("value", "1,500")
	cmd := p.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	assert.True(t, p.form.busy)

	p.Update(cmd())
	assert.Nil(t, p.form, "a successful save closes the form")
	assert.True(t, h.backend.called("POST /api/leads"))

	items := p.people.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Cy Park", items[0].Name)
	assert.Equal(t, models.Number(1500), items[0].Value)
}

func TestPeopleAddFormRejectsBadValue(t *testing.T) {
	h := newHarness(t)
	p := leadsPage(t, h)

	p.Update(keyMsg("a"))
	p.form.Set("name", "Cy Park")
	p.form.Set("company", "Globex")
	p.form.Set("email", "cy@globex.test")
	p.form.Set("value", "lots")
	p.Update(p.Update(keyMsg("ctrl+s"))())

	require.NotNil(t, p.form, "the form stays open to fix the value")
	assert.False(t, p.form.busy)
	assert.False(t, h.backend.called("POST /api/leads"))
	notices := h.notices.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, api.NoticeError, notices[0].Kind)
	assert.Contains(t, notices[0].Message, "value")

	p.Update(keyMsg("esc"))
	assert.Nil(t, p.form)
}

func TestFormOptionsCycle(t *testing.T) {
	f := newForm("Test",
		formField{key: "name", label: "Name"},
		formField{key: "status", label: "Status", options: []string{"New", "Contacted", "Won"}},
	)
	assert.Equal(t, "New", f.Values()["status"])

	result, _ := f.Update(keyMsg("enter"))
	assert.Equal(t, formPending, result, "enter moves to the next field")
	f.Update(keyMsg("l"))
	assert.Equal(t, "Contacted", f.Values()["status"])
	f.Update(keyMsg("h"))
	f.Update(keyMsg("h"))
	assert.Equal(t, "Won", f.Values()["status"])

	result, _ = f.Update(keyMsg("enter"))
	assert.Equal(t, formSubmitted, result, "enter on the last field submits")

	f.busy = true
	result, _ = f.Update(keyMsg("esc"))
	assert.Equal(t, formPending, result, "a busy form ignores keys")
}

func TestResolvePeople(t *testing.T) {
	people := []models.Person{
		{ID: "c1", Name: "Ann Lee"},
		{ID: "c2", Name: "Bo Diaz"},
	}
	ids, missing := resolvePeople(people, " ann lee, c2 ,, Nobody ")
	assert.Equal(t, []string{"c1", "c2"}, ids)
	assert.Equal(t, []string{"Nobody"}, missing)

	ids, missing = resolvePeople(people, "")
	assert.Empty(t, ids)
	assert.Empty(t, missing)
}

func TestInboxPage(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, RouteEmails, uma)
	p := m.pages[RouteEmails].(*inboxPage)
	require.NotNil(t, p.Enter())

	inbox := models.Inbox{
		Emails: []models.InboxEmail{
			{MessageID: "m1", From: "ann@acme.test", Subject: "Invoice 42"},
			{MessageID: "m2", From: "bo@initech.test", Subject: "Lunch?"},
		},
		NewEmailsCount: 2,
	}
	p.Update(inboxMsg{gen: p.gen, inbox: inbox})
	require.Len(t, p.shown, 2)
	notices := h.notices.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "You have 2 new emails", notices[0].Message)

	p.Update(keyMsg("/"))
	for _, r := range "invoice" {
		p.Update(keyMsg(string(r)))
	}
	p.Update(keyMsg("enter"))
	require.Len(t, p.shown, 1)
	assert.Equal(t, "m1", p.shown[0].MessageID)

	p.Update(keyMsg("enter"))
	require.NotNil(t, p.detail)
	assert.True(t, p.Typing())
	p.Update(keyMsg("esc"))
	assert.Nil(t, p.detail)
}

func TestInboxIgnoresStalePolls(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, RouteEmails, uma)
	p := m.pages[RouteEmails].(*inboxPage)
	p.Enter()
	stale := p.gen

	p.Leave()
	assert.Nil(t, p.Update(inboxTickMsg{gen: stale}))
	assert.Nil(t, p.Update(inboxMsg{gen: stale, inbox: models.Inbox{NewEmailsCount: 3}}))
	assert.Empty(t, p.shown)
	assert.Empty(t, h.notices.Notices())
}

func TestToastStack(t *testing.T) {
	var s toastStack
	for i := range 5 {
		s.push(api.Notice{Kind: api.NoticeInfo, Message: string(rune('a' + i))})
	}
	require.Equal(t, maxToast, s.Len())
	assert.Equal(t, "b", s.items[0].notice.Message, "the oldest toast is dropped")

	assert.Nil(t, s.push(api.Notice{Kind: api.NoticeInfo, Message: "e"}), "duplicates are not repeated")

	s.dismiss(s.items[0].id)
	assert.Equal(t, maxToast-1, s.Len())
	assert.Contains(t, s.View(80), "e")

	s.clear()
	assert.Empty(t, s.View(80))
}

func TestChanNotifierNeverBlocks(t *testing.T) {
	n := NewChanNotifier(1, nil)
	n.Notify(api.Notice{Message: "first"})
	n.Notify(api.Notice{Message: "second"})

	got := <-n.C()
	assert.Equal(t, "first", got.Message)
	select {
	case extra := <-n.C():
		t.Fatalf("unexpected notice %q", extra.Message)
	default:
	}
}

func TestRouteHelpers(t *testing.T) {
	r, ok := ParseRoute("pipeline")
	require.True(t, ok)
	assert.Equal(t, RoutePipeline, r)
	_, ok = ParseRoute("nowhere")
	assert.False(t, ok)

	assert.Equal(t, RouteProfile, nextRoute(RouteDashboard, -1))
	assert.Equal(t, RouteDashboard, nextRoute(RouteProfile, 1))
	assert.True(t, RouteTerms.Public())
	assert.False(t, RouteGroups.Public())

	got, ok := routeForKey("7")
	require.True(t, ok)
	assert.Equal(t, RouteGroups, got)
	_, ok = routeForKey("x")
	assert.False(t, ok)
}

func TestDeleteAllConfirmClosesOnSuccessAndFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.set("/api/leads", []models.Person{
		{ID: "l1", Name: "Ann Lee", Company: "Acme", Email: "ann@acme.test"},
		{ID: "l2", Name: "Bo Diaz", Company: "Initech", Email: "bo@initech.test"},
	})
	p := leadsPage(t, h)

	p.Update(keyMsg("D"))
	require.NotNil(t, p.confirm)
	assert.Contains(t, p.View(120, 40), "Delete all leads?")

	cmd := p.Update(keyMsg("y"))
	require.NotNil(t, cmd)
	done, ok := cmd().(confirmDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	p.Update(done)
	assert.Nil(t, p.confirm)
	assert.Empty(t, p.people.Items())
	assert.False(t, p.people.Loading(pages.ActionDeleteAll))

	h.backend.mu.Lock()
	h.backend.status["DELETE /api/leads/delete-all"] = 500
	h.backend.mu.Unlock()

	p.Update(keyMsg("D"))
	require.NotNil(t, p.confirm)
	cmd = p.Update(keyMsg("y"))
	require.NotNil(t, cmd)
	done, ok = cmd().(confirmDoneMsg)
	require.True(t, ok)
	require.Error(t, done.err)
	p.Update(done)
	assert.Nil(t, p.confirm)
	assert.False(t, p.people.Loading(pages.ActionDeleteAll))
	assert.False(t, p.Typing())
}
