package sidebar

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmtui/models"
)

type fakePersister struct {
	saves   []models.Person
	deletes []string
	failing error
}

func (f *fakePersister) Save(_ context.Context, p models.Person) (models.Person, error) {
	if f.failing != nil {
		return models.Person{}, f.failing
	}
	f.saves = append(f.saves, p.Clone())
	return p, nil
}

func (f *fakePersister) Delete(_ context.Context, id string) error {
	if f.failing != nil {
		return f.failing
	}
	f.deletes = append(f.deletes, id)
	return nil
}

var testUsers = []models.User{{ID: "u1", Name: "Uma"}, {ID: "u2", Name: "Vic"}}

func newLead(p *fakePersister) *Sidebar {
	rec := models.Person{ID: "l1", Name: "Ann", Company: "Acme", Email: "ann@acme.test", Status: models.StatusNew, Assignee: "u1"}
	return New(models.EntityLead, rec, p, testUsers, nil)
}

func TestCancelEditDiscardsDraft(t *testing.T) {
	sb := newLead(&fakePersister{})

	require.NoError(t, sb.BeginEdit())
	assert.Equal(t, StateEditing, sb.State())
	require.NoError(t, sb.SetDraftField("name", "Annette"))

	sb.CancelEdit()
	assert.Equal(t, StateViewing, sb.State())
	assert.Equal(t, "Ann", sb.Record().Name)

	require.NoError(t, sb.BeginEdit())
	draft, ok := sb.Draft()
	require.True(t, ok)
	assert.Equal(t, "Ann", draft.Name)
}

func TestDraftDoesNotAliasRecord(t *testing.T) {
	p := &fakePersister{}
	rec := models.Person{ID: "l1", Name: "Ann", Notes: []string{"first"}}
	sb := New(models.EntityLead, rec, p, nil, nil)
	require.NoError(t, sb.BeginEdit())
	sb.draft.Notes[0] = "changed"
	assert.Equal(t, "first", sb.Record().Notes[0])
}

func TestSaveSuccessReturnsToViewing(t *testing.T) {
	p := &fakePersister{}
	sb := newLead(p)
	require.NoError(t, sb.BeginEdit())
	require.NoError(t, sb.SetDraftField("company", "Globex"))

	require.NoError(t, sb.Save(context.Background()))
	assert.Equal(t, StateViewing, sb.State())
	assert.Equal(t, "Globex", sb.Record().Company)
	require.Len(t, p.saves, 1)
	assert.Equal(t, "Ann", p.saves[0].Name)
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	p := &fakePersister{failing: errors.New("boom")}
	sb := newLead(p)
	require.NoError(t, sb.BeginEdit())
	require.NoError(t, sb.SetDraftField("company", "Globex"))

	require.Error(t, sb.Save(context.Background()))
	assert.Equal(t, StateEditing, sb.State())
	draft, ok := sb.Draft()
	require.True(t, ok)
	assert.Equal(t, "Globex", draft.Company)
	assert.Equal(t, "Acme", sb.Record().Company)
	assert.False(t, sb.Busy())
}

func TestSaveOutsideEditing(t *testing.T) {
	sb := newLead(&fakePersister{})
	assert.ErrorIs(t, sb.Save(context.Background()), ErrNotEditing)
	assert.ErrorIs(t, sb.SetDraftField("name", "x"), ErrNotEditing)
}

func TestChangeStatusImmediate(t *testing.T) {
	p := &fakePersister{}
	sb := newLead(p)

	require.NoError(t, sb.ChangeStatus(context.Background(), models.StatusQualified))
	assert.Equal(t, models.StatusQualified, sb.Record().Status)
	assert.Len(t, p.saves, 1)

	var verr *models.ValidationError
	assert.ErrorAs(t, sb.ChangeStatus(context.Background(), "Archived"), &verr)
	assert.Len(t, p.saves, 1)
}

func TestChangeStatusWhileEditingSyncsDraft(t *testing.T) {
	sb := newLead(&fakePersister{})
	require.NoError(t, sb.BeginEdit())
	require.NoError(t, sb.SetDraftField("name", "Annette"))
	require.NoError(t, sb.ChangeStatus(context.Background(), models.StatusWon))

	assert.Equal(t, StateEditing, sb.State())
	draft, _ := sb.Draft()
	assert.Equal(t, models.StatusWon, draft.Status)
	assert.Equal(t, "Annette", draft.Name)
	assert.Equal(t, "Ann", sb.Record().Name)
}

func TestAssignOnlyWhenChanged(t *testing.T) {
	p := &fakePersister{}
	sb := newLead(p)

	assert.False(t, sb.CanAssign())
	assert.ErrorIs(t, sb.Assign(context.Background()), ErrAssignDisabled)
	assert.Empty(t, p.saves)

	sb.SelectAssignee("u2")
	assert.True(t, sb.CanAssign())
	require.NoError(t, sb.Assign(context.Background()))
	require.Len(t, p.saves, 1)
	assert.Equal(t, models.Ref("u2"), p.saves[0].Assignee)
	assert.Equal(t, "Vic", sb.AssigneeName())

	assert.False(t, sb.CanAssign())
	assert.ErrorIs(t, sb.Assign(context.Background()), ErrAssignDisabled)
	assert.Len(t, p.saves, 1)
}

func TestAddNoteAndReminder(t *testing.T) {
	p := &fakePersister{}
	sb := newLead(p)
	ctx := context.Background()

	var verr *models.ValidationError
	assert.ErrorAs(t, sb.AddNote(ctx, "   "), &verr)
	require.NoError(t, sb.AddNote(ctx, "called back"))
	assert.Equal(t, []string{"called back"}, sb.Record().Notes)

	assert.ErrorAs(t, sb.AddReminder(ctx, "follow up", time.Time{}), &verr)
	assert.ErrorAs(t, sb.AddReminder(ctx, "", time.Now()), &verr)

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, sb.AddReminder(ctx, "follow up", at))
	require.Len(t, sb.Record().Reminders, 1)
	assert.True(t, sb.Record().Reminders[0].Date.Equal(at))
	assert.Len(t, p.saves, 2)
}

func TestContactHasNoLeadSections(t *testing.T) {
	sb := New(models.EntityContact, models.Person{ID: "c1", Name: "Bo"}, &fakePersister{}, nil, nil)
	assert.False(t, sb.LeadSections())
	assert.ErrorIs(t, sb.AddNote(context.Background(), "x"), ErrLeadOnly)
	assert.ErrorIs(t, sb.ChangeStatus(context.Background(), models.StatusWon), ErrLeadOnly)

	var keys []string
	for _, f := range sb.Fields() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"name", "company", "email", "phone", "status"}, keys)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	p := &fakePersister{}
	sb := newLead(p)

	assert.Error(t, sb.ConfirmDelete(context.Background()))
	assert.Empty(t, p.deletes)

	require.NoError(t, sb.BeginEdit())
	sb.RequestDelete()
	assert.Equal(t, StateConfirmDelete, sb.State())
	sb.CancelDelete()
	assert.Equal(t, StateEditing, sb.State())

	sb.RequestDelete()
	require.NoError(t, sb.ConfirmDelete(context.Background()))
	assert.Equal(t, StateClosed, sb.State())
	assert.Equal(t, []string{"l1"}, p.deletes)
	assert.ErrorIs(t, sb.BeginEdit(), ErrClosed)
}

func TestDeleteFailureDismissesConfirmation(t *testing.T) {
	p := &fakePersister{failing: errors.New("nope")}
	sb := newLead(p)
	sb.RequestDelete()
	require.Error(t, sb.ConfirmDelete(context.Background()))
	assert.Equal(t, StateViewing, sb.State())
}

func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	return m
}

func TestModelEditCancelAndSave(t *testing.T) {
	p := &fakePersister{}
	m := NewModel(context.Background(), newLead(p))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.Equal(t, StateEditing, m.Sidebar().State())
	assert.True(t, m.Typing())

	m.inputs[0].SetValue("Annette")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateViewing, m.Sidebar().State())
	assert.Equal(t, "Ann", m.Sidebar().Record().Name)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	assert.Equal(t, "Ann", m.inputs[0].Value())
	m.inputs[0].SetValue("Annette")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = runCmd(t, m, cmd)
	assert.Equal(t, StateViewing, m.Sidebar().State())
	assert.Equal(t, "Annette", m.Sidebar().Record().Name)
}

func TestModelNoteClearsInputOnSuccess(t *testing.T) {
	p := &fakePersister{}
	m := NewModel(context.Background(), newLead(p))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m.note.SetValue("left voicemail")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, m, cmd)

	assert.Equal(t, "", m.note.Value())
	assert.Equal(t, inputNone, m.mode)
	assert.Equal(t, []string{"left voicemail"}, m.Sidebar().Record().Notes)
}

func TestModelDeleteEmitsClosed(t *testing.T) {
	p := &fakePersister{}
	m := NewModel(context.Background(), newLead(p))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.Contains(t, m.View(), "Delete")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())
	require.NotNil(t, cmd)
	closed, ok := cmd().(ClosedMsg)
	require.True(t, ok)
	assert.True(t, closed.Deleted)
	assert.Equal(t, "l1", closed.ID)
}

func TestModelCopyEmail(t *testing.T) {
	var copied string
	m := NewModel(context.Background(), newLead(&fakePersister{}))
	m.copy = func(s string) error { copied = s; return nil }

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "ann@acme.test", copied)
}

func TestModelStatusWhileEditing(t *testing.T) {
	p := &fakePersister{}
	m := NewModel(context.Background(), newLead(p))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.Equal(t, StateEditing, m.Sidebar().State())
	m.inputs[0].SetValue("Annette")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Nil(t, cmd)
	assert.Equal(t, "Annette", m.inputs[0].Value(), "status keys never reach the field")

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = runCmd(t, m, cmd)
	require.Len(t, p.saves, 1)
	assert.Equal(t, models.StatusContacted, p.saves[0].Status)
	assert.Equal(t, "Ann", p.saves[0].Name, "unsaved edits are not sent with the status")

	assert.Equal(t, StateEditing, m.Sidebar().State())
	draft, ok := m.Sidebar().Draft()
	require.True(t, ok)
	assert.Equal(t, models.StatusContacted, draft.Status)

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = runCmd(t, m, cmd)
	require.Len(t, p.saves, 2)
	assert.Equal(t, "Annette", m.Sidebar().Record().Name)
	assert.Equal(t, models.StatusContacted, m.Sidebar().Record().Status)
}

func TestModelNoteWhileEditing(t *testing.T) {
	p := &fakePersister{}
	m := NewModel(context.Background(), newLead(p))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	require.Equal(t, inputNote, m.mode)
	m.note.SetValue("called back")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, m, cmd)
	require.Len(t, p.saves, 1)
	assert.Equal(t, inputNone, m.mode)
	assert.Equal(t, StateEditing, m.Sidebar().State())

	draft, _ := m.Sidebar().Draft()
	assert.Equal(t, []string{"called back"}, draft.Notes)
}

func TestModelEditAssignUnchangedSendsNothing(t *testing.T) {
	p := &fakePersister{}
	m := NewModel(context.Background(), newLead(p))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.Nil(t, cmd)
	assert.Empty(t, m.message)
	assert.Empty(t, p.saves)
}

func TestModelValidationNamesField(t *testing.T) {
	p := &fakePersister{}
	m := NewModel(context.Background(), newLead(p))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, m, cmd)

	assert.Empty(t, p.saves)
	assert.Equal(t, "note: is required", m.message)
	assert.Contains(t, m.View(), "note: is required")
}
