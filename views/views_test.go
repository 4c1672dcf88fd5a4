// ABOUTME: Tests for pagination, ordering, badges and the four renderers
// ABOUTME: Uses an in-test record type so no backend or models are involved
package views

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecord struct {
	id, title, sub, status string
	created                time.Time
	due                    time.Time
	reminder               time.Time
	fields                 map[string]string
}

func (f fakeRecord) RecordID() string       { return f.id }
func (f fakeRecord) RecordTitle() string    { return f.title }
func (f fakeRecord) RecordSubtitle() string { return f.sub }
func (f fakeRecord) RecordStatus() string   { return f.status }
func (f fakeRecord) RecordField(key string) string {
	if key == "status" {
		return f.status
	}
	return f.fields[key]
}
func (f fakeRecord) RecordCreated() (time.Time, bool) { return f.created, !f.created.IsZero() }
func (f fakeRecord) DueAt() (time.Time, bool)         { return f.due, !f.due.IsZero() }
func (f fakeRecord) FirstReminder() (time.Time, bool) { return f.reminder, !f.reminder.IsZero() }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func manyRecords(n int, status string) []Record {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Record, n)
	for i := range out {
		out[i] = fakeRecord{
			id:      fmt.Sprintf("r%02d", i),
			title:   fmt.Sprintf("Record %d", i),
			status:  status,
			created: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func TestPaginatorClamps(t *testing.T) {
	p := NewPaginator(0)
	assert.Equal(t, DefaultPageSize, p.PageSize())
	assert.Equal(t, 1, p.TotalPages())

	p.SetTotal(25)
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.GoTo(3))
	assert.False(t, p.Next())
	assert.False(t, p.GoTo(0))
	assert.False(t, p.GoTo(4))
	assert.Equal(t, 3, p.Page())

	start, end := p.Bounds()
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	p.SetTotal(5)
	assert.Equal(t, 1, p.Page())
	assert.True(t, p.Page() >= 1 && p.Page() <= p.TotalPages())
}

func TestSliceLastPage(t *testing.T) {
	p := NewPaginator(10)
	p.SetTotal(12)
	p.Next()
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	assert.Equal(t, []int{10, 11}, Slice(p, items))
}

func TestSortByRecencyNewestFirst(t *testing.T) {
	ann := fakeRecord{id: "1", title: "Ann", created: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	bo := fakeRecord{id: "2", title: "Bo", created: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	sorted := SortByRecency([]Record{ann, bo}, now, nil)
	require.Len(t, sorted, 2)
	assert.Equal(t, "Bo", sorted[0].RecordTitle())
	assert.Equal(t, "Ann", sorted[1].RecordTitle())
}

func TestSortByRecencyMissingCreatedSortsAsNow(t *testing.T) {
	old := fakeRecord{id: "1", title: "Old", created: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	undated := fakeRecord{id: "2", title: "Undated"}
	sorted := SortByRecency([]Record{old, undated}, time.Now(), nil)
	assert.Equal(t, "Undated", sorted[0].RecordTitle())
}

func TestUnknownStatusBadgeFallsBack(t *testing.T) {
	var out string
	assert.NotPanics(t, func() {
		out = RenderBadge(LeadBadge, "Archived")
	})
	assert.Contains(t, out, "Archived")
	assert.Equal(t, DefaultBadge("x").GetBackground(), LeadBadge("Archived").GetBackground())
	assert.Empty(t, RenderBadge(nil, ""))
}

func TestTableEmptyCellsAndClick(t *testing.T) {
	tbl := NewTable(TableConfig{
		Columns: []Column{
			{Key: "name", Label: "Name", Clickable: true},
			{Key: "phone", Label: "Phone"},
		},
	}, nil)
	rec := fakeRecord{id: "a", title: "Ann", fields: map[string]string{"name": "Ann"}}
	tbl.SetRecords([]Record{rec})

	text, ok := Cell(rec, Column{Key: "phone", Label: "Phone"})
	assert.False(t, ok)
	assert.Equal(t, "No Phone", text)
	assert.Contains(t, tbl.View(80, 20), "No Phone")

	cmd := tbl.Update(key("enter"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(ItemClickedMsg)
	require.True(t, ok)
	assert.Equal(t, "a", msg.ID)
}

func TestBadgesClassifyRawValue(t *testing.T) {
	var seen []string
	spy := func(value string) lipgloss.Style {
		seen = append(seen, value)
		return LeadBadge(value)
	}

	tbl := NewTable(TableConfig{
		Columns: []Column{{Key: "name", Label: "Name"}, {Key: "status", Label: "Status", Width: 14}},
		Badge:   spy,
	}, nil)
	tbl.SetRecords([]Record{fakeRecord{id: "a", title: "Ann", status: "New", fields: map[string]string{"name": "Ann"}}})
	out := tbl.View(80, 20)
	assert.Equal(t, []string{"New"}, seen)
	assert.Contains(t, out, "New")

	seen = nil
	k := NewKanban(KanbanConfig{Statuses: []string{"New", "Won"}, Badge: spy}, nil)
	k.SetRecords([]Record{fakeRecord{id: "a", title: "Ann", status: "New"}})
	out = k.View(80, 20)
	assert.Equal(t, []string{"New", "Won"}, seen)
	assert.Contains(t, out, "New (1)")

	known := LeadBadge("New").GetBackground()
	assert.Equal(t, lipgloss.Color("#3b82f6"), known)
	assert.NotEqual(t, DefaultBadge("").GetBackground(), known)
}

func TestTablePagingResetsOnLengthChange(t *testing.T) {
	tbl := NewTable(TableConfig{Columns: []Column{{Key: "name", Label: "Name"}}}, nil)
	tbl.SetRecords(manyRecords(25, "New"))
	tbl.Update(key("l"))
	tbl.Update(key("l"))
	assert.Equal(t, 3, tbl.Pager().Page())
	assert.Len(t, tbl.Rows(), 5)

	// same length keeps the page
	tbl.SetRecords(manyRecords(25, "New"))
	assert.Equal(t, 3, tbl.Pager().Page())

	tbl.SetRecords(manyRecords(12, "New"))
	assert.Equal(t, 1, tbl.Pager().Page())
}

func TestKanbanDropEmitsOnceAndMovesCard(t *testing.T) {
	k := NewKanban(KanbanConfig{Statuses: []string{"New", "Contacted", "Won"}}, nil)
	k.SetRecords([]Record{fakeRecord{id: "x", title: "Ann", status: "New", created: time.Now()}})

	require.Nil(t, k.Update(key(" ")))
	assert.True(t, k.Capturing())
	require.Nil(t, k.Update(key("l")))

	cmd := k.Update(key("enter"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(StatusChangedMsg)
	require.True(t, ok)
	assert.Equal(t, StatusChangedMsg{ID: "x", Status: "Contacted"}, msg)
	assert.False(t, k.Capturing())

	cols := k.Columns()
	assert.Empty(t, cols[0])
	require.Len(t, cols[1], 1)
	assert.Equal(t, "x", cols[1][0].RecordID())

	// a refresh that agrees with the move clears the override
	k.SetRecords([]Record{fakeRecord{id: "x", title: "Ann", status: "Contacted", created: time.Now()}})
	assert.Equal(t, "Contacted", k.StatusOf(k.Columns()[1][0]))
}

func TestKanbanDropSameColumnIsNoop(t *testing.T) {
	k := NewKanban(KanbanConfig{Statuses: []string{"New", "Won"}}, nil)
	k.SetRecords([]Record{fakeRecord{id: "x", title: "Ann", status: "New"}})
	k.Update(key(" "))
	assert.Nil(t, k.Update(key(" ")))
	assert.Len(t, k.Columns()[0], 1)
}

func TestKanbanRevert(t *testing.T) {
	k := NewKanban(KanbanConfig{Statuses: []string{"New", "Won"}}, nil)
	rec := fakeRecord{id: "x", title: "Ann", status: "New"}
	k.SetRecords([]Record{rec})
	k.Update(key(" "))
	k.Update(key("l"))
	k.Update(key("enter"))
	assert.Equal(t, "Won", k.StatusOf(rec))

	k.Revert("x")
	assert.Equal(t, "New", k.StatusOf(rec))
}

func TestKanbanHidesUnknownStatus(t *testing.T) {
	k := NewKanban(KanbanConfig{Statuses: []string{"New"}}, nil)
	k.SetRecords([]Record{
		fakeRecord{id: "a", title: "Ann", status: "New"},
		fakeRecord{id: "b", title: "Bo", status: "Archived"},
	})
	cols := k.Columns()
	require.Len(t, cols, 1)
	assert.Len(t, cols[0], 1)
	assert.NotPanics(t, func() { k.View(80, 20) })
}

func TestKanbanPaginateFirst(t *testing.T) {
	k := NewKanban(KanbanConfig{Statuses: []string{"New"}, PaginateFirst: true}, nil)
	k.SetRecords(manyRecords(15, "New"))
	assert.Len(t, k.Columns()[0], 10)
	k.Update(key("]"))
	assert.Len(t, k.Columns()[0], 5)

	all := NewKanban(KanbanConfig{Statuses: []string{"New"}}, nil)
	all.SetRecords(manyRecords(15, "New"))
	assert.Len(t, all.Columns()[0], 15)
}

func TestSwitcherKeepsPagingAcrossTabs(t *testing.T) {
	s := NewSwitcher(KindTable, nil,
		TableConfig{Columns: []Column{{Key: "name", Label: "Name"}}},
		KanbanConfig{Statuses: []string{"New"}},
		BoardConfig{},
	)
	s.SetRecords(manyRecords(25, "New"))

	s.Update(key("l"))
	r, ok := s.Renderer(KindTable)
	require.True(t, ok)
	assert.Equal(t, 2, r.(*Table).Pager().Page())

	assert.Equal(t, KindKanban, s.Cycle(1))
	s.Update(key("v"))
	assert.Equal(t, KindBoard, s.Active())
	s.Update(key("v"))
	assert.Equal(t, KindTable, s.Active())
	assert.Equal(t, 2, r.(*Table).Pager().Page())

	assert.Equal(t, KindBoard, s.Cycle(-1))
}

func TestSwitcherFallsBackToFirstKind(t *testing.T) {
	s := NewSwitcher(KindCalendar, nil, TableConfig{}, BoardConfig{})
	assert.Equal(t, KindTable, s.Active())
	assert.False(t, s.SetActive(KindKanban))
	assert.Equal(t, []Kind{KindTable, KindBoard}, s.Kinds())

	k, ok := ParseKind("Kanban")
	assert.True(t, ok)
	assert.Equal(t, KindKanban, k)
	_, ok = ParseKind("gantt")
	assert.False(t, ok)
}

func TestSwitcherCaptureBlocksTabKeys(t *testing.T) {
	s := NewSwitcher(KindKanban, nil, KanbanConfig{Statuses: []string{"New", "Won"}}, TableConfig{})
	s.SetRecords([]Record{fakeRecord{id: "x", title: "Ann", status: "New"}})
	s.Update(key(" "))
	require.True(t, s.Capturing())
	s.Update(key("v"))
	assert.Equal(t, KindKanban, s.Active())
}

func TestPopupDatePriority(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	reminder := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, reminder, PopupDate(fakeRecord{created: created, due: due, reminder: reminder}, now))
	assert.Equal(t, due, PopupDate(fakeRecord{created: created, due: due}, now))
	assert.Equal(t, created, PopupDate(fakeRecord{created: created}, now))
	assert.Equal(t, now, PopupDate(fakeRecord{}, now))
}

func TestCalendarPopup(t *testing.T) {
	today := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	c := NewCalendar(CalendarConfig{})
	c.now = func() time.Time { return today }
	c.cursor = dayOf(today)

	c.SetRecords([]Record{
		fakeRecord{id: "a", title: "Call Ann", due: today},
		fakeRecord{id: "b", title: "Later", due: today.AddDate(0, 0, 3)},
	})
	assert.Len(t, c.EventsOn(today), 1)

	c.Update(key("enter"))
	require.True(t, c.Capturing())
	assert.Len(t, c.Popup(), 1)
	assert.Contains(t, c.View(120, 40), "Call Ann")

	c.Update(key("esc"))
	assert.False(t, c.Capturing())

	c.Update(key("l"))
	c.Update(key("enter"))
	assert.False(t, c.Capturing(), "empty day opens nothing")
}

func TestCalendarMonthShiftClamps(t *testing.T) {
	c := NewCalendar(CalendarConfig{})
	c.cursor = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	c.Update(key("]"))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), c.Cursor())
	c.Update(key("["))
	assert.Equal(t, time.Month(1), c.Cursor().Month())
}

func TestBoardPlaceholders(t *testing.T) {
	title, detail := CardText(fakeRecord{id: "a"})
	assert.Equal(t, "Untitled", title)
	assert.Equal(t, "No Details", detail)

	b := NewBoard(BoardConfig{})
	b.SetRecords([]Record{fakeRecord{id: "a"}, fakeRecord{id: "b", title: "Bo"}})
	view := b.View(120, 40)
	assert.True(t, strings.Contains(view, "Untitled"))
	assert.True(t, strings.Contains(view, "No Details"))

	b.Update(key("l"))
	cmd := b.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, "b", cmd().(ItemClickedMsg).ID)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "$200,000", Money(200000))
	assert.Equal(t, 6, len([]rune(Fit("ab", 6))))
	assert.LessOrEqual(t, len([]rune(Fit("a long title here", 6))), 6)
}
