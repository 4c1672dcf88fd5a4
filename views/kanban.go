// ABOUTME: Status-column kanban with keyboard drag and drop
// ABOUTME: Drops emit one StatusChangedMsg and show the card in its new column right away
package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// KanbanConfig configures the kanban view.
type KanbanConfig struct {
	Statuses []string
	Badge    BadgeFunc
	// PaginateFirst pages the whole dataset before splitting it into columns, so a column
	// only shows cards from the current page. When false every column shows all its cards.
	PaginateFirst bool
	PageSize      int
}

// Kanban partitions records into one column per status.
type Kanban struct {
	cfg       KanbanConfig
	records   []Record
	pager     Paginator
	lastLen   int
	overrides map[string]string

	col, row int

	grabbed   Record
	grabCol   int
	originCol int

	logger *log.Logger
	now    func() time.Time
}

func NewKanban(cfg KanbanConfig, logger *log.Logger) *Kanban {
	return &Kanban{
		cfg:       cfg,
		pager:     NewPaginator(cfg.PageSize),
		lastLen:   -1,
		overrides: make(map[string]string),
		logger:    logger,
		now:       time.Now,
	}
}

func (k *Kanban) Kind() Kind      { return KindKanban }
func (k *Kanban) Capturing() bool { return k.grabbed != nil }

// SetRecords sorts by recency and resets paging when the length changes. Local overrides
// the data now agrees with are dropped.
func (k *Kanban) SetRecords(records []Record) {
	k.records = SortByRecency(records, k.now(), k.logger)
	if len(records) != k.lastLen {
		k.pager.Reset()
		k.lastLen = len(records)
	}
	k.pager.SetTotal(len(k.records))

	seen := make(map[string]bool, len(k.records))
	for _, r := range k.records {
		seen[r.RecordID()] = true
		if st, ok := k.overrides[r.RecordID()]; ok && st == r.RecordStatus() {
			delete(k.overrides, r.RecordID())
		}
	}
	for id := range k.overrides {
		if !seen[id] {
			delete(k.overrides, id)
		}
	}
	k.clampFocus()
}

// Revert drops the local status for id, e.g. after the backend rejected the change.
func (k *Kanban) Revert(id string) {
	delete(k.overrides, id)
}

// StatusOf returns the status a card is shown under.
func (k *Kanban) StatusOf(r Record) string {
	if st, ok := k.overrides[r.RecordID()]; ok {
		return st
	}
	return r.RecordStatus()
}

// Pager exposes the pagination state.
func (k *Kanban) Pager() Paginator { return k.pager }

// Columns returns the cards per status, in status order.
func (k *Kanban) Columns() [][]Record {
	source := k.records
	if k.cfg.PaginateFirst {
		source = Slice(k.pager, k.records)
	}

	index := make(map[string]int, len(k.cfg.Statuses))
	for i, st := range k.cfg.Statuses {
		index[st] = i
	}

	cols := make([][]Record, len(k.cfg.Statuses))
	for _, r := range source {
		i, ok := index[k.StatusOf(r)]
		if !ok {
			continue
		}
		cols[i] = append(cols[i], r)
	}
	return cols
}

func (k *Kanban) clampFocus() {
	if len(k.cfg.Statuses) == 0 {
		k.col, k.row = 0, 0
		return
	}
	if k.col >= len(k.cfg.Statuses) {
		k.col = len(k.cfg.Statuses) - 1
	}
	if k.col < 0 {
		k.col = 0
	}
	n := len(k.Columns()[k.col])
	if k.row >= n {
		k.row = n - 1
	}
	if k.row < 0 {
		k.row = 0
	}
}

// Focused returns the card under the cursor.
func (k *Kanban) Focused() (Record, bool) {
	if len(k.cfg.Statuses) == 0 {
		return nil, false
	}
	col := k.Columns()[k.col]
	if k.row < 0 || k.row >= len(col) {
		return nil, false
	}
	return col[k.row], true
}

func (k *Kanban) Update(msg tea.KeyMsg) tea.Cmd {
	if k.grabbed != nil {
		return k.updateGrab(msg)
	}

	switch msg.String() {
	case "left", "h":
		k.col--
		k.clampFocus()
	case "right", "l":
		k.col++
		k.clampFocus()
	case "up", "k":
		k.row--
		k.clampFocus()
	case "down", "j":
		k.row++
		k.clampFocus()
	case "[", "pgup":
		if k.pager.Prev() {
			k.row = 0
			k.clampFocus()
		}
	case "]", "pgdown":
		if k.pager.Next() {
			k.row = 0
			k.clampFocus()
		}
	case " ":
		if r, ok := k.Focused(); ok {
			k.grabbed = r
			k.grabCol = k.col
			k.originCol = k.col
		}
	case "enter":
		if r, ok := k.Focused(); ok {
			return emit(ItemClickedMsg{ID: r.RecordID(), Record: r})
		}
	}
	return nil
}

func (k *Kanban) updateGrab(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h":
		if k.grabCol > 0 {
			k.grabCol--
		}
	case "right", "l":
		if k.grabCol < len(k.cfg.Statuses)-1 {
			k.grabCol++
		}
	case "esc":
		k.grabbed = nil
	case " ", "enter":
		return k.Drop()
	}
	return nil
}

// Drop releases the grabbed card over the current column. Dropping onto a different column
// records the new status locally and emits exactly one StatusChangedMsg.
func (k *Kanban) Drop() tea.Cmd {
	r := k.grabbed
	k.grabbed = nil
	if r == nil || k.grabCol == k.originCol {
		return nil
	}

	status := k.cfg.Statuses[k.grabCol]
	k.overrides[r.RecordID()] = status
	k.col = k.grabCol
	for i, c := range k.Columns()[k.col] {
		if c.RecordID() == r.RecordID() {
			k.row = i
		}
	}
	return emit(StatusChangedMsg{ID: r.RecordID(), Status: status})
}

var (
	kanbanColumnStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("238")).
				Padding(0, 1)

	kanbanCardStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	kanbanFocusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	kanbanGrabbedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("170"))
	kanbanMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (k *Kanban) View(width, height int) string {
	if len(k.cfg.Statuses) == 0 {
		return ""
	}
	colWidth := width/len(k.cfg.Statuses) - 4
	if colWidth < 14 {
		colWidth = 14
	}

	cols := k.Columns()
	rendered := make([]string, len(cols))
	for ci, cards := range cols {
		var s strings.Builder
		title := fmt.Sprintf("%s (%d)", k.cfg.Statuses[ci], len(cards))
		s.WriteString(RenderBadgeLabel(k.cfg.Badge, k.cfg.Statuses[ci], Fit(title, colWidth-2)))
		s.WriteString("\n\n")

		for ri, r := range cards {
			if k.grabbed != nil && r.RecordID() == k.grabbed.RecordID() {
				continue
			}
			line := Fit(r.RecordTitle(), colWidth-2)
			if k.grabbed == nil && ci == k.col && ri == k.row {
				s.WriteString(kanbanFocusStyle.Render("> " + line))
			} else {
				s.WriteString(kanbanCardStyle.Render("  " + line))
			}
			s.WriteString("\n")
			if sub := r.RecordSubtitle(); sub != "" {
				s.WriteString(kanbanMutedStyle.Render("  " + Fit(sub, colWidth-2)))
				s.WriteString("\n")
			}
		}

		if k.grabbed != nil && ci == k.grabCol {
			s.WriteString(kanbanGrabbedStyle.Render("» " + Fit(k.grabbed.RecordTitle(), colWidth-2)))
			s.WriteString("\n")
		}
		if len(cards) == 0 && (k.grabbed == nil || ci != k.grabCol) {
			s.WriteString(kanbanMutedStyle.Render("  empty"))
		}

		rendered[ci] = kanbanColumnStyle.Width(colWidth).Render(s.String())
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if !k.cfg.PaginateFirst {
		return board
	}
	return board + "\n  " + k.pager.View()
}
