// ABOUTME: Paginated table renderer sorted newest first
// ABOUTME: Enter on a row emits ItemClickedMsg; the table never touches the backend
package views

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Column is one table column. Clickable marks the name/title column that opens the record.
type Column struct {
	Key       string
	Label     string
	Width     int
	Clickable bool
}

// TableConfig configures the table view.
type TableConfig struct {
	Columns []Column
	// Badge draws the status column; BadgeKey names it (default "status").
	Badge    BadgeFunc
	BadgeKey string
	PageSize int
}

// Table renders records in pages of PageSize.
type Table struct {
	cfg     TableConfig
	records []Record
	pager   Paginator
	cursor  int
	lastLen int
	logger  *log.Logger
	now     func() time.Time
}

func NewTable(cfg TableConfig, logger *log.Logger) *Table {
	if cfg.BadgeKey == "" {
		cfg.BadgeKey = "status"
	}
	return &Table{
		cfg:     cfg,
		pager:   NewPaginator(cfg.PageSize),
		lastLen: -1,
		logger:  logger,
		now:     time.Now,
	}
}

func (t *Table) Kind() Kind      { return KindTable }
func (t *Table) Capturing() bool { return false }

// SetRecords sorts the input newest first. Paging resets when the input length changes.
func (t *Table) SetRecords(records []Record) {
	t.records = SortByRecency(records, t.now(), t.logger)
	if len(records) != t.lastLen {
		t.pager.Reset()
		t.cursor = 0
		t.lastLen = len(records)
	}
	t.pager.SetTotal(len(t.records))
	t.clampCursor()
}

// Pager exposes the pagination state.
func (t *Table) Pager() Paginator { return t.pager }

// Rows returns the current page.
func (t *Table) Rows() []Record {
	return Slice(t.pager, t.records)
}

// Selected returns the record under the cursor.
func (t *Table) Selected() (Record, bool) {
	rows := t.Rows()
	if t.cursor < 0 || t.cursor >= len(rows) {
		return nil, false
	}
	return rows[t.cursor], true
}

func (t *Table) clampCursor() {
	n := len(t.Rows())
	if t.cursor >= n {
		t.cursor = n - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

func (t *Table) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(t.Rows())-1 {
			t.cursor++
		}
	case "left", "h", "pgup":
		if t.pager.Prev() {
			t.cursor = 0
		}
	case "right", "l", "pgdown":
		if t.pager.Next() {
			t.cursor = 0
		}
	case "enter":
		if r, ok := t.Selected(); ok {
			return emit(ItemClickedMsg{ID: r.RecordID(), Record: r})
		}
	}
	return nil
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	tableCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	tableEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	tableClickStyle  = lipgloss.NewStyle().Underline(true)
)

func (t *Table) columnWidths(width int) []int {
	widths := make([]int, len(t.cfg.Columns))
	fixed, flexible := 0, 0
	for i, c := range t.cfg.Columns {
		if c.Width > 0 {
			widths[i] = c.Width
			fixed += c.Width
		} else {
			flexible++
		}
	}
	if flexible > 0 {
		remaining := width - fixed - 2 - len(t.cfg.Columns)
		each := remaining / flexible
		if each < 8 {
			each = 8
		}
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = each
			}
		}
	}
	return widths
}

// Cell returns the display text for one cell. Empty values render as "No {label}".
func Cell(r Record, c Column) (string, bool) {
	v := strings.TrimSpace(r.RecordField(c.Key))
	if v == "" {
		return "No " + c.Label, false
	}
	return v, true
}

func (t *Table) View(width, height int) string {
	if len(t.cfg.Columns) == 0 {
		return ""
	}
	widths := t.columnWidths(width)

	var s strings.Builder
	header := make([]string, len(t.cfg.Columns))
	for i, c := range t.cfg.Columns {
		header[i] = tableHeaderStyle.Render(Fit(c.Label, widths[i]))
	}
	s.WriteString("  " + strings.Join(header, " "))
	s.WriteString("\n")

	rows := t.Rows()
	if len(rows) == 0 {
		s.WriteString(tableEmptyStyle.Render("  Nothing to show"))
		s.WriteString("\n")
	}

	for ri, r := range rows {
		cells := make([]string, len(t.cfg.Columns))
		for i, c := range t.cfg.Columns {
			text, ok := Cell(r, c)
			switch {
			case !ok:
				cells[i] = tableEmptyStyle.Render(Fit(text, widths[i]))
			case c.Key == t.cfg.BadgeKey:
				b := RenderBadgeLabel(t.cfg.Badge, text, Fit(text, widths[i]-2))
				cells[i] = b + strings.Repeat(" ", max(0, widths[i]-lipgloss.Width(b)))
			case c.Clickable:
				cells[i] = tableClickStyle.Render(Fit(text, widths[i]))
			default:
				cells[i] = Fit(text, widths[i])
			}
		}
		prefix := "  "
		if ri == t.cursor {
			prefix = tableCursorStyle.Render("> ")
		}
		s.WriteString(prefix + strings.Join(cells, " "))
		s.WriteString("\n")
	}

	s.WriteString("\n  ")
	s.WriteString(t.pager.View())
	return s.String()
}
