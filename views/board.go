package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BoardConfig configures the board view. The board needs nothing beyond the records.
type BoardConfig struct{}

// Board is an unpaginated, unsorted grid of cards for small datasets.
type Board struct {
	records []Record
	cursor  int
	perRow  int
}

const boardCardWidth = 26

func NewBoard(BoardConfig) *Board {
	return &Board{perRow: 3}
}

func (b *Board) Kind() Kind      { return KindBoard }
func (b *Board) Capturing() bool { return false }

func (b *Board) SetRecords(records []Record) {
	b.records = append([]Record(nil), records...)
	if b.cursor >= len(b.records) {
		b.cursor = max(0, len(b.records)-1)
	}
}

// CardText returns the title and descriptor shown on a card, with placeholders.
func CardText(r Record) (title, detail string) {
	title = strings.TrimSpace(r.RecordTitle())
	if title == "" {
		title = "Untitled"
	}
	detail = strings.TrimSpace(r.RecordSubtitle())
	if detail == "" {
		detail = "No Details"
	}
	return title, detail
}

// Selected returns the card under the cursor.
func (b *Board) Selected() (Record, bool) {
	if b.cursor < 0 || b.cursor >= len(b.records) {
		return nil, false
	}
	return b.records[b.cursor], true
}

func (b *Board) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h":
		if b.cursor > 0 {
			b.cursor--
		}
	case "right", "l":
		if b.cursor < len(b.records)-1 {
			b.cursor++
		}
	case "up", "k":
		if b.cursor-b.perRow >= 0 {
			b.cursor -= b.perRow
		}
	case "down", "j":
		if b.cursor+b.perRow < len(b.records) {
			b.cursor += b.perRow
		}
	case "enter":
		if r, ok := b.Selected(); ok {
			return emit(ItemClickedMsg{ID: r.RecordID(), Record: r})
		}
	}
	return nil
}

var (
	boardCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1).
			Width(boardCardWidth)

	boardFocusStyle = boardCardStyle.BorderForeground(lipgloss.Color("170"))
	boardTitleStyle = lipgloss.NewStyle().Bold(true)
	boardMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (b *Board) View(width, height int) string {
	b.perRow = max(1, width/(boardCardWidth+4))
	if len(b.records) == 0 {
		return boardMutedStyle.Render("Nothing to show")
	}

	var rows []string
	var row []string
	for i, r := range b.records {
		title, detail := CardText(r)
		body := boardTitleStyle.Render(Fit(title, boardCardWidth-2)) + "\n" +
			boardMutedStyle.Render(Fit(detail, boardCardWidth-2))
		style := boardCardStyle
		if i == b.cursor {
			style = boardFocusStyle
		}
		row = append(row, style.Render(body))
		if len(row) == b.perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
