// ABOUTME: Month-grid calendar of events mapped from records
// ABOUTME: Enter on a day opens a read-only popup with each record's best-effort date
package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Event is one calendar entry pointing back at its record.
type Event struct {
	Title string
	Start time.Time
	Ref   Record
}

// EventMapper maps a record to zero or more events.
type EventMapper func(r Record, now time.Time) []Event

// CalendarConfig configures the calendar view.
type CalendarConfig struct {
	Events EventMapper
}

// DueEvents maps a record to one event at its due date, or now when it has none.
func DueEvents(r Record, now time.Time) []Event {
	at := now
	if d, ok := r.(dueDater); ok {
		if due, ok := d.DueAt(); ok {
			at = due
		}
	}
	return []Event{{Title: r.RecordTitle(), Start: at, Ref: r}}
}

// Calendar shows one month at a time with a day cursor.
type Calendar struct {
	cfg    CalendarConfig
	events []Event
	cursor time.Time
	popup  []Event
	now    func() time.Time
}

func NewCalendar(cfg CalendarConfig) *Calendar {
	if cfg.Events == nil {
		cfg.Events = DueEvents
	}
	c := &Calendar{cfg: cfg, now: time.Now}
	c.cursor = dayOf(c.now())
	return c
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (c *Calendar) Kind() Kind      { return KindCalendar }
func (c *Calendar) Capturing() bool { return c.popup != nil }

func (c *Calendar) SetRecords(records []Record) {
	now := c.now()
	c.events = c.events[:0]
	for _, r := range records {
		c.events = append(c.events, c.cfg.Events(r, now)...)
	}
	sort.SliceStable(c.events, func(i, j int) bool {
		return c.events[i].Start.Before(c.events[j].Start)
	})
}

// Cursor returns the selected day.
func (c *Calendar) Cursor() time.Time { return c.cursor }

// Month returns the first day of the displayed month.
func (c *Calendar) Month() time.Time {
	return time.Date(c.cursor.Year(), c.cursor.Month(), 1, 0, 0, 0, 0, c.cursor.Location())
}

// EventsOn returns the events on day.
func (c *Calendar) EventsOn(day time.Time) []Event {
	var out []Event
	for _, e := range c.events {
		if sameDay(e.Start.In(day.Location()), day) {
			out = append(out, e)
		}
	}
	return out
}

// Popup returns the open popup's events, or nil.
func (c *Calendar) Popup() []Event { return c.popup }

func (c *Calendar) Update(msg tea.KeyMsg) tea.Cmd {
	if c.popup != nil {
		switch msg.String() {
		case "esc", "enter", "q":
			c.popup = nil
		}
		return nil
	}

	switch msg.String() {
	case "left", "h":
		c.cursor = c.cursor.AddDate(0, 0, -1)
	case "right", "l":
		c.cursor = c.cursor.AddDate(0, 0, 1)
	case "up", "k":
		c.cursor = c.cursor.AddDate(0, 0, -7)
	case "down", "j":
		c.cursor = c.cursor.AddDate(0, 0, 7)
	case "[":
		c.cursor = c.shiftMonth(-1)
	case "]":
		c.cursor = c.shiftMonth(1)
	case "t":
		c.cursor = dayOf(c.now())
	case "enter":
		if evs := c.EventsOn(c.cursor); len(evs) > 0 {
			c.popup = evs
		}
	}
	return nil
}

// shiftMonth keeps the day of month where possible, clamping to the month's last day.
func (c *Calendar) shiftMonth(step int) time.Time {
	first := c.Month().AddDate(0, step, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := c.cursor.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, first.Location())
}

var (
	calHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	calDayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	calMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	calCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("170"))
	calTodayStyle  = lipgloss.NewStyle().Underline(true)
	calEventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	calPopupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170")).
			Padding(1, 2)
)

func (c *Calendar) View(width, height int) string {
	if c.popup != nil {
		return lipgloss.Place(width, max(height, 8), lipgloss.Center, lipgloss.Center, c.popupView())
	}

	cell := width/7 - 1
	if cell < 10 {
		cell = 10
	}

	var s strings.Builder
	s.WriteString(calHeaderStyle.Render(c.Month().Format("January 2006")))
	s.WriteString("\n")

	for _, wd := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		s.WriteString(calMutedStyle.Render(Fit(wd, cell)) + " ")
	}
	s.WriteString("\n")

	first := c.Month()
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today := dayOf(c.now())

	for week := 0; week < 6; week++ {
		var nums, titles []string
		for d := 0; d < 7; d++ {
			day := start.AddDate(0, 0, week*7+d)
			label := Fit(fmt.Sprintf("%2d", day.Day()), cell)
			switch {
			case sameDay(day, c.cursor):
				label = calCursorStyle.Render(label)
			case day.Month() != first.Month():
				label = calMutedStyle.Render(label)
			case sameDay(day, today):
				label = calTodayStyle.Render(label)
			default:
				label = calDayStyle.Render(label)
			}
			nums = append(nums, label)

			evs := c.EventsOn(day)
			title := ""
			switch len(evs) {
			case 0:
			case 1:
				title = evs[0].Title
			default:
				title = fmt.Sprintf("%s +%d", evs[0].Title, len(evs)-1)
			}
			titles = append(titles, calEventStyle.Render(Fit(title, cell)))
		}
		s.WriteString(strings.Join(nums, " "))
		s.WriteString("\n")
		s.WriteString(strings.Join(titles, " "))
		s.WriteString("\n")
	}
	return s.String()
}

func (c *Calendar) popupView() string {
	now := c.now()
	var s strings.Builder
	for i, e := range c.popup {
		if i > 0 {
			s.WriteString("\n\n")
		}
		s.WriteString(calHeaderStyle.Render(e.Ref.RecordTitle()))
		if sub := e.Ref.RecordSubtitle(); sub != "" {
			s.WriteString("\n" + sub)
		}
		at := PopupDate(e.Ref, now)
		s.WriteString("\n" + calMutedStyle.Render(at.Format("Mon Jan 2 2006 15:04")+" ("+Ago(at)+")"))
	}
	s.WriteString("\n\n" + calMutedStyle.Render("esc: close"))
	return calPopupStyle.Render(s.String())
}
