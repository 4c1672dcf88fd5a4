// ABOUTME: View switcher that delegates one dataset to the table, kanban, calendar or board renderer
// ABOUTME: Configs are a sealed set of per-view types so each renderer's inputs are explicit
package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/harperreed/crmtui/logging"
)

// Kind names a presentation.
type Kind int

const (
	KindTable Kind = iota
	KindKanban
	KindCalendar
	KindBoard
)

var kindNames = []string{"table", "kanban", "calendar", "board"}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Label is the tab caption.
func (k Kind) Label() string {
	s := k.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseKind maps a preference string to a Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), true
		}
	}
	return KindTable, false
}

// ViewConfig is implemented only by TableConfig, KanbanConfig, CalendarConfig and BoardConfig.
type ViewConfig interface {
	Kind() Kind
	sealed()
}

func (TableConfig) Kind() Kind    { return KindTable }
func (KanbanConfig) Kind() Kind   { return KindKanban }
func (CalendarConfig) Kind() Kind { return KindCalendar }
func (BoardConfig) Kind() Kind    { return KindBoard }

func (TableConfig) sealed()    {}
func (KanbanConfig) sealed()   {}
func (CalendarConfig) sealed() {}
func (BoardConfig) sealed()    {}

// ItemClickedMsg asks the page to open a record.
type ItemClickedMsg struct {
	ID     string
	Record Record
}

// StatusChangedMsg asks the page to persist a new status for a record.
type StatusChangedMsg struct {
	ID     string
	Status string
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Renderer is one presentation of the dataset.
type Renderer interface {
	Kind() Kind
	SetRecords(records []Record)
	Update(msg tea.KeyMsg) tea.Cmd
	View(width, height int) string
	// Capturing reports whether the renderer is mid-interaction (a grab or a popup) and
	// wants keys like esc for itself.
	Capturing() bool
}

// Switcher holds the active view and one renderer per configured kind. It holds no data of
// its own; SetRecords forwards the dataset to every renderer so each keeps its paging.
type Switcher struct {
	active    Kind
	order     []Kind
	renderers map[Kind]Renderer
}

// NewSwitcher builds renderers for configs in tab order. An active kind with no config
// falls back to the first configured kind.
func NewSwitcher(active Kind, logger *log.Logger, configs ...ViewConfig) *Switcher {
	logger = logging.OrDiscard(logger)
	s := &Switcher{renderers: make(map[Kind]Renderer)}
	for _, cfg := range configs {
		var r Renderer
		switch c := cfg.(type) {
		case TableConfig:
			r = NewTable(c, logger)
		case KanbanConfig:
			r = NewKanban(c, logger)
		case CalendarConfig:
			r = NewCalendar(c)
		case BoardConfig:
			r = NewBoard(c)
		}
		if r == nil {
			continue
		}
		if _, dup := s.renderers[cfg.Kind()]; !dup {
			s.order = append(s.order, cfg.Kind())
		}
		s.renderers[cfg.Kind()] = r
	}
	s.active = active
	if _, ok := s.renderers[active]; !ok && len(s.order) > 0 {
		s.active = s.order[0]
	}
	return s
}

func (s *Switcher) Active() Kind { return s.active }

// Kinds returns the configured kinds in tab order.
func (s *Switcher) Kinds() []Kind {
	return append([]Kind(nil), s.order...)
}

// SetActive switches tabs. It reports false when k is not configured.
func (s *Switcher) SetActive(k Kind) bool {
	if _, ok := s.renderers[k]; !ok {
		return false
	}
	s.active = k
	return true
}

// Cycle moves to the next (step 1) or previous (step -1) tab.
func (s *Switcher) Cycle(step int) Kind {
	if len(s.order) == 0 {
		return s.active
	}
	idx := 0
	for i, k := range s.order {
		if k == s.active {
			idx = i
		}
	}
	n := len(s.order)
	s.active = s.order[((idx+step)%n+n)%n]
	return s.active
}

// SetRecords hands the dataset to every renderer.
func (s *Switcher) SetRecords(records []Record) {
	for _, k := range s.order {
		s.renderers[k].SetRecords(records)
	}
}

// Renderer returns the renderer for k.
func (s *Switcher) Renderer(k Kind) (Renderer, bool) {
	r, ok := s.renderers[k]
	return r, ok
}

// Kanban returns the kanban renderer when configured.
func (s *Switcher) Kanban() (*Kanban, bool) {
	r, ok := s.renderers[KindKanban]
	if !ok {
		return nil, false
	}
	k, ok := r.(*Kanban)
	return k, ok
}

// Capturing reports whether the active renderer wants keys for itself.
func (s *Switcher) Capturing() bool {
	r, ok := s.renderers[s.active]
	return ok && r.Capturing()
}

// Update handles tab keys and forwards everything else to the active renderer.
func (s *Switcher) Update(msg tea.KeyMsg) tea.Cmd {
	if !s.Capturing() {
		switch msg.String() {
		case "v":
			s.Cycle(1)
			return nil
		case "V":
			s.Cycle(-1)
			return nil
		}
	}
	if r, ok := s.renderers[s.active]; ok {
		return r.Update(msg)
	}
	return nil
}

var (
	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)
)

// Tabs renders the tab bar.
func (s *Switcher) Tabs() string {
	var rendered []string
	for _, k := range s.order {
		if k == s.active {
			rendered = append(rendered, tabActiveStyle.Render(k.Label()))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(k.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// View renders the tab bar above the active renderer.
func (s *Switcher) View(width, height int) string {
	r, ok := s.renderers[s.active]
	if !ok {
		return s.Tabs()
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.Tabs(), "", r.View(width, height-2))
}
