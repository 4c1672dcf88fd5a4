// ABOUTME: Toast stack fed by gateway and controller notices
// ABOUTME: ChanNotifier bridges notices raised on request goroutines into the event loop
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/logging"
)

const (
	toastTTL = 4 * time.Second
	maxToast = 4
)

// ChanNotifier queues notices for the shell. Notify never blocks; when the queue is full the
// notice is dropped and logged.
type ChanNotifier struct {
	ch     chan api.Notice
	logger *log.Logger
}

func NewChanNotifier(size int, logger *log.Logger) *ChanNotifier {
	if size <= 0 {
		size = 64
	}
	return &ChanNotifier{ch: make(chan api.Notice, size), logger: logging.OrDiscard(logger)}
}

func (n *ChanNotifier) Notify(notice api.Notice) {
	select {
	case n.ch <- notice:
	default:
		n.logger.Warn("dropping notice, queue full", "message", notice.Message)
	}
}

// C is the channel the shell listens on.
func (n *ChanNotifier) C() <-chan api.Notice { return n.ch }

type noticeMsg api.Notice

type toastExpiredMsg struct{ id string }

func listenNotices(ch <-chan api.Notice) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

type toast struct {
	id     string
	notice api.Notice
}

type toastStack struct {
	items []toast
}

// push shows n and schedules its expiry. A notice identical to one on screen is not repeated,
// so a burst of 401s shows one "session expired".
func (s *toastStack) push(n api.Notice) tea.Cmd {
	for _, t := range s.items {
		if t.notice == n {
			return nil
		}
	}
	id := ulid.Make().String()
	s.items = append(s.items, toast{id: id, notice: n})
	if len(s.items) > maxToast {
		s.items = s.items[len(s.items)-maxToast:]
	}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (s *toastStack) dismiss(id string) {
	for i, t := range s.items {
		if t.id == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *toastStack) clear() { s.items = nil }

func (s toastStack) Len() int { return len(s.items) }

var (
	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	toastColors = map[api.NoticeKind]lipgloss.Color{
		api.NoticeInfo:           lipgloss.Color("39"),
		api.NoticeSuccess:        lipgloss.Color("10"),
		api.NoticeError:          lipgloss.Color("9"),
		api.NoticeSessionExpired: lipgloss.Color("11"),
	}
)

func (s toastStack) View(width int) string {
	if len(s.items) == 0 {
		return ""
	}
	var lines []string
	for _, t := range s.items {
		text := t.notice.Message
		if t.notice.Title != "" {
			text = t.notice.Title + ": " + text
		}
		style := toastStyle.BorderForeground(toastColors[t.notice.Kind]).Foreground(toastColors[t.notice.Kind])
		if width > 4 {
			style = style.MaxWidth(width)
		}
		lines = append(lines, style.Render(text))
	}
	return strings.Join(lines, "\n")
}
