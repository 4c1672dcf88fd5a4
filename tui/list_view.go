// ABOUTME: Shared list page: view switcher, search, add form, confirm dialog and side panel
// ABOUTME: Entity pages embed it and add their own keys, forms and detail panels
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/config"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/views"
)

// actionMsg reports a page request. op is one of the pages.Action names.
type actionMsg struct {
	op  string
	err error
}

// statusMsg reports a kanban drop that was persisted, or not.
type statusMsg struct {
	id  string
	err error
}

const sidePanelWidth = 48

type listPage struct {
	d       *deps
	route   Route
	title   string
	configs func(pages.ViewSettings) []views.ViewConfig

	switcher  *views.Switcher
	spin      spinner.Model
	search    textinput.Model
	searching bool
	loading   bool

	form   *form
	formOp string
	submit func(ctx context.Context, values map[string]string) error

	confirm *confirmDialog

	records   func() []views.Record
	setSearch func(string)
	load      func(ctx context.Context) error
	onOpen    func(r views.Record) tea.Cmd
	onStatus  func(ctx context.Context, id, status string) error
}

func newListPage(d *deps, route Route, configs func(pages.ViewSettings) []views.ViewConfig) *listPage {
	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	l := &listPage{
		d:       d,
		route:   route,
		title:   strings.ToUpper(route.Label()),
		configs: configs,
		spin:    sp,
		search:  search,
	}
	l.switcher = views.NewSwitcher(l.initialView(), d.logger, configs(d.viewSettings())...)
	return l
}

func (l *listPage) initialView() views.Kind {
	name := l.d.cfg.UI.DefaultView
	if l.d.prefs != nil {
		name = l.d.prefs.Get().View(l.route.String())
	}
	k, ok := views.ParseKind(name)
	if !ok {
		return views.KindTable
	}
	return k
}

func (l *listPage) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := l.d.ctx
	return func() tea.Msg {
		return actionMsg{op: op, err: fn(ctx)}
	}
}

// Enter loads the page's data each time the route is shown.
func (l *listPage) Enter() tea.Cmd {
	l.refresh()
	if l.load == nil {
		return nil
	}
	l.loading = true
	return tea.Batch(l.run(pages.ActionLoad, l.load), l.spin.Tick)
}

func (l *listPage) refresh() {
	if l.records != nil {
		l.switcher.SetRecords(l.records())
	}
}

// ApplyConfig rebuilds the renderers with new view settings, keeping the active tab.
func (l *listPage) ApplyConfig(cfg *config.Config) {
	active := l.switcher.Active()
	l.switcher = views.NewSwitcher(active, l.d.logger, l.configs(l.d.viewSettings())...)
	l.refresh()
}

func (l *listPage) openForm(op string, f *form, submit func(ctx context.Context, values map[string]string) error) tea.Cmd {
	l.form, l.formOp, l.submit = f, op, submit
	return textinput.Blink
}

// invalid reports a form value that failed to parse before any controller saw it.
func (l *listPage) invalid(field string, err error) error {
	verr := &models.ValidationError{Field: field, Message: err.Error()}
	l.d.notify(api.Notice{Kind: api.NoticeError, Title: "Error", Message: verr.Error()})
	return verr
}

func (l *listPage) openConfirm(c *confirmDialog) {
	l.confirm = c
}

// Typing reports whether keys belong to an input or an in-progress interaction.
func (l *listPage) Typing() bool {
	return l.searching || l.form != nil || l.confirm != nil || l.switcher.Capturing()
}

// overlay reports whether a modal (form or confirm) owns the keyboard.
func (l *listPage) overlay() bool {
	return l.form != nil || l.confirm != nil || l.searching
}

func (l *listPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !l.loading {
			return nil
		}
		var cmd tea.Cmd
		l.spin, cmd = l.spin.Update(msg)
		return cmd

	case actionMsg:
		if msg.op == pages.ActionLoad {
			l.loading = false
		}
		if l.form != nil && msg.op == l.formOp {
			l.form.busy = false
			if msg.err == nil {
				l.form = nil
			}
		}
		l.refresh()
		return nil

	case confirmDoneMsg:
		l.confirm = nil
		l.refresh()
		return nil

	case statusMsg:
		if msg.err != nil {
			if k, ok := l.switcher.Kanban(); ok {
				k.Revert(msg.id)
			}
		}
		l.refresh()
		return nil

	case views.StatusChangedMsg:
		if l.onStatus == nil {
			return nil
		}
		ctx, persist := l.d.ctx, l.onStatus
		return func() tea.Msg {
			return statusMsg{id: msg.ID, err: persist(ctx, msg.ID, msg.Status)}
		}

	case views.ItemClickedMsg:
		if l.onOpen == nil {
			return nil
		}
		return l.onOpen(msg.Record)

	case tea.KeyMsg:
		return l.handleListKeys(msg)
	}
	return nil
}

func (l *listPage) handleListKeys(msg tea.KeyMsg) tea.Cmd {
	if l.confirm != nil {
		closed, cmd := l.confirm.Update(l.d.ctx, msg)
		if closed {
			l.confirm = nil
		}
		return cmd
	}

	if l.form != nil {
		result, cmd := l.form.Update(msg)
		switch result {
		case formCancelled:
			l.form = nil
		case formSubmitted:
			l.form.busy = true
			values, submit := l.form.Values(), l.submit
			return l.run(l.formOp, func(ctx context.Context) error { return submit(ctx, values) })
		}
		return cmd
	}

	if l.searching {
		switch msg.String() {
		case "esc":
			l.searching = false
			l.search.Blur()
			l.search.SetValue("")
			l.applySearch()
			return nil
		case "enter":
			l.searching = false
			l.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		l.search, cmd = l.search.Update(msg)
		l.applySearch()
		return cmd
	}

	if !l.switcher.Capturing() {
		switch msg.String() {
		case "/":
			l.searching = true
			l.search.Focus()
			return textinput.Blink
		case "r":
			return l.Enter()
		}
	}

	before := l.switcher.Active()
	cmd := l.switcher.Update(msg)
	if after := l.switcher.Active(); after != before && l.d.prefs != nil {
		if err := l.d.prefs.SetPageView(l.route.String(), after.String()); err != nil {
			l.d.logger.Warn("view preference not saved", "page", l.route, "err", err)
		}
	}
	return cmd
}

func (l *listPage) applySearch() {
	if l.setSearch != nil {
		l.setSearch(l.search.Value())
	}
	l.refresh()
}

// view lays out the page. header sits under the title; side, when set, is drawn to the
// right of the renderers.
func (l *listPage) view(width, height int, header, side string, help []string) string {
	if l.confirm != nil {
		return l.confirm.View(width, height)
	}
	if l.form != nil {
		return l.form.View()
	}

	var s strings.Builder
	title := titleStyle.Render(l.title)
	if l.loading {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", l.spin.View()+" Loading...")
	}
	s.WriteString(title)
	s.WriteString("\n")
	if header != "" {
		s.WriteString(header)
		s.WriteString("\n")
	}

	bodyHeight := max(height-lipgloss.Height(s.String())-3, 5)
	mainWidth := width
	if side != "" {
		mainWidth = max(width-sidePanelWidth-1, 20)
	}
	body := l.switcher.View(mainWidth, bodyHeight)
	if side != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", side)
	}
	s.WriteString(body)
	s.WriteString("\n")

	if l.searching || l.search.Value() != "" {
		s.WriteString("/ " + l.search.View())
		s.WriteString("\n")
	}

	base := []string{"v: Switch view", "/: Search", "r: Reload"}
	s.WriteString(helpStyle.Render(strings.Join(append(help, base...), " • ")))
	return s.String()
}
