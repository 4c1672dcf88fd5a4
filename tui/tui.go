// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: The shell owns routing, the auth gate, toasts, notification polling and live config
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/config"
	"github.com/harperreed/crmtui/logging"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/prefs"
)

// Page is one routed screen. Update returns commands only; pages keep their own state.
type Page interface {
	Enter() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	// Typing reports that keys belong to the page, so shell shortcuts stay off.
	Typing() bool
}

type configurable interface {
	ApplyConfig(cfg *config.Config)
}

// Session persists who is logged in between runs.
type Session interface {
	SaveUser(user models.User) error
	ClearUser() error
}

// Options wire the shell to the backend and local state.
type Options struct {
	Client  *api.Client
	Notices <-chan api.Notice // usually a ChanNotifier the client was built with
	Prefs   *prefs.Store
	Config  *config.Config
	Reloads <-chan config.Reload
	Session Session
	User    *models.User // cached user, shown until the session check answers
	Start   Route        // zero is the dashboard
	Logger  *log.Logger
}

type account struct {
	user *models.User
}

type deps struct {
	ctx     context.Context
	client  *api.Client
	prefs   *prefs.Store
	cfg     *config.Config
	logger  *log.Logger
	account *account
	ctl     *pages.Workspace
}

func (d *deps) viewSettings() pages.ViewSettings {
	return pages.ViewSettings{PageSize: d.cfg.UI.PageSize, PaginateFirst: d.cfg.UI.KanbanPaginateFirst}
}

func (d *deps) notify(n api.Notice) {
	if d.client != nil {
		d.client.Notifier().Notify(n)
	}
}

// pageMsg carries a result back to the page whose command produced it.
type pageMsg struct {
	route Route
	msg   tea.Msg
}

// tag routes everything cmd produces to route, including the commands inside a batch.
func tag(route Route, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		switch msg := msg.(type) {
		case nil:
			return nil
		case tea.BatchMsg:
			out := make(tea.BatchMsg, 0, len(msg))
			for _, c := range msg {
				out = append(out, tag(route, c))
			}
			return out
		}
		return pageMsg{route: route, msg: msg}
	}
}

type (
	authCheckedMsg struct {
		status api.AuthStatus
		err    error
	}
	navigateMsg  struct{ route Route }
	loggedInMsg  struct{ user *models.User }
	loggedOutMsg struct{ err error }
	prefsMsg     prefs.Prefs
	reloadMsg    config.Reload

	notificationsTickMsg struct{}
	notificationsMsg     struct {
		items []models.Notification
		err   error
	}
	notificationReadMsg struct {
		id  string
		err error
	}
)

func navigate(route Route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: route} }
}

// Model is the main bubbletea model
type Model struct {
	d     *deps
	opts  Options
	pages map[Route]Page

	prefsCh <-chan prefs.Prefs

	route   Route
	checked bool
	layout  string
	help    bool

	toasts        *toastStack
	notifications []models.Notification
	showNotes     bool
	noteCursor    int

	width  int
	height int
}

// NewModel builds the shell and every page. Nothing is fetched until Init.
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	logger := logging.OrDiscard(opts.Logger).With("component", "tui")
	d := &deps{
		ctx:     ctx,
		client:  opts.Client,
		prefs:   opts.Prefs,
		cfg:     opts.Config,
		logger:  logger,
		account: &account{user: opts.User},
		ctl:     pages.NewWorkspace(pages.Options{Gateway: opts.Client, Logger: logger}),
	}
	layout := models.LayoutDefault
	if opts.Prefs != nil {
		layout = opts.Prefs.Layout()
	}
	m := Model{
		d:      d,
		opts:   opts,
		route:  opts.Start,
		layout: layout,
		toasts: &toastStack{},
		width:  80,
		height: 24,
	}
	if opts.Prefs != nil {
		m.prefsCh = opts.Prefs.Watch(ctx)
	}
	m.pages = map[Route]Page{
		RouteDashboard:  newDashboardPage(d),
		RouteLeads:      newPeoplePage(d, RouteLeads, d.ctl.Leads),
		RouteContacts:   newPeoplePage(d, RouteContacts, d.ctl.Contacts),
		RoutePipeline:   newDealsPage(d, d.ctl.Deals),
		RouteTasks:      newTasksPage(d, d.ctl.Tasks),
		RouteMeetings:   newMeetingsPage(d, d.ctl.Meetings),
		RouteGroups:     newGroupsPage(d, d.ctl.Groups),
		RouteEmails:     newInboxPage(d),
		RouteAnalytics:  newAnalyticsPage(d),
		RouteSettings:   newSettingsPage(d),
		RouteMessages:   newWebOnlyPage(RouteMessages, "/messages"),
		RouteBulkEmails: newWebOnlyPage(RouteBulkEmails, "/bulk-emails"),
		RouteProfile:    newProfilePage(d),
		RouteLogin:      newLoginPage(d),
		RouteRegister:   newRegisterPage(d),
		RoutePolicy:     newDocPage(RoutePolicy, policyDoc),
		RouteTerms:      newDocPage(RouteTerms, termsDoc),
	}
	return m
}

// User returns the logged in user, or nil.
func (m Model) User() *models.User { return m.d.account.user }

// Route returns the active route.
func (m Model) Route() Route { return m.route }

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.checkAuth(),
		listenNotices(m.opts.Notices),
		listenReloads(m.opts.Reloads),
		listenPrefs(m.prefsCh),
		func() tea.Msg { return notificationsTickMsg{} },
	}
	return tea.Batch(cmds...)
}

func (m Model) checkAuth() tea.Cmd {
	ctx, client := m.d.ctx, m.d.client
	return func() tea.Msg {
		status, err := client.Me(ctx)
		return authCheckedMsg{status: status, err: err}
	}
}

func listenPrefs(ch <-chan prefs.Prefs) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return prefsMsg(p)
	}
}

func listenReloads(ch <-chan config.Reload) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return reloadMsg(r)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case pageMsg:
		switch inner := msg.msg.(type) {
		case navigateMsg:
			return m.navigate(inner.route)
		case loggedInMsg:
			return m.loggedIn(inner.user)
		case loggedOutMsg:
			return m.loggedOut(inner.err)
		}
		page, ok := m.pages[msg.route]
		if !ok {
			return m, nil
		}
		return m, tag(msg.route, page.Update(msg.msg))

	case navigateMsg:
		return m.navigate(msg.route)

	case authCheckedMsg:
		return m.authChecked(msg)

	case noticeMsg:
		return m.notice(api.Notice(msg))

	case toastExpiredMsg:
		m.toasts.dismiss(msg.id)
		return m, nil

	case prefsMsg:
		m.layout = msg.Layout
		return m, listenPrefs(m.prefsCh)

	case reloadMsg:
		return m.reload(config.Reload(msg))

	case notificationsTickMsg:
		return m, m.pollNotifications()

	case notificationsMsg:
		return m.notificationsLoaded(msg)

	case notificationReadMsg:
		if msg.err == nil {
			m.notifications = removeNotification(m.notifications, msg.id)
			m.noteCursor = min(m.noteCursor, max(len(m.notifications)-1, 0))
		}
		return m, nil
	}
	return m, nil
}

func (m Model) navigate(route Route) (tea.Model, tea.Cmd) {
	if !route.Public() && m.d.account.user == nil {
		route = RouteLogin
	}
	page, ok := m.pages[route]
	if !ok {
		return m, nil
	}
	if route != m.route {
		if l, ok := m.pages[m.route].(interface{ Leave() }); ok {
			l.Leave()
		}
	}
	m.route = route
	m.help = false
	return m, tag(route, page.Enter())
}

func (m Model) authChecked(msg authCheckedMsg) (tea.Model, tea.Cmd) {
	m.checked = true
	switch {
	case msg.err != nil:
		// Offline: keep the cached user so local pages still open.
		m.d.logger.Warn("session check failed", "err", msg.err)
		cmd := m.toasts.push(api.Notice{Kind: api.NoticeError, Title: "Error", Message: errorText(msg.err, api.MessageLoadFailed)})
		next, enter := m.navigate(m.route)
		return next, tea.Batch(cmd, enter)
	case msg.status.Authenticated:
		m.setUser(msg.status.User)
	default:
		m.setUser(nil)
	}
	return m.navigate(m.route)
}

func (m Model) setUser(user *models.User) {
	m.d.account.user = user
	if m.opts.Session == nil {
		return
	}
	var err error
	if user != nil {
		err = m.opts.Session.SaveUser(*user)
	} else {
		err = m.opts.Session.ClearUser()
	}
	if err != nil {
		m.d.logger.Warn("session not persisted", "err", err)
	}
}

func (m Model) loggedIn(user *models.User) (tea.Model, tea.Cmd) {
	m.setUser(user)
	m.toasts.clear()
	return m.navigate(RouteDashboard)
}

func (m Model) loggedOut(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.d.logger.Warn("logout request failed", "err", err)
	}
	m.setUser(nil)
	m.notifications = nil
	m.showNotes = false
	return m.navigate(RouteLogin)
}

func (m Model) notice(n api.Notice) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenNotices(m.opts.Notices), m.toasts.push(n)}
	if n.Kind == api.NoticeSessionExpired {
		m.setUser(nil)
		if !m.route.Public() {
			next, cmd := m.navigate(RouteLogin)
			return next, tea.Batch(append(cmds, cmd)...)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) reload(r config.Reload) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenReloads(m.opts.Reloads)}
	if r.Err != nil {
		m.d.logger.Warn("config reload failed", "err", r.Err)
		cmds = append(cmds, m.toasts.push(api.Notice{Kind: api.NoticeError, Title: "Config", Message: r.Err.Error()}))
		return m, tea.Batch(cmds...)
	}
	*m.d.cfg = *r.Config
	for _, p := range m.pages {
		if c, ok := p.(configurable); ok {
			c.ApplyConfig(m.d.cfg)
		}
	}
	m.d.logger.Info("config reloaded")
	cmds = append(cmds, m.toasts.push(api.Notice{Kind: api.NoticeInfo, Message: "Configuration reloaded"}))
	return m, tea.Batch(cmds...)
}

func (m Model) pollNotifications() tea.Cmd {
	if m.d.account.user == nil {
		return m.scheduleNotifications()
	}
	ctx, client := api.Quiet(m.d.ctx), m.d.client
	return func() tea.Msg {
		items, err := client.Notifications(ctx)
		return notificationsMsg{items: items, err: err}
	}
}

func (m Model) scheduleNotifications() tea.Cmd {
	every := m.d.cfg.Poll.Notifications.Duration
	if every <= 0 {
		return nil
	}
	return tea.Tick(every, func(time.Time) tea.Msg { return notificationsTickMsg{} })
}

func (m Model) notificationsLoaded(msg notificationsMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.scheduleNotifications()}
	if msg.err != nil {
		m.d.logger.Debug("notifications poll failed", "err", msg.err)
		return m, tea.Batch(cmds...)
	}
	if len(msg.items) > len(m.notifications) {
		n := len(msg.items)
		text := fmt.Sprintf("You have %d unread notifications", n)
		if n == 1 {
			text = msg.items[0].Title() + ": " + msg.items[0].Message
		}
		cmds = append(cmds, m.toasts.push(api.Notice{Kind: api.NoticeInfo, Message: text}))
	}
	sort.SliceStable(msg.items, func(i, j int) bool {
		return msg.items[i].CreatedAt.After(msg.items[j].CreatedAt.Time)
	})
	m.notifications = msg.items
	m.noteCursor = min(m.noteCursor, max(len(m.notifications)-1, 0))
	return m, tea.Batch(cmds...)
}

func removeNotification(items []models.Notification, id string) []models.Notification {
	out := items[:0:0]
	for _, n := range items {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showNotes {
		return m.handleNotificationKeys(msg)
	}
	page := m.pages[m.route]
	if page == nil || !m.checked {
		return m, nil
	}
	if page.Typing() {
		return m, tag(m.route, page.Update(msg))
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.help = !m.help
		return m, nil
	}
	if m.d.account.user != nil {
		switch key := msg.String(); key {
		case "N":
			m.showNotes = true
			return m, nil
		case "tab":
			return m.navigate(nextRoute(m.route, 1))
		case "shift+tab":
			return m.navigate(nextRoute(m.route, -1))
		default:
			if r, ok := routeForKey(key); ok {
				return m.navigate(r)
			}
		}
	}
	return m, tag(m.route, page.Update(msg))
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	railStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("238")).
			PaddingRight(1)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("9")).
			Padding(0, 1)
)

func (m Model) View() string {
	if !m.checked {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, mutedStyle.Render("Checking session..."))
	}

	header := m.renderHeader()
	toasts := m.toasts.View(m.width / 2)
	bodyHeight := max(m.height-lipgloss.Height(header)-1, 5)

	rail := m.renderRail(bodyHeight)
	bodyWidth := max(m.width-lipgloss.Width(rail), 20)

	var body string
	switch {
	case m.showNotes:
		body = m.renderNotifications(bodyWidth)
	case m.help:
		body = m.renderHelp()
	default:
		body = m.pages[m.route].View(bodyWidth, bodyHeight)
	}
	if rail != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, rail, body)
	}
	if toasts != "" {
		body = lipgloss.JoinVertical(lipgloss.Right, toasts, body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) renderHeader() string {
	title := titleStyle.MarginBottom(0).Render("CRM")
	right := ""
	if u := m.d.account.user; u != nil {
		right = mutedStyle.Render(u.Name)
		if n := len(m.notifications); n > 0 {
			right += " " + badgeStyle.Render(fmt.Sprintf("N %d", n))
		}
	}
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(right), 1)
	return title + strings.Repeat(" ", gap) + right
}

// renderRail draws the navigation rail for the current layout preference.
func (m Model) renderRail(height int) string {
	if m.d.account.user == nil || m.route.Public() || m.layout == models.LayoutHidden {
		return ""
	}
	var lines []string
	for i, r := range navRoutes {
		label := r.Label()
		if m.layout == models.LayoutCollapsed {
			label = label[:1]
		} else if i < 10 {
			label = fmt.Sprintf("%d %s", (i+1)%10, label)
		}
		style := tabInactiveStyle
		if r == m.route {
			style = tabActiveStyle
		}
		lines = append(lines, style.Render(label))
	}
	return railStyle.Height(height).Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	help := []string{
		"tab / shift+tab   Next / previous page",
		"1-9, 0            Jump to page",
		"N                 Notifications",
		"v / V             Next / previous view",
		"/                 Search",
		"r                 Reload",
		"?                 Toggle help",
		"q, ctrl+c         Quit",
	}
	return titleStyle.Render("HELP") + "\n" + strings.Join(help, "\n")
}

func (m Model) handleNotificationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "N", "q":
		m.showNotes = false
	case "j", "down":
		m.noteCursor = min(m.noteCursor+1, max(len(m.notifications)-1, 0))
	case "k", "up":
		m.noteCursor = max(m.noteCursor-1, 0)
	case "enter":
		if len(m.notifications) == 0 {
			return m, nil
		}
		id, ctx, client := m.notifications[m.noteCursor].ID, m.d.ctx, m.d.client
		return m, func() tea.Msg {
			return notificationReadMsg{id: id, err: client.MarkNotificationRead(ctx, id)}
		}
	}
	return m, nil
}

// Run starts the full-screen program and blocks until it exits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
