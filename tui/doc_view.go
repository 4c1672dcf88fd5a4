// ABOUTME: Static pages: privacy policy and terms rendered from markdown, and the routes that
// ABOUTME: only the web client implements
package tui

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	//go:embed docs/policy.md
	policyDoc string

	//go:embed docs/terms.md
	termsDoc string
)

// docPage renders markdown once per width and scrolls it in a viewport.
type docPage struct {
	route    Route
	markdown string
	vp       viewport.Model
	width    int
}

func newDocPage(route Route, markdown string) *docPage {
	return &docPage{route: route, markdown: markdown, vp: viewport.New(80, 20)}
}

func (p *docPage) Enter() tea.Cmd {
	p.vp.GotoTop()
	return nil
}

func (p *docPage) Typing() bool { return false }

func (p *docPage) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "esc", "b":
		return navigate(RouteLogin)
	}
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(key)
	return cmd
}

func (p *docPage) render(width int) {
	if width == p.width {
		return
	}
	p.width = width
	out, err := renderMarkdown(p.markdown, width)
	if err != nil {
		out = p.markdown
	}
	p.vp.SetContent(out)
}

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func (p *docPage) View(width, height int) string {
	p.vp.Width = width
	p.vp.Height = max(height-2, 3)
	p.render(width)
	return p.vp.View() + "\n" + helpStyle.MarginTop(0).Render("j/k: Scroll • esc: Back")
}

// webOnlyPage stands in for routes whose features live on the server side, such as the
// messaging bridge and bulk delivery.
type webOnlyPage struct {
	route Route
	path  string
}

func newWebOnlyPage(route Route, path string) *webOnlyPage {
	return &webOnlyPage{route: route, path: path}
}

func (p *webOnlyPage) Enter() tea.Cmd         { return nil }
func (p *webOnlyPage) Typing() bool           { return false }
func (p *webOnlyPage) Update(tea.Msg) tea.Cmd { return nil }

func (p *webOnlyPage) View(width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(strings.ToUpper(p.route.Label())))
	s.WriteString("\n")
	s.WriteString(fieldValueStyle.Render(p.route.Label() + " is available in the web client."))
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render("Open " + p.path + " in your browser to use it."))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panelStyle.Render(s.String()))
}
