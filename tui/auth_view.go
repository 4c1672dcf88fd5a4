// ABOUTME: Login and register pages, the public entry points of the shell
// ABOUTME: Google sign-in happens in a browser; the page only shows where to go
package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/models"
)

type loginResultMsg struct {
	user *models.User
	err  error
}

type registerResultMsg struct{ err error }

// errorText prefers the backend's message and falls back to fallback.
func errorText(err error, fallback string) string {
	if msg := api.Message(err); msg != "" {
		return msg
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return fallback
}

// authPage is a form with a small menu around it. esc leaves the form for the menu so the
// shell's quit key works again.
type authPage struct {
	d       *deps
	title   string
	newForm func() *form
	form    *form
	menu    bool
	links   []string
}

func (p *authPage) Enter() tea.Cmd {
	p.form = p.newForm()
	p.menu = false
	return nil
}

func (p *authPage) Typing() bool { return !p.menu }

func (p *authPage) View(width, height int) string {
	var s strings.Builder
	if p.menu {
		s.WriteString(titleStyle.Render(strings.ToUpper(p.title)))
		s.WriteString("\n")
	} else {
		s.WriteString(p.form.View())
		s.WriteString("\n\n")
	}
	s.WriteString(mutedStyle.Render("Continue with Google: " + p.d.client.GoogleAuthURL()))
	s.WriteString("\n")
	if p.menu {
		s.WriteString(helpStyle.Render(strings.Join(append([]string{"enter: Back to form"}, p.links...), " • ")))
	}
	box := panelStyle.Width(min(width-4, 72)).Render(s.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// handleForm feeds a key to the form; submit runs on formSubmitted.
func (p *authPage) handleForm(msg tea.KeyMsg, submit func(values map[string]string) tea.Cmd) tea.Cmd {
	if p.menu {
		if msg.String() == "enter" {
			p.menu = false
			return nil
		}
		return p.menuKey(msg.String())
	}
	result, cmd := p.form.Update(msg)
	switch result {
	case formCancelled:
		p.menu = true
		return nil
	case formSubmitted:
		p.form.busy = true
		return submit(p.form.Values())
	}
	return cmd
}

func (p *authPage) menuKey(key string) tea.Cmd {
	switch key {
	case "r":
		return navigate(RouteRegister)
	case "l":
		return navigate(RouteLogin)
	case "p":
		return navigate(RoutePolicy)
	case "t":
		return navigate(RouteTerms)
	}
	return nil
}

type loginPage struct {
	authPage
}

func newLoginPage(d *deps) *loginPage {
	p := &loginPage{authPage{d: d, title: "Login", links: []string{"r: Register", "p: Privacy policy", "t: Terms"}}}
	p.newForm = func() *form {
		return newForm("Login",
			formField{key: "email", label: "Email", placeholder: "you@company.com"},
			formField{key: "password", label: "Password", secret: true},
		)
	}
	p.form = p.newForm()
	return p
}

func (p *loginPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginResultMsg:
		p.form.busy = false
		if msg.err != nil {
			p.d.notify(api.Notice{Kind: api.NoticeError, Title: "Error", Message: errorText(msg.err, "Login failed")})
			return nil
		}
		p.d.notify(api.Notice{Kind: api.NoticeSuccess, Title: "Success", Message: "Login successful!"})
		p.form = p.newForm()
		user := msg.user
		return func() tea.Msg { return loggedInMsg{user: user} }
	case tea.KeyMsg:
		return p.handleForm(msg, p.submit)
	}
	return nil
}

func (p *loginPage) submit(v map[string]string) tea.Cmd {
	ctx, client := p.d.ctx, p.d.client
	return func() tea.Msg {
		user, err := client.Login(ctx, v["email"], v["password"])
		return loginResultMsg{user: user, err: err}
	}
}

type registerPage struct {
	authPage
}

func newRegisterPage(d *deps) *registerPage {
	p := &registerPage{authPage{d: d, title: "Register", links: []string{"l: Login", "p: Privacy policy", "t: Terms"}}}
	p.newForm = func() *form {
		return newForm("Create Account",
			formField{key: "name", label: "Name"},
			formField{key: "company", label: "Company"},
			formField{key: "email", label: "Email"},
			formField{key: "password", label: "Password", secret: true},
		)
	}
	p.form = p.newForm()
	return p
}

func (p *registerPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case registerResultMsg:
		p.form.busy = false
		if msg.err != nil {
			p.d.notify(api.Notice{Kind: api.NoticeError, Title: "Error", Message: errorText(msg.err, "Registration failed")})
			return nil
		}
		p.d.notify(api.Notice{Kind: api.NoticeSuccess, Title: "Success", Message: "Registration successful!"})
		return navigate(RouteLogin)
	case tea.KeyMsg:
		return p.handleForm(msg, p.submit)
	}
	return nil
}

func (p *registerPage) submit(v map[string]string) tea.Cmd {
	ctx, client := p.d.ctx, p.d.client
	in := api.RegisterInput{Name: v["name"], Company: v["company"], Email: v["email"], Password: v["password"]}
	return func() tea.Msg {
		return registerResultMsg{err: client.Register(ctx, in)}
	}
}
