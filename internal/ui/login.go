package ui

import (
	"fmt"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/todoboard/internal/theme"
)

// loginFormState holds the login field values on the heap so huh's
// Value pointers remain valid across Bubble Tea model copies.
type loginFormState struct {
	form     *huh.Form
	username string
	password string
}

// startLogin opens the login form.
func (m Model) startLogin() (tea.Model, tea.Cmd) {
	m.session.ClearError()

	fs := &loginFormState{}
	fs.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&fs.username).
				Validate(minRunes(2, "username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fs.password).
				Validate(minRunes(2, "password")),
		),
	)

	m.loginForm = fs
	m.currentView = ViewLogin
	return m, fs.form.Init()
}

// updateLogin feeds input to the login form and submits on completion.
func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	fs := m.loginForm
	if fs == nil || fs.form == nil {
		m.currentView = ViewList
		return m, nil
	}

	mdl, cmd := fs.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		fs.form = f
	}

	switch fs.form.State {
	case huh.StateCompleted:
		return m, m.loginCmd(fs.username, fs.password)
	case huh.StateAborted:
		m.loginForm = nil
		m.currentView = ViewList
		return m, nil
	}

	return m, cmd
}

// handleLoginResult finishes or retries the login flow.
func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Stay on the login view with the store's classified error
		// rendered; reopen the form for another attempt.
		return m.startLoginRetry()
	}

	m.loginForm = nil
	m.currentView = ViewList
	if user := m.session.Snapshot().User; user != nil {
		m.statusMsg = fmt.Sprintf("signed in as %s", user.Username)
	}
	return m, nil
}

// startLoginRetry rebuilds the form after a failed attempt without
// clearing the recorded error.
func (m Model) startLoginRetry() (tea.Model, tea.Cmd) {
	username := ""
	if m.loginForm != nil {
		username = m.loginForm.username
	}

	fs := &loginFormState{username: username}
	fs.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&fs.username).
				Validate(minRunes(2, "username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fs.password).
				Validate(minRunes(2, "password")),
		),
	)

	m.loginForm = fs
	m.currentView = ViewLogin
	return m, fs.form.Init()
}

// loginView renders the login form with any authentication error.
func (m Model) loginView() string {
	if m.loginForm == nil || m.loginForm.form == nil {
		return ""
	}

	content := theme.HeaderStyle.Render("Sign in") + "\n\n" + m.loginForm.form.View()

	if err := m.session.Snapshot().Err; err != nil {
		content += "\n" + theme.ErrorStyle.Render(err.Error())
	}

	return theme.PanelStyle.Render(content)
}

// minRunes validates that a field has at least n characters.
func minRunes(n int, field string) func(string) error {
	return func(s string) error {
		if utf8.RuneCountInString(s) < n {
			return fmt.Errorf("%s must be at least %d characters", field, n)
		}
		return nil
	}
}
