package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	loginMsgOK     = "Login successful! Redirecting..."
	loginMsgFailed = "Invalid email or password. Please try again."
)

type loginModel struct {
	email    textinput.Model
	password textinput.Model
	focus    int // 0 email, 1 password

	submitting bool
	done       bool
	status     string
	errText    string
}

func newCredentialInputs() (textinput.Model, textinput.Model) {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = ""
	email.CharLimit = 254

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.Prompt = ""
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	return email, pw
}

func newLoginModel(lastEmail string) loginModel {
	email, pw := newCredentialInputs()
	email.SetValue(lastEmail)
	m := loginModel{email: email, password: pw}
	m.focusFirstEmpty()
	return m
}

func (m *loginModel) reset() {
	m.password.SetValue("")
	m.submitting = false
	m.done = false
	m.status = ""
	m.errText = ""
}

func (m *loginModel) setFocus(i int) {
	m.focus = i
	m.email.Blur()
	m.password.Blur()
	if i == 0 {
		m.email.Focus()
	} else {
		m.password.Focus()
	}
}

func (m *loginModel) focusFirstEmpty() {
	if strings.TrimSpace(m.email.Value()) != "" {
		m.setFocus(1)
		return
	}
	m.setFocus(0)
}

// Update returns submit=true when the form should be sent.
func (m loginModel) Update(msg tea.KeyMsg) (loginModel, bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.setFocus(1 - m.focus)
		return m, false, nil
	case "enter":
		if m.focus == 0 {
			m.setFocus(1)
			return m, false, nil
		}
		if m.submitting || m.done {
			return m, false, nil
		}
		return m, true, nil
	}
	if m.submitting || m.done {
		return m, false, nil
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, false, cmd
}

func (m loginModel) View(width int) string {
	bodyW := modalBodyWidth(width)
	m.email.Width = bodyW - 3
	m.password.Width = bodyW - 3

	lines := []string{
		fieldLabel("Email", m.focus == 0),
		renderInputLine(bodyW, m.email.View(), m.focus == 0),
		"",
		fieldLabel("Password", m.focus == 1),
		renderInputLine(bodyW, m.password.View(), m.focus == 1),
		"",
		statusLine(m.status, m.errText, m.submitting, "Logging in..."),
		styleMuted().Render("enter: log in   ctrl+r: register   ctrl+c: quit"),
	}
	return renderModalBox(width, "Log in", strings.Join(lines, "\n"))
}

func fieldLabel(s string, focused bool) string {
	if focused {
		return lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(s)
	}
	return styleMuted().Render(s)
}

func statusLine(ok, errText string, pending bool, pendingText string) string {
	switch {
	case errText != "":
		return styleError().Render(errText)
	case ok != "":
		return styleSuccess().Render(ok)
	case pending:
		return styleMuted().Render(pendingText)
	}
	return ""
}
