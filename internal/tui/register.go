package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdash/internal/model"
)

const (
	registerMsgOK     = "Registration successful! Redirecting..."
	registerMsgFailed = "Registration failed. Please try again."
)

const (
	registerFocusEmail = iota
	registerFocusPassword
	registerFocusRole
	registerFocusCount
)

type registerModel struct {
	email    textinput.Model
	password textinput.Model
	role     model.Role
	focus    int

	submitting bool
	done       bool
	status     string
	errText    string
}

func newRegisterModel() registerModel {
	email, pw := newCredentialInputs()
	m := registerModel{email: email, password: pw, role: model.RoleUser}
	m.setFocus(registerFocusEmail)
	return m
}

func (m *registerModel) setFocus(i int) {
	m.focus = i
	m.email.Blur()
	m.password.Blur()
	switch i {
	case registerFocusEmail:
		m.email.Focus()
	case registerFocusPassword:
		m.password.Focus()
	}
}

func (m *registerModel) toggleRole() {
	if m.role == model.RoleAdmin {
		m.role = model.RoleUser
	} else {
		m.role = model.RoleAdmin
	}
}

// Update returns submit=true when the form should be sent.
func (m registerModel) Update(msg tea.KeyMsg) (registerModel, bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.setFocus((m.focus + 1) % registerFocusCount)
		return m, false, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + registerFocusCount - 1) % registerFocusCount)
		return m, false, nil
	case "enter":
		if m.focus != registerFocusRole {
			m.setFocus(m.focus + 1)
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
	switch m.focus {
	case registerFocusEmail:
		m.email, cmd = m.email.Update(msg)
	case registerFocusPassword:
		m.password, cmd = m.password.Update(msg)
	case registerFocusRole:
		switch msg.String() {
		case "left", "right", " ", "h", "l":
			m.toggleRole()
		}
	}
	return m, false, cmd
}

func (m registerModel) View(width int) string {
	bodyW := modalBodyWidth(width)
	m.email.Width = bodyW - 3
	m.password.Width = bodyW - 3

	opt := lipgloss.NewStyle().Padding(0, 1).Foreground(colorSurfaceFg).Background(colorControlBg)
	optOn := opt.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	roles := make([]string, 0, 2)
	for _, r := range []model.Role{model.RoleUser, model.RoleAdmin} {
		if r == m.role {
			roles = append(roles, optOn.Render(string(r)))
		} else {
			roles = append(roles, opt.Render(string(r)))
		}
	}

	lines := []string{
		fieldLabel("Email", m.focus == registerFocusEmail),
		renderInputLine(bodyW, m.email.View(), m.focus == registerFocusEmail),
		"",
		fieldLabel("Password", m.focus == registerFocusPassword),
		renderInputLine(bodyW, m.password.View(), m.focus == registerFocusPassword),
		"",
		fieldLabel("Role", m.focus == registerFocusRole),
		lipgloss.JoinHorizontal(lipgloss.Top, roles[0], " ", roles[1]),
		"",
		statusLine(m.status, m.errText, m.submitting, "Registering..."),
		styleMuted().Render("enter: next/submit   ←/→: role   esc: back to login"),
	}
	return renderModalBox(width, "Register", strings.Join(lines, "\n"))
}
