package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const dashboardHelp = "n: new  e: edit  d: delete  r: refresh  ?: details  L: log out  q: quit"

func (m appModel) View() string {
	w, h := m.width, m.height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	switch m.view {
	case viewLogin:
		return placeModal(w, h, m.login.View(modalWidth(w)))
	case viewRegister:
		return placeModal(w, h, m.register.View(modalWidth(w)))
	}

	switch m.dash.modal {
	case modalTaskForm:
		if m.dash.form != nil {
			return placeModal(w, h, m.dash.form.View(modalWidth(w)))
		}
	case modalConfirmDelete:
		body := fmt.Sprintf("Delete %q? This cannot be undone.", m.dash.confirmTask.Title)
		box := renderConfirmModal(modalWidth(w), "Delete task", body, "Delete", "Cancel", m.dash.confirmFocus)
		return placeModal(w, h, box)
	case modalDetail:
		return placeModal(w, h, m.renderDetail(modalWidth(w), h))
	}
	return m.renderDashboard(w, h)
}

func (m appModel) renderDashboard(w, h int) string {
	who := fmt.Sprintf("%s (%s)", m.dash.identity.UserID, m.dash.identity.Role)
	title := styleHeader().Render("taskdash")
	header := lipgloss.JoinHorizontal(lipgloss.Top, title, " ", styleMuted().Render(who))

	var body string
	switch {
	case m.dash.state == stateLoading:
		body = styleMuted().Render("Loading tasks...")
	case len(m.dash.list.Items()) == 0:
		body = styleMuted().Render("No tasks available.")
	default:
		body = m.dash.list.View()
	}
	body = normalizePane(body, w, h-dashboardChromeHeight)

	lines := []string{
		fitWidth(header, w),
		"",
		body,
		m.renderFlash(w),
		fitWidth(styleMuted().Render(dashboardHelp), w),
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderFlash(w int) string {
	if m.flashText == "" {
		return ""
	}
	if m.flashKind == flashError {
		return truncateText(styleError().Render(m.flashText), w)
	}
	return truncateText(styleSuccess().Render(m.flashText), w)
}

func (m appModel) renderDetail(w, termH int) string {
	t := m.dash.detailTask
	bodyW := modalBodyWidth(w)

	meta := []string{styleMuted().Render("id: " + t.ID)}
	if t.OwnerID == m.dash.identity.UserID {
		meta = append(meta, styleMuted().Render("owner: you"))
	} else {
		meta = append(meta, styleForeign().Render(foreignMarker))
	}

	desc := renderMarkdown(t.Description, bodyW)
	if desc == "" {
		desc = styleMuted().Render("(no description)")
	}
	maxH := termH - 10
	if maxH < 3 {
		maxH = 3
	}
	if n := strings.Count(desc, "\n") + 1; n > maxH {
		desc = normalizePane(desc, bodyW, maxH)
	}

	content := strings.Join([]string{
		strings.Join(meta, "  "),
		"",
		desc,
		"",
		styleMuted().Render("esc: close"),
	}, "\n")
	return renderModalBox(w, t.Title, content)
}
