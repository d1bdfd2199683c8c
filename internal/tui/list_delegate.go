package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"taskdash/internal/model"
)

const foreignMarker = "Task owned by another user"

// taskItem is one dashboard row. Flags are computed against the current
// identity when the list is rebuilt.
type taskItem struct {
	task         model.Task
	canManage    bool
	ownedByOther bool
	busy         bool
}

func (i taskItem) FilterValue() string { return i.task.Title }
func (i taskItem) Title() string       { return i.task.Title }

// affordances lists the row actions; empty when the user cannot manage the task.
func (i taskItem) affordances() string {
	if !i.canManage {
		return ""
	}
	if i.busy {
		return "working…"
	}
	return "[e]dit [d]elete"
}

type taskItemDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newTaskItemDelegate() taskItemDelegate {
	return taskItemDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d taskItemDelegate) Height() int  { return 2 }
func (d taskItemDelegate) Spacing() int { return 0 }
func (d taskItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d taskItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "\n")
		return
	}
	it, ok := item.(taskItem)
	if !ok {
		fmt.Fprint(w, "\n")
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	right := it.affordances()
	title := it.task.Title
	if right != "" {
		avail := contentW - xansi.StringWidth(right) - 3
		title = truncateText(title, avail)
		gap := contentW - 2 - xansi.StringWidth(title) - xansi.StringWidth(right)
		if gap < 1 {
			gap = 1
		}
		title = title + strings.Repeat(" ", gap) + right
	}
	top := fitWidth("  "+title, contentW)

	var meta []string
	if it.ownedByOther {
		meta = append(meta, styleForeign().Render(foreignMarker))
	}
	if desc := firstLine(it.task.Description); desc != "" {
		meta = append(meta, styleMuted().Render(desc))
	}
	bottom := fitWidth("    "+strings.Join(meta, styleMuted().Render(" · ")), contentW)

	fmt.Fprint(w, style.Render(top)+"\n"+bottom)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func newTaskList() list.Model {
	l := list.New(nil, newTaskItemDelegate(), 0, 0)
	l.Title = "Tasks"
	// Chrome (header, footer, flash line) is drawn by the dashboard.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("task", "tasks")

	up := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(up, "ctrl+p")...)
	down := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(down, "ctrl+n")...)
	return l
}
