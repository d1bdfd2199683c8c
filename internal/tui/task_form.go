package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdash/internal/model"
)

const (
	formMsgTitleRequired = "Title is required."
	formMsgSaveFailed    = "Failed to save task. Please try again."
	formMsgCreated       = "Task created successfully!"
	formMsgUpdated       = "Task updated successfully!"
)

type formFocus int

const (
	formFocusTitle formFocus = iota
	formFocusDescription
	formFocusSave
	formFocusCancel
	formFocusCount
)

type formAction int

const (
	formActionNone formAction = iota
	formActionSubmit
	formActionCancel
)

// taskFormModel edits one task (or a new one). It never calls the service
// itself; the dashboard runs the save and feeds the result back.
type taskFormModel struct {
	id        int
	editingID string

	title       textinput.Model
	description textarea.Model
	focus       formFocus

	saving  bool
	saved   bool
	errText string
	okText  string
}

func newTaskForm(id int, existing *model.Task) taskFormModel {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.Prompt = ""
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Description (markdown)"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetHeight(5)
	ta.CharLimit = 0

	f := taskFormModel{id: id, title: ti, description: ta}
	if existing != nil {
		f.editingID = existing.ID
		f.title.SetValue(existing.Title)
		f.description.SetValue(existing.Description)
	}
	f.setFocus(formFocusTitle)
	return f
}

func (f taskFormModel) editing() bool { return f.editingID != "" }

func (f taskFormModel) input() model.TaskInput {
	return model.TaskInput{
		Title:       strings.TrimSpace(f.title.Value()),
		Description: f.description.Value(),
	}
}

func (f *taskFormModel) setFocus(ff formFocus) {
	f.focus = ff
	f.title.Blur()
	f.description.Blur()
	switch ff {
	case formFocusTitle:
		f.title.Focus()
	case formFocusDescription:
		f.description.Focus()
	}
}

func (f *taskFormModel) setWidth(bodyW int) {
	f.title.Width = bodyW - 3
	f.description.SetWidth(bodyW)
}

// beginSubmit validates and flips into the in-flight state. It reports
// whether a save call should be issued.
func (f *taskFormModel) beginSubmit() bool {
	if f.saving || f.saved {
		return false
	}
	if err := f.input().Validate(); err != nil {
		f.errText = formMsgTitleRequired
		f.setFocus(formFocusTitle)
		return false
	}
	f.errText = ""
	f.saving = true
	return true
}

func (f *taskFormModel) finishSubmit(err error) {
	f.saving = false
	if err != nil {
		f.errText = formMsgSaveFailed
		return
	}
	f.saved = true
	if f.editing() {
		f.okText = formMsgUpdated
	} else {
		f.okText = formMsgCreated
	}
}

// Update handles keys for the form and reports what the dashboard should do.
func (f taskFormModel) Update(msg tea.Msg) (taskFormModel, formAction, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, formActionNone, nil
	}
	switch km.String() {
	case "esc", "ctrl+g":
		return f, formActionCancel, nil
	case "ctrl+s":
		return f, formActionSubmit, nil
	case "tab":
		f.setFocus((f.focus + 1) % formFocusCount)
		return f, formActionNone, nil
	case "shift+tab":
		f.setFocus((f.focus + formFocusCount - 1) % formFocusCount)
		return f, formActionNone, nil
	case "enter":
		switch f.focus {
		case formFocusTitle:
			f.setFocus(formFocusDescription)
			return f, formActionNone, nil
		case formFocusSave:
			return f, formActionSubmit, nil
		case formFocusCancel:
			return f, formActionCancel, nil
		}
	}
	if f.saving || f.saved {
		return f, formActionNone, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case formFocusTitle:
		f.title, cmd = f.title.Update(msg)
		f.errText = ""
	case formFocusDescription:
		f.description, cmd = f.description.Update(msg)
	}
	return f, formActionNone, cmd
}

func (f taskFormModel) View(width int) string {
	bodyW := modalBodyWidth(width)
	f.setWidth(bodyW)

	heading := "New task"
	if f.editing() {
		heading = "Edit task"
	}

	label := func(s string, focused bool) string {
		st := styleMuted()
		if focused {
			st = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
		}
		return st.Render(s)
	}

	btn := lipgloss.NewStyle().Padding(0, 1).Foreground(colorSurfaceFg).Background(colorControlBg)
	btnActive := btn.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	saveLabel := "Save"
	if f.saving {
		saveLabel = "Saving..."
	}
	save := btn.Render(saveLabel)
	if f.focus == formFocusSave && !f.saving {
		save = btnActive.Render(saveLabel)
	}
	cancel := btn.Render("Cancel")
	if f.focus == formFocusCancel {
		cancel = btnActive.Render("Cancel")
	}

	status := ""
	switch {
	case f.okText != "":
		status = styleSuccess().Render(f.okText)
	case f.errText != "":
		status = styleError().Render(f.errText)
	}

	lines := []string{
		label("Title", f.focus == formFocusTitle),
		renderInputLine(bodyW, f.title.View(), f.focus == formFocusTitle),
		"",
		label("Description", f.focus == formFocusDescription),
		f.description.View(),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, save, " ", cancel),
		status,
		styleMuted().Render("tab: next field   ctrl+s: save   esc: cancel"),
	}
	return renderModalBox(width, heading, strings.Join(lines, "\n"))
}
