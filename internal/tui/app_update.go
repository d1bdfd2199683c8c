package tui

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdash/internal/perm"
	"taskdash/internal/session"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == viewDashboard {
			m.dash.resize(m.width, m.height)
		}
		return m, nil

	case flashDoneMsg:
		// A newer flash owns the line; only its own timer may clear it.
		if msg.seq == m.flashSeq {
			m.flashText = ""
			m.flashKind = flashInfo
		}
		return m, nil

	case redirectMsg:
		if msg.seq != m.redirectSeq {
			return m, nil
		}
		switch msg.to {
		case viewDashboard:
			return m, m.enterDashboard()
		case viewLogin:
			m.toLogin("")
		}
		return m, nil

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case registerDoneMsg:
		return m.handleRegisterDone(msg)

	case tasksLoadedMsg:
		return m.handleTasksLoaded(msg)

	case deleteDoneMsg:
		return m.handleDeleteDone(msg)

	case formSavedMsg:
		return m.handleFormSaved(msg)

	case formCloseMsg:
		if !m.currentDashboard(msg.dashSeq) || m.dash.form == nil || m.dash.form.id != msg.formID {
			return m, nil
		}
		return m.closeSavedForm()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.saveState()
			return m, tea.Quit
		}
		switch m.view {
		case viewLogin:
			return m.updateLoginKeys(msg)
		case viewRegister:
			return m.updateRegisterKeys(msg)
		case viewDashboard:
			return m.updateDashboardKeys(msg)
		}
	}
	return m, nil
}

func (m appModel) updateLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+r" && !m.login.done {
		m.view = viewRegister
		m.register = newRegisterModel()
		m.register.email.SetValue(m.login.email.Value())
		return m, nil
	}
	var (
		submit bool
		cmd    tea.Cmd
	)
	m.login, submit, cmd = m.login.Update(msg)
	if !submit {
		return m, cmd
	}
	email := strings.TrimSpace(m.login.email.Value())
	m.login.submitting = true
	m.login.errText = ""
	m.login.status = ""
	return m, m.loginCmd(email, m.login.password.Value())
}

func (m appModel) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if m.view != viewLogin {
		return m, nil
	}
	m.login.submitting = false
	if msg.err != nil {
		m.log.Info("login failed", "err", msg.err)
		if !errors.Is(msg.err, session.ErrInvalidLogin) {
			m.log.Warn("login could not store credential", "err", msg.err)
		}
		m.login.errText = loginMsgFailed
		return m, nil
	}
	m.log.Info("logged in", "user", msg.identity.UserID, "role", msg.identity.Role)
	m.login.done = true
	m.login.status = loginMsgOK
	m.saveState()
	return m, m.redirect(m.timing.LoginRedirect, viewDashboard)
}

func (m appModel) updateRegisterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" && !m.register.submitting {
		m.toLogin("")
		return m, nil
	}
	var (
		submit bool
		cmd    tea.Cmd
	)
	m.register, submit, cmd = m.register.Update(msg)
	if !submit {
		return m, cmd
	}
	email := strings.TrimSpace(m.register.email.Value())
	m.register.submitting = true
	m.register.errText = ""
	return m, m.registerCmd(email, m.register.password.Value(), m.register.role)
}

func (m appModel) handleRegisterDone(msg registerDoneMsg) (tea.Model, tea.Cmd) {
	if m.view != viewRegister {
		return m, nil
	}
	m.register.submitting = false
	if msg.err != nil {
		m.log.Info("register failed", "err", msg.err)
		m.register.errText = registerMsgFailed
		return m, nil
	}
	m.register.done = true
	m.register.status = registerMsgOK
	m.login.email.SetValue(msg.email)
	return m, m.redirect(m.timing.RegisterRedirect, viewLogin)
}

func (m appModel) handleTasksLoaded(msg tasksLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.currentDashboard(msg.dashSeq) {
		return m, nil
	}
	if msg.release != "" {
		delete(m.dash.busy, msg.release)
	}
	if msg.err != nil {
		m.log.Warn("list tasks", "err", msg.err)
		if m.endSession(msg.err) {
			return m, nil
		}
		// Keep whatever was shown before; only a successful list replaces it.
		m.dash.state = stateReady
		m.dash.rebuild()
		return m, m.showFlash(msgLoadFailed, flashError)
	}
	m.dash.setTasks(msg.tasks)
	if m.selectAfterLoad != "" {
		m.dash.selectID(m.selectAfterLoad)
		m.selectAfterLoad = ""
	}
	return m, nil
}

func (m appModel) handleDeleteDone(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	if !m.currentDashboard(msg.dashSeq) {
		return m, nil
	}
	if msg.err != nil {
		m.log.Warn("delete task", "id", msg.taskID, "err", msg.err)
		if m.endSession(msg.err) {
			return m, nil
		}
		return m, tea.Batch(m.showFlash(msgDeleteFailed, flashError), m.fetchTasks(msg.taskID))
	}
	return m, tea.Batch(m.showFlash(msgDeleteOK, flashInfo), m.fetchTasks(msg.taskID))
}

func (m appModel) handleFormSaved(msg formSavedMsg) (tea.Model, tea.Cmd) {
	if !m.currentDashboard(msg.dashSeq) {
		return m, nil
	}
	f := m.dash.form
	current := f != nil && f.id == msg.formID
	if msg.err != nil {
		m.log.Warn("save task", "id", msg.editingID, "err", msg.err)
		if m.endSession(msg.err) {
			return m, nil
		}
		if !current {
			// Form was dismissed while the save was in flight.
			return m, tea.Batch(m.showFlash(formMsgSaveFailed, flashError), m.fetchTasks(msg.editingID))
		}
		f.finishSubmit(msg.err)
		return m, m.fetchTasks(msg.editingID)
	}
	if !current {
		// Form was dismissed while the save was in flight.
		return m, tea.Batch(m.showFlash(savedFlash(msg.editingID), flashInfo), m.fetchTasks(msg.editingID))
	}
	f.finishSubmit(nil)
	id, seq := f.id, m.dashSeq
	return m, tea.Tick(m.timing.FormClose, func(time.Time) tea.Msg { return formCloseMsg{dashSeq: seq, formID: id} })
}

// currentDashboard reports whether a result issued under seq belongs to the
// dashboard on screen.
func (m appModel) currentDashboard(seq int) bool {
	return m.view == viewDashboard && seq == m.dashSeq
}

func savedFlash(editingID string) string {
	if editingID != "" {
		return msgUpdateOK
	}
	return msgCreateOK
}

// closeSavedForm dismisses a successfully saved form, then refetches.
func (m appModel) closeSavedForm() (tea.Model, tea.Cmd) {
	release := m.dash.form.editingID
	m.dash.closeModal()
	return m, tea.Batch(m.showFlash(savedFlash(release), flashInfo), m.fetchTasks(release))
}

func (m appModel) updateDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.dash.modal {
	case modalTaskForm:
		return m.updateFormKeys(msg)
	case modalConfirmDelete:
		return m.updateConfirmKeys(msg)
	case modalDetail:
		switch msg.String() {
		case "esc", "q", "?", "enter":
			m.dash.closeModal()
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.saveState()
		return m, tea.Quit
	case "r":
		return m, m.fetchTasks("")
	case "L":
		m.saveState()
		if err := m.guard.Logout(m.ctx); err != nil {
			m.log.Warn("logout", "err", err)
		}
		m.toLogin(msgLoggedOut)
		return m, nil
	case "n":
		if m.dash.state != stateReady {
			return m, nil
		}
		m.dash.openForm(nil)
		return m, nil
	case "e", "enter":
		it, ok := m.dash.selected()
		if !ok {
			return m, nil
		}
		if !it.canManage {
			return m, m.showFlash(msgNotPermitted, flashError)
		}
		if m.dash.busy[it.task.ID] {
			return m, m.showFlash(msgBusy, flashError)
		}
		t := it.task
		m.dash.openForm(&t)
		return m, nil
	case "d", "delete":
		it, ok := m.dash.selected()
		if !ok {
			return m, m.showFlash(msgNothingPicked, flashError)
		}
		if !it.canManage {
			return m, m.showFlash(msgNotPermitted, flashError)
		}
		if m.dash.busy[it.task.ID] {
			return m, m.showFlash(msgBusy, flashError)
		}
		m.dash.modal = modalConfirmDelete
		m.dash.confirmTask = it.task
		m.dash.confirmFocus = confirmFocusCancel
		return m, nil
	case "?":
		it, ok := m.dash.selected()
		if !ok {
			return m, nil
		}
		m.dash.modal = modalDetail
		m.dash.detailTask = it.task
		return m, nil
	}

	var cmd tea.Cmd
	m.dash.list, cmd = m.dash.list.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n", "ctrl+g":
		m.dash.closeModal()
		return m, nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.dash.confirmFocus == confirmFocusConfirm {
			m.dash.confirmFocus = confirmFocusCancel
		} else {
			m.dash.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "enter":
		if m.dash.confirmFocus != confirmFocusConfirm {
			m.dash.closeModal()
			return m, nil
		}
	case "y":
	default:
		return m, nil
	}

	t := m.dash.confirmTask
	m.dash.closeModal()
	// Re-check against the current identity; the row may have changed under the modal.
	if !perm.CanManage(m.dash.identity, t) {
		return m, m.showFlash(msgNotPermitted, flashError)
	}
	if m.dash.busy[t.ID] {
		return m, m.showFlash(msgBusy, flashError)
	}
	m.dash.setBusy(t.ID, true)
	m.log.Debug("delete task", "id", t.ID)
	return m, m.deleteTask(t.ID)
}

func (m appModel) updateFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.dash.form
	if f == nil {
		m.dash.closeModal()
		return m, nil
	}
	next, action, cmd := f.Update(msg)
	*f = next
	switch action {
	case formActionCancel:
		if f.saved {
			return m.closeSavedForm()
		}
		m.dash.closeModal()
		return m, nil
	case formActionSubmit:
		if !f.beginSubmit() {
			return m, nil
		}
		m.dash.setBusy(f.editingID, true)
		return m, m.saveTask(f.id, f.editingID, f.input())
	}
	return m, cmd
}
