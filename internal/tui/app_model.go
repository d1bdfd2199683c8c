package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdash/internal/api"
	"taskdash/internal/model"
	"taskdash/internal/session"
	"taskdash/internal/store"
)

const (
	msgLoadFailed    = "Failed to load tasks. Please try again later."
	msgDeleteOK      = "Task deleted successfully."
	msgDeleteFailed  = "Failed to delete task."
	msgCreateOK      = "Task created successfully."
	msgUpdateOK      = "Task updated successfully."
	msgBusy          = "Busy: wait for the current change to finish."
	msgSessionEnded  = "Your session has expired. Please log in again."
	msgLoggedOut     = "Logged out."
	msgNotPermitted  = "You can only change your own tasks."
	msgNothingPicked = "No task selected."
)

type appModel struct {
	ctx    context.Context
	opts   Options
	guard  session.Guard
	log    *slog.Logger
	timing Timing

	width  int
	height int

	view        view
	redirectSeq int
	// dashSeq identifies the current dashboard. Results issued by an
	// earlier one are dropped.
	dashSeq int

	flashText string
	flashKind flashKind
	flashSeq  int

	login    loginModel
	register registerModel
	dash     dashboardModel

	// selectAfterLoad is restored from the saved TUI state on the first list.
	selectAfterLoad string

	initCmd tea.Cmd
}

func newAppModel(ctx context.Context, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := opts.Logger
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	m := appModel{
		ctx:    ctx,
		opts:   opts,
		guard:  session.Guard{Store: opts.Creds},
		log:    lg,
		timing: opts.Timing.withDefaults(),
		view:   viewLogin,
	}

	var st store.TUIState
	if opts.State != nil {
		if loaded, err := opts.State.LoadTUIState(); err == nil && loaded != nil {
			st = *loaded
		} else if err != nil {
			lg.Warn("load tui state", "err", err)
		}
	}
	m.selectAfterLoad = st.SelectedTaskID
	m.login = newLoginModel(st.LastEmail)
	m.register = newRegisterModel()

	if m.guard.Present(ctx) {
		m.initCmd = m.enterDashboard()
	}
	return m
}

func (m appModel) Init() tea.Cmd { return m.initCmd }

// enterDashboard derives the identity from the stored credential and starts
// the first load. Without a usable credential it lands on login.
func (m *appModel) enterDashboard() tea.Cmd {
	id, err := m.guard.Require(m.ctx)
	if err != nil {
		m.log.Info("dashboard requires session", "err", err)
		m.toLogin("")
		return nil
	}
	m.view = viewDashboard
	m.dashSeq++
	m.clearFlash()
	m.dash = newDashboard(id)
	m.dash.resize(m.width, m.height)
	return m.fetchTasks("")
}

func (m *appModel) toLogin(status string) {
	m.view = viewLogin
	m.redirectSeq++
	m.dashSeq++
	m.clearFlash()
	m.dash = dashboardModel{}
	m.login.reset()
	m.login.status = status
	m.login.focusFirstEmpty()
}

// endSession clears the credential when an authorization failure is fatal.
func (m *appModel) endSession(err error) bool {
	if !m.opts.StrictAuth || !errors.Is(err, api.ErrNotAuthorized) {
		return false
	}
	if cerr := m.guard.Logout(m.ctx); cerr != nil {
		m.log.Warn("clear credential", "err", cerr)
	}
	m.toLogin(msgSessionEnded)
	return true
}

func (m *appModel) showFlash(text string, kind flashKind) tea.Cmd {
	m.flashSeq++
	seq := m.flashSeq
	m.flashText = text
	m.flashKind = kind
	return tea.Tick(m.timing.Flash, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

func (m *appModel) clearFlash() {
	m.flashSeq++
	m.flashText = ""
	m.flashKind = flashInfo
}

func (m *appModel) saveState() {
	if m.opts.State == nil {
		return
	}
	st := store.TUIState{
		LastEmail:      strings.TrimSpace(m.login.email.Value()),
		SelectedTaskID: m.selectAfterLoad,
	}
	if m.view == viewDashboard {
		if it, ok := m.dash.selected(); ok {
			st.SelectedTaskID = it.task.ID
		}
	}
	if err := m.opts.State.SaveTUIState(&st); err != nil {
		m.log.Warn("save tui state", "err", err)
	}
}

func (m appModel) fetchTasks(release string) tea.Cmd {
	ctx, svc, seq := m.ctx, m.opts.Tasks, m.dashSeq
	return func() tea.Msg {
		tasks, err := svc.List(ctx)
		return tasksLoadedMsg{dashSeq: seq, tasks: tasks, err: err, release: release}
	}
}

func (m appModel) deleteTask(id string) tea.Cmd {
	ctx, svc, seq := m.ctx, m.opts.Tasks, m.dashSeq
	return func() tea.Msg {
		return deleteDoneMsg{dashSeq: seq, taskID: id, err: svc.Delete(ctx, id)}
	}
}

func (m appModel) saveTask(formID int, editingID string, in model.TaskInput) tea.Cmd {
	ctx, svc, seq := m.ctx, m.opts.Tasks, m.dashSeq
	return func() tea.Msg {
		var (
			t   model.Task
			err error
		)
		if editingID != "" {
			t, err = svc.Update(ctx, editingID, in)
		} else {
			t, err = svc.Create(ctx, in)
		}
		return formSavedMsg{dashSeq: seq, formID: formID, editingID: editingID, task: t, err: err}
	}
}

func (m appModel) loginCmd(email, password string) tea.Cmd {
	ctx, guard, auth := m.ctx, m.guard, m.opts.Auth
	return func() tea.Msg {
		id, err := guard.Login(ctx, auth, email, password)
		return loginDoneMsg{identity: id, email: email, err: err}
	}
}

func (m appModel) registerCmd(email, password string, role model.Role) tea.Cmd {
	ctx, auth := m.ctx, m.opts.Auth
	return func() tea.Msg {
		return registerDoneMsg{email: email, err: auth.Register(ctx, email, password, role)}
	}
}

func (m *appModel) redirect(after time.Duration, to view) tea.Cmd {
	m.redirectSeq++
	seq := m.redirectSeq
	return tea.Tick(after, func(time.Time) tea.Msg { return redirectMsg{seq: seq, to: to} })
}
