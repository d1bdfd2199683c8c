package tui

import (
	"taskdash/internal/model"
)

type view int

const (
	viewLogin view = iota
	viewRegister
	viewDashboard
)

type modalKind int

const (
	modalNone modalKind = iota
	modalTaskForm
	modalConfirmDelete
	modalDetail
)

type loadState int

const (
	stateLoading loadState = iota
	stateReady
)

type flashKind int

const (
	flashInfo flashKind = iota
	flashError
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

type flashDoneMsg struct{ seq int }

// tasksLoadedMsg carries one List() result. release names the task whose
// busy flag the refetch settles.
type tasksLoadedMsg struct {
	dashSeq int
	tasks   []model.Task
	err     error
	release string
}

// deleteDoneMsg resolves a dashboard delete. Form saves use formSavedMsg.
type deleteDoneMsg struct {
	dashSeq int
	taskID  string
	err     error
}

type formSavedMsg struct {
	dashSeq   int
	formID    int
	editingID string
	task      model.Task
	err       error
}

type formCloseMsg struct {
	dashSeq int
	formID  int
}

type loginDoneMsg struct {
	identity model.Identity
	email    string
	err      error
}

type registerDoneMsg struct {
	email string
	err   error
}

type redirectMsg struct {
	seq int
	to  view
}
