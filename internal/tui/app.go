// Package tui is the interactive terminal client: login, registration and
// the task dashboard with its edit form.
package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdash/internal/model"
	"taskdash/internal/store"
)

// TaskService is the remote task repository.
type TaskService interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, in model.TaskInput) (model.Task, error)
	Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

// AuthService issues tokens and creates accounts.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string, role model.Role) error
}

// Timing holds the UI delays. Zero values fall back to the defaults.
type Timing struct {
	Flash            time.Duration
	FormClose        time.Duration
	LoginRedirect    time.Duration
	RegisterRedirect time.Duration
}

func (t Timing) withDefaults() Timing {
	if t.Flash <= 0 {
		t.Flash = 3 * time.Second
	}
	if t.FormClose <= 0 {
		t.FormClose = 2 * time.Second
	}
	if t.LoginRedirect <= 0 {
		t.LoginRedirect = 1500 * time.Millisecond
	}
	if t.RegisterRedirect <= 0 {
		t.RegisterRedirect = 2 * time.Second
	}
	return t
}

type Options struct {
	Tasks TaskService
	Auth  AuthService
	Creds store.CredentialStore

	// State, when set, remembers the last email and selected task.
	State *store.Store

	Timing Timing
	// StrictAuth sends the user back to login on any 401/403.
	StrictAuth bool
	Logger     *slog.Logger
}

// Run blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
