package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"

	"taskdash/internal/model"
	"taskdash/internal/store"
)

type fakeTasks struct {
	mu sync.Mutex

	tasks  []model.Task
	owner  string
	nextID int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
}

func (f *fakeTasks) List(context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Task(nil), f.tasks...), nil
}

func (f *fakeTasks) Create(_ context.Context, in model.TaskInput) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return model.Task{}, f.createErr
	}
	f.nextID++
	t := model.Task{ID: fmt.Sprintf("new-%d", f.nextID), Title: in.Title, Description: in.Description, OwnerID: f.owner}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeTasks) Update(_ context.Context, id string, in model.TaskInput) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return model.Task{}, f.updateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Title = in.Title
			f.tasks[i].Description = in.Description
			return f.tasks[i], nil
		}
	}
	return model.Task{}, errors.New("404")
}

func (f *fakeTasks) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return errors.New("404")
}

type fakeAuth struct {
	token       string
	loginErr    error
	registerErr error

	registered []string
}

func (a *fakeAuth) Login(context.Context, string, string) (string, error) {
	return a.token, a.loginErr
}

func (a *fakeAuth) Register(_ context.Context, email, _ string, role model.Role) error {
	if a.registerErr != nil {
		return a.registerErr
	}
	a.registered = append(a.registered, email+":"+string(role))
	return nil
}

func testToken(t *testing.T, uid string, role model.Role) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": uid, "role": string(role)}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func storeWith(token string) *store.MemoryCredentials {
	return store.NewMemoryCredentials(token)
}

func fastTiming() Timing {
	return Timing{
		Flash:            time.Millisecond,
		FormClose:        time.Millisecond,
		LoginRedirect:    time.Millisecond,
		RegisterRedirect: time.Millisecond,
	}
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "t1", Title: "mine", OwnerID: "u1"},
		{ID: "t2", Title: "theirs", OwnerID: "u2"},
		{ID: "t3", Title: "also mine", Description: "with **notes**", OwnerID: "u1"},
	}
}

// newTestApp builds an app whose credential store already holds a token for
// uid/role.
func newTestApp(t *testing.T, uid string, role model.Role, svc *fakeTasks) (appModel, *store.MemoryCredentials) {
	t.Helper()
	creds := store.NewMemoryCredentials(testToken(t, uid, role))
	m := newAppModel(context.Background(), Options{
		Tasks:  svc,
		Auth:   &fakeAuth{},
		Creds:  creds,
		Timing: fastTiming(),
	})
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return mm.(appModel), creds
}

// loadedApp runs Init's list call and applies it.
func loadedApp(t *testing.T, uid string, role model.Role, svc *fakeTasks) (appModel, *store.MemoryCredentials) {
	t.Helper()
	m, creds := newTestApp(t, uid, role, svc)
	if m.view != viewDashboard {
		t.Fatalf("expected dashboard, got view %v", m.view)
	}
	m = apply(t, m, runCmd(m.Init())...)
	if m.dash.state != stateReady {
		t.Fatalf("expected ready state after load")
	}
	return m, creds
}

// runCmd executes cmd and flattens batches. Only use with fast timings.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if b, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range b {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func apply(t *testing.T, m appModel, msgs ...tea.Msg) appModel {
	t.Helper()
	for _, msg := range msgs {
		mm, _ := m.Update(msg)
		m = mm.(appModel)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m appModel, k string) (appModel, tea.Cmd) {
	t.Helper()
	mm, cmd := m.Update(key(k))
	return mm.(appModel), cmd
}

func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func rowIDs(m appModel) []string {
	var out []string
	for _, it := range m.dash.list.Items() {
		out = append(out, it.(taskItem).task.ID)
	}
	return out
}
