package store

import (
	"context"
	"strings"
	"sync"
)

// TokenKey is the local storage key holding the raw bearer token.
const TokenKey = "token"

// CredentialStore holds at most one opaque bearer token.
// Absence means "logged out".
type CredentialStore interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

var (
	_ CredentialStore = (*Credentials)(nil)
	_ CredentialStore = (*MemoryCredentials)(nil)
)

// Credentials persists the token in LocalStorage so it survives restarts.
type Credentials struct {
	Storage LocalStorage
}

func (c *Credentials) Get(ctx context.Context) (string, bool, error) {
	v, ok, err := c.Storage.GetItem(ctx, TokenKey)
	if err != nil || !ok {
		return "", false, err
	}
	if strings.TrimSpace(v) == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (c *Credentials) Set(ctx context.Context, token string) error {
	return c.Storage.SetItem(ctx, TokenKey, token)
}

func (c *Credentials) Clear(ctx context.Context) error {
	return c.Storage.RemoveItem(ctx, TokenKey)
}

// MemoryCredentials is an in-process CredentialStore, mostly for tests.
type MemoryCredentials struct {
	mu    sync.Mutex
	token string
	set   bool

	// Counters for asserting write paths in tests.
	Sets   int
	Clears int
}

func NewMemoryCredentials(token string) *MemoryCredentials {
	m := &MemoryCredentials{}
	if token != "" {
		m.token = token
		m.set = true
	}
	return m
}

func (m *MemoryCredentials) Get(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.set, nil
}

func (m *MemoryCredentials) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.set = token != ""
	m.Sets++
	return nil
}

func (m *MemoryCredentials) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.set = false
	m.Clears++
	return nil
}
