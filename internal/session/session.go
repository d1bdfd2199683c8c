// Package session gates protected views on the stored credential.
package session

import (
	"context"
	"errors"
	"fmt"

	"taskdash/internal/identity"
	"taskdash/internal/model"
	"taskdash/internal/store"
)

var (
	// ErrNoSession means the caller must go back to login.
	ErrNoSession = errors.New("not logged in")
	// ErrInvalidLogin is returned for every failed login; the store is untouched.
	ErrInvalidLogin = errors.New("invalid email or password")
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type Guard struct {
	Store store.CredentialStore
}

// Present reports whether any credential is stored. It does not decode it.
func (g Guard) Present(ctx context.Context) bool {
	_, ok, err := g.Store.Get(ctx)
	return err == nil && ok
}

// Require derives the identity from the stored credential. A credential that
// does not decode is cleared before returning ErrNoSession.
func (g Guard) Require(ctx context.Context) (model.Identity, error) {
	tok, ok, err := g.Store.Get(ctx)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: read credential: %v", ErrNoSession, err)
	}
	if !ok {
		return model.Identity{}, ErrNoSession
	}
	id, err := identity.Decode(tok)
	if err != nil {
		if cerr := g.Store.Clear(ctx); cerr != nil {
			return model.Identity{}, fmt.Errorf("%w: %w (clear: %v)", ErrNoSession, err, cerr)
		}
		return model.Identity{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	return id, nil
}

// Login stores the issued token only if it decodes to an identity.
func (g Guard) Login(ctx context.Context, auth Authenticator, email, password string) (model.Identity, error) {
	tok, err := auth.Login(ctx, email, password)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %w", ErrInvalidLogin, err)
	}
	id, err := identity.Decode(tok)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %w", ErrInvalidLogin, err)
	}
	if err := g.Store.Set(ctx, tok); err != nil {
		return model.Identity{}, fmt.Errorf("store credential: %w", err)
	}
	return id, nil
}

func (g Guard) Logout(ctx context.Context) error {
	return g.Store.Clear(ctx)
}
