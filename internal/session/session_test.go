package session

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/identity"
	"taskdash/internal/model"
	"taskdash/internal/store"
)

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

type stubAuth struct {
	token string
	err   error
	calls int
}

func (s *stubAuth) Login(context.Context, string, string) (string, error) {
	s.calls++
	return s.token, s.err
}

func TestRequire_NoCredential(t *testing.T) {
	creds := store.NewMemoryCredentials("")
	_, err := Guard{Store: creds}.Require(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Zero(t, creds.Clears)
}

func TestRequire_MalformedCredentialIsCleared(t *testing.T) {
	creds := store.NewMemoryCredentials("garbage")
	g := Guard{Store: creds}
	assert.True(t, g.Present(context.Background()))

	_, err := g.Require(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, err, identity.ErrMalformedCredential)

	_, ok, _ := creds.Get(context.Background())
	assert.False(t, ok)
	assert.False(t, g.Present(context.Background()))
}

func TestRequire_Valid(t *testing.T) {
	creds := store.NewMemoryCredentials(token(t, jwt.MapClaims{"id": "u1", "role": "admin"}))
	id, err := Guard{Store: creds}.Require(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Identity{UserID: "u1", Role: model.RoleAdmin}, id)
	assert.Zero(t, creds.Clears)
}

func TestLogin_SuccessStoresIssuedToken(t *testing.T) {
	issued := token(t, jwt.MapClaims{"id": "u1", "role": "user"})
	creds := store.NewMemoryCredentials("")
	auth := &stubAuth{token: issued}

	id, err := Guard{Store: creds}.Login(context.Background(), auth, "a@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)

	got, ok, err := creds.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, issued, got)
}

func TestLogin_FailureLeavesStoreUnchanged(t *testing.T) {
	prev := token(t, jwt.MapClaims{"id": "old", "role": "user"})
	cases := map[string]*stubAuth{
		"rejected":        {err: errors.New("400")},
		"malformed token": {token: "not-a-jwt"},
	}
	for name, auth := range cases {
		t.Run(name, func(t *testing.T) {
			creds := store.NewMemoryCredentials(prev)
			_, err := Guard{Store: creds}.Login(context.Background(), auth, "a@example.com", "bad")
			assert.ErrorIs(t, err, ErrInvalidLogin)

			got, ok, _ := creds.Get(context.Background())
			assert.True(t, ok)
			assert.Equal(t, prev, got)
			assert.Zero(t, creds.Sets)
			assert.Zero(t, creds.Clears)
		})
	}
}

func TestLogout_Clears(t *testing.T) {
	creds := store.NewMemoryCredentials("x")
	require.NoError(t, Guard{Store: creds}.Logout(context.Background()))
	_, ok, _ := creds.Get(context.Background())
	assert.False(t, ok)
}
