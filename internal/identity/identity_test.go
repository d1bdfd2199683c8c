package identity

import (
	"testing"
	"time"

	"taskdash/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestDecode_ValidToken(t *testing.T) {
	tok := sign(t, jwt.MapClaims{"id": "u1", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()})

	id, err := Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{UserID: "u1", Role: model.RoleAdmin}, id)
}

func TestDecode_FallsBackToSubject(t *testing.T) {
	tok := sign(t, jwt.MapClaims{"sub": "u9", "role": "user"})

	id, err := Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "u9", id.UserID)
	assert.Equal(t, model.RoleUser, id.Role)
}

func TestDecode_ExpiredTokenStillDecodes(t *testing.T) {
	tok := sign(t, jwt.MapClaims{"id": "u1", "role": "user", "exp": time.Now().Add(-time.Hour).Unix()})

	_, err := Decode(tok)
	require.NoError(t, err)

	c, err := ParseClaims(tok)
	require.NoError(t, err)
	exp, ok := c.Expiry()
	require.True(t, ok)
	assert.True(t, exp.Before(time.Now()))
}

func TestDecode_FailsClosed(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"two segments":  "abc.def",
		"bad base64":    "a.!!!.c",
		"missing role":  sign(t, jwt.MapClaims{"id": "u1"}),
		"unknown role":  sign(t, jwt.MapClaims{"id": "u1", "role": "root"}),
		"missing id":    sign(t, jwt.MapClaims{"role": "user"}),
		"blank id":      sign(t, jwt.MapClaims{"id": "  ", "role": "user"}),
		"non-string id": sign(t, jwt.MapClaims{"id": 42, "role": "user"}),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			id, err := Decode(tok)
			require.ErrorIs(t, err, ErrMalformedCredential)
			assert.Equal(t, model.Identity{}, id, "never a partial identity")
		})
	}
}
