package fakeapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/identity"
	"taskdash/internal/model"
)

func do(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLogin_IssuesDecodableToken(t *testing.T) {
	s := New([]byte("secret"))

	rec := do(t, s, http.MethodPost, "/api/auth/register", "", `{"email":"a@example.com","password":"pw","role":"admin"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/auth/register", "", `{"email":"A@example.com","password":"pw"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/auth/login", "", `{"email":"a@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	id, err := identity.Decode(out.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, id.Role)
	assert.NotEmpty(t, id.UserID)

	rec = do(t, s, http.MethodPost, "/api/auth/login", "", `{"email":"a@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	s := New(nil)
	rec := do(t, s, http.MethodPost, "/api/auth/register", "", `{"email":"a@example.com","password":"pw","role":"root"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTasks_RawHeaderOnly(t *testing.T) {
	s := New([]byte("secret"))
	tok, err := s.Token("u1", model.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/api/tasks", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/api/tasks", "Bearer "+tok, "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/tasks", tok, "").Code)
}

func TestTasks_ExpiredTokenRejected(t *testing.T) {
	s := New([]byte("secret"))
	base := time.Unix(1_700_000_000, 0)
	s.Now = func() time.Time { return base }
	tok, err := s.Token("u1", model.RoleUser)
	require.NoError(t, err)

	s.Now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/api/tasks", tok, "").Code)
}

func TestTasks_OwnershipScoping(t *testing.T) {
	s := New([]byte("secret"))
	mine := s.AddTask("u1", "mine", "")
	theirs := s.AddTask("u2", "theirs", "")

	userTok, err := s.Token("u1", model.RoleUser)
	require.NoError(t, err)
	adminTok, err := s.Token("root", model.RoleAdmin)
	require.NoError(t, err)

	var list []model.Task
	rec := do(t, s, http.MethodGet, "/api/tasks", userTok, "")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	rec = do(t, s, http.MethodGet, "/api/tasks", adminTok, "")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 2)

	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodPut, "/api/tasks/"+theirs.ID, userTok, `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodDelete, "/api/tasks/"+theirs.ID, userTok, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/tasks/missing", userTok, "").Code)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPut, "/api/tasks/"+theirs.ID, adminTok, `{"title":"renamed"}`).Code)
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/tasks/"+theirs.ID, adminTok, "").Code)
	assert.Len(t, s.Tasks(), 1)
}

func TestCreate_AssignsIDAndOwner(t *testing.T) {
	s := New([]byte("secret"))
	tok, err := s.Token("u1", model.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/tasks", tok, `{"title":"  "}`).Code)

	rec := do(t, s, http.MethodPost, "/api/tasks", tok, `{"title":"A","description":"d"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "u1", created.OwnerID)
	assert.Equal(t, "A", created.Title)
}

func TestFailNext_InjectsOnce(t *testing.T) {
	s := New([]byte("secret"))
	tok, err := s.Token("u1", model.RoleUser)
	require.NoError(t, err)

	s.FailNext(RouteList, http.StatusInternalServerError)
	assert.Equal(t, http.StatusInternalServerError, do(t, s, http.MethodGet, "/api/tasks", tok, "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/tasks", tok, "").Code)
	assert.Equal(t, 2, s.Calls(RouteList))
	assert.Equal(t, 0, s.Calls(RouteDelete))
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s := New([]byte("secret"))
	ctx, cancel := context.WithCancel(context.Background())

	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0", func(a net.Addr) { addrCh <- a }) }()

	addr := <-addrCh
	resp, err := http.Post("http://"+addr.String()+"/api/auth/register", "application/json",
		strings.NewReader(`{"email":"a@example.com","password":"pw"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
