// Package fakeapi is an in-memory task service speaking the same wire
// protocol as the production backend. It backs the api/tui tests and the
// dev-server command.
package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"taskdash/internal/model"
)

// Route names used by FailNext and Calls.
const (
	RouteRegister = "register"
	RouteLogin    = "login"
	RouteList     = "list"
	RouteCreate   = "create"
	RouteUpdate   = "update"
	RouteDelete   = "delete"
)

const defaultTokenTTL = time.Hour

type user struct {
	id    string
	email string
	hash  []byte
	role  model.Role
}

// Server holds users and tasks in memory. The zero value is not usable; see New.
type Server struct {
	mu     sync.Mutex
	secret []byte
	users  map[string]*user // by lower-cased email
	tasks  []model.Task     // insertion order
	fail   map[string][]int
	calls  map[string]int

	// TokenTTL controls the exp claim of issued tokens.
	TokenTTL time.Duration
	// Now is overridable for expiry tests.
	Now    func() time.Time
	Logger *slog.Logger

	// BcryptCost defaults to bcrypt.MinCost so tests stay fast.
	BcryptCost int

	router *mux.Router
}

func New(secret []byte) *Server {
	if len(secret) == 0 {
		secret = []byte(uuid.NewString())
	}
	s := &Server{
		secret:     secret,
		users:      map[string]*user{},
		fail:       map[string][]int{},
		calls:      map[string]int{},
		TokenTTL:   defaultTokenTTL,
		Now:        time.Now,
		Logger:     slog.New(slog.DiscardHandler),
		BcryptCost: bcrypt.MinCost,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/auth/register", s.counted(RouteRegister, s.handleRegister)).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.counted(RouteLogin, s.handleLogin)).Methods(http.MethodPost)

	r.HandleFunc("/api/tasks", s.counted(RouteList, s.authed(s.handleList))).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks", s.counted(RouteCreate, s.authed(s.handleCreate))).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/{id}", s.counted(RouteUpdate, s.authed(s.handleUpdate))).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/{id}", s.counted(RouteDelete, s.authed(s.handleDelete))).Methods(http.MethodDelete)
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.router.ServeHTTP(rec, r)
	s.Logger.Debug("fakeapi request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// FailNext makes the next call to route respond with status instead of being
// handled. Multiple calls queue up.
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[route] = append(s.fail[route], status)
}

// Calls reports how many requests reached route (including injected failures).
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) counted(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		var status int
		if q := s.fail[route]; len(q) > 0 {
			status, s.fail[route] = q[0], q[1:]
		}
		s.mu.Unlock()
		if status != 0 {
			writeMessage(w, status, "injected failure")
			return
		}
		next(w, r)
	}
}

type principal struct {
	id   string
	role model.Role
}

type principalHandler func(http.ResponseWriter, *http.Request, principal)

// authed reads the raw Authorization header (no scheme prefix).
func (s *Server) authed(next principalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		if raw == "" {
			writeMessage(w, http.StatusUnauthorized, "no token, authorization denied")
			return
		}
		p, err := s.verify(raw)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "token is not valid")
			return
		}
		next(w, r, p)
	}
}

func (s *Server) verify(raw string) (principal, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.Now))
	if err != nil {
		return principal{}, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return principal{}, errors.New("unexpected claims type")
	}
	id, _ := claims["id"].(string)
	roleRaw, _ := claims["role"].(string)
	role, err := model.ParseRole(roleRaw)
	if id == "" || err != nil {
		return principal{}, errors.New("incomplete claims")
	}
	return principal{id: id, role: role}, nil
}

// Token issues a signed token for the given subject, as login would.
func (s *Server) Token(userID string, role model.Role) (string, error) {
	claims := jwt.MapClaims{
		"id":   userID,
		"role": string(role),
		"iat":  s.Now().Unix(),
		"exp":  s.Now().Add(s.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// AddUser registers a user directly and returns its id.
func (s *Server) AddUser(email, password string, role model.Role) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", errors.New("email and password are required")
	}
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return "", errDuplicateUser
	}
	u := &user{id: uuid.NewString(), email: email, hash: hash, role: role}
	s.users[email] = u
	return u.id, nil
}

var errDuplicateUser = errors.New("user already exists")

// AddTask inserts a task owned by ownerID.
func (s *Server) AddTask(ownerID, title, description string) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Task{ID: uuid.NewString(), Title: title, Description: description, OwnerID: ownerID}
	s.tasks = append(s.tasks, t)
	return t
}

// Tasks returns a snapshot of every stored task.
func (s *Server) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role := model.RoleUser
	if strings.TrimSpace(body.Role) != "" {
		parsed, err := model.ParseRole(body.Role)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid role")
			return
		}
		role = parsed
	}
	if _, err := s.AddUser(body.Email, body.Password, role); err != nil {
		if errors.Is(err, errDuplicateUser) {
			writeMessage(w, http.StatusConflict, "user already exists")
			return
		}
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	writeMessage(w, http.StatusCreated, "user registered successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	u := s.users[strings.ToLower(strings.TrimSpace(body.Email))]
	s.mu.Unlock()
	if u == nil || bcrypt.CompareHashAndPassword(u.hash, []byte(body.Password)) != nil {
		writeMessage(w, http.StatusBadRequest, "invalid credentials")
		return
	}
	tok, err := s.Token(u.id, u.role)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request, p principal) {
	s.mu.Lock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if p.role == model.RoleAdmin || t.OwnerID == p.id {
			out = append(out, t)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func decodeInput(r *http.Request) (model.TaskInput, error) {
	var in model.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return in, err
	}
	return in, in.Validate()
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, p principal) {
	in, err := decodeInput(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "title is required")
		return
	}
	t := s.AddTask(p.id, in.Title, in.Description)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, p principal) {
	in, err := decodeInput(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "title is required")
		return
	}
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "task not found")
		return
	}
	if !canManage(p, s.tasks[i]) {
		writeMessage(w, http.StatusForbidden, "not authorized")
		return
	}
	s.tasks[i].Title = in.Title
	s.tasks[i].Description = in.Description
	writeJSON(w, http.StatusOK, s.tasks[i])
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, p principal) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "task not found")
		return
	}
	if !canManage(p, s.tasks[i]) {
		writeMessage(w, http.StatusForbidden, "not authorized")
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) indexLocked(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func canManage(p principal, t model.Task) bool {
	return p.role == model.RoleAdmin || t.OwnerID == p.id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
