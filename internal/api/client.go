// Package api is the HTTP client for the remote task service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskdash/internal/model"
	"taskdash/internal/store"
)

const maxErrorBody = 4 << 10

// Client talks JSON to the service under BaseURL.
//
// The stored token goes into the Authorization header verbatim, with no
// "Bearer " scheme. The service reads the header raw.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Creds   store.CredentialStore
	Logger  *slog.Logger
}

func New(baseURL string, creds store.CredentialStore) *Client {
	return &Client{BaseURL: baseURL, Creds: creds}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, "list tasks", http.MethodGet, "/api/tasks", true, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Task{}
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, "create task", http.MethodPost, "/api/tasks", true, in, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, "update task", http.MethodPut, taskPath(id), true, in, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, taskPath(id), true, nil, nil)
}

// Login exchanges credentials for a token. It does not touch Creds.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", false, body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", &Error{Op: "login", Err: errors.New("response has no token")}
	}
	return out.Token, nil
}

func (c *Client) Register(ctx context.Context, email, password string, role model.Role) error {
	body := map[string]string{"email": email, "password": password, "role": string(role)}
	return c.do(ctx, "register", http.MethodPost, "/api/auth/register", false, body, nil)
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, path string, auth bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.Creds != nil {
		tok, ok, err := c.Creds.Get(ctx)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("read credential: %w", err)}
		}
		if ok {
			req.Header.Set("Authorization", tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logger().Debug("api request failed", "op", op, "method", method, "path", path, "err", err)
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.logger().Debug("api request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage pulls {"message": "..."} out of an error body, if present.
func errorMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(b) == 0 {
		return ""
	}
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &env) == nil {
		if env.Message != "" {
			return env.Message
		}
		return env.Error
	}
	return ""
}
