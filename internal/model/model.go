package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts the two roles the service issues, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Identity is derived from the stored credential on every protected entry.
// It is never persisted on its own.
type Identity struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

type Task struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"userId"`
}

// UnmarshalJSON accepts both `_id` and `id` for the task id.
func (t *Task) UnmarshalJSON(b []byte) error {
	var w struct {
		MongoID     string `json:"_id"`
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		OwnerID     string `json:"userId"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	t.ID = w.MongoID
	if t.ID == "" {
		t.ID = w.ID
	}
	t.Title = w.Title
	t.Description = w.Description
	t.OwnerID = w.OwnerID
	return nil
}

var ErrValidationFailed = errors.New("validation failed")

// TaskInput is the mutable subset of a task; id and owner are server-assigned.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	return nil
}
