package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFetchFailed matches every failed call: transport, non-2xx, or bad body.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNotAuthorized additionally matches 401 and 403 responses.
	ErrNotAuthorized = errors.New("not authorized")
)

// Error describes one failed call to the task service.
// Status is 0 when no response was received.
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Op + " failed"
	if e.Status != 0 {
		msg += fmt.Sprintf(": %d %s", e.Status, http.StatusText(e.Status))
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrFetchFailed:
		return true
	case ErrNotAuthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}
