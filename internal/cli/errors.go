package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type ownerOnlyError struct {
	userID  string
	ownerID string
	taskID  string
}

func (e ownerOnlyError) Error() string {
	return fmt.Sprintf("permission denied: user %s is not owner %s of task %s", e.userID, e.ownerID, e.taskID)
}

func errOwnerOnly(userID, ownerID, taskID string) error {
	return ownerOnlyError{userID: userID, ownerID: ownerID, taskID: taskID}
}

type abortedError struct{ what string }

func (e abortedError) Error() string { return "aborted: " + e.what }
