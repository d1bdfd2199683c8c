package perm

import (
	"strings"

	"taskdash/internal/model"
)

// CanManage reports whether id may see and mutate t.
//
// Rules:
// - Admins can manage every task.
// - Otherwise only the owner can.
//
// This is a presentation guard. The service repeats the check and is authoritative.
func CanManage(id model.Identity, t model.Task) bool {
	if id.Role == model.RoleAdmin {
		return true
	}
	uid := strings.TrimSpace(id.UserID)
	if uid == "" {
		return false
	}
	return t.OwnerID == uid
}

// Visible returns the tasks id may see, preserving order.
func Visible(id model.Identity, tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if CanManage(id, t) {
			out = append(out, t)
		}
	}
	return out
}

// OwnedByOther is true when an admin looks at a task someone else created.
func OwnedByOther(id model.Identity, t model.Task) bool {
	return id.Role == model.RoleAdmin && t.OwnerID != id.UserID
}
