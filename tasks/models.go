// Package tasks owns the task resource: its model, its CRUD operations, and
// the ownership rule that a task may only be mutated by the user that created
// it. It follows the same handler/service split as the auth module.
package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a task.
type Status string

const (
	// StatusPending is the default state of a freshly created task.
	StatusPending Status = "pending"
	// StatusCompleted marks a task as done.
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the two allowed status values.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Task represents a task record. UserID is the owner, set at creation and
// never reassigned.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	UserID      int       `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
