package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "OPEN"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

var ErrTaskNotFound = errors.New("task not found")
var ErrInvalidStatus = errors.New("invalid status")

// ParseStatus normalizes a raw status token (case-insensitive) and validates
// it against the status domain. The rejected literal is carried in the error
// message so clients see exactly what was refused.
func ParseStatus(raw string) (TaskStatus, error) {
	normalized := TaskStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch normalized {
	case StatusOpen, StatusInProgress, StatusDone:
		return normalized, nil
	}
	return "", fmt.Errorf("%q is not a valid status: %w", string(normalized), ErrInvalidStatus)
}

// Task is the core aggregate. UserID references the owning user; it is set
// from the authenticated caller at creation and never reassigned.
type Task struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Status      TaskStatus `json:"status" bson:"status"`
	UserID      string     `json:"user_id" bson:"user_id"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}
