package ports

import (
	"context"

	"github.com/taskdeck/task-system/internal/core/domain"
)

// CreateTaskInput carries the data needed to create a task. The owner comes
// from the authenticated caller, never from the payload.
type CreateTaskInput struct {
	Title       string
	Description string
}

// ListTasksResult is returned by GetTasks.
type ListTasksResult struct {
	Items      []*domain.Task `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// TaskService defines the ownership-scoped task operations. userID is a
// mandatory parameter on every method so that forgetting the authenticated
// identity is a compile error, not a data leak.
type TaskService interface {
	GetTasks(ctx context.Context, filter ListTasksFilter, userID string) (*ListTasksResult, error)
	GetTaskByID(ctx context.Context, id, userID string) (*domain.Task, error)
	CreateTask(ctx context.Context, input CreateTaskInput, userID string) (*domain.Task, error)
	// DeleteTask fails with domain.ErrTaskNotFound when no document matched
	// (id, userID); it completes silently otherwise.
	DeleteTask(ctx context.Context, id, userID string) error
	// UpdateTaskStatus assumes status has already passed admission
	// (domain.ParseStatus); domain membership is not re-checked here.
	UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus, userID string) (*domain.Task, error)
}
