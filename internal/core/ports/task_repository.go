package ports

import (
	"context"

	"github.com/taskdeck/task-system/internal/core/domain"
)

// ListTasksFilter carries all query parameters for listing tasks.
// UserID is always set by the service layer; a repository must never run an
// unscoped list.
type ListTasksFilter struct {
	UserID string            // mandatory: owner scope
	Status domain.TaskStatus // optional: filter by status (already admitted)
	Search string            // optional: case-insensitive match on title or description
	Page   int               // 1-based
	Limit  int               // max rows per page (capped at 100 by service)
}

// TaskRepository defines persistence operations for tasks. Every lookup and
// mutation is scoped by (id, userID) so ownership is enforced at the query
// level, not by post-filtering.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// FindByID retrieves a task matching both id and userID, returning
	// domain.ErrTaskNotFound when no such row exists for this owner.
	FindByID(ctx context.Context, id, userID string) (*domain.Task, error)
	// Delete removes the task matching (id, userID) and returns the number
	// of documents removed.
	Delete(ctx context.Context, id, userID string) (int64, error)
	// UpdateStatus sets the status of the task matching (id, userID).
	UpdateStatus(ctx context.Context, id, userID string, status domain.TaskStatus) error
	// List returns a page of tasks matching filter and the total count.
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, int64, error)
}
