package ports

import (
	"context"

	"github.com/taskdeck/task-system/internal/core/domain"
)

// UserRepository defines persistence operations for user credentials.
// Implementations must surface a duplicate username as domain.ErrUserExists
// so the auth service can distinguish a conflict from a generic failure.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
