package ports

import (
	"context"

	"github.com/taskdeck/task-system/internal/core/domain"
)

// AuthService implements signup and credential validation.
type AuthService interface {
	// SignUp persists a new user with a freshly generated salt and hashed
	// password. A taken username fails with domain.ErrUserExists; any other
	// persistence failure is wrapped in domain.ErrInternal.
	SignUp(ctx context.Context, username, password string) (*domain.User, error)

	// ValidateUserPassword resolves a login attempt. Both "no such user" and
	// "wrong password" return (nil, nil): failed authentication is an
	// expected outcome, not an error. The two cases are indistinguishable to
	// the caller so response shape cannot be used to enumerate usernames.
	ValidateUserPassword(ctx context.Context, username, password string) (*domain.User, error)
}
