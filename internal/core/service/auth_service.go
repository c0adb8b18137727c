package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdeck/task-system/internal/core/domain"
	"github.com/taskdeck/task-system/internal/core/ports"
)

const saltBytes = 16

// PasswordHasher is the hashing primitive the auth service depends on.
type PasswordHasher interface {
	Hash(plaintext, salt string) (string, error)
	Verify(candidate, salt, digest string) (bool, error)
}

// AuthService implements signup and credential validation.
type AuthService struct {
	repo   ports.UserRepository
	hasher PasswordHasher
	logger zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hasher PasswordHasher, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, logger: logger}
}

// SignUp creates a new credential record: a fresh random salt, the digest of
// the salted password, and the username. A duplicate username surfaces as
// domain.ErrUserExists; any other persistence failure is wrapped in
// domain.ErrInternal; those are the only two failure outcomes of the write.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("sign up: %w", domain.ErrInvalidInput)
	}

	salt, err := generateSalt()
	if err != nil {
		return nil, fmt.Errorf("sign up: generate salt: %w", err)
	}

	digest, err := s.hasher.Hash(password, salt)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: digest,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		s.logger.Error().Err(err).Str("username", username).Msg("signup persistence failed")
		return nil, fmt.Errorf("%w: sign up: %v", domain.ErrInternal, err)
	}

	s.logger.Info().Str("username", created.Username).Str("user_id", created.ID).Msg("user signed up")
	return created, nil
}

// ValidateUserPassword resolves a login attempt. An unknown username returns
// (nil, nil) without ever invoking the hasher; a wrong password also returns
// (nil, nil). Only malformed input or an infrastructure failure is an error.
func (s *AuthService) ValidateUserPassword(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("validate user password: %w", err)
	}

	ok, err := user.ValidatePassword(s.hasher, password)
	if err != nil {
		return nil, fmt.Errorf("validate user password: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return user, nil
}

// generateSalt returns a random per-user salt encoded as hex.
func generateSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
