// Package security implements the password hashing primitive used by the
// credential core. Digests are produced with bcrypt over the salted
// plaintext, so verification is adaptive and constant-time rather than a
// plain recompute-and-compare.
package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/task-system/internal/core/domain"
)

// BcryptHasher hashes and verifies passwords with a per-user salt on top of
// bcrypt's own embedded salt. The per-user salt keeps the stored credential a
// (username, digest, salt) triple.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given work factor. A cost outside
// bcrypt's valid range falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash derives a digest from plaintext and salt. Empty plaintext or salt is
// malformed input, not a failed verification.
func (h *BcryptHasher) Hash(plaintext, salt string) (string, error) {
	if plaintext == "" || salt == "" {
		return "", fmt.Errorf("hash password: %w", domain.ErrInvalidInput)
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext+salt), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify recomputes the salted candidate against the stored digest. A
// mismatch is (false, nil); only malformed input yields an error.
func (h *BcryptHasher) Verify(candidate, salt, digest string) (bool, error) {
	if candidate == "" || salt == "" || digest == "" {
		return false, fmt.Errorf("verify password: %w", domain.ErrInvalidInput)
	}
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(candidate+salt))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	// Anything else means the stored digest is not a bcrypt hash at all.
	return false, fmt.Errorf("verify password: %w", domain.ErrInvalidInput)
}
