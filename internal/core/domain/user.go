package domain

import (
	"errors"
	"time"
)

var ErrUserExists = errors.New("username already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidInput = errors.New("invalid input")
var ErrInternal = errors.New("internal error")

// PasswordVerifier checks a candidate password against a stored salt+digest pair.
type PasswordVerifier interface {
	Verify(candidate, salt, digest string) (bool, error)
}

// User models a registered account. PasswordHash is always the digest of the
// password supplied at signup combined with Salt; the plaintext is never stored.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidatePassword reports whether candidate matches the user's stored
// credential. It is a pure function of the instance's salt and digest.
func (u *User) ValidatePassword(v PasswordVerifier, candidate string) (bool, error) {
	return v.Verify(candidate, u.Salt, u.PasswordHash)
}
