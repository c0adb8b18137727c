package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/task-system/internal/core/domain"
	"github.com/taskdeck/task-system/internal/core/security"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	createErr error // if set, Create returns this error
	findErr   error // if set, FindByUsername returns this error
	nextID    int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	r.nextID++
	copy.ID = "user-" + strconv.Itoa(r.nextID)
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// fakeHasher is deterministic and records whether Verify was invoked.
type fakeHasher struct {
	verifyCalled bool
	verifyErr    error
}

func (h *fakeHasher) Hash(plaintext, salt string) (string, error) {
	if plaintext == "" || salt == "" {
		return "", domain.ErrInvalidInput
	}
	return "digest(" + plaintext + "+" + salt + ")", nil
}

func (h *fakeHasher) Verify(candidate, salt, digest string) (bool, error) {
	h.verifyCalled = true
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	return digest == "digest("+candidate+"+"+salt+")", nil
}

func newAuthService(repo *stubUserRepo, hasher PasswordHasher) *AuthService {
	return NewAuthService(repo, hasher, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// SignUp
// ---------------------------------------------------------------------------

func TestAuthService_SignUp_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &fakeHasher{})

	user, err := svc.SignUp(context.Background(), "alice", "pass1234")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if user == nil {
		t.Fatalf("expected user, got nil")
	}
	if user.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if user.Salt == "" {
		t.Fatalf("expected a generated salt")
	}
	if user.PasswordHash != "digest(pass1234+"+user.Salt+")" {
		t.Fatalf("digest not derived from password and salt: %q", user.PasswordHash)
	}
}

func TestAuthService_SignUp_FreshSaltPerUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &fakeHasher{})

	a, err := svc.SignUp(context.Background(), "alice", "pass1234")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	b, err := svc.SignUp(context.Background(), "bob", "pass1234")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if a.Salt == b.Salt {
		t.Fatalf("expected distinct salts per user")
	}
}

func TestAuthService_SignUp_EmptyInput(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &fakeHasher{})

	if _, err := svc.SignUp(context.Background(), "", "pass"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty username, got %v", err)
	}
	if _, err := svc.SignUp(context.Background(), "alice", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty password, got %v", err)
	}
}

func TestAuthService_SignUp_DuplicateUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &fakeHasher{})

	if _, err := svc.SignUp(context.Background(), "bob", "pass1234"); err != nil {
		t.Fatalf("first SignUp failed: %v", err)
	}
	if _, err := svc.SignUp(context.Background(), "bob", "other999"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_SignUp_OtherPersistenceFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New("connection reset")
	svc := newAuthService(repo, &fakeHasher{})

	_, err := svc.SignUp(context.Background(), "carol", "pass1234")
	if !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("generic failure must not map to ErrUserExists")
	}
}

// ---------------------------------------------------------------------------
// ValidateUserPassword
// ---------------------------------------------------------------------------

func TestAuthService_ValidateUserPassword_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &fakeHasher{})

	if _, err := svc.SignUp(context.Background(), "carol", "s3cret99"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	user, err := svc.ValidateUserPassword(context.Background(), "carol", "s3cret99")
	if err != nil {
		t.Fatalf("ValidateUserPassword returned error: %v", err)
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("expected authenticated user carol, got %+v", user)
	}
}

func TestAuthService_ValidateUserPassword_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	hasher := &fakeHasher{}
	svc := newAuthService(repo, hasher)

	_, _ = svc.SignUp(context.Background(), "dave", "goodpass")

	user, err := svc.ValidateUserPassword(context.Background(), "dave", "badpass")
	if err != nil {
		t.Fatalf("wrong password must not be an error, got %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user for wrong password")
	}
	if !hasher.verifyCalled {
		t.Fatalf("expected the hasher to be consulted for an existing user")
	}
}

func TestAuthService_ValidateUserPassword_UnknownUserShortCircuits(t *testing.T) {
	repo := newStubUserRepo()
	hasher := &fakeHasher{}
	svc := newAuthService(repo, hasher)

	user, err := svc.ValidateUserPassword(context.Background(), "ghost", "whatever")
	if err != nil {
		t.Fatalf("unknown user must not be an error, got %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user for unknown username")
	}
	if hasher.verifyCalled {
		t.Fatalf("hasher must not be invoked when the user does not exist")
	}
}

func TestAuthService_ValidateUserPassword_HasherErrorPropagates(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &fakeHasher{})
	_, _ = svc.SignUp(context.Background(), "erin", "pass1234")

	failing := &fakeHasher{verifyErr: domain.ErrInvalidInput}
	svc = newAuthService(repo, failing)

	if _, err := svc.ValidateUserPassword(context.Background(), "erin", "pass1234"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput from hasher to propagate, got %v", err)
	}
}

func TestAuthService_ValidateUserPassword_RepoErrorPropagates(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("connection reset")
	svc := newAuthService(repo, &fakeHasher{})

	if _, err := svc.ValidateUserPassword(context.Background(), "any", "any"); err == nil {
		t.Fatalf("expected infrastructure error to propagate")
	}
}

// End-to-end over the real bcrypt hasher.
func TestAuthService_SignUpThenLogin_Bcrypt(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, security.NewBcryptHasher(bcrypt.MinCost))

	created, err := svc.SignUp(context.Background(), "frank", "hunter22")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if created.PasswordHash == "hunter22" || created.PasswordHash == "" {
		t.Fatalf("stored digest looks wrong: %q", created.PasswordHash)
	}

	user, err := svc.ValidateUserPassword(context.Background(), "frank", "hunter22")
	if err != nil {
		t.Fatalf("ValidateUserPassword failed: %v", err)
	}
	if user == nil {
		t.Fatalf("expected successful authentication")
	}

	user, err = svc.ValidateUserPassword(context.Background(), "frank", "hunter23")
	if err != nil {
		t.Fatalf("wrong password must not be an error, got %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user for wrong password")
	}
}
