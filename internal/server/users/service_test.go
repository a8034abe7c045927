package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// --- helpers ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byEmailOut *models.User
	byEmailErr error

	byEitherOut *models.User
	byEitherErr error

	created *models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.created = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeUsersRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	if f.byEitherErr != nil {
		return nil, f.byEitherErr
	}
	return f.byEitherOut, nil
}

func newService(repo *fakeUsersRepo) *Service {
	cfg := &config.Config{BcryptCost: bcrypt.MinCost} // cheap hashing in tests
	return NewService(repo, cfg)
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	repo := &fakeUsersRepo{byEitherErr: common.ErrNotFound}
	s := newService(repo)

	user, err := s.Register(context.Background(), "  alice ", "A@X.com", "secret1")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", user.Username)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Password == "" || user.Password == "secret1" {
		t.Fatalf("password hash must be set and not plaintext: %q", user.Password)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "missing username", username: "", email: "a@x.com", password: "secret1"},
		{name: "missing email", username: "alice", email: "", password: "secret1"},
		{name: "missing password", username: "alice", email: "a@x.com", password: ""},
		{name: "short password", username: "alice", email: "a@x.com", password: "12345"},
		{name: "malformed email", username: "alice", email: "not-an-email", password: "secret1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newService(&fakeUsersRepo{byEitherErr: common.ErrNotFound})
			_, err := s.Register(context.Background(), tc.username, tc.email, tc.password)
			if !errors.Is(err, common.ErrValidation) {
				t.Fatalf("expected common.ErrValidation, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateFromPrecheck(t *testing.T) {
	repo := &fakeUsersRepo{byEitherOut: &models.User{Username: "alice"}}
	s := newService(repo)

	_, err := s.Register(context.Background(), "alice", "a@x.com", "secret1")
	if !errors.Is(err, common.ErrDuplicateIdentity) {
		t.Fatalf("expected common.ErrDuplicateIdentity, got %v", err)
	}
}

// The unique index stays authoritative: even when the pre-check saw nothing,
// a duplicate-key error from the insert surfaces as ErrDuplicateIdentity.
func TestRegister_DuplicateFromIndexRace(t *testing.T) {
	repo := &fakeUsersRepo{
		byEitherErr: common.ErrNotFound,
		createErr:   common.ErrDuplicateIdentity,
	}
	s := newService(repo)

	_, err := s.Register(context.Background(), "alice", "a@x.com", "secret1")
	if !errors.Is(err, common.ErrDuplicateIdentity) {
		t.Fatalf("expected common.ErrDuplicateIdentity, got %v", err)
	}
}

// --- Login ---

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	return string(hash)
}

func TestLogin_Success(t *testing.T) {
	alice := &models.User{
		Username:  "alice",
		Email:     "a@x.com",
		Password:  hashFor(t, "secret1"),
		CreatedAt: time.Now(),
	}
	s := newService(&fakeUsersRepo{byEmailOut: alice})

	got, err := s.Login(context.Background(), "A@X.com ", "secret1")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	alice := &models.User{Email: "a@x.com", Password: hashFor(t, "secret1")}

	wrongPassword := newService(&fakeUsersRepo{byEmailOut: alice})
	_, errWrongPassword := wrongPassword.Login(context.Background(), "a@x.com", "wrong")

	unknownEmail := newService(&fakeUsersRepo{byEmailErr: common.ErrNotFound})
	_, errUnknownEmail := unknownEmail.Login(context.Background(), "nobody@x.com", "secret1")

	if !errors.Is(errWrongPassword, common.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected common.ErrInvalidCredentials, got %v", errWrongPassword)
	}
	if !errors.Is(errUnknownEmail, common.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected common.ErrInvalidCredentials, got %v", errUnknownEmail)
	}
	if errWrongPassword.Error() != errUnknownEmail.Error() {
		t.Fatalf("failure modes must be observably identical: %q vs %q",
			errWrongPassword.Error(), errUnknownEmail.Error())
	}
}

func TestLogin_MissingInput(t *testing.T) {
	s := newService(&fakeUsersRepo{})

	_, err := s.Login(context.Background(), "", "")
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected common.ErrValidation, got %v", err)
	}
}
