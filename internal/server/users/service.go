// Package users contains the registration and login business logic.
package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	usersrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Compared when the email is unknown, so that the missing-user path performs
// the same bcrypt work as the wrong-password path.
var enumerationGuardHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Service provides identity operations:
// - Register: validate input, hash the password, create the user
// - Login: verify credentials without disclosing which part failed
type Service struct {
	repo       usersrepo.Repository
	bcryptCost int
}

// NewService constructs a Service using the credential store and server config.
func NewService(repo usersrepo.Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, bcryptCost: cfg.BcryptCost}
}

// Register creates a new identity. Username and email are trimmed and the
// email lowercased before storage. Validation failures return
// common.ErrValidation; a username or email already in use returns
// common.ErrDuplicateIdentity. The unique indexes on the users collection
// remain authoritative: a duplicate that slips past the pre-check still
// surfaces as ErrDuplicateIdentity from Create.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", common.ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}

	if _, err := s.repo.FindByUsernameOrEmail(ctx, username, email); err == nil {
		return nil, common.ErrDuplicateIdentity
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{Username: username, Email: email, Password: string(hash)}
	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Login verifies the email/password pair. An unknown email and a wrong
// password both return common.ErrInvalidCredentials and both cost one bcrypt
// comparison, so the responses are indistinguishable to a caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(enumerationGuardHash, []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}
