package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/notekeep/apiserver/internal/store"
	"github.com/notekeep/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ErrMissingCredentials is returned when email or password is absent.
var ErrMissingCredentials = errors.New("email and password are required")

// ErrPasswordTooShort is returned for passwords under six characters.
var ErrPasswordTooShort = errors.New("password must be at least 6 characters long")

// ErrInvalidEmail is returned when the email fails the shape check.
var ErrInvalidEmail = errors.New("please enter a valid email address")

// ErrInvalidCredentials is returned for any failed login. It is
// deliberately identical for unknown emails and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates registration and login.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register validates the credentials, hashes the password, and persists
// the account. A duplicate email surfaces as store.ErrDuplicateEmail.
func (s *UserService) Register(ctx context.Context, email, password string) (types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return types.User{}, ErrMissingCredentials
	}
	if len(password) < minPasswordLength {
		return types.User{}, ErrPasswordTooShort
	}
	if !emailPattern.MatchString(email) {
		return types.User{}, ErrInvalidEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.Create(ctx, types.User{
		Email:        email,
		PasswordHash: string(hashed),
	})
}

// Authenticate verifies a login attempt. Unknown emails and wrong
// passwords both return ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return types.User{}, ErrMissingCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID fetches an account by id.
func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}
