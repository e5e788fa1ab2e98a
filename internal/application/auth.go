package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/tableroapp/tablero/internal/domain/entity"
	"github.com/tableroapp/tablero/internal/domain/repository"
	"github.com/tableroapp/tablero/pkg/helpers"
)

var (
	ErrDuplicateUser      = errors.New("duplicate user")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Credentials is the request-sourced input to a verification strategy.
// Email, FirstName and LastName are only meaningful for signup.
type Credentials struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// Strategy is a named credential-verification strategy. Exactly two
// implementations exist: SignupStrategy and LoginStrategy.
type Strategy interface {
	Name() string
	Verify(ctx context.Context, creds Credentials) (*entity.User, error)
}

// SignupStrategy creates a new account: duplicate-username check, bcrypt
// hash, persist, and return the stored user.
type SignupStrategy struct {
	Directory repository.UserDirectory
	Logger    *logrus.Logger
}

func (s *SignupStrategy) Name() string { return "signup" }

func (s *SignupStrategy) Verify(ctx context.Context, creds Credentials) (*entity.User, error) {
	if existing, err := s.Directory.GetByUsername(ctx, creds.Username); err == nil && existing != nil {
		return nil, ErrDuplicateUser
	}
	hash, err := helpers.HashPassword(creds.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Username:     creds.Username,
		PasswordHash: hash,
		Email:        creds.Email,
		FirstName:    creds.FirstName,
		LastName:     creds.LastName,
	}
	if err := s.Directory.Create(ctx, u); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("username", creds.Username).Error("create user failed")
		}
		return nil, err
	}
	return u, nil
}

// LoginStrategy verifies an existing account: username lookup then bcrypt
// comparison.
type LoginStrategy struct {
	Directory repository.UserDirectory
	Logger    *logrus.Logger
}

func (s *LoginStrategy) Name() string { return "login" }

func (s *LoginStrategy) Verify(ctx context.Context, creds Credentials) (*entity.User, error) {
	u, err := s.Directory.GetByUsername(ctx, creds.Username)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, creds.Password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

var (
	_ Strategy = (*SignupStrategy)(nil)
	_ Strategy = (*LoginStrategy)(nil)
)
