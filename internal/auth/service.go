// Package auth verifies credentials and registers users.
package auth

import (
	"context" // Context for repository calls
	"errors"  // Error values and inspection
	"fmt"     // Error wrapping

	"blog_system/internal/domain"     // Importing domain models
	"blog_system/internal/repository" // Repository errors

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when registration hits an existing username
	ErrUsernameTaken = errors.New("username already exists")
)

// UserStore is the subset of the user repository the service needs
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// Service registers and authenticates users
type Service struct {
	users UserStore
}

// NewService creates an auth Service
func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// Register creates a user with a hashed password. The existence check only
// saves a hash computation; the unique index is what guarantees one row per
// username.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken // Fast path, the index still decides
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{Username: username, Password: hash, Role: domain.RoleUser} // Only the hash is stored
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUsernameTaken // Lost the race to a concurrent sign-up
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return user, nil
}

// Authenticate returns the user when username and password match.
// Every mismatch is reported as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		burnPasswordCheck(password) // Same latency as a wrong password
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
