package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/pemira-app/pemira/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// SessionFor builds the session claims issued after a successful login.
func (s *Service) SessionFor(user *User) shared.Session {
	role := user.Role
	if !role.Valid() {
		role = shared.RoleVoter
	}
	return shared.Session{
		LoggedIn:  true,
		UserID:    user.ID,
		Role:      role,
		Name:      user.Name,
		StudentID: user.StudentID,
	}
}
