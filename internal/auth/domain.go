package auth

import (
	"time"

	"github.com/pemira-app/pemira/internal/shared"
)

// User represents an authenticated user account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	StudentID    string
	Role         shared.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
