package users

import (
	"time"

	"github.com/pemira-app/pemira/internal/shared"
)

// User represents a user account for management and profile views.
type User struct {
	ID        string
	Email     string
	Name      string
	StudentID string
	Role      shared.Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate carries the fields a user may change on their own record.
type ProfileUpdate struct {
	Name      string `validate:"required,max=120"`
	StudentID string `validate:"required,max=32"`
}

// AccountUpdate carries the fields an administrator may change on any record.
type AccountUpdate struct {
	Name      string      `validate:"required,max=120"`
	StudentID string      `validate:"required,max=32"`
	Role      shared.Role `validate:"required,oneof=admin staff voter"`
	IsActive  bool
}
