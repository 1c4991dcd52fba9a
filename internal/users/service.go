package users

import (
	"context"
	"errors"

	"github.com/pemira-app/pemira/internal/policy"
	"github.com/pemira-app/pemira/internal/shared"
)

// Sentinel errors for guarded mutations.
var (
	// ErrNotAuthenticated is returned when an action is attempted without a session.
	ErrNotAuthenticated = errors.New(policy.MsgNotAuthenticated)
	// ErrUnauthorized is returned when the session may not touch the target record.
	ErrUnauthorized = errors.New(policy.MsgUnauthorized)
)

// Service handles user business logic. Every mutation re-checks authorization
// against the acting session before touching the repository, independent of
// whatever the edge gate decided.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns a single user record.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns a page of users with pagination metadata.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	pagination := shared.NewPagination(page, perPage, total)
	list, err := s.repo.List(ctx, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, pagination, nil
}

// UpdateProfile applies a self-or-admin guarded profile mutation.
func (s *Service) UpdateProfile(ctx context.Context, actor shared.Session, targetID string, update ProfileUpdate) error {
	if actor.IsAnonymous() {
		return ErrNotAuthenticated
	}
	if !policy.CanMutateUser(actor, targetID) {
		return ErrUnauthorized
	}
	return s.repo.UpdateProfile(ctx, targetID, update)
}

// UpdateAccount applies an admin-only account mutation.
func (s *Service) UpdateAccount(ctx context.Context, actor shared.Session, targetID string, update AccountUpdate) error {
	if actor.IsAnonymous() {
		return ErrNotAuthenticated
	}
	if actor.Role != shared.RoleAdmin {
		return ErrUnauthorized
	}
	return s.repo.UpdateAccount(ctx, targetID, update)
}

// Delete removes a user record. Admin-only; self-service deletion is not
// permitted even for the record owner.
func (s *Service) Delete(ctx context.Context, actor shared.Session, targetID string) error {
	if actor.IsAnonymous() {
		return ErrNotAuthenticated
	}
	if !policy.CanDeleteUser(actor, targetID) {
		return ErrUnauthorized
	}
	return s.repo.Delete(ctx, targetID)
}
