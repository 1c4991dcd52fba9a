package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pemira-app/pemira/internal/shared"
)

type stubRepo struct {
	users      map[string]*User
	updateErr  error
	deleted    []string
	profileLog []string
}

func newStubRepo(users ...*User) *stubRepo {
	m := make(map[string]*User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &stubRepo{users: m}
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (s *stubRepo) List(ctx context.Context, limit, offset int) ([]User, error) {
	var list []User
	for _, u := range s.users {
		list = append(list, *u)
	}
	return list, nil
}

func (s *stubRepo) Count(ctx context.Context) (int, error) {
	return len(s.users), nil
}

func (s *stubRepo) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.profileLog = append(s.profileLog, id)
	return nil
}

func (s *stubRepo) UpdateAccount(ctx context.Context, id string, update AccountUpdate) error {
	return s.updateErr
}

func (s *stubRepo) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func voterSession(id string) shared.Session {
	return shared.Session{LoggedIn: true, UserID: id, Role: shared.RoleVoter}
}

func adminSession() shared.Session {
	return shared.Session{LoggedIn: true, UserID: "a1", Role: shared.RoleAdmin}
}

func TestUpdateProfileSelfAllowed(t *testing.T) {
	repo := newStubRepo(&User{ID: "u1"})
	svc := NewService(repo)

	err := svc.UpdateProfile(context.Background(), voterSession("u1"), "u1", ProfileUpdate{Name: "Budi", StudentID: "2119001"})
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, repo.profileLog)
}

func TestUpdateProfileOtherUserUnauthorized(t *testing.T) {
	repo := newStubRepo(&User{ID: "u2"})
	svc := NewService(repo)

	err := svc.UpdateProfile(context.Background(), voterSession("u1"), "u2", ProfileUpdate{Name: "X", StudentID: "1"})
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Empty(t, repo.profileLog, "repository must not be touched after a denial")
}

func TestUpdateProfileAdminMayEditAnyone(t *testing.T) {
	repo := newStubRepo(&User{ID: "u2"})
	svc := NewService(repo)

	err := svc.UpdateProfile(context.Background(), adminSession(), "u2", ProfileUpdate{Name: "X", StudentID: "1"})
	require.NoError(t, err)
}

func TestUpdateProfileAnonymousNotAuthenticated(t *testing.T) {
	svc := NewService(newStubRepo())
	err := svc.UpdateProfile(context.Background(), shared.Anonymous(), "u1", ProfileUpdate{})
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestDeleteIsAdminOnly(t *testing.T) {
	repo := newStubRepo(&User{ID: "u1"}, &User{ID: "u2"})
	svc := NewService(repo)

	// A voter cannot delete another user nor themselves.
	require.ErrorIs(t, svc.Delete(context.Background(), voterSession("u1"), "u2"), ErrUnauthorized)
	require.ErrorIs(t, svc.Delete(context.Background(), voterSession("u1"), "u1"), ErrUnauthorized)
	require.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), adminSession(), "u2"))
	require.Equal(t, []string{"u2"}, repo.deleted)
}

func TestDeleteBlocksAdminSelfDelete(t *testing.T) {
	repo := newStubRepo(&User{ID: "a1"})
	svc := NewService(repo)

	err := svc.Delete(context.Background(), adminSession(), "a1")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Empty(t, repo.deleted)
}

func TestUpdateAccountRequiresAdmin(t *testing.T) {
	svc := NewService(newStubRepo(&User{ID: "u2"}))
	err := svc.UpdateAccount(context.Background(), voterSession("u1"), "u2", AccountUpdate{})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestStoreErrorIsNotADenial(t *testing.T) {
	repo := newStubRepo(&User{ID: "u1"})
	repo.updateErr = errors.New("connection refused")
	svc := NewService(repo)

	err := svc.UpdateProfile(context.Background(), voterSession("u1"), "u1", ProfileUpdate{Name: "Budi", StudentID: "1"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnauthorized)
	require.NotErrorIs(t, err, ErrNotAuthenticated)
}

func TestListPagination(t *testing.T) {
	svc := NewService(newStubRepo(&User{ID: "u1"}, &User{ID: "u2"}, &User{ID: "u3"}))
	_, pagination, err := svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, 3, pagination.Total)
	require.Equal(t, 2, pagination.TotalPages)
}
