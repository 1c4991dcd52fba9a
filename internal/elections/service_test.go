package elections

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pemira-app/pemira/internal/shared"
)

type stubRepo struct {
	elections   map[string]*Election
	candidates  map[string][]Candidate
	created     []Election
	modifyCalls int
}

func newStubRepo(elections ...*Election) *stubRepo {
	m := make(map[string]*Election, len(elections))
	for _, e := range elections {
		m[e.ID] = e
	}
	return &stubRepo{elections: m, candidates: make(map[string][]Candidate)}
}

func (s *stubRepo) List(ctx context.Context, publishedOnly bool) ([]Election, error) {
	var list []Election
	for _, e := range s.elections {
		if publishedOnly && !e.IsPublished {
			continue
		}
		list = append(list, *e)
	}
	return list, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*Election, error) {
	e, ok := s.elections[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (s *stubRepo) Candidates(ctx context.Context, electionID string) ([]Candidate, error) {
	return s.candidates[electionID], nil
}

func (s *stubRepo) Create(ctx context.Context, e Election) error {
	s.created = append(s.created, e)
	s.elections[e.ID] = &e
	return nil
}

func (s *stubRepo) Modify(ctx context.Context, id string, fn func(*Election)) error {
	e, ok := s.elections[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.modifyCalls++
	fn(e)
	return nil
}

func (s *stubRepo) AddCandidate(ctx context.Context, c Candidate) error {
	s.candidates[c.ElectionID] = append(s.candidates[c.ElectionID], c)
	return nil
}

func (s *stubRepo) Count(ctx context.Context, publishedOnly bool) (int, error) {
	list, _ := s.List(ctx, publishedOnly)
	return len(list), nil
}

func staffSession() shared.Session {
	return shared.Session{LoggedIn: true, UserID: "s1", Role: shared.RoleStaff}
}

func TestListForVoterHidesDrafts(t *testing.T) {
	repo := newStubRepo(
		&Election{ID: "e1", IsPublished: true},
		&Election{ID: "e2", IsPublished: false},
	)
	svc := NewService(repo)

	list, err := svc.ListForVoter(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "e1", list[0].ID)
}

func TestCreateElectionStartsUnpublished(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	election, err := svc.Create(context.Background(), staffSession(), CreateElectionRequest{
		Title:    "Pemira BEM 2026",
		StartsAt: time.Now(),
		EndsAt:   time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.NotEmpty(t, election.ID)
	require.False(t, election.IsPublished)
	require.Equal(t, "s1", election.CreatedBy)
	require.Len(t, repo.created, 1)
}

func TestAddCandidateUnknownElection(t *testing.T) {
	svc := NewService(newStubRepo())
	_, err := svc.AddCandidate(context.Background(), "missing", AddCandidateRequest{Name: "Paslon 1"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestElectionOpenWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	e := Election{
		IsPublished: true,
		StartsAt:    now.Add(-time.Hour),
		EndsAt:      now.Add(time.Hour),
	}
	require.True(t, e.Open(now))
	require.False(t, e.Open(now.Add(2*time.Hour)))
	require.False(t, e.Open(now.Add(-2*time.Hour)))

	e.IsPublished = false
	require.False(t, e.Open(now))
}

func TestUpdatePersistsPublishState(t *testing.T) {
	repo := newStubRepo(&Election{ID: "e1", Title: "Draft"})
	svc := NewService(repo)

	err := svc.Update(context.Background(), "e1", UpdateElectionRequest{
		Title:       "Pemira 2026",
		StartsAt:    time.Now(),
		EndsAt:      time.Now().Add(time.Hour),
		IsPublished: true,
	})
	require.NoError(t, err)
	require.True(t, repo.elections["e1"].IsPublished)
	require.Equal(t, "Pemira 2026", repo.elections["e1"].Title)
	// One repository roundtrip: the read-modify-write happens inside Modify.
	require.Equal(t, 1, repo.modifyCalls)

	err = svc.Update(context.Background(), "missing", UpdateElectionRequest{Title: "X"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
