package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pemira-app/pemira/internal/elections"
	"github.com/pemira-app/pemira/internal/shared"
)

type stubRepo struct {
	stats Stats
	calls int
}

func (s *stubRepo) Stats(ctx context.Context) (Stats, error) {
	s.calls++
	return s.stats, nil
}

type stubElections struct {
	open []elections.Election
}

func (s *stubElections) ListForVoter(ctx context.Context) ([]elections.Election, error) {
	return s.open, nil
}

func TestLoadVoterSkipsCounters(t *testing.T) {
	repo := &stubRepo{stats: Stats{TotalUsers: 10}}
	source := &stubElections{open: []elections.Election{{ID: "e1", IsPublished: true}}}
	svc := NewService(repo, source)

	summary, err := svc.Load(context.Background(), shared.Session{LoggedIn: true, UserID: "u1", Role: shared.RoleVoter})
	require.NoError(t, err)
	require.Len(t, summary.Open, 1)
	require.Empty(t, summary.TotalUsers)
	require.Zero(t, repo.calls, "voter dashboard must not query admin counters")
}

func TestLoadAdminFormatsCounters(t *testing.T) {
	repo := &stubRepo{stats: Stats{TotalUsers: 12500, OpenElections: 2, TotalElections: 7, VotesCast: 10432}}
	svc := NewService(repo, &stubElections{})

	summary, err := svc.Load(context.Background(), shared.Session{LoggedIn: true, UserID: "a1", Role: shared.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, "12.500", summary.TotalUsers)
	require.Equal(t, "10.432", summary.VotesCast)
	require.Equal(t, "2", summary.OpenElections)
	require.Equal(t, 1, repo.calls)
}
