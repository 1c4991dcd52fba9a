package votes

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pemira-app/pemira/internal/elections"
	"github.com/pemira-app/pemira/internal/shared"
	"github.com/pemira-app/pemira/jobs"
)

type stubRepo struct {
	inserted   []Vote
	insertErr  error
	tally      []TallyEntry
	tallyCalls int
}

func (s *stubRepo) Insert(ctx context.Context, vote Vote) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, vote)
	return nil
}

func (s *stubRepo) HasVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	for _, v := range s.inserted {
		if v.ElectionID == electionID && v.VoterID == voterID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) Tally(ctx context.Context, electionID string) ([]TallyEntry, error) {
	s.tallyCalls++
	return s.tally, nil
}

type stubElections struct {
	election   *elections.Election
	candidates []elections.Candidate
}

func (s *stubElections) Get(ctx context.Context, id string) (*elections.Election, []elections.Candidate, error) {
	if s.election == nil || s.election.ID != id {
		return nil, nil, shared.ErrNotFound
	}
	return s.election, s.candidates, nil
}

type stubQueue struct {
	payloads []jobs.LedgerSubmitPayload
	err      error
}

func (s *stubQueue) EnqueueLedgerSubmit(ctx context.Context, payload jobs.LedgerSubmitPayload) error {
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func openElection(now time.Time) *stubElections {
	return &stubElections{
		election: &elections.Election{
			ID:          "e1",
			IsPublished: true,
			StartsAt:    now.Add(-time.Hour),
			EndsAt:      now.Add(time.Hour),
		},
		candidates: []elections.Candidate{
			{ID: "c1", ElectionID: "e1", Name: "Paslon 1"},
			{ID: "c2", ElectionID: "e1", Name: "Paslon 2"},
		},
	}
}

func voterSession() shared.Session {
	return shared.Session{LoggedIn: true, UserID: "u1", Role: shared.RoleVoter}
}

func testCache(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCastRecordsVoteAndEnqueuesReceipt(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubRepo{}
	queue := &stubQueue{}
	svc := NewService(repo, openElection(now), nil, queue, nil, nil, 0)
	svc.now = func() time.Time { return now }

	vote, err := svc.Cast(context.Background(), voterSession(), "e1", "c1")
	require.NoError(t, err)
	require.NotEmpty(t, vote.ID)
	require.NotEmpty(t, vote.ReceiptHash)
	require.Equal(t, "u1", vote.VoterID)
	require.Len(t, repo.inserted, 1)

	require.Len(t, queue.payloads, 1)
	require.Equal(t, vote.ID, queue.payloads[0].VoteID)
	require.Equal(t, vote.ReceiptHash, queue.payloads[0].Hash)
}

func TestCastRejectsClosedElection(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	source := openElection(now)
	source.election.EndsAt = now.Add(-time.Minute)
	repo := &stubRepo{}
	svc := NewService(repo, source, nil, nil, nil, nil, 0)
	svc.now = func() time.Time { return now }

	_, err := svc.Cast(context.Background(), voterSession(), "e1", "c1")
	require.ErrorIs(t, err, ErrElectionClosed)
	require.Empty(t, repo.inserted)
}

func TestCastRejectsForeignCandidate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewService(&stubRepo{}, openElection(now), nil, nil, nil, nil, 0)
	svc.now = func() time.Time { return now }

	_, err := svc.Cast(context.Background(), voterSession(), "e1", "c-other")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCastSurfacesDuplicate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubRepo{insertErr: ErrAlreadyVoted}
	svc := NewService(repo, openElection(now), nil, nil, nil, nil, 0)
	svc.now = func() time.Time { return now }

	_, err := svc.Cast(context.Background(), voterSession(), "e1", "c1")
	require.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestCastSucceedsWhenQueueDown(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubRepo{}
	queue := &stubQueue{err: context.DeadlineExceeded}
	svc := NewService(repo, openElection(now), nil, queue, nil, nil, 0)
	svc.now = func() time.Time { return now }

	_, err := svc.Cast(context.Background(), voterSession(), "e1", "c1")
	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
}

func TestResultsServedFromCache(t *testing.T) {
	repo := &stubRepo{tally: []TallyEntry{{CandidateID: "c1", CandidateName: "Paslon 1", Count: 3}}}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, openElection(now), testCache(t), nil, nil, nil, 30*time.Second)

	first, err := svc.Results(context.Background(), "e1")
	require.NoError(t, err)
	require.Equal(t, repo.tally, first)
	require.Equal(t, 1, repo.tallyCalls)

	second, err := svc.Results(context.Background(), "e1")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.tallyCalls, "second read should come from cache")
}

func TestCastInvalidatesTallyCache(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubRepo{tally: []TallyEntry{{CandidateID: "c1", Count: 1}}}
	cache := testCache(t)
	svc := NewService(repo, openElection(now), cache, nil, nil, nil, 30*time.Second)
	svc.now = func() time.Time { return now }

	_, err := svc.Results(context.Background(), "e1")
	require.NoError(t, err)
	require.Equal(t, 1, repo.tallyCalls)

	_, err = svc.Cast(context.Background(), voterSession(), "e1", "c1")
	require.NoError(t, err)

	_, err = svc.Results(context.Background(), "e1")
	require.NoError(t, err)
	require.Equal(t, 2, repo.tallyCalls, "cast should drop the cached tally")
}
