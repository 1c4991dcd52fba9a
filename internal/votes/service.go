package votes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/pemira-app/pemira/internal/elections"
	"github.com/pemira-app/pemira/internal/observability"
	"github.com/pemira-app/pemira/internal/shared"
	"github.com/pemira-app/pemira/jobs"
)

// ElectionSource exposes the election lookups the ballot flow needs.
type ElectionSource interface {
	Get(ctx context.Context, id string) (*elections.Election, []elections.Candidate, error)
}

// LedgerQueue enqueues receipt submissions for asynchronous delivery.
type LedgerQueue interface {
	EnqueueLedgerSubmit(ctx context.Context, payload jobs.LedgerSubmitPayload) error
}

// Service coordinates ballot casting and result tallies.
type Service struct {
	repo      RepositoryPort
	elections ElectionSource
	cache     *redis.Client
	queue     LedgerQueue
	metrics   *observability.Metrics
	logger    *slog.Logger
	cacheTTL  time.Duration
	group     singleflight.Group
	now       func() time.Time
}

// NewService constructs a Service instance. Cache, queue and metrics may be
// nil; the ballot flow degrades to direct queries and skips the ledger.
func NewService(repo RepositoryPort, source ElectionSource, cache *redis.Client, queue LedgerQueue, metrics *observability.Metrics, logger *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		elections: source,
		cache:     cache,
		queue:     queue,
		metrics:   metrics,
		logger:    logger,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// Cast records one ballot for the session's voter. The vote row is the source
// of truth; the ledger receipt is queued afterwards and retried by the worker,
// so a ledger outage never blocks voting.
func (s *Service) Cast(ctx context.Context, sess shared.Session, electionID, candidateID string) (*Vote, error) {
	election, candidates, err := s.elections.Get(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if !election.Open(s.now()) {
		return nil, ErrElectionClosed
	}
	valid := false
	for _, c := range candidates {
		if c.ID == candidateID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("candidate %s: %w", candidateID, shared.ErrNotFound)
	}

	vote := Vote{
		ID:          uuid.NewString(),
		ElectionID:  electionID,
		CandidateID: candidateID,
		VoterID:     sess.UserID,
		CastAt:      s.now().UTC(),
	}
	vote.ReceiptHash = receiptHash(vote)

	if err := s.repo.Insert(ctx, vote); err != nil {
		return nil, err
	}
	s.metrics.CountVote()
	s.invalidateTally(ctx, electionID)

	if s.queue != nil {
		err := s.queue.EnqueueLedgerSubmit(ctx, jobs.LedgerSubmitPayload{
			VoteID:     vote.ID,
			ElectionID: vote.ElectionID,
			VoterID:    vote.VoterID,
			Hash:       vote.ReceiptHash,
			CastAt:     vote.CastAt,
		})
		if err != nil && s.logger != nil {
			s.logger.Error("enqueue ledger submit", slog.String("vote_id", vote.ID), slog.Any("error", err))
		}
	}
	return &vote, nil
}

// HasVoted reports whether the voter already cast a ballot in the election.
func (s *Service) HasVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	return s.repo.HasVoted(ctx, electionID, voterID)
}

// Results returns the tally for an election. Concurrent callers share one
// database query and the result is cached briefly in Redis.
func (s *Service) Results(ctx context.Context, electionID string) ([]TallyEntry, error) {
	key := tallyKey(electionID)
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var tally []TallyEntry
			if jsonErr := json.Unmarshal(raw, &tally); jsonErr == nil {
				return tally, nil
			}
		}
	}

	resultCh := s.group.DoChan(key, func() (any, error) {
		tally, err := s.repo.Tally(context.WithoutCancel(ctx), electionID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && s.cacheTTL > 0 {
			if raw, err := json.Marshal(tally); err == nil {
				s.cache.Set(context.WithoutCancel(ctx), key, raw, s.cacheTTL)
			}
		}
		return tally, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]TallyEntry), nil
	}
}

func (s *Service) invalidateTally(ctx context.Context, electionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, tallyKey(electionID)).Err(); err != nil && s.logger != nil {
		s.logger.Warn("invalidate tally cache", slog.String("election_id", electionID), slog.Any("error", err))
	}
}

func tallyKey(electionID string) string {
	return "pemira:tally:" + electionID
}

// receiptHash binds ballot identity fields into the value submitted to the
// ledger. The candidate choice is deliberately excluded.
func receiptHash(v Vote) string {
	sum := sha256.Sum256([]byte(v.ID + "|" + v.ElectionID + "|" + v.VoterID + "|" + v.CastAt.Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}
