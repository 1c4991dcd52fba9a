package elections

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pemira-app/pemira/internal/shared"
)

// Service handles election business logic.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListForVoter returns published elections annotated with open state.
func (s *Service) ListForVoter(ctx context.Context) ([]Election, error) {
	return s.repo.List(ctx, true)
}

// ListAll returns every election for the management view.
func (s *Service) ListAll(ctx context.Context) ([]Election, error) {
	return s.repo.List(ctx, false)
}

// Get returns an election with its candidates.
func (s *Service) Get(ctx context.Context, id string) (*Election, []Candidate, error) {
	election, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	candidates, err := s.repo.Candidates(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return election, candidates, nil
}

// Create registers a new election owned by the acting staff member.
func (s *Service) Create(ctx context.Context, actor shared.Session, req CreateElectionRequest) (*Election, error) {
	election := Election{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		IsPublished: false,
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.Create(ctx, election); err != nil {
		return nil, err
	}
	return &election, nil
}

// Update rewrites an election's details and publish state. The read and the
// write run as one repository transaction so concurrent edits cannot lose
// each other's changes.
func (s *Service) Update(ctx context.Context, id string, req UpdateElectionRequest) error {
	return s.repo.Modify(ctx, id, func(e *Election) {
		e.Title = req.Title
		e.Description = req.Description
		e.StartsAt = req.StartsAt
		e.EndsAt = req.EndsAt
		e.IsPublished = req.IsPublished
	})
}

// AddCandidate places a new entry on the ballot.
func (s *Service) AddCandidate(ctx context.Context, electionID string, req AddCandidateRequest) (*Candidate, error) {
	if _, err := s.repo.FindByID(ctx, electionID); err != nil {
		return nil, err
	}
	candidate := Candidate{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		Name:       req.Name,
		Vision:     req.Vision,
		Position:   req.Position,
	}
	if err := s.repo.AddCandidate(ctx, candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// IsOpen reports whether the election currently accepts votes.
func (s *Service) IsOpen(e Election) bool {
	return e.Open(s.now())
}
