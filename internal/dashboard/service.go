package dashboard

import (
	"context"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pemira-app/pemira/internal/elections"
	"github.com/pemira-app/pemira/internal/shared"
)

// Summary is the dashboard view model with locale formatted counters.
type Summary struct {
	TotalUsers     string
	OpenElections  string
	TotalElections string
	VotesCast      string
	Open           []elections.Election
}

// ElectionSource lists elections a voter may currently see.
type ElectionSource interface {
	ListForVoter(ctx context.Context) ([]elections.Election, error)
}

// Service assembles the dashboard summary.
type Service struct {
	repo      RepositoryPort
	elections ElectionSource
	printer   *message.Printer
}

// NewService constructs a Service instance.
func NewService(repo RepositoryPort, source ElectionSource) *Service {
	return &Service{
		repo:      repo,
		elections: source,
		printer:   message.NewPrinter(language.Indonesian),
	}
}

// Load produces the summary for the given session. Voters only get the
// elections list; staff and admins additionally get platform counters.
func (s *Service) Load(ctx context.Context, sess shared.Session) (Summary, error) {
	open, err := s.elections.ListForVoter(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Open: open}
	if sess.Role == shared.RoleVoter {
		return summary, nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary.TotalUsers = s.printer.Sprintf("%d", stats.TotalUsers)
	summary.OpenElections = s.printer.Sprintf("%d", stats.OpenElections)
	summary.TotalElections = s.printer.Sprintf("%d", stats.TotalElections)
	summary.VotesCast = s.printer.Sprintf("%d", stats.VotesCast)
	return summary, nil
}
