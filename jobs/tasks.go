package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/pemira-app/pemira/internal/jobs"
	"github.com/pemira-app/pemira/internal/ledger"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerSubmit is the task type for appending vote receipts to the ledger.
	TaskLedgerSubmit = "ledger:submit"
)

// LedgerSubmitPayload describes the receipt that must reach the ledger.
type LedgerSubmitPayload struct {
	VoteID     string    `json:"vote_id"`
	ElectionID string    `json:"election_id"`
	VoterID    string    `json:"voter_id"`
	Hash       string    `json:"hash"`
	CastAt     time.Time `json:"cast_at"`
}

// NewLedgerSubmitTask constructs an Asynq task.
func NewLedgerSubmitTask(payload LedgerSubmitPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerSubmit, data, asynq.MaxRetry(10)), nil
}

// LedgerSubmitter processes TaskLedgerSubmit tasks against the ledger service.
type LedgerSubmitter struct {
	ledger  *ledger.Client
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewLedgerSubmitter constructs the task handler.
func NewLedgerSubmitter(client *ledger.Client, logger *slog.Logger) *LedgerSubmitter {
	return &LedgerSubmitter{ledger: client, logger: logger, metrics: jobmetrics.NewMetrics(nil)}
}

// Handle submits one receipt. Transport failures are returned so Asynq retries;
// a payload that cannot be decoded is dropped since retrying cannot fix it.
func (s *LedgerSubmitter) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := s.metrics.Track(TaskLedgerSubmit)
	var payload LedgerSubmitPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	result, err := s.ledger.Submit(ctx, ledger.Receipt{
		VoteID:     payload.VoteID,
		ElectionID: payload.ElectionID,
		VoterID:    payload.VoterID,
		Hash:       payload.Hash,
		CastAt:     payload.CastAt,
	})
	if err != nil {
		s.logger.Warn("ledger submit gagal, akan dicoba ulang",
			slog.String("vote_id", payload.VoteID),
			slog.Any("error", err))
		return tracker.End(err)
	}
	s.logger.Info("tanda terima tercatat di ledger",
		slog.String("vote_id", payload.VoteID),
		slog.Int64("sequence", result.Sequence))
	return tracker.End(nil)
}
