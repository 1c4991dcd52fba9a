package votes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// RepositoryPort defines data access methods for ballots.
type RepositoryPort interface {
	Insert(ctx context.Context, vote Vote) error
	HasVoted(ctx context.Context, electionID, voterID string) (bool, error)
	Tally(ctx context.Context, electionID string) ([]TallyEntry, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

// Insert stores one ballot. The votes table carries a unique constraint on
// (election_id, voter_id), so a duplicate ballot surfaces as ErrAlreadyVoted.
func (r *Repository) Insert(ctx context.Context, vote Vote) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO votes (id, election_id, candidate_id, voter_id, receipt_hash, cast_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		vote.ID, vote.ElectionID, vote.CandidateID, vote.VoterID, vote.ReceiptHash, vote.CastAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyVoted
		}
		return err
	}
	return nil
}

// HasVoted reports whether the voter already cast a ballot in the election.
func (r *Repository) HasVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM votes WHERE election_id = $1 AND voter_id = $2)`,
		electionID, voterID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Tally counts ballots per candidate. Candidates without ballots still appear
// with a zero count so result pages show the full slate.
func (r *Repository) Tally(ctx context.Context, electionID string) ([]TallyEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, COUNT(v.id)
		 FROM candidates c
		 LEFT JOIN votes v ON v.candidate_id = c.id
		 WHERE c.election_id = $1
		 GROUP BY c.id, c.name
		 ORDER BY COUNT(v.id) DESC, c.name`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tally []TallyEntry
	for rows.Next() {
		var entry TallyEntry
		if err := rows.Scan(&entry.CandidateID, &entry.CandidateName, &entry.Count); err != nil {
			return nil, err
		}
		tally = append(tally, entry)
	}
	return tally, rows.Err()
}
