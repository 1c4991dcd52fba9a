package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Stats aggregates the headline counters shown on the dashboard.
type Stats struct {
	TotalUsers     int64
	OpenElections  int64
	TotalElections int64
	VotesCast      int64
}

// RepositoryPort defines the aggregate queries behind the dashboard.
type RepositoryPort interface {
	Stats(ctx context.Context) (Stats, error)
}

// Repository provides PostgreSQL backed aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

// Stats runs the counter queries in one round trip.
func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE is_active),
			(SELECT COUNT(*) FROM elections WHERE is_published AND starts_at <= now() AND ends_at > now()),
			(SELECT COUNT(*) FROM elections),
			(SELECT COUNT(*) FROM votes)`).
		Scan(&stats.TotalUsers, &stats.OpenElections, &stats.TotalElections, &stats.VotesCast)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}
