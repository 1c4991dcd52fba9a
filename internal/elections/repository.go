package elections

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pemira-app/pemira/internal/platform/db"
	"github.com/pemira-app/pemira/internal/shared"
)

// RepositoryPort defines data access methods for elections.
type RepositoryPort interface {
	List(ctx context.Context, publishedOnly bool) ([]Election, error)
	FindByID(ctx context.Context, id string) (*Election, error)
	Candidates(ctx context.Context, electionID string) ([]Candidate, error)
	Create(ctx context.Context, e Election) error
	Modify(ctx context.Context, id string, fn func(*Election)) error
	AddCandidate(ctx context.Context, c Candidate) error
	Count(ctx context.Context, publishedOnly bool) (int, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns elections, optionally restricted to published ones.
func (r *Repository) List(ctx context.Context, publishedOnly bool) ([]Election, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, starts_at, ends_at, is_published, created_by, created_at, updated_at
		 FROM elections WHERE ($1 = false OR is_published) ORDER BY starts_at DESC`, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Election
	for rows.Next() {
		var e Election
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt, &e.IsPublished, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// FindByID fetches a single election.
func (r *Repository) FindByID(ctx context.Context, id string) (*Election, error) {
	var e Election
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, starts_at, ends_at, is_published, created_by, created_at, updated_at
		 FROM elections WHERE id = $1`, id).
		Scan(&e.ID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt, &e.IsPublished, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Candidates returns the ballot entries for an election in display order.
func (r *Repository) Candidates(ctx context.Context, electionID string) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, election_id, name, vision, position, created_at
		 FROM candidates WHERE election_id = $1 ORDER BY position, name`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Vision, &c.Position, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Create inserts a new election.
func (r *Repository) Create(ctx context.Context, e Election) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO elections (id, title, description, starts_at, ends_at, is_published, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
		e.ID, e.Title, e.Description, e.StartsAt, e.EndsAt, e.IsPublished, e.CreatedBy)
	return err
}

// Modify loads an election inside a transaction, applies fn, and writes the
// result back. The row is locked for the duration so concurrent edits
// serialize instead of overwriting each other.
func (r *Repository) Modify(ctx context.Context, id string, fn func(*Election)) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var e Election
		err := tx.QueryRow(ctx,
			`SELECT id, title, description, starts_at, ends_at, is_published, created_by, created_at, updated_at
			 FROM elections WHERE id = $1 FOR UPDATE`, id).
			Scan(&e.ID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt, &e.IsPublished, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		fn(&e)
		_, err = tx.Exec(ctx,
			`UPDATE elections SET title = $2, description = $3, starts_at = $4, ends_at = $5, is_published = $6, updated_at = NOW()
			 WHERE id = $1`,
			e.ID, e.Title, e.Description, e.StartsAt, e.EndsAt, e.IsPublished)
		return err
	})
}

// AddCandidate inserts a ballot entry. When no position is supplied the next
// slot is assigned inside a transaction so concurrent additions stay ordered.
func (r *Repository) AddCandidate(ctx context.Context, c Candidate) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		position := c.Position
		if position <= 0 {
			if err := tx.QueryRow(ctx,
				`SELECT COALESCE(MAX(position), 0) + 1 FROM candidates WHERE election_id = $1`,
				c.ElectionID).Scan(&position); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO candidates (id, election_id, name, vision, position, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			c.ID, c.ElectionID, c.Name, c.Vision, position)
		return err
	})
}

// Count returns the number of elections.
func (r *Repository) Count(ctx context.Context, publishedOnly bool) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM elections WHERE ($1 = false OR is_published)`, publishedOnly).Scan(&total)
	return total, err
}

var _ RepositoryPort = (*Repository)(nil)
