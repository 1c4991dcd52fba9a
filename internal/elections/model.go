package elections

import "time"

// Election represents a single ballot that voters can participate in.
type Election struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	StartsAt    time.Time `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time `json:"ends_at" db:"ends_at"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Open reports whether the election accepts votes at the given instant.
func (e Election) Open(now time.Time) bool {
	return e.IsPublished && !now.Before(e.StartsAt) && now.Before(e.EndsAt)
}

// Candidate represents one choice on an election's ballot.
type Candidate struct {
	ID         string    `json:"id" db:"id"`
	ElectionID string    `json:"election_id" db:"election_id"`
	Name       string    `json:"name" db:"name"`
	Vision     string    `json:"vision" db:"vision"`
	Position   int       `json:"position" db:"position"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
