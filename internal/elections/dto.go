package elections

import "time"

// CreateElectionRequest carries form input for a new election.
type CreateElectionRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

// UpdateElectionRequest carries form input for editing an election.
type UpdateElectionRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	IsPublished bool      `json:"is_published"`
}

// AddCandidateRequest carries form input for a new ballot entry.
type AddCandidateRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Vision   string `json:"vision" validate:"max=2000"`
	Position int    `json:"position" validate:"gte=0,lte=100"`
}
