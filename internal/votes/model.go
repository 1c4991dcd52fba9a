package votes

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyVoted indicates the voter has already cast a ballot in this election.
	ErrAlreadyVoted = errors.New("already voted in this election")
	// ErrElectionClosed indicates the election is not accepting ballots.
	ErrElectionClosed = errors.New("election is not open")
)

// Vote is an immutable ballot record. ReceiptHash binds the ballot to the
// ledger receipt without revealing the chosen candidate.
type Vote struct {
	ID          string    `json:"id" db:"id"`
	ElectionID  string    `json:"election_id" db:"election_id"`
	CandidateID string    `json:"candidate_id" db:"candidate_id"`
	VoterID     string    `json:"voter_id" db:"voter_id"`
	ReceiptHash string    `json:"receipt_hash" db:"receipt_hash"`
	CastAt      time.Time `json:"cast_at" db:"cast_at"`
}

// TallyEntry is one row of an election result.
type TallyEntry struct {
	CandidateID   string `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	Count         int64  `json:"count"`
}
