// Package ledger mengirim tanda terima suara ke layanan ledger eksternal
// sehingga setiap suara punya jejak yang bisa diverifikasi di luar basis data.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Receipt is the append-only record submitted for every cast vote. It carries
// no candidate choice, only proof that a voter participated in an election.
type Receipt struct {
	VoteID     string    `json:"vote_id"`
	ElectionID string    `json:"election_id"`
	VoterID    string    `json:"voter_id"`
	Hash       string    `json:"hash"`
	CastAt     time.Time `json:"cast_at"`
}

// SubmitResult describes the ledger's acknowledgement.
type SubmitResult struct {
	Sequence int64  `json:"sequence"`
	Hash     string `json:"hash"`
}

// Client wraps interactions with the ledger API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ping checks if the remote ledger service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}
	return nil
}

// Submit appends a receipt to the ledger and returns its assigned sequence.
func (c *Client) Submit(ctx context.Context, receipt Receipt) (*SubmitResult, error) {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/receipts", c.baseURL), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ledger submit failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ledger submit: decode response: %w", err)
	}
	return &result, nil
}
