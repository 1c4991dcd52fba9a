package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmitPostsReceipt(t *testing.T) {
	var got Receipt
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/receipts", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SubmitResult{Sequence: 42, Hash: got.Hash})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	receipt := Receipt{
		VoteID:     "v1",
		ElectionID: "e1",
		VoterID:    "u1",
		Hash:       "abc123",
		CastAt:     time.Now().UTC().Truncate(time.Second),
	}

	result, err := client.Submit(context.Background(), receipt)
	require.NoError(t, err)
	require.EqualValues(t, 42, result.Sequence)
	require.Equal(t, "abc123", result.Hash)
	require.Equal(t, receipt.VoteID, got.VoteID)
	require.Equal(t, receipt.VoterID, got.VoterID)
}

func TestSubmitSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ledger sealed", http.StatusConflict)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Submit(context.Background(), Receipt{VoteID: "v1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "409")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, time.Second).Ping(context.Background()))
}
