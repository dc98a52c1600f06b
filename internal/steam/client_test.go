package steam

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playdex/catalogd/internal/cache"
	"github.com/playdex/catalogd/internal/config"
)

// detailsServer records every appdetails call and answers with a success
// entry per requested id. With rejectMulti set, multi-id requests get a null
// body the way the real store sometimes does.
type detailsServer struct {
	mu          sync.Mutex
	batches     [][]string
	rejectMulti bool
}

func (s *detailsServer) handler(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("appids"), ",")
	s.mu.Lock()
	s.batches = append(s.batches, ids)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if s.rejectMulti && len(ids) > 1 {
		w.Write([]byte("null"))
		return
	}
	payload := map[string]any{}
	for _, id := range ids {
		payload[id] = map[string]any{
			"success": true,
			"data": map[string]any{
				"name": "App " + id,
				"type": "game",
			},
		}
	}
	json.NewEncoder(w).Encode(payload)
}

func (s *detailsServer) calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.batches))
	copy(out, s.batches)
	return out
}

func newBatchTestClient(serverURL string, batchSize int) *Client {
	return NewClient(config.SteamConfig{
		StoreAPIURL:     serverURL,
		RequestTimeout:  5 * time.Second,
		RequestsPerSec:  1000,
		AppDetailsBatch: batchSize,
	}, cache.New())
}

func TestGetSummariesChunksByBatchSize(t *testing.T) {
	srv := &detailsServer{}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	client := newBatchTestClient(ts.URL, 2)
	ids := []string{"440", "570", "730", "10", "20"}

	summaries := client.GetSummaries(context.Background(), ids)
	if len(summaries) != len(ids) {
		t.Fatalf("Expected %d summaries, got %d", len(ids), len(summaries))
	}
	if summaries["440"].Name != "App 440" {
		t.Errorf("Expected App 440, got %q", summaries["440"].Name)
	}

	calls := srv.calls()
	if len(calls) != 3 {
		t.Fatalf("Expected 3 batched requests for 5 ids at batch size 2, got %d", len(calls))
	}
	if len(calls[0]) != 2 || len(calls[1]) != 2 || len(calls[2]) != 1 {
		t.Errorf("Expected chunk sizes 2/2/1, got %d/%d/%d", len(calls[0]), len(calls[1]), len(calls[2]))
	}
}

func TestGetSummariesServedFromCacheOnRepeat(t *testing.T) {
	srv := &detailsServer{}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	client := newBatchTestClient(ts.URL, 10)
	ids := []string{"440", "570"}

	client.GetSummaries(context.Background(), ids)
	before := len(srv.calls())

	summaries := client.GetSummaries(context.Background(), ids)
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries from cache, got %d", len(summaries))
	}
	if after := len(srv.calls()); after != before {
		t.Errorf("Expected no extra requests on repeat, got %d -> %d", before, after)
	}
}

func TestGetSummariesFallsBackToSingleRequests(t *testing.T) {
	srv := &detailsServer{rejectMulti: true}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	client := newBatchTestClient(ts.URL, 10)
	ids := []string{"440", "570"}

	summaries := client.GetSummaries(context.Background(), ids)
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries via per-id fallback, got %d", len(summaries))
	}

	calls := srv.calls()
	if len(calls) != 3 {
		t.Fatalf("Expected 1 rejected batch plus 2 single requests, got %d", len(calls))
	}
	if len(calls[0]) != 2 {
		t.Errorf("Expected first request to carry both ids, got %v", calls[0])
	}
	for _, call := range calls[1:] {
		if len(call) != 1 {
			t.Errorf("Expected single-id fallback request, got %v", call)
		}
	}
}
