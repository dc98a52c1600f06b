package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
)

type ingestRequest struct {
	Token    string   `json:"token"`
	MaxItems int      `json:"max_items"`
	Scope    []string `json:"scope"`
}

// ingestFull starts a full catalog ingest in the background
func (r *Router) ingestFull(w http.ResponseWriter, req *http.Request) {
	r.startIngest(w, req, func(ctx context.Context, body ingestRequest) error {
		_, err := r.pipeline.IngestFull(ctx, body.MaxItems)
		return err
	})
}

// ingestResume resumes an interrupted ingest from a cursor token
func (r *Router) ingestResume(w http.ResponseWriter, req *http.Request) {
	r.startIngest(w, req, func(ctx context.Context, body ingestRequest) error {
		_, err := r.pipeline.IngestResume(ctx, body.Token, body.MaxItems)
		return err
	})
}

// ingestRebuild forces a full re-fetch of provider data
func (r *Router) ingestRebuild(w http.ResponseWriter, req *http.Request) {
	r.startIngest(w, req, func(ctx context.Context, body ingestRequest) error {
		_, err := r.pipeline.IngestRebuild(ctx, body.MaxItems)
		return err
	})
}

// startIngest validates the request, rejects concurrent runs, and launches
// the pipeline detached from the request context.
func (r *Router) startIngest(w http.ResponseWriter, req *http.Request, run func(context.Context, ingestRequest) error) {
	var body ingestRequest
	if req.Body != nil {
		// an empty body means defaults
		json.NewDecoder(req.Body).Decode(&body)
	}

	if r.pipeline.Running() {
		respondError(w, http.StatusConflict, "An ingest job is already running")
		return
	}

	go func() {
		if err := run(context.Background(), body); err != nil {
			log.Printf("⚠️ Ingest run failed: %v", err)
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

// runCompleteness runs the completeness enforcer over the requested scope
func (r *Router) runCompleteness(w http.ResponseWriter, req *http.Request) {
	var body ingestRequest
	if req.Body != nil {
		json.NewDecoder(req.Body).Decode(&body)
	}

	stats := r.enforcer.Enforce(req.Context(), body.Scope, body.MaxItems)
	respondJSON(w, http.StatusOK, stats)
}

// getIngestStatus reports the latest job, cursor, and table totals
func (r *Router) getIngestStatus(w http.ResponseWriter, req *http.Request) {
	status, err := r.query.GetIngestStatus()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read ingest status")
		return
	}
	respondJSON(w, http.StatusOK, status)
}
