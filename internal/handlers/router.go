package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/playdex/catalogd/internal/assets"
	"github.com/playdex/catalogd/internal/complete"
	"github.com/playdex/catalogd/internal/ingest"
	"github.com/playdex/catalogd/internal/query"
	"github.com/playdex/catalogd/internal/websocket"
)

// Router wraps the mux router and the catalog services
type Router struct {
	*mux.Router
	query    *query.Service
	pipeline *ingest.Pipeline
	chain    *assets.Chain
	enforcer *complete.Enforcer
	hub      *websocket.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(q *query.Service, p *ingest.Pipeline, chain *assets.Chain, enforcer *complete.Enforcer, hub *websocket.Hub) *Router {
	r := &Router{
		Router:   mux.NewRouter(),
		query:    q,
		pipeline: p,
		chain:    chain,
		enforcer: enforcer,
		hub:      hub,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Catalog read routes
	api := r.PathPrefix("/api/index").Subrouter()
	api.HandleFunc("/catalog", r.listCatalog).Methods("GET")
	api.HandleFunc("/search", r.searchCatalog).Methods("GET")
	api.HandleFunc("/games/{app_id}", r.getTitleDetail).Methods("GET")
	api.HandleFunc("/games/{app_id}/classification", r.getClassification).Methods("GET")
	api.HandleFunc("/coverage", r.getCoverage).Methods("GET")
	api.HandleFunc("/ranking/top", r.getTopRanked).Methods("GET")

	// Asset routes
	api.HandleFunc("/assets/{app_id}", r.resolveAssets).Methods("GET")
	api.HandleFunc("/assets/prefetch", r.prefetchAssets).Methods("POST")

	// Ingest control routes
	api.HandleFunc("/ingest/full", r.ingestFull).Methods("POST")
	api.HandleFunc("/ingest/resume", r.ingestResume).Methods("POST")
	api.HandleFunc("/ingest/rebuild", r.ingestRebuild).Methods("POST")
	api.HandleFunc("/ingest/complete", r.runCompleteness).Methods("POST")
	api.HandleFunc("/ingest/status", r.getIngestStatus).Methods("GET")
	api.HandleFunc("/ingest/ws", r.hub.ServeWS)

	// Metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "catalogd",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// intQuery reads an integer query parameter with a fallback
func intQuery(req *http.Request, key string, fallback int) int {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// boolQuery reads a boolean query parameter with a fallback
func boolQuery(req *http.Request, key string, fallback bool) bool {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
