package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/playdex/catalogd/internal/query"
)

// listCatalog returns a page of catalog items
func (r *Router) listCatalog(w http.ResponseWriter, req *http.Request) {
	opts := query.ListOptions{
		Limit:          intQuery(req, "limit", 50),
		Offset:         intQuery(req, "offset", 0),
		Sort:           req.URL.Query().Get("sort"),
		Scope:          req.URL.Query().Get("scope"),
		LibraryAppIDs:  csvQuery(req, "app_ids"),
		PriorityAppIDs: csvQuery(req, "priority"),
	}

	total, items, err := r.query.List(opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list catalog")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total": total,
		"items": items,
	})
}

// searchCatalog runs a ranked catalog search
func (r *Router) searchCatalog(w http.ResponseWriter, req *http.Request) {
	q := strings.TrimSpace(req.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter q")
		return
	}

	opts := query.SearchOptions{
		Query:           q,
		Limit:           intQuery(req, "limit", 30),
		Offset:          intQuery(req, "offset", 0),
		IncludeDLC:      boolQuery(req, "include_dlc", false),
		RankingMode:     req.URL.Query().Get("ranking"),
		MustHaveArtwork: boolQuery(req, "must_have_artwork", false),
	}

	total, items, err := r.query.Search(req.Context(), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"query": q,
		"total": total,
		"items": items,
	})
}

// getTitleDetail returns the full detail payload for one title
func (r *Router) getTitleDetail(w http.ResponseWriter, req *http.Request) {
	appID := mux.Vars(req)["app_id"]

	detail, err := r.query.GetDetail(req.Context(), appID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load title")
		return
	}
	if detail == nil {
		respondError(w, http.StatusNotFound, "Title not found")
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// getClassification returns type and tag signals for one title
func (r *Router) getClassification(w http.ResponseWriter, req *http.Request) {
	appID := mux.Vars(req)["app_id"]

	classification, err := r.query.GetClassification(appID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load title")
		return
	}
	if classification == nil {
		respondError(w, http.StatusNotFound, "Title not found")
		return
	}
	respondJSON(w, http.StatusOK, classification)
}

// getCoverage reports metadata, asset, and mapping completeness counts
func (r *Router) getCoverage(w http.ResponseWriter, req *http.Request) {
	coverage, err := r.query.GetCoverage()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute coverage")
		return
	}
	respondJSON(w, http.StatusOK, coverage)
}

// getTopRanked returns the current popularity-ordered slice of the catalog
func (r *Router) getTopRanked(w http.ResponseWriter, req *http.Request) {
	limit := intQuery(req, "limit", 20)
	offset := intQuery(req, "offset", 0)

	total, items, err := r.query.ListTopRanked(req.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to rank catalog")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total": total,
		"items": items,
	})
}

// csvQuery splits a comma-separated query parameter into trimmed values
func csvQuery(req *http.Request, key string) []string {
	raw := strings.TrimSpace(req.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
