package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// resolveAssets runs the artwork source chain for one app id
func (r *Router) resolveAssets(w http.ResponseWriter, req *http.Request) {
	appID := mux.Vars(req)["app_id"]
	titleHint := req.URL.Query().Get("title")
	forceRefresh := boolQuery(req, "force_refresh", false)

	resolution, err := r.chain.ResolveAssets(req.Context(), appID, titleHint, forceRefresh)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve assets")
		return
	}
	respondJSON(w, http.StatusOK, resolution)
}

// prefetchAssets warms asset rows for a batch of app ids
func (r *Router) prefetchAssets(w http.ResponseWriter, req *http.Request) {
	var body struct {
		AppIDs       []string `json:"app_ids"`
		ForceRefresh bool     `json:"force_refresh"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if len(body.AppIDs) == 0 {
		respondError(w, http.StatusBadRequest, "app_ids is required")
		return
	}

	stats := r.chain.Prefetch(req.Context(), body.AppIDs, body.ForceRefresh)
	respondJSON(w, http.StatusOK, stats)
}
