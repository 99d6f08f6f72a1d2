package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/signal-now/signal-agent/internal/db"
	"github.com/signal-now/signal-agent/internal/types"
)

// handleListWatchlist returns the user's watchlist. ?active=true filters to
// active entries.
func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	activeOnly := r.URL.Query().Get("active") == "true"

	targets, err := s.db.ListWatchTargets(r.Context(), userID, activeOnly)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if targets == nil {
		targets = []db.WatchTarget{}
	}
	writeJSON(w, http.StatusOK, targets)
}

// handleAddWatchTarget adds one entry to the user's watchlist.
func (s *Server) handleAddWatchTarget(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req types.AddWatchTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, extractValidationErrors(err), http.StatusBadRequest)
		return
	}

	target, err := s.db.AddWatchTarget(r.Context(), userID, string(req.TargetType), req.TargetValue)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, target)
}

// handleBulkAddWatchTargets adds several entries at once, e.g. promoting a
// discovery run's candidates.
func (s *Server) handleBulkAddWatchTargets(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req types.BulkAddWatchTargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, extractValidationErrors(err), http.StatusBadRequest)
		return
	}

	// Group by type so each group can be inserted with one statement shape.
	byType := make(map[string][]string)
	for _, t := range req.Targets {
		byType[string(t.TargetType)] = append(byType[string(t.TargetType)], t.TargetValue)
	}

	inserted := 0
	for targetType, values := range byType {
		n, err := s.db.AddWatchTargets(r.Context(), userID, targetType, values)
		inserted += n
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]int{"inserted": inserted})
}

// handleRemoveWatchTarget deletes a watchlist entry.
func (s *Server) handleRemoveWatchTarget(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid target id", http.StatusBadRequest)
		return
	}

	if err := s.db.RemoveWatchTarget(r.Context(), userID, targetID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleToggleWatchTarget pauses or resumes a watchlist entry.
func (s *Server) handleToggleWatchTarget(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid target id", http.StatusBadRequest)
		return
	}

	var req types.ToggleWatchTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.db.SetWatchTargetActive(r.Context(), userID, targetID, req.IsActive); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_active": req.IsActive})
}

// handleLogEngagement records an outreach action against a target.
func (s *Server) handleLogEngagement(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req types.EngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, extractValidationErrors(err), http.StatusBadRequest)
		return
	}

	entry, err := s.db.LogEngagement(r.Context(), userID, req.Target, req.Action, req.Message)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleListEngagements returns the user's engagement log.
func (s *Server) handleListEngagements(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	logs, err := s.db.ListEngagements(r.Context(), userID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []db.EngagementLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
