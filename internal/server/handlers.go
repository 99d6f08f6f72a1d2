package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/signal-now/signal-agent/internal/agent"
	"github.com/signal-now/signal-agent/internal/discovery"
	"github.com/signal-now/signal-agent/internal/enrich"
	"github.com/signal-now/signal-agent/internal/types"
)

// analyzeRequest is the body for POST /analyze. Goal overrides the profile
// goal for this run only.
type analyzeRequest struct {
	Target string `json:"target"`
	Goal   string `json:"goal,omitempty"`
}

// handleAnalyze runs a single-target assessment for the authenticated user.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Target == "" {
		http.Error(w, "target is required", http.StatusBadRequest)
		return
	}

	user, err := s.requireSourceIdentity(r.Context(), w, userID)
	if err != nil {
		return
	}

	goal := req.Goal
	if goal == "" {
		goal = user.Goal
	}

	result, err := s.pipeline.Analyze(r.Context(), agent.AnalyzeRequest{
		UserID:       userID,
		SourceHandle: user.GithubHandle,
		Target:       req.Target,
		Goal:         goal,
	})
	if err != nil {
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAnalyzeWatchlist assesses every active watch target and returns
// results sorted by decision priority.
func (s *Server) handleAnalyzeWatchlist(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	user, err := s.requireSourceIdentity(r.Context(), w, userID)
	if err != nil {
		return
	}

	identifiers, resolveErrors, err := s.watchlistIdentifiers(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(identifiers) == 0 && len(resolveErrors) == 0 {
		writeJSON(w, http.StatusOK, &discovery.Outcome{})
		return
	}

	outcome, err := s.batch.Assess(r.Context(), userID, user.GithubHandle, user.Goal, identifiers)
	if err != nil {
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}
	outcome.Errors = append(outcome.Errors, resolveErrors...)

	writeJSON(w, http.StatusOK, outcome)
}

// handleAnalyzeWatchlistStream assesses watch targets one at a time,
// streaming each result as a server-sent event so slow LLM calls do not
// leave the client staring at a spinner.
func (s *Server) handleAnalyzeWatchlistStream(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	user, err := s.requireSourceIdentity(r.Context(), w, userID)
	if err != nil {
		return
	}

	identifiers, resolveErrors, err := s.watchlistIdentifiers(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for _, re := range resolveErrors {
		sse.WriteError(re.Target + ": " + re.Message)
	}

	// Fetch the requester's own activity once for the whole run.
	myEvents, err := s.github.FetchEvents(r.Context(), user.GithubHandle)
	if err != nil {
		myEvents = []types.ActivityEvent{}
	}

	assessed := 0
	for _, identifier := range identifiers {
		sse.WriteEvent("progress", map[string]string{"target": identifier}) //nolint:errcheck

		result, err := s.pipeline.Analyze(r.Context(), agent.AnalyzeRequest{
			UserID:          userID,
			SourceHandle:    user.GithubHandle,
			Target:          identifier,
			Goal:            user.Goal,
			RequesterEvents: myEvents,
		})
		if err != nil {
			sse.WriteError(identifier + ": " + err.Error())
			continue
		}
		assessed++
		if err := sse.WriteEvent("result", result); err != nil {
			// Client went away; stop burning quota.
			return
		}
	}

	sse.WriteComplete(assessed, len(identifiers))
}

// discoverRequest is the body for POST /discover.
type discoverRequest struct {
	Targets []discovery.Target `json:"targets"`
	Goal    string             `json:"goal,omitempty"`
	Limit   int                `json:"limit,omitempty"`
	Enrich  bool               `json:"enrich,omitempty"` // fetch candidate websites
}

// discoveredCandidate pairs a ranked candidate with its optional website
// summary.
type discoveredCandidate struct {
	types.Candidate
	Website *enrich.WebsiteSummary `json:"website,omitempty"`
}

// handleDiscover resolves repos and orgs into ranked candidates.
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Targets) == 0 {
		http.Error(w, "at least one target is required", http.StatusBadRequest)
		return
	}

	goal := req.Goal
	if goal == "" {
		if user, err := s.userService.GetProfile(r.Context(), userID); err == nil {
			goal = user.Goal
		}
	}

	candidates, warnings := s.resolver.Discover(r.Context(), req.Targets, goal, req.Limit)

	out := make([]discoveredCandidate, 0, len(candidates))
	for _, c := range candidates {
		dc := discoveredCandidate{Candidate: c}
		if req.Enrich && c.HasWebsite() {
			if summary, err := enrich.Website(r.Context(), c.Website, nil); err == nil {
				dc.Website = summary
			}
		}
		out = append(out, dc)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"candidates": out,
		"errors":     warnings,
	})
}

// handleListHistory returns recent assessment history for the user.
// Optional query params: target, limit.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := s.db.ListHistory(r.Context(), userID, r.URL.Query().Get("target"), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []types.AssessmentHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// requireSourceIdentity loads the user and rejects the request if they have
// not set their own activity-source handle yet. Writes the error response
// itself; callers bail out on non-nil error.
func (s *Server) requireSourceIdentity(ctx context.Context, w http.ResponseWriter, userID uuid.UUID) (*types.User, error) {
	user, err := s.userService.GetProfile(ctx, userID)
	if err != nil {
		http.Error(w, err.Error(), HTTPStatus(err))
		return nil, err
	}
	if user.GithubHandle == "" {
		err := &agent.MissingConfigurationError{What: "source identity (github handle)"}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, err
	}
	return user, nil
}

// watchlistIdentifiers expands the user's active watchlist into analyzable
// identifiers: usernames and repo paths pass through, orgs resolve to their
// recent contributors.
func (s *Server) watchlistIdentifiers(ctx context.Context, userID uuid.UUID) ([]string, []types.TargetError, error) {
	targets, err := s.db.ListWatchTargets(ctx, userID, true)
	if err != nil {
		return nil, nil, err
	}

	var identifiers []string
	var orgTargets []discovery.Target
	seen := make(map[string]bool)

	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			identifiers = append(identifiers, id)
		}
	}

	for _, t := range targets {
		switch types.TargetType(t.TargetType) {
		case types.TargetOrganization:
			orgTargets = append(orgTargets, discovery.Target{Type: types.TargetOrganization, Value: t.TargetValue})
		default:
			add(t.TargetValue)
		}
	}

	var warnings []types.TargetError
	if len(orgTargets) > 0 {
		candidates, resolveErrors := s.resolver.Resolve(ctx, orgTargets)
		warnings = resolveErrors
		for _, c := range candidates {
			add(c.Handle)
		}
	}

	return identifiers, warnings, nil
}
