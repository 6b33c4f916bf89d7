package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/services"
	"github.com/desertthunder/traxyt/internal/shared"
)

const (
	maxRequestBody    = 4 << 20
	defaultListLimit  = 20
	errInProgressText = "conversion already in progress"
)

// Conversions is the slice of [tasks.Converter] the API drives.
type Conversions interface {
	Start(ctx context.Context, tracks []models.Track) (string, error)
	Cancel() bool
	State() models.ConversionState
}

// Results reads persisted conversion results.
type Results interface {
	Latest() (*models.StoredResult, error)
	List(limit int) ([]*models.StoredResult, error)
}

// API serves the JSON endpoints under /api.
type API struct {
	conversions Conversions
	results     Results
	searcher    services.Searcher
	logger      *log.Logger
}

// NewAPI creates an [API]. results and searcher may be nil; their endpoints then answer 503.
func NewAPI(conversions Conversions, results Results, searcher services.Searcher, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &API{conversions: conversions, results: results, searcher: searcher, logger: logger}
}

// Register mounts every API route on router.
func (a *API) Register(router Router) {
	router.Handle(http.MethodPost, "/api/conversions", http.HandlerFunc(a.startConversion))
	router.Handle(http.MethodDelete, "/api/conversions", http.HandlerFunc(a.cancelConversion))
	router.Handle(http.MethodGet, "/api/state", http.HandlerFunc(a.state))
	router.Handle(http.MethodGet, "/api/results/last", http.HandlerFunc(a.lastResult))
	router.Handle(http.MethodGet, "/api/results", http.HandlerFunc(a.listResults))
	router.Handle(http.MethodGet, "/api/search", http.HandlerFunc(a.search))
}

type startRequest struct {
	Tracks []models.Track `json:"tracks"`
}

type startResponse struct {
	Started bool   `json:"started"`
	RunID   string `json:"runId"`
}

type lastResultResponse struct {
	Result    models.ConversionResult `json:"result"`
	Timestamp int64                   `json:"timestamp"`
	ID        string                  `json:"id"`
}

type searchResponse struct {
	Query      string                  `json:"query"`
	Match      *models.VideoCandidate  `json:"match"`
	URL        string                  `json:"url,omitempty"`
	Candidates []models.VideoCandidate `json:"candidates,omitempty"`
}

func (a *API) startConversion(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Tracks == nil {
		writeError(w, http.StatusBadRequest, "tracks is required")
		return
	}

	runID, err := a.conversions.Start(r.Context(), req.Tracks)
	if errors.Is(err, shared.ErrConversionInProgress) {
		writeError(w, http.StatusConflict, errInProgressText)
		return
	} else if err != nil {
		a.logger.Error("failed to start conversion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start conversion")
		return
	}

	a.logger.Info("conversion started", "run", runID, "tracks", len(req.Tracks))
	writeJSON(w, http.StatusAccepted, startResponse{Started: true, RunID: runID})
}

func (a *API) cancelConversion(w http.ResponseWriter, r *http.Request) {
	if !a.conversions.Cancel() {
		writeError(w, http.StatusConflict, "no conversion is running")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"canceled": true})
}

func (a *API) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.conversions.State())
}

func (a *API) lastResult(w http.ResponseWriter, r *http.Request) {
	if a.results == nil {
		writeError(w, http.StatusServiceUnavailable, "result storage unavailable")
		return
	}

	stored, err := a.results.Latest()
	if errors.Is(err, shared.ErrResultNotFound) {
		writeError(w, http.StatusNotFound, "no stored result")
		return
	} else if err != nil {
		a.logger.Error("failed to load last result", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load result")
		return
	}

	writeJSON(w, http.StatusOK, lastResultResponse{
		Result:    stored.Result,
		Timestamp: stored.Timestamp(),
		ID:        stored.ID,
	})
}

func (a *API) listResults(w http.ResponseWriter, r *http.Request) {
	if a.results == nil {
		writeError(w, http.StatusServiceUnavailable, "result storage unavailable")
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	stored, err := a.results.List(limit)
	if err != nil {
		a.logger.Error("failed to list results", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	if stored == nil {
		stored = []*models.StoredResult{}
	}
	writeJSON(w, http.StatusOK, stored)
}

func (a *API) search(w http.ResponseWriter, r *http.Request) {
	if a.searcher == nil {
		writeError(w, http.StatusServiceUnavailable, "search unavailable")
		return
	}

	params := r.URL.Query()
	query := strings.TrimSpace(params.Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	target := 0
	if raw := params.Get("duration"); raw != "" {
		target = shared.ParseDuration(raw)
	}

	resp := searchResponse{Query: query}
	if all, _ := strconv.ParseBool(params.Get("all")); all {
		candidates, err := a.searcher.Candidates(r.Context(), query)
		if err != nil && !errors.Is(err, shared.ErrNoCandidates) {
			a.logger.Warn("candidate search failed", "query", query, "error", err)
			writeError(w, http.StatusBadGateway, "search failed")
			return
		}
		resp.Candidates = candidates
		resp.Match = pick(candidates, target)
	} else {
		resp.Match = a.searcher.Resolve(r.Context(), query, target)
	}

	if resp.Match == nil {
		writeError(w, http.StatusNotFound, "no match for "+query)
		return
	}
	resp.URL = services.WatchURL(resp.Match.ID)
	writeJSON(w, http.StatusOK, resp)
}

// pick mirrors the resolver's choice over an already fetched candidate list.
func pick(candidates []models.VideoCandidate, target int) *models.VideoCandidate {
	if len(candidates) == 0 {
		return nil
	}
	if target <= 0 {
		return &candidates[0]
	}
	if best, ok := services.BestDurationMatch(candidates, target); ok {
		return &best
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
