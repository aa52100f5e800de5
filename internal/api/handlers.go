package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/diligent-ai/diligent/internal/core"
)

// handleCreateAnalysis fans the submitted text out to the selected
// backends and returns the consensus report. Input validation happens
// before any backend is invoked.
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req createAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var descriptors []core.BackendDescriptor
	if len(req.Backends) == 0 {
		descriptors = s.defaults()
	} else {
		for _, name := range req.Backends {
			d, ok := s.descriptor(name)
			if !ok {
				respondError(w, http.StatusUnprocessableEntity, "unknown backend: "+name)
				return
			}
			descriptors = append(descriptors, d)
		}
	}

	report, err := s.analyzer.Run(r.Context(), core.AnalysisRequest{
		Text:     req.Text,
		Backends: descriptors,
	})
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	if s.store != nil {
		if err := s.store.SaveAnalysis(r.Context(), report); err != nil {
			s.logger.Warn("failed to persist analysis", "id", report.ID, "error", err)
		}
	}

	respondJSON(w, http.StatusCreated, report)
}

// handleGetAnalysis loads a stored report by ID.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "result persistence is disabled")
		return
	}

	id := core.AnalysisID(chi.URLParam(r, "analysisID"))
	report, err := s.store.LoadAnalysis(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleListAnalyses returns stored reports, newest first.
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondJSON(w, http.StatusOK, []*core.AnalysisReport{})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	reports, err := s.store.ListAnalyses(r.Context(), limit)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if reports == nil {
		reports = []*core.AnalysisReport{}
	}
	respondJSON(w, http.StatusOK, reports)
}

// handleCreateDebate runs a debate to its terminal phase. A failed
// debate still returns its state (with 502) so clients can inspect the
// partial transcript.
func (s *Server) handleCreateDebate(w http.ResponseWriter, r *http.Request) {
	var req createDebateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cfg, errMsg := s.buildDebateConfig(req)
	if errMsg != "" {
		respondError(w, http.StatusUnprocessableEntity, errMsg)
		return
	}

	state, err := s.debates.Run(r.Context(), cfg)

	if s.store != nil && state != nil && state.Phase.Terminal() {
		if saveErr := s.store.SaveDebate(r.Context(), state); saveErr != nil {
			s.logger.Warn("failed to persist debate", "id", state.ID, "error", saveErr)
		}
	}

	if err != nil {
		status := http.StatusBadGateway
		if core.IsCategory(err, core.ErrCatValidation) ||
			(state != nil && state.FailedAt == core.PhaseSetup) {
			status = http.StatusUnprocessableEntity
		}
		respondJSON(w, status, debateResponse{state})
		return
	}

	respondJSON(w, http.StatusCreated, debateResponse{state})
}

// handleGetDebate loads a stored debate by ID.
func (s *Server) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "result persistence is disabled")
		return
	}

	id := core.DebateID(chi.URLParam(r, "debateID"))
	state, err := s.store.LoadDebate(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, debateResponse{state})
}

func (s *Server) buildDebateConfig(req createDebateRequest) (core.DebateConfig, string) {
	cfg := core.DebateConfig{Topic: req.Topic, Rounds: req.Rounds}

	roles := []struct {
		name string
		dst  *core.BackendDescriptor
	}{
		{req.For, &cfg.For},
		{req.Against, &cfg.Against},
		{req.Judge, &cfg.Judge},
	}

	defaults := s.defaults()
	for i, role := range roles {
		name := role.name
		if name == "" {
			// Positional fallback: the first three default backends
			// take for, against, and judge in order.
			if i < len(defaults) {
				*role.dst = defaults[i]
				continue
			}
			return cfg, "not enough configured backends for a debate"
		}
		d, ok := s.descriptor(name)
		if !ok {
			return cfg, "unknown backend: " + name
		}
		*role.dst = d
	}

	if cfg.Rounds == 0 {
		cfg.Rounds = 2
	}
	return cfg, ""
}
