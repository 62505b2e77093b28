package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/logging"
	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/skilltree"
	"github.com/mezotv/skill-tree/internal/suggest"
)

// SuggestRequest is the body of POST /api/ai/suggest-jobs.
type SuggestRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

// JobRequest is the body of POST /api/ai/job.
type JobRequest struct {
	Job string `json:"job" validate:"required,max=100"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"model":  s.deps.Model,
	})
}

// suggestJobs streams cumulative suggestion envelopes as server-sent
// events. Headers are committed with the first envelope, so a failure
// before it still gets a JSON error status.
func (s *Server) suggestJobs(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Query is required")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, "Query is required")
		return
	}
	if err := validateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid query", Message: err.Error()})
		return
	}
	if s.deps.Suggest == nil {
		respondError(w, http.StatusServiceUnavailable, "suggestions are not configured")
		return
	}

	rc := http.NewResponseController(w)
	started := false
	envelopes := 0
	err := s.deps.Suggest.Stream(r.Context(), req.Query, func(env suggest.Envelope) error {
		if !started {
			h := w.Header()
			h.Set("Content-Type", "text/event-stream")
			h.Set("Cache-Control", "no-cache")
			h.Set("Connection", "keep-alive")
			h.Set("X-Accel-Buffering", "no")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := suggest.WriteEvent(w, env); err != nil {
			return err
		}
		envelopes++
		s.deps.Metrics.EnvelopesStreamed.Inc()
		return rc.Flush()
	})

	switch {
	case err == nil:
		logger.Debug("suggestions streamed", "query", req.Query, "envelopes", envelopes)
	case r.Context().Err() != nil:
		logger.Debug("client went away during suggestion stream", "envelopes", envelopes)
	case started:
		logger.Warn("suggestion stream ended early", "err", err, "envelopes", envelopes)
	case errors.Is(err, suggest.ErrNoSuggestions):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("suggestion generation failed", "err", err)
		respondError(w, statusFor(err), "failed to generate suggestions")
	}
}

// job generates the skill tree for an occupation.
func (s *Server) job(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return
	}
	req.Job = strings.TrimSpace(req.Job)
	if err := validateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return
	}
	if s.deps.Trees == nil {
		respondError(w, http.StatusServiceUnavailable, "skill trees are not configured")
		return
	}

	g, err := s.deps.Trees.Fetch(r.Context(), req.Job)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, g)
	case errors.Is(err, skilltree.ErrEmptyOccupation):
		respondError(w, http.StatusBadRequest, err.Error())
	case r.Context().Err() != nil:
		logger.Debug("client went away during skill tree generation")
	default:
		logger.Error("skill tree generation failed", "job", req.Job, "err", err)
		respondJSON(w, statusFor(err), errorBody{Error: "failed to generate skill tree", Message: err.Error()})
	}
}

// layoutGraph positions a posted skill graph. The query flags root, ages and
// prereqs override the configured layout switches.
func (s *Server) layoutGraph(w http.ResponseWriter, r *http.Request) {
	cfg := s.deps.Layout
	for name, dst := range map[string]*bool{
		"root":    &cfg.Root,
		"ages":    &cfg.AgeMarkers,
		"prereqs": &cfg.PrerequisiteEdges,
	} {
		v := r.URL.Query().Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid query parameter", Message: name + " must be a boolean"})
			return
		}
		*dst = b
	}

	var g skillgraph.Graph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return
	}

	res, err := layout.Compute(g, cfg)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid skill graph", Message: err.Error()})
		return
	}
	s.deps.Metrics.LayoutNodes.Observe(float64(len(res.Nodes)))
	respondJSON(w, http.StatusOK, res)
}
