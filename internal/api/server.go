// Package api exposes the scoring engine over HTTP. The route layer is
// deliberately thin: it parses wire requests into profiles, calls the
// engine, and serializes results; all scoring behavior lives below it.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/credit-engine/internal/engine"
	"github.com/sells-group/credit-engine/internal/model"
	"github.com/sells-group/credit-engine/internal/monitoring"
	"github.com/sells-group/credit-engine/internal/predictor"
	"github.com/sells-group/credit-engine/internal/store"
)

// Request bodies larger than this are rejected before parsing.
const maxBodyBytes = 1 << 20

// Server wires the scoring engine, predictor gateway, and result store
// into an HTTP handler.
type Server struct {
	engine    *engine.Engine
	gateway   *predictor.Gateway
	store     store.Store
	collector *monitoring.Collector
}

// NewServer creates the API server. gateway and st may be nil when the
// deployment has no trained model or no persistence configured; the
// affected routes then answer 404.
func NewServer(eng *engine.Engine, gateway *predictor.Gateway, st store.Store) *Server {
	s := &Server{engine: eng, gateway: gateway, store: st}
	if st != nil {
		s.collector = monitoring.NewCollector(st)
	}
	return s
}

// Routes returns the chi router with all API routes mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/score", s.handleScore)
		r.Get("/results/{id}", s.handleGetResult)
		r.Get("/results", s.handleListResults)
		r.Get("/applicants/{id}/latest", s.handleLatestResult)
		r.Get("/model", s.handleModelInfo)
		r.Post("/model/invalidate", s.handleModelInvalidate)
		r.Get("/metrics", s.handleMetrics)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScore parses a financial profile, scores it, and optionally
// persists the result when an applicant_id is supplied. Parsing is the
// only step that can fail a request; scoring itself always answers.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	profile, err := model.ParseProfile(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "request body must be a JSON financial profile object")
		return
	}

	result := s.engine.ComputeScore(r.Context(), profile)

	payload := scoreResponse{
		Result:     result,
		ScoreRange: model.ScoreRange(result.CreditScore),
	}

	if applicantID := r.URL.Query().Get("applicant_id"); applicantID != "" && s.store != nil {
		stored, err := s.store.SaveResult(r.Context(), applicantID, result)
		if err != nil {
			// Persistence is best-effort; the caller still gets a score.
			zap.L().Error("api: save result failed",
				zap.String("applicant_id", applicantID),
				zap.Error(err),
			)
		} else {
			payload.ResultID = stored.ID
		}
	}

	respondData(w, http.StatusOK, payload)
}

type scoreResponse struct {
	Result     *model.ScoreResult `json:"result"`
	ScoreRange string             `json:"score_range"`
	ResultID   string             `json:"result_id,omitempty"`
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "result persistence is not configured")
		return
	}

	id := chi.URLParam(r, "id")
	stored, err := s.store.GetResult(r.Context(), id)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "result not found")
			return
		}
		zap.L().Error("api: get result failed", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	respondData(w, http.StatusOK, stored)
}

func (s *Server) handleLatestResult(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "result persistence is not configured")
		return
	}

	applicantID := chi.URLParam(r, "id")
	stored, err := s.store.LatestResult(r.Context(), applicantID)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "no results for applicant")
			return
		}
		zap.L().Error("api: latest result failed", zap.String("applicant_id", applicantID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	respondData(w, http.StatusOK, stored)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "result persistence is not configured")
		return
	}

	filter := store.ResultFilter{
		ApplicantID: r.URL.Query().Get("applicant_id"),
		Method:      model.Method(r.URL.Query().Get("method")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	results, err := s.store.ListResults(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list results failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	respondData(w, http.StatusOK, results)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	if s.gateway == nil {
		respondError(w, http.StatusNotFound, "no trained model configured")
		return
	}
	respondData(w, http.StatusOK, s.gateway.ModelInfo())
}

func (s *Server) handleModelInvalidate(w http.ResponseWriter, _ *http.Request) {
	if s.gateway == nil {
		respondError(w, http.StatusNotFound, "no trained model configured")
		return
	}
	s.gateway.Invalidate()
	respondData(w, http.StatusOK, map[string]string{"message": "model cache cleared"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.collector == nil {
		respondError(w, http.StatusNotFound, "result persistence is not configured")
		return
	}

	lookback := 24
	if v := r.URL.Query().Get("lookback_hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			lookback = n
		}
	}

	snap, err := s.collector.Collect(r.Context(), lookback)
	if err != nil {
		zap.L().Error("api: collect metrics failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "metrics collection failed")
		return
	}
	respondData(w, http.StatusOK, snap)
}

// envelope matches the {success, data|error} wire shape consumers expect.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}
