// Package api exposes the single-pair scoring surface over HTTP. The core
// itself has no network surface; this is a thin adapter around the combiner.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nucoinc/internal/likelihood"
	"nucoinc/internal/logging"
)

// Server routes scoring requests to a combiner.
type Server struct {
	router   *chi.Mux
	combiner *likelihood.Combiner
	log      *logging.Logger
}

// NewServer builds the HTTP surface around a wired combiner.
func NewServer(combiner *likelihood.Combiner, log *logging.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		combiner: combiner,
		log:      log,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/v1/score", s.handleScore)
	s.router.Post("/v1/score/batch", s.handleScoreBatch)
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var pair likelihood.CandidatePair
	if err := json.NewDecoder(r.Body).Decode(&pair); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	score, err := s.combiner.ScorePair(pair)
	if err != nil {
		s.log.Error("score failed: %v", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleScoreBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pairs   []likelihood.CandidatePair `json:"pairs"`
		Workers int                        `json:"workers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	scores, err := s.combiner.ScoreBatch(r.Context(), req.Pairs, req.Workers)
	if err != nil {
		s.log.Error("batch score failed: %v", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scores": scores})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
