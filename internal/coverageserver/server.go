// Package coverageserver serves coverage searches over HTTP as JSON.
package coverageserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/dice_coverage/config"
	"github.com/domino14/dice_coverage/internal/coverage"
	"github.com/domino14/dice_coverage/internal/dice"
	"github.com/domino14/dice_coverage/internal/report"
	"github.com/domino14/dice_coverage/internal/stores"
)

const defaultHistoryLimit = 20

// HistoryStore is the part of the run history the server needs.
type HistoryStore interface {
	Save(ctx context.Context, run stores.Run) (int64, error)
	Recent(ctx context.Context, limit int) ([]stores.Run, error)
}

type Server struct {
	Trials    int
	Tolerance float64
	Workers   int
	// History may be nil, in which case runs aren't recorded.
	History HistoryStore
	// NewSource returns the random source for one request. Defaults to an
	// entropy-seeded PCG.
	NewSource func() dice.Source

	once sync.Once
	mux  *http.ServeMux
}

type CoverageRequest struct {
	Probabilities []float64 `json:"probabilities"`
}

type CoverageResponse struct {
	Groups    []report.GroupReport `json:"groups"`
	Deviation float64              `json:"deviation"`
	Trials    int                  `json:"trials"`
	Successes int                  `json:"successes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.once.Do(func() {
		s.mux = http.NewServeMux()
		s.mux.HandleFunc("POST /coverage", s.coverage)
		s.mux.HandleFunc("GET /history", s.history)
	})
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("writing-response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) trials() int {
	if s.Trials == 0 {
		return coverage.DefaultTrials
	}
	return s.Trials
}

func (s *Server) searcher() (*coverage.Searcher, error) {
	var src dice.Source
	if s.NewSource != nil {
		src = s.NewSource()
	} else {
		src = dice.NewSeededSource(0)
	}
	tol := s.Tolerance
	if tol == 0 {
		tol = coverage.DefaultTolerance
	}
	workers := max(s.Workers, 1)
	return coverage.NewSearcher(dice.NewGenerator(src),
		coverage.WithTrials(s.trials()),
		coverage.WithTolerance(tol),
		coverage.WithWorkers(workers))
}

func (s *Server) coverage(w http.ResponseWriter, r *http.Request) {
	var req CoverageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if len(req.Probabilities) > config.MaxProbabilities {
		writeError(w, http.StatusBadRequest, "too many probabilities")
		return
	}
	searcher, err := s.searcher()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	res, err := searcher.FindBest(req.Probabilities)
	if err != nil && !errors.Is(err, coverage.ErrNoCoverage) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.History != nil {
		run := stores.RunFromResult(req.Probabilities, res, s.trials())
		if _, serr := s.History.Save(r.Context(), run); serr != nil {
			log.Err(serr).Msg("saving-run")
		}
	}
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CoverageResponse{
		Groups:    report.Groups(req.Probabilities, res.Chain),
		Deviation: res.Deviation,
		Trials:    res.Trials,
		Successes: res.Successes,
	})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not enabled")
		return
	}
	limit := defaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.History.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
