// internal/httpserver/routes_solver.go
//
// Solver endpoints under /api. All but /api/stats run inside withSession:
//   - GET  /api/move        → next suggested guess
//   - POST /api/update      → apply {guess, hit, blow}
//   - POST /api/reset       → restart the session's game
//   - GET  /api/candidates  → count, state and a sample of candidates
//   - GET  /api/history     → observations (and stored games, if enabled)
//   - GET  /api/stats       → aggregate results over all stored games
//
// Game history is best effort: a database failure is logged and never fails
// the solver request that caused it.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hitblow/internal/history"
	"github.com/robalobadob/hitblow/internal/solver"
	"github.com/robalobadob/hitblow/internal/store"
)

const (
	defaultSample = 20
	maxSample     = 1000
)

// mountAPI registers /api routes.
func (s *Server) mountAPI() {
	s.r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)
		r.Get("/stats", s.handleStats)

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/move", s.handleMove)
			r.Post("/update", s.handleUpdate)
			r.Post("/reset", s.handleReset)
			r.Get("/candidates", s.handleCandidates)
			r.Get("/history", s.handleHistory)
		})
	})
}

type moveRes struct {
	Guess solver.Code `json:"guess"`
}

type updateReq struct {
	Guess []int `json:"guess" validate:"required"`
	Hit   *int  `json:"hit" validate:"required,gte=0"`
	Blow  *int  `json:"blow" validate:"required,gte=0"`
}

type updateRes struct {
	Status     string `json:"status"`
	Candidates int    `json:"candidates"`
}

// inconsistentRes is errorRes plus the emptied candidate count.
type inconsistentRes struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Candidates int    `json:"candidates"`
}

type statusRes struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type candidatesRes struct {
	Candidates int           `json:"candidates"`
	State      solver.State  `json:"state"`
	Sample     []solver.Code `json:"sample"`
}

type historyRes struct {
	State        solver.State         `json:"state"`
	Observations []solver.Observation `json:"observations"`
	Games        []history.Game       `json:"games,omitempty"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	start := time.Now()
	guess, err := sess.Solver.Suggest()
	suggestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		suggestionsTotal.WithLabelValues("exhausted").Inc()
		s.writeSolverError(w, err)
		return
	}
	suggestionsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, moveRes{Guess: guess})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var body updateReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		updatesTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if err := s.validate.Struct(body); err != nil {
		updatesTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid_fields", err.Error())
		return
	}
	guess, err := sess.Solver.Space().Parse(body.Guess)
	if err != nil {
		updatesTotal.WithLabelValues("invalid").Inc()
		s.writeSolverError(w, err)
		return
	}

	sess.Lock()
	defer sess.Unlock()

	out, err := sess.Solver.Apply(guess, *body.Hit, *body.Blow)
	switch {
	case errors.Is(err, solver.ErrInvalidFeedback):
		updatesTotal.WithLabelValues("invalid").Inc()
		s.writeSolverError(w, err)
		return
	case errors.Is(err, solver.ErrInconsistentFeedback):
		updatesTotal.WithLabelValues("inconsistent").Inc()
		log.Info().Str("session", sess.ID).Str("guess", guess.String()).
			Int("hit", *body.Hit).Int("blow", *body.Blow).Msg("inconsistent feedback")
		s.recordRound(r.Context(), sess, out.Round, guess, *body.Hit, *body.Blow, 0)
		s.finishGame(r.Context(), sess, history.StatusInconsistent, "")
		writeJSON(w, http.StatusConflict, inconsistentRes{
			Error:      "inconsistent_feedback",
			Message:    err.Error(),
			Candidates: 0,
		})
		return
	case err != nil:
		updatesTotal.WithLabelValues("exhausted").Inc()
		s.writeSolverError(w, err)
		return
	}

	updatesTotal.WithLabelValues("ok").Inc()
	log.Debug().Str("session", sess.ID).Str("guess", guess.String()).
		Int("hit", *body.Hit).Int("blow", *body.Blow).Int("candidates", out.Candidates).Msg("feedback applied")

	s.recordRound(r.Context(), sess, out.Round, guess, *body.Hit, *body.Blow, out.Candidates)
	if out.State == solver.StateSolved {
		if _, closed := sess.Game(); !closed {
			roundsToSolve.Observe(float64(out.Round))
			log.Info().Str("session", sess.ID).Str("answer", out.Answer.String()).Msg("solved")
		}
		s.finishGame(r.Context(), sess, history.StatusSolved, out.Answer.String())
	}
	writeJSON(w, http.StatusOK, updateRes{Status: "ok", Candidates: out.Candidates})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Lock()
	defer sess.Unlock()
	s.finishGame(r.Context(), sess, history.StatusAbandoned, "")
	sess.Solver.Reset()
	sess.SetGame(0, false)
	writeJSON(w, http.StatusOK, statusRes{Status: "ok", Message: "Solver reset"})
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	sample := defaultSample
	if v := r.URL.Query().Get("sample"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_sample", "sample must be a non-negative integer")
			return
		}
		sample = min(n, maxSample)
	}
	snap := sessionFrom(r).Solver.Snapshot(sample)
	writeJSON(w, http.StatusOK, candidatesRes{
		Candidates: snap.Candidates,
		State:      snap.State,
		Sample:     snap.Sample,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	snap := sess.Solver.Snapshot(0)
	res := historyRes{State: snap.State, Observations: snap.History}
	if s.history != nil {
		games, err := s.history.Games(r.Context(), sess.ID, 20)
		if err != nil {
			log.Error().Err(err).Str("session", sess.ID).Msg("list games")
			writeError(w, http.StatusInternalServerError, "history_failed", "")
			return
		}
		res.Games = games
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history_disabled", "set DATABASE_PATH to keep game history")
		return
	}
	st, err := s.history.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("stats")
		writeError(w, http.StatusInternalServerError, "stats_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// writeSolverError maps solver sentinels to HTTP statuses.
func (s *Server) writeSolverError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, solver.ErrInvalidFeedback):
		writeError(w, http.StatusBadRequest, "invalid_feedback", err.Error())
	case errors.Is(err, solver.ErrExhaustedCandidates):
		writeError(w, http.StatusConflict, "exhausted_candidates", "no candidates left; reset the game")
	default:
		log.Error().Err(err).Msg("solver")
		writeError(w, http.StatusInternalServerError, "internal", "")
	}
}

// ------------------------------- history -----------------------------------

// recordRound stores one observation, opening a games row on the first
// round after a reset. Callers hold the session lock.
func (s *Server) recordRound(ctx context.Context, sess *store.Session, round int, guess solver.Code, hit, blow, remaining int) {
	if s.history == nil {
		return
	}
	id, closed := sess.Game()
	if closed {
		return
	}
	if id == 0 {
		sp := sess.Solver.Space()
		var err error
		id, err = s.history.StartGame(ctx, sess.ID, sp.Len(), sp.Symbols())
		if err != nil {
			log.Error().Err(err).Str("session", sess.ID).Msg("start game")
			return
		}
		sess.SetGame(id, false)
	}
	if err := s.history.RecordObservation(ctx, id, round, guess.String(), hit, blow, remaining); err != nil {
		log.Error().Err(err).Int64("game", id).Msg("record observation")
	}
}

// finishGame marks the session's running game closed and, when a games row
// exists, stores its outcome. Callers hold the session lock.
func (s *Server) finishGame(ctx context.Context, sess *store.Session, status, answer string) {
	id, closed := sess.Game()
	if closed {
		return
	}
	if s.history != nil && id != 0 {
		if err := s.history.FinishGame(ctx, id, status, answer); err != nil {
			log.Error().Err(err).Int64("game", id).Msg("finish game")
		}
	}
	sess.SetGame(id, true)
}
