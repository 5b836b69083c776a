package api

import (
	"net/http"
	"strconv"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// ─── Battle Session (/api/session/*) ────────────────────────────────────────

type startRequest struct {
	Exercises []domain.Exercise `json:"exercises"`
}

type setRequest struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

type bonusRequest struct {
	ExerciseIDs []string `json:"exercise_ids"`
}

type devModeRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Session())
}

// handleStartSession starts today's routine. Without exercises the active
// program's current day is used, then the default routine.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, r)(s.tracker.StartSession(req.Exercises))
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, r)(s.tracker.CompleteSet(req.Weight, req.Reps))
}

func (s *Server) handleSkipRest(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.tracker.SkipRest())
}

func (s *Server) handleAcceptMission(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.tracker.AcceptHiddenMission())
}

func (s *Server) handleDeclineMission(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.tracker.DeclineHiddenMission())
}

func (s *Server) handleBonus(w http.ResponseWriter, r *http.Request) {
	var req bonusRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, r)(s.tracker.FinishBonusSelection(req.ExerciseIDs))
}

func (s *Server) handleDeclineBonus(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.tracker.DeclineBonus())
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.tracker.AbandonSession())
}

func (s *Server) handleDevMode(w http.ResponseWriter, r *http.Request) {
	var req devModeRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.SetDevMode(req.Enabled))
}

// handleHistory lists finished sessions, newest first. ?limit=0 returns all.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_input", "limit must be a non-negative integer", map[string]interface{}{"field": "limit"})
			return
		}
		limit = n
	}
	records, err := s.tracker.SessionHistory(limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if records == nil {
		records = []domain.SessionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": records,
	})
}
