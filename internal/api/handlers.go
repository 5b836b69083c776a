package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deukgeun/deukgeun/internal/app/progression"
	"github.com/deukgeun/deukgeun/internal/app/tracker"
	"github.com/deukgeun/deukgeun/internal/domain"
)

// ─── Ledger ─────────────────────────────────────────────────────────────────

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type dayRequest struct {
	Day domain.DayID `json:"day"`
}

type manualRequest struct {
	Day      domain.DayID `json:"day"`
	Exercise string       `json:"exercise"`
	Sets     int          `json:"sets"`
	Reps     int          `json:"reps"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.State())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Summary())
}

func (s *Server) handleGrantXP(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, r)(s.tracker.GrantXP(req.Amount))
}

func (s *Server) handleGrantPoints(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, r)(s.tracker.GrantPoints(req.Amount))
}

func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	var req dayRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, r)(s.tracker.MarkAttendance(req.Day))
}

func (s *Server) handleManual(w http.ResponseWriter, r *http.Request) {
	var req manualRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, r)(s.tracker.RecordManual(req.Day, req.Exercise, req.Sets, req.Reps))
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	st := s.tracker.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": st.Achievements,
		"unlocked":     len(progression.Unlocked(st)),
		"total":        len(st.Achievements),
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.tracker.EvaluateAchievements())
}

// ─── Diet / Body ────────────────────────────────────────────────────────────

type dietTargetsRequest struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
}

func (s *Server) handleAddMeal(w http.ResponseWriter, r *http.Request) {
	var meal domain.Meal
	if !s.decode(w, r, &meal) {
		return
	}
	s.respond(w, r)(s.tracker.AddMeal(meal))
}

func (s *Server) handleResetMeals(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.tracker.ResetDailyMeals())
}

func (s *Server) handleDietTargets(w http.ResponseWriter, r *http.Request) {
	var req dietTargetsRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, r)(s.tracker.SetDietTargets(req.Calories, req.Protein))
}

func (s *Server) handleBody(w http.ResponseWriter, r *http.Request) {
	var in progression.BodyInput
	if !s.decode(w, r, &in) {
		return
	}
	s.respond(w, r)(s.tracker.UpdateBodyStats(in))
}

// ─── Shop ───────────────────────────────────────────────────────────────────

type orderRequest struct {
	Item domain.ShopItem `json:"item"`
	Cost int64           `json:"cost"`
}

type orderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.tracker.CreateOrder(req.Item, req.Cost)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, r)(s.tracker.UpdateOrderStatus(chi.URLParam(r, "id"), req.Status))
}

func (s *Server) handleShipping(w http.ResponseWriter, r *http.Request) {
	var addr domain.ShippingAddress
	if !s.decode(w, r, &addr) {
		return
	}
	s.respond(w, r)(s.tracker.UpdateShippingAddress(addr))
}

// ─── Programs ───────────────────────────────────────────────────────────────

type activeProgramRequest struct {
	ProgramID string `json:"program_id"`
}

func (s *Server) handleSaveProgram(w http.ResponseWriter, r *http.Request) {
	var p domain.Program
	if !s.decode(w, r, &p) {
		return
	}
	res, err := s.tracker.SaveCustomProgram(p)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleActiveProgram(w http.ResponseWriter, r *http.Request) {
	var req activeProgramRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, r)(s.tracker.SetActiveProgram(req.ProgramID))
}

// ─── Plumbing ───────────────────────────────────────────────────────────────

// decode reads the request body into v, answering 400 on malformed JSON.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeJSON(r, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), nil)
		return false
	}
	return true
}

// respond returns a sink for a tracker call's result pair.
func (s *Server) respond(w http.ResponseWriter, r *http.Request) func(tracker.Result, error) {
	return func(res tracker.Result, err error) {
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
