// Package api provides the HTTP server for deukgeun.
// It exposes the progression ledger, the battle session and the supporting
// diet, body, shop and program operations as a JSON API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/deukgeun/deukgeun/internal/app/tracker"
	"github.com/deukgeun/deukgeun/internal/domain"
	"github.com/deukgeun/deukgeun/internal/health"
	"github.com/deukgeun/deukgeun/internal/infra/metrics"
)

// Server is the deukgeun HTTP API server.
type Server struct {
	tracker        *tracker.Tracker
	health         *health.Checker
	metricsEnabled bool
	corsOrigins    []string
	version        string
	log            logrus.FieldLogger
}

// NewServer creates a new API server.
func NewServer(t *tracker.Tracker) *Server {
	return &Server{
		tracker:     t,
		corsOrigins: []string{"*"},
		version:     "dev",
		log:         logrus.WithField("component", "api"),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth attaches the health checker reported by /health.
func (s *Server) SetHealth(h *health.Checker) { s.health = h }

// SetCORSOrigins restricts the allowed browser origins. "*" allows any.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// SetVersion sets the version reported by /api/version.
func (s *Server) SetVersion(v string) { s.version = v }

// SetLogger replaces the request logger.
func (s *Server) SetLogger(l logrus.FieldLogger) { s.log = l }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware(s.corsOrigins))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
		})

		// Ledger
		r.Get("/state", s.handleState)
		r.Get("/summary", s.handleSummary)
		r.Post("/xp", s.handleGrantXP)
		r.Post("/points", s.handleGrantPoints)
		r.Post("/attendance", s.handleAttendance)
		r.Post("/manual", s.handleManual)
		r.Get("/achievements", s.handleAchievements)
		r.Post("/achievements/evaluate", s.handleEvaluate)

		// Battle session
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSession)
			r.Post("/start", s.handleStartSession)
			r.Post("/set", s.handleCompleteSet)
			r.Post("/rest/skip", s.handleSkipRest)
			r.Post("/mission/accept", s.handleAcceptMission)
			r.Post("/mission/decline", s.handleDeclineMission)
			r.Post("/bonus", s.handleBonus)
			r.Post("/bonus/decline", s.handleDeclineBonus)
			r.Post("/abandon", s.handleAbandon)
			r.Post("/dev-mode", s.handleDevMode)
			r.Get("/history", s.handleHistory)
		})

		// Diet / body / shop / programs
		r.Post("/meals", s.handleAddMeal)
		r.Post("/meals/reset", s.handleResetMeals)
		r.Post("/diet/targets", s.handleDietTargets)
		r.Post("/body", s.handleBody)
		r.Post("/orders", s.handleCreateOrder)
		r.Post("/orders/{id}/status", s.handleOrderStatus)
		r.Post("/shipping", s.handleShipping)
		r.Post("/programs", s.handleSaveProgram)
		r.Post("/programs/active", s.handleActiveProgram)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	statuses := s.health.Statuses()
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": statuses,
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, kind, msg string, extra map[string]interface{}) {
	body := map[string]interface{}{
		"message": msg,
		"type":    kind,
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, map[string]interface{}{"error": body})
}

// writeFailure maps an operation error onto a status code.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	extra := map[string]interface{}{}

	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		extra["field"] = inputErr.Field
	}
	var capErr *domain.CapacityError
	if errors.As(err, &capErr) {
		extra["limit"] = capErr.Limit
		extra["day"] = capErr.Day
	}

	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeError(w, status, kind, err.Error(), extra)
}

var sessionConflicts = []error{
	domain.ErrNoActiveSession,
	domain.ErrSessionActive,
	domain.ErrRestActive,
	domain.ErrTargetReached,
	domain.ErrNoHiddenMission,
	domain.ErrMissionPending,
	domain.ErrNotAbandonable,
	domain.ErrDailyCycleDone,
	domain.ErrBonusUnavailable,
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNoExercises):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrProgramNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, domain.ErrInsufficientPoints):
		return http.StatusConflict, "insufficient_points"
	case errors.Is(err, tracker.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	}
	for _, target := range sessionConflicts {
		if errors.Is(err, target) {
			return http.StatusConflict, "session_conflict"
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// decodeJSON reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// instrument logs each request and records its status and latency.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(begin)
		metrics.HTTPRequestDuration.Observe(elapsed.Seconds())
		metrics.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"duration":   elapsed,
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

// corsMiddleware adds CORS headers for the configured origins.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
