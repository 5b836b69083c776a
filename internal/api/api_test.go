package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deukgeun/deukgeun/internal/app/battle"
	"github.com/deukgeun/deukgeun/internal/app/progression"
	"github.com/deukgeun/deukgeun/internal/app/store"
	"github.com/deukgeun/deukgeun/internal/app/tracker"
	"github.com/deukgeun/deukgeun/internal/domain"
	"github.com/deukgeun/deukgeun/internal/health"
	"github.com/deukgeun/deukgeun/internal/infra/sqlite"
)

var testNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.Local)

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, _ := test.NewNullLogger()
	clock := domain.ClockFunc(func() time.Time { return testNow })
	engine := progression.NewEngine(progression.WithClock(clock))
	st := store.New(db, engine.NewState, logger)

	cfg := battle.DefaultConfig()
	cfg.DevMode = true
	ctrl := battle.NewController(cfg, engine, st,
		battle.WithSource(constSource(0.5)),
		battle.WithSessionClock(clock),
		battle.WithLogger(logger),
	)
	trk, err := tracker.New(engine, ctrl, st, st, tracker.WithClock(clock), tracker.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { trk.Close() })

	srv := NewServer(trk)
	srv.SetLogger(logger)
	checker := health.NewChecker(db, dir)
	checker.RunOnce(context.Background())
	srv.SetHealth(checker)
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v), "body: %s", w.Body.String())
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Field   string `json:"field"`
		Limit   int    `json:"limit"`
	} `json:"error"`
}

// ─── Health / State ─────────────────────────────────────────────────────────

func TestAPI_Health(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string          `json:"status"`
		Checks []health.Status `json:"checks"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Len(t, body.Checks, 2)
}

func TestAPI_Version(t *testing.T) {
	srv := newTestServer(t)
	srv.SetVersion("1.2.3")

	w := do(t, srv.Handler(), "GET", "/api/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, w.Body.String())
}

func TestAPI_StateAndSummary(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "GET", "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st domain.ProgressionState
	decodeBody(t, w, &st)
	assert.Equal(t, 1, st.Level)
	assert.NotEmpty(t, st.Achievements)

	w = do(t, h, "GET", "/api/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum tracker.Summary
	decodeBody(t, w, &sum)
	assert.Equal(t, int64(1000), sum.XPForNextLevel)
	assert.Equal(t, 1, sum.Boss.Level)
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

func TestAPI_GrantXP(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/xp", `{"amount":1200}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res tracker.Result
	decodeBody(t, w, &res)
	assert.Equal(t, 2, res.State.Level)
	assert.GreaterOrEqual(t, res.Outcome.XPGranted, int64(1200))
	assert.Equal(t, res.Outcome.XPGranted, res.State.TotalXP)
	assert.Contains(t, res.Outcome.Unlocked, "level-2")
}

func TestAPI_GrantXP_Negative(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/xp", `{"amount":-5}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var e apiError
	decodeBody(t, w, &e)
	assert.Equal(t, "invalid_input", e.Error.Type)
	assert.Equal(t, "xp", e.Error.Field)
}

func TestAPI_MalformedJSON(t *testing.T) {
	h := newTestServer(t).Handler()

	for _, body := range []string{`{"amount":`, `{"amount":"ten"}`, `{"bogus":1}`} {
		w := do(t, h, "POST", "/api/points", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestAPI_Attendance(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/attendance", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res tracker.Result
	decodeBody(t, w, &res)
	assert.Equal(t, []domain.DayID{domain.DayOf(testNow)}, res.State.AttendanceDates)
	assert.Equal(t, 1, res.State.AttendanceStreak)
}

func TestAPI_ManualCap(t *testing.T) {
	h := newTestServer(t).Handler()

	for i := 0; i < domain.ManualLogLimit; i++ {
		w := do(t, h, "POST", "/api/manual", `{"exercise":"푸시업","sets":3,"reps":15}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := do(t, h, "POST", "/api/manual", `{"exercise":"푸시업","sets":3,"reps":15}`)
	require.Equal(t, http.StatusConflict, w.Code)
	var e apiError
	decodeBody(t, w, &e)
	assert.Equal(t, "capacity_exceeded", e.Error.Type)
	assert.Equal(t, domain.ManualLogLimit, e.Error.Limit)

	w = do(t, h, "GET", "/api/state", "")
	var st domain.ProgressionState
	decodeBody(t, w, &st)
	assert.Equal(t, domain.ManualLogLimit, st.ManualWorkoutCounts[domain.DayOf(testNow)])
}

func TestAPI_Achievements(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/achievements/evaluate", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/api/achievements", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Achievements []domain.Achievement `json:"achievements"`
		Unlocked     int                  `json:"unlocked"`
		Total        int                  `json:"total"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, len(body.Achievements), body.Total)
	assert.Zero(t, body.Unlocked)
}

// ─── Session ────────────────────────────────────────────────────────────────

func TestAPI_SetWithoutSession(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/session/set", `{"weight":20,"reps":12}`)
	require.Equal(t, http.StatusConflict, w.Code)
	var e apiError
	decodeBody(t, w, &e)
	assert.Equal(t, "session_conflict", e.Error.Type)
}

func TestAPI_SessionFlow(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/session/start",
		`{"exercises":[{"id":"squat","name":"스쿼트","sets":1,"reps":12},{"id":"lunge","name":"런지","sets":1,"reps":12}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, "POST", "/api/session/set", `{"weight":600,"reps":12}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/api/session/set", `{"weight":100,"reps":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res tracker.Result
	decodeBody(t, w, &res)
	require.NotNil(t, res.Set)
	assert.Equal(t, 70, res.Set.Damage)
	assert.True(t, res.Set.NextExercise)

	w = do(t, h, "POST", "/api/session/set", `{"weight":100,"reps":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = tracker.Result{}
	decodeBody(t, w, &res)
	assert.True(t, res.Set.SessionComplete)
	require.NotNil(t, res.Session)
	assert.Equal(t, domain.PhaseBonusPrompt, res.Session.Phase)

	w = do(t, h, "GET", "/api/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sess domain.Session
	decodeBody(t, w, &sess)
	assert.Equal(t, domain.PhaseBonusPrompt, sess.Phase)

	w = do(t, h, "POST", "/api/session/bonus/decline", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/api/session/history?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		Sessions []domain.SessionRecord `json:"sessions"`
	}
	decodeBody(t, w, &hist)
	require.Len(t, hist.Sessions, 1)
	assert.Equal(t, domain.OutcomeCompleted, hist.Sessions[0].Outcome)

	w = do(t, h, "GET", "/api/session/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_AbandonGuard(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/session/abandon", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, "POST", "/api/session/start", `{"exercises":[{"name":"플랭크","sets":2,"reps":12}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, "POST", "/api/session/set", `{"weight":20,"reps":12}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "POST", "/api/session/abandon", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res tracker.Result
	decodeBody(t, w, &res)
	assert.Equal(t, domain.PhaseAbandoned, res.Session.Phase)
	assert.Zero(t, res.State.TotalXP)
}

func TestAPI_DevModeAndRest(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/session/dev-mode", `{"enabled":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "POST", "/api/session/start", `{"exercises":[{"name":"버피","sets":2,"reps":12}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, "POST", "/api/session/set", `{"weight":20,"reps":12}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "POST", "/api/session/set", `{"weight":20,"reps":12}`)
	assert.Equal(t, http.StatusConflict, w.Code, "rest window is running")

	w = do(t, h, "POST", "/api/session/rest/skip", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, "POST", "/api/session/set", `{"weight":20,"reps":12}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ─── Shop / Programs / Diet ─────────────────────────────────────────────────

func TestAPI_Shop(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/orders", `{"item":{"id":"band"},"cost":100}`)
	require.Equal(t, http.StatusConflict, w.Code)

	do(t, h, "POST", "/api/points", `{"amount":300}`)
	w = do(t, h, "POST", "/api/orders", `{"item":{"id":"band","name":"Resistance band"},"cost":100}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res tracker.Result
	decodeBody(t, w, &res)
	require.NotNil(t, res.Order)

	w = do(t, h, "POST", "/api/orders/"+res.Order.ID+"/status", `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = tracker.Result{}
	decodeBody(t, w, &res)
	require.Len(t, res.State.Orders, 1)
	assert.NotNil(t, res.State.Orders[0].DeliveredAt)

	w = do(t, h, "POST", "/api/orders/order-missing/status", `{"status":"shipping"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/api/shipping", `{"name":"`+gofakeit.Name()+`","address":"`+gofakeit.Street()+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_Programs(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/programs", `{"name":"Push Pull","days":[{"day":"Thursday","exercises":[{"name":"Row","sets":3,"reps":10}]}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, "POST", "/api/programs/active", `{"program_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/api/programs", `{"name":"Bad","days":[{"day":"Someday"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_DietAndBody(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, "POST", "/api/meals", `{"name":"닭가슴살","calories":450,"protein":45}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, "POST", "/api/diet/targets", `{"calories":2200,"protein":140}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "POST", "/api/meals/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res tracker.Result
	decodeBody(t, w, &res)
	assert.Empty(t, res.State.Diet.MealsToday)

	w = do(t, h, "POST", "/api/body", `{"muscle_mass":30,"body_fat":18,"height":180,"weight":81}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "POST", "/api/body", `{"muscle_mass":30,"body_fat":18,"height":10,"weight":81}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var e apiError
	decodeBody(t, w, &e)
	assert.Equal(t, "height", e.Error.Field)
}

// ─── Plumbing ───────────────────────────────────────────────────────────────

func TestAPI_Metrics(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv.Handler(), "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "metrics disabled by default")

	srv.EnableMetrics()
	h := srv.Handler()
	do(t, h, "GET", "/api/state", "")
	w = do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deukgeun_http_requests_total")
}

func TestAPI_CORS(t *testing.T) {
	srv := newTestServer(t)
	srv.SetCORSOrigins([]string{"http://localhost:3000"})
	h := srv.Handler()

	req := httptest.NewRequest("OPTIONS", "/api/state", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/api/state", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.Invalid("reps", "bad"), http.StatusBadRequest},
		{domain.ErrNoExercises, http.StatusBadRequest},
		{&domain.CapacityError{Day: "2025-07-10", Limit: 5}, http.StatusConflict},
		{domain.ErrRestActive, http.StatusConflict},
		{domain.ErrDailyCycleDone, http.StatusConflict},
		{domain.ErrProgramNotFound, http.StatusNotFound},
		{tracker.ErrClosed, http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := classify(tt.err)
		assert.Equal(t, tt.want, got, tt.err.Error())
	}
}
