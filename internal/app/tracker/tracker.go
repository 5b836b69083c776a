// Package tracker is the single entry point the API and CLI use. It owns the
// in-memory progression state, serializes every operation, persists after
// each mutation and drives the delayed boss advance.
package tracker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deukgeun/deukgeun/internal/app/battle"
	"github.com/deukgeun/deukgeun/internal/app/progression"
	"github.com/deukgeun/deukgeun/internal/domain"
	"github.com/deukgeun/deukgeun/internal/infra/metrics"
)

// ErrClosed is returned by operations after Close.
var ErrClosed = errors.New("tracker closed")

// Result is what every operation hands back: the full state after the
// operation plus whatever it produced.
type Result struct {
	State   domain.ProgressionState `json:"state"`
	Outcome domain.Outcome          `json:"outcome"`
	Set     *domain.SetEvent        `json:"set,omitempty"`
	Session *domain.Session         `json:"session,omitempty"`
	Order   *domain.Order           `json:"order,omitempty"`
	Program *domain.Program         `json:"program,omitempty"`
}

// Summary is the headline view of the state.
type Summary struct {
	Level            int         `json:"level"`
	CurrentXP        int64       `json:"current_xp"`
	XPForNextLevel   int64       `json:"xp_for_next_level"`
	ProgressPct      float64     `json:"progress_pct"`
	TotalXP          int64       `json:"total_xp"`
	Points           int64       `json:"points"`
	WorkoutsDone     int         `json:"workouts_completed"`
	CurrentStreak    int         `json:"current_streak"`
	AttendanceStreak int         `json:"attendance_streak"`
	AttendedToday    bool        `json:"attended_today"`
	Unlocked         int         `json:"achievements_unlocked"`
	Achievements     int         `json:"achievements_total"`
	BMI              float64     `json:"bmi"`
	Boss             domain.Boss `json:"boss"`
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu sync.Mutex

	engine   *progression.Engine
	ctrl     *battle.Controller
	states   domain.StateStore
	sessions domain.SessionLog
	clock    domain.Clock
	log      logrus.FieldLogger

	state     domain.ProgressionState
	bossTimer *time.Timer
	closed    bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the wall clock.
func WithClock(c domain.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Tracker) { t.log = l }
}

// New loads the persisted state and repairs stale streaks before returning.
func New(engine *progression.Engine, ctrl *battle.Controller, states domain.StateStore, sessions domain.SessionLog, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		engine:   engine,
		ctrl:     ctrl,
		states:   states,
		sessions: sessions,
		clock:    domain.SystemClock,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.WithField("component", "tracker")

	st, err := states.LoadState()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	t.state = st
	if t.refresh() {
		if err := t.persist(); err != nil {
			return nil, err
		}
	}
	t.gauges()
	return t, nil
}

// Close cancels the boss timer, applies a pending boss advance and persists.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.bossTimer != nil {
		t.bossTimer.Stop()
		t.bossTimer = nil
	}
	s, advanced := t.ctrl.ResolveBoss(t.state, t.clock.Now(), true)
	if !advanced {
		return nil
	}
	t.state = s
	return t.persist()
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// State returns a copy of the current state.
func (t *Tracker) State() domain.ProgressionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.refresh() {
		t.persistQuietly()
	}
	return t.state.Clone()
}

// Summary returns the headline numbers.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.refresh() {
		t.persistQuietly()
	}
	s := t.state
	return Summary{
		Level:            s.Level,
		CurrentXP:        s.CurrentXP,
		XPForNextLevel:   t.engine.XPForNextLevel(s),
		ProgressPct:      t.engine.ProgressPct(s),
		TotalXP:          s.TotalXP,
		Points:           s.Points,
		WorkoutsDone:     s.WorkoutsCompleted,
		CurrentStreak:    s.CurrentStreak,
		AttendanceStreak: s.AttendanceStreak,
		AttendedToday:    progression.IsAttendanceMarked(s, domain.DayOf(t.clock.Now())),
		Unlocked:         len(progression.Unlocked(s)),
		Achievements:     len(s.Achievements),
		BMI:              progression.BMI(s),
		Boss:             t.ctrl.Boss(s),
	}
}

// Session returns the battle session view.
func (t *Tracker) Session() domain.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.refresh() {
		t.persistQuietly()
	}
	sess := t.ctrl.Session()
	if sess.Boss.Level == 0 {
		sess.Boss = t.ctrl.Boss(t.state)
	}
	return sess
}

// SessionHistory returns the newest recorded sessions first.
func (t *Tracker) SessionHistory(limit int) ([]domain.SessionRecord, error) {
	return t.sessions.ListSessions(limit)
}

// Save persists the current state as is.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.persist()
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

// GrantXP adds XP.
func (t *Tracker) GrantXP(amount int64) (Result, error) {
	return t.mutate("grant_xp", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, out, err := t.engine.GrantXP(s, amount)
		return next, Result{Outcome: out}, err
	})
}

// GrantPoints adds points.
func (t *Tracker) GrantPoints(amount int64) (Result, error) {
	return t.mutate("grant_points", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, err := t.engine.GrantPoints(s, amount)
		return next, Result{Outcome: domain.Outcome{PointsGranted: amount}}, err
	})
}

// MarkAttendance checks in for day, today when empty.
func (t *Tracker) MarkAttendance(day domain.DayID) (Result, error) {
	return t.mutate("attendance", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, out, err := t.engine.MarkAttendance(s, t.dayOrToday(day))
		return next, Result{Outcome: out}, err
	})
}

// RecordManual logs a workout done outside a battle session.
func (t *Tracker) RecordManual(day domain.DayID, exercise string, sets, reps int) (Result, error) {
	res, err := t.mutate("manual_log", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, out, err := t.engine.RecordManual(s, t.dayOrToday(day), exercise, sets, reps)
		return next, Result{Outcome: out}, err
	})
	switch {
	case err == nil:
		metrics.ManualLogs.WithLabelValues("accepted").Inc()
	case errors.Is(err, domain.ErrCapacityExceeded):
		metrics.ManualLogs.WithLabelValues("capped").Inc()
	case errors.Is(err, domain.ErrInvalidInput):
		metrics.ManualLogs.WithLabelValues("invalid").Inc()
	}
	return res, err
}

// EvaluateAchievements runs an explicit evaluation pass.
func (t *Tracker) EvaluateAchievements() (Result, error) {
	return t.mutate("evaluate", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, out := t.engine.EvaluateAchievements(s)
		return next, Result{Outcome: out}, nil
	})
}

// ─── Battle ─────────────────────────────────────────────────────────────────

// StartSession opens today's session. Without exercises it uses the active
// program's current day, then the default routine.
func (t *Tracker) StartSession(exercises []domain.Exercise) (Result, error) {
	return t.mutate("start_session", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		if len(exercises) == 0 {
			exercises = plannedExercises(s)
		}
		next, sess, err := t.ctrl.Start(s, exercises)
		return next, Result{Session: &sess}, err
	})
}

// CompleteSet logs one set.
func (t *Tracker) CompleteSet(weight float64, reps int) (Result, error) {
	return t.mutate("complete_set", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, ev, err := t.ctrl.CompleteSet(s, weight, reps)
		if err != nil {
			return next, Result{}, err
		}
		t.observeSet(ev)
		sess := t.ctrl.Session()
		return next, Result{Outcome: ev.Outcome, Set: &ev, Session: &sess}, nil
	})
}

// AcceptHiddenMission takes the offered extra set.
func (t *Tracker) AcceptHiddenMission() (Result, error) {
	return t.mutate("accept_mission", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		sess, err := t.ctrl.AcceptHiddenMission()
		if err == nil {
			metrics.HiddenMissions.WithLabelValues("accepted").Inc()
		}
		return s, Result{Session: &sess}, err
	})
}

// DeclineHiddenMission turns the offer down and completes the session.
func (t *Tracker) DeclineHiddenMission() (Result, error) {
	return t.mutate("decline_mission", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, ev, err := t.ctrl.DeclineHiddenMission(s)
		if err != nil {
			return next, Result{}, err
		}
		metrics.HiddenMissions.WithLabelValues("declined").Inc()
		t.recordSession(ev.Record)
		sess := t.ctrl.Session()
		return next, Result{Outcome: ev.Outcome, Set: &ev, Session: &sess}, nil
	})
}

// FinishBonusSelection starts the bonus session with the chosen exercises.
func (t *Tracker) FinishBonusSelection(ids []string) (Result, error) {
	return t.mutate("start_bonus", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, sess, err := t.ctrl.FinishBonusSelection(s, ids)
		return next, Result{Session: &sess}, err
	})
}

// DeclineBonus closes the bonus prompt.
func (t *Tracker) DeclineBonus() (Result, error) {
	return t.mutate("decline_bonus", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		err := t.ctrl.DeclineBonus()
		sess := t.ctrl.Session()
		return s, Result{Session: &sess}, err
	})
}

// AbandonSession rolls back a partially completed session.
func (t *Tracker) AbandonSession() (Result, error) {
	return t.mutate("abandon", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, rec, err := t.ctrl.Abandon(s)
		if err != nil {
			return next, Result{}, err
		}
		t.recordSession(&rec)
		sess := t.ctrl.Session()
		return next, Result{Session: &sess}, nil
	})
}

// SkipRest ends the rest window early.
func (t *Tracker) SkipRest() (Result, error) {
	return t.mutate("skip_rest", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		err := t.ctrl.SkipRest()
		sess := t.ctrl.Session()
		return s, Result{Session: &sess}, err
	})
}

// SetDevMode toggles the rest-window bypass.
func (t *Tracker) SetDevMode(on bool) domain.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctrl.SetDevMode(on)
	t.log.WithField("dev_mode", on).Info("dev mode changed")
	return t.ctrl.Session()
}

// ─── Diet / Body / Shop / Programs ──────────────────────────────────────────

// AddMeal logs a meal.
func (t *Tracker) AddMeal(meal domain.Meal) (Result, error) {
	return t.mutate("add_meal", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, out, err := t.engine.AddMeal(s, meal)
		return next, Result{Outcome: out}, err
	})
}

// ResetDailyMeals clears today's intake.
func (t *Tracker) ResetDailyMeals() (Result, error) {
	return t.mutate("reset_meals", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		return progression.ResetDailyMeals(s), Result{}, nil
	})
}

// SetDietTargets replaces the daily targets.
func (t *Tracker) SetDietTargets(calories, protein float64) (Result, error) {
	return t.mutate("diet_targets", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, err := progression.SetDietTargets(s, calories, protein)
		return next, Result{}, err
	})
}

// UpdateBodyStats records a body measurement.
func (t *Tracker) UpdateBodyStats(in progression.BodyInput) (Result, error) {
	return t.mutate("body_stats", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, err := progression.UpdateBodyStats(s, in)
		return next, Result{}, err
	})
}

// CreateOrder spends points on a shop item.
func (t *Tracker) CreateOrder(item domain.ShopItem, cost int64) (Result, error) {
	return t.mutate("create_order", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, order, err := t.engine.CreateOrder(s, item, cost)
		return next, Result{Order: &order}, err
	})
}

// UpdateOrderStatus moves an order along.
func (t *Tracker) UpdateOrderStatus(orderID string, status domain.OrderStatus) (Result, error) {
	return t.mutate("order_status", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, err := t.engine.UpdateOrderStatus(s, orderID, status)
		return next, Result{}, err
	})
}

// UpdateShippingAddress replaces the shipping address.
func (t *Tracker) UpdateShippingAddress(addr domain.ShippingAddress) (Result, error) {
	return t.mutate("shipping_address", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, err := progression.UpdateShippingAddress(s, addr)
		return next, Result{}, err
	})
}

// SaveCustomProgram stores a program and activates it.
func (t *Tracker) SaveCustomProgram(p domain.Program) (Result, error) {
	return t.mutate("save_program", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, saved, err := t.engine.SaveCustomProgram(s, p)
		return next, Result{Program: &saved}, err
	})
}

// SetActiveProgram switches the active program; empty clears it.
func (t *Tracker) SetActiveProgram(programID string) (Result, error) {
	return t.mutate("active_program", func(s domain.ProgressionState) (domain.ProgressionState, Result, error) {
		next, err := progression.SetActiveProgram(s, programID)
		return next, Result{}, err
	})
}

// ─── Internals ──────────────────────────────────────────────────────────────

type mutation func(s domain.ProgressionState) (domain.ProgressionState, Result, error)

// mutate runs fn under the lock against a refreshed state. On success the
// new state is kept and persisted before the lock is released.
func (t *Tracker) mutate(op string, fn mutation) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return Result{}, ErrClosed
	}

	if t.refresh() {
		t.persistQuietly()
	}
	prevLevel := t.state.Level

	next, res, err := fn(t.state.Clone())
	if err != nil {
		t.log.WithError(err).WithField("op", op).Debug("operation rejected")
		if next.MonsterLevel > t.state.MonsterLevel {
			// The controller's boss already moved on; keep the state in step.
			t.state = progression.UpdateMonsterLevel(t.state, next.MonsterLevel)
			t.persistQuietly()
		}
		res.State = t.state.Clone()
		t.scheduleBoss()
		return res, err
	}

	t.state = next
	t.observe(res.Outcome, prevLevel)
	t.scheduleBoss()
	res.State = t.state.Clone()
	if err := t.persist(); err != nil {
		return res, err
	}
	return res, nil
}

// refresh repairs stale streaks, rolls the diet totals over to today and
// applies a boss advance that came due.
// Reports whether the state changed.
func (t *Tracker) refresh() bool {
	s, drifted := t.engine.Recompute(t.state)
	if drifted {
		metrics.StreakRepairs.Inc()
		t.log.WithFields(logrus.Fields{
			"current_streak":    s.CurrentStreak,
			"attendance_streak": s.AttendanceStreak,
		}).Debug("stale streaks recomputed")
	}
	s, rolled := t.engine.RollDietDay(s)
	if rolled {
		t.log.WithField("day", s.Diet.Day).Debug("diet day rolled over")
	}
	s, advanced := t.ctrl.ResolveBoss(s, t.clock.Now(), false)
	if advanced {
		t.log.WithField("monster_level", s.MonsterLevel).Info("boss advanced")
		metrics.MonsterLevel.Set(float64(s.MonsterLevel))
	}
	t.state = s
	return drifted || rolled || advanced
}

func (t *Tracker) persist() error {
	if err := t.states.SaveState(t.state); err != nil {
		metrics.SaveFailures.Inc()
		t.log.WithError(err).Error("persist progression failed")
		return fmt.Errorf("persist progression: %w", err)
	}
	return nil
}

func (t *Tracker) persistQuietly() {
	_ = t.persist()
}

// scheduleBoss arms a timer for a pending boss advance. The timer fires
// after the real delay and forces the advance through the same lock.
func (t *Tracker) scheduleBoss() {
	due, pending := t.ctrl.PendingBossAdvance()
	if !pending {
		if t.bossTimer != nil {
			t.bossTimer.Stop()
			t.bossTimer = nil
		}
		return
	}
	if t.bossTimer != nil {
		return
	}
	wait := due.Sub(t.clock.Now())
	if wait < 0 {
		wait = 0
	}
	t.bossTimer = time.AfterFunc(wait, t.advanceBoss)
}

func (t *Tracker) advanceBoss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bossTimer = nil
	if t.closed {
		return
	}
	s, advanced := t.ctrl.ResolveBoss(t.state, t.clock.Now(), true)
	if !advanced {
		return
	}
	t.state = s
	metrics.MonsterLevel.Set(float64(s.MonsterLevel))
	t.log.WithField("monster_level", s.MonsterLevel).Info("boss advanced")
	t.persistQuietly()
}

func (t *Tracker) observe(out domain.Outcome, prevLevel int) {
	if out.XPGranted > 0 {
		metrics.XPGranted.Add(float64(out.XPGranted))
	}
	if out.PointsGranted > 0 {
		metrics.PointsGranted.Add(float64(out.PointsGranted))
	}
	for _, id := range out.Unlocked {
		metrics.AchievementsUnlocked.WithLabelValues(id).Inc()
		t.log.WithField("achievement", id).Info("achievement unlocked")
	}
	if t.state.Level > prevLevel {
		t.log.WithFields(logrus.Fields{"from": prevLevel, "to": t.state.Level}).Info("level up")
	}
	t.gauges()
}

func (t *Tracker) gauges() {
	metrics.Level.Set(float64(t.state.Level))
	metrics.PointsBalance.Set(float64(t.state.Points))
	metrics.MonsterLevel.Set(float64(t.state.MonsterLevel))
}

func (t *Tracker) observeSet(ev domain.SetEvent) {
	sess := t.ctrl.Session()
	metrics.SetsCompleted.WithLabelValues(sess.Kind.String()).Inc()
	metrics.DamageDealt.Observe(float64(ev.Damage))
	if ev.Critical {
		metrics.CriticalHits.Inc()
	}
	if ev.BossDefeated {
		metrics.BossesDefeated.WithLabelValues(strconv.Itoa(sess.Boss.Level)).Inc()
		t.log.WithField("boss_level", sess.Boss.Level).Info("boss defeated")
	}
	if ev.MissionOffered {
		metrics.HiddenMissions.WithLabelValues("offered").Inc()
	}
	if ev.MissionComplete {
		metrics.HiddenMissions.WithLabelValues("completed").Inc()
	}
	t.recordSession(ev.Record)
}

// recordSession appends to the audit trail. A failed write is logged; the
// session itself already counted.
func (t *Tracker) recordSession(rec *domain.SessionRecord) {
	if rec == nil {
		return
	}
	metrics.SessionsFinished.WithLabelValues(rec.Kind.String(), string(rec.Outcome)).Inc()
	entry := t.log.WithFields(logrus.Fields{
		"session": rec.ID,
		"kind":    rec.Kind.String(),
		"outcome": rec.Outcome,
		"sets":    rec.CompletedSets,
	})
	if err := t.sessions.RecordSession(*rec); err != nil {
		entry.WithError(err).Warn("session history write failed")
		return
	}
	entry.Info("session finished")
}

func (t *Tracker) dayOrToday(day domain.DayID) domain.DayID {
	if strings.TrimSpace(string(day)) == "" {
		return domain.DayOf(t.clock.Now())
	}
	return day
}

// plannedExercises picks the active program's current day, or the default
// routine.
func plannedExercises(s domain.ProgressionState) []domain.Exercise {
	if p, ok := progression.ActiveProgram(s); ok {
		for _, d := range p.Days {
			if strings.EqualFold(d.Day, s.CurrentWorkoutDay) && len(d.Exercises) > 0 {
				return append([]domain.Exercise(nil), d.Exercises...)
			}
		}
	}
	return battle.DefaultRoutine()
}
