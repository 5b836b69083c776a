package battle

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/deukgeun/deukgeun/internal/app/progression"
	"github.com/deukgeun/deukgeun/internal/domain"
)

// Config tunes the session controller.
type Config struct {
	RestPeriod          time.Duration
	BossAdvanceDelay    time.Duration
	HiddenMissionChance float64
	DevMode             bool
	DefaultWeight       float64
	DefaultReps         int
}

// DefaultConfig returns the stock session tuning.
func DefaultConfig() Config {
	return Config{
		RestPeriod:          60 * time.Second,
		BossAdvanceDelay:    time.Second,
		HiddenMissionChance: 0.3,
		DefaultWeight:       20,
		DefaultReps:         12,
	}
}

// Controller is the battle session state machine. It is not safe for
// concurrent use; the tracker serializes access.
type Controller struct {
	cfg    Config
	engine *progression.Engine
	flags  domain.FlagStore
	rng    Source
	clock  domain.Clock
	log    logrus.FieldLogger

	session  domain.Session
	snapshot *domain.Snapshot
	earned   domain.Outcome
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithSource overrides the random source.
func WithSource(src Source) ControllerOption {
	return func(c *Controller) { c.rng = src }
}

// WithSessionClock overrides the wall clock.
func WithSessionClock(clock domain.Clock) ControllerOption {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger sets the logger for advisory flag failures.
func WithLogger(log logrus.FieldLogger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// NewController creates an idle controller.
func NewController(cfg Config, engine *progression.Engine, flags domain.FlagStore, opts ...ControllerOption) *Controller {
	c := &Controller{
		cfg:     cfg,
		engine:  engine,
		flags:   flags,
		rng:     NewSource(0),
		clock:   domain.SystemClock,
		log:     logrus.StandardLogger(),
		session: domain.Session{Phase: domain.PhaseIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a copy of the current session.
func (c *Controller) Session() domain.Session {
	s := c.session
	s.Exercises = append([]domain.Exercise(nil), c.session.Exercises...)
	s.BaseExercises = append([]domain.Exercise(nil), c.session.BaseExercises...)
	s.HasSnapshot = c.snapshot != nil
	return s
}

// SetDevMode toggles the rest-window bypass.
func (c *Controller) SetDevMode(on bool) {
	c.cfg.DevMode = on
	if on {
		c.session.RestUntil = nil
	}
}

// DevMode reports whether rest windows are bypassed.
func (c *Controller) DevMode() bool { return c.cfg.DevMode }

// Boss returns the boss as the given state and the flag store see it,
// including a defeated boss still waiting for its advance.
func (c *Controller) Boss(s domain.ProgressionState) domain.Boss {
	if c.session.Phase != domain.PhaseIdle || c.session.BossAdvanceDue != nil {
		if c.session.Boss.Level > 0 {
			return c.session.Boss
		}
	}
	level := s.MonsterLevel
	if level < 1 {
		level = 1
	}
	return NewBoss(level, c.flags.MonsterHP(MaxHP(level)))
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

// Start opens the day's base session. When today's base routine is already
// done, the controller moves to the bonus prompt instead, or refuses with
// ErrDailyCycleDone once the bonus session is also finished.
func (c *Controller) Start(s domain.ProgressionState, exercises []domain.Exercise) (domain.ProgressionState, domain.Session, error) {
	if c.inSession() {
		return s, c.Session(), domain.ErrSessionActive
	}
	now := c.clock.Now()
	today := domain.DayOf(now)

	list, err := normalizeExercises(exercises)
	if err != nil {
		return s, c.Session(), err
	}
	baseDone := domain.HasDay(s.WorkoutDates, today)
	if baseDone && c.flags.ExtraWorkoutDone(today) {
		// A pending boss advance stays pending for its timer.
		return s, c.Session(), domain.ErrDailyCycleDone
	}

	s, _ = c.ResolveBoss(s, now, true)
	boss := c.Boss(s)
	if boss.Defeated() && c.session.BossAdvanceDue == nil {
		// Defeated but never advanced, e.g. shut down inside the delay.
		c.session.Boss = boss
		c.session.BossAdvanceDue = &now
		s, _ = c.ResolveBoss(s, now, true)
		boss = c.session.Boss
	}

	if baseDone {
		c.session = domain.Session{
			Phase:         domain.PhaseBonusPrompt,
			Kind:          domain.SessionBase,
			Day:           today,
			BaseExercises: list,
			Boss:          boss,
		}
		c.snapshot = nil
		return s, c.Session(), nil
	}

	weight, reps := c.flags.WorkoutDefaults()
	c.begin(domain.SessionBase, today, list, list, boss, weight, reps)
	c.session.MissionOffered = c.flags.HiddenMissionOffered(today)
	return s, c.Session(), nil
}

// FinishBonusSelection starts a bonus session from the chosen base
// exercises, kept in base order.
func (c *Controller) FinishBonusSelection(s domain.ProgressionState, ids []string) (domain.ProgressionState, domain.Session, error) {
	if c.session.Phase != domain.PhaseBonusPrompt {
		return s, c.Session(), domain.ErrBonusUnavailable
	}
	if c.flags.ExtraWorkoutDone(c.session.Day) {
		c.session.Phase = domain.PhaseIdle
		return s, c.Session(), domain.ErrBonusUnavailable
	}
	if len(ids) == 0 {
		return s, c.Session(), domain.Invalid("exercises", "select at least one exercise")
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var picked []domain.Exercise
	for _, ex := range c.session.BaseExercises {
		if want[ex.ID] {
			picked = append(picked, ex)
			delete(want, ex.ID)
		}
	}
	if len(want) > 0 {
		var unknown []string
		for id := range want {
			unknown = append(unknown, id)
		}
		return s, c.Session(), domain.Invalid("exercises", "unknown exercise ids: %s", strings.Join(unknown, ", "))
	}

	s, _ = c.ResolveBoss(s, c.clock.Now(), true)
	day := c.session.Day
	c.begin(domain.SessionBonus, day, picked, c.session.BaseExercises, c.Boss(s), c.cfg.DefaultWeight, c.cfg.DefaultReps)
	c.session.MissionOffered = c.flags.HiddenMissionOffered(day)
	return s, c.Session(), nil
}

// DeclineBonus closes the bonus prompt.
func (c *Controller) DeclineBonus() error {
	if c.session.Phase != domain.PhaseBonusPrompt {
		return domain.ErrBonusUnavailable
	}
	c.session.Phase = domain.PhaseIdle
	return nil
}

func (c *Controller) begin(kind domain.SessionKind, day domain.DayID, list, base []domain.Exercise, boss domain.Boss, weight float64, reps int) {
	total := 0
	for _, ex := range list {
		total += ex.Sets
	}
	c.session = domain.Session{
		Phase:          domain.PhaseActive,
		Kind:           kind,
		Day:            day,
		Exercises:      list,
		BaseExercises:  base,
		CurrentSet:     1,
		TotalSets:      total,
		Boss:           boss,
		Weight:         weight,
		Reps:           reps,
		BossAdvanceDue: c.session.BossAdvanceDue,
	}
	c.snapshot = nil
	c.earned = domain.Outcome{}
}

func (c *Controller) inSession() bool {
	return c.session.Phase == domain.PhaseActive || c.session.Phase == domain.PhaseMissionPrompt
}

// ─── Sets ───────────────────────────────────────────────────────────────────

// CompleteSet logs one set at weight × reps against the current boss.
func (c *Controller) CompleteSet(s domain.ProgressionState, weight float64, reps int) (domain.ProgressionState, domain.SetEvent, error) {
	var ev domain.SetEvent
	if math.IsNaN(weight) || weight < 0 || weight > 500 {
		return s, ev, domain.Invalid("weight", "must be between 0 and 500, got %g", weight)
	}
	if reps < 1 || reps > 200 {
		return s, ev, domain.Invalid("reps", "must be between 1 and 200, got %d", reps)
	}
	switch c.session.Phase {
	case domain.PhaseActive:
	case domain.PhaseMissionPrompt:
		return s, ev, domain.ErrMissionPending
	default:
		return s, ev, domain.ErrNoActiveSession
	}

	now := c.clock.Now()
	if c.session.RestUntil != nil {
		if !c.cfg.DevMode && now.Before(*c.session.RestUntil) {
			return s, ev, domain.ErrRestActive
		}
		c.session.RestUntil = nil
	}
	if !c.session.MissionActive && c.session.CompletedSets >= c.session.TotalSets {
		return s, ev, domain.ErrTargetReached
	}

	// A defeated boss waiting for its advance is replaced before it can be
	// hit again.
	s, _ = c.ResolveBoss(s, now, true)
	if c.snapshot == nil {
		c.snapshot = &domain.Snapshot{State: s.Clone(), Boss: c.session.Boss}
	}

	c.session.Weight = weight
	c.session.Reps = reps
	c.flag(c.flags.SetWorkoutDefaults(weight, reps), "workout defaults")

	dmg, crit := RollDamage(c.rng, weight, reps)
	ev.Damage, ev.Critical = dmg, crit
	boss := &c.session.Boss
	boss.CurrentHP -= dmg
	if boss.CurrentHP < 0 {
		boss.CurrentHP = 0
	}
	c.flag(c.flags.SetMonsterHP(boss.CurrentHP), "monster hp")

	if boss.Defeated() {
		ev.BossDefeated = true
		c.session.BossesDefeated++
		var out domain.Outcome
		s, out = c.pay(s, DefeatReward(boss.Level))
		ev.Outcome.Merge(out)
		due := now.Add(c.cfg.BossAdvanceDelay)
		c.session.BossAdvanceDue = &due
	}

	if c.session.MissionActive {
		c.session.MissionActive = false
		c.session.MissionCompleted = true
		ev.MissionComplete = true
		var out domain.Outcome
		s, out = c.pay(s, HiddenMissionReward)
		ev.Outcome.Merge(out)
	}
	c.session.CompletedSets++

	if c.offerMission(now) {
		ev.MissionOffered = true
		c.earned.Merge(ev.Outcome)
		return s, ev, nil
	}

	c.advance(now, &ev)
	c.earned.Merge(ev.Outcome)

	if c.session.CompletedSets >= c.session.TotalSets && !c.session.MissionActive {
		var rec domain.SessionRecord
		s, rec = c.complete(s, now, &ev.Outcome)
		ev.SessionComplete = true
		ev.Resting = false
		ev.Record = &rec
	}
	return s, ev, nil
}

// offerMission rolls for the hidden mission on the last set of the last
// exercise, at most once per day.
func (c *Controller) offerMission(now time.Time) bool {
	last := len(c.session.Exercises) - 1
	if c.session.MissionOffered || c.session.MissionCompleted || c.session.ExerciseIndex != last {
		return false
	}
	if c.session.CurrentSet != c.session.Exercises[last].Sets {
		return false
	}
	if c.flags.HiddenMissionOffered(c.session.Day) {
		c.session.MissionOffered = true
		return false
	}
	if c.rng.Float64() >= c.cfg.HiddenMissionChance {
		return false
	}
	c.session.MissionOffered = true
	c.session.Phase = domain.PhaseMissionPrompt
	c.flag(c.flags.MarkHiddenMissionOffered(c.session.Day), "hidden mission marker")
	return true
}

// advance moves to the next set or exercise and opens the rest window.
func (c *Controller) advance(now time.Time, ev *domain.SetEvent) {
	ex, ok := c.session.CurrentExercise()
	if !ok {
		return
	}
	switch {
	case c.session.CurrentSet < ex.Sets:
		c.session.CurrentSet++
	case c.session.ExerciseIndex < len(c.session.Exercises)-1:
		c.session.ExerciseIndex++
		c.session.CurrentSet = 1
		c.session.Weight = c.cfg.DefaultWeight
		c.session.Reps = c.cfg.DefaultReps
		c.flag(c.flags.SetWorkoutDefaults(c.cfg.DefaultWeight, c.cfg.DefaultReps), "workout defaults")
		ev.NextExercise = true
	default:
		return
	}
	if !c.cfg.DevMode && c.cfg.RestPeriod > 0 {
		until := now.Add(c.cfg.RestPeriod)
		c.session.RestUntil = &until
		ev.Resting = true
	}
}

// SkipRest ends the rest window early.
func (c *Controller) SkipRest() error {
	if !c.inSession() {
		return domain.ErrNoActiveSession
	}
	c.session.RestUntil = nil
	return nil
}

// ─── Hidden Mission ─────────────────────────────────────────────────────────

// AcceptHiddenMission adds one extra set to the current exercise.
func (c *Controller) AcceptHiddenMission() (domain.Session, error) {
	if c.session.Phase != domain.PhaseMissionPrompt {
		return c.Session(), domain.ErrNoHiddenMission
	}
	c.session.Phase = domain.PhaseActive
	c.session.MissionActive = true
	c.session.TotalSets++
	c.session.CurrentSet++
	return c.Session(), nil
}

// DeclineHiddenMission turns the offer down, which completes the session.
func (c *Controller) DeclineHiddenMission(s domain.ProgressionState) (domain.ProgressionState, domain.SetEvent, error) {
	var ev domain.SetEvent
	if c.session.Phase != domain.PhaseMissionPrompt {
		return s, ev, domain.ErrNoHiddenMission
	}
	c.session.Phase = domain.PhaseActive
	if c.session.CompletedSets >= c.session.TotalSets {
		var rec domain.SessionRecord
		s, rec = c.complete(s, c.clock.Now(), &ev.Outcome)
		ev.SessionComplete = true
		ev.Record = &rec
	}
	return s, ev, nil
}

// ─── Completion / Abandonment ───────────────────────────────────────────────

func (c *Controller) complete(s domain.ProgressionState, now time.Time, out *domain.Outcome) (domain.ProgressionState, domain.SessionRecord) {
	var o, done domain.Outcome
	day := c.session.Day
	kind := c.session.Kind

	switch kind {
	case domain.SessionBase:
		s, o = c.pay(s, BaseSessionReward)
		done.Merge(o)
		s, o = c.engine.CompleteWorkout(s, day)
		done.Merge(o)
		c.flag(c.flags.SetExtraWorkoutDone(day, false), "extra workout marker")
	case domain.SessionBonus:
		s, o = c.pay(s, BonusReward(len(c.session.Exercises)))
		done.Merge(o)
		c.flag(c.flags.SetExtraWorkoutDone(day, true), "extra workout marker")
	}
	out.Merge(done)
	c.earned.Merge(done)

	rec := c.record(domain.OutcomeCompleted, now)
	c.snapshot = nil
	c.session.RestUntil = nil
	c.session.MissionActive = false
	if kind == domain.SessionBase {
		c.session.Phase = domain.PhaseBonusPrompt
	} else {
		c.session.Phase = domain.PhaseIdle
	}
	return s, rec
}

// Abandon ends a partially completed session and restores the state and
// boss captured at its first set. A pending boss advance is cancelled.
func (c *Controller) Abandon(s domain.ProgressionState) (domain.ProgressionState, domain.SessionRecord, error) {
	if !c.inSession() || c.snapshot == nil ||
		c.session.CompletedSets <= 0 || c.session.CompletedSets >= c.session.TotalSets {
		return s, domain.SessionRecord{}, domain.ErrNotAbandonable
	}

	restored := c.snapshot.State.Clone()
	c.session.Boss = c.snapshot.Boss
	c.session.BossAdvanceDue = nil
	c.flag(c.flags.SetMonsterHP(c.snapshot.Boss.CurrentHP), "monster hp")

	rec := c.record(domain.OutcomeAbandoned, c.clock.Now())
	rec.XPGranted, rec.PointsGranted = 0, 0
	c.snapshot = nil
	c.session.Phase = domain.PhaseAbandoned
	c.session.RestUntil = nil
	c.session.MissionActive = false
	return restored, rec, nil
}

func (c *Controller) record(outcome domain.SessionOutcome, now time.Time) domain.SessionRecord {
	return domain.SessionRecord{
		ID:             uuid.NewString(),
		Day:            c.session.Day,
		Kind:           c.session.Kind,
		Outcome:        outcome,
		Exercises:      len(c.session.Exercises),
		CompletedSets:  c.session.CompletedSets,
		TotalSets:      c.session.TotalSets,
		BossesDefeated: c.session.BossesDefeated,
		XPGranted:      c.earned.XPGranted,
		PointsGranted:  c.earned.PointsGranted,
		FinishedAt:     now,
	}
}

// ─── Boss Advance ───────────────────────────────────────────────────────────

// PendingBossAdvance returns when the defeated boss will be replaced.
func (c *Controller) PendingBossAdvance() (time.Time, bool) {
	if c.session.BossAdvanceDue == nil {
		return time.Time{}, false
	}
	return *c.session.BossAdvanceDue, true
}

// ResolveBoss replaces a defeated boss with the next level once its advance
// is due, or immediately when force is set. Reports whether it advanced.
func (c *Controller) ResolveBoss(s domain.ProgressionState, now time.Time, force bool) (domain.ProgressionState, bool) {
	due := c.session.BossAdvanceDue
	if due == nil || (!force && now.Before(*due)) {
		return s, false
	}
	level := c.session.Boss.Level
	if level < 1 {
		level = s.MonsterLevel
	}
	next := NewBoss(level+1, MaxHP(level+1))
	s = progression.UpdateMonsterLevel(s, next.Level)
	c.session.Boss = next
	c.session.BossAdvanceDue = nil
	c.flag(c.flags.SetMonsterHP(next.CurrentHP), "monster hp")
	return s, true
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// pay grants a reward through the engine so level and achievement effects
// apply.
func (c *Controller) pay(s domain.ProgressionState, r domain.Reward) (domain.ProgressionState, domain.Outcome) {
	var out domain.Outcome
	if r.XP > 0 {
		var err error
		if s, out, err = c.engine.GrantXP(s, r.XP); err != nil {
			c.log.WithError(err).Warn("battle: reward xp rejected")
		}
	}
	if r.Points > 0 {
		next, err := c.engine.GrantPoints(s, r.Points)
		if err != nil {
			c.log.WithError(err).Warn("battle: reward points rejected")
		} else {
			s = next
			out.PointsGranted += r.Points
		}
	}
	return s, out
}

// flag logs a failed advisory flag write. Flags are caches; the blob stays
// authoritative.
func (c *Controller) flag(err error, what string) {
	if err != nil {
		c.log.WithError(err).WithField("flag", what).Warn("battle: flag write failed")
	}
}

func normalizeExercises(in []domain.Exercise) ([]domain.Exercise, error) {
	var out []domain.Exercise
	seen := make(map[string]bool, len(in))
	for i, ex := range in {
		if ex.Sets <= 0 {
			continue
		}
		if ex.ID == "" {
			ex.ID = strconv.Itoa(i + 1)
		}
		if seen[ex.ID] {
			return nil, domain.Invalid("exercises", "duplicate exercise id %q", ex.ID)
		}
		seen[ex.ID] = true
		out = append(out, ex)
	}
	if len(out) == 0 {
		return nil, domain.ErrNoExercises
	}
	return out, nil
}
