package progression

import (
	"fmt"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// Fixed payouts of the ledger.
const (
	AttendancePoints      = 10
	WorkoutCompletePoints = 100
	ManualLogPoints       = 50
)

// Thresholds holds the XP needed to reach each level from the one below it,
// indexed by the level being reached. Index 0 and 1 are unused.
type Thresholds [domain.MaxLevel + 1]int64

// DefaultThresholds is the stock level table.
var DefaultThresholds = Thresholds{0, 0, 1000, 2500, 5000, 10000}

// ThresholdsFrom builds a table from the four per-level requirements for
// levels 2 through 5. They must be positive and ascending.
func ThresholdsFrom(levels []int64) (Thresholds, error) {
	var t Thresholds
	if len(levels) != domain.MaxLevel-1 {
		return t, fmt.Errorf("need %d level thresholds, got %d", domain.MaxLevel-1, len(levels))
	}
	prev := int64(0)
	for i, xp := range levels {
		if xp <= prev {
			return t, fmt.Errorf("threshold for level %d must exceed %d, got %d", i+2, prev, xp)
		}
		t[i+2] = xp
		prev = xp
	}
	return t, nil
}

// Engine applies the progression rules. It holds configuration only; all
// state flows through its arguments.
type Engine struct {
	thresholds Thresholds
	catalog    []definition
	clock      domain.Clock
}

// Option configures an Engine.
type Option func(*Engine)

// WithThresholds overrides the level table.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithClock overrides the wall clock.
func WithClock(c domain.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// NewEngine creates an engine with the stock catalog.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		thresholds: DefaultThresholds,
		catalog:    definitions(),
		clock:      domain.SystemClock,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewState returns a fresh default state carrying this engine's catalog.
func (e *Engine) NewState() domain.ProgressionState {
	return domain.DefaultProgressionState(Catalog())
}

// Today returns the engine's current calendar day.
func (e *Engine) Today() domain.DayID {
	return domain.DayOf(e.clock.Now())
}

// ─── XP / Level ─────────────────────────────────────────────────────────────

// GrantXP adds XP, promotes through the level table and re-evaluates
// achievements before returning.
func (e *Engine) GrantXP(s domain.ProgressionState, amount int64) (domain.ProgressionState, domain.Outcome, error) {
	var out domain.Outcome
	if amount < 0 {
		return s, out, domain.Invalid("xp", "amount must not be negative, got %d", amount)
	}

	s = s.Clone()
	out.Merge(e.grantXP(&s, amount))
	return s, out, nil
}

// grantXP is GrantXP on an already-cloned state.
func (e *Engine) grantXP(s *domain.ProgressionState, amount int64) domain.Outcome {
	out := domain.Outcome{XPGranted: amount}
	out.LevelsGained = e.addXP(s, amount)
	out.Merge(e.evaluate(s))
	return out
}

// addXP applies the promotion loop without evaluating achievements.
// Returns the number of levels gained.
func (e *Engine) addXP(s *domain.ProgressionState, amount int64) int {
	s.CurrentXP += amount
	s.TotalXP += amount

	gained := 0
	for s.Level < domain.MaxLevel {
		need := e.thresholds[s.Level+1]
		if s.CurrentXP < need {
			break
		}
		s.CurrentXP -= need
		s.Level++
		gained++
	}
	return gained
}

// GrantPoints adds points. No XP, level or achievement side effects.
func (e *Engine) GrantPoints(s domain.ProgressionState, amount int64) (domain.ProgressionState, error) {
	if amount < 0 {
		return s, domain.Invalid("points", "amount must not be negative, got %d", amount)
	}
	s = s.Clone()
	s.Points += amount
	return s, nil
}

// XPForNextLevel returns the XP span of the next level, or 0 at max level.
func (e *Engine) XPForNextLevel(s domain.ProgressionState) int64 {
	if s.Level >= domain.MaxLevel {
		return 0
	}
	return e.thresholds[s.Level+1]
}

// ProgressPct returns progress toward the next level (0.0–100.0).
// Max level always reports 100.
func (e *Engine) ProgressPct(s domain.ProgressionState) float64 {
	next := e.XPForNextLevel(s)
	if next <= 0 {
		return 100.0
	}
	progress := float64(s.CurrentXP) / float64(next) * 100.0
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}

// ─── Workout Completion ─────────────────────────────────────────────────────

// CompleteWorkout books a finished base routine for day: the workout counter,
// the completed-day marker, the point payout, the streak date and the
// program's next day, followed by achievement evaluation.
func (e *Engine) CompleteWorkout(s domain.ProgressionState, day domain.DayID) (domain.ProgressionState, domain.Outcome) {
	s = s.Clone()
	out := e.completeWorkout(&s, day)
	return s, out
}

func (e *Engine) completeWorkout(s *domain.ProgressionState, day domain.DayID) domain.Outcome {
	s.WorkoutsCompleted++
	s.CompletedDays[day] = true
	s.Points += WorkoutCompletePoints
	e.registerWorkoutDay(s, day)
	advanceWorkoutDay(s)

	out := domain.Outcome{PointsGranted: WorkoutCompletePoints}
	out.Merge(e.evaluate(s))
	return out
}

// UpdateMonsterLevel sets the boss level carried in the state.
func UpdateMonsterLevel(s domain.ProgressionState, level int) domain.ProgressionState {
	if level < 1 {
		level = 1
	}
	s = s.Clone()
	s.MonsterLevel = level
	return s
}
