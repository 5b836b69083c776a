package domain

import "time"

// ─── Battle Session Types ───────────────────────────────────────────────────

// Exercise is one planned movement of a workout day.
type Exercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	MuscleGroup string `json:"muscle_group,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

// SessionKind is the two-slot session index: the day's base routine or the
// bonus session built from a subset of it.
type SessionKind int

const (
	SessionBase  SessionKind = 1
	SessionBonus SessionKind = 2
)

func (k SessionKind) String() string {
	switch k {
	case SessionBase:
		return "base"
	case SessionBonus:
		return "bonus"
	default:
		return "unknown"
	}
}

// SessionPhase is the state-machine position of the battle controller.
type SessionPhase string

const (
	PhaseIdle          SessionPhase = "idle"
	PhaseActive        SessionPhase = "active"
	PhaseMissionPrompt SessionPhase = "mission_prompt"
	PhaseBonusPrompt   SessionPhase = "bonus_prompt"
	PhaseAbandoned     SessionPhase = "abandoned"
)

// Boss is the monster the sets are fighting.
type Boss struct {
	Level     int `json:"level"`
	CurrentHP int `json:"current_hp"`
	MaxHP     int `json:"max_hp"`
}

// Defeated reports whether the boss has no HP left.
func (b Boss) Defeated() bool { return b.CurrentHP <= 0 }

// HPPct returns remaining HP as a percentage.
func (b Boss) HPPct() float64 {
	if b.MaxHP <= 0 {
		return 0
	}
	return float64(b.CurrentHP) / float64(b.MaxHP) * 100.0
}

// Snapshot is the rollback point captured at the first set of a session.
type Snapshot struct {
	State ProgressionState `json:"state"`
	Boss  Boss             `json:"boss"`
}

// Session is the transient battle state exposed to callers.
type Session struct {
	Phase            SessionPhase `json:"phase"`
	Kind             SessionKind  `json:"kind"`
	Day              DayID        `json:"day"`
	Exercises        []Exercise   `json:"exercises"`
	BaseExercises    []Exercise   `json:"base_exercises"`
	ExerciseIndex    int          `json:"exercise_index"`
	CurrentSet       int          `json:"current_set"`
	TotalSets        int          `json:"total_sets"`
	CompletedSets    int          `json:"completed_sets"`
	BossesDefeated   int          `json:"bosses_defeated"`
	Boss             Boss         `json:"boss"`
	Weight           float64      `json:"weight"`
	Reps             int          `json:"reps"`
	RestUntil        *time.Time   `json:"rest_until,omitempty"`
	MissionOffered   bool         `json:"mission_offered"`
	MissionActive    bool         `json:"mission_active"`
	MissionCompleted bool         `json:"mission_completed"`
	BossAdvanceDue   *time.Time   `json:"boss_advance_due,omitempty"`
	HasSnapshot      bool         `json:"has_snapshot"`
}

// CurrentExercise returns the exercise being performed, if any.
func (s Session) CurrentExercise() (Exercise, bool) {
	if s.ExerciseIndex < 0 || s.ExerciseIndex >= len(s.Exercises) {
		return Exercise{}, false
	}
	return s.Exercises[s.ExerciseIndex], true
}

// SetEvent is the feedback payload of one completed set.
type SetEvent struct {
	Damage          int     `json:"damage"`
	Critical        bool    `json:"critical"`
	BossDefeated    bool    `json:"boss_defeated"`
	MissionOffered  bool    `json:"mission_offered"`
	MissionComplete bool    `json:"mission_complete"`
	SessionComplete bool    `json:"session_complete"`
	Resting         bool    `json:"resting"`
	NextExercise    bool    `json:"next_exercise"`
	Outcome         Outcome `json:"outcome"`

	// Record is set when the set finished the session.
	Record *SessionRecord `json:"record,omitempty"`
}

// SessionOutcome labels how a session ended.
type SessionOutcome string

const (
	OutcomeCompleted SessionOutcome = "completed"
	OutcomeAbandoned SessionOutcome = "abandoned"
)

// SessionRecord is one row of the session audit trail.
type SessionRecord struct {
	ID             string         `json:"id"`
	Day            DayID          `json:"day"`
	Kind           SessionKind    `json:"kind"`
	Outcome        SessionOutcome `json:"outcome"`
	Exercises      int            `json:"exercises"`
	CompletedSets  int            `json:"completed_sets"`
	TotalSets      int            `json:"total_sets"`
	BossesDefeated int            `json:"bosses_defeated"`
	XPGranted      int64          `json:"xp_granted"`
	PointsGranted  int64          `json:"points_granted"`
	FinishedAt     time.Time      `json:"finished_at"`
}
