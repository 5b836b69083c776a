// Package domain holds the pure types of the deukgeun engine.
// The engagement types drive retention through levels, streaks and
// achievements; nothing in this package touches storage.
package domain

import "time"

// ─── Level / XP Types ───────────────────────────────────────────────────────

// MaxLevel is the highest player level.
const MaxLevel = 5

// XPSource categorizes how XP was earned.
type XPSource string

const (
	XPWorkoutCompleted XPSource = "WORKOUT_COMPLETED"
	XPBossDefeated     XPSource = "BOSS_DEFEATED"
	XPHiddenMission    XPSource = "HIDDEN_MISSION"
	XPBonusSession     XPSource = "BONUS_SESSION"
	XPAchievement      XPSource = "ACHIEVEMENT"
	XPManual           XPSource = "MANUAL"
)

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementCategory groups achievements by the counter they read.
type AchievementCategory string

const (
	CatWorkout AchievementCategory = "workout"
	CatDiet    AchievementCategory = "diet"
	CatStreak  AchievementCategory = "streak"
	CatLevel   AchievementCategory = "level"
	CatSpecial AchievementCategory = "special"
)

// Reward is what an achievement pays out when it completes.
type Reward struct {
	XP     int64 `json:"xp"`
	Points int64 `json:"points"`
}

// Achievement is one entry of the fixed catalog stored inside the state.
// Completed is a one-way latch.
type Achievement struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Icon            string              `json:"icon"`
	Category        AchievementCategory `json:"category"`
	Requirement     int                 `json:"requirement"`
	CurrentProgress int                 `json:"current_progress"`
	Completed       bool                `json:"completed"`
	CompletedAt     *time.Time          `json:"completed_at"`
	Reward          Reward              `json:"reward"`
}

// ProgressPct returns completion percentage (0-100).
func (a Achievement) ProgressPct() float64 {
	if a.Completed || a.Requirement <= 0 {
		return 100.0
	}
	pct := float64(a.CurrentProgress) / float64(a.Requirement) * 100.0
	if pct > 100.0 {
		pct = 100.0
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// ─── Outcome ────────────────────────────────────────────────────────────────

// Outcome describes what an engine operation granted. Callers render it as
// feedback; it is never persisted.
type Outcome struct {
	XPGranted     int64    `json:"xp_granted"`
	PointsGranted int64    `json:"points_granted"`
	LevelsGained  int      `json:"levels_gained"`
	Unlocked      []string `json:"unlocked,omitempty"`
}

// Merge folds o2 into o.
func (o *Outcome) Merge(o2 Outcome) {
	o.XPGranted += o2.XPGranted
	o.PointsGranted += o2.PointsGranted
	o.LevelsGained += o2.LevelsGained
	o.Unlocked = append(o.Unlocked, o2.Unlocked...)
}
