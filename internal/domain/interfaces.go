package domain

import "time"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// StateStore is the persistence boundary for the progression blob.
// Implemented by app/store.Store.
type StateStore interface {
	// LoadState returns the persisted state, or a fresh default state when
	// nothing usable is stored.
	LoadState() (ProgressionState, error)

	// SaveState replaces the persisted blob.
	SaveState(state ProgressionState) error
}

// FlagStore holds the advisory scalar flags kept outside the blob. Every
// getter tolerates a missing entry by returning a safe default.
type FlagStore interface {
	MonsterHP(maxHP int) int
	SetMonsterHP(hp int) error
	WorkoutDefaults() (weight float64, reps int)
	SetWorkoutDefaults(weight float64, reps int) error
	HiddenMissionOffered(day DayID) bool
	MarkHiddenMissionOffered(day DayID) error
	ExtraWorkoutDone(day DayID) bool
	SetExtraWorkoutDone(day DayID, done bool) error
}

// SessionLog records finished sessions for auditing.
type SessionLog interface {
	RecordSession(rec SessionRecord) error
	ListSessions(limit int) ([]SessionRecord, error)
}

// Clock abstracts wall time so day boundaries and rest windows are testable.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)
