// Package store persists the progression state as a single JSON document and
// keeps the advisory session flags next to it. Both live in SQLite.
package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/deukgeun/deukgeun/internal/domain"
	"github.com/deukgeun/deukgeun/internal/infra/sqlite"
)

// StateKey is the key of the progression document.
const StateKey = "deukgeun_user_progress"

const (
	flagMonsterHP     = "monsterCurrentHP"
	flagWorkoutWeight = "workoutWeight"
	flagWorkoutReps   = "workoutReps"
	flagHiddenMission = "lastHiddenMission"
	flagExtraPrefix   = "extraWorkoutDone:"
)

// Last-used values before anything is stored.
const (
	DefaultWeight = 20.0
	DefaultReps   = 12
)

// Store implements domain.StateStore, domain.FlagStore and domain.SessionLog.
type Store struct {
	db       *sqlite.DB
	defaults func() domain.ProgressionState
	clock    domain.Clock
	log      logrus.FieldLogger
}

// New creates a store. defaults builds the state used when nothing usable is
// persisted.
func New(db *sqlite.DB, defaults func() domain.ProgressionState, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		db:       db,
		defaults: defaults,
		clock:    domain.SystemClock,
		log:      log.WithField("component", "store"),
	}
}

// WithClock overrides the clock used for update stamps.
func (s *Store) WithClock(c domain.Clock) *Store {
	s.clock = c
	return s
}

// ─── State ──────────────────────────────────────────────────────────────────

// LoadState returns the stored document. A missing or unreadable document
// yields the default state; only database failures are errors.
func (s *Store) LoadState() (domain.ProgressionState, error) {
	blob, ok, err := s.db.GetBlob(StateKey)
	if err != nil {
		return s.defaults(), fmt.Errorf("load progression: %w", err)
	}
	if !ok {
		return s.defaults(), nil
	}

	var st domain.ProgressionState
	if err := json.Unmarshal([]byte(blob), &st); err != nil {
		s.log.WithError(err).Warn("stored progression is corrupt, starting from defaults")
		return s.defaults(), nil
	}
	return s.normalize(st), nil
}

// SaveState replaces the stored document.
func (s *Store) SaveState(st domain.ProgressionState) error {
	blob, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode progression: %w", err)
	}
	if err := s.db.PutBlob(StateKey, string(blob), s.clock.Now()); err != nil {
		return fmt.Errorf("save progression: %w", err)
	}
	return nil
}

// ResetState drops the stored document and the flags that follow it.
func (s *Store) ResetState() error {
	if err := s.db.DeleteBlob(StateKey); err != nil {
		return fmt.Errorf("reset progression: %w", err)
	}
	for _, k := range []string{flagMonsterHP, flagWorkoutWeight, flagWorkoutReps, flagHiddenMission} {
		if err := s.db.DeleteFlag(k); err != nil {
			return fmt.Errorf("reset flag %s: %w", k, err)
		}
	}
	return nil
}

// normalize fills fields an older or hand-edited document may lack.
func (s *Store) normalize(st domain.ProgressionState) domain.ProgressionState {
	def := s.defaults()
	if st.Level < 1 {
		st.Level = 1
	}
	if st.Level > domain.MaxLevel {
		st.Level = domain.MaxLevel
	}
	if st.MonsterLevel < 1 {
		st.MonsterLevel = 1
	}
	if st.CompletedDays == nil {
		st.CompletedDays = map[domain.DayID]bool{}
	}
	if st.ManualWorkoutCounts == nil {
		st.ManualWorkoutCounts = map[domain.DayID]int{}
	}
	if st.Diet.TargetCalories <= 0 {
		st.Diet.TargetCalories = def.Diet.TargetCalories
	}
	if st.Diet.TargetProtein <= 0 {
		st.Diet.TargetProtein = def.Diet.TargetProtein
	}
	if st.Body.Height <= 0 {
		st.Body = def.Body
	}
	st.AttendanceDates = uniqueDays(st.AttendanceDates)
	st.WorkoutDates = uniqueDays(st.WorkoutDates)
	st.Diet.ProteinGoalDates = uniqueDays(st.Diet.ProteinGoalDates)

	// Keep stored progress, drop repeated ids, add catalog entries the
	// document predates.
	var achievements []domain.Achievement
	seen := make(map[string]bool, len(def.Achievements))
	for _, a := range st.Achievements {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		achievements = append(achievements, a)
	}
	for _, a := range def.Achievements {
		if !seen[a.ID] {
			achievements = append(achievements, a)
		}
	}
	st.Achievements = achievements
	return st
}

// uniqueDays drops repeated days, keeping first occurrences in order.
func uniqueDays(days []domain.DayID) []domain.DayID {
	if len(days) < 2 {
		return days
	}
	out := make([]domain.DayID, 0, len(days))
	for _, d := range days {
		out, _ = domain.AddDay(out, d)
	}
	return out
}

// ─── Flags ──────────────────────────────────────────────────────────────────

func (s *Store) flag(key string) (string, bool) {
	v, ok, err := s.db.GetFlag(key)
	if err != nil {
		s.log.WithError(err).WithField("flag", key).Warn("flag read failed")
		return "", false
	}
	return v, ok
}

// MonsterHP returns the stored boss HP rounded and clamped to [0, maxHP], or
// maxHP when unset or unreadable.
func (s *Store) MonsterHP(maxHP int) int {
	v, ok := s.flag(flagMonsterHP)
	if !ok {
		return maxHP
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return maxHP
	}
	hp := int(math.Round(f))
	if hp < 0 {
		hp = 0
	}
	if hp > maxHP {
		hp = maxHP
	}
	return hp
}

// SetMonsterHP stores the boss HP.
func (s *Store) SetMonsterHP(hp int) error {
	return s.db.SetFlag(flagMonsterHP, strconv.Itoa(hp))
}

// WorkoutDefaults returns the last weight and reps entered.
func (s *Store) WorkoutDefaults() (float64, int) {
	weight, reps := DefaultWeight, DefaultReps
	if v, ok := s.flag(flagWorkoutWeight); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			weight = f
		}
	}
	if v, ok := s.flag(flagWorkoutReps); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			reps = n
		}
	}
	return weight, reps
}

// SetWorkoutDefaults stores the last weight and reps entered.
func (s *Store) SetWorkoutDefaults(weight float64, reps int) error {
	if err := s.db.SetFlag(flagWorkoutWeight, strconv.FormatFloat(weight, 'f', -1, 64)); err != nil {
		return err
	}
	return s.db.SetFlag(flagWorkoutReps, strconv.Itoa(reps))
}

// HiddenMissionOffered reports whether day already had its mission offer.
func (s *Store) HiddenMissionOffered(day domain.DayID) bool {
	v, ok := s.flag(flagHiddenMission)
	return ok && v == string(day)
}

// MarkHiddenMissionOffered records day's mission offer.
func (s *Store) MarkHiddenMissionOffered(day domain.DayID) error {
	return s.db.SetFlag(flagHiddenMission, string(day))
}

// ExtraWorkoutDone reports whether day's bonus session is finished.
func (s *Store) ExtraWorkoutDone(day domain.DayID) bool {
	v, ok := s.flag(flagExtraPrefix + string(day))
	return ok && v == "true"
}

// SetExtraWorkoutDone records day's bonus session status.
func (s *Store) SetExtraWorkoutDone(day domain.DayID, done bool) error {
	return s.db.SetFlag(flagExtraPrefix+string(day), strconv.FormatBool(done))
}

// ─── Session Log ────────────────────────────────────────────────────────────

// RecordSession appends a finished session to the history.
func (s *Store) RecordSession(rec domain.SessionRecord) error {
	if err := s.db.InsertSession(rec); err != nil {
		return fmt.Errorf("record session %s: %w", rec.ID, err)
	}
	return nil
}

// ListSessions returns the newest sessions first.
func (s *Store) ListSessions(limit int) ([]domain.SessionRecord, error) {
	return s.db.ListSessions(limit)
}

var (
	_ domain.StateStore = (*Store)(nil)
	_ domain.FlagStore  = (*Store)(nil)
	_ domain.SessionLog = (*Store)(nil)
)
