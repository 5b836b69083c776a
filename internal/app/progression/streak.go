// Package progression implements the deukgeun progression engine.
// Streaks, levels, achievements, manual logs and the diet, body, shop and
// program bookkeeping that lives in the same state blob.
// Every operation takes a ProgressionState by value and returns a new one.
package progression

import (
	"time"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// Streak counts consecutive days present in dates, walking back from today.
// The walk stops at the first missing day, today included, so a user who has
// not acted yet today reports 0. Malformed ids never match.
func Streak(dates []domain.DayID, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	sorted := domain.SortedDesc(dates)
	present := make(map[domain.DayID]struct{}, len(sorted))
	for _, d := range sorted {
		present[d] = struct{}{}
	}

	streak := 0
	for i := 0; i < len(present); i++ {
		expected := domain.DayOf(today.AddDate(0, 0, -i))
		if _, ok := present[expected]; !ok {
			break
		}
		streak++
	}
	return streak
}

// RegisterWorkoutDay adds day to the workout dates and refreshes the
// workout streak.
func (e *Engine) RegisterWorkoutDay(s domain.ProgressionState, day domain.DayID) domain.ProgressionState {
	s = s.Clone()
	e.registerWorkoutDay(&s, day)
	return s
}

func (e *Engine) registerWorkoutDay(s *domain.ProgressionState, day domain.DayID) {
	s.WorkoutDates, _ = domain.AddDay(s.WorkoutDates, day)
	s.CurrentStreak = Streak(s.WorkoutDates, e.clock.Now())
	d := day
	s.LastWorkoutDate = &d
}

// MarkAttendance records an attendance check-in for day. A new day pays
// AttendancePoints; repeat check-ins only refresh the streak.
func (e *Engine) MarkAttendance(s domain.ProgressionState, day domain.DayID) (domain.ProgressionState, domain.Outcome, error) {
	var out domain.Outcome
	if !day.Valid() {
		return s, out, domain.Invalid("day", "%q is not a YYYY-MM-DD date", day)
	}

	s = s.Clone()
	var added bool
	s.AttendanceDates, added = domain.AddDay(s.AttendanceDates, day)
	if added {
		s.Points += AttendancePoints
		out.PointsGranted += AttendancePoints
	}
	s.AttendanceStreak = Streak(s.AttendanceDates, e.clock.Now())

	out.Merge(e.evaluate(&s))
	return s, out, nil
}

// IsAttendanceMarked reports whether day already has a check-in.
func IsAttendanceMarked(s domain.ProgressionState, day domain.DayID) bool {
	return domain.HasDay(s.AttendanceDates, day)
}

// Recompute refreshes both derived streaks against the current day. Stored
// values are caches; a mismatch is repaired silently and reported through
// the second return so callers can log it.
func (e *Engine) Recompute(s domain.ProgressionState) (domain.ProgressionState, bool) {
	now := e.clock.Now()
	attendance := Streak(s.AttendanceDates, now)
	workout := Streak(s.WorkoutDates, now)
	if attendance == s.AttendanceStreak && workout == s.CurrentStreak {
		return s, false
	}
	s = s.Clone()
	s.AttendanceStreak = attendance
	s.CurrentStreak = workout
	return s, true
}
