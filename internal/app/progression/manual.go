package progression

import (
	"strings"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// Manual log input bounds.
const (
	maxManualSets = 20
	maxManualReps = 200
)

// RecordManual books an ad-hoc workout entry for day. It needs no battle
// session. Each day accepts at most domain.ManualLogLimit entries; the next
// one fails with a *domain.CapacityError and leaves s untouched.
func (e *Engine) RecordManual(s domain.ProgressionState, day domain.DayID, exercise string, sets, reps int) (domain.ProgressionState, domain.Outcome, error) {
	var out domain.Outcome

	exercise = strings.TrimSpace(exercise)
	switch {
	case !day.Valid():
		return s, out, domain.Invalid("day", "%q is not a YYYY-MM-DD date", day)
	case exercise == "":
		return s, out, domain.Invalid("exercise", "name is required")
	case sets < 1 || sets > maxManualSets:
		return s, out, domain.Invalid("sets", "must be between 1 and %d, got %d", maxManualSets, sets)
	case reps < 1 || reps > maxManualReps:
		return s, out, domain.Invalid("reps", "must be between 1 and %d, got %d", maxManualReps, reps)
	}

	if s.ManualWorkoutCounts[day] >= domain.ManualLogLimit {
		return s, out, &domain.CapacityError{Day: day, Limit: domain.ManualLogLimit}
	}

	s = s.Clone()
	s.ManualWorkoutCounts[day]++
	s.ManualWorkoutLogs = append(s.ManualWorkoutLogs, domain.ManualLog{
		Day:      day,
		Exercise: exercise,
		Sets:     sets,
		Reps:     reps,
	})
	s.CompletedDays[day] = true
	s.WorkoutsCompleted++
	s.Points += ManualLogPoints
	out.PointsGranted += ManualLogPoints
	e.registerWorkoutDay(&s, day)

	out.Merge(e.evaluate(&s))
	return s, out, nil
}

// ManualLogsFor returns the entries recorded on day, oldest first.
func ManualLogsFor(s domain.ProgressionState, day domain.DayID) []domain.ManualLog {
	var out []domain.ManualLog
	for _, l := range s.ManualWorkoutLogs {
		if l.Day == day {
			out = append(out, l)
		}
	}
	return out
}
