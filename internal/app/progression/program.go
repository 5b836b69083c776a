package progression

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// SaveCustomProgram stores a program and makes it the active one, starting
// at its first day.
func (e *Engine) SaveCustomProgram(s domain.ProgressionState, p domain.Program) (domain.ProgressionState, domain.Program, error) {
	if strings.TrimSpace(p.Name) == "" {
		return s, p, domain.Invalid("program", "name is required")
	}
	for _, d := range p.Days {
		if _, ok := weekdayIndex(d.Day); !ok {
			return s, p, domain.Invalid("program", "unknown weekday %q", d.Day)
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = e.clock.Now()
	}

	s = s.Clone()
	s.CustomPrograms = append(s.CustomPrograms, p)
	s.ActiveProgram = p.ID
	if len(p.Days) > 0 {
		s.CurrentWorkoutDay = p.Days[0].Day
	}
	return s, p, nil
}

// SetActiveProgram switches the active program. An empty id clears it.
func SetActiveProgram(s domain.ProgressionState, programID string) (domain.ProgressionState, error) {
	if programID != "" {
		if _, ok := findProgram(s, programID); !ok {
			return s, fmt.Errorf("%w: %s", domain.ErrProgramNotFound, programID)
		}
	}
	s = s.Clone()
	s.ActiveProgram = programID
	return s, nil
}

// ActiveProgram returns the active program, if one is set and still saved.
func ActiveProgram(s domain.ProgressionState) (domain.Program, bool) {
	if s.ActiveProgram == "" {
		return domain.Program{}, false
	}
	return findProgram(s, s.ActiveProgram)
}

// AdvanceToNextWorkoutDay moves the current day to the next weekday that the
// active program trains on. No-op without an active program.
func AdvanceToNextWorkoutDay(s domain.ProgressionState) domain.ProgressionState {
	s = s.Clone()
	advanceWorkoutDay(&s)
	return s
}

func advanceWorkoutDay(s *domain.ProgressionState) {
	p, ok := ActiveProgram(*s)
	if !ok {
		return
	}
	current, ok := weekdayIndex(s.CurrentWorkoutDay)
	if !ok {
		current = -1
	}
	for i := 1; i <= 7; i++ {
		next := time.Weekday((current + i + 7) % 7).String()
		for _, d := range p.Days {
			if strings.EqualFold(d.Day, next) {
				s.CurrentWorkoutDay = d.Day
				return
			}
		}
	}
}

func findProgram(s domain.ProgressionState, id string) (domain.Program, bool) {
	for _, p := range s.CustomPrograms {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Program{}, false
}

func weekdayIndex(name string) (int, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return int(d), true
		}
	}
	return 0, false
}
