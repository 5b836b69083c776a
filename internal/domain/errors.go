package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrCapacityExceeded = errors.New("daily capacity exceeded")

	// Battle session errors
	ErrNoActiveSession  = errors.New("no active workout session")
	ErrSessionActive    = errors.New("a workout session is already in progress")
	ErrRestActive       = errors.New("rest period still running")
	ErrTargetReached    = errors.New("session set target already reached")
	ErrNoHiddenMission  = errors.New("no hidden mission is on offer")
	ErrMissionPending   = errors.New("hidden mission decision pending")
	ErrNotAbandonable   = errors.New("session cannot be abandoned in its current state")
	ErrDailyCycleDone   = errors.New("today's routine and bonus session are both finished")
	ErrBonusUnavailable = errors.New("bonus session is not on offer")
	ErrNoExercises      = errors.New("session needs at least one exercise with sets")

	// Shop errors
	ErrInsufficientPoints = errors.New("insufficient points for purchase")
	ErrOrderNotFound      = errors.New("order not found")

	// Program errors
	ErrProgramNotFound = errors.New("workout program not found")
)

// CapacityError reports a per-day cap being hit. It matches
// ErrCapacityExceeded under errors.Is.
type CapacityError struct {
	Day   DayID
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("manual log limit reached for %s (limit %d)", e.Day, e.Limit)
}

// Is lets errors.Is(err, ErrCapacityExceeded) match.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// InputError reports a rejected field. It matches ErrInvalidInput under
// errors.Is.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidInput) match.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid builds an InputError with a formatted reason.
func Invalid(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
