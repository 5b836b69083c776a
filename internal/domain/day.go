package domain

import (
	"sort"
	"time"
)

// DayLayout is the calendar-day format used for every date set.
const DayLayout = "2006-01-02"

// DayID identifies a calendar day in local time ("2025-07-01").
type DayID string

// DayOf returns the DayID of t in t's location.
func DayOf(t time.Time) DayID {
	return DayID(t.Format(DayLayout))
}

// ParseDay parses a DayID into midnight of that day in loc.
func ParseDay(d DayID, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DayLayout, string(d), loc)
}

// Valid reports whether d is a well-formed calendar day.
func (d DayID) Valid() bool {
	_, err := time.Parse(DayLayout, string(d))
	return err == nil
}

// AddDays shifts d by n calendar days. Malformed ids are returned unchanged.
func (d DayID) AddDays(n int) DayID {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return d
	}
	return DayID(t.AddDate(0, 0, n).Format(DayLayout))
}

// containsDay reports whether days holds d.
func containsDay(days []DayID, d DayID) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

// AddDay appends d to days if absent. Returns the set and whether it grew.
func AddDay(days []DayID, d DayID) ([]DayID, bool) {
	if containsDay(days, d) {
		return days, false
	}
	return append(days, d), true
}

// HasDay reports whether d is present in days.
func HasDay(days []DayID, d DayID) bool {
	return containsDay(days, d)
}

// SortedDesc returns a copy of days ordered newest first.
// The layout sorts lexically in calendar order.
func SortedDesc(days []DayID) []DayID {
	out := make([]DayID, len(days))
	copy(out, days)
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}
