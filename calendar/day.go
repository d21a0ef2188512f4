/*
Package calendar provides the working-day math for the attendance engine.

PURPOSE:
  Pure date arithmetic with no dependency on the attendance domain:
  day normalization, tracked-weekday sets, US holiday resolution, and
  business-day counting. The attendance package uses these functions to
  auto-calculate monthly goals and pace.

KEY CONCEPTS IN THIS FILE (day.go):
  - Day normalization: every "calendar day" is a time.Time truncated to
    midnight UTC. One canonical representation avoids same-day comparisons
    drifting on the time-of-day component.
  - WeekdaySet: which days of the week count toward the goal denominator
    (Mon-Fri for a full-time schedule, fewer for part-time).

SEE ALSO:
  - holidays.go: holiday rule resolution and presets
  - business.go: business-day counts over months
*/
package calendar

import (
	"encoding/json"
	"sort"
	"time"
)

// =============================================================================
// DAY NORMALIZATION
// =============================================================================

// StartOfDay truncates a timestamp to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfMonth returns midnight on the first day of the given month.
func StartOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns midnight on the last day of the given month.
func EndOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return EndOfMonth(year, month).Day()
}

// MonthMidpoint returns the 15th of the given month, used to stamp
// month-granularity trend buckets.
func MonthMidpoint(year int, month time.Month) time.Time {
	return time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// WEEKDAY SET - The user's tracked days of week
// =============================================================================

// WeekdaySet is the set of weekdays that count toward the goal denominator.
type WeekdaySet map[time.Weekday]bool

// Weekdays builds a set from the given days.
func Weekdays(days ...time.Weekday) WeekdaySet {
	s := make(WeekdaySet, len(days))
	for _, d := range days {
		s[d] = true
	}
	return s
}

// MondayToFriday is the default full-time tracking schedule.
func MondayToFriday() WeekdaySet {
	return Weekdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
}

// Contains reports whether the weekday is tracked.
func (s WeekdaySet) Contains(d time.Weekday) bool { return s[d] }

// Count returns the number of tracked days per week.
func (s WeekdaySet) Count() int {
	n := 0
	for _, on := range s {
		if on {
			n++
		}
	}
	return n
}

// Days returns the tracked weekdays in Sunday-first order.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s[d] {
			days = append(days, d)
		}
	}
	return days
}

// MarshalJSON encodes the set as a sorted array of weekday numbers
// (0 = Sunday), the shape the settings snapshot persists.
func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	var days []int
	for d, on := range s {
		if on {
			days = append(days, int(d))
		}
	}
	sort.Ints(days)
	return json.Marshal(days)
}

// UnmarshalJSON decodes an array of weekday numbers.
func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	set := make(WeekdaySet, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			set[time.Weekday(d)] = true
		}
	}
	*s = set
	return nil
}
