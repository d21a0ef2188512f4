/*
Package attendance provides the office-presence engine.

PURPOSE:
  Converts a stream of noisy geofence enter/exit signals into a consistent
  set of daily office visits, and computes monthly goal progress, pace,
  trend series and streaks from that record set.

KEY CONCEPTS IN THIS FILE (types.go):
  - Session: one continuous entry -> exit presence interval. A session with
    no exit time is "active" (still open).
  - Visit: the daily aggregate. Exactly one Visit exists per calendar day
    that has any presence; a day with a lunch break holds two sessions in
    the same Visit.
  - Identity: a Visit's id is minted once at creation and preserved through
    every serialization round-trip. External systems key on it, so id is
    data, not a construction-time default.

TWO COUNTING RULES (deliberate, easy to conflate):
  - IsValidVisit: total closed-session time >= 1 hour. Used for history and
    trend listings.
  - CountsTowardMonthlyProgress: IsValidVisit OR currently active today with
    a coordinate. The month day-count credits a day as soon as presence is
    detected; history only after an hour is actually banked.

DESIGN PRINCIPLES:
  1. Visits are settings-free: policy and goal are applied at read time,
     so changing the policy retroactively changes reported progress without
     rewriting any record.
  2. Append-only days: sessions are appended, never reordered or removed by
     the engine.

SEE ALSO:
  - tracker.go: the enter/exit state machine mutating Visits
  - progress.go: monthly goal progress and pace
  - trend.go, streak.go: read-side series
*/
package attendance

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/warp/attendance-engine/calendar"
)

// MinimumValidDuration is the closed-session total a visit needs before it
// counts as a real office day. Boundary inclusive: exactly one hour counts.
const MinimumValidDuration = time.Hour

// =============================================================================
// GEO POINT
// =============================================================================

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// =============================================================================
// SESSION - One continuous presence interval
// =============================================================================

// Session is a single entry -> exit interval within a Visit.
// ExitTime nil means the session is still open.
type Session struct {
	EntryTime time.Time  `json:"entry_time"`
	ExitTime  *time.Time `json:"exit_time,omitempty"`
}

// IsActive reports whether the session is still open.
func (s Session) IsActive() bool { return s.ExitTime == nil }

// Duration returns the closed interval length. ok is false while the
// session is open.
func (s Session) Duration() (time.Duration, bool) {
	if s.ExitTime == nil {
		return 0, false
	}
	return s.ExitTime.Sub(s.EntryTime), true
}

// =============================================================================
// VISIT - The daily aggregate
// =============================================================================

// Visit is the single record of office presence for one calendar day.
type Visit struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"` // start-of-day normalized
	Sessions   []Session `json:"sessions"`
	Coordinate *GeoPoint `json:"coordinate,omitempty"`
}

// NewVisit creates a Visit for the day containing entryTime, with a single
// open session and the given coordinate.
func NewVisit(entryTime time.Time, coordinate GeoPoint) Visit {
	c := coordinate
	return Visit{
		ID:         uuid.NewString(),
		Date:       calendar.StartOfDay(entryTime),
		Sessions:   []Session{{EntryTime: entryTime}},
		Coordinate: &c,
	}
}

// IsActiveSession reports whether the visit's last session is still open.
func (v Visit) IsActiveSession() bool {
	return len(v.Sessions) > 0 && v.Sessions[len(v.Sessions)-1].IsActive()
}

// EntryTime returns the first session's entry time. ok is false for a visit
// with no sessions.
func (v Visit) EntryTime() (time.Time, bool) {
	if len(v.Sessions) == 0 {
		return time.Time{}, false
	}
	return v.Sessions[0].EntryTime, true
}

// ExitTime returns the last session's exit time. Undefined while any
// session is open: a visit containing an open session is never reported as
// complete, even if earlier sessions closed.
func (v Visit) ExitTime() (time.Time, bool) {
	if len(v.Sessions) == 0 || v.IsActiveSession() {
		return time.Time{}, false
	}
	return *v.Sessions[len(v.Sessions)-1].ExitTime, true
}

// Duration returns the sum of all closed sessions. Undefined when the visit
// has no sessions or an open one.
func (v Visit) Duration() (time.Duration, bool) {
	if len(v.Sessions) == 0 || v.IsActiveSession() {
		return 0, false
	}
	var total time.Duration
	for _, s := range v.Sessions {
		if d, ok := s.Duration(); ok {
			total += d
		}
	}
	return total, true
}

// IsValidVisit reports whether the visit counts as a real office day:
// defined duration of at least MinimumValidDuration.
func (v Visit) IsValidVisit() bool {
	d, ok := v.Duration()
	return ok && d >= MinimumValidDuration
}

// CountsTowardMonthlyProgress reports whether the visit credits its day in
// the monthly day-count as of the given day. A valid visit always counts;
// an active visit counts only while "today" is its day and a coordinate
// confirms where the presence was detected.
func (v Visit) CountsTowardMonthlyProgress(today time.Time) bool {
	if v.IsValidVisit() {
		return true
	}
	return v.IsActiveSession() && calendar.SameDay(v.Date, today) && v.Coordinate != nil
}

// UnmarshalJSON restores a visit, synthesizing a fresh id for legacy
// records persisted before ids were part of the serialized form. Every
// other field decodes as-is; a present id is restored verbatim.
func (v *Visit) UnmarshalJSON(data []byte) error {
	type alias Visit
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = Visit(a)
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// Clone returns a deep copy, so callers can hand visits across the API
// boundary without sharing the session slice.
func (v Visit) Clone() Visit {
	out := v
	out.Sessions = make([]Session, len(v.Sessions))
	copy(out.Sessions, v.Sessions)
	if v.Coordinate != nil {
		c := *v.Coordinate
		out.Coordinate = &c
	}
	return out
}
