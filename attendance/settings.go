/*
settings.go - User settings consumed at read/aggregation time

PURPOSE:
  Everything configurable about goal calculation and office detection.
  Settings are applied only when progress is queried, never baked into
  Visit records: changing the policy retroactively changes reported
  progress for past months without rewriting history.

LEGACY MIGRATION:
  Early versions stored a single office coordinate instead of a location
  list. MigrateLegacyLocation runs once at load and synthesizes a primary
  OfficeLocation from the legacy coordinate, so the rest of the engine
  only ever sees the list form.
*/
package attendance

import (
	"time"

	"github.com/google/uuid"
	"github.com/warp/attendance-engine/calendar"
)

// DefaultDetectionRadius is used when a location or legacy migration does
// not specify one.
const DefaultDetectionRadius = 150.0 // meters

// Settings is the full configuration consumed by the engine.
type Settings struct {
	// Goal configuration. When AutoCalculateGoal is set, MonthlyGoal is
	// ignored and the goal is computed fresh each query from the policy
	// and calendar.
	MonthlyGoal       int    `json:"monthly_goal"`
	AutoCalculateGoal bool   `json:"auto_calculate_goal"`
	CompanyPolicy     Policy `json:"company_policy"`

	// Working-day calendar.
	Holidays     calendar.HolidayCalendar `json:"holidays"`
	PTODays      []time.Time              `json:"pto_days,omitempty"`
	TrackingDays calendar.WeekdaySet      `json:"tracking_days"`

	// Office detection. At most two locations; the settings surface
	// enforces the limit.
	OfficeLocations []OfficeLocation `json:"office_locations,omitempty"`

	// Pre-multi-location records carried a single coordinate.
	LegacyCoordinate *GeoPoint `json:"legacy_coordinate,omitempty"`
}

// DefaultSettings is a Mon-Fri hybrid-50 auto-calculated configuration
// with no offices configured.
func DefaultSettings() Settings {
	return Settings{
		AutoCalculateGoal: true,
		CompanyPolicy:     PolicyHybrid50,
		Holidays:          calendar.HolidayCalendar{Preset: calendar.PresetUSFederal},
		TrackingDays:      calendar.MondayToFriday(),
	}
}

// MigrateLegacyLocation synthesizes an OfficeLocation from the legacy
// single-coordinate field when the location list is empty. Returns true
// when a migration happened. Run once at load time.
func (s *Settings) MigrateLegacyLocation() bool {
	if len(s.OfficeLocations) > 0 || s.LegacyCoordinate == nil {
		return false
	}
	c := *s.LegacyCoordinate
	s.OfficeLocations = []OfficeLocation{{
		ID:              uuid.NewString(),
		Name:            "Office",
		Coordinate:      &c,
		DetectionRadius: DefaultDetectionRadius,
		IsPrimary:       true,
	}}
	s.LegacyCoordinate = nil
	return true
}

// LocationContaining returns the first configured location whose geofence
// contains the point, or nil.
func (s Settings) LocationContaining(p GeoPoint) *OfficeLocation {
	for i := range s.OfficeLocations {
		if s.OfficeLocations[i].Contains(p) {
			return &s.OfficeLocations[i]
		}
	}
	return nil
}

// PTODaysIn counts configured PTO days in the month that fall on tracked
// non-holiday days. PTO on a weekend or holiday never reduces the goal.
func (s Settings) PTODaysIn(year int, month time.Month) int {
	seen := make(map[string]bool, len(s.PTODays))
	n := 0
	for _, d := range s.PTODays {
		if d.Year() != year || d.Month() != month {
			continue
		}
		day := calendar.StartOfDay(d)
		key := day.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		if s.TrackingDays.Contains(day.Weekday()) && !s.Holidays.IsHoliday(day) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy, so concurrent readers never share slices with
// a settings update in flight.
func (s Settings) Clone() Settings {
	out := s
	out.PTODays = append([]time.Time(nil), s.PTODays...)
	out.OfficeLocations = make([]OfficeLocation, len(s.OfficeLocations))
	for i, l := range s.OfficeLocations {
		out.OfficeLocations[i] = l
		if l.Coordinate != nil {
			c := *l.Coordinate
			out.OfficeLocations[i].Coordinate = &c
		}
	}
	if s.LegacyCoordinate != nil {
		c := *s.LegacyCoordinate
		out.LegacyCoordinate = &c
	}
	if s.TrackingDays != nil {
		td := make(calendar.WeekdaySet, len(s.TrackingDays))
		for d, on := range s.TrackingDays {
			td[d] = on
		}
		out.TrackingDays = td
	}
	out.Holidays.Additions = append([]calendar.CustomHoliday(nil), s.Holidays.Additions...)
	out.Holidays.Removals = append([]calendar.Holiday(nil), s.Holidays.Removals...)
	return out
}
