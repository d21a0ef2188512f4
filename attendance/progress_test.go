package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
)

// manualGoalSettings is a Mon-Fri configuration with a fixed goal and no
// holidays, the simplest base for progress tests.
func manualGoalSettings(goal int) attendance.Settings {
	return attendance.Settings{
		MonthlyGoal:  goal,
		TrackingDays: calendar.MondayToFriday(),
		Holidays:     calendar.HolidayCalendar{Preset: calendar.PresetNone},
	}
}

// =============================================================================
// POLICY
// =============================================================================

func TestPolicy_RequiredDays(t *testing.T) {
	// floor(workingDays * percentage), exercised across presets
	assert.Equal(t, 10, attendance.PolicyHybrid50.RequiredDays(21))
	assert.Equal(t, 10, attendance.PolicyHybrid50.RequiredDays(20))
	assert.Equal(t, 12, attendance.PolicyHybrid60.RequiredDays(20))
	assert.Equal(t, 8, attendance.PolicyHybrid40.RequiredDays(21))
	assert.Equal(t, 20, attendance.PolicyFullTime.RequiredDays(20))
	assert.Equal(t, 0, attendance.PolicyRemote.RequiredDays(20))
	assert.Equal(t, 0, attendance.PolicyHybrid50.RequiredDays(0))
}

func TestCustomPolicy_Clamped(t *testing.T) {
	assert.Equal(t, 20, attendance.CustomPolicy(1.5).RequiredDays(20))
	assert.Equal(t, 0, attendance.CustomPolicy(-0.2).RequiredDays(20))
	assert.Equal(t, 7, attendance.CustomPolicy(0.35).RequiredDays(20))
}

// =============================================================================
// GOAL
// =============================================================================

func TestGoalForMonth_Manual(t *testing.T) {
	calc := attendance.NewCalculator(manualGoalSettings(12), newManualClock(morningOf(2026, time.March, 10)))
	assert.Equal(t, 12, calc.GoalForMonth(2026, time.March))
}

func TestGoalForMonth_Auto_January2026_NYSE_Hybrid50(t *testing.T) {
	// GIVEN: January 2026 on the NYSE calendar: 22 weekdays, 2 holidays
	// WHEN: the goal auto-calculates under hybrid-50
	// THEN: floor((22-2) * 0.5) = 10
	settings := attendance.Settings{
		AutoCalculateGoal: true,
		CompanyPolicy:     attendance.PolicyHybrid50,
		TrackingDays:      calendar.MondayToFriday(),
		Holidays:          calendar.HolidayCalendar{Preset: calendar.PresetNYSE},
	}
	calc := attendance.NewCalculator(settings, newManualClock(morningOf(2026, time.January, 15)))
	assert.Equal(t, 10, calc.GoalForMonth(2026, time.January))
}

func TestGoalForMonth_Auto_PTOReducesWorkingDays(t *testing.T) {
	// Two PTO days on tracked working days: floor((20-2) * 0.5) = 9
	settings := attendance.Settings{
		AutoCalculateGoal: true,
		CompanyPolicy:     attendance.PolicyHybrid50,
		TrackingDays:      calendar.MondayToFriday(),
		Holidays:          calendar.HolidayCalendar{Preset: calendar.PresetNYSE},
		PTODays: []time.Time{
			time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), // Monday
			time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC), // Tuesday
		},
	}
	calc := attendance.NewCalculator(settings, newManualClock(morningOf(2026, time.January, 15)))
	assert.Equal(t, 9, calc.GoalForMonth(2026, time.January))
}

// =============================================================================
// PROGRESS
// =============================================================================

func TestCurrentMonthProgress_GoalZero_PercentageExactlyZero(t *testing.T) {
	// A zero goal must yield 0.0, never NaN or Infinity.
	calc := attendance.NewCalculator(manualGoalSettings(0), newManualClock(morningOf(2026, time.March, 10)))
	visits := []attendance.Visit{closedVisit(time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), 2*time.Hour)}

	p := calc.CurrentMonthProgress(visits)
	assert.Equal(t, 1, p.Current)
	assert.Equal(t, 0, p.Goal)
	assert.Equal(t, 0.0, p.Percentage)
}

func TestCurrentMonthProgress_DualCountingRule(t *testing.T) {
	// GIVEN: a valid visit yesterday and an active sub-hour visit today
	clock := newManualClock(time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC))
	calc := attendance.NewCalculator(manualGoalSettings(10), clock)

	active := attendance.NewVisit(clock.Now().Add(-30*time.Minute), officePoint)
	visits := []attendance.Visit{
		closedVisit(time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), 2*time.Hour),
		active,
	}

	// THEN: the day-count credits both days -- the active visit counts
	// toward monthly progress even though it is not yet a valid visit
	p := calc.CurrentMonthProgress(visits)
	assert.Equal(t, 2, p.Current)
	assert.False(t, active.IsValidVisit())
}

func TestCurrentMonthProgress_IgnoresOtherMonths(t *testing.T) {
	clock := newManualClock(morningOf(2026, time.March, 10))
	calc := attendance.NewCalculator(manualGoalSettings(10), clock)
	visits := []attendance.Visit{
		closedVisit(time.Date(2026, time.February, 12, 0, 0, 0, 0, time.UTC), 3*time.Hour),
		closedVisit(time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), 3*time.Hour),
	}
	assert.Equal(t, 1, calc.CurrentMonthProgress(visits).Current)
}

func TestCurrentMonthProgress_NoUpperClamp(t *testing.T) {
	clock := newManualClock(morningOf(2026, time.March, 10))
	calc := attendance.NewCalculator(manualGoalSettings(1), clock)
	visits := []attendance.Visit{
		closedVisit(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), 2*time.Hour),
		closedVisit(time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), 2*time.Hour),
	}
	assert.Equal(t, 2.0, calc.CurrentMonthProgress(visits).Percentage)
}

// =============================================================================
// PACE
// =============================================================================

func TestPaceToGoal_UnreachableRegression(t *testing.T) {
	// GIVEN: 10 days remaining, 5 working days left, Mon-Fri tracking
	// WHEN: computing pace
	// THEN: dailyRate=2.0 -> weeklyRate=10.0 > 5 tracked days/week, so
	// the goal is unreachable. The weekly rate multiplies by the tracked
	// day count, never by 7 calendar days (the old bug reported an
	// impossible "14 days/week").
	clock := newManualClock(morningOf(2026, time.March, 25)) // Wednesday
	calc := attendance.NewCalculator(manualGoalSettings(10), clock)

	pace := calc.PaceToGoal(nil)
	assert.Equal(t, attendance.PaceUnreachable, pace.Kind)
}

func TestPaceToGoal_OnTrack(t *testing.T) {
	// Monday March 23, 2026: 7 working days remain. Goal 5, one day done:
	// dailyRate=4/7, weeklyRate=20/7 ~ 2.86 <= 5.
	clock := newManualClock(morningOf(2026, time.March, 23))
	calc := attendance.NewCalculator(manualGoalSettings(5), clock)
	visits := []attendance.Visit{closedVisit(time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), 2*time.Hour)}

	pace := calc.PaceToGoal(visits)
	require.Equal(t, attendance.PaceOnTrack, pace.Kind)
	assert.InDelta(t, 20.0/7.0, pace.DaysPerWeek.InexactFloat64(), 0.001)
}

func TestPaceToGoal_GoalComplete(t *testing.T) {
	clock := newManualClock(morningOf(2026, time.March, 10))
	calc := attendance.NewCalculator(manualGoalSettings(1), clock)
	visits := []attendance.Visit{closedVisit(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), 2*time.Hour)}
	assert.Equal(t, attendance.PaceGoalComplete, calc.PaceToGoal(visits).Kind)
}

func TestPaceToGoal_LastWorkingDayInNegativeZone_NotMonthOver(t *testing.T) {
	// GIVEN: Thursday April 30, 2026 on a clock five hours behind UTC,
	// with one day still needed
	est := time.FixedZone("UTC-5", -5*3600)
	clock := newManualClock(time.Date(2026, time.April, 30, 9, 0, 0, 0, est))
	calc := attendance.NewCalculator(manualGoalSettings(1), clock)

	// THEN: a full working day remains; showing up today closes the gap
	pace := calc.PaceToGoal(nil)
	require.Equal(t, attendance.PaceOnTrack, pace.Kind)
	assert.InDelta(t, 5.0, pace.DaysPerWeek.InexactFloat64(), 0.001)
}

func TestPaceToGoal_MonthOver(t *testing.T) {
	// Tuesday March 31 with a Monday-only schedule: no tracked days left,
	// goal unmet -> month over, not a division by zero.
	settings := attendance.Settings{
		MonthlyGoal:  1,
		TrackingDays: calendar.Weekdays(time.Monday),
		Holidays:     calendar.HolidayCalendar{Preset: calendar.PresetNone},
	}
	clock := newManualClock(morningOf(2026, time.March, 31))
	calc := attendance.NewCalculator(settings, clock)
	assert.Equal(t, attendance.PaceMonthOver, calc.PaceToGoal(nil).Kind)
}
