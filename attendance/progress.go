/*
progress.go - Monthly goal progress and pace-to-goal

PURPOSE:
  Read-side aggregation over the visit collection. Settings are applied
  here, at query time: the auto-calculated goal is recomputed fresh on
  every call, never cached, so a policy change is immediately reflected
  for the current and all past months.

COUNTING RULE:
  The month day-count uses Visit.CountsTowardMonthlyProgress: a day
  credits as soon as a valid visit exists OR an active visit is open on
  that day. This is deliberately looser than IsValidVisit, which gates
  history and trend listings only.

GUARDS:
  Percentage and pace math never emit NaN or Infinity. goal <= 0 yields
  percentage 0.0 exactly; pace degrades to one of three sentinels
  (complete / month over / unreachable) instead of an impossible number.
*/
package attendance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/calendar"
)

// MonthProgress is the current/goal/percentage triple for one month.
type MonthProgress struct {
	Current    int     `json:"current"`
	Goal       int     `json:"goal"`
	Percentage float64 `json:"percentage"` // 0.0 when goal <= 0; no upper clamp
}

// PaceKind tags the pace result.
type PaceKind string

const (
	PaceOnTrack      PaceKind = "on_track"         // DaysPerWeek holds the rate
	PaceGoalComplete PaceKind = "goal_complete"    // remaining <= 0
	PaceMonthOver    PaceKind = "month_over"       // no tracked days remain
	PaceUnreachable  PaceKind = "goal_unreachable" // rate exceeds tracked days/week
)

// Pace is the attendance rate needed to hit the remaining goal, expressed
// as tracked-days-per-week. The rate is bounded by the size of the
// tracking set: multiplying the daily rate by the user's tracked-day count
// (not by 7 calendar days) keeps "show up every tracked day" the maximum.
type Pace struct {
	Kind        PaceKind        `json:"kind"`
	DaysPerWeek decimal.Decimal `json:"days_per_week"` // zero unless Kind == PaceOnTrack
}

// Calculator answers the read-side queries over a visit collection.
type Calculator struct {
	clock    Clock
	settings Settings
}

// NewCalculator builds a calculator over a settings snapshot. The snapshot
// is copied; a later settings update needs a new calculator.
func NewCalculator(settings Settings, clock Clock) *Calculator {
	if clock == nil {
		clock = SystemClock()
	}
	return &Calculator{clock: clock, settings: settings.Clone()}
}

// =============================================================================
// GOAL
// =============================================================================

// GoalForMonth returns the effective goal for a month: the manual goal, or
// policy.RequiredDays over the month's working days (tracked weekdays minus
// holidays minus PTO), computed fresh each call.
func (c *Calculator) GoalForMonth(year int, month time.Month) int {
	if !c.settings.AutoCalculateGoal {
		return c.settings.MonthlyGoal
	}
	workingDays := calendar.BusinessDays(year, month, c.settings.TrackingDays, c.settings.Holidays)
	workingDays -= c.settings.PTODaysIn(year, month)
	if workingDays < 0 {
		workingDays = 0
	}
	return c.settings.CompanyPolicy.RequiredDays(workingDays)
}

// =============================================================================
// PROGRESS
// =============================================================================

// CurrentMonthProgress counts qualifying days in the clock's current month
// against the effective goal.
func (c *Calculator) CurrentMonthProgress(visits []Visit) MonthProgress {
	now := c.clock.Now()
	return c.monthProgress(visits, now.Year(), now.Month())
}

func (c *Calculator) monthProgress(visits []Visit, year int, month time.Month) MonthProgress {
	p := MonthProgress{
		Current: c.qualifyingDays(visits, year, month),
		Goal:    c.GoalForMonth(year, month),
	}
	if p.Goal > 0 {
		p.Percentage = float64(p.Current) / float64(p.Goal)
	}
	return p
}

// qualifyingDays counts distinct calendar days in the month with at least
// one visit that counts toward monthly progress as of "today".
func (c *Calculator) qualifyingDays(visits []Visit, year int, month time.Month) int {
	today := c.clock.Now()
	days := make(map[int]bool)
	for i := range visits {
		v := &visits[i]
		if v.Date.Year() != year || v.Date.Month() != month {
			continue
		}
		if v.CountsTowardMonthlyProgress(today) {
			days[v.Date.Day()] = true
		}
	}
	return len(days)
}

// =============================================================================
// PACE
// =============================================================================

// PaceToGoal computes the tracked-days-per-week rate needed to close the
// remaining gap this month.
func (c *Calculator) PaceToGoal(visits []Visit) Pace {
	progress := c.CurrentMonthProgress(visits)
	remaining := progress.Goal - progress.Current
	if remaining <= 0 {
		return Pace{Kind: PaceGoalComplete}
	}

	now := c.clock.Now()
	daysLeft := calendar.BusinessDaysRemaining(now, c.settings.TrackingDays, c.settings.Holidays)
	if daysLeft <= 0 {
		return Pace{Kind: PaceMonthOver}
	}

	trackedPerWeek := c.settings.TrackingDays.Count()
	dailyRate := decimal.NewFromInt(int64(remaining)).Div(decimal.NewFromInt(int64(daysLeft)))
	weeklyRate := dailyRate.Mul(decimal.NewFromInt(int64(trackedPerWeek)))
	if weeklyRate.GreaterThan(decimal.NewFromInt(int64(trackedPerWeek))) {
		return Pace{Kind: PaceUnreachable}
	}
	return Pace{Kind: PaceOnTrack, DaysPerWeek: weeklyRate}
}
