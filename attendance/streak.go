/*
streak.go - Consecutive-month streak

PURPOSE:
  Counts consecutive months, walking backward from the current month,
  where the qualifying day-count met that month's effective goal.

THE CURRENT-MONTH RULE:
  The in-progress month joins the chain only if it already met goal; if it
  has not, it is skipped once without breaking the walk, so a streak built
  through last month survives the first days of a new month. The first
  unmet month after that skip stops the walk.
*/
package attendance

import "time"

// streakHorizonMonths bounds the backward walk so a zero-goal month range
// can never produce an unbounded streak.
const streakHorizonMonths = 240

// MonthlyStreak returns the current consecutive-month streak.
func (c *Calculator) MonthlyStreak(visits []Visit) int {
	now := c.clock.Now()
	year, month := now.Year(), now.Month()

	streak := 0
	if c.monthMet(visits, year, month) {
		streak++
	}
	// Whether or not the current month counted, continue from the prior
	// month; the current month's non-met status is skipped, not a break.
	for i := 1; i <= streakHorizonMonths; i++ {
		prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		if !c.monthMet(visits, prev.Year(), prev.Month()) {
			break
		}
		streak++
	}
	return streak
}

// monthMet reports whether the month's qualifying day-count reached its
// effective goal. A month with goal <= 0 never counts as met: a zero goal
// means nothing was required, and "met nothing" is not a streak link.
func (c *Calculator) monthMet(visits []Visit, year int, month time.Month) bool {
	goal := c.GoalForMonth(year, month)
	if goal <= 0 {
		return false
	}
	return c.qualifyingDays(visits, year, month) >= goal
}
