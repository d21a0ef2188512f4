/*
business.go - Business-day counting over months

PURPOSE:
  Counts the days in a month that are both tracked weekdays and not
  holidays. The attendance package uses these counts as the goal
  denominator (working days) and as the pace denominator (tracked days
  remaining in the month).
*/
package calendar

import "time"

// BusinessDays counts the days in the given month whose weekday is in the
// tracking set and which are not holidays on the calendar.
func BusinessDays(year int, month time.Month, tracking WeekdaySet, holidays HolidayCalendar) int {
	return businessDaysBetween(StartOfMonth(year, month), EndOfMonth(year, month), tracking, holidays)
}

// BusinessDaysRemaining counts tracked non-holiday days from the given day
// (inclusive) through the end of its month. The month end is built in
// from's location; a UTC month end compared against a local start would
// drop the last day of the month in UTC-negative zones.
func BusinessDaysRemaining(from time.Time, tracking WeekdaySet, holidays HolidayCalendar) int {
	start := StartOfDay(from)
	end := time.Date(from.Year(), from.Month()+1, 1, 0, 0, 0, 0, from.Location()).AddDate(0, 0, -1)
	return businessDaysBetween(start, end, tracking, holidays)
}

// TrackedWeekdaysIn counts the tracked weekdays in the month, ignoring
// holidays. Useful when holidays are reported as a separate term.
func TrackedWeekdaysIn(year int, month time.Month, tracking WeekdaySet) int {
	return businessDaysBetween(StartOfMonth(year, month), EndOfMonth(year, month), tracking, HolidayCalendar{})
}

// HolidaysOnTrackedDays counts the effective holidays in the month that fall
// on a tracked weekday. Holidays on untracked days never reduce the goal.
func HolidaysOnTrackedDays(year int, month time.Month, tracking WeekdaySet, holidays HolidayCalendar) int {
	n := 0
	for _, h := range holidays.DatesInYear(year) {
		if h.Date.Year() == year && h.Date.Month() == month && tracking.Contains(h.Date.Weekday()) {
			n++
		}
	}
	return n
}

func businessDaysBetween(start, end time.Time, tracking WeekdaySet, holidays HolidayCalendar) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if tracking.Contains(d.Weekday()) && !holidays.IsHoliday(d) {
			n++
		}
	}
	return n
}
