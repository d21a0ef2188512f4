/*
trend.go - Zero-filled visit trend series for charting

PURPOSE:
  Produces fixed-length (date, count) series ending at the current day or
  month. Buckets with no data are zero-filled so a chart always renders
  exactly N points regardless of data sparsity. Trend listings use
  IsValidVisit only; the active-day allowance applies to the monthly
  day-count, not to history.
*/
package attendance

import (
	"time"

	"github.com/warp/attendance-engine/calendar"
)

// minChartBuckets is the minimum number of non-zero buckets before a chart
// is considered meaningful.
const minChartBuckets = 7

// TrendPoint is one chart bucket.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// VisitTrendByDays returns exactly `days` buckets, one per calendar day,
// ending today. Count is 1 when a valid visit exists for the day, else 0.
func (c *Calculator) VisitTrendByDays(visits []Visit, days int) []TrendPoint {
	if days <= 0 {
		return nil
	}
	validDays := make(map[string]bool)
	for i := range visits {
		if visits[i].IsValidVisit() {
			validDays[visits[i].Date.Format("2006-01-02")] = true
		}
	}

	today := calendar.StartOfDay(c.clock.Now())
	out := make([]TrendPoint, 0, days)
	for d := days - 1; d >= 0; d-- {
		day := today.AddDate(0, 0, -d)
		count := 0
		if validDays[day.Format("2006-01-02")] {
			count = 1
		}
		out = append(out, TrendPoint{Date: day, Count: count})
	}
	return out
}

// VisitTrendByMonths returns exactly `months` buckets, one per month ending
// with the current month, each stamped at the month's midpoint. Count is
// the number of distinct days in the month with a valid visit.
func (c *Calculator) VisitTrendByMonths(visits []Visit, months int) []TrendPoint {
	if months <= 0 {
		return nil
	}
	now := c.clock.Now()
	out := make([]TrendPoint, 0, months)
	for m := months - 1; m >= 0; m-- {
		anchor := calendar.StartOfMonth(now.Year(), now.Month()).AddDate(0, -m, 0)
		out = append(out, TrendPoint{
			Date:  calendar.MonthMidpoint(anchor.Year(), anchor.Month()),
			Count: countValidDays(visits, anchor.Year(), anchor.Month()),
		})
	}
	return out
}

// HasEnoughChartData reports whether the series has enough non-zero
// buckets for a meaningful chart.
func HasEnoughChartData(points []TrendPoint) bool {
	n := 0
	for _, p := range points {
		if p.Count > 0 {
			n++
		}
	}
	return n >= minChartBuckets
}

func countValidDays(visits []Visit, year int, month time.Month) int {
	days := make(map[int]bool)
	for i := range visits {
		v := &visits[i]
		if v.Date.Year() == year && v.Date.Month() == month && v.IsValidVisit() {
			days[v.Date.Day()] = true
		}
	}
	return len(days)
}
