/*
holidays.go - US holiday resolution rules and presets

PURPOSE:
  Resolves named US holidays to concrete dates for any year. Four rule
  kinds cover the full preset list:
    - Fixed month/day, shifted to the nearest weekday when observed
      (Sat -> preceding Fri, Sun -> following Mon)
    - Nth weekday of month (MLK Day = 3rd Monday of January)
    - Last weekday of month (Memorial Day = last Monday of May)
    - Easter-relative (Good Friday = Easter Sunday - 2 days, Gregorian
      computus)

PRESETS:
  PresetNone:      no holidays
  PresetNYSE:      the NYSE trading-holiday calendar
  PresetUSFederal: federal holidays (no Good Friday, adds Columbus Day
                   and Veterans Day)

CUSTOMIZATION:
  HolidayCalendar layers arbitrary month/day additions and per-holiday
  removals on top of a preset, so a company calendar can differ from the
  exchange calendar without a new preset.
*/
package calendar

import "time"

// =============================================================================
// HOLIDAYS
// =============================================================================

// Holiday names one holiday the engine knows how to resolve.
type Holiday string

const (
	NewYearsDay         Holiday = "new_years_day"
	MartinLutherKingDay Holiday = "mlk_day"
	PresidentsDay       Holiday = "presidents_day"
	GoodFriday          Holiday = "good_friday"
	MemorialDay         Holiday = "memorial_day"
	Juneteenth          Holiday = "juneteenth"
	IndependenceDay     Holiday = "independence_day"
	LaborDay            Holiday = "labor_day"
	ColumbusDay         Holiday = "columbus_day"
	VeteransDay         Holiday = "veterans_day"
	ThanksgivingDay     Holiday = "thanksgiving"
	ChristmasDay        Holiday = "christmas"
)

// DisplayName returns the human-readable holiday name.
func (h Holiday) DisplayName() string {
	switch h {
	case NewYearsDay:
		return "New Year's Day"
	case MartinLutherKingDay:
		return "Martin Luther King Jr. Day"
	case PresidentsDay:
		return "Presidents Day"
	case GoodFriday:
		return "Good Friday"
	case MemorialDay:
		return "Memorial Day"
	case Juneteenth:
		return "Juneteenth"
	case IndependenceDay:
		return "Independence Day"
	case LaborDay:
		return "Labor Day"
	case ColumbusDay:
		return "Columbus Day"
	case VeteransDay:
		return "Veterans Day"
	case ThanksgivingDay:
		return "Thanksgiving Day"
	case ChristmasDay:
		return "Christmas Day"
	default:
		return string(h)
	}
}

// Resolve returns the observed date of the holiday in the given year.
// The bool is false for holiday names the engine does not know.
func (h Holiday) Resolve(year int) (time.Time, bool) {
	switch h {
	case NewYearsDay:
		return observedFixed(year, time.January, 1), true
	case MartinLutherKingDay:
		return nthWeekday(year, time.January, time.Monday, 3), true
	case PresidentsDay:
		return nthWeekday(year, time.February, time.Monday, 3), true
	case GoodFriday:
		return EasterSunday(year).AddDate(0, 0, -2), true
	case MemorialDay:
		return lastWeekday(year, time.May, time.Monday), true
	case Juneteenth:
		return observedFixed(year, time.June, 19), true
	case IndependenceDay:
		return observedFixed(year, time.July, 4), true
	case LaborDay:
		return nthWeekday(year, time.September, time.Monday, 1), true
	case ColumbusDay:
		return nthWeekday(year, time.October, time.Monday, 2), true
	case VeteransDay:
		return observedFixed(year, time.November, 11), true
	case ThanksgivingDay:
		return nthWeekday(year, time.November, time.Thursday, 4), true
	case ChristmasDay:
		return observedFixed(year, time.December, 25), true
	default:
		return time.Time{}, false
	}
}

// observedFixed applies the weekend-observance shift to a fixed date:
// Saturday is observed the preceding Friday, Sunday the following Monday.
func observedFixed(year int, month time.Month, day int) time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}

// nthWeekday returns the nth occurrence (1-based) of a weekday in a month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := StartOfMonth(year, month)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the last occurrence of a weekday in a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	last := EndOfMonth(year, month)
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -offset)
}

// EasterSunday computes Easter for the given year via the anonymous
// Gregorian computus.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// PRESETS
// =============================================================================

// Preset selects a fixed set of holidays.
type Preset string

const (
	PresetNone      Preset = "none"
	PresetNYSE      Preset = "nyse"
	PresetUSFederal Preset = "us_federal"
)

// Holidays returns the holidays included in the preset.
func (p Preset) Holidays() []Holiday {
	switch p {
	case PresetNYSE:
		return []Holiday{
			NewYearsDay, MartinLutherKingDay, PresidentsDay, GoodFriday,
			MemorialDay, Juneteenth, IndependenceDay, LaborDay,
			ThanksgivingDay, ChristmasDay,
		}
	case PresetUSFederal:
		return []Holiday{
			NewYearsDay, MartinLutherKingDay, PresidentsDay, MemorialDay,
			Juneteenth, IndependenceDay, LaborDay, ColumbusDay,
			VeteransDay, ThanksgivingDay, ChristmasDay,
		}
	default:
		return nil
	}
}

// =============================================================================
// HOLIDAY CALENDAR - Preset plus custom additions/removals
// =============================================================================

// CustomHoliday is a user-added month/day holiday. It recurs every year and
// takes no observance shift.
type CustomHoliday struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
	Name  string     `json:"name"`
}

// HolidayCalendar resolves the effective holiday set for a year: the chosen
// preset, minus removals, plus custom additions.
type HolidayCalendar struct {
	Preset    Preset          `json:"preset"`
	Additions []CustomHoliday `json:"additions,omitempty"`
	Removals  []Holiday       `json:"removals,omitempty"`
}

// ResolvedHoliday is one concrete holiday date in a given year.
type ResolvedHoliday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// DatesInYear resolves every effective holiday for the year, in date order
// of resolution (preset order, then additions).
func (c HolidayCalendar) DatesInYear(year int) []ResolvedHoliday {
	removed := make(map[Holiday]bool, len(c.Removals))
	for _, h := range c.Removals {
		removed[h] = true
	}

	var out []ResolvedHoliday
	for _, h := range c.Preset.Holidays() {
		if removed[h] {
			continue
		}
		if d, ok := h.Resolve(year); ok {
			out = append(out, ResolvedHoliday{Date: d, Name: h.DisplayName()})
		}
	}
	for _, add := range c.Additions {
		if add.Day < 1 || add.Day > 31 {
			continue
		}
		out = append(out, ResolvedHoliday{
			Date: time.Date(year, add.Month, add.Day, 0, 0, 0, 0, time.UTC),
			Name: add.Name,
		})
	}
	return out
}

// IsHoliday reports whether the given day is an effective holiday.
func (c HolidayCalendar) IsHoliday(day time.Time) bool {
	for _, h := range c.DatesInYear(day.Year()) {
		if SameDay(h.Date, day) {
			return true
		}
	}
	// An observed fixed date can shift across a year boundary
	// (Jan 1 on a Saturday is observed Dec 31).
	if day.Month() == time.December && day.Day() == 31 {
		for _, h := range c.DatesInYear(day.Year() + 1) {
			if SameDay(h.Date, day) {
				return true
			}
		}
	}
	return false
}
