/*
holidays.go - Holiday type, calendar, and the fixed holiday feed

PURPOSE:
  A Calendar is a fixed, queryable set of non-working dates. Data is loaded
  once at process start and never mutated. Dates outside the loaded year are
  simply never found: no error, IsHoliday returns false, HolidaysBetween
  returns nothing.

SEE ALSO:
  - workdays.go: Calculator consumes Calendar for working-day checks
*/
package calendar

import (
	"sort"
	"time"
)

// Holiday is a named non-working date.
type Holiday struct {
	Date Date   `json:"date"`
	Name string `json:"name"`
}

// Calendar is an immutable, date-indexed holiday set.
type Calendar struct {
	byDate   map[string]Holiday
	holidays []Holiday // sorted by date
}

// NewCalendar builds a calendar from a holiday list. The input is copied and
// sorted; membership is exact date match.
func NewCalendar(holidays []Holiday) *Calendar {
	sorted := make([]Holiday, len(holidays))
	copy(sorted, holidays)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	byDate := make(map[string]Holiday, len(sorted))
	for _, h := range sorted {
		byDate[h.Date.String()] = h
	}
	return &Calendar{byDate: byDate, holidays: sorted}
}

// IsHoliday reports whether the date is a listed holiday.
func (c *Calendar) IsHoliday(d Date) bool {
	_, ok := c.byDate[d.String()]
	return ok
}

// HolidaysBetween returns holidays in [start, end] inclusive, ordered by date.
func (c *Calendar) HolidaysBetween(start, end Date) []Holiday {
	var out []Holiday
	for _, h := range c.holidays {
		if h.Date.AfterOrEqual(start) && h.Date.BeforeOrEqual(end) {
			out = append(out, h)
		}
	}
	return out
}

// Holidays returns the full holiday list, ordered by date. Read-only: callers
// must not mutate the returned slice.
func (c *Calendar) Holidays() []Holiday {
	return c.holidays
}

// USFederal2025 returns the US federal holidays for 2025.
func USFederal2025() []Holiday {
	return []Holiday{
		{Date: NewDate(2025, time.January, 1), Name: "New Year's Day"},
		{Date: NewDate(2025, time.January, 20), Name: "Martin Luther King Jr. Day"},
		{Date: NewDate(2025, time.February, 17), Name: "Presidents' Day"},
		{Date: NewDate(2025, time.May, 26), Name: "Memorial Day"},
		{Date: NewDate(2025, time.June, 19), Name: "Juneteenth"},
		{Date: NewDate(2025, time.July, 4), Name: "Independence Day"},
		{Date: NewDate(2025, time.September, 1), Name: "Labor Day"},
		{Date: NewDate(2025, time.October, 13), Name: "Columbus Day"},
		{Date: NewDate(2025, time.November, 11), Name: "Veterans Day"},
		{Date: NewDate(2025, time.November, 27), Name: "Thanksgiving Day"},
		{Date: NewDate(2025, time.December, 25), Name: "Christmas Day"},
	}
}
