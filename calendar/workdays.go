/*
workdays.go - Working-day arithmetic over a holiday calendar

PURPOSE:
  The Calculator answers the working-day questions the parser and the API
  layer need: weekend checks, working-day checks, next-working-day advance,
  and inclusive working-day counts over a range.

INVARIANTS:
  - IsWorkingDay(d) == !IsWeekend(d) && !IsHoliday(d)
  - NextWorkingDay(d) is strictly after d and is always a working day
  - CountWorkingDays(s, e) == 0 when s > e (explicit guard, no unbounded loop)
*/
package calendar

import "time"

// Calculator computes working-day properties against a holiday calendar.
type Calculator struct {
	cal *Calendar
}

// NewCalculator creates a calculator over the given calendar.
func NewCalculator(cal *Calendar) *Calculator {
	return &Calculator{cal: cal}
}

// Calendar returns the underlying holiday calendar.
func (c *Calculator) Calendar() *Calendar { return c.cal }

// IsWeekend reports whether the date falls on Saturday or Sunday.
func (c *Calculator) IsWeekend(d Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWorkingDay reports whether the date is neither a weekend nor a holiday.
func (c *Calculator) IsWorkingDay(d Date) bool {
	return !c.IsWeekend(d) && !c.cal.IsHoliday(d)
}

// NextWorkingDay returns the first working day strictly after d. Termination
// is guaranteed: the holiday set is finite and weekends are periodic.
func (c *Calculator) NextWorkingDay(d Date) Date {
	next := d.AddDays(1)
	for !c.IsWorkingDay(next) {
		next = next.AddDays(1)
	}
	return next
}

// CountWorkingDays counts working days in [start, end] inclusive.
// Returns 0 when start is after end.
func (c *Calculator) CountWorkingDays(start, end Date) int {
	if start.After(end) {
		return 0
	}
	count := 0
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	return count
}

// Exclusions records which non-working-day classes were already excluded from
// a working-day count. Downstream consumers must not re-apply exclusions.
type Exclusions struct {
	Weekends bool `json:"weekends"`
	Holidays bool `json:"holidays"`
}

// AllExclusions is the fixed marker for counts produced by the Calculator:
// weekends and holidays are always excluded.
func AllExclusions() Exclusions {
	return Exclusions{Weekends: true, Holidays: true}
}
