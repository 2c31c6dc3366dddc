package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/pto-scheduler/calendar"
)

func newCalc() *calendar.Calculator {
	return calendar.NewCalculator(calendar.NewCalendar(calendar.USFederal2025()))
}

func TestCalculator_IsWeekend(t *testing.T) {
	calc := newCalc()

	assert.True(t, calc.IsWeekend(date(2025, time.January, 18)))  // Saturday
	assert.True(t, calc.IsWeekend(date(2025, time.January, 19)))  // Sunday
	assert.False(t, calc.IsWeekend(date(2025, time.January, 17))) // Friday
	assert.False(t, calc.IsWeekend(date(2025, time.January, 20))) // Monday
}

func TestCalculator_IsWorkingDay(t *testing.T) {
	calc := newCalc()

	// Weekday, not a holiday.
	assert.True(t, calc.IsWorkingDay(date(2025, time.January, 15)))
	// Weekend.
	assert.False(t, calc.IsWorkingDay(date(2025, time.January, 18)))
	// Weekday holiday (MLK Day).
	assert.False(t, calc.IsWorkingDay(date(2025, time.January, 20)))
}

func TestCalculator_WorkingDayIdentity(t *testing.T) {
	// IsWorkingDay(d) == !IsWeekend(d) && !IsHoliday(d) over a full year.
	calc := newCalc()
	cal := calc.Calendar()

	for d := date(2025, time.January, 1); d.BeforeOrEqual(date(2025, time.December, 31)); d = d.AddDays(1) {
		want := !calc.IsWeekend(d) && !cal.IsHoliday(d)
		assert.Equal(t, want, calc.IsWorkingDay(d), "mismatch at %s", d)
	}
}

func TestCalculator_NextWorkingDay(t *testing.T) {
	calc := newCalc()

	// Wednesday -> Thursday.
	assert.Equal(t, "2025-01-16", calc.NextWorkingDay(date(2025, time.January, 15)).String())

	// Friday Jan 17: Sat/Sun skipped, Mon Jan 20 is MLK Day, so Tuesday Jan 21.
	assert.Equal(t, "2025-01-21", calc.NextWorkingDay(date(2025, time.January, 17)).String())

	// Always strictly after the input and always a working day.
	for d := date(2025, time.January, 1); d.BeforeOrEqual(date(2025, time.December, 31)); d = d.AddDays(1) {
		next := calc.NextWorkingDay(d)
		assert.True(t, next.After(d))
		assert.True(t, calc.IsWorkingDay(next))
	}
}

func TestCalculator_CountWorkingDays(t *testing.T) {
	calc := newCalc()

	tests := []struct {
		name       string
		start, end calendar.Date
		want       int
	}{
		{"single working day", date(2025, time.January, 15), date(2025, time.January, 15), 1},
		{"single weekend day", date(2025, time.January, 18), date(2025, time.January, 18), 0},
		{"plain work week", date(2025, time.January, 6), date(2025, time.January, 10), 5},
		{"week with MLK Day", date(2025, time.January, 20), date(2025, time.January, 24), 4},
		{"spans two weekends", date(2025, time.January, 13), date(2025, time.January, 26), 9},
		{"inverted range", date(2025, time.January, 20), date(2025, time.January, 13), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.CountWorkingDays(tt.start, tt.end))
		})
	}
}

func TestCalculator_CountMatchesPerDayScan(t *testing.T) {
	calc := newCalc()
	start, end := date(2025, time.May, 1), date(2025, time.June, 30)

	want := 0
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if calc.IsWorkingDay(d) {
			want++
		}
	}
	assert.Equal(t, want, calc.CountWorkingDays(start, end))
}
