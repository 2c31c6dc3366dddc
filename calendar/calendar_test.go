package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pto-scheduler/calendar"
)

func date(year int, month time.Month, day int) calendar.Date {
	return calendar.NewDate(year, month, day)
}

func TestDate_RoundTrip(t *testing.T) {
	d := date(2025, time.January, 16)
	parsed, err := calendar.ParseDate(d.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equal(d))
}

func TestDate_ParseRejectsGarbage(t *testing.T) {
	_, err := calendar.ParseDate("not-a-date")
	assert.Error(t, err)

	_, err = calendar.ParseDate("2025-13-40")
	assert.Error(t, err)
}

func TestDate_WholeDayOrdering(t *testing.T) {
	a := date(2025, time.March, 10)
	b := date(2025, time.March, 11)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
	assert.False(t, a.Equal(b))
}

func TestDate_AddDaysCrossesMonthBoundary(t *testing.T) {
	d := date(2025, time.January, 30)
	assert.Equal(t, "2025-02-02", d.AddDays(3).String())
}

func TestDate_JSON(t *testing.T) {
	d := date(2025, time.July, 4)
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2025-07-04"`, string(b))

	var back calendar.Date
	require.NoError(t, back.UnmarshalJSON(b))
	assert.True(t, back.Equal(d))
}

func TestCalendar_IsHoliday(t *testing.T) {
	cal := calendar.NewCalendar(calendar.USFederal2025())

	assert.True(t, cal.IsHoliday(date(2025, time.January, 1)))
	assert.True(t, cal.IsHoliday(date(2025, time.December, 25)))
	assert.False(t, cal.IsHoliday(date(2025, time.January, 2)))

	// Out-of-year dates are simply never found.
	assert.False(t, cal.IsHoliday(date(2024, time.December, 25)))
	assert.False(t, cal.IsHoliday(date(2026, time.January, 1)))
}

func TestCalendar_HolidaysBetween(t *testing.T) {
	cal := calendar.NewCalendar(calendar.USFederal2025())

	// Inclusive bounds on both sides.
	hs := cal.HolidaysBetween(date(2025, time.January, 1), date(2025, time.February, 17))
	require.Len(t, hs, 3)
	assert.Equal(t, "New Year's Day", hs[0].Name)
	assert.Equal(t, "Martin Luther King Jr. Day", hs[1].Name)
	assert.Equal(t, "Presidents' Day", hs[2].Name)

	// Ordered by date even if the input list was not.
	shuffled := []calendar.Holiday{
		{Date: date(2025, time.December, 25), Name: "Christmas Day"},
		{Date: date(2025, time.January, 1), Name: "New Year's Day"},
	}
	hs = calendar.NewCalendar(shuffled).HolidaysBetween(date(2025, time.January, 1), date(2025, time.December, 31))
	require.Len(t, hs, 2)
	assert.Equal(t, "New Year's Day", hs[0].Name)

	assert.Empty(t, cal.HolidaysBetween(date(2025, time.March, 1), date(2025, time.March, 31)))
}
