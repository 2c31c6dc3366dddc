/*
Package dateparse turns natural-language date phrases into concrete calendar
dates and date ranges.

PURPOSE:
  The Resolver handles a single relative phrase ("tomorrow", "next monday",
  "in 3 business days") against a caller-supplied reference date. The Parser
  (range.go) splits compound phrases on range connectives and assembles a
  validated range with a working-day count and holiday annotations.

PATTERN DISPATCH:
  Recognized phrases live in an ordered pattern table. Each entry pairs a
  regular expression with its resolve function; the first matching entry wins.
  "day after tomorrow" is listed ahead of plain "tomorrow" so the more
  specific phrase takes priority.

NO-MATCH:
  An unrecognized phrase is not an error. Resolve and ParseRange return a
  false second value, which callers use to defer to the language-model
  fallback path.

SEE ALSO:
  - range.go: connective splitting and range assembly
  - calendar/workdays.go: the working-day arithmetic used for snapping
*/
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/warp/pto-scheduler/calendar"
)

// Resolver resolves a single relative date phrase against a reference date.
type Resolver struct {
	calc     *calendar.Calculator
	patterns []pattern
}

// pattern is one phrase rule: a regexp plus the arithmetic for its matches.
// Rules are evaluated in table order; the first match wins.
type pattern struct {
	name    string
	re      *regexp.Regexp
	resolve func(r *Resolver, m []string, ref calendar.Date) calendar.Date
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NewResolver creates a resolver with the standard pattern table.
func NewResolver(calc *calendar.Calculator) *Resolver {
	return &Resolver{
		calc: calc,
		patterns: []pattern{
			{
				name:    "this-next-weekday",
				re:      regexp.MustCompile(`(?i)\b(this|next)\s+(sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`),
				resolve: resolveWeekday,
			},
			{
				name:    "day-after-tomorrow",
				re:      regexp.MustCompile(`(?i)\bday\s+after\s+tomorrow\b`),
				resolve: func(r *Resolver, m []string, ref calendar.Date) calendar.Date { return ref.AddDays(2) },
			},
			{
				name:    "tomorrow",
				re:      regexp.MustCompile(`(?i)\btomorrow\b`),
				resolve: func(r *Resolver, m []string, ref calendar.Date) calendar.Date { return ref.AddDays(1) },
			},
			{
				name:    "in-n-days",
				re:      regexp.MustCompile(`(?i)\bin\s+(\d+)\s+(business\s+|working\s+)?days?\b`),
				resolve: resolveInDays,
			},
			{
				name:    "next-week",
				re:      regexp.MustCompile(`(?i)\bnext\s+week\b`),
				resolve: func(r *Resolver, m []string, ref calendar.Date) calendar.Date { return ref.AddDays(7) },
			},
		},
	}
}

// Resolve matches the phrase against the pattern table and returns the
// resolved date. The second return is false when no pattern matches; this is
// the soft no-match signal, not a failure.
//
// Every successful match whose result lands on a non-working day is advanced
// to the next working day. The business-day variant of "in N days" already
// lands on a working day, so the snap is a no-op there.
func (r *Resolver) Resolve(phrase string, ref calendar.Date) (calendar.Date, bool) {
	for _, p := range r.patterns {
		m := p.re.FindStringSubmatch(phrase)
		if m == nil {
			continue
		}
		result := p.resolve(r, m, ref)
		if !r.calc.IsWorkingDay(result) {
			result = r.calc.NextWorkingDay(result)
		}
		return result, true
	}
	return calendar.Date{}, false
}

// resolveWeekday implements "this <weekday>" / "next <weekday>".
//
// Tie-breaks: when the named weekday equals the reference weekday, "this"
// resolves to the reference date itself and "next" to seven days later.
// "next" never resolves to today.
func resolveWeekday(r *Resolver, m []string, ref calendar.Date) calendar.Date {
	isNext := strings.EqualFold(m[1], "next")
	target := weekdays[strings.ToLower(m[2])]

	offset := int(target) - int(ref.Weekday())
	if offset < 0 {
		offset += 7
	}
	if offset == 0 && isNext {
		offset = 7
	}
	return ref.AddDays(offset)
}

// resolveInDays implements "in N days" and "in N business|working days".
// The bare form adds N calendar days; the qualified form advances one day at
// a time counting only working days, so the landing day is always working.
func resolveInDays(r *Resolver, m []string, ref calendar.Date) calendar.Date {
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return ref
	}

	if m[2] != "" {
		result := ref
		for added := 0; added < n; {
			result = result.AddDays(1)
			if r.calc.IsWorkingDay(result) {
				added++
			}
		}
		return result
	}
	return ref.AddDays(n)
}
