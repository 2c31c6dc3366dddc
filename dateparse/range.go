/*
range.go - Compound phrase splitting and range assembly

PURPOSE:
  ParseRange splits a phrase like "next monday through friday" on the first
  range connective, resolves each side independently, and assembles a
  validated range carrying the working-day count and holiday annotations.

FAILURE POLICY:
  Any unresolved segment, or a range whose resolved start falls after its
  end, yields a no-match signal rather than an error. The caller decides
  whether to fall back to the language-model path.
*/
package dateparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/warp/pto-scheduler/calendar"
)

// connectiveRe matches the first whitespace-delimited range connective.
// Requiring surrounding whitespace keeps "to" from matching inside "tomorrow".
var connectiveRe = regexp.MustCompile(`(?i)\s+(?:to|through|until|and)\s+`)

// ParsedRange is the deterministic parser's output: a validated date range
// with its inclusive working-day count.
type ParsedRange struct {
	StartDate    calendar.Date       `json:"startDate"`
	EndDate      calendar.Date       `json:"endDate"`
	NumberOfDays int                 `json:"numberOfDays"`
	ExcludedDays calendar.Exclusions `json:"excludedDays"`
	HolidayInfo  string              `json:"holidayInfo,omitempty"`
}

// Parser resolves compound date-range phrases.
type Parser struct {
	resolver *Resolver
	calc     *calendar.Calculator
}

// NewParser creates a range parser over the given calculator.
func NewParser(calc *calendar.Calculator) *Parser {
	return &Parser{resolver: NewResolver(calc), calc: calc}
}

// Resolver returns the underlying single-phrase resolver.
func (p *Parser) Resolver() *Resolver { return p.resolver }

// ParseRange parses text against the reference date. The second return is
// false on no-match: unresolved segments and inverted ranges both normalize
// to no-match, never to an error or a partial result.
func (p *Parser) ParseRange(text string, ref calendar.Date) (*ParsedRange, bool) {
	if loc := connectiveRe.FindStringIndex(text); loc != nil {
		start, ok := p.resolver.Resolve(text[:loc[0]], ref)
		if !ok {
			return nil, false
		}
		end, ok := p.resolver.Resolve(text[loc[1]:], ref)
		if !ok {
			return nil, false
		}
		if start.After(end) {
			return nil, false
		}

		pr := &ParsedRange{
			StartDate:    start,
			EndDate:      end,
			NumberOfDays: p.calc.CountWorkingDays(start, end),
			ExcludedDays: calendar.AllExclusions(),
		}
		if holidays := p.calc.Calendar().HolidaysBetween(start, end); len(holidays) > 0 {
			pr.HolidayInfo = HolidayNote(holidays)
		}
		return pr, true
	}

	// No connective: the whole text is a single-day phrase.
	d, ok := p.resolver.Resolve(text, ref)
	if !ok {
		return nil, false
	}
	return &ParsedRange{
		StartDate:    d,
		EndDate:      d,
		NumberOfDays: 1,
		ExcludedDays: calendar.AllExclusions(),
	}, true
}

// HolidayNote formats the human-readable annotation for holidays falling
// inside a scheduled range.
func HolidayNote(holidays []calendar.Holiday) string {
	if len(holidays) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nNote: This period includes the following holidays:")
	for _, h := range holidays {
		b.WriteString(fmt.Sprintf("\n- %s (%s)", h.Name, h.Date))
	}
	return b.String()
}
