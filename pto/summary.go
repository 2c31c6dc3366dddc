/*
summary.go - Aggregate reporting over stored PTO records

PURPOSE:
  Summarize rolls stored records up into per-type working-day totals for the
  summary endpoint. Totals use decimal amounts so the report stays exact if
  fractional day grants ever enter the data.
*/
package pto

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TypeTotal is the rollup for one PTO category.
type TypeTotal struct {
	Type     string          `json:"type"`
	Requests int             `json:"requests"`
	Days     decimal.Decimal `json:"days"`
}

// Summary is the full rollup over a record set.
type Summary struct {
	TotalRequests int             `json:"totalRequests"`
	TotalDays     decimal.Decimal `json:"totalDays"`
	ByType        []TypeTotal     `json:"byType"`
}

// Summarize aggregates records into per-type and grand totals. Types are
// ordered alphabetically for stable output.
func Summarize(records []Request) Summary {
	byType := make(map[string]*TypeTotal)
	total := decimal.Zero

	for _, r := range records {
		days := decimal.NewFromInt(int64(r.NumberOfDays))
		total = total.Add(days)

		tt, ok := byType[r.Type]
		if !ok {
			tt = &TypeTotal{Type: r.Type, Days: decimal.Zero}
			byType[r.Type] = tt
		}
		tt.Requests++
		tt.Days = tt.Days.Add(days)
	}

	out := Summary{
		TotalRequests: len(records),
		TotalDays:     total,
		ByType:        make([]TypeTotal, 0, len(byType)),
	}
	for _, tt := range byType {
		out.ByType = append(out.ByType, *tt)
	}
	sort.Slice(out.ByType, func(i, j int) bool { return out.ByType[i].Type < out.ByType[j].Type })
	return out
}
