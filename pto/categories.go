package pto

import "strings"

// Categories is the closed set of valid PTO types.
var Categories = []string{
	"Bereavement",
	"FMLA",
	"Jury Duty",
	"Maternity/Paternity",
	"Medical Leave",
	"Military",
	"Out of Office / Travel",
	"Paid Time Off",
	"Sick Day",
	"Unpaid Time Off",
}

// IsValidCategory reports whether the category is in the closed set.
// Matching is exact, case-sensitive.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ExtractCategory scans free text for the first category it mentions,
// case-insensitively. Returns "" when none is found.
func ExtractCategory(text string) string {
	lower := strings.ToLower(text)
	for _, c := range Categories {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return ""
}
