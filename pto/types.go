/*
Package pto defines the persisted PTO request record, the closed category
set, and summary reporting over stored records.

PURPOSE:
  Request is the entity every storage backend persists. The parsing engine
  computes its dates and day count; identity and status are assigned by the
  API layer at creation time. Fields carries partial updates for the
  field-level merge operation.

LIFECYCLE:
  A Request is created once with an immutable id and status "approved". It
  may be partially updated; deletion exists as an adapter operation only.

SEE ALSO:
  - storage/adapter.go: the CRUD contract over this record
  - categories.go: the closed category set
*/
package pto

import (
	"time"

	"github.com/warp/pto-scheduler/calendar"
)

// DefaultType is assigned when a request names no category or an invalid one.
const DefaultType = "Paid Time Off"

// StatusApproved is the only lifecycle state assigned in scope: requests are
// created approved.
const StatusApproved = "approved"

// Request is a persisted PTO record.
type Request struct {
	ID           string              `json:"id"`
	StartDate    calendar.Date       `json:"startDate"`
	EndDate      calendar.Date       `json:"endDate"`
	Type         string              `json:"type"`
	NumberOfDays int                 `json:"numberOfDays"`
	Status       string              `json:"status"`
	ExcludedDays calendar.Exclusions `json:"excludedDays"`
	HolidayInfo  string              `json:"holidayInfo,omitempty"`
	CreatedAt    time.Time           `json:"createdAt,omitempty"`
}

// Fields carries a partial update. Nil fields are left untouched by the
// merge; the record id is never updatable.
type Fields struct {
	StartDate    *calendar.Date       `json:"startDate,omitempty"`
	EndDate      *calendar.Date       `json:"endDate,omitempty"`
	Type         *string              `json:"type,omitempty"`
	NumberOfDays *int                 `json:"numberOfDays,omitempty"`
	Status       *string              `json:"status,omitempty"`
	ExcludedDays *calendar.Exclusions `json:"excludedDays,omitempty"`
	HolidayInfo  *string              `json:"holidayInfo,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (f Fields) IsEmpty() bool {
	return f.StartDate == nil && f.EndDate == nil && f.Type == nil &&
		f.NumberOfDays == nil && f.Status == nil && f.ExcludedDays == nil &&
		f.HolidayInfo == nil
}

// Apply merges the non-nil fields onto a copy of the record.
func (f Fields) Apply(r Request) Request {
	if f.StartDate != nil {
		r.StartDate = *f.StartDate
	}
	if f.EndDate != nil {
		r.EndDate = *f.EndDate
	}
	if f.Type != nil {
		r.Type = *f.Type
	}
	if f.NumberOfDays != nil {
		r.NumberOfDays = *f.NumberOfDays
	}
	if f.Status != nil {
		r.Status = *f.Status
	}
	if f.ExcludedDays != nil {
		r.ExcludedDays = *f.ExcludedDays
	}
	if f.HolidayInfo != nil {
		r.HolidayInfo = *f.HolidayInfo
	}
	return r
}
