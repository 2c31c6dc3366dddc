/*
dto.go - Request/response data structures

PURPOSE:
  The JSON shapes crossing the HTTP boundary. Records serialize with the
  domain's own camelCase tags; these types cover everything else.

SEE ALSO:
  - handlers.go: where the shapes are produced and consumed
*/
package api

import (
	"github.com/warp/pto-scheduler/calendar"
	"github.com/warp/pto-scheduler/pto"
)

// ScheduleRequest carries a natural-language scheduling request.
type ScheduleRequest struct {
	Request   string `json:"request"`
	SessionID string `json:"sessionId,omitempty"`
}

// ScheduleResponse is the outcome of a scheduling request.
type ScheduleResponse struct {
	Message string       `json:"message"`
	Record  *pto.Request `json:"record"`
}

// UpdateRequest carries a natural-language update request.
type UpdateRequest struct {
	Request   string `json:"request"`
	SessionID string `json:"sessionId,omitempty"`
}

// UpdateResponse is the outcome of an update request.
type UpdateResponse struct {
	Message string       `json:"message"`
	Record  *pto.Request `json:"record"`
}

// QueryRequest carries a conversational question about existing records.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId,omitempty"`
}

// QueryResponse carries the natural-language answer.
type QueryResponse struct {
	Answer string `json:"answer"`
}

// CategoriesResponse lists the recognized request categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// HolidaysResponse lists the configured holidays.
type HolidaysResponse struct {
	Holidays []calendar.Holiday `json:"holidays"`
}

// ErrorResponse is the error body for all non-2xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
