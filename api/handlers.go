/*
handlers.go - HTTP API handlers for the PTO scheduling service

PURPOSE:
  Exposes PTO scheduling via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the parsing engine, the storage adapter,
  and the language-model fallback.

ENDPOINTS:
  PTO:
    POST   /api/pto/schedule     Schedule from a natural-language request
    PUT    /api/pto/update       Update from a natural-language request
    POST   /api/pto/query        Conversational query over records
    GET    /api/pto/list         List all records
    GET    /api/pto/{id}         Get one record
    DELETE /api/pto/{id}         Delete one record
    GET    /api/pto/categories   The closed category set
    GET    /api/pto/holidays     Configured holidays
    GET    /api/pto/summary      Per-type day totals

REQUEST FLOW:
  1. Parse HTTP request
  2. Try the deterministic parser against today's date
  3. On no-match, fall back to the language-model planner (if configured)
  4. Persist through the storage adapter
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 422: Request understood by neither parser nor planner
  - 500: Storage or planner failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/warp/pto-scheduler/calendar"
	"github.com/warp/pto-scheduler/dateparse"
	"github.com/warp/pto-scheduler/fallback"
	"github.com/warp/pto-scheduler/pto"
	"github.com/warp/pto-scheduler/storage"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   storage.Adapter
	Calc    *calendar.Calculator
	Parser  *dateparse.Parser
	Planner *fallback.Planner

	// Now supplies the reference date for relative phrases. Overridable in
	// tests; defaults to the wall clock.
	Now func() calendar.Date

	// Per-session conversation state for the fallback path.
	mu       sync.Mutex
	sessions map[string]*fallback.Conversation
}

// NewHandler creates a new handler. planner may be nil, which disables the
// language-model fallback.
func NewHandler(store storage.Adapter, calc *calendar.Calculator, planner *fallback.Planner) *Handler {
	return &Handler{
		Store:    store,
		Calc:     calc,
		Parser:   dateparse.NewParser(calc),
		Planner:  planner,
		Now:      calendar.Today,
		sessions: make(map[string]*fallback.Conversation),
	}
}

// conversation returns the session's conversation, creating it on first use.
// An empty session id maps to a shared default session.
func (h *Handler) conversation(sessionID string) *fallback.Conversation {
	if sessionID == "" {
		sessionID = "default"
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	conv, ok := h.sessions[sessionID]
	if !ok {
		conv = fallback.NewConversation(sessionID)
		h.sessions[sessionID] = conv
	}
	return conv
}

// recordExchange appends a user/assistant turn to the session history, so a
// later fallback call sees what the deterministic path already did.
func (h *Handler) recordExchange(sessionID, request, reply string) {
	conv := h.conversation(sessionID)
	conv.Add(openai.ChatMessageRoleUser, request)
	conv.Add(openai.ChatMessageRoleAssistant, reply)
}

// =============================================================================
// SCHEDULING HANDLERS
// =============================================================================

// Schedule creates a PTO record from a natural-language request. The
// deterministic parser runs first; the planner handles what it cannot.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Request == "" {
		writeError(w, http.StatusBadRequest, "Request text is required", nil)
		return
	}

	ctx := r.Context()
	ref := h.Now()

	if pr, ok := h.Parser.ParseRange(req.Request, ref); ok {
		rec := h.newRecord(req.Request, pr)
		created, err := h.Store.Create(ctx, rec)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save PTO record", err)
			return
		}
		msg := scheduleMessage("scheduled", created)
		h.recordExchange(req.SessionID, req.Request, msg)
		writeJSON(w, http.StatusCreated, ScheduleResponse{Message: msg, Record: created})
		return
	}

	if h.Planner == nil {
		writeError(w, http.StatusUnprocessableEntity, "Could not understand the request", nil)
		return
	}

	conv := h.conversation(req.SessionID)
	history := conv.Recent()
	conv.Add(openai.ChatMessageRoleUser, req.Request)

	records, err := h.Store.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list PTO records", err)
		return
	}

	plan, err := h.Planner.PlanSchedule(ctx, req.Request, records, ref, history)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to interpret the request", err)
		return
	}

	rec := pto.Request{
		ID:           uuid.NewString(),
		StartDate:    plan.StartDate,
		EndDate:      plan.EndDate,
		Type:         plan.Type,
		NumberOfDays: plan.NumberOfDays,
		Status:       pto.StatusApproved,
		ExcludedDays: plan.ExcludedDays,
		HolidayInfo:  plan.HolidayInfo,
		CreatedAt:    time.Now().UTC(),
	}
	created, err := h.Store.Create(ctx, rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save PTO record", err)
		return
	}

	msg := scheduleMessage("scheduled", created)
	conv.Add(openai.ChatMessageRoleAssistant, msg)
	writeJSON(w, http.StatusCreated, ScheduleResponse{Message: msg, Record: created})
}

// mergedRange is the record's date range after a partial update is applied.
func mergedRange(current pto.Request, fields pto.Fields) (calendar.Date, calendar.Date) {
	start, end := current.StartDate, current.EndDate
	if fields.StartDate != nil {
		start = *fields.StartDate
	}
	if fields.EndDate != nil {
		end = *fields.EndDate
	}
	return start, end
}

// newRecord assembles a persisted record from a parsed range. The category
// comes from the request text when it names one.
func (h *Handler) newRecord(text string, pr *dateparse.ParsedRange) pto.Request {
	category := pto.ExtractCategory(text)
	if category == "" {
		category = pto.DefaultType
	}
	return pto.Request{
		ID:           uuid.NewString(),
		StartDate:    pr.StartDate,
		EndDate:      pr.EndDate,
		Type:         category,
		NumberOfDays: pr.NumberOfDays,
		Status:       pto.StatusApproved,
		ExcludedDays: pr.ExcludedDays,
		HolidayInfo:  pr.HolidayInfo,
		CreatedAt:    time.Now().UTC(),
	}
}

// Update changes an existing record from a natural-language request. The
// deterministic path reschedules the most recent record; the planner path
// identifies the record by its original start date.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Request == "" {
		writeError(w, http.StatusBadRequest, "Request text is required", nil)
		return
	}

	ctx := r.Context()
	ref := h.Now()

	if pr, ok := h.Parser.ParseRange(req.Request, ref); ok {
		target, err := h.mostRecentRecord(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list PTO records", err)
			return
		}
		if target == nil {
			writeError(w, http.StatusNotFound, "No PTO records to update", nil)
			return
		}

		fields := pto.Fields{
			StartDate:    &pr.StartDate,
			EndDate:      &pr.EndDate,
			NumberOfDays: &pr.NumberOfDays,
			ExcludedDays: &pr.ExcludedDays,
			HolidayInfo:  &pr.HolidayInfo,
		}
		if merged := h.applyUpdate(ctx, w, target.ID, fields); merged != nil {
			h.recordExchange(req.SessionID, req.Request, scheduleMessage("updated", merged))
		}
		return
	}

	if h.Planner == nil {
		writeError(w, http.StatusUnprocessableEntity, "Could not understand the request", nil)
		return
	}

	conv := h.conversation(req.SessionID)
	history := conv.Recent()
	conv.Add(openai.ChatMessageRoleUser, req.Request)

	records, err := h.Store.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list PTO records", err)
		return
	}

	plan, err := h.Planner.PlanUpdate(ctx, req.Request, records, ref, history)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to interpret the request", err)
		return
	}
	if plan.NewDetails.IsEmpty() {
		writeError(w, http.StatusBadRequest, "The request names nothing to change", nil)
		return
	}

	var target *pto.Request
	for i := range records {
		if records[i].StartDate.Equal(plan.OriginalStartDate) {
			target = &records[i]
			break
		}
	}
	if target == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No PTO record starts on %s", plan.OriginalStartDate), nil)
		return
	}

	fields, err := h.recomputeDerived(*target, plan.NewDetails)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "The requested change is not a valid date range", err)
		return
	}
	if merged := h.applyUpdate(ctx, w, target.ID, fields); merged != nil {
		conv.Add(openai.ChatMessageRoleAssistant, scheduleMessage("updated", merged))
	}
}

// recomputeDerived overrides the day count and holiday note whenever an
// update moves either boundary; those values are never taken from the model.
// A merge that would invert the range is rejected.
func (h *Handler) recomputeDerived(current pto.Request, fields pto.Fields) (pto.Fields, error) {
	if fields.StartDate == nil && fields.EndDate == nil {
		return fields, nil
	}
	start, end := mergedRange(current, fields)
	if start.After(end) {
		return pto.Fields{}, fmt.Errorf("start date %s is after end date %s", start, end)
	}

	days := h.Calc.CountWorkingDays(start, end)
	fields.NumberOfDays = &days

	note := ""
	if holidays := h.Calc.Calendar().HolidaysBetween(start, end); len(holidays) > 0 {
		note = dateparse.HolidayNote(holidays)
	}
	fields.HolidayInfo = &note
	return fields, nil
}

// applyUpdate performs the merge and writes the response. Returns the merged
// record, or nil when an error response was already written.
func (h *Handler) applyUpdate(ctx context.Context, w http.ResponseWriter, id string, fields pto.Fields) *pto.Request {
	merged, err := h.Store.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "PTO record not found", nil)
			return nil
		}
		writeError(w, http.StatusInternalServerError, "Failed to update PTO record", err)
		return nil
	}
	writeJSON(w, http.StatusOK, UpdateResponse{
		Message: scheduleMessage("updated", merged),
		Record:  merged,
	})
	return merged
}

// mostRecentRecord returns the latest-created record, or nil when the store
// is empty.
func (h *Handler) mostRecentRecord(ctx context.Context) (*pto.Request, error) {
	records, err := h.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	var latest *pto.Request
	for i := range records {
		if latest == nil || !records[i].CreatedAt.Before(latest.CreatedAt) {
			latest = &records[i]
		}
	}
	return latest, nil
}

// Query answers a conversational question about existing records.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query text is required", nil)
		return
	}
	if h.Planner == nil {
		writeError(w, http.StatusServiceUnavailable, "Conversational queries require an AI provider", nil)
		return
	}

	ctx := r.Context()
	conv := h.conversation(req.SessionID)
	history := conv.Recent()
	conv.Add(openai.ChatMessageRoleUser, req.Query)

	records, err := h.Store.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list PTO records", err)
		return
	}

	answer, err := h.Planner.Query(ctx, req.Query, records, h.Now(), history)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to answer the query", err)
		return
	}
	conv.Add(openai.ChatMessageRoleAssistant, answer)

	writeJSON(w, http.StatusOK, QueryResponse{Answer: answer})
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// List returns all PTO records.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list PTO records", err)
		return
	}
	if records == nil {
		records = []pto.Request{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Get returns a single PTO record.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get PTO record", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "PTO record not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete removes a PTO record and returns what was removed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete PTO record", err)
		return
	}
	if removed == nil {
		writeError(w, http.StatusNotFound, "PTO record not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

// =============================================================================
// REFERENCE DATA HANDLERS
// =============================================================================

// ListCategories returns the closed category set.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: pto.Categories})
}

// ListHolidays returns the configured holidays.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HolidaysResponse{Holidays: h.Calc.Calendar().Holidays()})
}

// Summary returns per-type working-day totals over all records.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list PTO records", err)
		return
	}
	writeJSON(w, http.StatusOK, pto.Summarize(records))
}

// =============================================================================
// HELPERS
// =============================================================================

// scheduleMessage builds the success message, holiday note included.
func scheduleMessage(verb string, rec *pto.Request) string {
	unit := "working days"
	if rec.NumberOfDays == 1 {
		unit = "working day"
	}
	return fmt.Sprintf("PTO %s successfully (%d %s)%s", verb, rec.NumberOfDays, unit, rec.HolidayInfo)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
