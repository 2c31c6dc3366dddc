package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pto-scheduler/api"
	"github.com/warp/pto-scheduler/calendar"
	"github.com/warp/pto-scheduler/pto"
	"github.com/warp/pto-scheduler/storage/sqlite"
)

// newTestServer wires a handler over an in-memory store with a fixed
// reference date and no fallback planner.
func newTestServer(t *testing.T, today calendar.Date) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(":memory:", 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	calc := calendar.NewCalculator(calendar.NewCalendar(calendar.USFederal2025()))
	h := api.NewHandler(store, calc, nil)
	h.Now = func() calendar.Date { return today }

	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSchedule_Tomorrow(t *testing.T) {
	// Wednesday 2025-01-15; tomorrow is a plain working Thursday.
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	resp := postJSON(t, srv.URL+"/api/pto/schedule", api.ScheduleRequest{Request: "I need PTO tomorrow"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decode[api.ScheduleResponse](t, resp)
	assert.Equal(t, "PTO scheduled successfully (1 working day)", out.Message)
	require.NotNil(t, out.Record)
	assert.NotEmpty(t, out.Record.ID)
	assert.Equal(t, "2025-01-16", out.Record.StartDate.String())
	assert.Equal(t, "2025-01-16", out.Record.EndDate.String())
	assert.Equal(t, 1, out.Record.NumberOfDays)
	assert.Equal(t, pto.DefaultType, out.Record.Type)
	assert.Equal(t, pto.StatusApproved, out.Record.Status)
	assert.Equal(t, calendar.AllExclusions(), out.Record.ExcludedDays)
}

func TestSchedule_RangeAnnotatesHolidays(t *testing.T) {
	// Thursday 2025-05-22; the range spans Memorial Day (Monday May 26).
	srv := newTestServer(t, calendar.NewDate(2025, time.May, 22))

	resp := postJSON(t, srv.URL+"/api/pto/schedule", api.ScheduleRequest{Request: "this friday to next thursday"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decode[api.ScheduleResponse](t, resp)
	assert.Equal(t, "2025-05-23", out.Record.StartDate.String())
	assert.Equal(t, "2025-05-29", out.Record.EndDate.String())
	assert.Equal(t, 4, out.Record.NumberOfDays)
	assert.Contains(t, out.Message, "PTO scheduled successfully (4 working days)")
	assert.Contains(t, out.Message, "Memorial Day (2025-05-26)")
	assert.Contains(t, out.Record.HolidayInfo, "Memorial Day (2025-05-26)")
}

func TestSchedule_ExtractsCategoryFromText(t *testing.T) {
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	resp := postJSON(t, srv.URL+"/api/pto/schedule", api.ScheduleRequest{Request: "sick day tomorrow"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decode[api.ScheduleResponse](t, resp)
	assert.Equal(t, "Sick Day", out.Record.Type)
}

func TestSchedule_NoMatchWithoutPlanner(t *testing.T) {
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	resp := postJSON(t, srv.URL+"/api/pto/schedule", api.ScheduleRequest{Request: "sometime when it feels right"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSchedule_EmptyRequest(t *testing.T) {
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	resp := postJSON(t, srv.URL+"/api/pto/schedule", api.ScheduleRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdate_ReschedulesMostRecentRecord(t *testing.T) {
	// Wednesday 2025-01-15. "in 3 days" lands on Saturday Jan 18, snaps past
	// the weekend and MLK Day to Tuesday Jan 21.
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	created := decode[api.ScheduleResponse](t,
		postJSON(t, srv.URL+"/api/pto/schedule", api.ScheduleRequest{Request: "tomorrow"}))

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/pto/update", api.UpdateRequest{Request: "in 3 days"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[api.UpdateResponse](t, resp)
	assert.Equal(t, created.Record.ID, out.Record.ID)
	assert.Equal(t, "2025-01-21", out.Record.StartDate.String())
	assert.Equal(t, "2025-01-21", out.Record.EndDate.String())
	assert.Equal(t, 1, out.Record.NumberOfDays)
	assert.Equal(t, "PTO updated successfully (1 working day)", out.Message)
}

func TestUpdate_NoRecords(t *testing.T) {
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/pto/update", api.UpdateRequest{Request: "tomorrow"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuery_RequiresPlanner(t *testing.T) {
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	resp := postJSON(t, srv.URL+"/api/pto/query", api.QueryRequest{Query: "how much pto do I have?"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRecordLifecycle(t *testing.T) {
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	created := decode[api.ScheduleResponse](t,
		postJSON(t, srv.URL+"/api/pto/schedule", api.ScheduleRequest{Request: "tomorrow"}))
	id := created.Record.ID

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/pto/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[pto.Request](t, resp)
	assert.Equal(t, id, got.ID)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/pto/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	removed := decode[pto.Request](t, resp)
	assert.Equal(t, id, removed.ID)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/pto/"+id, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/pto/"+id, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestList_EmptyStoreIsAnArray(t *testing.T) {
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/pto/list", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := decode[[]pto.Request](t, resp)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/pto/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[api.CategoriesResponse](t, resp)
	assert.Equal(t, pto.Categories, out.Categories)
}

func TestHolidays(t *testing.T) {
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/pto/holidays", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[api.HolidaysResponse](t, resp)
	assert.Len(t, out.Holidays, 11)
}

func TestSummary(t *testing.T) {
	srv := newTestServer(t, calendar.NewDate(2025, time.January, 15))

	postJSON(t, srv.URL+"/api/pto/schedule", api.ScheduleRequest{Request: "tomorrow"}).Body.Close()
	postJSON(t, srv.URL+"/api/pto/schedule", api.ScheduleRequest{Request: "sick day next friday"}).Body.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/pto/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[pto.Summary](t, resp)

	assert.Equal(t, 2, out.TotalRequests)
	assert.Equal(t, "2", out.TotalDays.String())
	require.Len(t, out.ByType, 2)
	assert.Equal(t, pto.DefaultType, out.ByType[0].Type)
	assert.Equal(t, "Sick Day", out.ByType[1].Type)
}
