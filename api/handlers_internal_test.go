package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pto-scheduler/calendar"
	"github.com/warp/pto-scheduler/pto"
	"github.com/warp/pto-scheduler/storage/sqlite"
)

func testCalc() *calendar.Calculator {
	return calendar.NewCalculator(calendar.NewCalendar(calendar.USFederal2025()))
}

func marchRecord() pto.Request {
	return pto.Request{
		ID:           "req-1",
		StartDate:    calendar.NewDate(2025, time.March, 3),
		EndDate:      calendar.NewDate(2025, time.March, 7),
		Type:         pto.DefaultType,
		NumberOfDays: 5,
		Status:       pto.StatusApproved,
	}
}

func TestRecomputeDerived_RejectsInvertedMerge(t *testing.T) {
	// A partial update that moves one boundary past the other must not merge
	// through as a zero-day record.
	h := &Handler{Calc: testCalc()}

	lateStart := calendar.NewDate(2025, time.March, 10)
	_, err := h.recomputeDerived(marchRecord(), pto.Fields{StartDate: &lateStart})
	assert.Error(t, err)

	earlyEnd := calendar.NewDate(2025, time.February, 28)
	_, err = h.recomputeDerived(marchRecord(), pto.Fields{EndDate: &earlyEnd})
	assert.Error(t, err)
}

func TestRecomputeDerived_RecountsAndAnnotates(t *testing.T) {
	h := &Handler{Calc: testCalc()}

	// Shrinking the range recounts the days and clears the stale note.
	newEnd := calendar.NewDate(2025, time.March, 5)
	fields, err := h.recomputeDerived(marchRecord(), pto.Fields{EndDate: &newEnd})
	require.NoError(t, err)
	require.NotNil(t, fields.NumberOfDays)
	assert.Equal(t, 3, *fields.NumberOfDays)
	require.NotNil(t, fields.HolidayInfo)
	assert.Empty(t, *fields.HolidayInfo)

	// Stretching across Memorial Day picks up the annotation.
	current := marchRecord()
	current.StartDate = calendar.NewDate(2025, time.May, 23)
	current.EndDate = calendar.NewDate(2025, time.May, 23)
	farEnd := calendar.NewDate(2025, time.May, 29)
	fields, err = h.recomputeDerived(current, pto.Fields{EndDate: &farEnd})
	require.NoError(t, err)
	assert.Equal(t, 4, *fields.NumberOfDays)
	assert.Contains(t, *fields.HolidayInfo, "Memorial Day (2025-05-26)")

	// Updates that leave both boundaries alone pass through untouched.
	days := 2
	fields, err = h.recomputeDerived(marchRecord(), pto.Fields{NumberOfDays: &days})
	require.NoError(t, err)
	assert.Nil(t, fields.HolidayInfo)
}

func TestDeterministicPathsRecordConversation(t *testing.T) {
	// Parser-handled exchanges still land in the session history, so a later
	// fallback call sees them as context.
	store, err := sqlite.New(":memory:", 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, testCalc(), nil)
	h.Now = func() calendar.Date { return calendar.NewDate(2025, time.January, 15) }

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(method, path, bytes.NewReader(b))
		rr := httptest.NewRecorder()
		NewRouter(h).ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, "/api/pto/schedule", ScheduleRequest{Request: "tomorrow", SessionID: "s1"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(http.MethodPut, "/api/pto/update", UpdateRequest{Request: "in 3 days", SessionID: "s1"})
	require.Equal(t, http.StatusOK, rr.Code)

	history := h.conversation("s1").Recent()
	require.Len(t, history, 4)
	assert.Equal(t, openai.ChatMessageRoleUser, history[0].Role)
	assert.Equal(t, "tomorrow", history[0].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, history[1].Role)
	assert.Contains(t, history[1].Content, "PTO scheduled successfully")
	assert.Equal(t, "in 3 days", history[2].Content)
	assert.Contains(t, history[3].Content, "PTO updated successfully")
}
