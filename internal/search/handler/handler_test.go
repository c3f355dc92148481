package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oxterm/termsearch/internal/analytics"
	"github.com/oxterm/termsearch/internal/search/engine"
	"github.com/oxterm/termsearch/internal/search/suggest"
	"github.com/oxterm/termsearch/internal/term/table"
)

func newTestTable(t *testing.T) *table.Table {
	t.Helper()

	weeks := func(firstSunday string, from, to int) map[string]table.DocumentWeek {
		start, err := time.Parse("2006-01-02", firstSunday)
		if err != nil {
			t.Fatal(err)
		}
		out := make(map[string]table.DocumentWeek)
		for w := from; w <= to; w++ {
			s := start.AddDate(0, 0, 7*(w-1))
			out[strconv.Itoa(w)] = table.DocumentWeek{
				Start: s.Format("2006-01-02"),
				End:   s.AddDate(0, 0, 6).Format("2006-01-02"),
			}
		}
		return out
	}

	doc := &table.Document{
		Years: []table.DocumentYear{
			{
				Year: "2024-25",
				Terms: map[string]map[string]table.DocumentWeek{
					"michaelmas": weeks("2024-10-13", 0, 12),
					"trinity":    weeks("2025-04-27", 1, 8),
				},
			},
		},
	}
	tbl, err := table.Build(doc)
	if err != nil {
		t.Fatalf("building test table: %v", err)
	}
	return tbl
}

// captureTracker records every tracked event for assertions.
type captureTracker struct {
	mu     sync.Mutex
	events []interface{}
}

func (c *captureTracker) Track(event interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func newTestHandler(t *testing.T, tracker Tracker) *Handler {
	t.Helper()
	tbl := newTestTable(t)
	eng := engine.New(tbl)
	sg := suggest.New(suggest.DefaultConfig(), tbl.Years())
	// No cache and no metrics: the handler treats both as disabled.
	return New(eng, tbl, nil, sg, tracker, nil, 3)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestSearch(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=week+2+trinity+2025", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var result engine.Result
	decodeBody(t, rec, &result)
	if result.Kind != engine.KindWeekRange {
		t.Errorf("Kind = %s, want %s", result.Kind, engine.KindWeekRange)
	}
	if result.StartDate != "2025-05-04" || result.EndDate != "2025-05-10" {
		t.Errorf("range = %s..%s", result.StartDate, result.EndDate)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// Unparseable queries are answered, not rejected: HTTP 200 with an error
// result.
func TestSearchUnparseableQuery(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=complete+nonsense", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result engine.Result
	decodeBody(t, rec, &result)
	if result.Kind != engine.KindError {
		t.Errorf("Kind = %s, want %s", result.Kind, engine.KindError)
	}
	if result.Error == "" {
		t.Error("error result has empty message")
	}
}

func TestSearchEmitsAnalytics(t *testing.T) {
	tracker := &captureTracker{}
	h := newTestHandler(t, tracker)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=week+2+trinity+2025", nil)
	h.Search(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/search?q=gibberish+input", nil)
	h.Search(httptest.NewRecorder(), req)

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if len(tracker.events) != 2 {
		t.Fatalf("tracked %d events, want 2", len(tracker.events))
	}
	first, ok := tracker.events[0].(analytics.QueryEvent)
	if !ok {
		t.Fatalf("event type %T", tracker.events[0])
	}
	if first.Type != analytics.EventQuery || first.Outcome != engine.KindWeekRange {
		t.Errorf("first event = %+v", first)
	}
	if first.QueryType != "term-week" {
		t.Errorf("first event QueryType = %q, want term-week", first.QueryType)
	}
	if first.Term != "trinity" || first.Week == nil || *first.Week != 2 {
		t.Errorf("first event placement = %s %v", first.Term, first.Week)
	}
	second := tracker.events[1].(analytics.QueryEvent)
	if second.Type != analytics.EventParseFailure {
		t.Errorf("second event type = %s, want %s", second.Type, analytics.EventParseFailure)
	}
	if second.QueryType != "invalid" {
		t.Errorf("second event QueryType = %q, want invalid", second.QueryType)
	}
}

func TestSearchBatch(t *testing.T) {
	h := newTestHandler(t, nil)

	body := `{"queries":["week 2 trinity 2025","garbage","2025-05-06"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SearchBatch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp batchResponse
	decodeBody(t, rec, &resp)
	if len(resp.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(resp.Results))
	}
	wantKinds := []string{engine.KindWeekRange, engine.KindError, engine.KindSingleDate}
	for i, r := range resp.Results {
		if r.Kind != wantKinds[i] {
			t.Errorf("Results[%d].Kind = %s, want %s", i, r.Kind, wantKinds[i])
		}
	}
}

func TestSearchBatchRejections(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"queries":`},
		{"empty list", `{"queries":[]}`},
		{"over batch limit", `{"queries":["a","b","c","d"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/search/batch", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.SearchBatch(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/suggest?q=mi", nil)
	rec := httptest.NewRecorder()
	h.Suggest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp suggestResponse
	decodeBody(t, rec, &resp)
	if resp.Input != "mi" {
		t.Errorf("Input = %q", resp.Input)
	}
	if len(resp.Suggestions) == 0 || resp.Suggestions[0] != "michaelmas" {
		t.Errorf("Suggestions = %v", resp.Suggestions)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/suggest?q=mi&limit=1", nil)
	rec = httptest.NewRecorder()
	h.Suggest(rec, req)
	decodeBody(t, rec, &resp)
	if len(resp.Suggestions) != 1 {
		t.Errorf("limited Suggestions = %v, want 1 entry", resp.Suggestions)
	}
}

// Input below the suggestion floor returns an empty list, never null.
func TestSuggestEmptyIsList(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/suggest?q=m", nil)
	rec := httptest.NewRecorder()
	h.Suggest(rec, req)

	if got := strings.TrimSpace(rec.Body.String()); !strings.Contains(got, `"suggestions":[]`) {
		t.Errorf("body = %s, want empty suggestions array", got)
	}
}

func TestWeeks(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weeks?date=2025-05-06", nil)
	rec := httptest.NewRecorder()
	h.Weeks(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp weekLookupResponse
	decodeBody(t, rec, &resp)
	if !resp.InTerm || resp.Term != "Trinity" || resp.Week == nil || *resp.Week != 2 {
		t.Errorf("response = %+v", resp)
	}
	if resp.WeekStart != "2025-05-04" || resp.WeekEnd != "2025-05-10" {
		t.Errorf("week range = %s..%s", resp.WeekStart, resp.WeekEnd)
	}
}

func TestWeeksOutsideTerm(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weeks?date=2024-07-15", nil)
	rec := httptest.NewRecorder()
	h.Weeks(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp weekLookupResponse
	decodeBody(t, rec, &resp)
	if resp.InTerm || resp.Term != "" || resp.Week != nil {
		t.Errorf("response = %+v", resp)
	}
}

func TestWeeksBadDate(t *testing.T) {
	h := newTestHandler(t, nil)

	for _, date := range []string{"", "06/05/2025", "2025-02-30"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/weeks?date="+date, nil)
		rec := httptest.NewRecorder()
		h.Weeks(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Weeks(%q) status = %d, want 400", date, rec.Code)
		}
	}
}

func TestYears(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/years", nil)
	rec := httptest.NewRecorder()
	h.Years(rec, req)

	var resp yearsResponse
	decodeBody(t, rec, &resp)
	if len(resp.Years) != 1 || resp.Years[0] != "2024-25" {
		t.Errorf("Years = %v", resp.Years)
	}
}

func TestFullTerm(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/terms?year=2024-25&term=mt", nil)
	rec := httptest.NewRecorder()
	h.FullTerm(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp fullTermResponse
	decodeBody(t, rec, &resp)
	if resp.Term != "Michaelmas" || resp.StartDate != "2024-10-13" || resp.EndDate != "2024-12-07" {
		t.Errorf("response = %+v", resp)
	}
}

func TestFullTermErrors(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing params", "/api/v1/terms", http.StatusBadRequest},
		{"unknown term", "/api/v1/terms?year=2024-25&term=easter", http.StatusBadRequest},
		{"absent year", "/api/v1/terms?year=2030-31&term=trinity", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			h.FullTerm(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestCacheEndpointsWithCacheDisabled(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	var stats map[string]string
	decodeBody(t, rec, &stats)
	if stats["status"] != "disabled" {
		t.Errorf("stats = %v", stats)
	}

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("invalidate status = %d, want 503", rec.Code)
	}
}
