// Package handler exposes the search API over HTTP: single and batch
// query resolution, suggestions, reverse date lookup, and cache
// management.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/oxterm/termsearch/internal/analytics"
	"github.com/oxterm/termsearch/internal/dateutil"
	"github.com/oxterm/termsearch/internal/search/cache"
	"github.com/oxterm/termsearch/internal/search/engine"
	"github.com/oxterm/termsearch/internal/search/parser"
	"github.com/oxterm/termsearch/internal/search/suggest"
	"github.com/oxterm/termsearch/internal/term"
	"github.com/oxterm/termsearch/internal/term/table"
	"github.com/oxterm/termsearch/pkg/logger"
	"github.com/oxterm/termsearch/pkg/metrics"
	"github.com/oxterm/termsearch/pkg/middleware"
	"github.com/oxterm/termsearch/pkg/tracing"
)

// Tracker receives analytics events. Both the per-event and the batching
// collector satisfy it; a nil Tracker disables analytics.
type Tracker interface {
	Track(event interface{})
}

type Handler struct {
	engine    *engine.Engine
	table     *table.Table
	cache     *cache.ResultCache
	suggester *suggest.Generator
	tracker   Tracker
	metrics   *metrics.Metrics
	maxBatch  int
	logger    *slog.Logger
}

func New(
	eng *engine.Engine,
	tbl *table.Table,
	resultCache *cache.ResultCache,
	suggester *suggest.Generator,
	tracker Tracker,
	m *metrics.Metrics,
	maxBatch int,
) *Handler {
	if maxBatch <= 0 {
		maxBatch = 50
	}
	return &Handler{
		engine:    eng,
		table:     tbl,
		cache:     resultCache,
		suggester: suggester,
		tracker:   tracker,
		metrics:   m,
		maxBatch:  maxBatch,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Search resolves a single query. Unparseable input comes back as a
// result of kind "error" with HTTP 200; the query was answered, the
// answer is that it cannot be understood.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	ctx, span := tracing.StartSpan(ctx, "search", middleware.GetRequestID(ctx))
	result, cacheHit := h.resolve(ctx, query)
	span.SetAttr("kind", result.Kind)
	span.SetAttr("cache_hit", cacheHit)
	span.End()
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		span.Log()
	}

	latencyMs := time.Since(start).Milliseconds()

	log.Info("search completed",
		"query", query,
		"kind", result.Kind,
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	h.recordQuery(ctx, query, result, cacheHit, start)

	h.writeJSON(w, http.StatusOK, result)
}

type batchRequest struct {
	Queries []string `json:"queries"`
}

type batchResponse struct {
	Results []engine.Result `json:"results"`
}

// SearchBatch resolves up to maxBatch queries in one request, preserving
// input order in the response.
func (h *Handler) SearchBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Queries) == 0 {
		h.writeError(w, http.StatusBadRequest, "queries must not be empty")
		return
	}
	if len(req.Queries) > h.maxBatch {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("too many queries: %d (max %d)", len(req.Queries), h.maxBatch))
		return
	}

	results := make([]engine.Result, len(req.Queries))
	for i, q := range req.Queries {
		qStart := time.Now()
		result, cacheHit := h.resolve(ctx, q)
		results[i] = result
		h.recordQuery(ctx, q, result, cacheHit, qStart)
	}

	log.Info("batch search completed",
		"queries", len(req.Queries),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

type suggestResponse struct {
	Input       string   `json:"input"`
	Suggestions []string `json:"suggestions"`
}

// Suggest returns autocomplete candidates for a partial query.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	input := r.URL.Query().Get("q")
	suggestions := h.suggester.Generate(input)
	if suggestions == nil {
		suggestions = []string{}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(suggestions) {
			suggestions = suggestions[:limit]
		}
	}

	if h.metrics != nil {
		h.metrics.SuggestionsReturned.Observe(float64(len(suggestions)))
	}
	if h.tracker != nil {
		h.tracker.Track(analytics.SuggestEvent{
			Type:      analytics.EventSuggest,
			Input:     input,
			Returned:  len(suggestions),
			LatencyMs: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, suggestResponse{
		Input:       input,
		Suggestions: suggestions,
	})
}

type weekLookupResponse struct {
	Date      string `json:"date"`
	InTerm    bool   `json:"inTerm"`
	Year      string `json:"year,omitempty"`
	Term      string `json:"term,omitempty"`
	Week      *int   `json:"week,omitempty"`
	WeekStart string `json:"weekStart,omitempty"`
	WeekEnd   string `json:"weekEnd,omitempty"`
}

// Weeks reverse-looks-up a calendar date: which term week, if any,
// contains it.
func (h *Handler) Weeks(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'date' is required")
		return
	}
	date, err := dateutil.ParseISO(dateStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}

	resp := weekLookupResponse{Date: dateutil.FormatISO(date)}
	if placement, ok := h.table.FindTermWeek(date); ok {
		week := placement.Week
		resp.InTerm = true
		resp.Year = placement.Year
		resp.Term = placement.Term.Title()
		resp.Week = &week
		resp.WeekStart = dateutil.FormatISO(placement.Entry.Start)
		resp.WeekEnd = dateutil.FormatISO(placement.Entry.End)
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type yearsResponse struct {
	Years   []string `json:"years"`
	Current string   `json:"current"`
}

// Years lists the academic years covered by the loaded table.
func (h *Handler) Years(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, yearsResponse{
		Years:   h.table.Years(),
		Current: h.table.CurrentAcademicYear(time.Now()),
	})
}

type fullTermResponse struct {
	Year      string `json:"year"`
	Term      string `json:"term"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// FullTerm returns the Full Term date range (week 1 start through week 8
// end) for a given year and term.
func (h *Handler) FullTerm(w http.ResponseWriter, r *http.Request) {
	yearLabel := r.URL.Query().Get("year")
	termName := r.URL.Query().Get("term")
	if yearLabel == "" || termName == "" {
		h.writeError(w, http.StatusBadRequest, "query parameters 'year' and 'term' are required")
		return
	}
	tm, ok := term.Parse(termName)
	if !ok {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown term %q", termName))
		return
	}
	entry, ok := h.table.FullTermRange(yearLabel, tm)
	if !ok {
		h.writeError(w, http.StatusNotFound,
			fmt.Sprintf("no full term range for %s %s", tm.Title(), yearLabel))
		return
	}

	h.writeJSON(w, http.StatusOK, fullTermResponse{
		Year:      yearLabel,
		Term:      tm.Title(),
		StartDate: dateutil.FormatISO(entry.Start),
		EndDate:   dateutil.FormatISO(entry.End),
	})
}

// CacheStats reports hit/miss counters for the result cache.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate drops every cached result. Used after term-table
// updates.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// resolve answers one query through the cache when available.
func (h *Handler) resolve(ctx context.Context, query string) (engine.Result, bool) {
	ctx, span := tracing.StartChildSpan(ctx, "resolve")
	defer span.End()

	if h.cache == nil {
		return h.engine.Search(query), false
	}
	result, cacheHit := h.cache.GetOrCompute(ctx, query, func() *engine.Result {
		r := h.engine.Search(query)
		return &r
	})
	return *result, cacheHit
}

// recordQuery updates metrics and emits the analytics event for one
// resolved query.
func (h *Handler) recordQuery(ctx context.Context, query string, result engine.Result, cacheHit bool, start time.Time) {
	parseFailed := result.QueryType == string(parser.TypeInvalid)

	if h.metrics != nil {
		h.metrics.QueriesTotal.WithLabelValues(result.QueryType, result.Kind).Inc()
		if parseFailed {
			h.metrics.ParseFailuresTotal.Inc()
		}
		cacheStatus := "bypass"
		if h.cache != nil {
			cacheStatus = "miss"
			if cacheHit {
				cacheStatus = "hit"
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	}

	if h.tracker == nil {
		return
	}
	eventType := analytics.EventQuery
	if parseFailed {
		eventType = analytics.EventParseFailure
	}
	event := analytics.QueryEvent{
		Type:      eventType,
		Query:     query,
		QueryType: result.QueryType,
		Outcome:   result.Kind,
		LatencyMs: time.Since(start).Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(ctx),
	}
	if result.Term != "" {
		event.Term = result.Term
		event.Week = result.Week
		event.Year = result.Year
	}
	h.tracker.Track(event)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
