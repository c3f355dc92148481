// Package analytics defines the query-analytics event types and the
// in-process collector and aggregator that move them through Kafka.
package analytics

import "time"

type EventType string

const (
	EventQuery        EventType = "query"
	EventSuggest      EventType = "suggest"
	EventParseFailure EventType = "parse_failure"
)

// QueryEvent records one search query, parsed or not. Term, Week and
// Year are empty when the query did not parse.
type QueryEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	QueryType string    `json:"query_type"`
	Term      string    `json:"term,omitempty"`
	Week      *int      `json:"week,omitempty"`
	Year      string    `json:"year,omitempty"`
	Outcome   string    `json:"outcome"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// SuggestEvent records one autocomplete request.
type SuggestEvent struct {
	Type      EventType `json:"type"`
	Input     string    `json:"input"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}
