package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oxterm/termsearch/pkg/kafka"
)

// AggregatedStats is the rolled-up view of query traffic served by the
// analytics API and persisted as snapshots.
type AggregatedStats struct {
	TotalQueries     int64            `json:"total_queries"`
	QueriesByType    map[string]int64 `json:"queries_by_type"`
	ParseFailures    int64            `json:"parse_failures"`
	ParseFailureRate float64          `json:"parse_failure_rate"`
	CacheHits        int64            `json:"cache_hits"`
	CacheMisses      int64            `json:"cache_misses"`
	SuggestRequests  int64            `json:"suggest_requests"`
	AvgLatencyMs     float64          `json:"avg_latency_ms"`
	P50LatencyMs     int64            `json:"p50_latency_ms"`
	P95LatencyMs     int64            `json:"p95_latency_ms"`
	P99LatencyMs     int64            `json:"p99_latency_ms"`
	TopQueries       []QueryCount     `json:"top_queries"`
	TopFailedQueries []QueryCount     `json:"top_failed_queries"`
	QueriesPerMinute float64          `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator consumes analytics events from Kafka and maintains running
// counters, latency samples, and per-query tallies in memory.
type Aggregator struct {
	mu              sync.RWMutex
	totalQueries    atomic.Int64
	parseFailures   atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	suggestRequests atomic.Int64
	queriesByType   map[string]int64
	latencies       []int64
	queryCounts     map[string]int64
	failedQueries   map[string]int64
	startTime       time.Time

	consumer *kafka.Consumer
	logger   *slog.Logger
}

func NewAggregator(consumer *kafka.Consumer) *Aggregator {
	return &Aggregator{
		queriesByType: make(map[string]int64),
		latencies:     make([]int64, 0, 10000),
		queryCounts:   make(map[string]int64),
		failedQueries: make(map[string]int64),
		startTime:     time.Now(),
		consumer:      consumer,
		logger:        slog.Default().With("component", "analytics-aggregator"),
	}
}

// SetConsumer attaches the Kafka consumer. The consumer's handler needs
// the aggregator, so construction happens in two steps.
func (a *Aggregator) SetConsumer(consumer *kafka.Consumer) {
	a.consumer = consumer
}

func (a *Aggregator) Start(ctx context.Context) error {
	a.logger.Info("analytics aggregator starting")
	return a.consumer.Start(ctx)
}

// HandleEvent returns the Kafka message handler that feeds the aggregator.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		switch string(key) {
		case "suggest":
			event, err := kafka.DecodeJSON[SuggestEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode suggest event", "error", err)
				return nil
			}
			agg.recordSuggestEvent(event)
		default:
			event, err := kafka.DecodeJSON[QueryEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode query event", "error", err)
				return nil
			}
			agg.recordQueryEvent(event)
		}
		return nil
	}
}

func (a *Aggregator) recordQueryEvent(event QueryEvent) {
	a.totalQueries.Add(1)

	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}

	failed := event.QueryType == "invalid"
	if failed {
		a.parseFailures.Add(1)
	}

	a.mu.Lock()
	a.queriesByType[event.QueryType]++
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
	if failed {
		a.failedQueries[event.Query]++
	}
	a.mu.Unlock()
}

func (a *Aggregator) recordSuggestEvent(event SuggestEvent) {
	a.suggestRequests.Add(1)
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalQueries:    a.totalQueries.Load(),
		ParseFailures:   a.parseFailures.Load(),
		CacheHits:       a.cacheHits.Load(),
		CacheMisses:     a.cacheMisses.Load(),
		SuggestRequests: a.suggestRequests.Load(),
		QueriesByType:   make(map[string]int64, len(a.queriesByType)),
	}
	for qt, n := range a.queriesByType {
		stats.QueriesByType[qt] = n
	}
	if stats.TotalQueries > 0 {
		stats.ParseFailureRate = float64(stats.ParseFailures) / float64(stats.TotalQueries)
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.TopFailedQueries = topN(a.failedQueries, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalQueries) / elapsed
	}

	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
