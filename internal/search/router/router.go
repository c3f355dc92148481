// Package router wires up the search service routes and applies the
// middleware chain (RequestID → CORS → RateLimit → Timeout → Metrics).
package router

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oxterm/termsearch/internal/analytics"
	"github.com/oxterm/termsearch/internal/ratelimit"
	"github.com/oxterm/termsearch/internal/search/handler"
	"github.com/oxterm/termsearch/pkg/config"
	"github.com/oxterm/termsearch/pkg/health"
	"github.com/oxterm/termsearch/pkg/metrics"
	pkgmw "github.com/oxterm/termsearch/pkg/middleware"
)

// Options carries the optional collaborators; nil fields disable the
// corresponding routes or middleware.
type Options struct {
	Analytics *analytics.Handler
	Snapshots http.HandlerFunc
	Limiter   *ratelimit.Limiter
	RateLimit config.RateLimitConfig
	Metrics   *metrics.Metrics
	Timeout   time.Duration
}

// New builds the full search-service HTTP handler.
//
// Route table:
//
//	GET  /api/v1/search            → resolve one query
//	POST /api/v1/search/batch      → resolve up to N queries
//	GET  /api/v1/suggest           → autocomplete candidates
//	GET  /api/v1/weeks             → reverse date lookup
//	GET  /api/v1/years             → academic years covered
//	GET  /api/v1/terms             → full term date range
//	GET  /api/v1/cache/stats       → result-cache counters
//	POST /api/v1/cache/invalidate  → drop cached results
//	GET  /api/v1/analytics         → aggregated query stats
//	GET  /api/v1/analytics/history → persisted snapshots
//	GET  /health/live|ready        → health probes
func New(h *handler.Handler, checker *health.Checker, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search/batch", h.SearchBatch)
	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("GET /api/v1/weeks", h.Weeks)
	mux.HandleFunc("GET /api/v1/years", h.Years)
	mux.HandleFunc("GET /api/v1/terms", h.FullTerm)

	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)

	if opts.Analytics != nil {
		mux.HandleFunc("GET /api/v1/analytics", opts.Analytics.Stats)
	}
	if opts.Snapshots != nil {
		mux.HandleFunc("GET /api/v1/analytics/history", opts.Snapshots)
	}

	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	// Middleware chain, applied inside-out:
	// request → RequestID → CORS → RateLimit → Timeout → Metrics → mux
	var chain http.Handler = mux
	if opts.Metrics != nil {
		chain = pkgmw.Metrics(opts.Metrics)(chain)
	}
	if opts.Timeout > 0 {
		chain = pkgmw.Timeout(opts.Timeout)(chain)
	}
	if opts.Limiter != nil && opts.RateLimit.Enabled {
		chain = rateLimitByClient(opts.Limiter, opts.RateLimit, opts.Metrics)(chain)
	}
	chain = pkgmw.CORS(pkgmw.DefaultCORSConfig())(chain)
	chain = pkgmw.RequestID(chain)

	return chain
}

// rateLimitByClient enforces the per-client token bucket, keyed by the
// remote IP. Health probes are never limited.
func rateLimitByClient(limiter *ratelimit.Limiter, cfg config.RateLimitConfig, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(clientKey(r), cfg.RequestsPerWindow) {
				if m != nil {
					m.RateLimitedTotal.Inc()
				}
				w.Header().Set("Retry-After", "60")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey prefers X-Forwarded-For (first hop) so deployments behind a
// proxy limit real clients rather than the proxy itself.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
