// Package metrics defines and registers all custom Prometheus metrics for the
// content API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry at import time via
// promauto; the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "content_api"

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheHitsTotal counts cache lookups that returned a stored value.
// Label:
//   - region: the cache region queried (e.g. "users", "posts:all")
var CacheHitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of cache lookups served from the cache.",
	},
	[]string{"region"},
)

// CacheMissesTotal counts cache lookups that fell through to the repository.
var CacheMissesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total number of cache lookups that missed.",
	},
	[]string{"region"},
)

// CacheInvalidationsTotal counts region-wide invalidations triggered by writes.
var CacheInvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total number of cache region invalidations.",
	},
	[]string{"region"},
)

// ── Resilience metrics ────────────────────────────────────────────────────────

// BreakerState tracks the current state of each named circuit breaker.
// Values: 0 = closed, 1 = half-open, 2 = open.
var BreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open).",
	},
	[]string{"name"},
)

// FallbacksTotal counts read operations that served the safe empty fallback.
// Label:
//   - operation: the wrapped operation (e.g. "users.FindByID")
var FallbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallbacks_total",
		Help:      "Total number of calls answered by a fallback result.",
	},
	[]string{"operation"},
)

// ── External aggregation metrics ──────────────────────────────────────────────

// ExternalRequestsTotal counts downstream calls made by the aggregation gateway.
// Labels:
//   - service: downstream name ("service-a", "service-b")
//   - outcome: "success", "error", "timeout", "open", "rate_limited"
var ExternalRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "external_requests_total",
		Help:      "Total number of downstream aggregation calls, by outcome.",
	},
	[]string{"service", "outcome"},
)

// ExternalRequestDuration measures downstream call latency.
var ExternalRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "external_request_duration_seconds",
		Help:      "Duration of downstream aggregation calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"service"},
)
