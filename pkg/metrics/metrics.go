// Package metrics provides the centralized Prometheus metrics registry for
// the collector. All metrics are defined in their respective packages
// (gateway, cache, collector) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the collector.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/gateway):
//   - frontier_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - frontier_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - frontier_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/gateway):
//   - frontier_retries_total{error_class} (Counter): Retry attempts by error class
//   - frontier_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - frontier_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - frontier_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - frontier_cache_misses_total (Counter): Cache misses
//   - frontier_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - frontier_304_responses_total (Counter): 304 Not Modified responses
//   - frontier_conditional_requests_total (Counter): Conditional requests sent with If-None-Match
//   - frontier_cache_errors_total{operation} (Counter): Cache operation errors
//
// Collection Metrics (pkg/collector):
//   - frontier_collector_pages_fetched_total (Counter): Pages fetched across runs
//   - frontier_collector_items_total (Counter): Items inserted into mappings
//   - frontier_collector_runs_total{status} (Counter): Runs by outcome (completed, failed, aborted)
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(frontier_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(frontier_request_duration_seconds_bucket[5m]))
//
//   # Cache Hit Rate
//   sum(rate(frontier_cache_hits_total[5m])) /
//   (sum(rate(frontier_cache_hits_total[5m])) + sum(rate(frontier_cache_misses_total[5m])))
//
//   # Run Failure Ratio
//   sum(rate(frontier_collector_runs_total{status!="completed"}[1h])) /
//   sum(rate(frontier_collector_runs_total[1h]))
