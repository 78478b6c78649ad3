// Package metrics documents the Prometheus metrics exposed by articgrid.
// All metrics are defined in their respective packages (client, pagecache,
// grid) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by articgrid.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - artic_requests_total{status} (Counter): Total requests by HTTP status
//   - artic_request_duration_seconds{endpoint} (Histogram): Request duration
//   - artic_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//
// Retry Metrics (pkg/client):
//   - artic_retries_total{error_class} (Counter): Retry attempts by error class
//   - artic_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - artic_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Page Cache Metrics (pkg/pagecache):
//   - artic_page_cache_hits_total{layer="memory"|"redis"} (Counter): Cache hits by layer
//   - artic_page_cache_misses_total (Counter): Cache misses
//   - artic_page_cache_pages{layer} (Gauge): Number of cached pages
//   - artic_page_cache_errors_total{operation} (Counter): Cache operation errors
//
// Grid Metrics (pkg/grid):
//   - artic_grid_fetch_failures_total (Counter): Fetches degraded to an empty page
//   - artic_grid_bulk_select_duration_seconds (Histogram): Bulk selection duration
//   - artic_grid_bulk_pages_planned (Histogram): Pages planned per bulk selection
//   - artic_grid_bulk_partial_total (Counter): Bulk selections with failed pages
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(artic_page_cache_hits_total[5m])) /
//   (sum(rate(artic_page_cache_hits_total[5m])) + sum(rate(artic_page_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(artic_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(artic_request_duration_seconds_bucket[5m]))
//
//   # Partial Bulk Selection Rate
//   rate(artic_grid_bulk_partial_total[5m])
