// Package metrics provides the Prometheus registry used by the PokeAPI client
// and a text dump of it for one-shot CLI runs.
// All metrics are defined in their respective packages (client, cache, fanout)
// to maintain modularity and avoid circular dependencies.
package metrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Prefix is shared by every metric this module registers.
const Prefix = "pokeapi_"

// Registry is the default Prometheus registry used by the PokeAPI client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back what Registry collected.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// WriteText writes every pokeapi_ metric family gathered from g in the
// Prometheus text exposition format. Runtime collectors are skipped.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Prefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - pokeapi_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//     (status is the code, "304", "cache_hit" or "network_error")
//   - pokeapi_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - pokeapi_errors_total{class} (Counter): Errors by class (network, client, server, decode)
//
// Fan-out Metrics (pkg/fanout):
//   - pokeapi_fanout_tasks_total{result} (Counter): Detail tasks by result (ok, error, cancelled)
//
// Cache Metrics (pkg/cache):
//   - pokeapi_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - pokeapi_cache_misses_total (Counter): Cache misses
//   - pokeapi_cache_size_bytes{layer="redis"} (Gauge): Bytes written to the cache
//   - pokeapi_304_responses_total (Counter): 304 Not Modified responses
//   - pokeapi_conditional_requests_total (Counter): Conditional requests sent with If-None-Match
//   - pokeapi_cache_errors_total{operation} (Counter): Cache operation errors
//
// Endpoint labels collapse numeric path segments, so every detail request
// lands in /api/v2/pokemon/{id}/.
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(pokeapi_cache_hits_total) /
//   (sum(pokeapi_cache_hits_total) + pokeapi_cache_misses_total)
//
//   # Detail failures per run
//   pokeapi_fanout_tasks_total{result="error"}
//
//   # P95 Request Latency
//   histogram_quantile(0.95, pokeapi_request_duration_seconds_bucket)
