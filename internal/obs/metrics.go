package obs

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Outgoing API traffic, labelled by canonicalized route to keep cardinality
// bounded regardless of how many record identifiers appear in paths.
var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_api_requests_total",
			Help: "Total number of API requests issued by the console core.",
		},
		[]string{"method", "route", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_api_request_duration_seconds",
			Help:    "API request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	registerOnce sync.Once
)

// Init registers the console metrics in the default registry.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(apiRequestsTotal, apiRequestDuration)
	})
}

// ObserveRequest records one completed API call. Transport failures report
// status "0".
func ObserveRequest(method, path, status string, seconds float64) {
	route := CanonicalPath(path)
	apiRequestsTotal.WithLabelValues(method, route, status).Inc()
	apiRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// CanonicalPath strips the query string and collapses numeric path segments
// into ":id" so every record detail URL maps onto one metric series.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg != "" && isDigits(seg) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
