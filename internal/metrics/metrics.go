// README: Prometheus collectors for HTTP traffic, distance sources and quotes.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, route, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// DistanceEstimates counts estimates by the strategy that answered
	DistanceEstimates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "distance_estimates_total", Help: "Distance estimates by source."},
		[]string{"source"},
	)
	// RoutingLookups counts external routing outcomes (ok, error, timeout, empty, cache_hit)
	RoutingLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routing_lookups_total", Help: "External routing lookups by outcome."},
		[]string{"outcome"},
	)
	// QuoteTotals tracks VAT-inclusive quote totals in pounds by van size
	QuoteTotals = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "quote_total_gbp", Help: "VAT-inclusive quote totals in GBP.", Buckets: []float64{60, 100, 150, 250, 400, 600, 1000, 1500, 2500}},
		[]string{"van_size"},
	)
	// BookingTransitions counts booking status changes
	BookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "booking_transitions_total", Help: "Booking status transitions."},
		[]string{"from", "to"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(DistanceEstimates)
		Registry.MustRegister(RoutingLookups)
		Registry.MustRegister(QuoteTotals)
		Registry.MustRegister(BookingTransitions)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
