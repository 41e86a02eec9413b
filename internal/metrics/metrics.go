package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IndexQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starnav_index_queries_total",
		Help: "Total spatial index queries",
	}, []string{"index"})
	IndexSegmentsCheckedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starnav_index_segments_checked_total",
		Help: "Candidate segments returned by the k-d tree before exact filtering",
	}, []string{"index"})
	IndexSegmentsReturnedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starnav_index_segments_returned_total",
		Help: "Segments that passed the exact bounding sphere test",
	}, []string{"index"})
	IndexRebuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starnav_index_rebuilds_total",
		Help: "Lazy k-d tree rebuilds",
	}, []string{"index"})
	IndexRebuildDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "starnav_index_rebuild_duration_ms",
		Help:    "Spatial index rebuild duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 20, 50, 100, 500},
	}, []string{"index"})
	TransitCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starnav_transit_calculations_total",
		Help: "Transit calculations by strategy",
	}, []string{"strategy"})
	TransitCalculationDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "starnav_transit_calculation_duration_ms",
		Help:    "Transit calculation duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	RouteFinderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starnav_route_finder_requests_total",
		Help: "Route finding requests by outcome",
	}, []string{"outcome"})
	RouteCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "starnav_route_cache_hits_total",
		Help: "Route finder cache hits",
	})
	RouteCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "starnav_route_cache_misses_total",
		Help: "Route finder cache misses",
	})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starnav_http_requests_total",
		Help: "HTTP requests by path and status",
	}, []string{"path", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "starnav_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"path"})
)

func init() {
	prometheus.MustRegister(IndexQueriesTotal)
	prometheus.MustRegister(IndexSegmentsCheckedTotal)
	prometheus.MustRegister(IndexSegmentsReturnedTotal)
	prometheus.MustRegister(IndexRebuildsTotal)
	prometheus.MustRegister(IndexRebuildDurationMs)
	prometheus.MustRegister(TransitCalculationsTotal)
	prometheus.MustRegister(TransitCalculationDurationMs)
	prometheus.MustRegister(RouteFinderRequestsTotal)
	prometheus.MustRegister(RouteCacheHitsTotal)
	prometheus.MustRegister(RouteCacheMissesTotal)
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
