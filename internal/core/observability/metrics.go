// Package observability holds the Prometheus metrics shared by the render
// pipeline and the HTTP service.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	renderDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "heatmap_render_duration_seconds",
			Help:    "Wall time of one heatmap render, tile fetches included.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"tessellation"},
	)

	renderCells = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "heatmap_render_cells",
			Help:    "Occupied cells per rendered heatmap.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"tessellation"},
	)

	tileFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tile_fetches_total",
			Help: "Base-map tile fetches by outcome.",
		},
		[]string{"provider", "outcome"},
	)

	tileFetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tile_fetch_duration_seconds",
			Help:    "Latency of upstream tile fetches in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"provider"},
	)

	tileCacheResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tile_cache_results_total",
			Help: "Tile cache results by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveRender(tessellation string, cells int, durationSeconds float64) {
	renderDurationSeconds.WithLabelValues(tessellation).Observe(durationSeconds)
	renderCells.WithLabelValues(tessellation).Observe(float64(cells))
}

func ObserveTileFetch(provider string, err error, durationSeconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	tileFetchesTotal.WithLabelValues(provider, outcome).Inc()
	tileFetchDurationSeconds.WithLabelValues(provider).Observe(durationSeconds)
}

func ObserveTileCache(backend, outcome string) {
	tileCacheResultsTotal.WithLabelValues(backend, outcome).Inc()
}

func SetBuildInfo(version string) {
	buildInfo.WithLabelValues(version).Set(1)
}
