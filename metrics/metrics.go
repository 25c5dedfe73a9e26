// Package metrics собирает счётчики приложения и экспортирует их
// в формате Prometheus на /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Registry = prometheus.NewRegistry()

var (
	EntriesSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bracketpool_entries_submitted_total",
		Help: "Entry submissions and replacements accepted.",
	})

	ResultsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bracketpool_results_recorded_total",
		Help: "Official matchup results recorded or corrected.",
	})

	PoolRescores = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bracketpool_pool_rescores_total",
		Help: "Full pool rescore passes.",
	})

	PoolsAutoLocked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bracketpool_pools_auto_locked_total",
		Help: "Pools locked by the scheduler at lock time.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bracketpool_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bracketpool_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		EntriesSubmitted,
		ResultsRecorded,
		PoolRescores,
		PoolsAutoLocked,
		httpRequestsTotal,
		httpRequestDuration,
	)
}

// Handler отдаёт метрики реестра приложения.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware считает запросы и их длительность. Шаблон маршрута
// берётся из chi после обработки, чтобы не плодить метки на каждый id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
