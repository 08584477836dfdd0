// Package metrics holds the Prometheus collectors of both servers. They are
// registered in a package registry rather than the global default one.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	TurnsResolved = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "legacy_idle_turns_resolved_total",
		Help: "Combat turns resolved.",
	})
	EncountersFinished = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "legacy_idle_encounters_finished_total",
		Help: "Encounters that ended, by kind and status.",
	}, []string{"kind", "status"})
	MonstersDefeated = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "legacy_idle_monsters_defeated_total",
		Help: "Enemies defeated across all encounters.",
	})
	LootDropped = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "legacy_idle_loot_dropped_total",
		Help: "Items dropped, by rarity.",
	}, []string{"rarity"})
	ActiveSessions = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "legacy_idle_active_sessions",
		Help: "Connected game sessions.",
	})
	HTTPRequests = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "legacy_idle_http_requests_total",
		Help: "HTTP requests, by route and status code.",
	}, []string{"route", "code"})
	HTTPDuration = promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "legacy_idle_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// Handler serves the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument counts and times requests under route.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
