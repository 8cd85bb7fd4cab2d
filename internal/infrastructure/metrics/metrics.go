// Package metrics exposes the Prometheus collectors of the matching service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the view of the collector used by the usecases.
type Recorder interface {
	RecordSwipe(actor, decision string)
	RecordMatchCreated()
	RecordCacheResult(hit bool)
}

type Collector struct {
	swipes       *prometheus.CounterVec
	matches      prometheus.Counter
	cacheLookups *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewCollector creates the collectors and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		swipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "petsapi_swipes_total",
			Help: "Swipes recorded, by acting party and decision.",
		}, []string{"actor", "decision"}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "petsapi_matches_created_total",
			Help: "Matches created from reciprocal likes.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "petsapi_match_cache_lookups_total",
			Help: "Match listing cache lookups, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "petsapi_http_requests_total",
			Help: "HTTP requests, by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "petsapi_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(c.swipes, c.matches, c.cacheLookups, c.httpRequests, c.httpLatency)
	return c
}

func (c *Collector) RecordSwipe(actor, decision string) {
	c.swipes.WithLabelValues(actor, decision).Inc()
}

func (c *Collector) RecordMatchCreated() {
	c.matches.Inc()
}

func (c *Collector) RecordCacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordSwipe(string, string) {}
func (Nop) RecordMatchCreated()        {}
func (Nop) RecordCacheResult(bool)     {}
