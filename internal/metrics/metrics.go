// Package metrics collects Prometheus metrics for authentication outcomes,
// access decisions and HTTP traffic, and serves them for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth event labels.
const (
	EventLoginSuccess = "login_success"
	EventLoginFailure = "login_failure"
	EventRegister     = "register"
	EventLogout       = "logout"
	EventStaleSession = "stale_session"
)

// Recorder is the metrics surface used by services and middleware.
type Recorder interface {
	RecordAuthEvent(event string)
	RecordAccessDecision(decision string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	authEvents      *prometheus.CounterVec
	accessDecisions *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvass_auth_events_total",
			Help: "Authentication events by outcome.",
		}, []string{"event"}),
		accessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvass_access_decisions_total",
			Help: "Project access gate decisions.",
		}, []string{"decision"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvass_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canvass_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.authEvents,
		c.accessDecisions,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

// RecordAuthEvent counts one authentication event.
func (c *Collector) RecordAuthEvent(event string) {
	c.authEvents.WithLabelValues(event).Inc()
}

// RecordAccessDecision counts one access gate decision.
func (c *Collector) RecordAccessDecision(decision string) {
	c.accessDecisions.WithLabelValues(decision).Inc()
}

// RecordHTTPRequest counts a finished request and observes its latency.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used by tests and when metrics are disabled.
type Nop struct{}

func (Nop) RecordAuthEvent(string) {}
func (Nop) RecordAccessDecision(string) {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
