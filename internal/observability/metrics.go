package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Login outcomes recorded by RecordLogin.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginStoreError         = "store_error"
	LoginDispatchError      = "dispatch_error"
	LoginSigningError       = "signing_error"
)

// Metrics holds the auth service's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	logins          *prometheus.CounterVec
	lookupDuration  *prometheus.HistogramVec
	lookupsInFlight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_http_requests_total",
			Help: "Total HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auth_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_http_errors_total",
			Help: "Total failed HTTP requests by error code.",
		}, []string{"path", "method", "code"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auth_store_lookup_duration_seconds",
			Help:    "Credential store lookup latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"result"}),
		lookupsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auth_store_lookups_in_flight",
			Help: "Credential store lookups currently executing.",
		}),
	}

	reg.MustRegister(m.requests, m.requestDuration, m.errors, m.logins, m.lookupDuration, m.lookupsInFlight)
	return m
}

// RecordRequest counts a completed request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts a request that ended in a domain error.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordLogin counts a login attempt by outcome.
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// StoreLookupStarted marks a store lookup as in flight.
func (m *Metrics) StoreLookupStarted() {
	if m == nil {
		return
	}
	m.lookupsInFlight.Inc()
}

// StoreLookupFinished records the lookup's latency and clears its in-flight mark.
func (m *Metrics) StoreLookupFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.lookupsInFlight.Dec()
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.lookupDuration.WithLabelValues(result).Observe(d.Seconds())
}
