package simulator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const queryInsertUserAction = "insert_user_action"

// Metrics holds the generator's Prometheus collectors.
type Metrics struct {
	actions      *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "user_actions_total",
			Help: "Total number of user actions.",
		}, []string{"action"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_latency_seconds",
			Help:    "Latency of database queries in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}),
	}
	reg.MustRegister(m.actions, m.queryLatency)
	return m
}

func (m *Metrics) recordInsert(action string, d time.Duration) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action).Inc()
	m.queryLatency.WithLabelValues(queryInsertUserAction).Observe(d.Seconds())
}
