package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type opMetrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newOpMetrics(reg *prometheus.Registry) *opMetrics {
	m := &opMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panos_driver",
			Name:      "operations_total",
			Help:      "Count of device operations by outcome.",
		}, []string{"device", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "panos_driver",
			Name:      "operation_duration_seconds",
			Help:      "Device operation latency. Commit and rollback include the settle pause.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"device", "operation"}),
	}
	reg.MustRegister(m.ops, m.duration)
	return m
}

// observe records one finished operation.
func (m *opMetrics) observe(device, operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ops.WithLabelValues(device, operation, outcome).Inc()
	m.duration.WithLabelValues(device, operation).Observe(time.Since(start).Seconds())
}
