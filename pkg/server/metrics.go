package server

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/birdayz/transcode/pkg/codec"
)

type metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transcode",
			Name:      "operations_total",
			Help:      "Total number of codec operations by outcome.",
		}, []string{"scheme", "direction", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "transcode",
			Name:      "operation_duration_seconds",
			Help:      "Time spent running a codec operation.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"scheme", "direction"}),
	}
	reg.MustRegister(m.operations, m.duration)
	return m
}

// observe records one operation. Unparseable scheme or direction values are
// folded into "unknown" to keep label cardinality bounded.
func (m *metrics) observe(scheme, direction string, took time.Duration, err error) {
	if _, perr := codec.ParseScheme(scheme); perr != nil {
		scheme = "unknown"
	}
	if _, perr := codec.ParseDirection(direction); perr != nil {
		direction = "unknown"
	}
	m.operations.WithLabelValues(scheme, direction, outcome(err)).Inc()
	m.duration.WithLabelValues(scheme, direction).Observe(took.Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	k := codec.KindOf(err)
	if k == 0 {
		k = codec.InvalidInput
	}
	return strings.ReplaceAll(k.String(), " ", "_")
}
