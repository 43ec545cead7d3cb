package vm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/govm-net/counter/types"
)

type metrics struct {
	invocations *prometheus.CounterVec
	overflows   prometheus.Counter
	latency     prometheus.Histogram
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "counter",
			Name:      "invocations_total",
			Help:      "number of invocations by function and status",
		}, []string{"function", "status"}),
		overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "counter",
			Name:      "overflows_total",
			Help:      "number of invocations reverted by arithmetic overflow",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "counter",
			Name:      "invocation_seconds",
			Help:      "time spent executing an invocation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{m.invocations, m.overflows, m.latency} {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observe(function string, status types.ReceiptStatus, overflow bool, took time.Duration) {
	m.invocations.WithLabelValues(function, string(status)).Inc()
	if overflow {
		m.overflows.Inc()
	}
	m.latency.Observe(took.Seconds())
}
