package behavior

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bjaus/mediator"
)

// Metrics records Prometheus metrics for every dispatch that passes through
// it. Create it with NewMetrics and add it to the chain with Use.
type Metrics struct {
	dispatches *prometheus.CounterVec   // by message, outcome, code
	duration   *prometheus.HistogramVec // by message
	inFlight   *prometheus.GaugeVec     // by message
}

// NewMetrics creates the dispatch metrics under namespace and registers them
// with reg.
//
// Metric names:
//   - <namespace>_mediator_dispatches_total{message,outcome,code}
//   - <namespace>_mediator_dispatch_duration_seconds{message}
//   - <namespace>_mediator_dispatches_in_flight{message}
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mediator",
			Name:      "dispatches_total",
			Help:      "Total number of dispatches by outcome",
		}, []string{"message", "outcome", "code"}), // outcome: success, failure

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mediator",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent in the pipeline below this behavior",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"message"}),

		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mediator",
			Name:      "dispatches_in_flight",
			Help:      "Dispatches currently running",
		}, []string{"message"}),
	}

	for _, c := range []prometheus.Collector{m.dispatches, m.duration, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Invoke implements mediator.Behavior. A panic below it is counted as a
// PANIC failure and left to propagate.
func (m *Metrics) Invoke(ctx context.Context, msg mediator.Message, next mediator.Next) (out any, err error) {
	name := mediator.NameOf(msg)
	gauge := m.inFlight.WithLabelValues(name)
	gauge.Inc()

	start := time.Now()
	completed := false
	defer func() {
		gauge.Dec()
		m.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if !completed {
			m.dispatches.WithLabelValues(name, "failure", mediator.CodePanic).Inc()
			return
		}
		res := mediator.Normalize(out, err)
		if res.Success() {
			m.dispatches.WithLabelValues(name, "success", "").Inc()
			return
		}
		m.dispatches.WithLabelValues(name, "failure", res.MustCode()).Inc()
	}()

	out, err = next(ctx, msg)
	completed = true
	return out, err
}
