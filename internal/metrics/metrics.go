package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"chatguard/internal/domain"
)

const namespace = "chatguard"

// Metrics holds the prediction collectors.
type Metrics struct {
	predictions *prometheus.CounterVec
	errors      *prometheus.CounterVec
	duration    prometheus.Histogram
}

// New registers the prediction collectors, plus the Go runtime and process
// collectors, on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions served, by label.",
		}, []string{"label"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      "Failed predictions, by error kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent in the inference pipeline.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
	}
	reg.MustRegister(
		m.predictions,
		m.errors,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePrediction records a successful prediction.
func (m *Metrics) ObservePrediction(label domain.Label, elapsed time.Duration) {
	m.predictions.WithLabelValues(strconv.Itoa(int(label))).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// ObserveError records a failed prediction of the given kind.
func (m *Metrics) ObserveError(kind string) {
	m.errors.WithLabelValues(kind).Inc()
}
