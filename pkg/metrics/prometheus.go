package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	reportsTotal  *prometheus.CounterVec
	warningsTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastClose     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		reportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perfscope_reports_total",
				Help: "Total number of metrics reports produced",
			},
			[]string{"ticker"},
		),
		warningsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perfscope_warnings_total",
				Help: "Total number of per-ticker warnings by kind",
			},
			[]string{"kind"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perfscope_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "perfscope_last_close",
				Help: "Last close seen for a ticker",
			},
			[]string{"ticker"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "perfscope_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
	}
}

// RecordReport counts a successfully analyzed ticker.
func (r *Recorder) RecordReport(ticker string) {
	r.reportsTotal.WithLabelValues(ticker).Inc()
}

// RecordWarning counts a skipped ticker by warning kind.
func (r *Recorder) RecordWarning(kind string) {
	r.warningsTotal.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last close for a ticker.
func (r *Recorder) RecordLastPrice(ticker string, price float64) {
	r.lastClose.WithLabelValues(ticker).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
