// Package monitoring exposes scheduler and download counters as
// Prometheus metrics, served by the web server at /metrics.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors the daemon updates at runtime.
type Metrics struct {
	executionsTotal *prometheus.CounterVec
	activeSchedules prometheus.Gauge
	tickDuration    prometheus.Histogram
	submittedTotal  prometheus.Counter
	prunedTotal     prometheus.Counter
	attachedClients prometheus.Gauge
}

// New creates the collectors and registers them with reg. The daemon
// passes prometheus.DefaultRegisterer so promhttp picks them up.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grabtube_schedule_executions_total",
				Help: "Schedule executions by result.",
			},
			[]string{"result"},
		),
		activeSchedules: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grabtube_active_schedules",
			Help: "Number of schedules currently active.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grabtube_scheduler_tick_duration_seconds",
			Help:    "Duration of scheduler polling ticks.",
			Buckets: prometheus.DefBuckets,
		}),
		submittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grabtube_downloads_submitted_total",
			Help: "Download jobs submitted to the server.",
		}),
		prunedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grabtube_history_records_pruned_total",
			Help: "Execution history records removed by cleanup.",
		}),
		attachedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grabtube_attached_clients",
			Help: "Clients attached to the event stream.",
		}),
	}
	reg.MustRegister(
		m.executionsTotal,
		m.activeSchedules,
		m.tickDuration,
		m.submittedTotal,
		m.prunedTotal,
		m.attachedClients,
	)
	// Pre-create the result series so rates start from zero.
	m.executionsTotal.WithLabelValues("success")
	m.executionsTotal.WithLabelValues("failure")
	return m
}

func (m *Metrics) ExecutionSucceeded() {
	m.executionsTotal.WithLabelValues("success").Inc()
}

func (m *Metrics) ExecutionFailed() {
	m.executionsTotal.WithLabelValues("failure").Inc()
}

// SetActiveSchedules records the current active schedule count, taken
// from storage after each tick.
func (m *Metrics) SetActiveSchedules(n int) {
	m.activeSchedules.Set(float64(n))
}

func (m *Metrics) ObserveTick(seconds float64) {
	m.tickDuration.Observe(seconds)
}

func (m *Metrics) DownloadSubmitted() {
	m.submittedTotal.Inc()
}

func (m *Metrics) RecordsPruned(n int64) {
	m.prunedTotal.Add(float64(n))
}

func (m *Metrics) SetAttachedClients(n int) {
	m.attachedClients.Set(float64(n))
}
