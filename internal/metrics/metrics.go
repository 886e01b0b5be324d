// Package metrics contains the VISCA traffic counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects per-camera traffic counters.
// It implements visca.Stats.
type Metrics struct {
	registry    *prometheus.Registry
	sent        *prometheus.CounterVec
	failed      *prometheus.CounterVec
	reconnected *prometheus.CounterVec
}

// New allocates a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viscactl_packets_sent_total",
			Help: "VISCA packets transmitted.",
		}, []string{"camera"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viscactl_send_errors_total",
			Help: "VISCA packets that could not be transmitted.",
		}, []string{"camera"}),
		reconnected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viscactl_reconnects_total",
			Help: "Sockets recreated because the endpoint drifted.",
		}, []string{"camera"}),
	}

	m.registry.MustRegister(m.sent, m.failed, m.reconnected)

	return m
}

// PacketSent implements visca.Stats.
func (m *Metrics) PacketSent(camera string) {
	m.sent.WithLabelValues(camera).Inc()
}

// SendFailed implements visca.Stats.
func (m *Metrics) SendFailed(camera string) {
	m.failed.WithLabelValues(camera).Inc()
}

// Reconnected implements visca.Stats.
func (m *Metrics) Reconnected(camera string) {
	m.reconnected.WithLabelValues(camera).Inc()
}

// Forget drops the series of a removed camera.
func (m *Metrics) Forget(camera string) {
	m.sent.DeleteLabelValues(camera)
	m.failed.DeleteLabelValues(camera)
	m.reconnected.DeleteLabelValues(camera)
}

// Handler returns the exposition handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the gatherer holding the counters.
func (m *Metrics) Registry() prometheus.Gatherer {
	return m.registry
}
