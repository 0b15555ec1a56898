package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics owns the Prometheus registry and the instruments the engine
// and the connection server report into. A nil *Metrics is valid and
// records nothing, so tests and metrics-disabled deployments skip the
// registry entirely.
type Metrics struct {
	registry *prometheus.Registry

	commands    *prometheus.CounterVec
	connections prometheus.Counter
	clients     prometheus.Gauge

	server *http.Server
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ember_commands_processed_total",
			Help: "Commands dispatched, by command name.",
		}, []string{"command"}),
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ember_connections_accepted_total",
			Help: "Client connections accepted.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ember_connected_clients",
			Help: "Currently connected clients.",
		}),
	}

	m.registry.MustRegister(m.commands, m.connections, m.clients)
	return m
}

// CommandProcessed counts one dispatched command
func (m *Metrics) CommandProcessed(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}

// ConnectionAccepted counts one accepted connection
func (m *Metrics) ConnectionAccepted() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

// SetConnectedClients records the current client count
func (m *Metrics) SetConnectedClients(n int64) {
	if m == nil {
		return
	}
	m.clients.Set(float64(n))
}

// Serve exposes /metrics on addr until Close is called
func (m *Metrics) Serve(addr string, log *zap.Logger) {
	if m == nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	m.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics listener failed", zap.Error(err))
		}
	}()
}

// Close stops the metrics listener if one was started
func (m *Metrics) Close() error {
	if m == nil || m.server == nil {
		return nil
	}
	return m.server.Close()
}
