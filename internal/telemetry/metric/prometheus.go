package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/curvectl/internal/core/domain"
)

const namespace = "curvectl"

// Registry holds the metrics of one CLI run. It implements the command
// pipeline's stage recorder.
type Registry struct {
	reg *prometheus.Registry

	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Stages          *prometheus.CounterVec
	RPCRequests     *prometheus.CounterVec
}

// NewRegistry creates a Registry with all curvectl metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands run, by outcome.",
		}, []string{"command", "outcome"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Wall time from parse to terminal stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"command"}),
		Stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_reached_total",
			Help:      "Pipeline stages reached, by command.",
		}, []string{"command", "stage"}),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC calls sent to the cluster, by method and result.",
		}, []string{"method", "result"}),
	}
	r.reg.MustRegister(r.CommandsTotal, r.CommandDuration, r.Stages, r.RPCRequests)
	return r
}

// Gatherer exposes the underlying registry for pushing and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// StageReached records that command passed through stage.
func (r *Registry) StageReached(command string, stage domain.Stage) {
	r.Stages.WithLabelValues(command, stage.String()).Inc()
}

// CommandFinished records the terminal outcome of command.
func (r *Registry) CommandFinished(command string, outcome string, elapsed time.Duration) {
	r.CommandsTotal.WithLabelValues(command, outcome).Inc()
	r.CommandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// RPCCall records one JSON-RPC round trip. result is "ok" or "error".
func (r *Registry) RPCCall(method, result string) {
	r.RPCRequests.WithLabelValues(method, result).Inc()
}
