package observability

import (
	"context"
	"errors"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by engine hooks.
type Metrics struct {
	Discovered  *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	Actions     *prometheus.CounterVec
	Errors      *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Discovered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_dependencies_discovered_total",
				Help: "Total number of dependencies added to closures",
			},
			[]string{"type", "required"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_install_transitions_total",
				Help: "Total number of installer state transitions",
			},
			[]string{"type", "state"},
		),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_install_actions_total",
				Help: "Total number of transaction log entries written",
			},
			[]string{"type", "action"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_install_errors_total",
				Help: "Total number of objects whose installation failed",
			},
			[]string{"type", "recoverable"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transit_install_duration_seconds",
				Help:    "Duration of single object installations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Discovered, m.Transitions, m.Actions, m.Errors, m.Duration}
}

// Hooks returns engine hooks that record into m.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnDiscover: func(ctx context.Context, e *domain.DiscoverEvent) {
			m.Discovered.WithLabelValues(e.Dependency.Type, boolLabel(e.Required)).Inc()
		},
		OnInstallState: func(ctx context.Context, e *domain.InstallEvent) {
			m.Transitions.WithLabelValues(e.Dependency.Type, string(e.State)).Inc()
			if e.State == domain.StateLogged {
				m.Actions.WithLabelValues(e.Dependency.Type, string(e.Action)).Inc()
				m.Duration.WithLabelValues(e.Dependency.Type).Observe(e.Duration.Seconds())
			}
		},
		OnInstallError: func(ctx context.Context, e *domain.InstallEvent) {
			m.Errors.WithLabelValues(e.Dependency.Type, boolLabel(domain.IsRecoverable(e.Err))).Inc()
		},
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
