package observability

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of a strata process.
type Metrics struct {
	events   *prometheus.CounterVec
	commands *prometheus.HistogramVec
	failures *prometheus.CounterVec
	nodes    *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if they are already registered, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_structure_events_total",
				Help: "Structural notifications emitted by document trees",
			},
			[]string{"event"},
		),
		commands: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "strata_command_duration_seconds",
				Help:    "Duration of commands applied, undone or redone",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
			[]string{"phase", "command"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_command_failures_total",
				Help: "Commands that could not be applied",
			},
			[]string{"phase"},
		),
		nodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "strata_document_nodes",
				Help: "Nodes attached to the tree of each open document, root included",
			},
			[]string{"document"},
		),
	}
	reg.MustRegister(m.events, m.commands, m.failures, m.nodes)
	return m
}

// Listener returns a GraphListener counting notifications by type.
func (m *Metrics) Listener() ports.GraphListener {
	return metricsListener{m.events}
}

// Hooks returns lifecycle hooks timing every command.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	observe := func(phase string) func(context.Context, *domain.CommandEvent) {
		return func(_ context.Context, e *domain.CommandEvent) {
			if e.IsError {
				m.failures.WithLabelValues(phase).Inc()
				return
			}
			m.commands.WithLabelValues(phase, e.Command).Observe(e.Duration.Seconds())
		}
	}
	return domain.LifecycleHooks{
		OnCommand: observe("do"),
		OnUndo:    observe("undo"),
		OnRedo:    observe("redo"),
	}
}

// ObserveNodes records how many nodes are attached to a document tree.
// Detached nodes kept alive for undo are not counted.
func (m *Metrics) ObserveNodes(document string, n int) {
	m.nodes.WithLabelValues(document).Set(float64(n))
}

// Forget drops the gauge of a closed document.
func (m *Metrics) Forget(document string) {
	m.nodes.DeleteLabelValues(document)
}

type metricsListener struct {
	events *prometheus.CounterVec
}

func (l metricsListener) inc(t domain.EventType) {
	l.events.WithLabelValues(string(t)).Inc()
}

func (l metricsListener) AboutToAdd(domain.NodeID, int)       { l.inc(domain.EventAboutToAdd) }
func (l metricsListener) Added(domain.NodeID, int)            { l.inc(domain.EventAdded) }
func (l metricsListener) AboutToRemove(domain.NodeID, int)    { l.inc(domain.EventAboutToRemove) }
func (l metricsListener) Removed(domain.NodeID, int)          { l.inc(domain.EventRemoved) }
func (l metricsListener) AboutToMove(domain.NodeID, int, int) { l.inc(domain.EventAboutToMove) }
func (l metricsListener) Moved(domain.NodeID, int, int)       { l.inc(domain.EventMoved) }
