package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the desk's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	dispatches  *prometheus.CounterVec
	transitions *prometheus.CounterVec
	tickets     *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketflow_dispatch_total",
				Help: "Total number of processed events by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketflow_session_transitions_total",
				Help: "Session state transitions",
			},
			[]string{"from", "to"},
		),
		tickets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketflow_tickets_total",
				Help: "Tickets created and deleted through the desk",
			},
			[]string{"event"},
		),
	}
	m.registry.MustRegister(m.dispatches, m.transitions, m.tickets)
	return m
}

// Registry exposes the registry for additional collectors and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			m.dispatches.WithLabelValues(string(e.Action), outcome(e)).Inc()
			if e.From != e.To {
				m.transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
			}
		},
		OnTicketCreated: func(context.Context, *domain.TicketEvent) {
			m.tickets.WithLabelValues("created").Inc()
		},
		OnTicketDeleted: func(context.Context, *domain.TicketEvent) {
			m.tickets.WithLabelValues("deleted").Inc()
		},
	}
}

func outcome(e *domain.DispatchEvent) string {
	switch {
	case e.Err == nil:
		return "ok"
	case domain.IsValidation(e.Err):
		return "invalid"
	case domain.IsStorage(e.Err):
		return "storage_error"
	default:
		return "error"
	}
}
