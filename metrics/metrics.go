// Package metrics exposes process-wide counters for the bot. The scrape
// endpoint is a plain promhttp handler; everything else in the process only
// sees the Metrics struct.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "convert_bot"

type Metrics struct {
	registry *prometheus.Registry

	CommandsHandled *prometheus.CounterVec
	OrdersCreated   *prometheus.CounterVec
	ExchangeErrors  prometheus.Counter
	RateLimited     prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		CommandsHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_handled_total",
			Help:      "Total number of bot commands handled, by command.",
		}, []string{"command"}),
		OrdersCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total number of order rows created, by status.",
		}, []string{"status"}),
		ExchangeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_errors_total",
			Help:      "Total number of failed exchange API calls.",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total number of commands rejected by the rate limiter.",
		}),
	}
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
