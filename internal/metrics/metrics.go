// Package metrics holds the Prometheus collectors for the server and the sync adapter.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hlb"

// Registry is private to the application so tests can create handlers
// without touching the global default registry.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// HTTP metrics
	HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Business metrics
	ReflectionsCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reflections_created_total",
		Help:      "Total number of reflections created",
	})

	ReactionsToggled = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reactions_toggled_total",
		Help:      "Reaction toggles by kind and direction",
	}, []string{"kind", "direction"})

	FlagsToggled = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "follow_up_flags_toggled_total",
		Help:      "Total number of follow-up flag toggles",
	})

	// Sync adapter transitions
	SyncOperations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_operations_total",
		Help:      "Sync adapter operation transitions by op and state",
	}, []string{"op", "state"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
