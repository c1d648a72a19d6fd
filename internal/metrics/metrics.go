package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	serviceStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ollamactl",
			Subsystem: "service",
			Name:      "starts_total",
			Help:      "Number of successful service starts.",
		},
	)
	serviceStops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ollamactl",
			Subsystem: "service",
			Name:      "stops_total",
			Help:      "Number of confirmed service stops.",
		},
	)
	healthChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ollamactl",
			Subsystem: "service",
			Name:      "health_checks_total",
			Help:      "Number of health probes by result.",
		}, []string{"result"},
	)
	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ollamactl",
			Subsystem: "service",
			Name:      "state_transitions_total",
			Help:      "Number of observed service state transitions.",
		}, []string{"from", "to"},
	)
	healthWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ollamactl",
			Subsystem: "service",
			Name:      "health_wait_duration_seconds",
			Help:      "Time spent waiting for the service to answer health checks.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	currentState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ollamactl",
			Subsystem: "service",
			Name:      "current_state",
			Help:      "Current service state (1 = active state, 0 = inactive).",
		}, []string{"state"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{serviceStarts, serviceStops, healthChecks, healthWaitDuration, stateTransitions, currentState}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler serving Prometheus metrics from the DefaultGatherer.
// The caller wires the route and starts the server.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncStart() {
	if regOK.Load() {
		serviceStarts.Inc()
	}
}

func IncStop() {
	if regOK.Load() {
		serviceStops.Inc()
	}
}

func ObserveHealthCheck(healthy bool) {
	if regOK.Load() {
		result := "unhealthy"
		if healthy {
			result = "healthy"
		}
		healthChecks.WithLabelValues(result).Inc()
	}
}

func ObserveHealthWait(seconds float64) {
	if regOK.Load() {
		healthWaitDuration.Observe(seconds)
	}
}

func StateTransition(from, to string) {
	if regOK.Load() {
		stateTransitions.WithLabelValues(from, to).Inc()
		currentState.WithLabelValues(from).Set(0)
		currentState.WithLabelValues(to).Set(1)
	}
}
