// Package metrics exposes Prometheus instrumentation for the switcher
// daemon. Collection is off until Enable is called, so one-shot CLI
// commands never register collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vpnswitcher"

var (
	enabled bool

	cycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Finished switch cycles by outcome.",
	}, []string{"outcome"})

	cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Duration of switch cycles.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	compliant = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "compliant",
		Help:      "Whether the last evaluation found the host compliant (1) or not (0).",
	})

	probes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reachability_probes_total",
		Help:      "Reachability probes by result.",
	}, []string{"result"})

	activations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tunnel_activations_total",
		Help:      "Tunnel activation attempts by result.",
	}, []string{"result"})

	deactivations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tunnel_deactivations_total",
		Help:      "Tunnel deactivation attempts by result.",
	}, []string{"result"})
)

// Enable registers the collectors. Call once during daemon startup, before
// the exposition service starts; every recording helper is a no-op until
// then.
func Enable() {
	if enabled {
		return
	}
	prometheus.MustRegister(cycles, cycleDuration, compliant, probes, activations, deactivations)
	enabled = true
}

// IsEnabled reports whether metrics collection is active.
func IsEnabled() bool {
	return enabled
}

// ObserveCycle records one finished switch cycle.
func ObserveCycle(outcome string, elapsed time.Duration) {
	if !enabled {
		return
	}
	cycles.WithLabelValues(outcome).Inc()
	cycleDuration.Observe(elapsed.Seconds())
}

// SetCompliant records the latest evaluation verdict.
func SetCompliant(ok bool) {
	if !enabled {
		return
	}
	if ok {
		compliant.Set(1)
	} else {
		compliant.Set(0)
	}
}

// ReachabilityProbe records one reachability probe result.
func ReachabilityProbe(reachable bool) {
	if !enabled {
		return
	}
	if reachable {
		probes.WithLabelValues("reachable").Inc()
	} else {
		probes.WithLabelValues("unreachable").Inc()
	}
}

// TunnelActivation records one tunnel activation attempt.
func TunnelActivation(ok bool) {
	if !enabled {
		return
	}
	activations.WithLabelValues(result(ok)).Inc()
}

// TunnelDeactivation records one tunnel deactivation attempt.
func TunnelDeactivation(ok bool) {
	if !enabled {
		return
	}
	deactivations.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
