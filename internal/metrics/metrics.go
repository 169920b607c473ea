// Package metrics exposes Prometheus collectors for the fleet daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	stageTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet_fleet",
			Subsystem: "stages",
			Name:      "transitions_total",
			Help:      "Total number of record status transitions, by target stage.",
		},
		[]string{"stage"},
	)

	transfersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet_fleet",
			Subsystem: "chain",
			Name:      "transfers_submitted_total",
			Help:      "Total number of transfer submissions, by direction.",
		},
		[]string{"direction"},
	)

	gateWaits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet_fleet",
			Subsystem: "gate",
			Name:      "waits_total",
			Help:      "Total number of gate checks that did not pass, by reason.",
		},
		[]string{"reason"},
	)

	refundFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wallet_fleet",
			Subsystem: "stages",
			Name:      "refund_failures_total",
			Help:      "Total number of failed refund tasks.",
		},
	)

	fleetSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wallet_fleet",
			Subsystem: "fleet",
			Name:      "records",
			Help:      "Number of fleet records by status.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		stageTransitions,
		transfersSubmitted,
		gateWaits,
		refundFailures,
		fleetSize,
	)
}

// RecordTransition counts one status advance into the named stage.
func RecordTransition(stage string) {
	stageTransitions.WithLabelValues(stage).Inc()
}

// RecordTransfer counts one transfer submission. Direction is "fund" or
// "refund".
func RecordTransfer(direction string) {
	transfersSubmitted.WithLabelValues(direction).Inc()
}

// RecordGateWait counts one failed gate evaluation ("balance" or "fee").
func RecordGateWait(reason string) {
	gateWaits.WithLabelValues(reason).Inc()
}

// RecordRefundFailure counts one failed refund task.
func RecordRefundFailure() {
	refundFailures.Inc()
}

// SetFleetSize records the current number of records in a status.
func SetFleetSize(status string, n int) {
	fleetSize.WithLabelValues(status).Set(float64(n))
}

// Handler returns an HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
