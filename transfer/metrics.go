package transfer

import "github.com/prometheus/client_golang/prometheus"

var (
	openedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transfer_requests_opened_total",
			Help: "Total number of transfer offers opened",
		},
	)

	resolvedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_requests_resolved_total",
			Help: "Total number of transfer requests reaching a terminal status",
		},
		[]string{"outcome"},
	)

	sagaFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_saga_failures_total",
			Help: "Total number of accept sagas aborted, by failing step",
		},
		[]string{"step"},
	)

	reconciliationTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transfer_reconciliation_items_total",
			Help: "Total number of saga failures left for manual reconciliation",
		},
	)
)

// RegisterMetrics registers the transfer workflow metrics with the service
// registry.
func RegisterMetrics(reg *prometheus.Registry) {
	reg.MustRegister(openedTotal, resolvedTotal, sagaFailuresTotal, reconciliationTotal)
}
