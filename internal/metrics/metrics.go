package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ExpensesRegistered counts expenses accepted against the open box.
	ExpensesRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pettycash_expenses_registered_total",
		Help: "Expenses accepted against the open petty cash box",
	})

	// Consolidations counts consolidation attempts by outcome.
	Consolidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pettycash_consolidations_total",
		Help: "Consolidation attempts by outcome",
	}, []string{"outcome"})
)

const (
	OutcomeConsolidated  = "consolidated"
	OutcomeAlreadyClosed = "already_consolidated"
	OutcomeRenderFailed  = "render_failed"
	OutcomeArchiveFailed = "archive_failed"
	OutcomeConflict      = "conflict"
)

func init() {
	prometheus.MustRegister(ExpensesRegistered, Consolidations)
}
