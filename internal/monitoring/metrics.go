// Package monitoring exposes prometheus collectors for both apps.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// TransactionsTotal counts ledger audit entries by type.
	TransactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "anuinv_transactions_total",
		Help: "Ledger transactions appended, by type.",
	}, []string{"type"})

	// ActiveBatches tracks occupied production slots.
	ActiveBatches = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "anuinv_active_batches",
		Help: "Production batches currently occupying a slot.",
	})

	// LowStockItems tracks items at or below their reorder threshold.
	LowStockItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "anuinv_low_stock_items",
		Help: "Inventory items at or below their minimum stock level.",
	})

	// ExamsStarted counts exam attempts entered.
	ExamsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exitprep_exams_started_total",
		Help: "Exam attempts started, including resumed sessions.",
	})

	// ExamsSubmitted counts scored submissions.
	ExamsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exitprep_exams_submitted_total",
		Help: "Exam attempts submitted and scored.",
	})

	// GenerationFailures counts content-generation calls that fell
	// back to placeholder output.
	GenerationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exitprep_generation_failures_total",
		Help: "Question or tip generations that failed upstream.",
	})
)

func init() {
	prometheus.MustRegister(
		TransactionsTotal,
		ActiveBatches,
		LowStockItems,
		ExamsStarted,
		ExamsSubmitted,
		GenerationFailures,
	)
}
