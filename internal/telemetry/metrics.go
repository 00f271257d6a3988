package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the dispatch scheduling collectors. A nil *Metrics is valid
// and records nothing, so wiring stays optional in tests.
type Metrics struct {
	conflictChecks    prometheus.Counter
	conflictsDetected prometheus.Counter
	transitions       *prometheus.CounterVec
	ledgerEntries     prometheus.Gauge
}

// New registers the dispatch collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		conflictChecks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "conflict_checks_total",
			Help:      "Number of booking conflict checks performed.",
		}),
		conflictsDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "conflicts_detected_total",
			Help:      "Number of conflict checks that found at least one collision.",
		}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "event_transitions_total",
			Help:      "Event lifecycle transitions by operation.",
		}, []string{"transition"}),
		ledgerEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "dispatch",
			Name:      "ledger_entries",
			Help:      "Committed bookings currently held across all resource ledgers.",
		}),
	}
}

// RecordConflictCheck counts one conflict check and its outcome.
func (m *Metrics) RecordConflictCheck(conflictFound bool) {
	if m == nil {
		return
	}
	m.conflictChecks.Inc()
	if conflictFound {
		m.conflictsDetected.Inc()
	}
}

// RecordTransition counts one lifecycle operation.
func (m *Metrics) RecordTransition(name string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(name).Inc()
}

// SetLedgerEntries tracks the live booking count.
func (m *Metrics) SetLedgerEntries(count int) {
	if m == nil {
		return
	}
	m.ledgerEntries.Set(float64(count))
}
