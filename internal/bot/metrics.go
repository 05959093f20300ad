// Prometheus instrumentation for update handling. Labels stay low-cardinality:
// the event kind (four values) and a coarse outcome class.
package bot

import "github.com/prometheus/client_golang/prometheus"

// Outcome classes recorded per handled update.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"  // permission or validation failure
	OutcomeDuplicate = "duplicate" // uid already indexed
	OutcomeNotFound  = "not_found" // empty lookup/search/random
	OutcomeError     = "error"     // unexpected internal failure
)

var updatesHandled = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_updates_handled_total",
		Help: "Total bot updates handled, by event kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

func init() {
	prometheus.MustRegister(updatesHandled)
}

func observe(kind Kind, outcome string) {
	updatesHandled.WithLabelValues(string(kind), outcome).Inc()
}
