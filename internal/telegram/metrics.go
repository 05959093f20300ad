package telegram

import "github.com/prometheus/client_golang/prometheus"

// Update dispositions recorded at the transport boundary.
const (
	dispDispatched  = "dispatched"
	dispIgnored     = "ignored"      // update shape the bot does not handle
	dispDuplicate   = "duplicate"    // redelivery caught by the dedup table
	dispRateLimited = "rate_limited" // sender bucket exhausted
)

var (
	updatesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Inbound Telegram updates by disposition.",
		},
		[]string{"disposition"},
	)

	sendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_send_failures_total",
			Help: "Outbound Telegram API calls that returned an error.",
		},
	)
)

func init() {
	prometheus.MustRegister(updatesReceived, sendFailures)
}
