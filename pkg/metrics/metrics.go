package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PercentUsed tracks the latest percent-used value per limit window.
	PercentUsed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "claudebar_percent_used",
			Help: "Latest percent-used value for a limit window",
		},
		[]string{"window"},
	)

	// PollsTotal counts poll attempts by outcome ("ok" or the error kind).
	PollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claudebar_polls_total",
			Help: "Total poll attempts by outcome",
		},
		[]string{"outcome"},
	)

	// LastPollTimestamp records the unix time of the last successful poll.
	LastPollTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "claudebar_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful poll",
		},
	)
)

func init() {
	prometheus.MustRegister(PercentUsed)
	prometheus.MustRegister(PollsTotal)
	prometheus.MustRegister(LastPollTimestamp)
}

// Handler returns the /metrics handler for the optional listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
