package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdr_tool_calls_total",
			Help: "Total number of tool calls executed for the model",
		},
		[]string{"tool"},
	)

	LeadsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdr_leads_submitted_total",
			Help: "Total number of lead records stored, by completeness",
		},
		[]string{"complete"},
	)

	LeadStoreAppendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdr_lead_store_append_failures_total",
			Help: "Total number of failed lead store appends",
		},
		[]string{"backend"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sdr_active_sessions",
			Help: "Number of conversations currently open",
		},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sdr_turn_duration_seconds",
			Help:    "Duration of one dialogue turn including tool rounds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)

func ObserveSubmission(complete bool) {
	LeadsSubmitted.WithLabelValues(strconv.FormatBool(complete)).Inc()
}

func ObserveTurn(started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	TurnDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}
