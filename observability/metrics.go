package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricPrefix = "jackpot"

// Counters for the core money paths. Registered on the default registry and
// served by the /metrics endpoint.
var (
	PaymentEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "_payment_events_total",
		Help: "Payment webhook events processed, labelled by outcome.",
	}, []string{"result"})

	TicketsMintedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "_tickets_minted_total",
		Help: "Lottery tickets minted from completed tips.",
	})

	DrawsExecutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "_draws_executed_total",
		Help: "Draws executed, labelled by trigger (scheduled, manual, forced).",
	}, []string{"trigger"})

	WinnersWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "_winners_written_total",
		Help: "Winner rows written by draws.",
	})

	CommissionsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "_commissions_written_total",
		Help: "Commission ledger rows written, labelled by type.",
	}, []string{"type"})
)

// Label values for PaymentEventsTotal
const (
	ResultMinted    = "minted"
	ResultDuplicate = "duplicate"
	ResultSkipped   = "skipped"
	ResultError     = "error"
)

// Label values for DrawsExecutedTotal
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
	TriggerForced    = "forced"
)
