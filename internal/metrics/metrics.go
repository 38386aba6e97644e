// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CampaignsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outreach_campaigns_created_total",
		Help: "Campaigns created through the orchestrator.",
	})

	CheckInsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outreach_check_ins_completed_total",
		Help: "Campaign check-ins completed.",
	})

	EscalationsTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outreach_escalations_total",
		Help: "Check-ins that triggered an escalation.",
	})

	ContractorsContacted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outreach_contractors_contacted_total",
		Help: "Contractor contact attempts by channel and outcome.",
	}, []string{"channel", "status"})

	StrategyConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "outreach_strategy_confidence",
		Help:    "Confidence scores of computed strategies.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)
