// internal/service/orchestrator.go
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appErrors "github.com/instabids/outreach-backend/internal/errors"
	"github.com/instabids/outreach-backend/internal/metrics"
	"github.com/instabids/outreach-backend/internal/model"
	"github.com/instabids/outreach-backend/internal/qualification"
	"github.com/instabids/outreach-backend/internal/queue"
	"github.com/instabids/outreach-backend/internal/repository"
	"github.com/instabids/outreach-backend/internal/strategy"
	"github.com/instabids/outreach-backend/internal/urgency"
)

// CampaignOrchestrator is the top-level controller: it classifies urgency,
// computes the tiered strategy, selects concrete contractors through the
// qualification gate, and persists the campaign with its pre-scheduled
// check-ins.
type CampaignOrchestrator struct {
	Campaigns  repository.CampaignRepositoryInterface
	CheckIns   repository.CheckInRepositoryInterface
	Pool       repository.ContractorPoolSource
	BidCards   repository.BidCardStore
	Attempts   repository.ContactAttemptRepositoryInterface
	Outreach   OutreachChannel
	Queue      queue.Queue
	Classifier *urgency.Classifier
	Calculator *strategy.Calculator
	Gate       *qualification.Gate
	Log        zerolog.Logger

	// Now is injectable for tests.
	Now func() time.Time
}

func (o *CampaignOrchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// CreateCampaignRequest is the validated input for campaign creation.
type CreateCampaignRequest struct {
	BidCardID            string   `json:"bid_card_id"`
	ProjectType          string   `json:"project_type"`
	Location             string   `json:"location"`
	RadiusMiles          int      `json:"radius_miles"`
	BidsNeeded           int      `json:"bids_needed"`
	TimelineHours        float64  `json:"timeline_hours"`
	Requirements         string   `json:"requirements"`
	Concerns             []string `json:"concerns"`
	Urgency              string   `json:"urgency,omitempty"`
	TimelineStart        string   `json:"timeline_start,omitempty"`
	TimelineEnd          string   `json:"timeline_end,omitempty"`
	GroupBiddingProjects []string `json:"group_bidding_projects,omitempty"`
}

type CreateCampaignResult struct {
	CampaignID string                      `json:"campaign_id"`
	Urgency    model.UrgencyLevel          `json:"urgency"`
	Strategy   model.OutreachStrategy      `json:"strategy"`
	CheckIns   []model.CheckIn             `json:"check_ins"`
	Selections []model.ContractorSelection `json:"contractor_selections"`
}

func (r *CreateCampaignRequest) validate() error {
	if r.BidsNeeded <= 0 {
		return &appErrors.ErrInvalidRequest{Field: "bids_needed", Reason: "must be positive"}
	}
	if strings.TrimSpace(r.ProjectType) == "" {
		return &appErrors.ErrInvalidRequest{Field: "project_type", Reason: "is required"}
	}
	if strings.TrimSpace(r.Location) == "" {
		return &appErrors.ErrInvalidRequest{Field: "location", Reason: "is required"}
	}
	if r.TimelineHours <= 0 {
		return &appErrors.ErrInvalidRequest{Field: "timeline_hours", Reason: "must be positive"}
	}
	if r.Urgency != "" && !model.UrgencyLevel(r.Urgency).IsClassifiable() {
		return &appErrors.ErrInvalidRequest{Field: "urgency", Reason: fmt.Sprintf("unknown level %q", r.Urgency)}
	}
	return nil
}

// CreateIntelligentCampaign builds and persists a campaign. Fails with the
// campaign uncreated when selection yields zero contractors across all tiers.
func (o *CampaignOrchestrator) CreateIntelligentCampaign(req CreateCampaignRequest) (*CreateCampaignResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	signal := model.ProjectSignal{
		ProjectType:   req.ProjectType,
		Requirements:  req.Requirements,
		Concerns:      req.Concerns,
		Urgency:       req.Urgency,
		TimelineStart: req.TimelineStart,
		TimelineEnd:   req.TimelineEnd,
	}
	projectUrgency := o.Classifier.Assess(signal)

	avail, err := o.Pool.GetAvailability(req.ProjectType, req.Location, req.RadiusMiles)
	if err != nil {
		return nil, &appErrors.ErrUpstreamUnavailable{Op: "contractor availability", Err: err}
	}

	strat := o.Calculator.Calculate(strategy.Input{
		BidsNeeded:           req.BidsNeeded,
		TimelineHours:        req.TimelineHours,
		Availability:         avail,
		ProjectType:          req.ProjectType,
		GroupBiddingProjects: req.GroupBiddingProjects,
	})
	metrics.StrategyConfidence.Observe(strat.ConfidenceScore)

	selected, err := selectForStrategy(o.Pool, o.Gate, &strat, req.ProjectType, req.Location, nil, false, o.Log)
	if err != nil {
		return nil, &appErrors.ErrUpstreamUnavailable{Op: "contractor selection", Err: err}
	}
	if len(selected.Selections) == 0 {
		o.Log.Warn().Str("project_type", req.ProjectType).Str("location", req.Location).
			Int("tier1", avail.Tier1Count).Int("tier2", avail.Tier2Count).Int("tier3", avail.Tier3Count).
			Msg("no contractors available, campaign not created")
		return nil, &appErrors.ErrNoContractorsAvailable{ProjectType: req.ProjectType, Location: req.Location}
	}

	campaignID := uuid.NewString()
	campaign := &model.Campaign{
		ID:             campaignID,
		BidCardID:      req.BidCardID,
		ProjectType:    req.ProjectType,
		Location:       req.Location,
		RadiusMiles:    req.RadiusMiles,
		BidsNeeded:     strat.BidsNeeded,
		TimelineHours:  strat.TimelineHours,
		ProjectUrgency: projectUrgency,
		Strategy:       strat,
		Status:         model.CampaignCreated,
	}

	checkIns := make([]model.CheckIn, 0, len(strat.CheckIns))
	for i, point := range strat.CheckIns {
		checkIns = append(checkIns, model.CheckIn{
			ID:            uuid.NewString(),
			CampaignID:    campaignID,
			CheckInNumber: i + 1,
			ScheduledAt:   point.At,
			ExpectedBids:  point.ExpectedBids,
		})
	}

	if err := o.Campaigns.Create(campaign); err != nil {
		return nil, err
	}
	if err := o.Campaigns.AddSelections(campaignID, selected.Selections); err != nil {
		return nil, err
	}
	if err := o.CheckIns.CreateCheckIns(checkIns); err != nil {
		return nil, err
	}

	metrics.CampaignsCreated.Inc()
	o.Log.Info().Str("campaign_id", campaignID).
		Str("urgency", string(projectUrgency)).
		Int("to_contact", strat.TotalToContact).
		Float64("expected_responses", strat.ExpectedTotalResponses).
		Float64("confidence", strat.ConfidenceScore).
		Int("check_ins", len(checkIns)).
		Msg("campaign created")

	return &CreateCampaignResult{
		CampaignID: campaignID,
		Urgency:    projectUrgency,
		Strategy:   strat,
		CheckIns:   checkIns,
		Selections: selected.Selections,
	}, nil
}

// ExecuteCampaignWithMonitoring moves the campaign to running and hands the
// outreach work to the background queue. Does not block the caller.
func (o *CampaignOrchestrator) ExecuteCampaignWithMonitoring(campaignID string) error {
	campaign, err := o.Campaigns.GetByID(campaignID)
	if err != nil {
		return err
	}

	if campaign.Status == model.CampaignCreated {
		if err := o.Campaigns.UpdateStatus(campaignID, model.CampaignCreated, model.CampaignRunning); err != nil {
			return err
		}
		if err := o.Campaigns.MarkStarted(campaignID, o.now()); err != nil {
			return err
		}
	}

	if err := o.Queue.Publish(queue.TopicCampaignExecutions, campaignID); err != nil {
		return &appErrors.ErrUpstreamUnavailable{Op: "queue publish", Err: err}
	}
	return nil
}

// RunOutreach contacts every selected contractor for a campaign over the
// strategy's primary channel. Individual contact failures are logged and
// skipped, never fatal. Safe to re-run: contractors already holding a contact
// attempt for the campaign are not contacted again.
func (o *CampaignOrchestrator) RunOutreach(campaignID string) error {
	campaign, err := o.Campaigns.GetByID(campaignID)
	if err != nil {
		return err
	}
	selections, err := o.Campaigns.GetSelections(campaignID)
	if err != nil {
		return err
	}

	channel := "email"
	if len(campaign.Strategy.Channels) > 0 {
		channel = campaign.Strategy.Channels[0]
	}
	message := fmt.Sprintf("New %s project in %s is accepting bids. Respond to claim your spot.",
		campaign.ProjectType, campaign.Location)

	contacted := 0
	for _, sel := range selections {
		contractor, err := o.Pool.GetByID(sel.ContractorID)
		if err != nil {
			o.Log.Warn().Err(err).Str("contractor_id", sel.ContractorID).Msg("skipping contact, contractor fetch failed")
			continue
		}
		attemptID, err := o.Outreach.Contact(campaignID, contractor, channel, message)
		if err != nil {
			o.Log.Warn().Err(err).Str("contractor_id", sel.ContractorID).Msg("contact attempt failed")
			continue
		}
		if attemptID == "" {
			continue // contacted on an earlier pass
		}
		contacted++
	}

	o.Log.Info().Str("campaign_id", campaignID).Int("contacted", contacted).
		Int("selections", len(selections)).Msg("outreach pass complete")
	return nil
}

// CampaignStatusResult is the read-only performance view of a campaign.
type CampaignStatusResult struct {
	CampaignID           string               `json:"campaign_id"`
	Status               model.CampaignStatus `json:"status"`
	Escalated            bool                 `json:"escalated"`
	Urgency              model.UrgencyLevel   `json:"urgency"`
	BidsNeeded           int                  `json:"bids_needed"`
	BidsReceived         int                  `json:"bids_received"`
	CompletionPercentage float64              `json:"completion_percentage"`
	ConfidenceScore      float64              `json:"confidence_score"`
	TotalToContact       int                  `json:"total_to_contact"`
	CheckInsTotal        int                  `json:"check_ins_total"`
	CheckInsCompleted    int                  `json:"check_ins_completed"`
	NextCheckInAt        *time.Time           `json:"next_check_in_at,omitempty"`
	ContactStats         map[string]int       `json:"contact_stats"`
}

// GetCampaignStatus computes campaign progress. Read-only: never mutates
// state.
func (o *CampaignOrchestrator) GetCampaignStatus(campaignID string) (*CampaignStatusResult, error) {
	campaign, err := o.Campaigns.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	bids, err := o.BidCards.GetActualBidCount(campaign.BidCardID)
	if err != nil {
		return nil, &appErrors.ErrUpstreamUnavailable{Op: "bid count", Err: err}
	}

	checkIns, err := o.CheckIns.ListByCampaign(campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := o.Attempts.StatsByCampaign(campaignID)
	if err != nil {
		return nil, err
	}

	completed := 0
	var nextAt *time.Time
	for i := range checkIns {
		if checkIns[i].Completed() {
			completed++
		} else if nextAt == nil {
			at := checkIns[i].ScheduledAt
			nextAt = &at
		}
	}

	completion := 0.0
	if campaign.BidsNeeded > 0 {
		completion = float64(bids) / float64(campaign.BidsNeeded) * 100
		if completion > 100 {
			completion = 100
		}
	}

	return &CampaignStatusResult{
		CampaignID:           campaign.ID,
		Status:               campaign.Status,
		Escalated:            campaign.Escalated,
		Urgency:              campaign.ProjectUrgency,
		BidsNeeded:           campaign.BidsNeeded,
		BidsReceived:         bids,
		CompletionPercentage: completion,
		ConfidenceScore:      campaign.Strategy.ConfidenceScore,
		TotalToContact:       campaign.Strategy.TotalToContact,
		CheckInsTotal:        len(checkIns),
		CheckInsCompleted:    completed,
		NextCheckInAt:        nextAt,
		ContactStats:         stats,
	}, nil
}

// StartExecutionSubscriber wires the orchestrator's outreach pass to the
// in-process queue. The RabbitMQ worker covers the same topic in multi-binary
// deployments.
func StartExecutionSubscriber(q queue.Queue, o *CampaignOrchestrator) {
	err := q.Subscribe(queue.TopicCampaignExecutions, func(payload any) error {
		campaignID, ok := payload.(string)
		if !ok {
			o.Log.Warn().Interface("payload", payload).Msg("invalid execution payload, expected campaign ID")
			return nil // no retry
		}
		return o.RunOutreach(campaignID)
	})
	if err != nil {
		o.Log.Error().Err(err).Msg("failed to start execution subscriber")
	}
}
