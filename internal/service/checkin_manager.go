// internal/service/checkin_manager.go
package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appErrors "github.com/instabids/outreach-backend/internal/errors"
	"github.com/instabids/outreach-backend/internal/metrics"
	"github.com/instabids/outreach-backend/internal/model"
	"github.com/instabids/outreach-backend/internal/qualification"
	"github.com/instabids/outreach-backend/internal/repository"
	"github.com/instabids/outreach-backend/internal/strategy"
)

// DefaultOnTrackThreshold: a campaign at 80% of its expected bids is still
// considered on track.
const DefaultOnTrackThreshold = 0.8

// CheckInStatus is the outcome of one check-in evaluation.
type CheckInStatus struct {
	CampaignID       string   `json:"campaign_id"`
	CheckInNumber    int      `json:"check_in_number"`
	BidsExpected     int      `json:"bids_expected"`
	BidsReceived     int      `json:"bids_received"`
	PerformanceRatio float64  `json:"performance_ratio"`
	OnTrack          bool     `json:"on_track"`
	EscalationNeeded bool     `json:"escalation_needed"`
	ActionsTaken     []string `json:"actions_taken"`
	Recommendations  []string `json:"recommendations"`
	// Replayed marks a stored result returned for a retried call.
	Replayed bool `json:"replayed,omitempty"`
}

// CheckInManager performs scheduled re-evaluations: it compares actual
// against expected bids at each checkpoint and escalates under-performing
// campaigns by selecting additional contractors for the remaining window.
type CheckInManager struct {
	Campaigns  repository.CampaignRepositoryInterface
	CheckIns   repository.CheckInRepositoryInterface
	Pool       repository.ContractorPoolSource
	BidCards   repository.BidCardStore
	Outreach   OutreachChannel
	Calculator *strategy.Calculator
	Gate       *qualification.Gate
	Log        zerolog.Logger

	// OnTrackThreshold overrides DefaultOnTrackThreshold when > 0.
	OnTrackThreshold float64
	// Now is injectable for tests.
	Now func() time.Time
}

func (m *CheckInManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *CheckInManager) threshold() float64 {
	if m.OnTrackThreshold > 0 {
		return m.OnTrackThreshold
	}
	return DefaultOnTrackThreshold
}

// PerformCheckIn executes the next due check-in for a campaign, in scheduled
// order. A retried call after completion is a no-op returning the stored
// result; duplicate escalations are never produced. Returns
// ErrCheckInNotFound when nothing is pending.
func (m *CheckInManager) PerformCheckIn(campaignID string) (*CheckInStatus, error) {
	campaign, err := m.Campaigns.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	next, err := m.CheckIns.NextPending(campaignID)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, appErrors.NewCheckInNotFound(campaignID)
	}

	now := m.now()
	if next.ScheduledAt.After(now) {
		// Retry jitter: the due check-in already completed, replay its result
		// rather than executing a future one early.
		last, err := m.CheckIns.LatestCompleted(campaignID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			return m.storedStatus(campaign, last), nil
		}
		return nil, &appErrors.ErrCheckInNotDue{CampaignID: campaignID}
	}

	actual, err := m.BidCards.GetActualBidCount(campaign.BidCardID)
	if err != nil {
		return nil, &appErrors.ErrUpstreamUnavailable{Op: "bid count", Err: err}
	}

	ratio := performanceRatio(actual, next.ExpectedBids)
	onTrack := ratio >= m.threshold()
	escalationNeeded := !onTrack

	// Claim the check-in before any side effects. The conditional completion
	// is the lock: of two overlapping callers only the winner escalates, the
	// loser replays the stored result.
	completed, err := m.CheckIns.Complete(next.ID, actual, onTrack, escalationNeeded, "")
	if err != nil {
		return nil, err
	}
	if !completed {
		stored, err := m.findCheckIn(campaignID, next.ID)
		if err != nil {
			return nil, err
		}
		if stored == nil || !stored.Completed() {
			return nil, &appErrors.ErrConcurrencyConflict{Op: fmt.Sprintf("check-in %s completion", next.ID)}
		}
		return m.storedStatus(campaign, stored), nil
	}

	actions := []string{}
	recommendations := []string{}
	if escalationNeeded {
		actions, recommendations = m.escalate(campaign, actual, now)
		if len(actions) > 0 {
			if err := m.CheckIns.RecordActions(next.ID, strings.Join(actions, "; ")); err != nil {
				m.Log.Error().Err(err).Str("check_in_id", next.ID).Msg("failed to record escalation actions")
			}
		}
	}
	if onTrack && actual < campaign.BidsNeeded {
		recommendations = append(recommendations, "on pace, no action needed")
	}

	metrics.CheckInsCompleted.Inc()
	m.Log.Info().Str("campaign_id", campaignID).Int("check_in", next.CheckInNumber).
		Int("expected", next.ExpectedBids).Int("actual", actual).
		Float64("ratio", ratio).Bool("on_track", onTrack).
		Msg("check-in completed")

	m.maybeFinishCampaign(campaign, actual, now)

	return &CheckInStatus{
		CampaignID:       campaignID,
		CheckInNumber:    next.CheckInNumber,
		BidsExpected:     next.ExpectedBids,
		BidsReceived:     actual,
		PerformanceRatio: ratio,
		OnTrack:          onTrack,
		EscalationNeeded: escalationNeeded,
		ActionsTaken:     actions,
		Recommendations:  recommendations,
	}, nil
}

// escalate computes an additive delta strategy for the remaining window and
// contacts additional contractors, excluding everyone already selected.
// Previously contacted counts are never reduced.
func (m *CheckInManager) escalate(campaign *model.Campaign, actual int, now time.Time) ([]string, []string) {
	actions := []string{}
	recommendations := []string{}

	stillNeeded := campaign.BidsNeeded - actual
	if stillNeeded < 1 {
		stillNeeded = 1
	}
	remainingHours := campaign.TimelineEnd().Sub(now).Hours()
	if remainingHours < 1 {
		remainingHours = 1
	}

	avail, err := m.Pool.GetAvailability(campaign.ProjectType, campaign.Location, campaign.RadiusMiles)
	if err != nil {
		m.Log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("escalation: availability query failed")
		recommendations = append(recommendations, "availability query failed, retry escalation at next check-in")
		return actions, recommendations
	}

	delta := m.Calculator.Calculate(strategy.Input{
		BidsNeeded:           stillNeeded,
		TimelineHours:        remainingHours,
		Availability:         avail,
		ProjectType:          campaign.ProjectType,
		GroupBiddingProjects: campaign.Strategy.GroupBiddingProjects,
	})

	existing, err := m.Campaigns.GetSelections(campaign.ID)
	if err != nil {
		m.Log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("escalation: selections fetch failed")
		return actions, recommendations
	}
	exclude := make([]string, 0, len(existing))
	for _, sel := range existing {
		exclude = append(exclude, sel.ContractorID)
	}

	added, err := selectForStrategy(m.Pool, m.Gate, &delta, campaign.ProjectType, campaign.Location, exclude, true, m.Log)
	if err != nil {
		m.Log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("escalation: selection failed")
		return actions, recommendations
	}

	if len(added.Selections) == 0 {
		recommendations = append(recommendations, "no additional contractors available, consider broadening search radius")
		return actions, recommendations
	}

	if err := m.Campaigns.AddSelections(campaign.ID, added.Selections); err != nil {
		m.Log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("escalation: persist selections failed")
		return actions, recommendations
	}
	if err := m.Campaigns.MarkEscalated(campaign.ID); err != nil {
		m.Log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("escalation: mark escalated failed")
	}

	channel := "email"
	if len(delta.Channels) > 0 {
		channel = delta.Channels[0]
	}
	message := fmt.Sprintf("New %s project in %s is accepting bids. Respond to claim your spot.",
		campaign.ProjectType, campaign.Location)

	perTier := map[int]int{}
	for _, sel := range added.Selections {
		perTier[sel.Tier]++
		contractor := added.Contractors[sel.ContractorID]
		if _, err := m.Outreach.Contact(campaign.ID, contractor, channel, message); err != nil {
			m.Log.Warn().Err(err).Str("contractor_id", sel.ContractorID).Msg("escalation contact failed")
		}
	}
	tiers := make([]int, 0, len(perTier))
	for tier := range perTier {
		tiers = append(tiers, tier)
	}
	sort.Ints(tiers)
	for _, tier := range tiers {
		actions = append(actions, fmt.Sprintf("contacted %d additional tier %d leads", perTier[tier], tier))
	}

	metrics.EscalationsTriggered.Inc()
	m.Log.Info().Str("campaign_id", campaign.ID).Int("added", len(added.Selections)).
		Float64("remaining_hours", remainingHours).Int("still_needed", stillNeeded).
		Msg("campaign escalated")

	return actions, recommendations
}

// maybeFinishCampaign applies terminal transitions after a check-in: enough
// bids completes the campaign; a fully exhausted schedule past the timeline
// expires it.
func (m *CheckInManager) maybeFinishCampaign(campaign *model.Campaign, actual int, now time.Time) {
	if campaign.Status != model.CampaignRunning {
		return
	}
	if actual >= campaign.BidsNeeded {
		if err := m.Campaigns.UpdateStatus(campaign.ID, model.CampaignRunning, model.CampaignBidsComplete); err != nil {
			m.Log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("failed to mark bids complete")
		}
		return
	}
	pending, err := m.CheckIns.NextPending(campaign.ID)
	if err != nil || pending != nil {
		return
	}
	if now.After(campaign.TimelineEnd()) {
		if err := m.Campaigns.UpdateStatus(campaign.ID, model.CampaignRunning, model.CampaignExpired); err != nil {
			m.Log.Error().Err(err).Str("campaign_id", campaign.ID).Msg("failed to mark expired")
		}
	}
}

func (m *CheckInManager) storedStatus(campaign *model.Campaign, ci *model.CheckIn) *CheckInStatus {
	actions := []string{}
	if ci.ActionsTaken != "" {
		actions = strings.Split(ci.ActionsTaken, "; ")
	}
	return &CheckInStatus{
		CampaignID:       campaign.ID,
		CheckInNumber:    ci.CheckInNumber,
		BidsExpected:     ci.ExpectedBids,
		BidsReceived:     ci.ActualBids,
		PerformanceRatio: performanceRatio(ci.ActualBids, ci.ExpectedBids),
		OnTrack:          ci.OnTrack,
		EscalationNeeded: ci.EscalationNeeded,
		ActionsTaken:     actions,
		Recommendations:  []string{},
		Replayed:         true,
	}
}

func (m *CheckInManager) findCheckIn(campaignID, checkInID string) (*model.CheckIn, error) {
	checkIns, err := m.CheckIns.ListByCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	for i := range checkIns {
		if checkIns[i].ID == checkInID {
			return &checkIns[i], nil
		}
	}
	return nil, nil
}

// performanceRatio treats a zero expectation as fully on track.
func performanceRatio(actual, expected int) float64 {
	if expected == 0 {
		return 1.0
	}
	return math.Round(float64(actual)/float64(expected)*100) / 100
}
