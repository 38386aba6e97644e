// internal/model/strategy.go
package model

import "time"

// TierAvailability is a fresh per-campaign snapshot of how many contractors
// each tier can offer for a project type + location. Never cached beyond one
// strategy computation.
type TierAvailability struct {
	Tier1Count int `json:"tier1_count"`
	Tier2Count int `json:"tier2_count"`
	Tier3Count int `json:"tier3_count"`
}

func (a TierAvailability) Total() int {
	return a.Tier1Count + a.Tier2Count + a.Tier3Count
}

// TierStrategy is the per-tier slice of an outreach plan.
type TierStrategy struct {
	ToContact         int     `json:"to_contact"`
	ResponseRate      float64 `json:"expected_response_rate"`
	ExpectedResponses float64 `json:"expected_responses"`
}

// CheckInPoint is one pre-scheduled checkpoint in a campaign timeline with the
// bid count we expect to have by then.
type CheckInPoint struct {
	At               time.Time `json:"at"`
	TimelineFraction float64   `json:"timeline_fraction"`
	ExpectedBids     int       `json:"expected_bids"`
}

// OutreachStrategy is the computed outreach plan for one campaign. Once a
// campaign starts it is never mutated; escalation produces a fresh delta
// strategy instead.
type OutreachStrategy struct {
	UrgencyLevel           UrgencyLevel   `json:"urgency_level"`
	BidsNeeded             int            `json:"bids_needed"`
	TimelineHours          float64        `json:"timeline_hours"`
	Tier1                  TierStrategy   `json:"tier1"`
	Tier2                  TierStrategy   `json:"tier2"`
	Tier3                  TierStrategy   `json:"tier3"`
	TotalToContact         int            `json:"total_to_contact"`
	ExpectedTotalResponses float64        `json:"expected_total_responses"`
	ConfidenceScore        float64        `json:"confidence_score"`
	CheckIns               []CheckInPoint `json:"check_in_times"`
	Channels               []string       `json:"channels"`
	IsGroupBidding         bool           `json:"is_group_bidding"`
	GroupBiddingProjects   []string       `json:"group_bidding_projects,omitempty"`
}

// TierFor returns the tier slice for tier number 1, 2 or 3.
func (s *OutreachStrategy) TierFor(tier int) TierStrategy {
	switch tier {
	case 1:
		return s.Tier1
	case 2:
		return s.Tier2
	case 3:
		return s.Tier3
	}
	return TierStrategy{}
}
