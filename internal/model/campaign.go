// internal/model/campaign.go
package model

import "time"

// CampaignStatus is the externally visible lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignCreated      CampaignStatus = "created"
	CampaignRunning      CampaignStatus = "running"
	CampaignBidsComplete CampaignStatus = "bids_complete"
	CampaignExpired      CampaignStatus = "expired"
)

// campaignTransitions lists the only status changes a campaign may make.
// Escalation is an internal flag on a running campaign, not a status.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignCreated: {CampaignRunning},
	CampaignRunning: {CampaignBidsComplete, CampaignExpired},
}

// CanTransition reports whether from -> to is an allowed status change.
func (from CampaignStatus) CanTransition(to CampaignStatus) bool {
	for _, s := range campaignTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ContractorSelection records one contractor picked for a campaign. A
// contractor appears at most once per campaign regardless of how many
// discovery passes surfaced it.
type ContractorSelection struct {
	CampaignID    string    `db:"campaign_id" json:"campaign_id"`
	ContractorID  string    `db:"contractor_id" json:"contractor_id"`
	Tier          int       `db:"tier" json:"tier"`
	ViaEscalation bool      `db:"via_escalation" json:"via_escalation"`
	AddedAt       time.Time `db:"added_at" json:"added_at"`
}

type Campaign struct {
	ID             string           `db:"id" json:"id"`
	BidCardID      string           `db:"bid_card_id" json:"bid_card_id"`
	ProjectType    string           `db:"project_type" json:"project_type"`
	Location       string           `db:"location" json:"location"`
	RadiusMiles    int              `db:"radius_miles" json:"radius_miles"`
	BidsNeeded     int              `db:"bids_needed" json:"bids_needed"`
	TimelineHours  float64          `db:"timeline_hours" json:"timeline_hours"`
	ProjectUrgency UrgencyLevel     `db:"project_urgency" json:"project_urgency"`
	Strategy       OutreachStrategy `db:"strategy" json:"strategy"`
	Status         CampaignStatus   `db:"status" json:"status"`
	Escalated      bool             `db:"escalated" json:"escalated"`
	StartedAt      *time.Time       `db:"started_at" json:"started_at,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time       `db:"updated_at" json:"updated_at,omitempty"`

	Selections []ContractorSelection `json:"contractor_selections,omitempty"`
}

// TimelineEnd returns when the campaign window closes. Falls back to
// CreatedAt when the campaign has not started yet.
func (c *Campaign) TimelineEnd() time.Time {
	base := c.CreatedAt
	if c.StartedAt != nil {
		base = *c.StartedAt
	}
	return base.Add(time.Duration(c.TimelineHours * float64(time.Hour)))
}
