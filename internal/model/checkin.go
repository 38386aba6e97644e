// internal/model/checkin.go
package model

import "time"

// CheckIn is one pre-scheduled re-evaluation point for a campaign. All
// check-ins are created when the campaign is created; each is completed
// exactly once when its scheduled time is reached, and never re-opened.
type CheckIn struct {
	ID               string     `db:"id" json:"id"`
	CampaignID       string     `db:"campaign_id" json:"campaign_id"`
	CheckInNumber    int        `db:"check_in_number" json:"check_in_number"`
	ScheduledAt      time.Time  `db:"scheduled_at" json:"scheduled_at"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ExpectedBids     int        `db:"expected_bids" json:"expected_bids"`
	ActualBids       int        `db:"actual_bids" json:"actual_bids"`
	OnTrack          bool       `db:"on_track" json:"on_track"`
	EscalationNeeded bool       `db:"escalation_needed" json:"escalation_needed"`
	ActionsTaken     string     `db:"actions_taken" json:"actions_taken,omitempty"`
}

// Completed reports whether this check-in has already executed.
func (c *CheckIn) Completed() bool {
	return c.CompletedAt != nil
}
