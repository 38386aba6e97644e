// internal/model/contact_attempt.go
package model

import "time"

// ContactAttempt records one outreach attempt to a contractor for a campaign.
type ContactAttempt struct {
	ID           string    `db:"id" json:"id"`
	CampaignID   string    `db:"campaign_id" json:"campaign_id"`
	ContractorID string    `db:"contractor_id" json:"contractor_id"`
	Channel      string    `db:"channel" json:"channel"`
	Status       string    `db:"status" json:"status"` // pending, sent, failed
	Message      string    `db:"message" json:"message"`
	LastError    string    `db:"last_error,omitempty" json:"last_error,omitempty"`
	RetryCount   int       `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
