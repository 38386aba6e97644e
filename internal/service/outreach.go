// internal/service/outreach.go
package service

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/instabids/outreach-backend/internal/metrics"
	"github.com/instabids/outreach-backend/internal/model"
	"github.com/instabids/outreach-backend/internal/repository"
)

// OutreachChannel is the delivery collaborator the orchestrator fires
// contractor contacts through. Fire-and-forget: delivery confirmation is out
// of scope, only the attempt record matters here.
type OutreachChannel interface {
	Contact(campaignID string, contractor *model.Contractor, channel, message string) (string, error)
}

// SendFunc performs the actual delivery. Swapped for the real SMS/email
// gateway in production; MockSend elsewhere.
type SendFunc func(channel, destination, message string) error

// ChannelDispatcher records a contact attempt, performs the send, and updates
// the attempt row with the outcome. A failed delivery is recorded, not
// returned as an error: the orchestrator never blocks on delivery.
// Idempotent per campaign: a contractor with an existing attempt is skipped,
// so re-published execution jobs and overlapping escalations cannot
// double-contact anyone.
type ChannelDispatcher struct {
	Attempts repository.ContactAttemptRepositoryInterface
	Send     SendFunc
	Log      zerolog.Logger
}

func (d *ChannelDispatcher) Contact(campaignID string, contractor *model.Contractor, channel, message string) (string, error) {
	attempt := &model.ContactAttempt{
		ID:           uuid.NewString(),
		CampaignID:   campaignID,
		ContractorID: contractor.ID,
		Channel:      channel,
		Status:       "pending",
		Message:      message,
	}
	created, err := d.Attempts.Create(attempt)
	if err != nil {
		return "", err
	}
	if !created {
		d.Log.Debug().Str("campaign_id", campaignID).Str("contractor_id", contractor.ID).
			Msg("contact attempt already exists, skipping")
		return "", nil
	}

	destination := contractor.Email
	if channel == "phone" || channel == "sms" {
		destination = contractor.Phone
	}

	if err := d.Send(channel, destination, message); err != nil {
		d.Log.Warn().Err(err).Str("contractor_id", contractor.ID).Str("channel", channel).
			Msg("contact send failed")
		if uerr := d.Attempts.UpdateStatus(attempt.ID, "failed", err.Error()); uerr != nil {
			d.Log.Error().Err(uerr).Str("attempt_id", attempt.ID).Msg("failed to record send failure")
		}
		metrics.ContractorsContacted.WithLabelValues(channel, "failed").Inc()
		return attempt.ID, nil
	}

	if err := d.Attempts.UpdateStatus(attempt.ID, "sent", ""); err != nil {
		d.Log.Error().Err(err).Str("attempt_id", attempt.ID).Msg("failed to record send success")
	}
	metrics.ContractorsContacted.WithLabelValues(channel, "sent").Inc()
	return attempt.ID, nil
}

// MockSend simulates delivery with 90% success.
func MockSend(channel, destination, message string) error {
	if rand.Float64() < 0.9 {
		return nil
	}
	return fmt.Errorf("mock %s send to %s failed", channel, destination)
}
