package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCampaignTransitions(t *testing.T) {
	allowed := []struct{ from, to CampaignStatus }{
		{CampaignCreated, CampaignRunning},
		{CampaignRunning, CampaignBidsComplete},
		{CampaignRunning, CampaignExpired},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to CampaignStatus }{
		{CampaignCreated, CampaignBidsComplete},
		{CampaignCreated, CampaignExpired},
		{CampaignRunning, CampaignCreated},
		{CampaignBidsComplete, CampaignRunning},
		{CampaignExpired, CampaignRunning},
		{CampaignBidsComplete, CampaignExpired},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestLeadTransitions(t *testing.T) {
	allowed := []struct{ from, to LeadStatus }{
		{LeadNew, LeadEnriched},
		{LeadNew, LeadDisqualified},
		{LeadEnriched, LeadQualified},
		{LeadEnriched, LeadContacted},
		{LeadQualified, LeadContacted},
		{LeadQualified, LeadDisqualified},
		{LeadContacted, LeadInterested},
		{LeadContacted, LeadConverted},
		{LeadInterested, LeadConverted},
		{LeadEnriched, LeadEnriched}, // idempotent re-assertion
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to LeadStatus }{
		{LeadNew, LeadQualified},
		{LeadQualified, LeadEnriched},
		{LeadContacted, LeadNew},
		{LeadDisqualified, LeadEnriched},
		{LeadConverted, LeadInterested},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCampaignTimelineEnd(t *testing.T) {
	created := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	started := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	c := &Campaign{TimelineHours: 24, CreatedAt: created}
	assert.Equal(t, created.Add(24*time.Hour), c.TimelineEnd())

	c.StartedAt = &started
	assert.Equal(t, started.Add(24*time.Hour), c.TimelineEnd())
}

func TestUrgencyPriority(t *testing.T) {
	assert.Greater(t, UrgencyEmergency.Priority(), UrgencyUrgent.Priority())
	assert.Greater(t, UrgencyUrgent.Priority(), UrgencyWeek.Priority())
	assert.Greater(t, UrgencyWeek.Priority(), UrgencyMonth.Priority())
	assert.Equal(t, UrgencyMonth.Priority(), UrgencyStandard.Priority())
	assert.Greater(t, UrgencyMonth.Priority(), UrgencyFlexible.Priority())
	assert.Zero(t, UrgencyLevel("bogus").Priority())
}

func TestStrategyTierFor(t *testing.T) {
	s := &OutreachStrategy{
		Tier1: TierStrategy{ToContact: 3},
		Tier2: TierStrategy{ToContact: 2},
		Tier3: TierStrategy{ToContact: 1},
	}
	assert.Equal(t, 3, s.TierFor(1).ToContact)
	assert.Equal(t, 2, s.TierFor(2).ToContact)
	assert.Equal(t, 1, s.TierFor(3).ToContact)
	assert.Equal(t, TierStrategy{}, s.TierFor(4))
}
