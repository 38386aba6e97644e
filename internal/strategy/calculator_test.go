package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instabids/outreach-backend/internal/model"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newCalculator() *Calculator {
	return &Calculator{Now: func() time.Time { return testNow }}
}

func TestCalculateTopDownAllocation(t *testing.T) {
	c := newCalculator()

	strat := c.Calculate(Input{
		BidsNeeded:    4,
		TimelineHours: 48,
		Availability:  model.TierAvailability{Tier1Count: 10, Tier2Count: 10, Tier3Count: 10},
	})

	// tier 1 alone covers the need: ceil(4/0.9) = 5 contacts
	assert.Equal(t, 5, strat.Tier1.ToContact)
	assert.InDelta(t, 4.5, strat.Tier1.ExpectedResponses, 0.001)
	assert.Zero(t, strat.Tier2.ToContact)
	assert.Zero(t, strat.Tier3.ToContact)
	assert.Equal(t, 5, strat.TotalToContact)
	assert.InDelta(t, 4.5, strat.ExpectedTotalResponses, 0.001)
	assert.Equal(t, model.UrgencyStandard, strat.UrgencyLevel)
	assert.GreaterOrEqual(t, strat.ConfidenceScore, 70.0)
}

func TestCalculateSpillsIntoLowerTiers(t *testing.T) {
	c := newCalculator()

	strat := c.Calculate(Input{
		BidsNeeded:    4,
		TimelineHours: 48,
		Availability:  model.TierAvailability{Tier1Count: 2, Tier2Count: 3, Tier3Count: 10},
	})

	assert.Equal(t, 2, strat.Tier1.ToContact)
	assert.InDelta(t, 1.8, strat.Tier1.ExpectedResponses, 0.001)
	assert.Equal(t, 3, strat.Tier2.ToContact)
	assert.InDelta(t, 1.5, strat.Tier2.ExpectedResponses, 0.001)
	// remaining 0.7 bids need ceil(0.7/0.33) = 3 cold leads
	assert.Equal(t, 3, strat.Tier3.ToContact)
	assert.Equal(t, 8, strat.TotalToContact)

	sum := strat.Tier1.ToContact + strat.Tier2.ToContact + strat.Tier3.ToContact
	assert.Equal(t, sum, strat.TotalToContact)
	assert.LessOrEqual(t, strat.Tier1.ToContact, 2)
	assert.LessOrEqual(t, strat.Tier2.ToContact, 3)
	assert.LessOrEqual(t, strat.Tier3.ToContact, 10)
}

func TestCalculateZeroAvailability(t *testing.T) {
	c := newCalculator()

	strat := c.Calculate(Input{
		BidsNeeded:    4,
		TimelineHours: 48,
		Availability:  model.TierAvailability{},
	})

	assert.Zero(t, strat.TotalToContact)
	assert.Zero(t, strat.ExpectedTotalResponses)
	assert.Zero(t, strat.ConfidenceScore)
	// check-in schedule still exists so the campaign stays observable
	assert.NotEmpty(t, strat.CheckIns)
}

func TestCalculateGroupBiddingRates(t *testing.T) {
	c := newCalculator()

	strat := c.Calculate(Input{
		BidsNeeded:           4,
		TimelineHours:        48,
		Availability:         model.TierAvailability{Tier1Count: 10, Tier2Count: 10, Tier3Count: 10},
		GroupBiddingProjects: []string{"bc-other-1", "bc-other-2"},
	})

	assert.True(t, strat.IsGroupBidding)
	// rates carry the 1.2x bonus unclamped
	assert.InDelta(t, 1.08, strat.Tier1.ResponseRate, 0.0001)
	assert.InDelta(t, 0.60, strat.Tier2.ResponseRate, 0.0001)
	assert.InDelta(t, 0.396, strat.Tier3.ResponseRate, 0.0001)
	// ceil(4/1.08) = 4 contacts instead of 5
	assert.Equal(t, 4, strat.Tier1.ToContact)
	assert.Equal(t, []string{"bc-other-1", "bc-other-2"}, strat.GroupBiddingProjects)
}

func TestCalculateClampsBidsNeeded(t *testing.T) {
	c := newCalculator()

	strat := c.Calculate(Input{
		BidsNeeded:    0,
		TimelineHours: 48,
		Availability:  model.TierAvailability{Tier1Count: 5},
	})
	assert.Equal(t, 1, strat.BidsNeeded)
	assert.Equal(t, 2, strat.Tier1.ToContact) // ceil(1/0.9)
}

func TestUrgencyFromHours(t *testing.T) {
	cases := []struct {
		hours float64
		want  model.UrgencyLevel
	}{
		{0.5, model.UrgencyEmergency},
		{1, model.UrgencyUrgent},
		{12, model.UrgencyUrgent},
		{48, model.UrgencyStandard},
		{72, model.UrgencyStandard},
		{100, model.UrgencyFlexible},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, urgencyFromHours(tc.hours), "%v hours", tc.hours)
	}
}

func TestChannelsByUrgency(t *testing.T) {
	c := newCalculator()

	emergency := c.Calculate(Input{
		BidsNeeded:    2,
		TimelineHours: 0.75,
		Availability:  model.TierAvailability{Tier1Count: 5},
	})
	assert.Equal(t, []string{"phone", "sms", "email"}, emergency.Channels)

	urgent := c.Calculate(Input{
		BidsNeeded:    2,
		TimelineHours: 6,
		Availability:  model.TierAvailability{Tier1Count: 5},
	})
	assert.Equal(t, []string{"sms", "phone", "email"}, urgent.Channels)

	relaxed := c.Calculate(Input{
		BidsNeeded:    2,
		TimelineHours: 100,
		Availability:  model.TierAvailability{Tier1Count: 5},
	})
	assert.Equal(t, []string{"email", "sms"}, relaxed.Channels)
}

func TestScheduleCheckIns(t *testing.T) {
	c := newCalculator()

	points := c.scheduleCheckIns(8, 4)
	require.Len(t, points, 3)
	assert.Equal(t, testNow.Add(2*time.Hour), points[0].At)
	assert.Equal(t, testNow.Add(4*time.Hour), points[1].At)
	assert.Equal(t, testNow.Add(6*time.Hour), points[2].At)
	assert.Equal(t, 1, points[0].ExpectedBids)
	assert.Equal(t, 2, points[1].ExpectedBids)
	assert.Equal(t, 3, points[2].ExpectedBids)
}

func TestScheduleCheckInsDropsNearTermPoints(t *testing.T) {
	c := newCalculator()

	// 25% of a 90-minute window is 22.5 minutes, under the 30-minute lead
	points := c.scheduleCheckIns(1.5, 4)
	require.Len(t, points, 2)
	assert.InDelta(t, 0.50, points[0].TimelineFraction, 0.001)
	assert.InDelta(t, 0.75, points[1].TimelineFraction, 0.001)
}

func TestScheduleCheckInsFallbackPoint(t *testing.T) {
	c := newCalculator()

	// every quarter of a 30-minute window is too close, leaving one final point
	points := c.scheduleCheckIns(0.5, 4)
	require.Len(t, points, 1)
	assert.Equal(t, testNow.Add(30*time.Minute), points[0].At)
	assert.InDelta(t, 1.0, points[0].TimelineFraction, 0.001)
	assert.Equal(t, 4, points[0].ExpectedBids)
}

func TestConfidence(t *testing.T) {
	cases := []struct {
		expected, needed float64
		want             float64
	}{
		{4, 4, 70},      // exactly meeting the need
		{4.5, 4, 73.75}, // modest surplus
		{8, 4, 100},     // surplus capped
		{12, 4, 100},
		{2, 4, 35}, // shortfall scales linearly
		{0.9, 4, 15.75},
		{0, 4, 0},
		{1, 0, 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, confidence(tc.expected, tc.needed), 0.001,
			"expected=%v needed=%v", tc.expected, tc.needed)
	}
}

func TestExpectedResponsesNeverBelowNeedWhenPoolSuffices(t *testing.T) {
	c := newCalculator()

	for bids := 1; bids <= 10; bids++ {
		strat := c.Calculate(Input{
			BidsNeeded:    bids,
			TimelineHours: 48,
			Availability:  model.TierAvailability{Tier1Count: 50, Tier2Count: 50, Tier3Count: 50},
		})
		assert.GreaterOrEqual(t, strat.ExpectedTotalResponses, float64(bids), "bids=%d", bids)
		assert.GreaterOrEqual(t, strat.ConfidenceScore, 70.0, "bids=%d", bids)
	}
}
