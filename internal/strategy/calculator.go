// internal/strategy/calculator.go
package strategy

import (
	"math"
	"time"

	"github.com/instabids/outreach-backend/internal/model"
)

// Base response-rate assumptions per tier. Tier 1 verified contractors answer
// almost always; Tier 3 cold leads roughly one in three.
const (
	Tier1ResponseRate = 0.90
	Tier2ResponseRate = 0.50
	Tier3ResponseRate = 0.33

	// GroupBiddingBonus multiplies each tier's rate when homeowners bundle
	// projects. The effective rate is deliberately not clamped at 1.0, so
	// Tier 1 becomes 1.08 in group mode and expected responses can
	// optimistically exceed contacts.
	GroupBiddingBonus = 1.20

	// Check-ins closer than this to now are dropped from the schedule.
	minCheckInLead = 30 * time.Minute
)

// checkInFractions places checkpoints at quarters of the timeline.
var checkInFractions = []float64{0.25, 0.50, 0.75}

// Calculator computes tiered outreach strategies. Pure CPU-bound math; the
// only ambient input is the clock, injectable for tests.
type Calculator struct {
	Now func() time.Time
}

func (c *Calculator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Input carries everything a strategy computation needs. Availability is a
// fresh snapshot; the calculator never queries anything itself.
type Input struct {
	BidsNeeded           int
	TimelineHours        float64
	Availability         model.TierAvailability
	ProjectType          string
	GroupBiddingProjects []string
}

// Calculate builds an outreach strategy: urgency from the timeline, top-down
// tier allocation, confidence, check-in schedule and channel selection.
func (c *Calculator) Calculate(in Input) model.OutreachStrategy {
	bidsNeeded := in.BidsNeeded
	if bidsNeeded < 1 {
		bidsNeeded = 1
	}
	timelineHours := in.TimelineHours
	if timelineHours <= 0 {
		timelineHours = 1
	}

	isGroup := len(in.GroupBiddingProjects) > 0
	level := urgencyFromHours(timelineHours)

	t1 := allocateTier(in.Availability.Tier1Count, effectiveRate(Tier1ResponseRate, isGroup), float64(bidsNeeded))
	remaining := float64(bidsNeeded) - t1.ExpectedResponses
	t2 := allocateTier(in.Availability.Tier2Count, effectiveRate(Tier2ResponseRate, isGroup), remaining)
	remaining -= t2.ExpectedResponses
	t3 := allocateTier(in.Availability.Tier3Count, effectiveRate(Tier3ResponseRate, isGroup), remaining)

	expectedTotal := t1.ExpectedResponses + t2.ExpectedResponses + t3.ExpectedResponses

	return model.OutreachStrategy{
		UrgencyLevel:           level,
		BidsNeeded:             bidsNeeded,
		TimelineHours:          timelineHours,
		Tier1:                  t1,
		Tier2:                  t2,
		Tier3:                  t3,
		TotalToContact:         t1.ToContact + t2.ToContact + t3.ToContact,
		ExpectedTotalResponses: round2(expectedTotal),
		ConfidenceScore:        confidence(expectedTotal, float64(bidsNeeded)),
		CheckIns:               c.scheduleCheckIns(timelineHours, bidsNeeded),
		Channels:               channelsFor(level),
		IsGroupBidding:         isGroup,
		GroupBiddingProjects:   in.GroupBiddingProjects,
	}
}

// urgencyFromHours maps a timeline window to the calculator's urgency scale.
func urgencyFromHours(hours float64) model.UrgencyLevel {
	switch {
	case hours < 1:
		return model.UrgencyEmergency
	case hours <= 12:
		return model.UrgencyUrgent
	case hours <= 72:
		return model.UrgencyStandard
	default:
		return model.UrgencyFlexible
	}
}

func effectiveRate(base float64, isGroup bool) float64 {
	if isGroup {
		return base * GroupBiddingBonus
	}
	return base
}

// allocateTier contacts enough contractors at the given rate to cover the
// remaining need, capped by availability.
func allocateTier(available int, rate, need float64) model.TierStrategy {
	toContact := 0
	if need > 0 && available > 0 {
		toContact = int(math.Ceil(need / rate))
		if toContact > available {
			toContact = available
		}
	}
	return model.TierStrategy{
		ToContact:         toContact,
		ResponseRate:      rate,
		ExpectedResponses: round2(float64(toContact) * rate),
	}
}

// confidence maps the surplus of expected responses over needed bids to a
// 0-100 score. Meeting the need lands at 70 and climbs with surplus; a
// shortfall scales linearly below 70 and bottoms out at 0 when nothing is
// expected.
func confidence(expected, needed float64) float64 {
	if needed <= 0 {
		return 0
	}
	if expected >= needed {
		surplus := (expected - needed) / needed
		if surplus > 1 {
			surplus = 1
		}
		return round2(70 + 30*surplus)
	}
	return round2(70 * expected / needed)
}

// scheduleCheckIns places checkpoints at 25/50/75% of the timeline, dropping
// any that would fire within 30 minutes. Thresholds scale linearly with the
// time fraction, so they are non-decreasing by construction. Very short
// timelines still get one final checkpoint so escalation stays visible.
func (c *Calculator) scheduleCheckIns(timelineHours float64, bidsNeeded int) []model.CheckInPoint {
	now := c.now()
	window := time.Duration(timelineHours * float64(time.Hour))

	points := []model.CheckInPoint{}
	for _, frac := range checkInFractions {
		offset := time.Duration(frac * float64(window))
		if offset < minCheckInLead {
			continue
		}
		points = append(points, model.CheckInPoint{
			At:               now.Add(offset),
			TimelineFraction: frac,
			ExpectedBids:     int(frac * float64(bidsNeeded)),
		})
	}

	if len(points) == 0 {
		points = append(points, model.CheckInPoint{
			At:               now.Add(window),
			TimelineFraction: 1.0,
			ExpectedBids:     bidsNeeded,
		})
	}
	return points
}

// channelsFor orders outreach channels by urgency: tight windows go to phone
// and SMS first, relaxed ones email-first.
func channelsFor(level model.UrgencyLevel) []string {
	switch level {
	case model.UrgencyEmergency:
		return []string{"phone", "sms", "email"}
	case model.UrgencyUrgent:
		return []string{"sms", "phone", "email"}
	default:
		return []string{"email", "sms"}
	}
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
