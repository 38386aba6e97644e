package qualification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instabids/outreach-backend/internal/model"
)

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestEvaluateTopContractor(t *testing.T) {
	g := &Gate{}

	c := &model.Contractor{
		ID:                "c-1",
		LeadScore:         floatPtr(95),
		LicenseVerified:   boolPtr(true),
		InsuranceVerified: boolPtr(true),
		Rating:            floatPtr(4.8),
		ReviewCount:       intPtr(212),
		ContractorSize:    "regional_company",
		Specialties:       []string{"plumbing", "water heater"},
	}

	result := g.Evaluate(c)
	assert.Equal(t, model.LeadQualified, result.Status)
	assert.InDelta(t, 100, result.Score, 0.001) // raw 106 capped at 100
	assert.Nil(t, result.Reason)
	assert.Empty(t, result.Reasons)
}

func TestEvaluateMissingEverything(t *testing.T) {
	g := &Gate{}

	c := &model.Contractor{
		ID:                "c-2",
		LicenseVerified:   boolPtr(false),
		InsuranceVerified: boolPtr(false),
	}

	result := g.Evaluate(c)
	assert.Equal(t, model.LeadDisqualified, result.Status)
	assert.Zero(t, result.Score)
	require.Len(t, result.Reasons, 4)
	assert.Equal(t, []string{
		"No lead score available",
		"License not verified",
		"Insurance not verified",
		"No rating or review data",
	}, result.Reasons)
	// the persisted summary carries at most three reasons
	require.NotNil(t, result.Reason)
	assert.Equal(t, "Disqualified: No lead score available; License not verified; Insurance not verified", *result.Reason)
}

func TestEvaluateMidRangeStaysEnriched(t *testing.T) {
	g := &Gate{}

	c := &model.Contractor{
		ID:          "c-3",
		LeadScore:   floatPtr(70),
		Rating:      floatPtr(4.0),
		ReviewCount: intPtr(6),
	}

	result := g.Evaluate(c)
	assert.Equal(t, model.LeadEnriched, result.Status)
	assert.InDelta(t, 43, result.Score, 0.001) // 28 lead score + 15 rating
	require.NotNil(t, result.Reason)
	assert.Contains(t, *result.Reason, "Needs improvement")
}

func TestEvaluateUnknownVerificationIsNeutral(t *testing.T) {
	g := &Gate{}

	// nil verification adds no reason and costs no points
	unknown := g.Evaluate(&model.Contractor{LeadScore: floatPtr(70), Rating: floatPtr(4.0), ReviewCount: intPtr(6)})
	failed := g.Evaluate(&model.Contractor{
		LeadScore:       floatPtr(70),
		LicenseVerified: boolPtr(false),
		Rating:          floatPtr(4.0),
		ReviewCount:     intPtr(6),
	})

	assert.Equal(t, unknown.Score, failed.Score)
	assert.NotContains(t, unknown.Reasons, "License not verified")
	assert.Contains(t, failed.Reasons, "License not verified")
}

func TestEvaluateThresholdBoundaries(t *testing.T) {
	g := &Gate{}

	// 40 (lead score) + 25 (license) + 5 (rating >= 3.0) lands exactly on 70
	exactly70 := g.Evaluate(&model.Contractor{
		LeadScore:       floatPtr(100),
		LicenseVerified: boolPtr(true),
		Rating:          floatPtr(3.0),
		ReviewCount:     intPtr(0),
	})
	assert.Equal(t, model.LeadQualified, exactly70.Status)
	assert.InDelta(t, 70, exactly70.Score, 0.001)

	// 40 alone lands exactly on the disqualification boundary, still enriched
	exactly40 := g.Evaluate(&model.Contractor{LeadScore: floatPtr(100)})
	assert.Equal(t, model.LeadEnriched, exactly40.Status)
	assert.InDelta(t, 40, exactly40.Score, 0.001)

	justUnder := g.Evaluate(&model.Contractor{LeadScore: floatPtr(95)})
	assert.Equal(t, model.LeadDisqualified, justUnder.Status)
	assert.InDelta(t, 38, justUnder.Score, 0.001)
}

func TestEvaluateRatingBonusLadder(t *testing.T) {
	g := &Gate{}

	cases := []struct {
		rating  float64
		reviews int
		bonus   float64
	}{
		{4.9, 50, 20},
		{4.5, 10, 20},
		{4.5, 9, 15}, // high rating, thin history drops a rung
		{4.0, 5, 15},
		{3.5, 1, 10},
		{3.2, 0, 5},
		{2.5, 40, 0},
	}
	for _, tc := range cases {
		base := g.Evaluate(&model.Contractor{LeadScore: floatPtr(50)})
		withRating := g.Evaluate(&model.Contractor{
			LeadScore:   floatPtr(50),
			Rating:      floatPtr(tc.rating),
			ReviewCount: intPtr(tc.reviews),
		})
		// the no-rating baseline carries a reason, not a penalty
		assert.InDelta(t, tc.bonus, withRating.Score-base.Score, 0.001,
			"rating=%v reviews=%d", tc.rating, tc.reviews)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	g := &Gate{}
	c := &model.Contractor{
		LeadScore:       floatPtr(55),
		LicenseVerified: boolPtr(true),
		Rating:          floatPtr(4.1),
		ReviewCount:     intPtr(12),
	}

	first := g.Evaluate(c)
	second := g.Evaluate(c)
	assert.Equal(t, first, second)
}

func TestNextStatusNoRegression(t *testing.T) {
	cases := []struct {
		current, evaluated, want model.LeadStatus
	}{
		{model.LeadQualified, model.LeadEnriched, model.LeadQualified},
		{model.LeadQualified, model.LeadDisqualified, model.LeadDisqualified},
		{model.LeadEnriched, model.LeadQualified, model.LeadQualified},
		{model.LeadEnriched, model.LeadDisqualified, model.LeadDisqualified},
		{model.LeadNew, model.LeadEnriched, model.LeadEnriched},
		// new leads cannot jump straight to qualified
		{model.LeadNew, model.LeadQualified, model.LeadNew},
		{model.LeadQualified, model.LeadQualified, model.LeadQualified},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NextStatus(tc.current, tc.evaluated),
			"current=%s evaluated=%s", tc.current, tc.evaluated)
	}
}
