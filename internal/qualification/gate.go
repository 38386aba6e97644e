// internal/qualification/gate.go
package qualification

import (
	"strings"

	"github.com/instabids/outreach-backend/internal/model"
)

// Score thresholds for the lead status decision.
const (
	QualifiedThreshold    = 70.0
	DisqualifiedThreshold = 40.0
)

// Established size categories earn a small business-quality bonus.
var establishedSizes = map[string]bool{
	"small_business":   true,
	"regional_company": true,
	"national_chain":   true,
}

// Result is the outcome of evaluating a contractor. Reason is a short summary
// (nil for qualified contractors); Reasons keeps every improvement area found.
type Result struct {
	Status  model.LeadStatus
	Score   float64
	Reason  *string
	Reasons []string
}

// Gate scores enrichment data out of 100 and decides whether a lead is
// qualified, stays enriched, or is disqualified. Pure and deterministic:
// identical input always yields identical output. Persistence of the decision
// is owned by the caller.
type Gate struct{}

// Evaluate scores one contractor. Verification fields are tri-state: an
// explicit false costs the points and adds a reason, unknown (nil) is neutral.
func (g *Gate) Evaluate(c *model.Contractor) Result {
	score := 0.0
	reasons := []string{}

	if c.LeadScore != nil && *c.LeadScore > 0 {
		contribution := *c.LeadScore * 0.4
		if contribution > 40 {
			contribution = 40
		}
		score += contribution
	} else {
		reasons = append(reasons, "No lead score available")
	}

	if c.LicenseVerified != nil {
		if *c.LicenseVerified {
			score += 25
		} else {
			reasons = append(reasons, "License not verified")
		}
	}

	if c.InsuranceVerified != nil {
		if *c.InsuranceVerified {
			score += 15
		} else {
			reasons = append(reasons, "Insurance not verified")
		}
	}

	score += ratingBonus(c, &reasons)

	if establishedSizes[c.ContractorSize] {
		score += 5
	}
	if len(c.Specialties) > 1 {
		score += 3
	}

	if score > 100 {
		score = 100
	}

	return decide(score, reasons)
}

func ratingBonus(c *model.Contractor, reasons *[]string) float64 {
	if c.Rating == nil || c.ReviewCount == nil {
		*reasons = append(*reasons, "No rating or review data")
		return 0
	}
	rating, reviews := *c.Rating, *c.ReviewCount
	switch {
	case rating >= 4.5 && reviews >= 10:
		return 20
	case rating >= 4.0 && reviews >= 5:
		return 15
	case rating >= 3.5 && reviews >= 1:
		return 10
	case rating >= 3.0:
		return 5
	}
	*reasons = append(*reasons, "Low rating or insufficient reviews")
	return 0
}

func decide(score float64, reasons []string) Result {
	switch {
	case score >= QualifiedThreshold:
		return Result{Status: model.LeadQualified, Score: score, Reasons: reasons}
	case score >= DisqualifiedThreshold:
		reason := summarize("Needs improvement: ", reasons)
		return Result{Status: model.LeadEnriched, Score: score, Reason: &reason, Reasons: reasons}
	default:
		reason := summarize("Disqualified: ", reasons)
		return Result{Status: model.LeadDisqualified, Score: score, Reason: &reason, Reasons: reasons}
	}
}

// summarize joins the first three reasons into one persistable line.
func summarize(prefix string, reasons []string) string {
	top := reasons
	if len(top) > 3 {
		top = top[:3]
	}
	if len(top) == 0 {
		return strings.TrimSuffix(prefix, ": ")
	}
	return prefix + strings.Join(top, "; ")
}

// NextStatus applies the no-regression rule for a contractor whose current
// status is known: qualified never falls back to enriched; only forward
// transitions or disqualification are allowed.
func NextStatus(current model.LeadStatus, evaluated model.LeadStatus) model.LeadStatus {
	if current == model.LeadQualified && evaluated == model.LeadEnriched {
		return model.LeadQualified
	}
	if !current.CanTransition(evaluated) {
		return current
	}
	return evaluated
}
