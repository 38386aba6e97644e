// internal/service/selection.go
package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/instabids/outreach-backend/internal/model"
	"github.com/instabids/outreach-backend/internal/qualification"
	"github.com/instabids/outreach-backend/internal/repository"
)

// selectionResult pairs the selection rows to persist with the full
// contractor records, so callers can contact without re-fetching.
type selectionResult struct {
	Selections  []model.ContractorSelection
	Contractors map[string]*model.Contractor
}

// selectForStrategy picks concrete contractors to fill a strategy's per-tier
// quotas. The qualification gate filters Tier 1/2 down to qualified
// contractors; Tier 3 cold leads pass through at enriched or new status.
// Disqualified leads are excluded from every tier. A contractor surfacing in
// multiple tiers is selected once, and excludeIDs keeps escalation passes
// from re-selecting earlier picks.
func selectForStrategy(
	pool repository.ContractorPoolSource,
	gate *qualification.Gate,
	strat *model.OutreachStrategy,
	projectType, location string,
	excludeIDs []string,
	viaEscalation bool,
	log zerolog.Logger,
) (*selectionResult, error) {
	seen := map[string]bool{}
	for _, id := range excludeIDs {
		seen[id] = true
	}

	result := &selectionResult{Contractors: map[string]*model.Contractor{}}
	now := time.Now()

	for tier := 1; tier <= 3; tier++ {
		want := strat.TierFor(tier).ToContact
		if want == 0 {
			continue
		}

		exclude := make([]string, 0, len(seen))
		for id := range seen {
			exclude = append(exclude, id)
		}

		// Over-fetch so gate rejections don't leave the quota short.
		candidates, err := pool.SelectCandidates(tier, want*2, projectType, location, exclude)
		if err != nil {
			return nil, err
		}

		picked := 0
		for i := range candidates {
			if picked >= want {
				break
			}
			candidate := candidates[i]
			if seen[candidate.ID] {
				continue
			}

			eval := gate.Evaluate(&candidate)
			next := qualification.NextStatus(candidate.LeadStatus, eval.Status)
			if next != candidate.LeadStatus {
				if err := pool.UpdateQualification(candidate.ID, next, eval.Score, eval.Reason); err != nil {
					log.Warn().Err(err).Str("contractor_id", candidate.ID).
						Msg("failed to persist qualification decision")
				}
			}

			if !eligibleForTier(tier, next, eval.Status) {
				continue
			}

			seen[candidate.ID] = true
			result.Selections = append(result.Selections, model.ContractorSelection{
				ContractorID:  candidate.ID,
				Tier:          tier,
				ViaEscalation: viaEscalation,
				AddedAt:       now,
			})
			result.Contractors[candidate.ID] = &candidate
			picked++
		}
	}

	return result, nil
}

// eligibleForTier: Tier 1/2 demand a qualified contractor; Tier 3 admits
// fresh leads that have not been disqualified.
func eligibleForTier(tier int, status, evaluated model.LeadStatus) bool {
	if status == model.LeadDisqualified || evaluated == model.LeadDisqualified {
		return false
	}
	if tier == 3 {
		return true
	}
	return status == model.LeadQualified
}
