// internal/model/contractor.go
package model

import "time"

// LeadStatus is the lifecycle state of a contractor lead.
type LeadStatus string

const (
	LeadNew          LeadStatus = "new"
	LeadEnriched     LeadStatus = "enriched"
	LeadQualified    LeadStatus = "qualified"
	LeadDisqualified LeadStatus = "disqualified"
	LeadContacted    LeadStatus = "contacted"
	LeadInterested   LeadStatus = "interested"
	LeadConverted    LeadStatus = "converted"
)

// leadTransitions lists allowed forward moves. A qualified lead never
// regresses to enriched; disqualification is reachable from any pre-contact
// state.
var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadNew:        {LeadEnriched, LeadDisqualified},
	LeadEnriched:   {LeadQualified, LeadDisqualified, LeadContacted},
	LeadQualified:  {LeadDisqualified, LeadContacted},
	LeadContacted:  {LeadInterested, LeadConverted},
	LeadInterested: {LeadConverted},
}

// CanTransition reports whether from -> to is an allowed lead status change.
// Re-asserting the current status is always allowed (idempotent writes).
func (from LeadStatus) CanTransition(to LeadStatus) bool {
	if from == to {
		return true
	}
	for _, s := range leadTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Contractor is a contractor lead row. Tier 1 are internal verified
// contractors, Tier 2 prior-contact leads, Tier 3 freshly discovered cold
// leads. Verification fields are tri-state: nil means unknown.
type Contractor struct {
	ID                  string     `db:"id" json:"id"`
	CompanyName         string     `db:"company_name" json:"company_name"`
	Phone               string     `db:"phone" json:"phone"`
	Email               string     `db:"email" json:"email"`
	Location            string     `db:"location" json:"location"`
	Tier                int        `db:"tier" json:"tier"`
	LeadStatus          LeadStatus `db:"lead_status" json:"lead_status"`
	LeadScore           *float64   `db:"lead_score" json:"lead_score,omitempty"`
	LicenseVerified     *bool      `db:"license_verified" json:"license_verified,omitempty"`
	InsuranceVerified   *bool      `db:"insurance_verified" json:"insurance_verified,omitempty"`
	Rating              *float64   `db:"rating" json:"rating,omitempty"`
	ReviewCount         *int       `db:"review_count" json:"review_count,omitempty"`
	ContractorSize      string     `db:"contractor_size" json:"contractor_size"`
	Specialties         []string   `db:"specialties" json:"specialties"`
	QualificationScore  *float64   `db:"qualification_score" json:"qualification_score,omitempty"`
	QualificationReason *string    `db:"qualification_reason" json:"qualification_reason,omitempty"`
	QualifiedAt         *time.Time `db:"qualified_at" json:"qualified_at,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
