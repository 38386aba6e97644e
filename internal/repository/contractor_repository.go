package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"

	appErrors "github.com/instabids/outreach-backend/internal/errors"
	"github.com/instabids/outreach-backend/internal/model"
)

// ContractorPoolSource is the contractor discovery surface the orchestrator
// consumes: tier availability counts and candidate selection. Backed here by
// the contractors table; Tier 3 rows land in the same table via the discovery
// scraper pipeline.
type ContractorPoolSource interface {
	GetAvailability(projectType, location string, radiusMiles int) (model.TierAvailability, error)
	SelectCandidates(tier, count int, projectType, location string, excludeIDs []string) ([]model.Contractor, error)
	GetByID(id string) (*model.Contractor, error)
	UpdateQualification(id string, status model.LeadStatus, score float64, reason *string) error
}

type ContractorRepository struct {
	DB *sql.DB
}

const contractorColumns = `
    id, company_name, phone, email, location, tier, lead_status, lead_score,
    license_verified, insurance_verified, rating, review_count, contractor_size,
    specialties, qualification_score, qualification_reason, qualified_at,
    created_at, updated_at
`

// GetAvailability counts selectable contractors per tier for a project type
// and location. Disqualified leads are excluded from every tier. Radius is
// resolved upstream into the location match; the parameter is kept for the
// pool-source contract.
func (r *ContractorRepository) GetAvailability(projectType, location string, radiusMiles int) (model.TierAvailability, error) {
	query := `
        SELECT tier, COUNT(*)
        FROM contractors
        WHERE $1 = ANY(specialties)
          AND location = $2
          AND lead_status <> 'disqualified'
        GROUP BY tier
    `
	rows, err := r.DB.Query(query, projectType, location)
	if err != nil {
		return model.TierAvailability{}, eris.Wrap(err, "contractor availability")
	}
	defer rows.Close()

	var avail model.TierAvailability
	for rows.Next() {
		var tier, count int
		if err := rows.Scan(&tier, &count); err != nil {
			return model.TierAvailability{}, eris.Wrap(err, "contractor availability: scan")
		}
		switch tier {
		case 1:
			avail.Tier1Count = count
		case 2:
			avail.Tier2Count = count
		case 3:
			avail.Tier3Count = count
		}
	}
	return avail, nil
}

// SelectCandidates fetches up to count selectable contractors from one tier,
// best lead score first. excludeIDs keeps escalation passes from re-selecting
// contractors the campaign already holds.
func (r *ContractorRepository) SelectCandidates(tier, count int, projectType, location string, excludeIDs []string) ([]model.Contractor, error) {
	if count <= 0 {
		return []model.Contractor{}, nil
	}
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	query := `
        SELECT ` + contractorColumns + `
        FROM contractors
        WHERE tier = $1
          AND $2 = ANY(specialties)
          AND location = $3
          AND lead_status <> 'disqualified'
          AND NOT (id = ANY($4))
        ORDER BY lead_score DESC NULLS LAST, created_at
        LIMIT $5
    `
	rows, err := r.DB.Query(query, tier, projectType, location, pq.Array(excludeIDs), count)
	if err != nil {
		return nil, eris.Wrapf(err, "contractor select tier %d", tier)
	}
	defer rows.Close()

	contractors := []model.Contractor{}
	for rows.Next() {
		c, err := scanContractor(rows)
		if err != nil {
			return nil, err
		}
		contractors = append(contractors, *c)
	}
	return contractors, nil
}

func (r *ContractorRepository) GetByID(id string) (*model.Contractor, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors WHERE id = $1`
	rows, err := r.DB.Query(query, id)
	if err != nil {
		return nil, eris.Wrap(err, "contractor get")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, &appErrors.ErrContractorNotFound{ContractorID: id}
	}
	return scanContractor(rows)
}

// UpdateQualification persists a qualification decision. The transition table
// guards the write: an illegal move (including qualified -> enriched
// regression) is rejected rather than written.
func (r *ContractorRepository) UpdateQualification(id string, status model.LeadStatus, score float64, reason *string) error {
	current, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if !current.LeadStatus.CanTransition(status) {
		return &appErrors.ErrIllegalTransition{Entity: "contractor", From: string(current.LeadStatus), To: string(status)}
	}

	now := time.Now()
	var qualifiedAt *time.Time
	if status == model.LeadQualified {
		qualifiedAt = &now
	}
	query := `
        UPDATE contractors
        SET lead_status=$1, qualification_score=$2, qualification_reason=$3,
            qualified_at=COALESCE($4, qualified_at), updated_at=$5
        WHERE id=$6
    `
	if _, err := r.DB.Exec(query, status, score, reason, qualifiedAt, now, id); err != nil {
		return eris.Wrap(err, "contractor update qualification")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContractor(row rowScanner) (*model.Contractor, error) {
	var c model.Contractor
	var specialties pq.StringArray
	err := row.Scan(
		&c.ID, &c.CompanyName, &c.Phone, &c.Email, &c.Location, &c.Tier, &c.LeadStatus,
		&c.LeadScore, &c.LicenseVerified, &c.InsuranceVerified, &c.Rating, &c.ReviewCount,
		&c.ContractorSize, &specialties, &c.QualificationScore, &c.QualificationReason,
		&c.QualifiedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "contractor scan")
	}
	c.Specialties = []string(specialties)
	return &c, nil
}

var _ ContractorPoolSource = (*ContractorRepository)(nil)
