package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	appErrors "github.com/instabids/outreach-backend/internal/errors"
	"github.com/instabids/outreach-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id string) (*model.Campaign, error)
	UpdateStatus(campaignID string, from, to model.CampaignStatus) error
	MarkStarted(campaignID string, at time.Time) error
	MarkEscalated(campaignID string) error
	ListCampaigns(offset, limit int, status, urgency string) ([]*model.Campaign, int, error)

	// Contractor selections
	AddSelections(campaignID string, selections []model.ContractorSelection) error
	GetSelections(campaignID string) ([]model.ContractorSelection, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignCreated
	}

	strategyJSON, err := json.Marshal(c.Strategy)
	if err != nil {
		return eris.Wrap(err, "campaign create: encode strategy")
	}

	query := `
        INSERT INTO campaigns
            (id, bid_card_id, project_type, location, radius_miles, bids_needed,
             timeline_hours, project_urgency, strategy, status, escalated, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err = r.DB.Exec(query,
		c.ID, c.BidCardID, c.ProjectType, c.Location, c.RadiusMiles, c.BidsNeeded,
		c.TimelineHours, c.ProjectUrgency, strategyJSON, c.Status, c.Escalated, c.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "campaign create: insert")
	}
	return nil
}

func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
	query := `
        SELECT id, bid_card_id, project_type, location, radius_miles, bids_needed,
               timeline_hours, project_urgency, strategy, status, escalated,
               started_at, created_at, updated_at
        FROM campaigns WHERE id=$1
    `
	var c model.Campaign
	var strategyJSON []byte
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID, &c.BidCardID, &c.ProjectType, &c.Location, &c.RadiusMiles, &c.BidsNeeded,
		&c.TimelineHours, &c.ProjectUrgency, &strategyJSON, &c.Status, &c.Escalated,
		&c.StartedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, eris.Wrap(err, "campaign get")
	}
	if err := json.Unmarshal(strategyJSON, &c.Strategy); err != nil {
		return nil, eris.Wrap(err, "campaign get: decode strategy")
	}
	return &c, nil
}

// UpdateStatus writes a status change only if the transition table allows it
// and the row still holds the expected current status.
func (r *CampaignRepository) UpdateStatus(campaignID string, from, to model.CampaignStatus) error {
	if !from.CanTransition(to) {
		return &appErrors.ErrIllegalTransition{Entity: "campaign", From: string(from), To: string(to)}
	}
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`
	res, err := r.DB.Exec(query, to, time.Now(), campaignID, from)
	if err != nil {
		return eris.Wrap(err, "campaign update status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "campaign update status: rows affected")
	}
	if n == 0 {
		return &appErrors.ErrConcurrencyConflict{Op: fmt.Sprintf("campaign %s status %s -> %s", campaignID, from, to)}
	}
	return nil
}

func (r *CampaignRepository) MarkStarted(campaignID string, at time.Time) error {
	query := `UPDATE campaigns SET started_at=$1, updated_at=$1 WHERE id=$2`
	_, err := r.DB.Exec(query, at, campaignID)
	if err != nil {
		return eris.Wrap(err, "campaign mark started")
	}
	return nil
}

// MarkEscalated flips the internal escalation flag. External status stays
// running.
func (r *CampaignRepository) MarkEscalated(campaignID string) error {
	query := `UPDATE campaigns SET escalated=TRUE, updated_at=$1 WHERE id=$2`
	_, err := r.DB.Exec(query, time.Now(), campaignID)
	if err != nil {
		return eris.Wrap(err, "campaign mark escalated")
	}
	return nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status, urgency string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT id, bid_card_id, project_type, location, radius_miles, bids_needed,
                     timeline_hours, project_urgency, strategy, status, escalated,
                     started_at, created_at, updated_at
              FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}
	if urgency != "" {
		query += fmt.Sprintf(" AND project_urgency=$%d", argPos)
		args = append(args, urgency)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "campaign list")
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		var strategyJSON []byte
		if err := rows.Scan(
			&c.ID, &c.BidCardID, &c.ProjectType, &c.Location, &c.RadiusMiles, &c.BidsNeeded,
			&c.TimelineHours, &c.ProjectUrgency, &strategyJSON, &c.Status, &c.Escalated,
			&c.StartedAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, eris.Wrap(err, "campaign list: scan")
		}
		if err := json.Unmarshal(strategyJSON, &c.Strategy); err != nil {
			return nil, 0, eris.Wrap(err, "campaign list: decode strategy")
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	argPosCount := 1
	if status != "" {
		countQuery += fmt.Sprintf(" AND status=$%d", argPosCount)
		argsCount = append(argsCount, status)
		argPosCount++
	}
	if urgency != "" {
		countQuery += fmt.Sprintf(" AND project_urgency=$%d", argPosCount)
		argsCount = append(argsCount, urgency)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "campaign list: count")
	}

	return campaigns, total, nil
}

// ====================== Contractor selections ======================

// AddSelections inserts selection rows, skipping contractors already selected
// for the campaign (a contractor is contacted at most once per campaign).
func (r *CampaignRepository) AddSelections(campaignID string, selections []model.ContractorSelection) error {
	query := `
        INSERT INTO campaign_contractors (campaign_id, contractor_id, tier, via_escalation, added_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (campaign_id, contractor_id) DO NOTHING
    `
	for _, sel := range selections {
		addedAt := sel.AddedAt
		if addedAt.IsZero() {
			addedAt = time.Now()
		}
		if _, err := r.DB.Exec(query, campaignID, sel.ContractorID, sel.Tier, sel.ViaEscalation, addedAt); err != nil {
			return eris.Wrapf(err, "campaign add selection %s", sel.ContractorID)
		}
	}
	return nil
}

func (r *CampaignRepository) GetSelections(campaignID string) ([]model.ContractorSelection, error) {
	query := `
        SELECT campaign_id, contractor_id, tier, via_escalation, added_at
        FROM campaign_contractors
        WHERE campaign_id=$1
        ORDER BY added_at, contractor_id
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, eris.Wrap(err, "campaign get selections")
	}
	defer rows.Close()

	selections := []model.ContractorSelection{}
	for rows.Next() {
		var sel model.ContractorSelection
		if err := rows.Scan(&sel.CampaignID, &sel.ContractorID, &sel.Tier, &sel.ViaEscalation, &sel.AddedAt); err != nil {
			return nil, eris.Wrap(err, "campaign get selections: scan")
		}
		selections = append(selections, sel)
	}
	return selections, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
