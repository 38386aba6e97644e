package repository

import (
	"database/sql"
	"time"

	"github.com/rotisserie/eris"

	"github.com/instabids/outreach-backend/internal/model"
)

type CheckInRepositoryInterface interface {
	CreateCheckIns(checkIns []model.CheckIn) error
	NextPending(campaignID string) (*model.CheckIn, error)
	LatestCompleted(campaignID string) (*model.CheckIn, error)
	ListByCampaign(campaignID string) ([]model.CheckIn, error)
	Complete(checkInID string, actualBids int, onTrack, escalationNeeded bool, actionsTaken string) (bool, error)
	RecordActions(checkInID, actionsTaken string) error
	ListOverdueCampaigns(now time.Time, limit int) ([]string, error)
}

type CheckInRepository struct {
	DB *sql.DB
}

func (r *CheckInRepository) CreateCheckIns(checkIns []model.CheckIn) error {
	query := `
        INSERT INTO campaign_check_ins
            (id, campaign_id, check_in_number, scheduled_at, expected_bids)
        VALUES ($1, $2, $3, $4, $5)
    `
	for _, ci := range checkIns {
		if _, err := r.DB.Exec(query, ci.ID, ci.CampaignID, ci.CheckInNumber, ci.ScheduledAt, ci.ExpectedBids); err != nil {
			return eris.Wrapf(err, "check-in create #%d", ci.CheckInNumber)
		}
	}
	return nil
}

// NextPending returns the earliest incomplete check-in for the campaign, or
// nil when every check-in has completed. Check-ins always execute in
// scheduled order; an overdue one is processed before any later one.
func (r *CheckInRepository) NextPending(campaignID string) (*model.CheckIn, error) {
	query := `
        SELECT id, campaign_id, check_in_number, scheduled_at, completed_at,
               expected_bids, actual_bids, on_track, escalation_needed, actions_taken
        FROM campaign_check_ins
        WHERE campaign_id=$1 AND completed_at IS NULL
        ORDER BY scheduled_at
        LIMIT 1
    `
	return r.scanOne(r.DB.QueryRow(query, campaignID))
}

func (r *CheckInRepository) LatestCompleted(campaignID string) (*model.CheckIn, error) {
	query := `
        SELECT id, campaign_id, check_in_number, scheduled_at, completed_at,
               expected_bids, actual_bids, on_track, escalation_needed, actions_taken
        FROM campaign_check_ins
        WHERE campaign_id=$1 AND completed_at IS NOT NULL
        ORDER BY scheduled_at DESC
        LIMIT 1
    `
	return r.scanOne(r.DB.QueryRow(query, campaignID))
}

func (r *CheckInRepository) ListByCampaign(campaignID string) ([]model.CheckIn, error) {
	query := `
        SELECT id, campaign_id, check_in_number, scheduled_at, completed_at,
               expected_bids, actual_bids, on_track, escalation_needed, actions_taken
        FROM campaign_check_ins
        WHERE campaign_id=$1
        ORDER BY scheduled_at
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, eris.Wrap(err, "check-in list")
	}
	defer rows.Close()

	checkIns := []model.CheckIn{}
	for rows.Next() {
		var ci model.CheckIn
		var actions sql.NullString
		if err := rows.Scan(
			&ci.ID, &ci.CampaignID, &ci.CheckInNumber, &ci.ScheduledAt, &ci.CompletedAt,
			&ci.ExpectedBids, &ci.ActualBids, &ci.OnTrack, &ci.EscalationNeeded, &actions,
		); err != nil {
			return nil, eris.Wrap(err, "check-in list: scan")
		}
		ci.ActionsTaken = actions.String
		checkIns = append(checkIns, ci)
	}
	return checkIns, nil
}

// Complete mutates a check-in exactly once. The completed_at IS NULL guard
// makes concurrent completions resolve to a single winner; the caller gets
// false when another writer got there first. Callers use this as the claim
// before running escalation side effects.
func (r *CheckInRepository) Complete(checkInID string, actualBids int, onTrack, escalationNeeded bool, actionsTaken string) (bool, error) {
	query := `
        UPDATE campaign_check_ins
        SET completed_at=$1, actual_bids=$2, on_track=$3, escalation_needed=$4, actions_taken=$5
        WHERE id=$6 AND completed_at IS NULL
    `
	res, err := r.DB.Exec(query, time.Now(), actualBids, onTrack, escalationNeeded, actionsTaken, checkInID)
	if err != nil {
		return false, eris.Wrap(err, "check-in complete")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "check-in complete: rows affected")
	}
	return n > 0, nil
}

// RecordActions fills in the action log after the escalation the claimed
// check-in triggered has finished.
func (r *CheckInRepository) RecordActions(checkInID, actionsTaken string) error {
	query := `UPDATE campaign_check_ins SET actions_taken=$1 WHERE id=$2`
	if _, err := r.DB.Exec(query, actionsTaken, checkInID); err != nil {
		return eris.Wrap(err, "check-in record actions")
	}
	return nil
}

// ListOverdueCampaigns returns campaign IDs with an incomplete check-in whose
// scheduled time has passed, earliest first. Used by the worker's scan loop
// to recover missed wall-clock triggers after a restart.
func (r *CheckInRepository) ListOverdueCampaigns(now time.Time, limit int) ([]string, error) {
	query := `
        SELECT DISTINCT ON (campaign_id) campaign_id
        FROM campaign_check_ins
        WHERE completed_at IS NULL AND scheduled_at <= $1
        ORDER BY campaign_id, scheduled_at
        LIMIT $2
    `
	rows, err := r.DB.Query(query, now, limit)
	if err != nil {
		return nil, eris.Wrap(err, "check-in list overdue")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "check-in list overdue: scan")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *CheckInRepository) scanOne(row *sql.Row) (*model.CheckIn, error) {
	var ci model.CheckIn
	var actions sql.NullString
	err := row.Scan(
		&ci.ID, &ci.CampaignID, &ci.CheckInNumber, &ci.ScheduledAt, &ci.CompletedAt,
		&ci.ExpectedBids, &ci.ActualBids, &ci.OnTrack, &ci.EscalationNeeded, &actions,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "check-in scan")
	}
	ci.ActionsTaken = actions.String
	return &ci, nil
}

var _ CheckInRepositoryInterface = (*CheckInRepository)(nil)
