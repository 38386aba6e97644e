package repository

import (
	"database/sql"
	"time"

	"github.com/rotisserie/eris"

	"github.com/instabids/outreach-backend/internal/model"
)

type ContactAttemptRepositoryInterface interface {
	Create(a *model.ContactAttempt) (bool, error)
	GetByID(id string) (*model.ContactAttempt, error)
	UpdateStatus(id, status, lastError string) error
	StatsByCampaign(campaignID string) (map[string]int, error)
}

type ContactAttemptRepository struct {
	DB *sql.DB
}

// Create inserts a contact attempt only if the contractor holds none for the
// campaign yet. Returns false when an attempt already exists; the unique
// (campaign_id, contractor_id) constraint makes the check race-safe, so a
// contractor is contacted at most once per campaign no matter how many
// execution passes run.
func (r *ContactAttemptRepository) Create(a *model.ContactAttempt) (bool, error) {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = "pending"
	}

	query := `
        INSERT INTO contact_attempts
            (id, campaign_id, contractor_id, channel, status, message, last_error, retry_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (campaign_id, contractor_id) DO NOTHING
    `
	res, err := r.DB.Exec(query,
		a.ID, a.CampaignID, a.ContractorID, a.Channel, a.Status,
		a.Message, a.LastError, a.RetryCount, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return false, eris.Wrap(err, "contact attempt create")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "contact attempt create: rows affected")
	}
	return n > 0, nil
}

func (r *ContactAttemptRepository) GetByID(id string) (*model.ContactAttempt, error) {
	query := `
        SELECT id, campaign_id, contractor_id, channel, status, message, last_error, retry_count, created_at, updated_at
        FROM contact_attempts
        WHERE id=$1
    `
	var a model.ContactAttempt
	err := r.DB.QueryRow(query, id).Scan(
		&a.ID, &a.CampaignID, &a.ContractorID, &a.Channel, &a.Status,
		&a.Message, &a.LastError, &a.RetryCount, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "contact attempt get")
	}
	return &a, nil
}

func (r *ContactAttemptRepository) UpdateStatus(id, status, lastError string) error {
	query := `UPDATE contact_attempts SET status=$1, last_error=$2, retry_count=retry_count+1, updated_at=NOW() WHERE id=$3`
	if _, err := r.DB.Exec(query, status, lastError, id); err != nil {
		return eris.Wrap(err, "contact attempt update status")
	}
	return nil
}

// StatsByCampaign returns attempt counts by delivery status for one campaign.
func (r *ContactAttemptRepository) StatsByCampaign(campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM contact_attempts WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, eris.Wrap(err, "contact attempt stats")
	}
	defer rows.Close()

	stats := map[string]int{"pending": 0, "sent": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "contact attempt stats: scan")
		}
		stats[status] = count
	}
	return stats, nil
}

var _ ContactAttemptRepositoryInterface = (*ContactAttemptRepository)(nil)
