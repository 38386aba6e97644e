package repository

import (
	"database/sql"

	"github.com/rotisserie/eris"

	appErrors "github.com/instabids/outreach-backend/internal/errors"
	"github.com/instabids/outreach-backend/internal/model"
)

// BidCardStore exposes the bid counts the check-in manager compares against
// expectations. Bid submission itself is owned by another service.
type BidCardStore interface {
	GetByID(id string) (*model.BidCard, error)
	GetActualBidCount(bidCardID string) (int, error)
}

type BidCardRepository struct {
	DB *sql.DB
}

func (r *BidCardRepository) GetByID(id string) (*model.BidCard, error) {
	query := `
        SELECT id, project_type, location, bids_needed, bids_received, created_at
        FROM bid_cards WHERE id=$1
    `
	var b model.BidCard
	err := r.DB.QueryRow(query, id).Scan(&b.ID, &b.ProjectType, &b.Location, &b.BidsNeeded, &b.BidsReceived, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewBidCardNotFound(id)
		}
		return nil, eris.Wrap(err, "bid card get")
	}
	return &b, nil
}

// GetActualBidCount reads the live bid count. A missing bid card is an error,
// not zero bids: zero would drive needless escalation on a misconfigured
// campaign.
func (r *BidCardRepository) GetActualBidCount(bidCardID string) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT bids_received FROM bid_cards WHERE id=$1`, bidCardID).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.NewBidCardNotFound(bidCardID)
		}
		return 0, eris.Wrap(err, "bid card count")
	}
	return count, nil
}

var _ BidCardStore = (*BidCardRepository)(nil)
