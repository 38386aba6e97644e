// internal/model/bid_card.go
package model

import "time"

// BidCard tracks bids received for a homeowner project. Bid submission is
// owned by another service; this side only reads counts.
type BidCard struct {
	ID           string    `db:"id" json:"id"`
	ProjectType  string    `db:"project_type" json:"project_type"`
	Location     string    `db:"location" json:"location"`
	BidsNeeded   int       `db:"bids_needed" json:"bids_needed"`
	BidsReceived int       `db:"bids_received" json:"bids_received"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
