// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrCheckInNotFound means a campaign has no pending check-in left (all
// completed, or the campaign itself is absent). A normal terminal condition
// for cron callers.
type ErrCheckInNotFound struct {
	CampaignID string
}

func (e *ErrCheckInNotFound) Error() string {
	return fmt.Sprintf("no pending check-in for campaign %s", e.CampaignID)
}

func NewCheckInNotFound(campaignID string) error {
	return &ErrCheckInNotFound{CampaignID: campaignID}
}

// ErrCheckInNotDue means the next check-in exists but its scheduled time has
// not arrived and nothing has completed yet.
type ErrCheckInNotDue struct {
	CampaignID string
}

func (e *ErrCheckInNotDue) Error() string {
	return fmt.Sprintf("next check-in for campaign %s is not due yet", e.CampaignID)
}

// ErrContractorNotFound is returned for a missing contractor row.
type ErrContractorNotFound struct {
	ContractorID string
}

func (e *ErrContractorNotFound) Error() string {
	return fmt.Sprintf("contractor with ID %s not found", e.ContractorID)
}

// ErrBidCardNotFound is returned for a missing bid card row. A dangling
// bid_card_id means the campaign is misconfigured; the bid count is never
// reported as zero in that case.
type ErrBidCardNotFound struct {
	BidCardID string
}

func (e *ErrBidCardNotFound) Error() string {
	return fmt.Sprintf("bid card with ID %s not found", e.BidCardID)
}

func NewBidCardNotFound(id string) error {
	return &ErrBidCardNotFound{BidCardID: id}
}

// ErrNoContractorsAvailable means selection produced zero contractors across
// all three tiers; the campaign is left uncreated.
type ErrNoContractorsAvailable struct {
	ProjectType string
	Location    string
}

func (e *ErrNoContractorsAvailable) Error() string {
	return fmt.Sprintf("no contractors available for %s in %s", e.ProjectType, e.Location)
}

// ErrInvalidRequest flags malformed campaign request parameters.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// ErrUpstreamUnavailable wraps failures of external collaborators (contractor
// pool, bid card store, outreach channel). Recoverable by retrying the
// sub-operation; never silently treated as zero availability.
type ErrUpstreamUnavailable struct {
	Op  string
	Err error
}

func (e *ErrUpstreamUnavailable) Error() string {
	return fmt.Sprintf("upstream unavailable during %s: %v", e.Op, e.Err)
}

func (e *ErrUpstreamUnavailable) Unwrap() error { return e.Err }

// ErrIllegalTransition flags an attempted status change the transition table
// does not allow. Rejected and logged, never written.
type ErrIllegalTransition struct {
	Entity string
	From   string
	To     string
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal %s transition %s -> %s", e.Entity, e.From, e.To)
}

// ErrConcurrencyConflict means the exactly-once completion invariant was
// violated (a bug condition, not an expected race outcome).
type ErrConcurrencyConflict struct {
	Op string
}

func (e *ErrConcurrencyConflict) Error() string {
	return fmt.Sprintf("concurrency conflict during %s", e.Op)
}
