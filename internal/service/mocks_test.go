package service

import (
	"fmt"
	"sort"
	"sync"
	"time"

	appErrors "github.com/instabids/outreach-backend/internal/errors"
	"github.com/instabids/outreach-backend/internal/model"
)

// --- Mock repositories ---

type mockCampaignRepo struct {
	mu         sync.Mutex
	campaigns  map[string]*model.Campaign
	selections map[string][]model.ContractorSelection
}

func newMockCampaignRepo() *mockCampaignRepo {
	return &mockCampaignRepo{
		campaigns:  map[string]*model.Campaign{},
		selections: map[string][]model.ContractorSelection{},
	}
}

func (m *mockCampaignRepo) Create(c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.CreatedAt = time.Now()
	copied := *c
	m.campaigns[c.ID] = &copied
	return nil
}

func (m *mockCampaignRepo) GetByID(id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	copied := *c
	return &copied, nil
}

func (m *mockCampaignRepo) UpdateStatus(campaignID string, from, to model.CampaignStatus) error {
	if !from.CanTransition(to) {
		return &appErrors.ErrIllegalTransition{Entity: "campaign", From: string(from), To: string(to)}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[campaignID]
	if !ok || c.Status != from {
		return &appErrors.ErrConcurrencyConflict{Op: "status update"}
	}
	c.Status = to
	return nil
}

func (m *mockCampaignRepo) MarkStarted(campaignID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[campaignID]; ok {
		c.StartedAt = &at
	}
	return nil
}

func (m *mockCampaignRepo) MarkEscalated(campaignID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[campaignID]; ok {
		c.Escalated = true
	}
	return nil
}

func (m *mockCampaignRepo) ListCampaigns(offset, limit int, status, urgency string) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []*model.Campaign{}
	for _, c := range m.campaigns {
		if status != "" && string(c.Status) != status {
			continue
		}
		copied := *c
		all = append(all, &copied)
	}
	return all, len(all), nil
}

func (m *mockCampaignRepo) AddSelections(campaignID string, selections []model.ContractorSelection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := map[string]bool{}
	for _, sel := range m.selections[campaignID] {
		existing[sel.ContractorID] = true
	}
	for _, sel := range selections {
		if existing[sel.ContractorID] {
			continue
		}
		sel.CampaignID = campaignID
		m.selections[campaignID] = append(m.selections[campaignID], sel)
		existing[sel.ContractorID] = true
	}
	return nil
}

func (m *mockCampaignRepo) GetSelections(campaignID string) ([]model.ContractorSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ContractorSelection{}, m.selections[campaignID]...), nil
}

type mockCheckInRepo struct {
	mu       sync.Mutex
	checkIns []model.CheckIn
}

func (m *mockCheckInRepo) CreateCheckIns(checkIns []model.CheckIn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkIns = append(m.checkIns, checkIns...)
	return nil
}

func (m *mockCheckInRepo) NextPending(campaignID string) (*model.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var next *model.CheckIn
	for i := range m.checkIns {
		ci := &m.checkIns[i]
		if ci.CampaignID != campaignID || ci.Completed() {
			continue
		}
		if next == nil || ci.ScheduledAt.Before(next.ScheduledAt) {
			next = ci
		}
	}
	if next == nil {
		return nil, nil
	}
	copied := *next
	return &copied, nil
}

func (m *mockCheckInRepo) LatestCompleted(campaignID string) (*model.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.CheckIn
	for i := range m.checkIns {
		ci := &m.checkIns[i]
		if ci.CampaignID != campaignID || !ci.Completed() {
			continue
		}
		if latest == nil || ci.ScheduledAt.After(latest.ScheduledAt) {
			latest = ci
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (m *mockCheckInRepo) ListByCampaign(campaignID string) ([]model.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.CheckIn{}
	for _, ci := range m.checkIns {
		if ci.CampaignID == campaignID {
			out = append(out, ci)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (m *mockCheckInRepo) Complete(checkInID string, actualBids int, onTrack, escalationNeeded bool, actionsTaken string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.checkIns {
		ci := &m.checkIns[i]
		if ci.ID != checkInID {
			continue
		}
		if ci.Completed() {
			return false, nil
		}
		now := time.Now()
		ci.CompletedAt = &now
		ci.ActualBids = actualBids
		ci.OnTrack = onTrack
		ci.EscalationNeeded = escalationNeeded
		ci.ActionsTaken = actionsTaken
		return true, nil
	}
	return false, nil
}

func (m *mockCheckInRepo) RecordActions(checkInID, actionsTaken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.checkIns {
		if m.checkIns[i].ID == checkInID {
			m.checkIns[i].ActionsTaken = actionsTaken
		}
	}
	return nil
}

func (m *mockCheckInRepo) ListOverdueCampaigns(now time.Time, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	ids := []string{}
	for _, ci := range m.checkIns {
		if ci.Completed() || ci.ScheduledAt.After(now) || seen[ci.CampaignID] {
			continue
		}
		seen[ci.CampaignID] = true
		ids = append(ids, ci.CampaignID)
	}
	return ids, nil
}

type mockPool struct {
	mu          sync.Mutex
	contractors []model.Contractor
	availErr    error
	updates     []string
}

func (m *mockPool) GetAvailability(projectType, location string, radiusMiles int) (model.TierAvailability, error) {
	if m.availErr != nil {
		return model.TierAvailability{}, m.availErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var avail model.TierAvailability
	for _, c := range m.contractors {
		if c.LeadStatus == model.LeadDisqualified {
			continue
		}
		switch c.Tier {
		case 1:
			avail.Tier1Count++
		case 2:
			avail.Tier2Count++
		case 3:
			avail.Tier3Count++
		}
	}
	return avail, nil
}

func (m *mockPool) SelectCandidates(tier, count int, projectType, location string, excludeIDs []string) ([]model.Contractor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	excluded := map[string]bool{}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	out := []model.Contractor{}
	for _, c := range m.contractors {
		if len(out) >= count {
			break
		}
		if c.Tier != tier || excluded[c.ID] || c.LeadStatus == model.LeadDisqualified {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockPool) GetByID(id string) (*model.Contractor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.contractors {
		if m.contractors[i].ID == id {
			copied := m.contractors[i]
			return &copied, nil
		}
	}
	return nil, &appErrors.ErrContractorNotFound{ContractorID: id}
}

func (m *mockPool) UpdateQualification(id string, status model.LeadStatus, score float64, reason *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, fmt.Sprintf("%s:%s", id, status))
	for i := range m.contractors {
		if m.contractors[i].ID == id {
			m.contractors[i].LeadStatus = status
		}
	}
	return nil
}

type mockBidCards struct {
	counts map[string]int
	err    error
}

func (m *mockBidCards) GetByID(id string) (*model.BidCard, error) {
	return &model.BidCard{ID: id, BidsReceived: m.counts[id]}, nil
}

func (m *mockBidCards) GetActualBidCount(bidCardID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[bidCardID], nil
}

type mockOutreach struct {
	mu       sync.Mutex
	contacts []string // campaignID:contractorID:channel
}

func (m *mockOutreach) Contact(campaignID string, contractor *model.Contractor, channel, message string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, fmt.Sprintf("%s:%s:%s", campaignID, contractor.ID, channel))
	return fmt.Sprintf("attempt-%d", len(m.contacts)), nil
}

func (m *mockOutreach) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contacts)
}

type mockAttempts struct {
	mu      sync.Mutex
	created map[string]bool // campaignID:contractorID
}

func (m *mockAttempts) Create(a *model.ContactAttempt) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.created == nil {
		m.created = map[string]bool{}
	}
	key := a.CampaignID + ":" + a.ContractorID
	if m.created[key] {
		return false, nil
	}
	m.created[key] = true
	return true, nil
}

func (m *mockAttempts) GetByID(id string) (*model.ContactAttempt, error) { return nil, nil }
func (m *mockAttempts) UpdateStatus(id, status, lastError string) error  { return nil }
func (m *mockAttempts) StatsByCampaign(campaignID string) (map[string]int, error) {
	return map[string]int{"pending": 0, "sent": 0, "failed": 0}, nil
}

type mockQueue struct {
	mu        sync.Mutex
	published []string
}

func (m *mockQueue) Publish(topic string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, fmt.Sprintf("%s:%v", topic, payload))
	return nil
}

func (m *mockQueue) Subscribe(topic string, handler func(payload any) error) error { return nil }

// --- Fixtures ---

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func qualifiedContractor(id string, tier int) model.Contractor {
	return model.Contractor{
		ID:                id,
		CompanyName:       "Contractor " + id,
		Phone:             "+15550000",
		Email:             id + "@example.com",
		Location:          "austin-tx",
		Tier:              tier,
		LeadStatus:        model.LeadQualified,
		LeadScore:         floatPtr(95),
		LicenseVerified:   boolPtr(true),
		InsuranceVerified: boolPtr(true),
		Rating:            floatPtr(4.8),
		ReviewCount:       intPtr(50),
		Specialties:       []string{"plumbing"},
	}
}

func coldLead(id string) model.Contractor {
	return model.Contractor{
		ID:          id,
		CompanyName: "Cold Lead " + id,
		Phone:       "+15550001",
		Email:       id + "@example.com",
		Location:    "austin-tx",
		Tier:        3,
		LeadStatus:  model.LeadEnriched,
		LeadScore:   floatPtr(70),
		Rating:      floatPtr(4.0),
		ReviewCount: intPtr(6),
		Specialties: []string{"plumbing"},
	}
}
