// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	appErrors "github.com/instabids/outreach-backend/internal/errors"
	"github.com/instabids/outreach-backend/internal/model"
	"github.com/instabids/outreach-backend/internal/service"
)

// CampaignHandler holds the dependencies for campaign-related HTTP handlers
type CampaignHandler struct {
	Orchestrator *service.CampaignOrchestrator
	CheckIns     *service.CheckInManager
	Campaigns    CampaignLister
	Log          zerolog.Logger
}

// CampaignLister is the slice of the campaign repository the list endpoint
// needs.
type CampaignLister interface {
	ListCampaigns(offset, limit int, status, urgency string) ([]*model.Campaign, int, error)
}

// CreateCampaignHandler handles creating a new intelligent campaign
func (h *CampaignHandler) CreateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Orchestrator.CreateIntelligentCampaign(req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

// ExecuteCampaignHandler starts background outreach and monitoring
func (h *CampaignHandler) ExecuteCampaignHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Orchestrator.ExecuteCampaignWithMonitoring(id); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"campaign_id": id, "status": "running"})
}

// GetCampaignHandler returns status and performance metrics for one campaign
func (h *CampaignHandler) GetCampaignHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := h.Orchestrator.GetCampaignStatus(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// CheckInHandler triggers the next due check-in for a campaign
func (h *CampaignHandler) CheckInHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.CheckIns.PerformCheckIn(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ListCampaignsHandler returns a paginated list of campaigns
func (h *CampaignHandler) ListCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	page := 1
	pageSize := 20

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && ps > 0 {
		pageSize = ps
	}
	if pageSize > 100 {
		pageSize = 100
	}

	status := r.URL.Query().Get("status")
	urgency := r.URL.Query().Get("urgency")
	offset := (page - 1) * pageSize

	campaigns, total, err := h.Campaigns.ListCampaigns(offset, pageSize, status, urgency)
	if err != nil {
		h.writeError(w, err)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	response := map[string]interface{}{
		"data": campaigns,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// writeError maps the typed error taxonomy onto HTTP status codes.
func (h *CampaignHandler) writeError(w http.ResponseWriter, err error) {
	var (
		notFound     *appErrors.ErrCampaignNotFound
		noCheckIn    *appErrors.ErrCheckInNotFound
		notDue       *appErrors.ErrCheckInNotDue
		noContractor *appErrors.ErrContractorNotFound
		noBidCard    *appErrors.ErrBidCardNotFound
		invalid      *appErrors.ErrInvalidRequest
		noPool       *appErrors.ErrNoContractorsAvailable
		upstream     *appErrors.ErrUpstreamUnavailable
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &noCheckIn), errors.As(err, &noContractor),
		errors.As(err, &noBidCard):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &invalid), errors.As(err, &notDue):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &noPool):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &upstream):
		h.Log.Error().Err(err).Msg("upstream unavailable")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		h.Log.Error().Err(err).Msg("request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
