package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/internal/service"
	"github.com/noah-isme/collab-league-api/pkg/response"
)

type campaignService interface {
	List(ctx context.Context, callerID string, filter models.CampaignFilter) (*service.CampaignPage, bool, error)
	Get(ctx context.Context, callerID, campaignID string) (*models.CampaignView, error)
	UpdateStatus(ctx context.Context, callerID, campaignID string, input models.UpdateCampaignStatusInput) (*models.CampaignView, error)
	AddNote(ctx context.Context, callerID, campaignID string, input models.AddNoteInput) (*models.CampaignNote, error)
	ListNotes(ctx context.Context, callerID, campaignID string) ([]models.CampaignNote, error)
}

// CampaignHandler exposes accepted requests as campaigns.
type CampaignHandler struct {
	service campaignService
}

// NewCampaignHandler creates a new handler.
func NewCampaignHandler(svc campaignService) *CampaignHandler {
	return &CampaignHandler{service: svc}
}

// List godoc
// @Summary List campaigns
// @Description Campaigns the caller participates in. Admins see every campaign.
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param status query string false "in_progress, completed or cancelled"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	page, pageSize, ok := pageParams(c)
	if !ok {
		return
	}
	filter := models.CampaignFilter{Page: page, PageSize: pageSize}
	if raw := c.Query("status"); raw != "" {
		status := models.CampaignStatus(raw)
		filter.Status = &status
	}

	result, hit, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination, cached(c, hit))
}

// Get godoc
// @Summary Get a campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "campaign not found")
	if !ok {
		return
	}

	view, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// UpdateStatus godoc
// @Summary Complete or cancel a campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param payload body models.UpdateCampaignStatusInput true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /campaigns/{id}/status [patch]
func (h *CampaignHandler) UpdateStatus(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "campaign not found")
	if !ok {
		return
	}
	var input models.UpdateCampaignStatusInput
	if !bindJSON(c, &input, "invalid status payload") {
		return
	}

	view, err := h.service.UpdateStatus(c.Request.Context(), userID, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// AddNote godoc
// @Summary Add a campaign note
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param payload body models.AddNoteInput true "Note"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /campaigns/{id}/notes [post]
func (h *CampaignHandler) AddNote(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "campaign not found")
	if !ok {
		return
	}
	var input models.AddNoteInput
	if !bindJSON(c, &input, "invalid note payload") {
		return
	}

	note, err := h.service.AddNote(c.Request.Context(), userID, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// ListNotes godoc
// @Summary List campaign notes, oldest first
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/notes [get]
func (h *CampaignHandler) ListNotes(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "campaign not found")
	if !ok {
		return
	}

	notes, err := h.service.ListNotes(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notes)
}
