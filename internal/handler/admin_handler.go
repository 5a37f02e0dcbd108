package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/internal/service"
	"github.com/noah-isme/collab-league-api/pkg/response"
)

type adminService interface {
	Overview(ctx context.Context, callerID string) (*dto.AdminOverview, bool, error)
	ListUsers(ctx context.Context, callerID string, filter models.UserFilter) (*service.UserPage, bool, error)
	ToggleCreatorActive(ctx context.Context, callerID, creatorID string) (*dto.ToggleResult, error)
	ToggleBusinessVerified(ctx context.Context, callerID, businessID string) (*dto.ToggleResult, error)
}

type campaignExporter interface {
	Campaigns(ctx context.Context, callerID string, req dto.CampaignExportRequest) (*dto.ExportFile, error)
}

// AdminHandler exposes the back-office.
type AdminHandler struct {
	service  adminService
	exporter campaignExporter
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(svc adminService, exporter campaignExporter) *AdminHandler {
	return &AdminHandler{service: svc, exporter: exporter}
}

// Overview godoc
// @Summary Back-office headline counts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	overview, hit, err := h.service.Overview(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil, cached(c, hit))
}

// Users godoc
// @Summary List accounts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "creator, business or admin"
// @Param search query string false "Email or display name"
// @Param sort_by query string false "email, created_at, display_name or last_login"
// @Param sort_order query string false "asc or desc"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) Users(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	page, pageSize, ok := pageParams(c)
	if !ok {
		return
	}
	filter := models.UserFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		PageSize:  pageSize,
	}
	if raw := c.Query("role"); raw != "" {
		role := models.Role(raw)
		filter.Role = &role
	}

	result, hit, err := h.service.ListUsers(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination, cached(c, hit))
}

// ToggleCreator godoc
// @Summary Ban or reinstate a creator
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Creator ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/creators/{id}/toggle-active [post]
func (h *AdminHandler) ToggleCreator(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "creator not found")
	if !ok {
		return
	}
	result, err := h.service.ToggleCreatorActive(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ToggleBusiness godoc
// @Summary Verify or unverify a business
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Business ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/businesses/{id}/toggle-verified [post]
func (h *AdminHandler) ToggleBusiness(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "business not found")
	if !ok {
		return
	}
	result, err := h.service.ToggleBusinessVerified(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ExportCampaigns godoc
// @Summary Download campaigns as CSV or PDF
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string true "csv or pdf"
// @Param status query string false "in_progress, completed or cancelled"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/campaigns/export [get]
func (h *AdminHandler) ExportCampaigns(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	req := dto.CampaignExportRequest{Format: c.Query("format")}
	if raw := c.Query("status"); raw != "" {
		status := models.CampaignStatus(raw)
		req.Status = &status
	}

	file, err := h.exporter.Campaigns(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}
