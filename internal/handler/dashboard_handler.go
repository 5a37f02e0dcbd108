package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/pkg/response"
)

type dashboardService interface {
	Get(ctx context.Context, callerID string) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler serves the per-role dashboard.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Get godoc
// @Summary Dashboard
// @Description Role specific counters and the recent activity feed
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	resp, hit, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil, cached(c, hit))
}
