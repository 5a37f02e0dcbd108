package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/internal/service"
	"github.com/noah-isme/collab-league-api/pkg/response"
)

type requestService interface {
	Create(ctx context.Context, callerID string, input models.CreateRequestInput) (*models.RequestView, error)
	Respond(ctx context.Context, callerID, requestID string, input models.RespondRequestInput) (*models.RequestView, error)
	Cancel(ctx context.Context, callerID, requestID string) (*models.RequestView, error)
	Read(ctx context.Context, callerID, requestID string) (*models.RequestView, error)
	ListIncoming(ctx context.Context, callerID string, filter models.RequestFilter) (*service.RequestPage, bool, error)
	ListSent(ctx context.Context, callerID string, filter models.RequestFilter) (*service.RequestPage, bool, error)
}

// RequestHandler exposes the collaboration request lifecycle.
type RequestHandler struct {
	service requestService
}

// NewRequestHandler creates a new handler.
func NewRequestHandler(svc requestService) *RequestHandler {
	return &RequestHandler{service: svc}
}

// Create godoc
// @Summary Send a collaboration request
// @Description A business proposes a campaign to an active, public creator
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateRequestInput true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var input models.CreateRequestInput
	if !bindJSON(c, &input, "invalid request payload") {
		return
	}

	view, err := h.service.Create(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Respond godoc
// @Summary Accept or reject a request
// @Description The addressed creator decides on a pending request. Accepting opens the campaign.
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param payload body models.RespondRequestInput true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/respond [post]
func (h *RequestHandler) Respond(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "request not found")
	if !ok {
		return
	}
	var input models.RespondRequestInput
	if !bindJSON(c, &input, "invalid response payload") {
		return
	}

	view, err := h.service.Respond(c.Request.Context(), userID, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Cancel godoc
// @Summary Cancel a pending request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "request not found")
	if !ok {
		return
	}

	view, err := h.service.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Get godoc
// @Summary Get a request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "request not found")
	if !ok {
		return
	}

	view, err := h.service.Read(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Incoming godoc
// @Summary List requests addressed to the calling creator
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, accepted, rejected or cancelled"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests/incoming [get]
func (h *RequestHandler) Incoming(c *gin.Context) {
	h.list(c, h.service.ListIncoming)
}

// Sent godoc
// @Summary List requests sent by the calling business
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, accepted, rejected or cancelled"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests/sent [get]
func (h *RequestHandler) Sent(c *gin.Context) {
	h.list(c, h.service.ListSent)
}

type requestLister func(ctx context.Context, callerID string, filter models.RequestFilter) (*service.RequestPage, bool, error)

func (h *RequestHandler) list(c *gin.Context, fetch requestLister) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	page, pageSize, ok := pageParams(c)
	if !ok {
		return
	}
	filter := models.RequestFilter{Page: page, PageSize: pageSize}
	if raw := c.Query("status"); raw != "" {
		status := models.RequestStatus(raw)
		filter.Status = &status
	}

	result, hit, err := fetch(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination, cached(c, hit))
}
