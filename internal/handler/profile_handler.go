package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/pkg/response"
)

type profileService interface {
	Get(ctx context.Context, userID string) (*models.ProfileDetails, error)
	Completion(ctx context.Context, userID string) (*dto.ProfileCompletion, error)
	CreateCreator(ctx context.Context, userID string, input models.CreatorProfileInput) (*models.Creator, error)
	UpdateCreator(ctx context.Context, userID string, input models.CreatorProfileInput) (*models.Creator, error)
	CreateBusiness(ctx context.Context, userID string, input models.BusinessProfileInput) (*models.Business, error)
	UpdateBusiness(ctx context.Context, userID string, input models.BusinessProfileInput) (*models.Business, error)
}

// ProfileHandler serves onboarding and profile edits.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(svc profileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// Get godoc
// @Summary Get own profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	details, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, details)
}

// Completion godoc
// @Summary Onboarding state
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /profile/completion [get]
func (h *ProfileHandler) Completion(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	completion, err := h.service.Completion(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, completion)
}

// CreateCreator godoc
// @Summary Complete creator onboarding
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreatorProfileInput true "Creator profile"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /profile/creator [post]
func (h *ProfileHandler) CreateCreator(c *gin.Context) {
	h.creator(c, h.service.CreateCreator, true)
}

// UpdateCreator godoc
// @Summary Edit creator profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreatorProfileInput true "Creator profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile/creator [put]
func (h *ProfileHandler) UpdateCreator(c *gin.Context) {
	h.creator(c, h.service.UpdateCreator, false)
}

// CreateBusiness godoc
// @Summary Complete business onboarding
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.BusinessProfileInput true "Business profile"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /profile/business [post]
func (h *ProfileHandler) CreateBusiness(c *gin.Context) {
	h.business(c, h.service.CreateBusiness, true)
}

// UpdateBusiness godoc
// @Summary Edit business profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.BusinessProfileInput true "Business profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile/business [put]
func (h *ProfileHandler) UpdateBusiness(c *gin.Context) {
	h.business(c, h.service.UpdateBusiness, false)
}

func (h *ProfileHandler) creator(c *gin.Context, save func(context.Context, string, models.CreatorProfileInput) (*models.Creator, error), created bool) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var input models.CreatorProfileInput
	if !bindJSON(c, &input, "invalid creator profile") {
		return
	}
	creator, err := save(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, creator)
		return
	}
	response.OK(c, creator)
}

func (h *ProfileHandler) business(c *gin.Context, save func(context.Context, string, models.BusinessProfileInput) (*models.Business, error), created bool) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var input models.BusinessProfileInput
	if !bindJSON(c, &input, "invalid business profile") {
		return
	}
	business, err := save(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, business)
		return
	}
	response.OK(c, business)
}
