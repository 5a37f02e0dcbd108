package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/pkg/response"
)

type discoveryService interface {
	Search(ctx context.Context, filter models.DiscoveryFilter) (*dto.DiscoveryResult, bool, error)
	GetCreator(ctx context.Context, id string) (*models.Creator, error)
	GetCreatorByUsername(ctx context.Context, username string) (*models.Creator, error)
}

// DiscoveryHandler serves the public creator directory.
type DiscoveryHandler struct {
	service discoveryService
}

// NewDiscoveryHandler creates a new handler.
func NewDiscoveryHandler(svc discoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{service: svc}
}

// Search godoc
// @Summary Browse creators
// @Description Active, public creators filtered by niche, platform and follower range
// @Tags Discovery
// @Produce json
// @Param search query string false "Matches name, username or bio"
// @Param niche query string false "Niche"
// @Param platform query string false "Primary platform"
// @Param minFollowers query int false "Minimum followers"
// @Param maxFollowers query int false "Maximum followers"
// @Param sortBy query string false "followers_count, created_at or full_name"
// @Param sortOrder query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /creators [get]
func (h *DiscoveryHandler) Search(c *gin.Context) {
	filter := models.DiscoveryFilter{
		Search:    c.Query("search"),
		Niche:     c.Query("niche"),
		Platform:  c.Query("platform"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	var ok bool
	if filter.MinFollowers, ok = optionalQueryInt(c, "minFollowers"); !ok {
		return
	}
	if filter.MaxFollowers, ok = optionalQueryInt(c, "maxFollowers"); !ok {
		return
	}
	if filter.Page, ok = queryInt(c, "page"); !ok {
		return
	}
	if filter.Limit, ok = queryInt(c, "limit"); !ok {
		return
	}

	result, hit, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, cached(c, hit))
}

// Get godoc
// @Summary Public creator profile
// @Description Looks a creator up by id, or by username when the path is not an id
// @Tags Discovery
// @Produce json
// @Param ref path string true "Creator ID or username"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /creators/{ref} [get]
func (h *DiscoveryHandler) Get(c *gin.Context) {
	ref := c.Param("ref")
	var (
		creator *models.Creator
		err     error
	)
	if _, parseErr := uuid.Parse(ref); parseErr == nil {
		creator, err = h.service.GetCreator(c.Request.Context(), ref)
	} else {
		creator, err = h.service.GetCreatorByUsername(c.Request.Context(), ref)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, creator)
}
