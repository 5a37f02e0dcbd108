package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/internal/repository"
	"github.com/noah-isme/collab-league-api/pkg/sanitize"
)

const (
	campaignResource = "campaign"
	campaignEntity   = "campaign"
	noteEntity       = "note"
)

type campaignStore interface {
	GetByID(ctx context.Context, id string) (*models.CollaborationRequest, error)
	GetDetail(ctx context.Context, id string) (*models.RequestDetail, error)
	ListCampaigns(ctx context.Context, filter models.CampaignFilter) ([]models.RequestDetail, int, error)
	UpdateCampaignStatus(ctx context.Context, params repository.CampaignStatusParams) (*models.CollaborationRequest, error)
}

type noteStore interface {
	Create(ctx context.Context, note *models.CampaignNote) error
	ListByCampaign(ctx context.Context, campaignID string) ([]models.CampaignNote, error)
}

// CampaignPage is one page of campaign views.
type CampaignPage struct {
	Items      []models.CampaignView `json:"items"`
	Pagination models.Pagination     `json:"pagination"`
}

// CampaignService manages campaigns after a request has been accepted.
type CampaignService struct {
	actors    actorResolver
	repo      campaignStore
	notes     noteStore
	audit     auditRecorder
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCampaignService wires a CampaignService.
func NewCampaignService(
	actors actorResolver,
	repo campaignStore,
	notes noteStore,
	audit auditRecorder,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *CampaignService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{
		actors:    actors,
		repo:      repo,
		notes:     notes,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the caller's campaigns newest first. Admins see every campaign.
func (s *CampaignService) List(ctx context.Context, callerID string, filter models.CampaignFilter) (*CampaignPage, bool, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleBusiness, models.RoleCreator, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, false, fieldValidation("invalid status filter", map[string]interface{}{"status": "is not a supported value"})
	}

	view := campaignsView(actor.UserID)
	filter.ParticipantID = actor.UserID
	if actor.IsAdmin() {
		view = adminView()
		filter.ParticipantID = ""
	}
	filter.Page, filter.PageSize = normalizeListPage(filter.Page, filter.PageSize)

	key := viewKey(view, filter)
	var cached CampaignPage
	if s.cache.Lookup(ctx, key, &cached) {
		return &cached, true, nil
	}

	done := s.metrics.TimeDB("campaigns_list")
	details, total, err := s.repo.ListCampaigns(ctx, filter)
	done()
	if err != nil {
		return nil, false, storeFailure(s.logger, "list campaigns", err)
	}
	page := &CampaignPage{
		Items:      make([]models.CampaignView, 0, len(details)),
		Pagination: models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total},
	}
	for _, detail := range details {
		if view, ok := detail.CampaignView(); ok {
			page.Items = append(page.Items, view)
		}
	}
	s.cache.Store(ctx, key, page, 0)
	return page, false, nil
}

// Get returns one campaign to a participant or an admin.
func (s *CampaignService) Get(ctx context.Context, callerID, campaignID string) (*models.CampaignView, error) {
	actor, err := s.actors.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !validID(campaignID) {
		return nil, notFound("campaign not found")
	}
	detail, err := s.repo.GetDetail(ctx, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("campaign not found")
		}
		return nil, storeFailure(s.logger, "get campaign", err)
	}
	if !detail.Request.IsParticipant(actor.UserID) && !actor.IsAdmin() {
		return nil, notFound("campaign not found")
	}
	view, ok := detail.CampaignView()
	if !ok {
		return nil, notFound("campaign not found")
	}
	return &view, nil
}

// UpdateStatus moves an in-progress campaign to completed or cancelled. Every
// refusal reads the same, whether the campaign is missing, foreign or closed.
func (s *CampaignService) UpdateStatus(ctx context.Context, callerID, campaignID string, input models.UpdateCampaignStatusInput) (*models.CampaignView, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleBusiness, models.RoleCreator)
	if err != nil {
		return nil, err
	}
	if !validID(campaignID) {
		return nil, notFound("campaign not found")
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid campaign status")
	}

	req, err := s.repo.UpdateCampaignStatus(ctx, repository.CampaignStatusParams{
		ID:        campaignID,
		ActorID:   actor.UserID,
		Status:    input.Status,
		UpdatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.ObserveTransition(campaignEntity, OutcomeDenied)
			return nil, forbidden()
		}
		return nil, storeFailure(s.logger, "update campaign status", err)
	}

	s.metrics.ObserveTransition(campaignEntity, OutcomeApplied)
	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionCampaignStatus, campaignResource, req.ID, map[string]interface{}{
		"campaign_status": req.CampaignStatus,
		"completed_at":    req.CompletedAt,
	})
	s.cache.InvalidateViews(ctx, pairViews(req.BusinessID, req.CreatorID)...)

	detail, err := s.repo.GetDetail(ctx, req.ID)
	if err != nil {
		s.logger.Warn("reload campaign view failed", zap.String("campaign_id", req.ID), zap.Error(err))
		detail = &models.RequestDetail{Request: *req}
	}
	view, _ := detail.CampaignView()
	return &view, nil
}

// AddNote appends a note authored by the caller while the campaign is in progress
// or completed.
func (s *CampaignService) AddNote(ctx context.Context, callerID, campaignID string, input models.AddNoteInput) (*models.CampaignNote, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleBusiness, models.RoleCreator)
	if err != nil {
		return nil, err
	}
	if !validID(campaignID) {
		return nil, notFound("campaign not found")
	}
	input.Content = sanitize.PlainText(input.Content)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid note")
	}

	note := &models.CampaignNote{
		CampaignID: campaignID,
		AuthorID:   actor.UserID,
		AuthorRole: actor.Role,
		AuthorName: actor.DisplayName,
		Content:    input.Content,
		CreatedAt:  s.now(),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.ObserveTransition(noteEntity, OutcomeDenied)
			return nil, forbidden()
		}
		return nil, storeFailure(s.logger, "add campaign note", err)
	}

	if note.AuthorName == "" {
		note.AuthorName = fallbackAuthorName(actor.Role)
	}
	s.metrics.ObserveTransition(noteEntity, OutcomeApplied)
	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionCampaignNote, campaignResource, campaignID, map[string]interface{}{"note_id": note.ID})
	s.cache.InvalidateViews(ctx, dashboardView(actor.UserID))
	return note, nil
}

// ListNotes returns a campaign's notes oldest first to its participants.
func (s *CampaignService) ListNotes(ctx context.Context, callerID, campaignID string) ([]models.CampaignNote, error) {
	actor, err := s.actors.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !validID(campaignID) {
		return nil, notFound("campaign not found")
	}
	req, err := s.repo.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("campaign not found")
		}
		return nil, storeFailure(s.logger, "get campaign", err)
	}
	if req.CampaignStatus == nil || (!req.IsParticipant(actor.UserID) && !actor.IsAdmin()) {
		return nil, notFound("campaign not found")
	}

	notes, err := s.notes.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, storeFailure(s.logger, "list campaign notes", err)
	}
	for i := range notes {
		if notes[i].AuthorName == "" {
			notes[i].AuthorName = fallbackAuthorName(notes[i].AuthorRole)
		}
	}
	if notes == nil {
		notes = []models.CampaignNote{}
	}
	return notes, nil
}

func fallbackAuthorName(role *models.Role) string {
	if role != nil && *role == models.RoleBusiness {
		return models.FallbackBusinessName
	}
	return models.FallbackCreatorName
}
