package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/internal/repository"
	"github.com/noah-isme/collab-league-api/pkg/database"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
	"github.com/noah-isme/collab-league-api/pkg/sanitize"
)

const (
	requestResource   = "collaboration_request"
	requestEntity     = "request"
	dateLayout        = "2006-01-02"
	staleStatusDetail = "current_status"
)

type actorResolver interface {
	Resolve(ctx context.Context, userID string) (*models.Actor, error)
	Require(ctx context.Context, userID string, roles ...models.Role) (*models.Actor, error)
}

type requestStore interface {
	Create(ctx context.Context, req *models.CollaborationRequest) error
	GetByID(ctx context.Context, id string) (*models.CollaborationRequest, error)
	GetDetail(ctx context.Context, id string) (*models.RequestDetail, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.RequestDetail, int, error)
	Respond(ctx context.Context, params repository.RespondParams) (*models.CollaborationRequest, error)
	Cancel(ctx context.Context, id, businessID string, at time.Time) (*models.CollaborationRequest, error)
}

type publicCreatorFinder interface {
	FindPublicCreator(ctx context.Context, id string) (*models.Creator, error)
}

// RequestPage is one page of request views.
type RequestPage struct {
	Items      []models.RequestView `json:"items"`
	Pagination models.Pagination    `json:"pagination"`
}

// RequestService drives the collaboration request lifecycle.
type RequestService struct {
	actors    actorResolver
	repo      requestStore
	creators  publicCreatorFinder
	audit     auditRecorder
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRequestService wires a RequestService.
func NewRequestService(
	actors actorResolver,
	repo requestStore,
	creators publicCreatorFinder,
	audit auditRecorder,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *RequestService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		actors:    actors,
		repo:      repo,
		creators:  creators,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a pending request from the calling business to a creator.
func (s *RequestService) Create(ctx context.Context, callerID string, input models.CreateRequestInput) (*models.RequestView, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleBusiness)
	if err != nil {
		return nil, err
	}

	input.CampaignName = sanitize.PlainText(input.CampaignName)
	input.CampaignDescription = sanitize.PlainText(input.CampaignDescription)
	input.Deliverables = sanitize.PlainText(input.Deliverables)
	input.BudgetRange = sanitize.OptionalPlainText(input.BudgetRange)
	input.StartDate = trimOptional(input.StartDate)
	input.EndDate = trimOptional(input.EndDate)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid collaboration request")
	}
	start, end, err := parseDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	creator, err := s.creators.FindPublicCreator(ctx, input.CreatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("creator not found")
		}
		return nil, storeFailure(s.logger, "find creator", err)
	}

	req := &models.CollaborationRequest{
		BusinessID:          actor.UserID,
		CreatorID:           creator.ID,
		CampaignName:        input.CampaignName,
		CampaignDescription: input.CampaignDescription,
		Deliverables:        input.Deliverables,
		BudgetRange:         input.BudgetRange,
		StartDate:           start,
		EndDate:             end,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		switch {
		case database.IsUniqueViolation(err, repository.PendingRequestIndex):
			s.metrics.ObserveTransition(requestEntity, OutcomeDuplicate)
			return nil, appErrors.Clone(appErrors.ErrDuplicatePendingRequest, "")
		case database.IsForeignKeyViolation(err):
			return nil, notFound("creator not found")
		}
		return nil, storeFailure(s.logger, "create request", err)
	}

	s.metrics.ObserveTransition(requestEntity, OutcomeApplied)
	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionRequestCreate, requestResource, req.ID, req)
	s.cache.InvalidateViews(ctx, pairViews(req.BusinessID, req.CreatorID)...)

	return s.viewAfterWrite(ctx, req, &models.CreatorSummary{
		ID:              creator.ID,
		FullName:        creator.FullName,
		Username:        creator.Username,
		PrimaryPlatform: creator.PrimaryPlatform,
		Niche:           creator.Niche,
		FollowersCount:  creator.FollowersCount,
	}), nil
}

// Respond records the calling creator's decision on a pending request. Accepting
// opens the campaign atomically.
func (s *RequestService) Respond(ctx context.Context, callerID, requestID string, input models.RespondRequestInput) (*models.RequestView, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleCreator)
	if err != nil {
		return nil, err
	}
	if !validID(requestID) {
		return nil, notFound("request not found")
	}
	input.Notes = sanitize.OptionalPlainText(input.Notes)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid response")
	}

	req, err := s.repo.Respond(ctx, repository.RespondParams{
		ID:          requestID,
		CreatorID:   actor.UserID,
		Status:      input.Status,
		Notes:       input.Notes,
		RespondedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.staleOrMissing(ctx, requestID, func(r *models.CollaborationRequest) bool {
				return r.CreatorID == actor.UserID
			})
		}
		return nil, storeFailure(s.logger, "respond to request", err)
	}

	s.metrics.ObserveTransition(requestEntity, OutcomeApplied)
	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionRequestRespond, requestResource, req.ID, map[string]interface{}{
		"status":          req.Status,
		"campaign_status": req.CampaignStatus,
	})
	s.cache.InvalidateViews(ctx, pairViews(req.BusinessID, req.CreatorID)...)

	return s.viewAfterWrite(ctx, req, nil), nil
}

// Cancel withdraws a pending request on behalf of the business that sent it.
func (s *RequestService) Cancel(ctx context.Context, callerID, requestID string) (*models.RequestView, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleBusiness)
	if err != nil {
		return nil, err
	}
	if !validID(requestID) {
		return nil, notFound("request not found")
	}

	req, err := s.repo.Cancel(ctx, requestID, actor.UserID, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.staleOrMissing(ctx, requestID, func(r *models.CollaborationRequest) bool {
				return r.BusinessID == actor.UserID
			})
		}
		return nil, storeFailure(s.logger, "cancel request", err)
	}

	s.metrics.ObserveTransition(requestEntity, OutcomeApplied)
	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionRequestCancel, requestResource, req.ID, map[string]interface{}{"status": req.Status})
	s.cache.InvalidateViews(ctx, pairViews(req.BusinessID, req.CreatorID)...)

	return s.viewAfterWrite(ctx, req, nil), nil
}

// Read returns one request to either of its parties or to an admin.
func (s *RequestService) Read(ctx context.Context, callerID, requestID string) (*models.RequestView, error) {
	actor, err := s.actors.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !validID(requestID) {
		return nil, notFound("request not found")
	}
	detail, err := s.repo.GetDetail(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("request not found")
		}
		return nil, storeFailure(s.logger, "read request", err)
	}
	if !detail.Request.IsParticipant(actor.UserID) && !actor.IsAdmin() {
		return nil, notFound("request not found")
	}
	view := detail.RequestView()
	return &view, nil
}

// ListIncoming lists requests addressed to the calling creator, newest first.
func (s *RequestService) ListIncoming(ctx context.Context, callerID string, filter models.RequestFilter) (*RequestPage, bool, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleCreator)
	if err != nil {
		return nil, false, err
	}
	filter.BusinessID = ""
	filter.CreatorID = actor.UserID
	return s.list(ctx, incomingRequestsView(actor.UserID), filter)
}

// ListSent lists requests sent by the calling business, newest first.
func (s *RequestService) ListSent(ctx context.Context, callerID string, filter models.RequestFilter) (*RequestPage, bool, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleBusiness)
	if err != nil {
		return nil, false, err
	}
	filter.CreatorID = ""
	filter.BusinessID = actor.UserID
	return s.list(ctx, sentRequestsView(actor.UserID), filter)
}

func (s *RequestService) list(ctx context.Context, view string, filter models.RequestFilter) (*RequestPage, bool, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, false, fieldValidation("invalid status filter", map[string]interface{}{"status": "is not a supported value"})
	}
	filter.Page, filter.PageSize = normalizeListPage(filter.Page, filter.PageSize)

	key := viewKey(view, filter)
	var cached RequestPage
	if s.cache.Lookup(ctx, key, &cached) {
		return &cached, true, nil
	}

	done := s.metrics.TimeDB("requests_list")
	details, total, err := s.repo.List(ctx, filter)
	done()
	if err != nil {
		return nil, false, storeFailure(s.logger, "list requests", err)
	}
	page := &RequestPage{
		Items:      make([]models.RequestView, 0, len(details)),
		Pagination: models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total},
	}
	for _, detail := range details {
		page.Items = append(page.Items, detail.RequestView())
	}
	s.cache.Store(ctx, key, page, 0)
	return page, false, nil
}

// staleOrMissing explains why a conditional write on a request matched nothing.
// Requests the caller is not the acting party of read as missing.
func (s *RequestService) staleOrMissing(ctx context.Context, requestID string, acting func(*models.CollaborationRequest) bool) error {
	current, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.ObserveTransition(requestEntity, OutcomeDenied)
			return notFound("request not found")
		}
		return storeFailure(s.logger, "reload request", err)
	}
	if !acting(current) {
		s.metrics.ObserveTransition(requestEntity, OutcomeDenied)
		return notFound("request not found")
	}
	s.metrics.ObserveTransition(requestEntity, OutcomeStale)
	return appErrors.WithDetails(appErrors.ErrStaleState, map[string]interface{}{
		staleStatusDetail: current.Status,
	})
}

// viewAfterWrite reloads the enriched view of a request that was just written.
// The write already succeeded, so a failing reload falls back to the bare row.
func (s *RequestService) viewAfterWrite(ctx context.Context, req *models.CollaborationRequest, creator *models.CreatorSummary) *models.RequestView {
	detail, err := s.repo.GetDetail(ctx, req.ID)
	if err == nil {
		view := detail.RequestView()
		return &view
	}
	s.logger.Warn("reload request view failed", zap.String("request_id", req.ID), zap.Error(err))
	view := models.RequestDetail{Request: *req}.RequestView()
	view.Business = nil
	view.Creator = creator
	return &view
}

func normalizeListPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseDateRange(startRaw, endRaw *string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startRaw != nil {
		t, err := time.Parse(dateLayout, *startRaw)
		if err != nil {
			return nil, nil, fieldValidation("invalid start date", map[string]interface{}{"start_date": "must be a date formatted as YYYY-MM-DD"})
		}
		start = &t
	}
	if endRaw != nil {
		t, err := time.Parse(dateLayout, *endRaw)
		if err != nil {
			return nil, nil, fieldValidation("invalid end date", map[string]interface{}{"end_date": "must be a date formatted as YYYY-MM-DD"})
		}
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, fieldValidation("end date must not be before start date", map[string]interface{}{"end_date": "must be on or after start_date"})
	}
	return start, end, nil
}
