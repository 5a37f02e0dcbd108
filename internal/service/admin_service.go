package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/internal/models"
)

type adminStats interface {
	CountProfiles(ctx context.Context, role *models.Role) (int, error)
	CountCreators(ctx context.Context) (int, error)
	CountBusinesses(ctx context.Context) (int, error)
	CountCampaigns(ctx context.Context, participantID string, status *models.CampaignStatus) (int, error)
}

type userLister interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.UserSummary, int, error)
}

type flagToggler interface {
	ToggleCreatorActive(ctx context.Context, id string, at time.Time) (bool, error)
	ToggleBusinessVerified(ctx context.Context, id string, at time.Time) (bool, error)
}

// UserPage is one page of the back-office user list.
type UserPage struct {
	Items      []models.UserSummary `json:"items"`
	Pagination models.Pagination    `json:"pagination"`
}

// AdminService backs the back-office endpoints. Every call requires the admin role.
type AdminService struct {
	actors actorResolver
	stats  adminStats
	users  userLister
	flags  flagToggler
	audit  auditRecorder
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
}

// NewAdminService wires an AdminService.
func NewAdminService(actors actorResolver, stats adminStats, users userLister, flags flagToggler, audit auditRecorder, cache *CacheService, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{actors: actors, stats: stats, users: users, flags: flags, audit: audit, cache: cache, logger: logger, now: time.Now}
}

// Overview returns the headline counts. Counts run concurrently and each one
// that fails is reported as zero.
func (s *AdminService) Overview(ctx context.Context, callerID string) (*dto.AdminOverview, bool, error) {
	if _, err := s.actors.Require(ctx, callerID, models.RoleAdmin); err != nil {
		return nil, false, err
	}

	key := viewKey(adminView(), "overview")
	var cached dto.AdminOverview
	if s.cache.Lookup(ctx, key, &cached) {
		return &cached, true, nil
	}

	overview := &dto.AdminOverview{GeneratedAt: s.now().UTC()}
	g, gctx := errgroup.WithContext(ctx)
	s.countInto(g, "users", &overview.TotalUsers, func() (int, error) { return s.stats.CountProfiles(gctx, nil) })
	s.countInto(g, "creators", &overview.TotalCreators, func() (int, error) { return s.stats.CountCreators(gctx) })
	s.countInto(g, "businesses", &overview.TotalBusinesses, func() (int, error) { return s.stats.CountBusinesses(gctx) })
	s.countInto(g, "campaigns", &overview.TotalCampaigns, func() (int, error) { return s.stats.CountCampaigns(gctx, "", nil) })
	_ = g.Wait()

	s.cache.Store(ctx, key, overview, 0)
	return overview, false, nil
}

func (s *AdminService) countInto(g *errgroup.Group, name string, dest *int, count func() (int, error)) {
	g.Go(func() error {
		n, err := count()
		if err != nil {
			s.logger.Warn("admin count failed", zap.String("count", name), zap.Error(err))
			return nil
		}
		*dest = n
		return nil
	})
}

// ListUsers pages through every account with its role-specific display name.
func (s *AdminService) ListUsers(ctx context.Context, callerID string, filter models.UserFilter) (*UserPage, bool, error) {
	if _, err := s.actors.Require(ctx, callerID, models.RoleAdmin); err != nil {
		return nil, false, err
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, false, fieldValidation("invalid role filter", map[string]interface{}{"role": "is not a supported value"})
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Page, filter.PageSize = normalizeListPage(filter.Page, filter.PageSize)

	key := viewKey(adminView(), struct {
		Kind   string
		Filter models.UserFilter
	}{"users", filter})
	var cached UserPage
	if s.cache.Lookup(ctx, key, &cached) {
		return &cached, true, nil
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, false, storeFailure(s.logger, "list users", err)
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	page := &UserPage{
		Items:      users,
		Pagination: models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total},
	}
	s.cache.Store(ctx, key, page, 0)
	return page, false, nil
}

// ToggleCreatorActive bans or reinstates a creator. An inactive creator
// disappears from discovery and can no longer receive requests.
func (s *AdminService) ToggleCreatorActive(ctx context.Context, callerID, creatorID string) (*dto.ToggleResult, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !validID(creatorID) {
		return nil, notFound("creator not found")
	}
	active, err := s.flags.ToggleCreatorActive(ctx, creatorID, s.now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("creator not found")
		}
		return nil, storeFailure(s.logger, "toggle creator active", err)
	}

	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionCreatorToggle, profileResource, creatorID, map[string]bool{"is_active": active})
	s.cache.InvalidateViews(ctx, discoveryView(), adminView(), incomingRequestsView(creatorID), campaignsView(creatorID), dashboardView(creatorID))
	s.logger.Info("creator active flag toggled", zap.String("creator_id", creatorID), zap.Bool("is_active", active), zap.String("admin_id", actor.UserID))
	return &dto.ToggleResult{ID: creatorID, Value: active}, nil
}

// ToggleBusinessVerified flips the verified badge of a business.
func (s *AdminService) ToggleBusinessVerified(ctx context.Context, callerID, businessID string) (*dto.ToggleResult, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !validID(businessID) {
		return nil, notFound("business not found")
	}
	verified, err := s.flags.ToggleBusinessVerified(ctx, businessID, s.now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("business not found")
		}
		return nil, storeFailure(s.logger, "toggle business verified", err)
	}

	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionBusinessVerify, profileResource, businessID, map[string]bool{"is_verified": verified})
	s.cache.InvalidateViews(ctx, adminView(), sentRequestsView(businessID), campaignsView(businessID), dashboardView(businessID))
	s.logger.Info("business verified flag toggled", zap.String("business_id", businessID), zap.Bool("is_verified", verified), zap.String("admin_id", actor.UserID))
	return &dto.ToggleResult{ID: businessID, Value: verified}, nil
}
