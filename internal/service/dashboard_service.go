package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/internal/repository"
	"github.com/noah-isme/collab-league-api/pkg/sanitize"
)

const notePreviewLength = 40

type dashboardCounter interface {
	CountRequests(ctx context.Context, filter repository.RequestCountFilter) (int, error)
	CountCampaigns(ctx context.Context, participantID string, status *models.CampaignStatus) (int, error)
}

type recentRequestLister interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.RequestDetail, int, error)
}

type recentNoteLister interface {
	ListRecentByAuthor(ctx context.Context, authorID string, limit int) ([]models.NoteActivity, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL      time.Duration
	ActivityLimit int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Actors   actorResolver
	Stats    dashboardCounter
	Requests recentRequestLister
	Notes    recentNoteLister
	Cache    *CacheService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// DashboardService composes the role-specific dashboard. Each figure is fetched
// concurrently and reads as zero when its query fails.
type DashboardService struct {
	actors   actorResolver
	stats    dashboardCounter
	requests recentRequestLister
	notes    recentNoteLister
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.ActivityLimit <= 0 {
		cfg.ActivityLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		actors:   params.Actors,
		stats:    params.Stats,
		requests: params.Requests,
		notes:    params.Notes,
		cache:    params.Cache,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// Get returns the caller's dashboard and whether it came from cache.
func (s *DashboardService) Get(ctx context.Context, callerID string) (*dto.DashboardResponse, bool, error) {
	actor, err := s.actors.Require(ctx, callerID, models.RoleBusiness, models.RoleCreator)
	if err != nil {
		return nil, false, err
	}

	key := viewKey(dashboardView(actor.UserID), "summary")
	var cached dto.DashboardResponse
	if s.cache.Lookup(ctx, key, &cached) {
		return &cached, true, nil
	}

	resp := &dto.DashboardResponse{Role: *actor.Role, GeneratedAt: s.now().UTC()}
	var g errgroup.Group
	if *actor.Role == models.RoleBusiness {
		resp.Business = s.businessStats(ctx, &g, actor.UserID)
	} else {
		resp.Creator = s.creatorStats(ctx, &g, actor.UserID)
	}
	var requests []models.RequestDetail
	var notes []models.NoteActivity
	g.Go(func() error {
		requests = s.recentRequests(ctx, *actor)
		return nil
	})
	g.Go(func() error {
		notes = s.recentNotes(ctx, actor.UserID)
		return nil
	})
	_ = g.Wait()

	if resp.Business != nil {
		resp.Business.AcceptanceRate = acceptanceRate(resp.Business)
	}
	resp.Activity = mergeActivity(requests, notes, s.cfg.ActivityLimit)

	s.cache.Store(ctx, key, resp, s.cfg.CacheTTL)
	return resp, false, nil
}

func (s *DashboardService) businessStats(ctx context.Context, g *errgroup.Group, userID string) *dto.BusinessDashboardStats {
	stats := &dto.BusinessDashboardStats{}
	s.countInto(g, "business_pending_requests", &stats.PendingRequests, func() (int, error) {
		return s.stats.CountRequests(ctx, repository.RequestCountFilter{BusinessID: userID, Statuses: []models.RequestStatus{models.RequestStatusPending}})
	})
	s.countInto(g, "business_total_requests", &stats.TotalRequests, func() (int, error) {
		return s.stats.CountRequests(ctx, repository.RequestCountFilter{BusinessID: userID})
	})
	s.campaignCountInto(ctx, g, userID, models.CampaignStatusInProgress, &stats.ActiveCampaigns)
	s.campaignCountInto(ctx, g, userID, models.CampaignStatusCompleted, &stats.CompletedCampaigns)
	return stats
}

func (s *DashboardService) creatorStats(ctx context.Context, g *errgroup.Group, userID string) *dto.CreatorDashboardStats {
	stats := &dto.CreatorDashboardStats{}
	s.countInto(g, "creator_pending_requests", &stats.PendingRequests, func() (int, error) {
		return s.stats.CountRequests(ctx, repository.RequestCountFilter{CreatorID: userID, Statuses: []models.RequestStatus{models.RequestStatusPending}})
	})
	s.countInto(g, "creator_total_offers", &stats.TotalOffers, func() (int, error) {
		return s.stats.CountRequests(ctx, repository.RequestCountFilter{CreatorID: userID})
	})
	s.campaignCountInto(ctx, g, userID, models.CampaignStatusInProgress, &stats.ActiveCampaigns)
	s.campaignCountInto(ctx, g, userID, models.CampaignStatusCompleted, &stats.CompletedCampaigns)
	return stats
}

func (s *DashboardService) campaignCountInto(ctx context.Context, g *errgroup.Group, userID string, status models.CampaignStatus, dest *int) {
	s.countInto(g, "campaigns_"+string(status), dest, func() (int, error) {
		return s.stats.CountCampaigns(ctx, userID, &status)
	})
}

// countInto runs fetch on g and writes its result to dest, or zero on failure.
func (s *DashboardService) countInto(g *errgroup.Group, metric string, dest *int, fetch func() (int, error)) {
	g.Go(func() error {
		value, err := fetch()
		if err != nil {
			s.logger.Warn("dashboard metric unavailable", zap.String("metric", metric), zap.Error(err))
			value = 0
		}
		*dest = value
		return nil
	})
}

func (s *DashboardService) recentRequests(ctx context.Context, actor models.Actor) []models.RequestDetail {
	filter := models.RequestFilter{SortBy: "updated_at", Page: 1, PageSize: s.cfg.ActivityLimit}
	if *actor.Role == models.RoleBusiness {
		filter.BusinessID = actor.UserID
	} else {
		filter.CreatorID = actor.UserID
	}
	details, _, err := s.requests.List(ctx, filter)
	if err != nil {
		s.logger.Warn("dashboard activity unavailable", zap.String("source", "requests"), zap.Error(err))
		return nil
	}
	return details
}

func (s *DashboardService) recentNotes(ctx context.Context, userID string) []models.NoteActivity {
	notes, err := s.notes.ListRecentByAuthor(ctx, userID, s.cfg.ActivityLimit)
	if err != nil {
		s.logger.Warn("dashboard activity unavailable", zap.String("source", "notes"), zap.Error(err))
		return nil
	}
	return notes
}

func acceptanceRate(stats *dto.BusinessDashboardStats) int {
	if stats.TotalRequests <= 0 {
		return 0
	}
	accepted := stats.ActiveCampaigns + stats.CompletedCampaigns
	return int(math.Round(float64(accepted) / float64(stats.TotalRequests) * 100))
}

// mergeActivity interleaves request updates and authored notes newest first.
func mergeActivity(requests []models.RequestDetail, notes []models.NoteActivity, limit int) []dto.ActivityItem {
	items := make([]dto.ActivityItem, 0, len(requests)+len(notes))
	for _, detail := range requests {
		req := detail.Request
		items = append(items, dto.ActivityItem{
			ID:        req.ID,
			Type:      dto.ActivityTypeRequest,
			Title:     req.CampaignName,
			Subtitle:  "Status updated to " + strings.ReplaceAll(string(req.Status), "_", " "),
			Status:    string(req.Status),
			Timestamp: req.UpdatedAt,
		})
	}
	for _, note := range notes {
		items = append(items, dto.ActivityItem{
			ID:        note.ID,
			Type:      dto.ActivityTypeNote,
			Title:     note.CampaignName,
			Subtitle:  `You sent a note: "` + sanitize.Truncate(note.Content, notePreviewLength) + `"`,
			Timestamp: note.CreatedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Timestamp.After(items[j].Timestamp) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
