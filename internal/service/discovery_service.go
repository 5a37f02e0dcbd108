package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/internal/models"
)

const (
	discoveryDefaultLimit = 12
	discoveryMaxLimit     = 100
)

type discoverySearcher interface {
	Search(ctx context.Context, filter models.DiscoveryFilter) ([]models.Creator, int, error)
}

type publicCreatorReader interface {
	FindPublicCreator(ctx context.Context, id string) (*models.Creator, error)
	FindPublicCreatorByUsername(ctx context.Context, username string) (*models.Creator, error)
}

// DiscoveryServiceConfig tunes the public listing.
type DiscoveryServiceConfig struct {
	DefaultLimit int
	CacheTTL     time.Duration
}

// DiscoveryService serves the read-only directory of active, public creators.
type DiscoveryService struct {
	search   discoverySearcher
	creators publicCreatorReader
	cache    *CacheService
	logger   *zap.Logger
	cfg      DiscoveryServiceConfig
}

// NewDiscoveryService constructs a DiscoveryService.
func NewDiscoveryService(search discoverySearcher, creators publicCreatorReader, cache *CacheService, logger *zap.Logger, cfg DiscoveryServiceConfig) *DiscoveryService {
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > discoveryMaxLimit {
		cfg.DefaultLimit = discoveryDefaultLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscoveryService{search: search, creators: creators, cache: cache, logger: logger, cfg: cfg}
}

// Search lists creators matching filter. The bool reports a cache hit.
func (s *DiscoveryService) Search(ctx context.Context, filter models.DiscoveryFilter) (*dto.DiscoveryResult, bool, error) {
	filter, err := s.normalize(filter)
	if err != nil {
		return nil, false, err
	}

	key := viewKey(discoveryView(), filter)
	var cached dto.DiscoveryResult
	if s.cache.Lookup(ctx, key, &cached) {
		return &cached, true, nil
	}

	creators, total, err := s.search.Search(ctx, filter)
	if err != nil {
		return nil, false, storeFailure(s.logger, "discover creators", err)
	}
	if creators == nil {
		creators = []models.Creator{}
	}
	result := &dto.DiscoveryResult{
		Creators:   creators,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}
	s.cache.Store(ctx, key, result, s.cfg.CacheTTL)
	return result, false, nil
}

// GetCreator returns one public creator profile.
func (s *DiscoveryService) GetCreator(ctx context.Context, id string) (*models.Creator, error) {
	return s.publicCreator(s.creators.FindPublicCreator(ctx, id))
}

// GetCreatorByUsername returns one public creator profile by username.
func (s *DiscoveryService) GetCreatorByUsername(ctx context.Context, username string) (*models.Creator, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, notFound("creator not found")
	}
	return s.publicCreator(s.creators.FindPublicCreatorByUsername(ctx, username))
}

func (s *DiscoveryService) publicCreator(creator *models.Creator, err error) (*models.Creator, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("creator not found")
		}
		return nil, storeFailure(s.logger, "find public creator", err)
	}
	return creator, nil
}

func (s *DiscoveryService) normalize(filter models.DiscoveryFilter) (models.DiscoveryFilter, error) {
	details := map[string]interface{}{}

	filter.Search = strings.Join(strings.Fields(filter.Search), " ")
	filter.Niche = strings.ToLower(strings.TrimSpace(filter.Niche))
	filter.Platform = strings.ToLower(strings.TrimSpace(filter.Platform))
	if filter.Niche != "" && !inCatalogue(models.Niches, filter.Niche) {
		details["niche"] = "is not a supported value"
	}
	if filter.Platform != "" && !inCatalogue(models.Platforms, filter.Platform) {
		details["platform"] = "is not a supported value"
	}
	if filter.MinFollowers != nil && *filter.MinFollowers < 0 {
		details["minFollowers"] = "must be at least 0"
	}
	if filter.MaxFollowers != nil && *filter.MaxFollowers < 0 {
		details["maxFollowers"] = "must be at least 0"
	}
	if filter.MinFollowers != nil && filter.MaxFollowers != nil && *filter.MinFollowers > *filter.MaxFollowers {
		details["maxFollowers"] = "must not be less than minFollowers"
	}
	if len(details) > 0 {
		return filter, fieldValidation("invalid discovery filter", details)
	}

	switch filter.SortBy {
	case models.DiscoverySortFollowers, models.DiscoverySortCreatedAt, models.DiscoverySortFullName:
	default:
		filter.SortBy = models.DiscoverySortFollowers
	}
	filter.SortOrder = strings.ToLower(filter.SortOrder)
	if filter.SortOrder != "asc" {
		filter.SortOrder = "desc"
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = s.cfg.DefaultLimit
	case filter.Limit > discoveryMaxLimit:
		filter.Limit = discoveryMaxLimit
	}
	return filter, nil
}

func inCatalogue(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
