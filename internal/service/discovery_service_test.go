package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/internal/models"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
)

type discoverySearchStub struct {
	creators []models.Creator
	total    int
	err      error
	filters  []models.DiscoveryFilter
}

func (s *discoverySearchStub) Search(ctx context.Context, filter models.DiscoveryFilter) ([]models.Creator, int, error) {
	s.filters = append(s.filters, filter)
	return s.creators, s.total, s.err
}

type publicCreatorStub struct {
	byUsername map[string]*models.Creator
	err        error
}

func (s *publicCreatorStub) FindPublicCreator(ctx context.Context, id string) (*models.Creator, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, creator := range s.byUsername {
		if creator.ID == id {
			return creator, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *publicCreatorStub) FindPublicCreatorByUsername(ctx context.Context, username string) (*models.Creator, error) {
	if s.err != nil {
		return nil, s.err
	}
	if creator, ok := s.byUsername[username]; ok {
		return creator, nil
	}
	return nil, sql.ErrNoRows
}

func TestDiscoveryNormalisesFilterAndPages(t *testing.T) {
	search := &discoverySearchStub{creators: []models.Creator{{ID: creatorID}}, total: 25}
	svc := NewDiscoveryService(search, &publicCreatorStub{}, nil, zap.NewNop(), DiscoveryServiceConfig{})

	result, hit, err := svc.Search(context.Background(), models.DiscoveryFilter{
		Search:    "  street   style ",
		Niche:     " Fashion",
		SortBy:    "password_hash",
		SortOrder: "ASC",
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 12, result.Limit)
	assert.Equal(t, 1, result.Page)

	require.Len(t, search.filters, 1)
	applied := search.filters[0]
	assert.Equal(t, "street style", applied.Search)
	assert.Equal(t, "fashion", applied.Niche)
	assert.Equal(t, models.DiscoverySortFollowers, applied.SortBy)
	assert.Equal(t, "asc", applied.SortOrder)
}

func TestDiscoveryClampsLimit(t *testing.T) {
	search := &discoverySearchStub{}
	svc := NewDiscoveryService(search, &publicCreatorStub{}, nil, zap.NewNop(), DiscoveryServiceConfig{DefaultLimit: 24})

	result, _, err := svc.Search(context.Background(), models.DiscoveryFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Limit)
	assert.Equal(t, 0, result.TotalPages)
	assert.NotNil(t, result.Creators)
}

func TestDiscoveryRejectsBadFilters(t *testing.T) {
	svc := NewDiscoveryService(&discoverySearchStub{}, &publicCreatorStub{}, nil, zap.NewNop(), DiscoveryServiceConfig{})
	min, max := 5000, 100

	_, _, err := svc.Search(context.Background(), models.DiscoveryFilter{Niche: "astrology", MinFollowers: &min, MaxFollowers: &max})
	appErr := requireCode(t, err, appErrors.ErrValidation)
	assert.Contains(t, appErr.Details, "niche")
	assert.Contains(t, appErr.Details, "maxFollowers")
}

func TestDiscoveryCachesByFilter(t *testing.T) {
	search := &discoverySearchStub{creators: []models.Creator{{ID: creatorID}}, total: 1}
	cache := NewCacheService(newCacheRepoSpy(), nil, time.Minute, zap.NewNop(), true)
	svc := NewDiscoveryService(search, &publicCreatorStub{}, cache, zap.NewNop(), DiscoveryServiceConfig{})

	_, hit, err := svc.Search(context.Background(), models.DiscoveryFilter{Niche: "tech"})
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = svc.Search(context.Background(), models.DiscoveryFilter{Niche: " TECH "})
	require.NoError(t, err)
	assert.True(t, hit)
	_, hit, err = svc.Search(context.Background(), models.DiscoveryFilter{Niche: "gaming"})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, search.filters, 2)
}

func TestDiscoveryCacheFailureFallsThrough(t *testing.T) {
	search := &discoverySearchStub{total: 0}
	repo := newCacheRepoSpy()
	repo.getErr = errStoreDown
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc := NewDiscoveryService(search, &publicCreatorStub{}, cache, zap.NewNop(), DiscoveryServiceConfig{})

	_, hit, err := svc.Search(context.Background(), models.DiscoveryFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, search.filters, 1)
}

func TestDiscoveryPublicProfiles(t *testing.T) {
	creators := &publicCreatorStub{byUsername: map[string]*models.Creator{"ana": {ID: creatorID, FullName: "Ana"}}}
	svc := NewDiscoveryService(&discoverySearchStub{}, creators, nil, zap.NewNop(), DiscoveryServiceConfig{})

	creator, err := svc.GetCreatorByUsername(context.Background(), " ana ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", creator.FullName)

	_, err = svc.GetCreator(context.Background(), otherCreatorID)
	requireCode(t, err, appErrors.ErrNotFound)

	creators.err = errStoreDown
	_, err = svc.GetCreator(context.Background(), creatorID)
	requireCode(t, err, appErrors.ErrStoreUnavailable)
}
