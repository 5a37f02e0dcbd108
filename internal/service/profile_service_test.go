package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/internal/models"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
)

type profileStoreStub struct {
	profiles   map[string]*models.Profile
	creators   map[string]*models.Creator
	businesses map[string]*models.Business
	createErr  error
	err        error
}

func newProfileStore() *profileStoreStub {
	handle := "ana"
	return &profileStoreStub{
		profiles: map[string]*models.Profile{
			creatorID:  {ID: creatorID, Role: models.RoleCreator, Username: &handle},
			businessID: {ID: businessID, Role: models.RoleBusiness},
			newcomerID: {ID: newcomerID, Role: models.RoleCreator},
		},
		creators: map[string]*models.Creator{
			creatorID: {ID: creatorID, Username: &handle, FullName: "Ana", PrimaryPlatform: "instagram", Niche: "fashion", ContactEmail: "ana@example.com", IsActive: true, IsPublic: false},
		},
		businesses: map[string]*models.Business{
			businessID: {ID: businessID, BrandName: "Acme", Industry: "saas", ContactEmail: "hello@acme.test", IsVerified: true},
		},
	}
}

func (s *profileStoreStub) FindProfile(ctx context.Context, id string) (*models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	profile, ok := s.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *profile
	return &copied, nil
}

func (s *profileStoreStub) FindCreator(ctx context.Context, id string) (*models.Creator, error) {
	if s.err != nil {
		return nil, s.err
	}
	creator, ok := s.creators[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *creator
	return &copied, nil
}

func (s *profileStoreStub) FindBusiness(ctx context.Context, id string) (*models.Business, error) {
	if s.err != nil {
		return nil, s.err
	}
	business, ok := s.businesses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *business
	return &copied, nil
}

func (s *profileStoreStub) CreateCreator(ctx context.Context, creator *models.Creator) error {
	if s.createErr != nil {
		return s.createErr
	}
	copied := *creator
	s.creators[creator.ID] = &copied
	return nil
}

func (s *profileStoreStub) UpdateCreator(ctx context.Context, creator *models.Creator) error {
	existing, ok := s.creators[creator.ID]
	if !ok {
		return sql.ErrNoRows
	}
	copied := *creator
	copied.IsActive = existing.IsActive
	s.creators[creator.ID] = &copied
	return nil
}

func (s *profileStoreStub) CreateBusiness(ctx context.Context, business *models.Business) error {
	if s.createErr != nil {
		return s.createErr
	}
	copied := *business
	s.businesses[business.ID] = &copied
	return nil
}

func (s *profileStoreStub) UpdateBusiness(ctx context.Context, business *models.Business) error {
	existing, ok := s.businesses[business.ID]
	if !ok {
		return sql.ErrNoRows
	}
	copied := *business
	copied.IsVerified = existing.IsVerified
	s.businesses[business.ID] = &copied
	return nil
}

type userFinderStub struct{}

func (userFinderStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, Email: id[:4] + "@example.com", Active: true}, nil
}

type profileFixture struct {
	svc    *ProfileService
	store  *profileStoreStub
	actors *actorStoreStub
	audit  *auditSpy
	cache  *cacheRepoSpy
}

func newProfileFixture() *profileFixture {
	f := &profileFixture{
		store:  newProfileStore(),
		actors: newActorStore(),
		audit:  &auditSpy{},
		cache:  newCacheRepoSpy(),
	}
	cache := NewCacheService(f.cache, nil, time.Minute, zap.NewNop(), true)
	f.svc = NewProfileService(NewIdentityService(f.actors, zap.NewNop()), f.store, userFinderStub{}, f.audit, cache, nil, zap.NewNop())
	return f
}

func validCreatorInput() models.CreatorProfileInput {
	bio := "<b>Style</b> notes"
	return models.CreatorProfileInput{
		FullName:        " <b>Nia</b> ",
		Bio:             &bio,
		PrimaryPlatform: "TikTok",
		Niche:           "Fashion ",
		FollowersCount:  4200,
		ContactEmail:    "Nia@Example.com",
	}
}

func TestProfileServiceCreateCreatorCompletesOnboarding(t *testing.T) {
	f := newProfileFixture()

	creator, err := f.svc.CreateCreator(context.Background(), newcomerID, validCreatorInput())
	require.NoError(t, err)

	assert.Equal(t, "Nia", creator.FullName)
	require.NotNil(t, creator.Bio)
	assert.Equal(t, "Style notes", *creator.Bio)
	assert.Equal(t, "tiktok", creator.PrimaryPlatform)
	assert.Equal(t, "fashion", creator.Niche)
	assert.Equal(t, "nia@example.com", creator.ContactEmail)
	assert.True(t, creator.IsActive)
	assert.True(t, creator.IsPublic)
	assert.Equal(t, []string{models.AuditActionProfileCreate}, f.audit.actions())
	assert.True(t, f.cache.wasInvalidated(discoveryView()+":*"))
}

func TestProfileServiceCreateCreatorRejectsCompletedOrWrongRole(t *testing.T) {
	f := newProfileFixture()

	_, err := f.svc.CreateCreator(context.Background(), creatorID, validCreatorInput())
	requireCode(t, err, appErrors.ErrConflict)

	_, err = f.svc.CreateCreator(context.Background(), businessID, validCreatorInput())
	requireCode(t, err, appErrors.ErrForbidden)
	assert.Empty(t, f.audit.actions())
}

func TestProfileServiceCreateCreatorValidatesCatalogues(t *testing.T) {
	f := newProfileFixture()
	input := validCreatorInput()
	input.Niche = "astrology"
	input.PrimaryPlatform = "myspace"
	input.FollowersCount = -1

	_, err := f.svc.CreateCreator(context.Background(), newcomerID, input)

	appErr := requireCode(t, err, appErrors.ErrValidation)
	assert.Contains(t, appErr.Details, "niche")
	assert.Contains(t, appErr.Details, "primary_platform")
	assert.Contains(t, appErr.Details, "followers_count")
}

func TestProfileServiceCreateCreatorMapsUniqueViolation(t *testing.T) {
	f := newProfileFixture()
	f.store.createErr = &pq.Error{Code: "23505", Constraint: "creators_pkey"}

	_, err := f.svc.CreateCreator(context.Background(), newcomerID, validCreatorInput())

	requireCode(t, err, appErrors.ErrConflict)
}

func TestProfileServiceUpdateCreatorKeepsVisibilityUnlessSet(t *testing.T) {
	f := newProfileFixture()
	input := validCreatorInput()

	creator, err := f.svc.UpdateCreator(context.Background(), creatorID, input)
	require.NoError(t, err)
	assert.False(t, creator.IsPublic)
	assert.True(t, creator.IsActive)

	visible := true
	input.IsPublic = &visible
	creator, err = f.svc.UpdateCreator(context.Background(), creatorID, input)
	require.NoError(t, err)
	assert.True(t, creator.IsPublic)
	assert.Equal(t, []string{models.AuditActionProfileUpdate, models.AuditActionProfileUpdate}, f.audit.actions())
	assert.True(t, f.cache.wasInvalidated(incomingRequestsView(creatorID)+":*"))
}

func TestProfileServiceUpdateCreatorRequiresOnboarding(t *testing.T) {
	f := newProfileFixture()

	_, err := f.svc.UpdateCreator(context.Background(), newcomerID, validCreatorInput())

	requireCode(t, err, appErrors.ErrOnboardingRequired)
}

func TestProfileServiceUpdateBusinessKeepsVerification(t *testing.T) {
	f := newProfileFixture()
	size := "11-50"

	business, err := f.svc.UpdateBusiness(context.Background(), businessID, models.BusinessProfileInput{
		BrandName:    "Acme Labs",
		Industry:     "SaaS",
		ContactEmail: "team@acme.test",
		CompanySize:  &size,
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Labs", business.BrandName)
	assert.Equal(t, "saas", business.Industry)
	assert.True(t, f.store.businesses[businessID].IsVerified)
	assert.True(t, f.cache.wasInvalidated(sentRequestsView(businessID)+":*"))
}

func TestProfileServiceUpdateBusinessRejectsUnknownCompanySize(t *testing.T) {
	f := newProfileFixture()
	size := "huge"

	_, err := f.svc.UpdateBusiness(context.Background(), businessID, models.BusinessProfileInput{
		BrandName:    "Acme",
		Industry:     "saas",
		ContactEmail: "team@acme.test",
		CompanySize:  &size,
	})

	appErr := requireCode(t, err, appErrors.ErrValidation)
	assert.Contains(t, appErr.Details, "company_size")
}

func TestProfileServiceGetMergesRoleRow(t *testing.T) {
	f := newProfileFixture()

	details, err := f.svc.Get(context.Background(), creatorID)
	require.NoError(t, err)
	require.NotNil(t, details.Creator)
	assert.Nil(t, details.Business)
	assert.Equal(t, "Ana", details.Creator.FullName)
	assert.Equal(t, "0f8a@example.com", details.Email)
	assert.True(t, details.OnboardingComplete)

	details, err = f.svc.Get(context.Background(), newcomerID)
	require.NoError(t, err)
	assert.Nil(t, details.Creator)
	assert.False(t, details.OnboardingComplete)
}

func TestProfileServiceCompletionNextStep(t *testing.T) {
	f := newProfileFixture()

	completion, err := f.svc.Completion(context.Background(), newcomerID)
	require.NoError(t, err)
	assert.False(t, completion.OnboardingComplete)
	assert.Equal(t, dto.NextStepCreatorProfile, completion.NextStep)

	completion, err = f.svc.Completion(context.Background(), businessID)
	require.NoError(t, err)
	assert.True(t, completion.OnboardingComplete)
	assert.Empty(t, completion.NextStep)
}

func TestProfileServiceStoreFailure(t *testing.T) {
	f := newProfileFixture()
	f.store.err = errStoreDown

	_, err := f.svc.Get(context.Background(), creatorID)

	requireCode(t, err, appErrors.ErrStoreUnavailable)
}
