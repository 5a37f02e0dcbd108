package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/pkg/database"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
	"github.com/noah-isme/collab-league-api/pkg/sanitize"
)

const profileResource = "profile"

type profileStore interface {
	FindProfile(ctx context.Context, id string) (*models.Profile, error)
	FindCreator(ctx context.Context, id string) (*models.Creator, error)
	FindBusiness(ctx context.Context, id string) (*models.Business, error)
	CreateCreator(ctx context.Context, creator *models.Creator) error
	UpdateCreator(ctx context.Context, creator *models.Creator) error
	CreateBusiness(ctx context.Context, business *models.Business) error
	UpdateBusiness(ctx context.Context, business *models.Business) error
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ProfileService handles onboarding and profile edits for both marketplace sides.
type ProfileService struct {
	actors    actorResolver
	profiles  profileStore
	users     userFinder
	audit     auditRecorder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService wires a ProfileService.
func NewProfileService(actors actorResolver, profiles profileStore, users userFinder, audit auditRecorder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{actors: actors, profiles: profiles, users: users, audit: audit, cache: cache, validator: validate, logger: logger}
}

// Get returns the caller's profile merged with whichever role row exists.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.ProfileDetails, error) {
	actor, err := s.actors.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindProfile(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("profile not found")
		}
		return nil, storeFailure(s.logger, "find profile", err)
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("profile not found")
		}
		return nil, storeFailure(s.logger, "find user", err)
	}

	details := &models.ProfileDetails{Profile: *profile, Email: user.Email, OnboardingComplete: actor.OnboardingComplete}
	switch profile.Role {
	case models.RoleCreator:
		creator, err := s.profiles.FindCreator(ctx, actor.UserID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, storeFailure(s.logger, "find creator", err)
		}
		details.Creator = creator
	case models.RoleBusiness:
		business, err := s.profiles.FindBusiness(ctx, actor.UserID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, storeFailure(s.logger, "find business", err)
		}
		details.Business = business
	}
	return details, nil
}

// Completion reports the caller's onboarding state and the step still missing.
func (s *ProfileService) Completion(ctx context.Context, userID string) (*dto.ProfileCompletion, error) {
	actor, err := s.actors.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	completion := &dto.ProfileCompletion{Role: actor.Role, OnboardingComplete: actor.OnboardingComplete}
	if !actor.OnboardingComplete && actor.Role != nil {
		switch *actor.Role {
		case models.RoleCreator:
			completion.NextStep = dto.NextStepCreatorProfile
		case models.RoleBusiness:
			completion.NextStep = dto.NextStepBusinessProfile
		}
	}
	return completion, nil
}

// CreateCreator completes creator onboarding.
func (s *ProfileService) CreateCreator(ctx context.Context, userID string, input models.CreatorProfileInput) (*models.Creator, error) {
	actor, err := s.onboardingActor(ctx, userID, models.RoleCreator)
	if err != nil {
		return nil, err
	}
	input = cleanCreatorInput(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid creator profile")
	}

	creator := &models.Creator{ID: actor.UserID, IsActive: true, IsPublic: true}
	applyCreatorInput(creator, input)
	if err := s.profiles.CreateCreator(ctx, creator); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, appErrors.Clone(appErrors.ErrConflict, "creator profile already exists")
		}
		return nil, storeFailure(s.logger, "create creator", err)
	}
	creator.Username = actor.Username

	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionProfileCreate, profileResource, actor.UserID, map[string]string{"role": string(models.RoleCreator)})
	s.cache.InvalidateViews(ctx, discoveryView(), dashboardView(actor.UserID), adminView())
	return creator, nil
}

// UpdateCreator edits the caller's creator profile. Visibility is kept unless
// the payload sets it; the active flag is back-office owned.
func (s *ProfileService) UpdateCreator(ctx context.Context, userID string, input models.CreatorProfileInput) (*models.Creator, error) {
	actor, err := s.actors.Require(ctx, userID, models.RoleCreator)
	if err != nil {
		return nil, err
	}
	input = cleanCreatorInput(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid creator profile")
	}

	creator, err := s.profiles.FindCreator(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("creator profile not found")
		}
		return nil, storeFailure(s.logger, "find creator", err)
	}
	applyCreatorInput(creator, input)
	if err := s.profiles.UpdateCreator(ctx, creator); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("creator profile not found")
		}
		return nil, storeFailure(s.logger, "update creator", err)
	}

	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionProfileUpdate, profileResource, actor.UserID, map[string]string{"role": string(models.RoleCreator)})
	s.cache.InvalidateViews(ctx, discoveryView(), incomingRequestsView(actor.UserID), campaignsView(actor.UserID), adminView())
	return creator, nil
}

// CreateBusiness completes business onboarding.
func (s *ProfileService) CreateBusiness(ctx context.Context, userID string, input models.BusinessProfileInput) (*models.Business, error) {
	actor, err := s.onboardingActor(ctx, userID, models.RoleBusiness)
	if err != nil {
		return nil, err
	}
	input = cleanBusinessInput(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid business profile")
	}

	business := &models.Business{ID: actor.UserID}
	applyBusinessInput(business, input)
	if err := s.profiles.CreateBusiness(ctx, business); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, appErrors.Clone(appErrors.ErrConflict, "business profile already exists")
		}
		return nil, storeFailure(s.logger, "create business", err)
	}
	business.Username = actor.Username

	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionProfileCreate, profileResource, actor.UserID, map[string]string{"role": string(models.RoleBusiness)})
	s.cache.InvalidateViews(ctx, dashboardView(actor.UserID), adminView())
	return business, nil
}

// UpdateBusiness edits the caller's business profile.
func (s *ProfileService) UpdateBusiness(ctx context.Context, userID string, input models.BusinessProfileInput) (*models.Business, error) {
	actor, err := s.actors.Require(ctx, userID, models.RoleBusiness)
	if err != nil {
		return nil, err
	}
	input = cleanBusinessInput(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid business profile")
	}

	business, err := s.profiles.FindBusiness(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("business profile not found")
		}
		return nil, storeFailure(s.logger, "find business", err)
	}
	applyBusinessInput(business, input)
	if err := s.profiles.UpdateBusiness(ctx, business); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("business profile not found")
		}
		return nil, storeFailure(s.logger, "update business", err)
	}

	recordAudit(ctx, s.audit, s.logger, actor.UserID, models.AuditActionProfileUpdate, profileResource, actor.UserID, map[string]string{"role": string(models.RoleBusiness)})
	s.cache.InvalidateViews(ctx, sentRequestsView(actor.UserID), campaignsView(actor.UserID), adminView())
	return business, nil
}

// onboardingActor resolves a caller that holds role but has not onboarded yet.
func (s *ProfileService) onboardingActor(ctx context.Context, userID string, role models.Role) (*models.Actor, error) {
	actor, err := s.actors.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(role) {
		return nil, forbidden()
	}
	if actor.OnboardingComplete {
		return nil, appErrors.Clone(appErrors.ErrConflict, string(role)+" profile already exists")
	}
	return actor, nil
}

func cleanCreatorInput(input models.CreatorProfileInput) models.CreatorProfileInput {
	input.FullName = sanitize.PlainText(input.FullName)
	input.Bio = sanitize.OptionalPlainText(input.Bio)
	input.PrimaryPlatform = strings.ToLower(strings.TrimSpace(input.PrimaryPlatform))
	input.Niche = strings.ToLower(strings.TrimSpace(input.Niche))
	input.ContactEmail = normalizeEmail(input.ContactEmail)
	input.Website = trimOptional(input.Website)
	return input
}

func applyCreatorInput(creator *models.Creator, input models.CreatorProfileInput) {
	creator.FullName = input.FullName
	creator.Bio = input.Bio
	creator.PrimaryPlatform = input.PrimaryPlatform
	creator.Niche = input.Niche
	creator.FollowersCount = input.FollowersCount
	creator.ContactEmail = input.ContactEmail
	creator.Website = input.Website
	if input.IsPublic != nil {
		creator.IsPublic = *input.IsPublic
	}
}

func cleanBusinessInput(input models.BusinessProfileInput) models.BusinessProfileInput {
	input.BrandName = sanitize.PlainText(input.BrandName)
	input.Industry = strings.ToLower(strings.TrimSpace(input.Industry))
	input.Description = sanitize.OptionalPlainText(input.Description)
	input.Website = trimOptional(input.Website)
	input.ContactEmail = normalizeEmail(input.ContactEmail)
	input.CompanySize = trimOptional(input.CompanySize)
	return input
}

func applyBusinessInput(business *models.Business, input models.BusinessProfileInput) {
	business.BrandName = input.BrandName
	business.Industry = input.Industry
	business.Description = input.Description
	business.Website = input.Website
	business.ContactEmail = input.ContactEmail
	business.CompanySize = input.CompanySize
}
