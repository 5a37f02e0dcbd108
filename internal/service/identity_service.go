package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/internal/models"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
)

type actorStore interface {
	FindActor(ctx context.Context, userID string) (*models.Actor, error)
}

// IdentityService resolves the stored role and onboarding state of a caller.
// Nothing is cached: every operation builds its own Actor.
type IdentityService struct {
	store  actorStore
	logger *zap.Logger
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(store actorStore, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{store: store, logger: logger}
}

// Resolve returns the caller's Actor. A user without a profile row resolves to an
// Actor whose Role is nil.
func (s *IdentityService) Resolve(ctx context.Context, userID string) (*models.Actor, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	actor, err := s.store.FindActor(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Actor{UserID: userID}, nil
		}
		return nil, storeFailure(s.logger, "resolve actor", err)
	}
	return actor, nil
}

// Require resolves the caller and checks the stored role against roles. A caller
// holding the role but lacking the role-specific row gets ONBOARDING_REQUIRED.
func (s *IdentityService) Require(ctx context.Context, userID string, roles ...models.Role) (*models.Actor, error) {
	actor, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(roles...) {
		return nil, forbidden()
	}
	if !actor.OnboardingComplete {
		return nil, appErrors.Clone(appErrors.ErrOnboardingRequired, "")
	}
	return actor, nil
}
