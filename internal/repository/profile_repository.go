package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/collab-league-api/internal/models"
)

const (
	creatorSelect = `SELECT c.id, p.username, c.full_name, c.bio, c.primary_platform, c.niche, c.followers_count,
	c.contact_email, c.website, c.is_active, c.is_public, c.created_at, c.updated_at
	FROM creators c JOIN profiles p ON p.id = c.id`
	businessSelect = `SELECT b.id, p.username, b.brand_name, b.industry, b.description, b.website, b.contact_email,
	b.company_size, b.is_verified, b.created_at, b.updated_at
	FROM businesses b JOIN profiles p ON p.id = b.id`
)

// ProfileRepository reads and writes profiles and their role-specific rows.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type actorRow struct {
	ID          string      `db:"id"`
	Role        models.Role `db:"role"`
	Username    *string     `db:"username"`
	HasCreator  bool        `db:"has_creator"`
	HasBusiness bool        `db:"has_business"`
	DisplayName string      `db:"display_name"`
}

// FindActor loads the stored role and onboarding state of userID. It returns
// sql.ErrNoRows when no profile exists.
func (r *ProfileRepository) FindActor(ctx context.Context, userID string) (*models.Actor, error) {
	const query = `SELECT p.id, p.role, p.username,
	c.id IS NOT NULL AS has_creator,
	b.id IS NOT NULL AS has_business,
	COALESCE(c.full_name, b.brand_name, '') AS display_name
	FROM profiles p
	LEFT JOIN creators c ON c.id = p.id
	LEFT JOIN businesses b ON b.id = p.id
	WHERE p.id = $1`
	var row actorRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find actor: %w", err)
	}

	role := row.Role
	actor := &models.Actor{
		UserID:      row.ID,
		Role:        &role,
		Username:    row.Username,
		DisplayName: row.DisplayName,
	}
	switch role {
	case models.RoleCreator:
		actor.OnboardingComplete = row.HasCreator
	case models.RoleBusiness:
		actor.OnboardingComplete = row.HasBusiness
	case models.RoleAdmin:
		actor.OnboardingComplete = true
	}
	return actor, nil
}

// FindProfile returns the profile row for id.
func (r *ProfileRepository) FindProfile(ctx context.Context, id string) (*models.Profile, error) {
	const query = `SELECT id, role, username, created_at, updated_at FROM profiles WHERE id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

// FindCreator returns the creator row regardless of visibility.
func (r *ProfileRepository) FindCreator(ctx context.Context, id string) (*models.Creator, error) {
	return r.getCreator(ctx, creatorSelect+` WHERE c.id = $1`, id)
}

// FindPublicCreator returns the creator only when active and public.
func (r *ProfileRepository) FindPublicCreator(ctx context.Context, id string) (*models.Creator, error) {
	return r.getCreator(ctx, creatorSelect+` WHERE c.id = $1 AND c.is_active = TRUE AND c.is_public = TRUE`, id)
}

// FindPublicCreatorByUsername resolves a public creator by profile username.
func (r *ProfileRepository) FindPublicCreatorByUsername(ctx context.Context, username string) (*models.Creator, error) {
	return r.getCreator(ctx, creatorSelect+` WHERE LOWER(p.username) = LOWER($1) AND c.is_active = TRUE AND c.is_public = TRUE`, username)
}

func (r *ProfileRepository) getCreator(ctx context.Context, query string, arg interface{}) (*models.Creator, error) {
	var creator models.Creator
	if err := r.db.GetContext(ctx, &creator, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find creator: %w", err)
	}
	return &creator, nil
}

// FindBusiness returns the business row for id.
func (r *ProfileRepository) FindBusiness(ctx context.Context, id string) (*models.Business, error) {
	var business models.Business
	if err := r.db.GetContext(ctx, &business, businessSelect+` WHERE b.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find business: %w", err)
	}
	return &business, nil
}

// CreateCreator inserts the creator row that completes creator onboarding.
func (r *ProfileRepository) CreateCreator(ctx context.Context, creator *models.Creator) error {
	now := time.Now().UTC()
	creator.CreatedAt, creator.UpdatedAt = now, now
	const query = `INSERT INTO creators (id, full_name, bio, primary_platform, niche, followers_count, contact_email, website, is_active, is_public, created_at, updated_at)
	VALUES (:id, :full_name, :bio, :primary_platform, :niche, :followers_count, :contact_email, :website, :is_active, :is_public, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, creator); err != nil {
		return fmt.Errorf("create creator: %w", err)
	}
	return nil
}

// UpdateCreator rewrites the creator's editable fields. is_active is back-office owned.
func (r *ProfileRepository) UpdateCreator(ctx context.Context, creator *models.Creator) error {
	creator.UpdatedAt = time.Now().UTC()
	const query = `UPDATE creators SET full_name = :full_name, bio = :bio, primary_platform = :primary_platform, niche = :niche,
	followers_count = :followers_count, contact_email = :contact_email, website = :website, is_public = :is_public, updated_at = :updated_at
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, creator)
	if err != nil {
		return fmt.Errorf("update creator: %w", err)
	}
	return requireAffected(result, "update creator")
}

// CreateBusiness inserts the business row that completes business onboarding.
func (r *ProfileRepository) CreateBusiness(ctx context.Context, business *models.Business) error {
	now := time.Now().UTC()
	business.CreatedAt, business.UpdatedAt = now, now
	const query = `INSERT INTO businesses (id, brand_name, industry, description, website, contact_email, company_size, is_verified, created_at, updated_at)
	VALUES (:id, :brand_name, :industry, :description, :website, :contact_email, :company_size, :is_verified, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, business); err != nil {
		return fmt.Errorf("create business: %w", err)
	}
	return nil
}

// UpdateBusiness rewrites the business's editable fields. is_verified is back-office owned.
func (r *ProfileRepository) UpdateBusiness(ctx context.Context, business *models.Business) error {
	business.UpdatedAt = time.Now().UTC()
	const query = `UPDATE businesses SET brand_name = :brand_name, industry = :industry, description = :description,
	website = :website, contact_email = :contact_email, company_size = :company_size, updated_at = :updated_at
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, business)
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	return requireAffected(result, "update business")
}

// ToggleCreatorActive flips a creator's is_active flag and returns the new value.
func (r *ProfileRepository) ToggleCreatorActive(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE creators SET is_active = NOT is_active, updated_at = $2 WHERE id = $1 RETURNING is_active`
	var active bool
	if err := r.db.GetContext(ctx, &active, query, id, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, err
		}
		return false, fmt.Errorf("toggle creator active: %w", err)
	}
	return active, nil
}

// ToggleBusinessVerified flips a business's is_verified flag and returns the new value.
func (r *ProfileRepository) ToggleBusinessVerified(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE businesses SET is_verified = NOT is_verified, updated_at = $2 WHERE id = $1 RETURNING is_verified`
	var verified bool
	if err := r.db.GetContext(ctx, &verified, query, id, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, err
		}
		return false, fmt.Errorf("toggle business verified: %w", err)
	}
	return verified, nil
}
