package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/collab-league-api/internal/models"
)

// RequestCountFilter scopes a request count.
type RequestCountFilter struct {
	BusinessID string
	CreatorID  string
	Statuses   []models.RequestStatus
}

// StatsRepository issues the aggregate counts behind dashboards and the back-office.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CountRequests counts requests for one party, optionally restricted to statuses.
func (r *StatsRepository) CountRequests(ctx context.Context, filter RequestCountFilter) (int, error) {
	var conditions []string
	var args []interface{}
	if filter.BusinessID != "" {
		conditions = append(conditions, fmt.Sprintf("business_id = $%d", len(args)+1))
		args = append(args, filter.BusinessID)
	}
	if filter.CreatorID != "" {
		conditions = append(conditions, fmt.Sprintf("creator_id = $%d", len(args)+1))
		args = append(args, filter.CreatorID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
			args = append(args, status)
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	return r.count(ctx, "collaboration_requests", conditions, args)
}

// CountCampaigns counts campaigns, optionally for one participant and status.
func (r *StatsRepository) CountCampaigns(ctx context.Context, participantID string, status *models.CampaignStatus) (int, error) {
	conditions := []string{"campaign_status IS NOT NULL"}
	var args []interface{}
	if participantID != "" {
		conditions = append(conditions, fmt.Sprintf("(business_id = $%d OR creator_id = $%d)", len(args)+1, len(args)+1))
		args = append(args, participantID)
	}
	if status != nil {
		conditions = append(conditions, fmt.Sprintf("campaign_status = $%d", len(args)+1))
		args = append(args, *status)
	}
	return r.count(ctx, "collaboration_requests", conditions, args)
}

// CountProfiles counts profiles, optionally for a single role.
func (r *StatsRepository) CountProfiles(ctx context.Context, role *models.Role) (int, error) {
	if role == nil {
		return r.count(ctx, "profiles", nil, nil)
	}
	return r.count(ctx, "profiles", []string{"role = $1"}, []interface{}{*role})
}

// CountCreators counts creator rows.
func (r *StatsRepository) CountCreators(ctx context.Context) (int, error) {
	return r.count(ctx, "creators", nil, nil)
}

// CountBusinesses counts business rows.
func (r *StatsRepository) CountBusinesses(ctx context.Context) (int, error) {
	return r.count(ctx, "businesses", nil, nil)
}

func (r *StatsRepository) count(ctx context.Context, table string, conditions []string, args []interface{}) (int, error) {
	query := "SELECT COUNT(*) FROM " + table
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, nil
}
