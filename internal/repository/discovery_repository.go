package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/collab-league-api/internal/models"
)

const discoveryMaxLimit = 100

// DiscoveryRepository reads the public creator directory.
type DiscoveryRepository struct {
	db *sqlx.DB
}

// NewDiscoveryRepository constructs a DiscoveryRepository.
func NewDiscoveryRepository(db *sqlx.DB) *DiscoveryRepository {
	return &DiscoveryRepository{db: db}
}

// Search lists active public creators matching the filter with the total match count.
// Page and Limit are expected to be normalised by the caller.
func (r *DiscoveryRepository) Search(ctx context.Context, filter models.DiscoveryFilter) ([]models.Creator, int, error) {
	conditions := []string{"c.is_active = TRUE", "c.is_public = TRUE"}
	var args []interface{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf("c.search_vector @@ websearch_to_tsquery('english', $%d)", len(args)+1))
		args = append(args, search)
	}
	if filter.Niche != "" {
		conditions = append(conditions, fmt.Sprintf("c.niche = $%d", len(args)+1))
		args = append(args, filter.Niche)
	}
	if filter.Platform != "" {
		conditions = append(conditions, fmt.Sprintf("c.primary_platform = $%d", len(args)+1))
		args = append(args, filter.Platform)
	}
	if filter.MinFollowers != nil {
		conditions = append(conditions, fmt.Sprintf("c.followers_count >= $%d", len(args)+1))
		args = append(args, *filter.MinFollowers)
	}
	if filter.MaxFollowers != nil {
		conditions = append(conditions, fmt.Sprintf("c.followers_count <= $%d", len(args)+1))
		args = append(args, *filter.MaxFollowers)
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		models.DiscoverySortFollowers: "c.followers_count",
		models.DiscoverySortCreatedAt: "c.created_at",
		models.DiscoverySortFullName:  "c.full_name",
	}
	sortBy, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortBy = "c.followers_count"
	}
	sortOrder := normalizeOrder(filter.SortOrder)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 || limit > discoveryMaxLimit {
		limit = 12
	}
	offset := (page - 1) * limit

	listQuery := fmt.Sprintf("%s%s ORDER BY %s %s, c.id ASC LIMIT %d OFFSET %d", creatorSelect, where, sortBy, sortOrder, limit, offset)
	var creators []models.Creator
	if err := r.db.SelectContext(ctx, &creators, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("search creators: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM creators c"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count creators: %w", err)
	}

	return creators, total, nil
}
