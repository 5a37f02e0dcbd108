package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/collab-league-api/internal/models"
)

// PendingRequestIndex is the partial unique index allowing one pending request per pair.
const PendingRequestIndex = "collaboration_requests_one_pending_idx"

const requestDetailSelect = `SELECT r.id, r.business_id, r.creator_id, r.campaign_name, r.campaign_description, r.deliverables,
	r.budget_range, r.start_date, r.end_date, r.status, r.creator_notes, r.responded_at, r.campaign_status,
	r.completed_at, r.created_at, r.updated_at,
	b.brand_name AS b_brand_name, b.industry AS b_industry, b.website AS b_website, b.is_verified AS b_is_verified,
	c.full_name AS c_full_name, cp.username AS c_username, c.primary_platform AS c_primary_platform,
	c.niche AS c_niche, c.followers_count AS c_followers_count`

const requestReturning = `
	RETURNING id, business_id, creator_id, campaign_name, campaign_description, deliverables, budget_range,
	start_date, end_date, status, creator_notes, responded_at, campaign_status, completed_at, created_at, updated_at`

const requestDetailFrom = ` FROM collaboration_requests r
	JOIN businesses b ON b.id = r.business_id
	JOIN creators c ON c.id = r.creator_id
	JOIN profiles cp ON cp.id = r.creator_id`

// CollaborationRepository persists collaboration requests and their campaign phase.
type CollaborationRepository struct {
	db *sqlx.DB
}

// NewCollaborationRepository constructs the repository.
func NewCollaborationRepository(db *sqlx.DB) *CollaborationRepository {
	return &CollaborationRepository{db: db}
}

type requestDetailRow struct {
	models.CollaborationRequest
	BusinessBrandName  string  `db:"b_brand_name"`
	BusinessIndustry   string  `db:"b_industry"`
	BusinessWebsite    *string `db:"b_website"`
	BusinessIsVerified bool    `db:"b_is_verified"`
	CreatorFullName    string  `db:"c_full_name"`
	CreatorUsername    *string `db:"c_username"`
	CreatorPlatform    string  `db:"c_primary_platform"`
	CreatorNiche       string  `db:"c_niche"`
	CreatorFollowers   int     `db:"c_followers_count"`
}

func (row requestDetailRow) detail() models.RequestDetail {
	return models.RequestDetail{
		Request: row.CollaborationRequest,
		Business: models.BusinessSummary{
			ID:         row.BusinessID,
			BrandName:  row.BusinessBrandName,
			Industry:   row.BusinessIndustry,
			Website:    row.BusinessWebsite,
			IsVerified: row.BusinessIsVerified,
		},
		Creator: models.CreatorSummary{
			ID:              row.CreatorID,
			FullName:        row.CreatorFullName,
			Username:        row.CreatorUsername,
			PrimaryPlatform: row.CreatorPlatform,
			Niche:           row.CreatorNiche,
			FollowersCount:  row.CreatorFollowers,
		},
	}
}

// Create inserts a pending request. A second pending request for the same pair
// fails on PendingRequestIndex.
func (r *CollaborationRepository) Create(ctx context.Context, req *models.CollaborationRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.Status = models.RequestStatusPending
	req.CreatedAt, req.UpdatedAt = now, now
	const query = `INSERT INTO collaboration_requests
	(id, business_id, creator_id, campaign_name, campaign_description, deliverables, budget_range, start_date, end_date, status, created_at, updated_at)
	VALUES (:id, :business_id, :creator_id, :campaign_name, :campaign_description, :deliverables, :budget_range, :start_date, :end_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create collaboration request: %w", err)
	}
	return nil
}

// GetByID returns the bare request row.
func (r *CollaborationRepository) GetByID(ctx context.Context, id string) (*models.CollaborationRequest, error) {
	const query = `SELECT id, business_id, creator_id, campaign_name, campaign_description, deliverables, budget_range,
	start_date, end_date, status, creator_notes, responded_at, campaign_status, completed_at, created_at, updated_at
	FROM collaboration_requests WHERE id = $1`
	var req models.CollaborationRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get collaboration request: %w", err)
	}
	return &req, nil
}

// GetDetail returns the request joined with both parties' summaries.
func (r *CollaborationRepository) GetDetail(ctx context.Context, id string) (*models.RequestDetail, error) {
	var row requestDetailRow
	if err := r.db.GetContext(ctx, &row, requestDetailSelect+requestDetailFrom+` WHERE r.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get collaboration request detail: %w", err)
	}
	detail := row.detail()
	return &detail, nil
}

// List returns requests for one party, newest first.
func (r *CollaborationRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.RequestDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.BusinessID != "" {
		conditions = append(conditions, fmt.Sprintf("r.business_id = $%d", len(args)+1))
		args = append(args, filter.BusinessID)
	}
	if filter.CreatorID != "" {
		conditions = append(conditions, fmt.Sprintf("r.creator_id = $%d", len(args)+1))
		args = append(args, filter.CreatorID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	sortBy := "r.created_at"
	if filter.SortBy == "updated_at" {
		sortBy = "r.updated_at"
	}

	return r.listDetails(ctx, conditions, args, sortBy, filter.Page, filter.PageSize, "list collaboration requests")
}

// ListCampaigns returns accepted requests where participantID is either party,
// or every campaign when participantID is empty.
func (r *CollaborationRepository) ListCampaigns(ctx context.Context, filter models.CampaignFilter) ([]models.RequestDetail, int, error) {
	conditions := []string{"r.campaign_status IS NOT NULL"}
	var args []interface{}

	if filter.ParticipantID != "" {
		conditions = append(conditions, fmt.Sprintf("(r.business_id = $%d OR r.creator_id = $%d)", len(args)+1, len(args)+1))
		args = append(args, filter.ParticipantID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("r.campaign_status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	return r.listDetails(ctx, conditions, args, "r.created_at", filter.Page, filter.PageSize, "list campaigns")
}

func (r *CollaborationRepository) listDetails(ctx context.Context, conditions []string, args []interface{}, sortBy string, page, pageSize int, op string) ([]models.RequestDetail, int, error) {
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("%s%s%s ORDER BY %s DESC, r.id DESC LIMIT %d OFFSET %d", requestDetailSelect, requestDetailFrom, where, sortBy, pageSize, offset)
	var rows []requestDetailRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM collaboration_requests r"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", op, err)
	}

	details := make([]models.RequestDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.detail())
	}
	return details, total, nil
}

// RespondParams carries a creator's decision on a pending request.
type RespondParams struct {
	ID          string
	CreatorID   string
	Status      models.RequestStatus
	Notes       *string
	RespondedAt time.Time
}

// Respond applies the decision only while the request is pending and addressed to
// CreatorID. Accepting opens the campaign in the same statement. Zero matched rows
// yields sql.ErrNoRows.
func (r *CollaborationRepository) Respond(ctx context.Context, params RespondParams) (*models.CollaborationRequest, error) {
	var campaignStatus *models.CampaignStatus
	if params.Status == models.RequestStatusAccepted {
		inProgress := models.CampaignStatusInProgress
		campaignStatus = &inProgress
	}
	const query = `UPDATE collaboration_requests
	SET status = $1, creator_notes = $2, responded_at = $3, updated_at = $3, campaign_status = $4
	WHERE id = $5 AND creator_id = $6 AND status = 'pending'` + requestReturning
	return r.conditionalWrite(ctx, "respond to collaboration request", query,
		params.Status, params.Notes, params.RespondedAt, campaignStatus, params.ID, params.CreatorID)
}

// Cancel withdraws a pending request owned by businessID. Zero matched rows
// yields sql.ErrNoRows.
func (r *CollaborationRepository) Cancel(ctx context.Context, id, businessID string, at time.Time) (*models.CollaborationRequest, error) {
	const query = `UPDATE collaboration_requests SET status = 'cancelled', updated_at = $1
	WHERE id = $2 AND business_id = $3 AND status = 'pending'` + requestReturning
	return r.conditionalWrite(ctx, "cancel collaboration request", query, at, id, businessID)
}

// CampaignStatusParams carries a participant's campaign transition.
type CampaignStatusParams struct {
	ID        string
	ActorID   string
	Status    models.CampaignStatus
	UpdatedAt time.Time
}

// UpdateCampaignStatus closes an in-progress campaign on behalf of either party.
// completed_at is written only for completion. Zero matched rows yields sql.ErrNoRows.
func (r *CollaborationRepository) UpdateCampaignStatus(ctx context.Context, params CampaignStatusParams) (*models.CollaborationRequest, error) {
	var completedAt *time.Time
	if params.Status == models.CampaignStatusCompleted {
		at := params.UpdatedAt
		completedAt = &at
	}
	const query = `UPDATE collaboration_requests
	SET campaign_status = $1, completed_at = $2, updated_at = $3
	WHERE id = $4 AND campaign_status = 'in_progress' AND (business_id = $5 OR creator_id = $5)` + requestReturning
	return r.conditionalWrite(ctx, "update campaign status", query,
		params.Status, completedAt, params.UpdatedAt, params.ID, params.ActorID)
}

func (r *CollaborationRepository) conditionalWrite(ctx context.Context, op, query string, args ...interface{}) (*models.CollaborationRequest, error) {
	var req models.CollaborationRequest
	if err := r.db.GetContext(ctx, &req, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &req, nil
}
