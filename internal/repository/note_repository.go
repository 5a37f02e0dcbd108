package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/collab-league-api/internal/models"
)

// NoteRepository persists append-only campaign notes.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository constructs a NoteRepository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create appends a note when the campaign still accepts notes and the author is
// one of its parties. Zero inserted rows yields sql.ErrNoRows.
func (r *NoteRepository) Create(ctx context.Context, note *models.CampaignNote) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO campaign_notes (id, campaign_id, author_id, author_display_name, content, created_at)
	SELECT $1, r.id, $2, $3, $4, $5
	FROM collaboration_requests r
	WHERE r.id = $6
	AND r.campaign_status IN ('in_progress', 'completed')
	AND (r.business_id = $2 OR r.creator_id = $2)`
	var displayName interface{}
	if note.AuthorName != "" {
		displayName = note.AuthorName
	}
	result, err := r.db.ExecContext(ctx, query, note.ID, note.AuthorID, displayName, note.Content, note.CreatedAt, note.CampaignID)
	if err != nil {
		return fmt.Errorf("create campaign note: %w", err)
	}
	return requireAffected(result, "create campaign note")
}

// ListByCampaign returns a campaign's notes oldest first, resolving author names
// that were not stored at write time.
func (r *NoteRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.CampaignNote, error) {
	const query = `SELECT n.id, n.campaign_id, n.author_id, p.role AS author_role,
	COALESCE(n.author_display_name,
		CASE WHEN p.role = 'business' THEN COALESCE(b.brand_name, 'Business User')
		ELSE COALESCE(c.full_name, 'Creator User') END) AS author_name,
	n.content, n.created_at
	FROM campaign_notes n
	LEFT JOIN profiles p ON p.id = n.author_id
	LEFT JOIN businesses b ON b.id = n.author_id
	LEFT JOIN creators c ON c.id = n.author_id
	WHERE n.campaign_id = $1
	ORDER BY n.created_at ASC, n.id ASC`
	var notes []models.CampaignNote
	if err := r.db.SelectContext(ctx, &notes, query, campaignID); err != nil {
		return nil, fmt.Errorf("list campaign notes: %w", err)
	}
	return notes, nil
}

// ListRecentByAuthor returns the author's latest notes with their campaign names.
func (r *NoteRepository) ListRecentByAuthor(ctx context.Context, authorID string, limit int) ([]models.NoteActivity, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `SELECT n.id, n.campaign_id, r.campaign_name, n.content, n.created_at
	FROM campaign_notes n
	JOIN collaboration_requests r ON r.id = n.campaign_id
	WHERE n.author_id = $1
	ORDER BY n.created_at DESC
	LIMIT $2`
	var notes []models.NoteActivity
	if err := r.db.SelectContext(ctx, &notes, query, authorID, limit); err != nil {
		return nil, fmt.Errorf("list recent notes: %w", err)
	}
	return notes, nil
}
