package models

import "time"

// CampaignNote is an append-only message attached to a campaign.
type CampaignNote struct {
	ID         string    `db:"id" json:"id"`
	CampaignID string    `db:"campaign_id" json:"campaign_id"`
	AuthorID   string    `db:"author_id" json:"author_id"`
	AuthorRole *Role     `db:"author_role" json:"author_role,omitempty"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Fallback author names used when a note author has no role row.
const (
	FallbackBusinessName = "Business User"
	FallbackCreatorName  = "Creator User"
)

// NoteActivity is a note joined with its campaign name for activity feeds.
type NoteActivity struct {
	ID           string    `db:"id"`
	CampaignID   string    `db:"campaign_id"`
	CampaignName string    `db:"campaign_name"`
	Content      string    `db:"content"`
	CreatedAt    time.Time `db:"created_at"`
}
