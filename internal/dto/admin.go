package dto

import (
	"time"

	"github.com/noah-isme/collab-league-api/internal/models"
)

// AdminOverview carries the back-office headline counts. A count that could
// not be read is reported as zero.
type AdminOverview struct {
	TotalUsers      int       `json:"totalUsers"`
	TotalCreators   int       `json:"totalCreators"`
	TotalBusinesses int       `json:"totalBusinesses"`
	TotalCampaigns  int       `json:"totalCampaigns"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// ToggleResult reports the new value of a back-office flag.
type ToggleResult struct {
	ID    string `json:"id"`
	Value bool   `json:"value"`
}

// CampaignExportRequest selects campaigns for an export file.
type CampaignExportRequest struct {
	Format string                 `json:"format" validate:"required,oneof=csv pdf"`
	Status *models.CampaignStatus `json:"status,omitempty"`
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
