package dto

import (
	"time"

	"github.com/noah-isme/collab-league-api/internal/models"
)

// BusinessDashboardStats summarises a business's requests and campaigns.
type BusinessDashboardStats struct {
	PendingRequests    int `json:"pendingRequests"`
	ActiveCampaigns    int `json:"activeCampaigns"`
	CompletedCampaigns int `json:"completedCampaigns"`
	TotalRequests      int `json:"totalRequests"`
	AcceptanceRate     int `json:"acceptanceRate"`
}

// CreatorDashboardStats summarises a creator's offers and campaigns.
type CreatorDashboardStats struct {
	PendingRequests    int `json:"pendingRequests"`
	ActiveCampaigns    int `json:"activeCampaigns"`
	CompletedCampaigns int `json:"completedCampaigns"`
	TotalOffers        int `json:"totalOffers"`
}

// Activity feed entry kinds.
const (
	ActivityTypeRequest = "request"
	ActivityTypeNote    = "note"
)

// ActivityItem is one row of the dashboard recent activity feed.
type ActivityItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardResponse is the role-specific dashboard payload.
type DashboardResponse struct {
	Role        models.Role             `json:"role"`
	Business    *BusinessDashboardStats `json:"business,omitempty"`
	Creator     *CreatorDashboardStats  `json:"creator,omitempty"`
	Activity    []ActivityItem          `json:"activity"`
	GeneratedAt time.Time               `json:"generatedAt"`
}
