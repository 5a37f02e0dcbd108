package models

// Discovery sort keys.
const (
	DiscoverySortFollowers = "followers_count"
	DiscoverySortCreatedAt = "created_at"
	DiscoverySortFullName  = "full_name"
)

// DiscoveryFilter narrows the public creator listing.
type DiscoveryFilter struct {
	Search       string `json:"search,omitempty"`
	Niche        string `json:"niche,omitempty"`
	Platform     string `json:"platform,omitempty"`
	MinFollowers *int   `json:"min_followers,omitempty"`
	MaxFollowers *int   `json:"max_followers,omitempty"`
	SortBy       string `json:"sort_by,omitempty"`
	SortOrder    string `json:"sort_order,omitempty"`
	Page         int    `json:"page"`
	Limit        int    `json:"limit"`
}
