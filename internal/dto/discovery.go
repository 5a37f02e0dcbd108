package dto

import "github.com/noah-isme/collab-league-api/internal/models"

// DiscoveryResult is one page of the public creator listing.
type DiscoveryResult struct {
	Creators   []models.Creator `json:"creators"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}
