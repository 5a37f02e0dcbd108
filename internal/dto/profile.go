package dto

import "github.com/noah-isme/collab-league-api/internal/models"

// Onboarding steps reported by the completion endpoint.
const (
	NextStepCreatorProfile  = "creator_profile"
	NextStepBusinessProfile = "business_profile"
)

// ProfileCompletion reports how far the caller is through onboarding.
type ProfileCompletion struct {
	Role               *models.Role `json:"role,omitempty"`
	OnboardingComplete bool         `json:"onboardingComplete"`
	NextStep           string       `json:"nextStep,omitempty"`
}
