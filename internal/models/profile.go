package models

import "time"

// Profile is the role-bearing row created at sign-up.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	Role      Role      `db:"role" json:"role"`
	Username  *string   `db:"username" json:"username,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Actor is the authorization context of one operation. It is resolved from the
// store per call and never cached across operations.
type Actor struct {
	UserID             string
	Role               *Role
	OnboardingComplete bool
	Username           *string
	DisplayName        string
}

// HasRole reports whether the actor's stored role is one of roles.
func (a Actor) HasRole(roles ...Role) bool {
	if a.Role == nil {
		return false
	}
	for _, r := range roles {
		if *a.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the actor is a back-office administrator.
func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// Creator is the creator-side profile row, joined with the profile username.
type Creator struct {
	ID              string    `db:"id" json:"id"`
	Username        *string   `db:"username" json:"username,omitempty"`
	FullName        string    `db:"full_name" json:"full_name"`
	Bio             *string   `db:"bio" json:"bio,omitempty"`
	PrimaryPlatform string    `db:"primary_platform" json:"primary_platform"`
	Niche           string    `db:"niche" json:"niche"`
	FollowersCount  int       `db:"followers_count" json:"followers_count"`
	ContactEmail    string    `db:"contact_email" json:"contact_email"`
	Website         *string   `db:"website" json:"website,omitempty"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	IsPublic        bool      `db:"is_public" json:"is_public"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Business is the business-side profile row.
type Business struct {
	ID           string    `db:"id" json:"id"`
	Username     *string   `db:"username" json:"username,omitempty"`
	BrandName    string    `db:"brand_name" json:"brand_name"`
	Industry     string    `db:"industry" json:"industry"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Website      *string   `db:"website" json:"website,omitempty"`
	ContactEmail string    `db:"contact_email" json:"contact_email"`
	CompanySize  *string   `db:"company_size" json:"company_size,omitempty"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CreatorProfileInput is the onboarding and edit payload for creators.
type CreatorProfileInput struct {
	FullName        string  `json:"full_name" validate:"required,max=120"`
	Bio             *string `json:"bio" validate:"omitempty,max=2000"`
	PrimaryPlatform string  `json:"primary_platform" validate:"required,platform"`
	Niche           string  `json:"niche" validate:"required,niche"`
	FollowersCount  int     `json:"followers_count" validate:"gte=0"`
	ContactEmail    string  `json:"contact_email" validate:"required,email"`
	Website         *string `json:"website" validate:"omitempty,url"`
	IsPublic        *bool   `json:"is_public"`
}

// BusinessProfileInput is the onboarding and edit payload for businesses.
type BusinessProfileInput struct {
	BrandName    string  `json:"brand_name" validate:"required,max=120"`
	Industry     string  `json:"industry" validate:"required,industry"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Website      *string `json:"website" validate:"omitempty,url"`
	ContactEmail string  `json:"contact_email" validate:"required,email"`
	CompanySize  *string `json:"company_size" validate:"omitempty,company_size"`
}

// ProfileDetails merges the profile with whichever role row exists.
type ProfileDetails struct {
	Profile            Profile   `json:"profile"`
	Email              string    `json:"email"`
	Creator            *Creator  `json:"creator,omitempty"`
	Business           *Business `json:"business,omitempty"`
	OnboardingComplete bool      `json:"onboarding_complete"`
}

// Catalogue values accepted by profile validation.
var (
	Niches = []string{
		"fashion", "tech", "travel", "food", "fitness", "beauty", "gaming", "business", "lifestyle",
		"education", "entertainment", "sports", "music", "art", "parenting", "pets", "home", "other",
	}
	Platforms = []string{
		"instagram", "youtube", "tiktok", "twitter", "linkedin", "twitch", "facebook", "snapchat", "pinterest", "other",
	}
	Industries = []string{
		"ecommerce", "saas", "fashion", "food-beverage", "health-wellness", "beauty-cosmetics",
		"travel-hospitality", "entertainment", "education", "finance", "real-estate", "automotive",
		"sports-fitness", "gaming", "marketing-agency", "nonprofit", "other",
	}
	CompanySizes = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}
)
