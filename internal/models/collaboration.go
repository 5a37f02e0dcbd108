package models

import "time"

// RequestStatus is the lifecycle state of a collaboration request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
	// RequestStatusExpired is accepted by the store but nothing transitions into it yet.
	RequestStatusExpired RequestStatus = "expired"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected, RequestStatusCancelled, RequestStatusExpired:
		return true
	}
	return false
}

// IsDecision reports whether s is an answer a creator may give to a pending request.
func (s RequestStatus) IsDecision() bool {
	return s == RequestStatusAccepted || s == RequestStatusRejected
}

// CampaignStatus is the lifecycle state of an accepted request.
type CampaignStatus string

const (
	CampaignStatusInProgress CampaignStatus = "in_progress"
	CampaignStatusCompleted  CampaignStatus = "completed"
	CampaignStatusCancelled  CampaignStatus = "cancelled"
)

// Valid reports whether s is a known campaign status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusInProgress, CampaignStatusCompleted, CampaignStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s is a status a participant may move a campaign into.
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusCompleted || s == CampaignStatusCancelled
}

// AcceptsNotes reports whether notes may still be appended in status s.
func (s CampaignStatus) AcceptsNotes() bool {
	return s == CampaignStatusInProgress || s == CampaignStatusCompleted
}

// CollaborationRequest is a row of collaboration_requests. Campaign fields are
// populated once the creator accepts.
type CollaborationRequest struct {
	ID                  string          `db:"id" json:"id"`
	BusinessID          string          `db:"business_id" json:"business_id"`
	CreatorID           string          `db:"creator_id" json:"creator_id"`
	CampaignName        string          `db:"campaign_name" json:"campaign_name"`
	CampaignDescription string          `db:"campaign_description" json:"campaign_description"`
	Deliverables        string          `db:"deliverables" json:"deliverables"`
	BudgetRange         *string         `db:"budget_range" json:"budget_range,omitempty"`
	StartDate           *time.Time      `db:"start_date" json:"start_date,omitempty"`
	EndDate             *time.Time      `db:"end_date" json:"end_date,omitempty"`
	Status              RequestStatus   `db:"status" json:"status"`
	CreatorNotes        *string         `db:"creator_notes" json:"creator_notes,omitempty"`
	RespondedAt         *time.Time      `db:"responded_at" json:"responded_at,omitempty"`
	CampaignStatus      *CampaignStatus `db:"campaign_status" json:"campaign_status,omitempty"`
	CompletedAt         *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// IsParticipant reports whether userID is one of the two parties.
func (r CollaborationRequest) IsParticipant(userID string) bool {
	return userID != "" && (r.BusinessID == userID || r.CreatorID == userID)
}

// BusinessSummary is the public slice of a business shown to its counterparts.
type BusinessSummary struct {
	ID         string  `json:"id"`
	BrandName  string  `json:"brand_name"`
	Industry   string  `json:"industry"`
	Website    *string `json:"website,omitempty"`
	IsVerified bool    `json:"is_verified"`
}

// CreatorSummary is the public slice of a creator shown to its counterparts.
type CreatorSummary struct {
	ID              string  `json:"id"`
	FullName        string  `json:"full_name"`
	Username        *string `json:"username,omitempty"`
	PrimaryPlatform string  `json:"primary_platform"`
	Niche           string  `json:"niche"`
	FollowersCount  int     `json:"followers_count"`
}

// RequestView is a request enriched with both parties' public summaries.
type RequestView struct {
	ID                  string           `json:"id"`
	CampaignName        string           `json:"campaign_name"`
	CampaignDescription string           `json:"campaign_description"`
	Deliverables        string           `json:"deliverables"`
	BudgetRange         *string          `json:"budget_range,omitempty"`
	StartDate           *time.Time       `json:"start_date,omitempty"`
	EndDate             *time.Time       `json:"end_date,omitempty"`
	Status              RequestStatus    `json:"status"`
	CreatorNotes        *string          `json:"creator_notes,omitempty"`
	RespondedAt         *time.Time       `json:"responded_at,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	Business            *BusinessSummary `json:"business,omitempty"`
	Creator             *CreatorSummary  `json:"creator,omitempty"`
}

// CampaignView is the post-acceptance projection of a request.
type CampaignView struct {
	ID                  string           `json:"id"`
	CampaignName        string           `json:"campaign_name"`
	CampaignDescription string           `json:"campaign_description"`
	Deliverables        string           `json:"deliverables"`
	BudgetRange         *string          `json:"budget_range,omitempty"`
	StartDate           *time.Time       `json:"start_date,omitempty"`
	EndDate             *time.Time       `json:"end_date,omitempty"`
	Status              CampaignStatus   `json:"status"`
	AcceptedAt          *time.Time       `json:"accepted_at,omitempty"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	Business            *BusinessSummary `json:"business,omitempty"`
	Creator             *CreatorSummary  `json:"creator,omitempty"`
}

// RequestFilter scopes request listings. Exactly one of BusinessID or CreatorID
// is normally set; both empty lists everything (back-office only).
type RequestFilter struct {
	BusinessID string
	CreatorID  string
	Status     *RequestStatus
	SortBy     string
	Page       int
	PageSize   int
}

// CampaignFilter scopes campaign listings to one participant, or all when empty.
type CampaignFilter struct {
	ParticipantID string
	Status        *CampaignStatus
	Page          int
	PageSize      int
}

// CreateRequestInput is the payload a business sends to open a request.
type CreateRequestInput struct {
	CreatorID           string  `json:"creator_id" validate:"required,uuid"`
	CampaignName        string  `json:"campaign_name" validate:"required,max=200"`
	CampaignDescription string  `json:"campaign_description" validate:"required,max=5000"`
	Deliverables        string  `json:"deliverables" validate:"required,max=5000"`
	BudgetRange         *string `json:"budget_range" validate:"omitempty,max=100"`
	StartDate           *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate             *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// RespondRequestInput is the creator's decision on a pending request.
type RespondRequestInput struct {
	Status RequestStatus `json:"status" validate:"required,oneof=accepted rejected"`
	Notes  *string       `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateCampaignStatusInput moves a campaign out of in_progress.
type UpdateCampaignStatusInput struct {
	Status CampaignStatus `json:"status" validate:"required,oneof=completed cancelled"`
}

// AddNoteInput appends a note to a campaign.
type AddNoteInput struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// RequestDetail is a request row joined with both parties' summaries.
type RequestDetail struct {
	Request  CollaborationRequest
	Business BusinessSummary
	Creator  CreatorSummary
}

// RequestView projects the detail into the request-facing view.
func (d RequestDetail) RequestView() RequestView {
	business := d.Business
	creator := d.Creator
	return RequestView{
		ID:                  d.Request.ID,
		CampaignName:        d.Request.CampaignName,
		CampaignDescription: d.Request.CampaignDescription,
		Deliverables:        d.Request.Deliverables,
		BudgetRange:         d.Request.BudgetRange,
		StartDate:           d.Request.StartDate,
		EndDate:             d.Request.EndDate,
		Status:              d.Request.Status,
		CreatorNotes:        d.Request.CreatorNotes,
		RespondedAt:         d.Request.RespondedAt,
		CreatedAt:           d.Request.CreatedAt,
		UpdatedAt:           d.Request.UpdatedAt,
		Business:            &business,
		Creator:             &creator,
	}
}

// CampaignView projects the detail into the campaign-facing view. ok is false
// when the request has not been accepted.
func (d RequestDetail) CampaignView() (CampaignView, bool) {
	if d.Request.CampaignStatus == nil {
		return CampaignView{}, false
	}
	business := d.Business
	creator := d.Creator
	return CampaignView{
		ID:                  d.Request.ID,
		CampaignName:        d.Request.CampaignName,
		CampaignDescription: d.Request.CampaignDescription,
		Deliverables:        d.Request.Deliverables,
		BudgetRange:         d.Request.BudgetRange,
		StartDate:           d.Request.StartDate,
		EndDate:             d.Request.EndDate,
		Status:              *d.Request.CampaignStatus,
		AcceptedAt:          d.Request.RespondedAt,
		CompletedAt:         d.Request.CompletedAt,
		CreatedAt:           d.Request.CreatedAt,
		UpdatedAt:           d.Request.UpdatedAt,
		Business:            &business,
		Creator:             &creator,
	}, true
}
