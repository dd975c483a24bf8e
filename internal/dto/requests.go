package dto

import (
	"time"
)

// RegisterRequest represents the request to register a new user
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
	Role     string `json:"role" binding:"required"`
}

// LoginRequest represents the request to authenticate
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request to rotate a token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateBrandProfileRequest represents the request to upsert a brand profile
type UpdateBrandProfileRequest struct {
	CompanyName string  `json:"company_name" binding:"required"`
	Description *string `json:"description"`
	Industry    *string `json:"industry"`
	Website     *string `json:"website"`
	LogoID      *string `json:"logo_id"`
}

// UpdateInfluencerProfileRequest represents the request to upsert an influencer profile
type UpdateInfluencerProfileRequest struct {
	DisplayName    string   `json:"display_name" binding:"required"`
	Bio            *string  `json:"bio"`
	Platform       *string  `json:"platform"`
	Niche          *string  `json:"niche"`
	FollowersCount *int     `json:"followers_count"`
	EngagementRate *float64 `json:"engagement_rate"`
	PricePerPost   *float64 `json:"price_per_post"`
	Location       *string  `json:"location"`
	PhotoID        *string  `json:"photo_id"`
	IsAvailable    bool     `json:"is_available"`
}

// CreateCollaborationRequest represents the request to create a collaboration
type CreateCollaborationRequest struct {
	Title             string   `json:"title" binding:"required"`
	Description       string   `json:"description" binding:"required"`
	CollaborationType string   `json:"collaboration_type" binding:"required"`
	BudgetMin         *float64 `json:"budget_min"`
	BudgetMax         *float64 `json:"budget_max"`
	Platform          *string  `json:"platform"`
	Niche             *string  `json:"niche"`
	Deliverables      *string  `json:"deliverables"`
	CreatorsNeeded    int      `json:"creators_needed"`
	IsPublic          *bool    `json:"is_public"`
	DeadlineAt        *string  `json:"deadline_at"`
}

// UpdateCollaborationRequest represents the request to update a collaboration
type UpdateCollaborationRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description" binding:"required"`
	BudgetMin      *float64 `json:"budget_min"`
	BudgetMax      *float64 `json:"budget_max"`
	Platform       *string  `json:"platform"`
	Niche          *string  `json:"niche"`
	Deliverables   *string  `json:"deliverables"`
	CreatorsNeeded int      `json:"creators_needed"`
	IsPublic       *bool    `json:"is_public"`
	DeadlineAt     *string  `json:"deadline_at"`
}

// UpdateCollaborationStatusRequest represents the request to change a collaboration status
type UpdateCollaborationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CancelCollaborationRequest represents the request to cancel a collaboration
type CancelCollaborationRequest struct {
	Reason  string  `json:"reason" binding:"required"`
	Details *string `json:"details"`
}

// CreateApplicationRequest represents an influencer applying to a collaboration
type CreateApplicationRequest struct {
	CoverLetter          string   `json:"cover_letter" binding:"required"`
	ProposedPrice        *float64 `json:"proposed_price"`
	SelectedDeliverables *string  `json:"selected_deliverables"`
}

// DecideApplicationRequest represents the request to accept or reject an application
type DecideApplicationRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateDisputeRequest represents the request to open a dispute
type CreateDisputeRequest struct {
	Reason  string  `json:"reason" binding:"required"`
	Details *string `json:"details"`
}

// ResolveDisputeRequest represents an admin decision on a dispute
type ResolveDisputeRequest struct {
	Resolution string  `json:"resolution" binding:"required"`
	AdminNotes *string `json:"admin_notes"`
}

// ResolveCancellationRequest represents an admin decision on a cancellation request
type ResolveCancellationRequest struct {
	Resolution string  `json:"resolution" binding:"required"`
	AdminNotes *string `json:"admin_notes"`
}

// SendMessageRequest represents the request to send a chat message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SubmitReviewRequest represents the request to leave a review on an application
type SubmitReviewRequest struct {
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment"`
}

// UpdateCommissionRequest represents the request to change the platform commission rate
type UpdateCommissionRequest struct {
	Rate *float64 `json:"rate" binding:"required"`
}

// SetProRequest represents an admin request to toggle a PRO subscription
type SetProRequest struct {
	IsPro     bool    `json:"is_pro"`
	ExpiresAt *string `json:"expires_at"`
}

// ParseDeadline converts string deadline to time.Time pointer
func (r *CreateCollaborationRequest) ParseDeadline() (*time.Time, error) {
	return parseTimePtr(r.DeadlineAt)
}

// ParseDeadline converts string deadline to time.Time pointer
func (r *UpdateCollaborationRequest) ParseDeadline() (*time.Time, error) {
	return parseTimePtr(r.DeadlineAt)
}

// ParseExpiresAt converts string expiration to time.Time pointer
func (r *SetProRequest) ParseExpiresAt() (*time.Time, error) {
	return parseTimePtr(r.ExpiresAt)
}

func parseTimePtr(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
