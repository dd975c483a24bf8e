package dto

import (
	"time"

	"github.com/colaboreaza/collab-backend/internal/models"
)

// ErrorResponse represents a standardized error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standardized success payload
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse represents the result of registration or login
type AuthResponse struct {
	User         *models.User  `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    time.Duration `json:"expires_in"`
}

// CancelCollaborationResponse bundles the cancelled collaboration with the
// cancellation record created for it
type CancelCollaborationResponse struct {
	Collaboration *models.Collaboration       `json:"collaboration"`
	Cancellation  *models.CancellationRequest `json:"cancellation"`
}

// CommissionQuote represents a commission calculation for an arbitrary amount
type CommissionQuote struct {
	Amount     float64 `json:"amount"`
	Rate       float64 `json:"rate"`
	Commission float64 `json:"commission"`
	Payout     float64 `json:"payout"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// PaginatedDisputesResponse represents a paginated dispute list for the admin panel
type PaginatedDisputesResponse struct {
	Data       []models.Dispute `json:"data"`
	Pagination Pagination       `json:"pagination"`
}
