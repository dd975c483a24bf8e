package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы споров
const (
	DisputeStatusOpen     = "open"
	DisputeStatusResolved = "resolved"
)

// Решения по спорам
const (
	DisputeResolutionRelease = "release_to_influencer"
	DisputeResolutionRefund  = "refund_to_brand"
	DisputeResolutionSplit   = "split"
)

// ValidDisputeResolutions список валидных решений по спору
var ValidDisputeResolutions = map[string]struct{}{
	DisputeResolutionRelease: {},
	DisputeResolutionRefund:  {},
	DisputeResolutionSplit:   {},
}

// Dispute описывает спор по коллаборации в статусе completed_pending_release.
type Dispute struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	CollaborationID uuid.UUID  `db:"collaboration_id" json:"collaboration_id"`
	EscrowID        uuid.UUID  `db:"escrow_id" json:"escrow_id"`
	OpenedBy        uuid.UUID  `db:"opened_by" json:"opened_by"`
	OpenerRole      string     `db:"opener_role" json:"opener_role"`
	Reason          string     `db:"reason" json:"reason"`
	Details         *string    `db:"details" json:"details,omitempty"`
	Status          string     `db:"status" json:"status"`
	Resolution      *string    `db:"resolution" json:"resolution,omitempty"`
	AdminNotes      *string    `db:"admin_notes" json:"admin_notes,omitempty"`
	ResolvedBy      *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt      *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// Статусы запросов на отмену
const (
	CancellationStatusAutoApproved  = "auto_approved"
	CancellationStatusPendingReview = "pending_review"
	CancellationStatusResolved      = "resolved"
)

// Решения по запросам на отмену
const (
	CancellationResolutionFullRefund    = "full_refund"
	CancellationResolutionPartialRefund = "partial_refund"
	CancellationResolutionNoRefund      = "no_refund"
)

// ValidCancellationResolutions список валидных решений по отмене
var ValidCancellationResolutions = map[string]struct{}{
	CancellationResolutionFullRefund:    {},
	CancellationResolutionPartialRefund: {},
	CancellationResolutionNoRefund:      {},
}

// CancellationRequest описывает запрос на отмену коллаборации.
// Для отмены в статусе active запись создаётся сразу auto_approved,
// для in_progress уходит на рассмотрение администратору.
type CancellationRequest struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	CollaborationID uuid.UUID  `db:"collaboration_id" json:"collaboration_id"`
	RequestedBy     uuid.UUID  `db:"requested_by" json:"requested_by"`
	RequesterRole   string     `db:"requester_role" json:"requester_role"`
	Reason          string     `db:"reason" json:"reason"`
	Details         *string    `db:"details" json:"details,omitempty"`
	Status          string     `db:"status" json:"status"`
	Resolution      *string    `db:"resolution" json:"resolution,omitempty"`
	AdminNotes      *string    `db:"admin_notes" json:"admin_notes,omitempty"`
	ResolvedBy      *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt      *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}
