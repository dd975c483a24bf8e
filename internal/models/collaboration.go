package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы коллабораций
const (
	CollabTypePaid   = "paid"
	CollabTypeBarter = "barter"
	CollabTypeFree   = "free"
)

// Статусы коллабораций
const (
	CollabStatusActive                  = "active"
	CollabStatusInProgress              = "in_progress"
	CollabStatusCompletedPendingRelease = "completed_pending_release"
	CollabStatusCompleted               = "completed"
	CollabStatusCancelled               = "cancelled"
	CollabStatusDisputed                = "disputed"
	CollabStatusPaused                  = "paused"
	CollabStatusClosed                  = "closed"
	CollabStatusCancelRequestedByBrand  = "cancellation_requested_by_brand"
	CollabStatusCancelRequestedByInf    = "cancellation_requested_by_influencer"
)

// Статусы оплаты коллаборации. Для barter/free всегда none,
// для paid статус следует за состоянием escrow.
const (
	PaymentStatusNone                    = "none"
	PaymentStatusAwaitingEscrow          = "awaiting_escrow"
	PaymentStatusSecured                 = "secured"
	PaymentStatusCompletedPendingRelease = "completed_pending_release"
	PaymentStatusReleased                = "released"
	PaymentStatusRefunded                = "refunded"
	PaymentStatusDisputed                = "disputed"
)

// ValidCollabTypes список валидных типов коллабораций
var ValidCollabTypes = map[string]struct{}{
	CollabTypePaid:   {},
	CollabTypeBarter: {},
	CollabTypeFree:   {},
}

// ValidCollabStatuses список валидных статусов коллабораций
var ValidCollabStatuses = map[string]struct{}{
	CollabStatusActive:                  {},
	CollabStatusInProgress:              {},
	CollabStatusCompletedPendingRelease: {},
	CollabStatusCompleted:               {},
	CollabStatusCancelled:               {},
	CollabStatusDisputed:                {},
	CollabStatusPaused:                  {},
	CollabStatusClosed:                  {},
	CollabStatusCancelRequestedByBrand:  {},
	CollabStatusCancelRequestedByInf:    {},
}

// Collaboration описывает рекламную коллаборацию бренда с инфлюенсером.
type Collaboration struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	BrandID         uuid.UUID  `db:"brand_id" json:"brand_id"`
	Title           string     `db:"title" json:"title"`
	Description     string     `db:"description" json:"description"`
	CollabType      string     `db:"collab_type" json:"collaboration_type"`
	Status          string     `db:"status" json:"status"`
	PaymentStatus   string     `db:"payment_status" json:"payment_status"`
	BudgetMin       *float64   `db:"budget_min" json:"budget_min,omitempty"`
	BudgetMax       *float64   `db:"budget_max" json:"budget_max,omitempty"`
	Platform        *string    `db:"platform" json:"platform,omitempty"`
	Niche           *string    `db:"niche" json:"niche,omitempty"`
	Deliverables    *string    `db:"deliverables" json:"deliverables,omitempty"`
	CreatorsNeeded  int        `db:"creators_needed" json:"creators_needed"`
	ApplicantsCount int        `db:"applicants_count" json:"applicants_count"`
	IsPublic        bool       `db:"is_public" json:"is_public"`
	DeadlineAt      *time.Time `db:"deadline_at" json:"deadline_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	// Имя бренда подгружается join-ом для публичных списков
	BrandName *string `db:"brand_name" json:"brand_name,omitempty"`
}

// EscrowTotal возвращает сумму сделки: budget_max, а при его отсутствии budget_min.
func (c *Collaboration) EscrowTotal() (float64, bool) {
	if c.BudgetMax != nil {
		return *c.BudgetMax, true
	}
	if c.BudgetMin != nil {
		return *c.BudgetMin, true
	}
	return 0, false
}

// InitialPaymentStatus возвращает стартовый payment_status для типа коллаборации.
func InitialPaymentStatus(collabType string) string {
	if collabType == CollabTypePaid {
		return PaymentStatusAwaitingEscrow
	}
	return PaymentStatusNone
}

// Статусы заявок
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

// ValidApplicationStatuses список валидных статусов заявок
var ValidApplicationStatuses = map[string]struct{}{
	ApplicationStatusPending:  {},
	ApplicationStatusAccepted: {},
	ApplicationStatusRejected: {},
}

// Application представляет заявку инфлюенсера на коллаборацию.
type Application struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	CollaborationID      uuid.UUID `db:"collaboration_id" json:"collaboration_id"`
	InfluencerID         uuid.UUID `db:"influencer_id" json:"influencer_id"`
	CoverLetter          string    `db:"cover_letter" json:"cover_letter"`
	ProposedPrice        *float64  `db:"proposed_price" json:"proposed_price,omitempty"`
	SelectedDeliverables *string   `db:"selected_deliverables" json:"selected_deliverables,omitempty"`
	Status               string    `db:"status" json:"status"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
	// Связанные данные (загружаются отдельно)
	Collaboration *Collaboration     `json:"collaboration,omitempty"`
	Influencer    *InfluencerProfile `json:"influencer,omitempty"`
}
