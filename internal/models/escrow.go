package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы escrow
const (
	EscrowStatusPending  = "pending"
	EscrowStatusSecured  = "secured"
	EscrowStatusDisputed = "disputed"
	EscrowStatusReleased = "released"
	EscrowStatusRefunded = "refunded"
)

// Escrow представляет защищённую сделку по оплачиваемой коллаборации.
// Ровно один escrow на коллаборацию; ставка комиссии фиксируется при создании.
type Escrow struct {
	ID                 uuid.UUID  `db:"id" json:"escrow_id"`
	CollaborationID    uuid.UUID  `db:"collaboration_id" json:"collaboration_id"`
	BrandID            uuid.UUID  `db:"brand_id" json:"brand_id"`
	TotalAmount        float64    `db:"total_amount" json:"total_amount"`
	CommissionRate     float64    `db:"commission_rate" json:"commission_rate"`
	PlatformCommission float64    `db:"platform_commission" json:"platform_commission"`
	InfluencerPayout   float64    `db:"influencer_payout" json:"influencer_payout"`
	Status             string     `db:"status" json:"status"`
	PaymentReference   *string    `db:"payment_reference" json:"payment_reference,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	SecuredAt          *time.Time `db:"secured_at" json:"secured_at,omitempty"`
	ClosedAt           *time.Time `db:"closed_at" json:"closed_at,omitempty"`
}

// CommissionRecord фиксирует движение средств при закрытии escrow.
// Записи только добавляются, для финансовой отчётности.
type CommissionRecord struct {
	ID               uuid.UUID `db:"id" json:"id"`
	CollaborationID  uuid.UUID `db:"collaboration_id" json:"collaboration_id"`
	EscrowID         uuid.UUID `db:"escrow_id" json:"escrow_id"`
	GrossAmount      float64   `db:"gross_amount" json:"gross_amount"`
	CommissionRate   float64   `db:"commission_rate" json:"commission_rate"`
	CommissionAmount float64   `db:"commission_amount" json:"commission_amount"`
	PayoutAmount     float64   `db:"payout_amount" json:"payout_amount"`
	RefundAmount     float64   `db:"refund_amount" json:"refund_amount"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// CommissionSettings хранит глобальную ставку комиссии платформы.
type CommissionSettings struct {
	ID        int       `db:"id" json:"-"`
	Rate      float64   `db:"rate" json:"commission_rate"`
	UpdatedBy *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
