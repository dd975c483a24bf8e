package models

import (
	"time"

	"github.com/google/uuid"
)

// Message описывает сообщение в чате коллаборации.
// Сообщения только добавляются и никогда не удаляются.
type Message struct {
	ID              uuid.UUID `db:"id" json:"message_id"`
	CollaborationID uuid.UUID `db:"collaboration_id" json:"collaboration_id"`
	SenderID        uuid.UUID `db:"sender_id" json:"sender_id"`
	SenderType      string    `db:"sender_type" json:"sender_type"`
	Content         string    `db:"content" json:"content"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// MessageThread возвращает историю чата вместе с флагом блокировки.
// is_locked=true означает, что коллаборация в споре: читать можно, писать нельзя.
type MessageThread struct {
	Messages []Message `json:"messages"`
	IsLocked bool      `json:"is_locked"`
}

// Review описывает отзыв по принятой заявке. Отзывы скрыты до взаимного
// раскрытия: оба становятся видимыми одновременно либо по таймауту.
type Review struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ApplicationID uuid.UUID `db:"application_id" json:"application_id"`
	ReviewerID    uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	ReviewedID    uuid.UUID `db:"reviewed_id" json:"reviewed_id"`
	ReviewerRole  string    `db:"reviewer_role" json:"reviewer_role"`
	Rating        int       `db:"rating" json:"rating"`
	Comment       *string   `db:"comment" json:"comment,omitempty"`
	IsRevealed    bool      `db:"is_revealed" json:"is_revealed"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// MediaFile описывает загруженный файл.
type MediaFile struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FilePath  string     `db:"file_path" json:"file_path"`
	FileType  string     `db:"file_type" json:"file_type"`
	FileSize  int64      `db:"file_size" json:"file_size"`
	IsPublic  bool       `db:"is_public" json:"is_public"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// PlatformStats содержит публичные счётчики для лендинга.
type PlatformStats struct {
	TotalBrands         int `json:"total_brands"`
	TotalInfluencers    int `json:"total_influencers"`
	TotalCollaborations int `json:"total_collaborations"`
	CompletedDeals      int `json:"completed_deals"`
}

// AdminStats содержит счётчики для панели администратора.
type AdminStats struct {
	TotalUsers          int     `json:"total_users"`
	TotalCollaborations int     `json:"total_collaborations"`
	ActiveDisputes      int     `json:"active_disputes"`
	PendingCancellations int    `json:"pending_cancellations"`
	EscrowVolume        float64 `json:"escrow_volume"`
	CommissionEarned    float64 `json:"commission_earned"`
}
