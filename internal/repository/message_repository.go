package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colaboreaza/collab-backend/internal/models"
)

// MessageRepository отвечает за переписку внутри коллабораций.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository создаёт новый экземпляр.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create сохраняет сообщение.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (collaboration_id, sender_id, sender_type, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		msg.CollaborationID,
		msg.SenderID,
		msg.SenderType,
		msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("message repository: create %w", err)
	}
	return nil
}

// ListByCollaboration возвращает историю чата в хронологическом порядке.
func (r *MessageRepository) ListByCollaboration(ctx context.Context, collabID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	query := `
		SELECT * FROM messages
		WHERE collaboration_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &messages, query, collabID, limit, offset); err != nil {
		return nil, fmt.Errorf("message repository: list by collaboration %w", err)
	}
	return messages, nil
}
