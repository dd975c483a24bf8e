package ws

import (
	"github.com/google/uuid"

	"github.com/colaboreaza/collab-backend/internal/models"
)

// MessagePublisher доставляет сообщения чата подключённым получателям через хаб.
type MessagePublisher struct {
	hub *Hub
}

// NewMessagePublisher создаёт publisher поверх хаба.
func NewMessagePublisher(hub *Hub) *MessagePublisher {
	return &MessagePublisher{hub: hub}
}

// Publish отправляет событие message.new получателю. Ошибка доставки не
// критична: история чата хранится в БД.
func (p *MessagePublisher) Publish(userID uuid.UUID, msg *models.Message) {
	_ = p.hub.BroadcastToUser(userID, "message.new", msg)
}
