package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Статусы платежа на стороне шлюза.
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// CheckoutResult описывает созданную платёжную сессию.
type CheckoutResult struct {
	Reference   string
	CheckoutURL string
}

// WebhookEvent описывает распарсенное событие шлюза.
type WebhookEvent struct {
	Type      string
	Reference string
	EscrowID  uuid.UUID
}

// Gateway — внешний платёжный провайдер. Локальные статусы меняются
// только после подтверждения шлюза; при ошибке состояние не трогаем.
type Gateway interface {
	// CreateCheckout открывает платёжную сессию для удержания средств.
	CreateCheckout(ctx context.Context, escrowID uuid.UUID, amount float64, currency string) (*CheckoutResult, error)
	// GetStatus возвращает статус платежа по референсу.
	GetStatus(ctx context.Context, reference string) (string, error)
	// HandleWebhook проверяет и разбирает callback шлюза.
	HandleWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// SimulatedGateway подтверждает платежи мгновенно. Используется в development
// и в тестах вместо реального провайдера.
type SimulatedGateway struct{}

// NewSimulatedGateway создаёт симулятор шлюза.
func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

// CreateCheckout выдаёт непрозрачный payment_reference.
func (g *SimulatedGateway) CreateCheckout(ctx context.Context, escrowID uuid.UUID, amount float64, currency string) (*CheckoutResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment gateway: сумма должна быть положительной")
	}

	ref := "pay_sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
	return &CheckoutResult{
		Reference:   ref,
		CheckoutURL: fmt.Sprintf("https://checkout.example.com/s/%s", ref),
	}, nil
}

// GetStatus в симуляторе всегда возвращает succeeded для известных референсов.
func (g *SimulatedGateway) GetStatus(ctx context.Context, reference string) (string, error) {
	if !strings.HasPrefix(reference, "pay_sim_") {
		return "", fmt.Errorf("payment gateway: неизвестный референс %q", reference)
	}
	return StatusSucceeded, nil
}

type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		Reference string `json:"reference"`
		EscrowID  string `json:"escrow_id"`
	} `json:"data"`
}

// HandleWebhook разбирает callback. Подпись в симуляторе не проверяется.
func (g *SimulatedGateway) HandleWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	var parsed webhookPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("payment gateway: некорректный payload вебхука: %w", err)
	}

	if parsed.Type == "" || parsed.Data.Reference == "" {
		return nil, fmt.Errorf("payment gateway: в payload вебхука нет type или reference")
	}

	event := &WebhookEvent{
		Type:      parsed.Type,
		Reference: parsed.Data.Reference,
	}

	if parsed.Data.EscrowID != "" {
		id, err := uuid.Parse(parsed.Data.EscrowID)
		if err != nil {
			return nil, fmt.Errorf("payment gateway: некорректный escrow_id в вебхуке: %w", err)
		}
		event.EscrowID = id
	}

	return event, nil
}
