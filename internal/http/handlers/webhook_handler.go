package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colaboreaza/collab-backend/internal/http/handlers/common"
	"github.com/colaboreaza/collab-backend/internal/service"
)

// WebhookHandler принимает callback-и платёжного шлюза.
type WebhookHandler struct {
	escrows *service.EscrowService
}

// NewWebhookHandler создаёт хэндлер.
func NewWebhookHandler(escrows *service.EscrowService) *WebhookHandler {
	return &WebhookHandler{escrows: escrows}
}

// HandlePayment обрабатывает POST /webhooks/payment.
// Всегда отвечает 200: ошибки обработки логируются, повторную доставку
// контролирует шлюз.
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		common.RespondBadRequest(c, "не удалось прочитать payload")
		return
	}

	h.escrows.HandleWebhook(c.Request.Context(), payload, c.GetHeader("X-Signature"))
	c.JSON(http.StatusOK, gin.H{"received": true})
}
