package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/colaboreaza/collab-backend/internal/dto"
	"github.com/colaboreaza/collab-backend/internal/http/handlers/common"
	"github.com/colaboreaza/collab-backend/internal/service"
)

// EscrowHandler предоставляет HTTP слой для операций с escrow.
type EscrowHandler struct {
	escrows *service.EscrowService
}

// NewEscrowHandler создаёт хэндлер.
func NewEscrowHandler(escrows *service.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrows: escrows}
}

// Create обрабатывает POST /collaborations/:id/escrow.
func (h *EscrowHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	collabID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	escrow, err := h.escrows.CreateEscrow(c.Request.Context(), collabID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, escrow)
}

// Get обрабатывает GET /collaborations/:id/escrow.
func (h *EscrowHandler) Get(c *gin.Context) {
	collabID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	escrow, err := h.escrows.GetByCollaboration(c.Request.Context(), collabID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

// Secure обрабатывает POST /escrows/:id/secure.
func (h *EscrowHandler) Secure(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	escrowID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	escrow, err := h.escrows.SecureEscrow(c.Request.Context(), escrowID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

// Release обрабатывает POST /escrows/:id/release.
func (h *EscrowHandler) Release(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	escrowID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	escrow, err := h.escrows.ReleaseEscrow(c.Request.Context(), escrowID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

// Refund обрабатывает POST /escrows/:id/refund.
func (h *EscrowHandler) Refund(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	escrowID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	escrow, err := h.escrows.RefundEscrow(c.Request.Context(), escrowID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

// CalculateCommission обрабатывает GET /commission/calculate?amount=.
func (h *EscrowHandler) CalculateCommission(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		common.RespondBadRequest(c, "параметр amount обязателен и должен быть числом")
		return
	}

	rate, commission, payout, err := h.escrows.CalculateCommission(c.Request.Context(), amount)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CommissionQuote{
		Amount:     amount,
		Rate:       rate,
		Commission: commission,
		Payout:     payout,
	})
}
