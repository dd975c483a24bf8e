package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colaboreaza/collab-backend/internal/dto"
	"github.com/colaboreaza/collab-backend/internal/http/handlers/common"
	"github.com/colaboreaza/collab-backend/internal/service"
)

// SettingsHandler предоставляет HTTP слой для глобальных настроек платформы.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler создаёт хэндлер.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetCommission обрабатывает GET /settings/commission.
func (h *SettingsHandler) GetCommission(c *gin.Context) {
	settings, err := h.settings.GetCommission(c.Request.Context())
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateCommission обрабатывает PUT /admin/settings/commission.
func (h *SettingsHandler) UpdateCommission(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.UpdateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	settings, err := h.settings.UpdateCommission(c.Request.Context(), adminID, *req.Rate)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
