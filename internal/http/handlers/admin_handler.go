package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colaboreaza/collab-backend/internal/dto"
	"github.com/colaboreaza/collab-backend/internal/http/handlers/common"
	"github.com/colaboreaza/collab-backend/internal/service"
)

// AdminHandler предоставляет административные операции над пользователями.
type AdminHandler struct {
	profiles *service.ProfileService
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(profiles *service.ProfileService) *AdminHandler {
	return &AdminHandler{profiles: profiles}
}

// SetPro обрабатывает PUT /admin/users/:id/pro.
func (h *AdminHandler) SetPro(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SetProRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	expiresAt, err := req.ParseExpiresAt()
	if err != nil {
		common.RespondBadRequest(c, "некорректный expires_at")
		return
	}

	if err := h.profiles.SetPro(c.Request.Context(), userID, req.IsPro, expiresAt); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "подписка обновлена"})
}
