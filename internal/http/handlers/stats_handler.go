package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colaboreaza/collab-backend/internal/http/handlers/common"
	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/service"
)

// StatsHandler предоставляет HTTP слой для статистики платформы.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler создаёт хэндлер.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Platform обрабатывает GET /stats. Публичные счётчики для лендинга.
func (h *StatsHandler) Platform(c *gin.Context) {
	stats, err := h.stats.PlatformStats(c.Request.Context())
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Admin обрабатывает GET /admin/stats.
func (h *StatsHandler) Admin(c *gin.Context) {
	stats, err := h.stats.AdminStats(c.Request.Context())
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// CommissionLedger обрабатывает GET /admin/commission-records.
func (h *StatsHandler) CommissionLedger(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	records, err := h.stats.CommissionLedger(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	if records == nil {
		records = []models.CommissionRecord{}
	}

	c.JSON(http.StatusOK, records)
}
