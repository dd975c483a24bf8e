package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler отвечает на проверки живости площадки. Кроме базы
// проверяется каталог медиатеки: без него падают загрузки логотипов и фото.
type HealthHandler struct {
	db        *sqlx.DB
	mediaPath string
}

// NewHealthHandler создаёт health handler.
func NewHealthHandler(db *sqlx.DB, mediaPath string) *HealthHandler {
	return &HealthHandler{db: db, mediaPath: mediaPath}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Service   string            `json:"service"`
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Проверка подключения к БД
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	// Проверка статистики пула соединений
	stats := h.db.Stats()
	if stats.OpenConnections > stats.MaxOpenConnections {
		checks["connection_pool"] = "warning: too many connections"
	} else {
		checks["connection_pool"] = "healthy"
	}

	// Каталог медиатеки: без него не работают загрузки
	if info, err := os.Stat(h.mediaPath); err != nil || !info.IsDir() {
		checks["media_storage"] = "unhealthy: каталог медиатеки недоступен"
		status = "unhealthy"
	} else {
		checks["media_storage"] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Service:   "collab-backend",
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}
