package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/colaboreaza/collab-backend/internal/logger"
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		statusCode, message := mapError(err.Err)
		c.JSON(statusCode, gin.H{"error": message, "code": errorCode(err.Err)})
	}
}

// mapError переводит доменную ошибку в HTTP статус и сообщение клиенту.
func mapError(err error) (int, string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, appErr.Message
	}

	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "пользователь не найден"
	case errors.Is(err, repository.ErrCollaborationNotFound):
		return http.StatusNotFound, "коллаборация не найдена"
	case errors.Is(err, repository.ErrApplicationNotFound):
		return http.StatusNotFound, "заявка не найдена"
	case errors.Is(err, repository.ErrEscrowNotFound):
		return http.StatusNotFound, "escrow не найден"
	case errors.Is(err, repository.ErrDisputeNotFound):
		return http.StatusNotFound, "спор не найден"
	case errors.Is(err, repository.ErrStatusConflict):
		return http.StatusConflict, "состояние изменилось, повторите запрос"
	}

	if msg := err.Error(); msg != "" && !containsInternalKeywords(msg) {
		return http.StatusBadRequest, msg
	}

	return http.StatusInternalServerError, "внутренняя ошибка сервера"
}

// errorCode возвращает машинный код ошибки для клиента.
func errorCode(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return string(appErr.Code)
	}
	return string(apperror.ErrCodeInternal)
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
		"repository:",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
