package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

func errorTestRouter(err error) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(err)
	})
	return r
}

func doErrorRequest(t *testing.T, err error) (int, map[string]string) {
	t.Helper()
	r := errorTestRouter(err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestErrorHandler_AppError(t *testing.T) {
	code, body := doErrorRequest(t, apperror.New(apperror.ErrCodeInvalidState, "коллаборация ещё не завершена"))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "коллаборация ещё не завершена", body["error"])
	assert.Equal(t, string(apperror.ErrCodeInvalidState), body["code"])
}

func TestErrorHandler_RepositorySentinels(t *testing.T) {
	code, body := doErrorRequest(t, repository.ErrCollaborationNotFound)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "коллаборация не найдена", body["error"])

	code, body = doErrorRequest(t, repository.ErrStatusConflict)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "состояние изменилось, повторите запрос", body["error"])
}

func TestErrorHandler_MasksInternalMessages(t *testing.T) {
	code, body := doErrorRequest(t, errors.New("escrow repository: get by id sql: no rows"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "внутренняя ошибка сервера", body["error"])
}

func TestErrorHandler_PassesPlainMessages(t *testing.T) {
	code, body := doErrorRequest(t, errors.New("некорректный параметр amount"))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "некорректный параметр amount", body["error"])
}
