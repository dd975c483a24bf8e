package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/colaboreaza/collab-backend/internal/http/handlers/common"
	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/repository"
	"github.com/colaboreaza/collab-backend/internal/storage"
)

// MediaHandler предоставляет HTTP слой для загрузки изображений
// (логотипы брендов, фото инфлюенсеров).
type MediaHandler struct {
	media    *repository.MediaRepository
	storage  *storage.MediaStorage
	rootPath string
}

// NewMediaHandler создаёт хэндлер.
func NewMediaHandler(media *repository.MediaRepository, st *storage.MediaStorage, rootPath string) *MediaHandler {
	return &MediaHandler{media: media, storage: st, rootPath: rootPath}
}

// Upload обрабатывает POST /media. Принимает multipart поле "file".
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "файл обязателен")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}
	defer f.Close()

	// Тип файла определяем по содержимому, а не по расширению
	head := make([]byte, 261)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || !filetype.IsImage(head) {
		common.RespondBadRequest(c, "допустимы только изображения")
		return
	}

	reader := io.MultiReader(bytes.NewReader(head), f)
	relPath, size, err := h.storage.Save(c.Request.Context(), userID, fileHeader.Filename, reader)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	media := &models.MediaFile{
		UserID:   &userID,
		FilePath: relPath,
		FileType: kind.MIME.Value,
		FileSize: size,
		IsPublic: true,
	}
	if err := h.media.Create(c.Request.Context(), media); err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, media)
}

// Get обрабатывает GET /media/:id. Отдаёт содержимое файла.
func (h *MediaHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	media, err := h.media.GetByID(c.Request.Context(), id)
	if err != nil {
		common.RespondNotFound(c, "файл не найден")
		return
	}

	c.Header("Content-Type", media.FileType)
	c.File(filepath.Join(h.rootPath, media.FilePath))
}

// Delete обрабатывает DELETE /media/:id. Доступно только владельцу файла.
func (h *MediaHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	media, err := h.media.GetByID(c.Request.Context(), id)
	if err != nil {
		common.RespondNotFound(c, "файл не найден")
		return
	}

	if media.UserID == nil || *media.UserID != userID {
		common.RespondForbidden(c, "")
		return
	}

	if err := h.storage.Delete(c.Request.Context(), media.FilePath); err != nil {
		common.RespondInternalError(c, "")
		return
	}
	if err := h.media.Delete(c.Request.Context(), id); err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "файл удалён"})
}
