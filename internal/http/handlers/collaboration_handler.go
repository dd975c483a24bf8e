package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colaboreaza/collab-backend/internal/dto"
	"github.com/colaboreaza/collab-backend/internal/http/handlers/common"
	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/repository"
	"github.com/colaboreaza/collab-backend/internal/service"
	"github.com/colaboreaza/collab-backend/internal/validation"
)

// CollaborationHandler предоставляет HTTP слой для коллабораций и заявок.
type CollaborationHandler struct {
	collabs *service.CollaborationService
}

// NewCollaborationHandler создаёт хэндлер.
func NewCollaborationHandler(collabs *service.CollaborationService) *CollaborationHandler {
	return &CollaborationHandler{collabs: collabs}
}

// Create обрабатывает POST /collaborations.
func (h *CollaborationHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CreateCollaborationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	in, err := collabInputFromCreate(&req)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	collab, err := h.collabs.Create(c.Request.Context(), userID, *in)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, collab)
}

// List обрабатывает GET /collaborations.
func (h *CollaborationHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	collabs, err := h.collabs.List(c.Request.Context(), repository.CollaborationListParams{
		Status:     c.Query("status"),
		CollabType: c.Query("collaboration_type"),
		Platform:   c.Query("platform"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	if collabs == nil {
		collabs = []models.Collaboration{}
	}

	c.JSON(http.StatusOK, collabs)
}

// ListMy обрабатывает GET /collaborations/my.
func (h *CollaborationHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)
	collabs, err := h.collabs.ListMy(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	if collabs == nil {
		collabs = []models.Collaboration{}
	}

	c.JSON(http.StatusOK, collabs)
}

// Get обрабатывает GET /collaborations/:id.
func (h *CollaborationHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	collab, err := h.collabs.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab)
}

// Update обрабатывает PUT /collaborations/:id.
func (h *CollaborationHandler) Update(c *gin.Context) {
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

	var req dto.UpdateCollaborationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	in, err := collabInputFromUpdate(&req)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	collab, err := h.collabs.Update(c.Request.Context(), id, userID, *in)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab)
}

// UpdateStatus обрабатывает PATCH /collaborations/:id/status.
func (h *CollaborationHandler) UpdateStatus(c *gin.Context) {
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

	var req dto.UpdateCollaborationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	collab, err := h.collabs.UpdateStatus(c.Request.Context(), id, userID, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab)
}

// Cancel обрабатывает POST /collaborations/:id/cancel.
func (h *CollaborationHandler) Cancel(c *gin.Context) {
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

	var req dto.CancelCollaborationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateDisputeReason(req.Reason); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	collab, cancellation, err := h.collabs.Cancel(c.Request.Context(), id, userID, req.Reason, req.Details)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CancelCollaborationResponse{
		Collaboration: collab,
		Cancellation:  cancellation,
	})
}

// Apply обрабатывает POST /collaborations/:id/applications.
func (h *CollaborationHandler) Apply(c *gin.Context) {
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

	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateCoverLetter(req.CoverLetter); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	app, err := h.collabs.Apply(c.Request.Context(), collabID, userID, req.CoverLetter, req.ProposedPrice, req.SelectedDeliverables)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// ListApplications обрабатывает GET /collaborations/:id/applications.
func (h *CollaborationHandler) ListApplications(c *gin.Context) {
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

	apps, err := h.collabs.ListApplications(c.Request.Context(), collabID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}

	c.JSON(http.StatusOK, apps)
}

// ListMyApplications обрабатывает GET /applications/my.
func (h *CollaborationHandler) ListMyApplications(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)
	apps, err := h.collabs.ListMyApplications(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}

	c.JSON(http.StatusOK, apps)
}

// DecideApplication обрабатывает PATCH /applications/:id.
func (h *CollaborationHandler) DecideApplication(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	appID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.DecideApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	app, err := h.collabs.DecideApplication(c.Request.Context(), appID, userID, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// collabInputFromCreate валидирует и собирает входные данные создания.
func collabInputFromCreate(req *dto.CreateCollaborationRequest) (*service.CreateInput, error) {
	if err := validation.ValidateCollabTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateCollabDescription(req.Description); err != nil {
		return nil, err
	}
	if err := validation.ValidateBudget(req.BudgetMin, req.BudgetMax); err != nil {
		return nil, err
	}

	deadline, err := req.ParseDeadline()
	if err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	return &service.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		CollabType:     req.CollaborationType,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		Platform:       req.Platform,
		Niche:          req.Niche,
		Deliverables:   req.Deliverables,
		CreatorsNeeded: req.CreatorsNeeded,
		IsPublic:       isPublic,
		DeadlineAt:     deadline,
	}, nil
}

// collabInputFromUpdate валидирует и собирает входные данные обновления.
func collabInputFromUpdate(req *dto.UpdateCollaborationRequest) (*service.CreateInput, error) {
	if err := validation.ValidateCollabTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateCollabDescription(req.Description); err != nil {
		return nil, err
	}
	if err := validation.ValidateBudget(req.BudgetMin, req.BudgetMax); err != nil {
		return nil, err
	}

	deadline, err := req.ParseDeadline()
	if err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	return &service.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		Platform:       req.Platform,
		Niche:          req.Niche,
		Deliverables:   req.Deliverables,
		CreatorsNeeded: req.CreatorsNeeded,
		IsPublic:       isPublic,
		DeadlineAt:     deadline,
	}, nil
}
