package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colaboreaza/collab-backend/internal/dto"
	"github.com/colaboreaza/collab-backend/internal/http/handlers/common"
	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/service"
	"github.com/colaboreaza/collab-backend/internal/validation"
)

// DisputeHandler предоставляет HTTP слой для споров и запросов на отмену.
type DisputeHandler struct {
	disputes *service.DisputeService
}

// NewDisputeHandler создаёт хэндлер.
func NewDisputeHandler(disputes *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

// Create обрабатывает POST /collaborations/:id/disputes.
func (h *DisputeHandler) Create(c *gin.Context) {
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

	var req dto.CreateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateDisputeReason(req.Reason); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputes.CreateDispute(c.Request.Context(), collabID, userID, req.Reason, req.Details)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dispute)
}

// ListByCollaboration обрабатывает GET /collaborations/:id/disputes.
func (h *DisputeHandler) ListByCollaboration(c *gin.Context) {
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

	disputes, err := h.disputes.ListByCollaboration(c.Request.Context(), collabID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	if disputes == nil {
		disputes = []models.Dispute{}
	}

	c.JSON(http.StatusOK, disputes)
}

// Get обрабатывает GET /disputes/:id.
func (h *DisputeHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputes.GetDispute(c.Request.Context(), disputeID, userID, common.CurrentIsAdmin(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// ListCancellationsByCollab обрабатывает GET /collaborations/:id/cancellations.
func (h *DisputeHandler) ListCancellationsByCollab(c *gin.Context) {
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

	reqs, err := h.disputes.ListCancellationsByCollaboration(c.Request.Context(), collabID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	if reqs == nil {
		reqs = []models.CancellationRequest{}
	}

	c.JSON(http.StatusOK, reqs)
}

// AdminList обрабатывает GET /admin/disputes.
func (h *DisputeHandler) AdminList(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	disputes, total, err := h.disputes.ListDisputes(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	if disputes == nil {
		disputes = []models.Dispute{}
	}

	c.JSON(http.StatusOK, dto.PaginatedDisputesResponse{
		Data: disputes,
		Pagination: dto.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(disputes) < total,
		},
	})
}

// AdminResolve обрабатывает POST /admin/disputes/:id/resolve.
func (h *DisputeHandler) AdminResolve(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputes.ResolveDispute(c.Request.Context(), disputeID, adminID, req.Resolution, req.AdminNotes)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// AdminListCancellations обрабатывает GET /admin/cancellations.
func (h *DisputeHandler) AdminListCancellations(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	reqs, err := h.disputes.ListCancellations(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	if reqs == nil {
		reqs = []models.CancellationRequest{}
	}

	c.JSON(http.StatusOK, reqs)
}

// AdminResolveCancellation обрабатывает POST /admin/cancellations/:id/resolve.
func (h *DisputeHandler) AdminResolveCancellation(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ResolveCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	resolved, err := h.disputes.ResolveCancellation(c.Request.Context(), requestID, adminID, req.Resolution, req.AdminNotes)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, resolved)
}
