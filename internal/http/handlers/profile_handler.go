package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/colaboreaza/collab-backend/internal/dto"
	"github.com/colaboreaza/collab-backend/internal/http/handlers/common"
	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/repository"
	"github.com/colaboreaza/collab-backend/internal/service"
	"github.com/colaboreaza/collab-backend/internal/validation"
)

// ProfileHandler предоставляет HTTP слой для профилей брендов и инфлюенсеров.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler создаёт хэндлер.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// UpsertBrandProfile обрабатывает PUT /profiles/brand.
func (h *ProfileHandler) UpsertBrandProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.UpdateBrandProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateExternalLink(req.Website); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	logoID, err := parseUUIDPtr(req.LogoID)
	if err != nil {
		common.RespondBadRequest(c, "некорректный logo_id")
		return
	}

	profile := &models.BrandProfile{
		CompanyName: req.CompanyName,
		Description: req.Description,
		Industry:    req.Industry,
		Website:     req.Website,
		LogoID:      logoID,
	}

	saved, err := h.profiles.UpsertBrandProfile(c.Request.Context(), userID, profile)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// GetMyBrandProfile обрабатывает GET /profiles/brand.
func (h *ProfileHandler) GetMyBrandProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	profile, err := h.profiles.GetBrandProfile(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpsertInfluencerProfile обрабатывает PUT /profiles/influencer.
func (h *ProfileHandler) UpsertInfluencerProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.UpdateInfluencerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateDisplayName(req.DisplayName); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateBio(req.Bio); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateLocation(req.Location); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	photoID, err := parseUUIDPtr(req.PhotoID)
	if err != nil {
		common.RespondBadRequest(c, "некорректный photo_id")
		return
	}

	profile := &models.InfluencerProfile{
		DisplayName:    req.DisplayName,
		Bio:            req.Bio,
		Platform:       req.Platform,
		Niche:          req.Niche,
		FollowersCount: req.FollowersCount,
		EngagementRate: req.EngagementRate,
		PricePerPost:   req.PricePerPost,
		Location:       req.Location,
		PhotoID:        photoID,
		IsAvailable:    req.IsAvailable,
	}

	saved, err := h.profiles.UpsertInfluencerProfile(c.Request.Context(), userID, profile)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// GetMyInfluencerProfile обрабатывает GET /profiles/influencer.
func (h *ProfileHandler) GetMyInfluencerProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	profile, err := h.profiles.GetInfluencerProfile(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetInfluencerByUsername обрабатывает GET /influencers/:username.
func (h *ProfileHandler) GetInfluencerByUsername(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		common.RespondBadRequest(c, "username обязателен")
		return
	}

	profile, err := h.profiles.GetInfluencerByUsername(c.Request.Context(), username)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SearchInfluencers обрабатывает GET /influencers.
func (h *ProfileHandler) SearchInfluencers(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	params := repository.InfluencerSearchParams{
		Query:         c.Query("q"),
		Platform:      c.Query("platform"),
		Niche:         c.Query("niche"),
		OnlyAvailable: c.Query("available") == "true",
		Limit:         limit,
		Offset:        offset,
	}

	results, err := h.profiles.SearchInfluencers(c.Request.Context(), params)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	if results == nil {
		results = []*models.InfluencerSearchResult{}
	}

	c.JSON(http.StatusOK, results)
}

// parseUUIDPtr разбирает опциональный UUID из строки.
func parseUUIDPtr(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
