package router

import (
	"github.com/gin-gonic/gin"

	"github.com/colaboreaza/collab-backend/internal/config"
	"github.com/colaboreaza/collab-backend/internal/http/handlers"
	"github.com/colaboreaza/collab-backend/internal/http/middleware"
	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	collabHandler *handlers.CollaborationHandler,
	escrowHandler *handlers.EscrowHandler,
	disputeHandler *handlers.DisputeHandler,
	messageHandler *handlers.MessageHandler,
	reviewHandler *handlers.ReviewHandler,
	settingsHandler *handlers.SettingsHandler,
	webhookHandler *handlers.WebhookHandler,
	statsHandler *handlers.StatsHandler,
	mediaHandler *handlers.MediaHandler,
	adminHandler *handlers.AdminHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
		protectedAuth.GET("/me", authHandler.Me)
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), authHandler.DeleteSession)
	}

	// Публичные маршруты
	api.GET("/stats", statsHandler.Platform)
	api.GET("/collaborations", collabHandler.List)
	api.GET("/collaborations/:id", middleware.UUIDValidator("id"), collabHandler.Get)
	api.GET("/influencers", profileHandler.SearchInfluencers)
	api.GET("/influencers/:username", profileHandler.GetInfluencerByUsername)
	api.GET("/users/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListForUser)
	api.GET("/settings/commission", settingsHandler.GetCommission)
	api.GET("/media/:id", middleware.UUIDValidator("id"), mediaHandler.Get)
	api.GET("/ws", wsHandler.Serve)
	api.POST("/webhooks/payment", webhookHandler.HandlePayment)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.PUT("/profiles/brand", middleware.RequireRole(models.RoleBrand), profileHandler.UpsertBrandProfile)
		protected.GET("/profiles/brand", profileHandler.GetMyBrandProfile)
		protected.PUT("/profiles/influencer", middleware.RequireRole(models.RoleInfluencer), profileHandler.UpsertInfluencerProfile)
		protected.GET("/profiles/influencer", profileHandler.GetMyInfluencerProfile)

		protected.POST("/collaborations", middleware.RequireRole(models.RoleBrand), collabHandler.Create)
		protected.GET("/collaborations/my", collabHandler.ListMy)
		protected.PUT("/collaborations/:id", middleware.UUIDValidator("id"), collabHandler.Update)
		protected.PATCH("/collaborations/:id/status", middleware.UUIDValidator("id"), collabHandler.UpdateStatus)
		protected.POST("/collaborations/:id/cancel", middleware.UUIDValidator("id"), collabHandler.Cancel)

		protected.POST("/collaborations/:id/applications", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleInfluencer), collabHandler.Apply)
		protected.GET("/collaborations/:id/applications", middleware.UUIDValidator("id"), collabHandler.ListApplications)
		protected.GET("/applications/my", collabHandler.ListMyApplications)
		protected.PATCH("/applications/:id", middleware.UUIDValidator("id"), collabHandler.DecideApplication)

		protected.POST("/collaborations/:id/escrow", middleware.UUIDValidator("id"), escrowHandler.Create)
		protected.GET("/collaborations/:id/escrow", middleware.UUIDValidator("id"), escrowHandler.Get)
		protected.POST("/escrows/:id/secure", middleware.UUIDValidator("id"), escrowHandler.Secure)
		protected.POST("/escrows/:id/release", middleware.UUIDValidator("id"), escrowHandler.Release)
		protected.POST("/escrows/:id/refund", middleware.UUIDValidator("id"), escrowHandler.Refund)
		protected.GET("/commission/calculate", escrowHandler.CalculateCommission)

		protected.POST("/collaborations/:id/disputes", middleware.UUIDValidator("id"), disputeHandler.Create)
		protected.GET("/collaborations/:id/disputes", middleware.UUIDValidator("id"), disputeHandler.ListByCollaboration)
		protected.GET("/disputes/:id", middleware.UUIDValidator("id"), disputeHandler.Get)
		protected.GET("/collaborations/:id/cancellations", middleware.UUIDValidator("id"), disputeHandler.ListCancellationsByCollab)

		protected.POST("/collaborations/:id/messages", middleware.UUIDValidator("id"), messageHandler.Send)
		protected.GET("/collaborations/:id/messages", middleware.UUIDValidator("id"), messageHandler.List)

		protected.POST("/applications/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.Submit)
		protected.GET("/applications/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListByApplication)
		protected.GET("/reviews/pending", reviewHandler.ListPending)

		protected.POST("/media", mediaHandler.Upload)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), mediaHandler.Delete)
	}

	// Административные маршруты
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireAdmin())
	{
		admin.GET("/disputes", disputeHandler.AdminList)
		admin.POST("/disputes/:id/resolve", middleware.UUIDValidator("id"), disputeHandler.AdminResolve)
		admin.GET("/cancellations", disputeHandler.AdminListCancellations)
		admin.POST("/cancellations/:id/resolve", middleware.UUIDValidator("id"), disputeHandler.AdminResolveCancellation)
		admin.GET("/stats", statsHandler.Admin)
		admin.GET("/commission-records", statsHandler.CommissionLedger)
		admin.PUT("/settings/commission", settingsHandler.UpdateCommission)
		admin.PUT("/users/:id/pro", middleware.UUIDValidator("id"), adminHandler.SetPro)
	}

	return r
}
