package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/colaboreaza/collab-backend/internal/config"
	"github.com/colaboreaza/collab-backend/internal/db"
	"github.com/colaboreaza/collab-backend/internal/goroutine"
	httpHandlers "github.com/colaboreaza/collab-backend/internal/http/handlers"
	httpRouter "github.com/colaboreaza/collab-backend/internal/http/router"
	"github.com/colaboreaza/collab-backend/internal/logger"
	"github.com/colaboreaza/collab-backend/internal/payment"
	"github.com/colaboreaza/collab-backend/internal/repository"
	"github.com/colaboreaza/collab-backend/internal/service"
	"github.com/colaboreaza/collab-backend/internal/storage"
	"github.com/colaboreaza/collab-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	mediaStorage, err := storage.NewMediaStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	profileRepo := repository.NewProfileRepository(dbConn)
	collabRepo := repository.NewCollaborationRepository(dbConn)
	applicationRepo := repository.NewApplicationRepository(dbConn)
	escrowRepo := repository.NewEscrowRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	messageRepo := repository.NewMessageRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	settingsRepo := repository.NewSettingsRepository(dbConn)
	statsRepo := repository.NewStatsRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// Платёжный шлюз. Реальный провайдер подключается здесь же,
	// остальной код видит только интерфейс payment.Gateway.
	gateway := payment.NewSimulatedGateway()

	// Сервисы.
	cacheService := service.NewCacheService()
	authService := service.NewAuthService(userRepo, tokenManager)
	profileService := service.NewProfileService(profileRepo, userRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	escrowService := service.NewEscrowService(escrowRepo, collabRepo, settingsService, gateway)
	collabService := service.NewCollaborationService(collabRepo, applicationRepo, escrowRepo, disputeRepo, userRepo, profileRepo, cfg.FreeTierActiveLimit)
	disputeService := service.NewDisputeService(disputeRepo, escrowRepo, collabRepo, applicationRepo)
	messageService := service.NewMessageService(messageRepo, collabRepo, applicationRepo, ws.NewMessagePublisher(hub))
	reviewService := service.NewReviewService(reviewRepo, applicationRepo, collabRepo, cfg.ReviewRevealTimeout)
	statsService := service.NewStatsService(statsRepo, escrowRepo, cacheService)

	// Фоновое раскрытие просроченных отзывов.
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		reviewService.RunRevealSweep(ctx, cfg.RevealSweepInterval)
	})

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(profileService)
	collabHandler := httpHandlers.NewCollaborationHandler(collabService)
	escrowHandler := httpHandlers.NewEscrowHandler(escrowService)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService)
	messageHandler := httpHandlers.NewMessageHandler(messageService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	settingsHandler := httpHandlers.NewSettingsHandler(settingsService)
	webhookHandler := httpHandlers.NewWebhookHandler(escrowService)
	statsHandler := httpHandlers.NewStatsHandler(statsService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, mediaStorage, cfg.MediaStoragePath)
	adminHandler := httpHandlers.NewAdminHandler(profileService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, cfg.MediaStoragePath)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		profileHandler,
		collabHandler,
		escrowHandler,
		disputeHandler,
		messageHandler,
		reviewHandler,
		settingsHandler,
		webhookHandler,
		statsHandler,
		mediaHandler,
		adminHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
