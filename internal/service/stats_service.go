package service

import (
	"context"
	"time"

	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

// Публичные счётчики меняются редко, агрегирующие запросы дорогие.
const platformStatsTTL = time.Minute

// StatsService отдаёт агрегаты платформы.
type StatsService struct {
	stats   *repository.StatsRepository
	escrows *repository.EscrowRepository
	cache   *CacheService
}

// NewStatsService создаёт сервис статистики.
func NewStatsService(stats *repository.StatsRepository, escrows *repository.EscrowRepository, cache *CacheService) *StatsService {
	return &StatsService{stats: stats, escrows: escrows, cache: cache}
}

// PlatformStats возвращает публичные счётчики для лендинга.
func (s *StatsService) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	value, err := s.cache.GetOrSet(ctx, PlatformStatsCacheKey(), platformStatsTTL, func() (interface{}, error) {
		return s.stats.GetPlatformStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.PlatformStats), nil
}

// AdminStats возвращает счётчики панели администратора.
func (s *StatsService) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	return s.stats.GetAdminStats(ctx)
}

// CommissionLedger возвращает журнал комиссий для администратора.
func (s *StatsService) CommissionLedger(ctx context.Context, limit, offset int) ([]models.CommissionRecord, error) {
	return s.escrows.ListCommissionRecords(ctx, limit, offset)
}
