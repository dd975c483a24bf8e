package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/colaboreaza/collab-backend/internal/logger"
	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

// SettingsService управляет глобальной ставкой комиссии платформы.
type SettingsService struct {
	settings *repository.SettingsRepository
}

// NewSettingsService создаёт сервис настроек.
func NewSettingsService(settings *repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// GetCommission возвращает текущие настройки комиссии.
func (s *SettingsService) GetCommission(ctx context.Context) (*models.CommissionSettings, error) {
	return s.settings.GetCommission(ctx)
}

// CurrentRate возвращает действующую ставку комиссии в процентах.
func (s *SettingsService) CurrentRate(ctx context.Context) (float64, error) {
	settings, err := s.settings.GetCommission(ctx)
	if err != nil {
		return 0, err
	}
	return settings.Rate, nil
}

// UpdateCommission меняет глобальную ставку. Уже созданные escrow
// сохраняют ставку, зафиксированную при создании.
func (s *SettingsService) UpdateCommission(ctx context.Context, adminID uuid.UUID, rate float64) (*models.CommissionSettings, error) {
	if rate < 0 || rate > 100 {
		return nil, apperror.New(apperror.ErrCodeValidation, "ставка комиссии должна быть в диапазоне 0-100")
	}

	settings, err := s.settings.UpdateCommission(ctx, rate, adminID)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"rate":     rate,
		"admin_id": adminID,
	}).Info("commission rate updated")

	return settings, nil
}
