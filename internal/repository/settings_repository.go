package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colaboreaza/collab-backend/internal/models"
)

// SettingsRepository хранит глобальные настройки платформы.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository создаёт новый экземпляр.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetCommission возвращает текущую ставку комиссии.
func (r *SettingsRepository) GetCommission(ctx context.Context) (*models.CommissionSettings, error) {
	var settings models.CommissionSettings
	if err := r.db.GetContext(ctx, &settings, `SELECT * FROM commission_settings WHERE id = 1`); err != nil {
		return nil, fmt.Errorf("settings repository: get commission %w", err)
	}
	return &settings, nil
}

// UpdateCommission устанавливает новую ставку комиссии.
// Уже созданные escrow сохраняют зафиксированную при создании ставку.
func (r *SettingsRepository) UpdateCommission(ctx context.Context, rate float64, updatedBy uuid.UUID) (*models.CommissionSettings, error) {
	var settings models.CommissionSettings
	err := r.db.GetContext(ctx, &settings, `
		UPDATE commission_settings
		SET rate = $1, updated_by = $2, updated_at = NOW()
		WHERE id = 1
		RETURNING *
	`, rate, updatedBy)
	if err != nil {
		return nil, fmt.Errorf("settings repository: update commission %w", err)
	}
	return &settings, nil
}
