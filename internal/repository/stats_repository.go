package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/colaboreaza/collab-backend/internal/models"
)

// StatsRepository считает агрегаты для лендинга и панели администратора.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository создаёт новый экземпляр.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetPlatformStats возвращает публичные счётчики.
func (r *StatsRepository) GetPlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	stats := &models.PlatformStats{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'brand' AND is_active = TRUE),
			(SELECT COUNT(*) FROM users WHERE role = 'influencer' AND is_active = TRUE),
			(SELECT COUNT(*) FROM collaborations),
			(SELECT COUNT(*) FROM collaborations WHERE status = 'completed')
	`
	if err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalBrands,
		&stats.TotalInfluencers,
		&stats.TotalCollaborations,
		&stats.CompletedDeals,
	); err != nil {
		return nil, fmt.Errorf("stats repository: get platform stats %w", err)
	}

	return stats, nil
}

// GetAdminStats возвращает счётчики для панели администратора.
func (r *StatsRepository) GetAdminStats(ctx context.Context) (*models.AdminStats, error) {
	stats := &models.AdminStats{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM collaborations),
			(SELECT COUNT(*) FROM disputes WHERE status = 'open'),
			(SELECT COUNT(*) FROM cancellation_requests WHERE status = 'pending_review'),
			(SELECT COALESCE(SUM(total_amount), 0) FROM escrows WHERE status IN ('secured', 'disputed')),
			(SELECT COALESCE(SUM(commission_amount), 0) FROM commission_records)
	`
	if err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalUsers,
		&stats.TotalCollaborations,
		&stats.ActiveDisputes,
		&stats.PendingCancellations,
		&stats.EscrowVolume,
		&stats.CommissionEarned,
	); err != nil {
		return nil, fmt.Errorf("stats repository: get admin stats %w", err)
	}

	return stats, nil
}
