package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colaboreaza/collab-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrCollaborationNotFound = errors.New("collaboration not found")
	ErrStatusConflict        = errors.New("status changed concurrently")
)

// CollaborationRepository отвечает за работу с коллаборациями.
type CollaborationRepository struct {
	db *sqlx.DB
}

// NewCollaborationRepository создаёт новый экземпляр.
func NewCollaborationRepository(db *sqlx.DB) *CollaborationRepository {
	return &CollaborationRepository{db: db}
}

const collabColumns = `c.id, c.brand_id, c.title, c.description, c.collab_type, c.status, c.payment_status,
	c.budget_min, c.budget_max, c.platform, c.niche, c.deliverables, c.creators_needed,
	c.applicants_count, c.is_public, c.deadline_at, c.created_at, c.updated_at`

// Create сохраняет новую коллаборацию.
func (r *CollaborationRepository) Create(ctx context.Context, collab *models.Collaboration) error {
	query := `
		INSERT INTO collaborations (brand_id, title, description, collab_type, status, payment_status,
			budget_min, budget_max, platform, niche, deliverables, creators_needed, is_public, deadline_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, applicants_count, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		collab.BrandID,
		collab.Title,
		collab.Description,
		collab.CollabType,
		collab.Status,
		collab.PaymentStatus,
		collab.BudgetMin,
		collab.BudgetMax,
		collab.Platform,
		collab.Niche,
		collab.Deliverables,
		collab.CreatorsNeeded,
		collab.IsPublic,
		collab.DeadlineAt,
	).Scan(&collab.ID, &collab.ApplicantsCount, &collab.CreatedAt, &collab.UpdatedAt); err != nil {
		return fmt.Errorf("collaboration repository: create %w", err)
	}

	return nil
}

// GetByID возвращает коллаборацию по идентификатору вместе с именем бренда.
func (r *CollaborationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Collaboration, error) {
	var collab models.Collaboration
	query := `
		SELECT ` + collabColumns + `, bp.company_name AS brand_name
		FROM collaborations c
		LEFT JOIN brand_profiles bp ON bp.user_id = c.brand_id
		WHERE c.id = $1
	`
	if err := r.db.GetContext(ctx, &collab, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollaborationNotFound
		}
		return nil, fmt.Errorf("collaboration repository: get by id %w", err)
	}
	return &collab, nil
}

// CollaborationListParams параметры публичного списка.
type CollaborationListParams struct {
	Status     string
	CollabType string
	Platform   string
	Limit      int
	Offset     int
}

// List возвращает публичные коллаборации с фильтрами.
func (r *CollaborationRepository) List(ctx context.Context, params CollaborationListParams) ([]models.Collaboration, error) {
	query := `
		SELECT ` + collabColumns + `, bp.company_name AS brand_name
		FROM collaborations c
		LEFT JOIN brand_profiles bp ON bp.user_id = c.brand_id
		WHERE c.is_public = TRUE
	`
	args := []interface{}{}
	argNum := 1

	if params.Status != "" {
		query += fmt.Sprintf(` AND c.status = $%d`, argNum)
		args = append(args, params.Status)
		argNum++
	}
	if params.CollabType != "" {
		query += fmt.Sprintf(` AND c.collab_type = $%d`, argNum)
		args = append(args, params.CollabType)
		argNum++
	}
	if params.Platform != "" {
		query += fmt.Sprintf(` AND c.platform = $%d`, argNum)
		args = append(args, params.Platform)
		argNum++
	}

	query += ` ORDER BY c.created_at DESC`
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argNum, argNum+1)
	args = append(args, params.Limit, params.Offset)

	var collabs []models.Collaboration
	if err := r.db.SelectContext(ctx, &collabs, query, args...); err != nil {
		return nil, fmt.Errorf("collaboration repository: list %w", err)
	}
	return collabs, nil
}

// ListByBrand возвращает все коллаборации бренда.
func (r *CollaborationRepository) ListByBrand(ctx context.Context, brandID uuid.UUID, limit, offset int) ([]models.Collaboration, error) {
	query := `
		SELECT ` + collabColumns + `, bp.company_name AS brand_name
		FROM collaborations c
		LEFT JOIN brand_profiles bp ON bp.user_id = c.brand_id
		WHERE c.brand_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`

	var collabs []models.Collaboration
	if err := r.db.SelectContext(ctx, &collabs, query, brandID, limit, offset); err != nil {
		return nil, fmt.Errorf("collaboration repository: list by brand %w", err)
	}
	return collabs, nil
}

// CountActiveByBrand считает активные коллаборации бренда (для квоты free-тарифа).
func (r *CollaborationRepository) CountActiveByBrand(ctx context.Context, brandID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM collaborations WHERE brand_id = $1 AND status = 'active'`
	if err := r.db.GetContext(ctx, &count, query, brandID); err != nil {
		return 0, fmt.Errorf("collaboration repository: count active by brand %w", err)
	}
	return count, nil
}

// Update обновляет редактируемые поля коллаборации.
func (r *CollaborationRepository) Update(ctx context.Context, collab *models.Collaboration) error {
	query := `
		UPDATE collaborations
		SET title = $2, description = $3, budget_min = $4, budget_max = $5, platform = $6,
			niche = $7, deliverables = $8, creators_needed = $9, is_public = $10,
			deadline_at = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		collab.ID,
		collab.Title,
		collab.Description,
		collab.BudgetMin,
		collab.BudgetMax,
		collab.Platform,
		collab.Niche,
		collab.Deliverables,
		collab.CreatorsNeeded,
		collab.IsPublic,
		collab.DeadlineAt,
	).Scan(&collab.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCollaborationNotFound
		}
		return fmt.Errorf("collaboration repository: update %w", err)
	}

	return nil
}

// UpdateStatus переводит коллаборацию из ожидаемого статуса в новый.
// Условный UPDATE защищает от гонки двух конкурентных переходов.
func (r *CollaborationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE collaborations SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, expectedStatus, newStatus)
	if err != nil {
		return fmt.Errorf("collaboration repository: update status %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("collaboration repository: update status rows affected %w", err)
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// SetStatus устанавливает статус без проверки предыдущего значения.
func (r *CollaborationRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE collaborations SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("collaboration repository: set status %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("collaboration repository: set status rows affected %w", err)
	}
	if affected == 0 {
		return ErrCollaborationNotFound
	}

	return nil
}

// UpdateStatusAndPayment атомарно переводит пару (status, payment_status)
// из ожидаемого статуса в новое состояние.
func (r *CollaborationRepository) UpdateStatusAndPayment(ctx context.Context, id uuid.UUID, expectedStatus, newStatus, newPaymentStatus string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE collaborations
		SET status = $3, payment_status = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, expectedStatus, newStatus, newPaymentStatus)
	if err != nil {
		return fmt.Errorf("collaboration repository: update status and payment %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("collaboration repository: update status and payment rows affected %w", err)
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	return nil
}
