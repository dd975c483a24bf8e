package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/colaboreaza/collab-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDuplicateApplication = errors.New("application already exists")
	ErrAlreadyAccepted      = errors.New("collaboration already has an accepted application")
)

// ApplicationRepository отвечает за работу с заявками инфлюенсеров.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository создаёт новый экземпляр.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create сохраняет заявку и увеличивает счётчик откликов коллаборации.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("application repository: begin tx %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO applications (collaboration_id, influencer_id, cover_letter, proposed_price, selected_deliverables, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING id, status, created_at, updated_at
	`

	if err := tx.QueryRowxContext(
		ctx, query,
		app.CollaborationID,
		app.InfluencerID,
		app.CoverLetter,
		app.ProposedPrice,
		app.SelectedDeliverables,
	).Scan(&app.ID, &app.Status, &app.CreatedAt, &app.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("application repository: create %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE collaborations SET applicants_count = applicants_count + 1, updated_at = NOW() WHERE id = $1`,
		app.CollaborationID); err != nil {
		return fmt.Errorf("application repository: increment applicants %w", err)
	}

	return tx.Commit()
}

// GetByID возвращает заявку по идентификатору.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := r.db.GetContext(ctx, &app, `SELECT * FROM applications WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: get by id %w", err)
	}
	return &app, nil
}

// ListByInfluencer возвращает заявки инфлюенсера.
func (r *ApplicationRepository) ListByInfluencer(ctx context.Context, influencerID uuid.UUID, limit, offset int) ([]models.Application, error) {
	var apps []models.Application
	query := `
		SELECT * FROM applications
		WHERE influencer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &apps, query, influencerID, limit, offset); err != nil {
		return nil, fmt.Errorf("application repository: list by influencer %w", err)
	}
	return apps, nil
}

// ListByCollaboration возвращает заявки на коллаборацию.
func (r *ApplicationRepository) ListByCollaboration(ctx context.Context, collabID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	query := `
		SELECT * FROM applications
		WHERE collaboration_id = $1
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &apps, query, collabID); err != nil {
		return nil, fmt.Errorf("application repository: list by collaboration %w", err)
	}
	return apps, nil
}

// GetAcceptedByCollaboration возвращает принятую заявку коллаборации, если есть.
func (r *ApplicationRepository) GetAcceptedByCollaboration(ctx context.Context, collabID uuid.UUID) (*models.Application, error) {
	var app models.Application
	query := `SELECT * FROM applications WHERE collaboration_id = $1 AND status = 'accepted'`
	if err := r.db.GetContext(ctx, &app, query, collabID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: get accepted %w", err)
	}
	return &app, nil
}

// Accept переводит заявку pending → accepted. Частичный уникальный индекс
// не допускает второй принятой заявки на ту же коллаборацию.
func (r *ApplicationRepository) Accept(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status = 'accepted', updated_at = NOW() WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyAccepted
		}
		return fmt.Errorf("application repository: accept %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("application repository: accept rows affected %w", err)
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// Reject переводит заявку pending → rejected.
func (r *ApplicationRepository) Reject(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status = 'rejected', updated_at = NOW() WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("application repository: reject %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("application repository: reject rows affected %w", err)
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	return nil
}
