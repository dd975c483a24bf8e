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
	ErrDisputeNotFound      = errors.New("dispute not found")
	ErrCancellationNotFound = errors.New("cancellation request not found")
)

// DisputeRepository отвечает за споры и запросы на отмену.
type DisputeRepository struct {
	db *sqlx.DB
}

// NewDisputeRepository создаёт новый экземпляр.
func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// CreateDispute открывает спор одной транзакцией: вставка записи,
// коллаборация completed_pending_release → disputed, escrow secured → disputed.
// Любое нарушение предусловий откатывает всё целиком.
func (r *DisputeRepository) CreateDispute(ctx context.Context, dispute *models.Dispute) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dispute repository: begin tx %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE collaborations
		SET status = 'disputed', payment_status = 'disputed', updated_at = NOW()
		WHERE id = $1 AND status = 'completed_pending_release'
	`, dispute.CollaborationID)
	if err != nil {
		return fmt.Errorf("dispute repository: update collaboration %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("dispute repository: update collaboration rows affected %w", err)
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE escrows SET status = 'disputed' WHERE id = $1 AND status = 'secured'`, dispute.EscrowID)
	if err != nil {
		return fmt.Errorf("dispute repository: update escrow %w", err)
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("dispute repository: update escrow rows affected %w", err)
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	query := `
		INSERT INTO disputes (collaboration_id, escrow_id, opened_by, opener_role, reason, details, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'open')
		RETURNING id, status, created_at
	`
	if err := tx.QueryRowxContext(
		ctx, query,
		dispute.CollaborationID,
		dispute.EscrowID,
		dispute.OpenedBy,
		dispute.OpenerRole,
		dispute.Reason,
		dispute.Details,
	).Scan(&dispute.ID, &dispute.Status, &dispute.CreatedAt); err != nil {
		return fmt.Errorf("dispute repository: create %w", err)
	}

	return tx.Commit()
}

// GetDisputeByID возвращает спор по идентификатору.
func (r *DisputeRepository) GetDisputeByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := r.db.GetContext(ctx, &dispute, `SELECT * FROM disputes WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("dispute repository: get by id %w", err)
	}
	return &dispute, nil
}

// ListDisputesByCollaboration возвращает споры коллаборации.
func (r *DisputeRepository) ListDisputesByCollaboration(ctx context.Context, collabID uuid.UUID) ([]models.Dispute, error) {
	var disputes []models.Dispute
	query := `SELECT * FROM disputes WHERE collaboration_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &disputes, query, collabID); err != nil {
		return nil, fmt.Errorf("dispute repository: list by collaboration %w", err)
	}
	return disputes, nil
}

// ListDisputes возвращает споры для панели администратора вместе с общим числом.
func (r *DisputeRepository) ListDisputes(ctx context.Context, status string, limit, offset int) ([]models.Dispute, int, error) {
	countQuery := `SELECT COUNT(*) FROM disputes`
	listQuery := `SELECT * FROM disputes`
	args := []interface{}{}
	if status != "" {
		countQuery += ` WHERE status = $1`
		listQuery += ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("dispute repository: count %w", err)
	}

	listQuery += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var disputes []models.Dispute
	if err := r.db.SelectContext(ctx, &disputes, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("dispute repository: list %w", err)
	}
	return disputes, total, nil
}

// ResolveDispute закрывает спор: open → resolved с фиксацией решения.
func (r *DisputeRepository) ResolveDispute(ctx context.Context, id uuid.UUID, adminID uuid.UUID, resolution string, notes *string) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.db.GetContext(ctx, &dispute, `
		UPDATE disputes
		SET status = 'resolved', resolution = $2, admin_notes = $3, resolved_by = $4, resolved_at = NOW()
		WHERE id = $1 AND status = 'open'
		RETURNING *
	`, id, resolution, notes, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("dispute repository: resolve %w", err)
	}
	return &dispute, nil
}

// CreateCancellation сохраняет запрос на отмену.
func (r *DisputeRepository) CreateCancellation(ctx context.Context, req *models.CancellationRequest) error {
	query := `
		INSERT INTO cancellation_requests (collaboration_id, requested_by, requester_role, reason, details,
			status, resolution, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CASE WHEN $6 = 'auto_approved' THEN NOW() END)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		req.CollaborationID,
		req.RequestedBy,
		req.RequesterRole,
		req.Reason,
		req.Details,
		req.Status,
		req.Resolution,
	).Scan(&req.ID, &req.CreatedAt); err != nil {
		return fmt.Errorf("dispute repository: create cancellation %w", err)
	}
	return nil
}

// GetCancellationByID возвращает запрос на отмену.
func (r *DisputeRepository) GetCancellationByID(ctx context.Context, id uuid.UUID) (*models.CancellationRequest, error) {
	var req models.CancellationRequest
	if err := r.db.GetContext(ctx, &req, `SELECT * FROM cancellation_requests WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCancellationNotFound
		}
		return nil, fmt.Errorf("dispute repository: get cancellation %w", err)
	}
	return &req, nil
}

// ListCancellationsByCollaboration возвращает запросы на отмену коллаборации.
func (r *DisputeRepository) ListCancellationsByCollaboration(ctx context.Context, collabID uuid.UUID) ([]models.CancellationRequest, error) {
	var reqs []models.CancellationRequest
	query := `SELECT * FROM cancellation_requests WHERE collaboration_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &reqs, query, collabID); err != nil {
		return nil, fmt.Errorf("dispute repository: list cancellations by collaboration %w", err)
	}
	return reqs, nil
}

// ListCancellations возвращает запросы на отмену для панели администратора.
func (r *DisputeRepository) ListCancellations(ctx context.Context, status string, limit, offset int) ([]models.CancellationRequest, error) {
	query := `SELECT * FROM cancellation_requests`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var reqs []models.CancellationRequest
	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("dispute repository: list cancellations %w", err)
	}
	return reqs, nil
}

// ResolveCancellation закрывает запрос: pending_review → resolved.
func (r *DisputeRepository) ResolveCancellation(ctx context.Context, id uuid.UUID, adminID uuid.UUID, resolution string, notes *string) (*models.CancellationRequest, error) {
	var req models.CancellationRequest
	err := r.db.GetContext(ctx, &req, `
		UPDATE cancellation_requests
		SET status = 'resolved', resolution = $2, admin_notes = $3, resolved_by = $4, resolved_at = NOW()
		WHERE id = $1 AND status = 'pending_review'
		RETURNING *
	`, id, resolution, notes, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("dispute repository: resolve cancellation %w", err)
	}
	return &req, nil
}
