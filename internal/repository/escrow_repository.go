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
	ErrEscrowNotFound = errors.New("escrow not found")
	ErrEscrowExists   = errors.New("escrow already exists for collaboration")
)

// EscrowRepository владеет состоянием escrow и финансовым журналом.
// Все переходы выполняются условными UPDATE внутри транзакции,
// чтобы два конкурентных действия не могли применить один переход дважды.
type EscrowRepository struct {
	db *sqlx.DB
}

// NewEscrowRepository создаёт новый экземпляр.
func NewEscrowRepository(db *sqlx.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// Create сохраняет escrow в статусе pending.
func (r *EscrowRepository) Create(ctx context.Context, escrow *models.Escrow) error {
	query := `
		INSERT INTO escrows (collaboration_id, brand_id, total_amount, commission_rate,
			platform_commission, influencer_payout, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, status, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		escrow.CollaborationID,
		escrow.BrandID,
		escrow.TotalAmount,
		escrow.CommissionRate,
		escrow.PlatformCommission,
		escrow.InfluencerPayout,
	).Scan(&escrow.ID, &escrow.Status, &escrow.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEscrowExists
		}
		return fmt.Errorf("escrow repository: create %w", err)
	}

	return nil
}

// GetByID возвращает escrow по идентификатору.
func (r *EscrowRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	var escrow models.Escrow
	if err := r.db.GetContext(ctx, &escrow, `SELECT * FROM escrows WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowNotFound
		}
		return nil, fmt.Errorf("escrow repository: get by id %w", err)
	}
	return &escrow, nil
}

// GetByCollaborationID возвращает escrow коллаборации.
func (r *EscrowRepository) GetByCollaborationID(ctx context.Context, collabID uuid.UUID) (*models.Escrow, error) {
	var escrow models.Escrow
	if err := r.db.GetContext(ctx, &escrow, `SELECT * FROM escrows WHERE collaboration_id = $1`, collabID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowNotFound
		}
		return nil, fmt.Errorf("escrow repository: get by collaboration %w", err)
	}
	return &escrow, nil
}

// Secure переводит escrow pending → secured после подтверждения шлюза
// и синхронизирует payment_status коллаборации.
func (r *EscrowRepository) Secure(ctx context.Context, id uuid.UUID, paymentReference string) (*models.Escrow, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: begin tx %w", err)
	}
	defer tx.Rollback()

	var escrow models.Escrow
	err = tx.GetContext(ctx, &escrow, `
		UPDATE escrows
		SET status = 'secured', payment_reference = $2, secured_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, id, paymentReference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("escrow repository: secure %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE collaborations SET payment_status = 'secured', updated_at = NOW() WHERE id = $1`,
		escrow.CollaborationID); err != nil {
		return nil, fmt.Errorf("escrow repository: secure update collaboration %w", err)
	}

	return &escrow, tx.Commit()
}

// Release закрывает escrow выплатой инфлюенсеру: escrow → released,
// коллаборация → completed/released, запись в журнал комиссий.
// expectedEscrowStatus обычно 'secured', при решении спора 'disputed'.
func (r *EscrowRepository) Release(ctx context.Context, id uuid.UUID, expectedEscrowStatus string) (*models.Escrow, *models.CommissionRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("escrow repository: begin tx %w", err)
	}
	defer tx.Rollback()

	var escrow models.Escrow
	err = tx.GetContext(ctx, &escrow, `
		UPDATE escrows
		SET status = 'released', closed_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING *
	`, id, expectedEscrowStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrStatusConflict
		}
		return nil, nil, fmt.Errorf("escrow repository: release %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE collaborations
		SET status = 'completed', payment_status = 'released', updated_at = NOW()
		WHERE id = $1
	`, escrow.CollaborationID); err != nil {
		return nil, nil, fmt.Errorf("escrow repository: release update collaboration %w", err)
	}

	record, err := insertCommissionRecord(ctx, tx, &escrow, escrow.PlatformCommission, escrow.InfluencerPayout, 0)
	if err != nil {
		return nil, nil, err
	}

	return &escrow, record, tx.Commit()
}

// Refund закрывает escrow возвратом бренду: escrow → refunded,
// payment_status коллаборации → refunded. Статус самой коллаборации
// меняет вызывающая сторона (отмена или решение администратора).
func (r *EscrowRepository) Refund(ctx context.Context, id uuid.UUID, expectedStatuses []string) (*models.Escrow, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: begin tx %w", err)
	}
	defer tx.Rollback()

	var escrow models.Escrow
	err = tx.GetContext(ctx, &escrow, `
		UPDATE escrows
		SET status = 'refunded', closed_at = NOW()
		WHERE id = $1 AND status = ANY($2)
		RETURNING *
	`, id, pq.Array(expectedStatuses))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("escrow repository: refund %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE collaborations SET payment_status = 'refunded', updated_at = NOW() WHERE id = $1`,
		escrow.CollaborationID); err != nil {
		return nil, fmt.Errorf("escrow repository: refund update collaboration %w", err)
	}

	return &escrow, tx.Commit()
}

// CloseSplit закрывает escrow частичной выплатой: payout уходит инфлюенсеру,
// refund возвращается бренду, оба движения фиксируются одной записью журнала.
func (r *EscrowRepository) CloseSplit(ctx context.Context, id uuid.UUID, expectedEscrowStatus string, payout, refund float64, collabStatus, collabPaymentStatus string) (*models.Escrow, *models.CommissionRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("escrow repository: begin tx %w", err)
	}
	defer tx.Rollback()

	var escrow models.Escrow
	err = tx.GetContext(ctx, &escrow, `
		UPDATE escrows
		SET status = 'released', closed_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING *
	`, id, expectedEscrowStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrStatusConflict
		}
		return nil, nil, fmt.Errorf("escrow repository: close split %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE collaborations
		SET status = $2, payment_status = $3, updated_at = NOW()
		WHERE id = $1
	`, escrow.CollaborationID, collabStatus, collabPaymentStatus); err != nil {
		return nil, nil, fmt.Errorf("escrow repository: close split update collaboration %w", err)
	}

	// При разделе средств комиссия не удерживается: payout + refund = total
	record, err := insertCommissionRecord(ctx, tx, &escrow, 0, payout, refund)
	if err != nil {
		return nil, nil, err
	}

	return &escrow, record, tx.Commit()
}

// insertCommissionRecord добавляет запись финансового журнала в текущей транзакции.
func insertCommissionRecord(ctx context.Context, tx *sqlx.Tx, escrow *models.Escrow, commission, payout, refund float64) (*models.CommissionRecord, error) {
	var record models.CommissionRecord
	err := tx.GetContext(ctx, &record, `
		INSERT INTO commission_records (collaboration_id, escrow_id, gross_amount, commission_rate,
			commission_amount, payout_amount, refund_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *
	`, escrow.CollaborationID, escrow.ID, escrow.TotalAmount, escrow.CommissionRate,
		commission, payout, refund)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: insert commission record %w", err)
	}
	return &record, nil
}

// ListCommissionRecords возвращает журнал комиссий, новые записи первыми.
func (r *EscrowRepository) ListCommissionRecords(ctx context.Context, limit, offset int) ([]models.CommissionRecord, error) {
	var records []models.CommissionRecord
	query := `SELECT * FROM commission_records ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &records, query, limit, offset); err != nil {
		return nil, fmt.Errorf("escrow repository: list commission records %w", err)
	}
	return records, nil
}
