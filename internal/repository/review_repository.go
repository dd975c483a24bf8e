package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/repository/common"
)

// ErrReviewNotFound возвращается, когда отзыв отсутствует.
var ErrReviewNotFound = errors.New("review not found")

// ReviewRepository отвечает за отзывы и механику взаимного раскрытия.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository создаёт новый экземпляр.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert создаёт отзыв или перезаписывает прежний отзыв того же автора.
// Если после вставки по заявке есть оба отзыва, раскрывает их атомарно
// в той же транзакции.
func (r *ReviewRepository) Upsert(ctx context.Context, review *models.Review) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO reviews (application_id, reviewer_id, reviewed_id, reviewer_role, rating, comment, is_revealed)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE)
			ON CONFLICT (application_id, reviewer_id) DO UPDATE
			SET rating = EXCLUDED.rating,
				comment = EXCLUDED.comment,
				updated_at = NOW()
			RETURNING id, is_revealed, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, query,
			review.ApplicationID,
			review.ReviewerID,
			review.ReviewedID,
			review.ReviewerRole,
			review.Rating,
			review.Comment,
		).Scan(&review.ID, &review.IsRevealed, &review.CreatedAt, &review.UpdatedAt); err != nil {
			return fmt.Errorf("review repository: upsert %w", err)
		}

		var count int
		if err := tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM reviews WHERE application_id = $1`, review.ApplicationID); err != nil {
			return fmt.Errorf("review repository: count pair %w", err)
		}

		if count == 2 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE reviews SET is_revealed = TRUE, updated_at = NOW() WHERE application_id = $1`,
				review.ApplicationID); err != nil {
				return fmt.Errorf("review repository: reveal pair %w", err)
			}
			review.IsRevealed = true
		}

		return nil
	})
}

// GetByApplicationAndReviewer возвращает отзыв автора по заявке.
func (r *ReviewRepository) GetByApplicationAndReviewer(ctx context.Context, applicationID, reviewerID uuid.UUID) (*models.Review, error) {
	var review models.Review
	query := `SELECT * FROM reviews WHERE application_id = $1 AND reviewer_id = $2`
	if err := r.db.GetContext(ctx, &review, query, applicationID, reviewerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("review repository: get by application and reviewer %w", err)
	}
	return &review, nil
}

// ListByApplication возвращает отзывы по заявке.
func (r *ReviewRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	query := `SELECT * FROM reviews WHERE application_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &reviews, query, applicationID); err != nil {
		return nil, fmt.Errorf("review repository: list by application %w", err)
	}
	return reviews, nil
}

// ListRevealedByUser возвращает раскрытые отзывы о пользователе, новые первыми.
func (r *ReviewRepository) ListRevealedByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	var reviews []models.Review
	query := `
		SELECT * FROM reviews
		WHERE reviewed_id = $1 AND is_revealed = TRUE
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &reviews, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("review repository: list revealed by user %w", err)
	}
	return reviews, nil
}

// RevealExpired раскрывает одиночные отзывы старше дедлайна. Идемпотентно.
func (r *ReviewRepository) RevealExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET is_revealed = TRUE, updated_at = NOW() WHERE is_revealed = FALSE AND created_at < $1`,
		before)
	if err != nil {
		return 0, fmt.Errorf("review repository: reveal expired %w", err)
	}
	return result.RowsAffected()
}

// ListPendingForUser возвращает принятые заявки пользователя в завершённом
// состоянии, по которым он ещё не оставил отзыв.
func (r *ReviewRepository) ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	query := `
		SELECT a.*
		FROM applications a
		JOIN collaborations c ON c.id = a.collaboration_id
		WHERE a.status = 'accepted'
		  AND (a.influencer_id = $1 OR c.brand_id = $1)
		  AND (c.status = 'completed' AND (c.payment_status = 'none' OR c.payment_status = 'released'))
		  AND NOT EXISTS (
			SELECT 1 FROM reviews rv WHERE rv.application_id = a.id AND rv.reviewer_id = $1
		  )
		ORDER BY a.updated_at DESC
	`
	if err := r.db.SelectContext(ctx, &apps, query, userID); err != nil {
		return nil, fmt.Errorf("review repository: list pending for user %w", err)
	}
	return apps, nil
}
