package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/colaboreaza/collab-backend/internal/logger"
	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

// ReviewRepo описывает зависимости от хранилища отзывов.
type ReviewRepo interface {
	Upsert(ctx context.Context, review *models.Review) error
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]models.Review, error)
	ListRevealedByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error)
	ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]models.Application, error)
	RevealExpired(ctx context.Context, before time.Time) (int64, error)
}

// ApplicationSource отдаёт заявку по идентификатору.
type ApplicationSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
}

// ReviewService владеет отзывами со взаимным раскрытием: текст скрыт от
// второй стороны, пока та не оставит свой отзыв или не истечёт дедлайн.
type ReviewService struct {
	reviews      ReviewRepo
	applications ApplicationSource
	collabs      CollaborationSource

	revealTimeout time.Duration
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(
	reviews ReviewRepo,
	applications ApplicationSource,
	collabs CollaborationSource,
	revealTimeout time.Duration,
) *ReviewService {
	return &ReviewService{
		reviews:       reviews,
		applications:  applications,
		collabs:       collabs,
		revealTimeout: revealTimeout,
	}
}

// SubmitReview создаёт или обновляет отзыв по принятой заявке завершённой
// коллаборации. Если второй отзыв уже есть, пара раскрывается атомарно.
func (s *ReviewService) SubmitReview(ctx context.Context, applicationID, reviewerID uuid.UUID, rating int, comment *string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "оценка должна быть от 1 до 5")
	}

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, err
	}
	if app.Status != models.ApplicationStatusAccepted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "отзыв доступен только по принятой заявке")
	}

	collab, err := s.collabs.GetByID(ctx, app.CollaborationID)
	if err != nil {
		return nil, err
	}

	var role string
	var reviewedID uuid.UUID
	switch reviewerID {
	case collab.BrandID:
		role = models.RoleBrand
		reviewedID = app.InfluencerID
	case app.InfluencerID:
		role = models.RoleInfluencer
		reviewedID = collab.BrandID
	default:
		return nil, apperror.New(apperror.ErrCodeForbidden, "вы не участник этой коллаборации")
	}

	if err := s.ensureReviewable(collab); err != nil {
		return nil, err
	}

	review := &models.Review{
		ApplicationID: applicationID,
		ReviewerID:    reviewerID,
		ReviewedID:    reviewedID,
		ReviewerRole:  role,
		Rating:        rating,
		Comment:       comment,
	}
	if err := s.reviews.Upsert(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// ensureReviewable проверяет, что по коллаборации уже можно оставлять отзывы.
func (s *ReviewService) ensureReviewable(collab *models.Collaboration) error {
	if collab.Status == models.CollabStatusCompleted {
		if collab.PaymentStatus == models.PaymentStatusNone ||
			collab.PaymentStatus == models.PaymentStatusReleased {
			return nil
		}
		return apperror.New(apperror.ErrCodeInvalidState, "оплата должна быть выплачена")
	}
	if collab.Status == models.CollabStatusCompletedPendingRelease {
		return apperror.New(apperror.ErrCodeInvalidState, "оплата должна быть выплачена")
	}
	return apperror.New(apperror.ErrCodeInvalidState, "коллаборация должна быть завершена")
}

// ListByApplication возвращает отзывы по заявке её участнику.
// Чужой нераскрытый отзыв не отдаётся.
func (s *ReviewService) ListByApplication(ctx context.Context, applicationID, actorID uuid.UUID) ([]models.Review, error) {
	s.revealExpired(ctx)

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, err
	}

	collab, err := s.collabs.GetByID(ctx, app.CollaborationID)
	if err != nil {
		return nil, err
	}
	if actorID != collab.BrandID && actorID != app.InfluencerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "вы не участник этой коллаборации")
	}

	reviews, err := s.reviews.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Review, 0, len(reviews))
	for _, review := range reviews {
		if review.IsRevealed || review.ReviewerID == actorID {
			visible = append(visible, review)
		}
	}
	return visible, nil
}

// ListForUser возвращает раскрытые отзывы о пользователе. Публичный список.
func (s *ReviewService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	s.revealExpired(ctx)
	return s.reviews.ListRevealedByUser(ctx, userID, limit, offset)
}

// ListPending возвращает заявки, по которым пользователь ещё не оставил отзыв.
func (s *ReviewService) ListPending(ctx context.Context, userID uuid.UUID) ([]models.Application, error) {
	return s.reviews.ListPendingForUser(ctx, userID)
}

// revealExpired раскрывает одиночные отзывы с истёкшим дедлайном.
// Вызывается лениво на путях чтения, ошибки только логируются.
func (s *ReviewService) revealExpired(ctx context.Context) {
	revealed, err := s.reviews.RevealExpired(ctx, time.Now().Add(-s.revealTimeout))
	if err != nil {
		logger.Log.WithError(err).Warn("reviews: не удалось раскрыть просроченные отзывы")
		return
	}
	if revealed > 0 {
		logger.Log.WithFields(logrus.Fields{"revealed": revealed}).Info("reviews: раскрыты просроченные отзывы")
	}
}

// RunRevealSweep периодически раскрывает просроченные отзывы, чтобы дедлайн
// срабатывал и без обращений к API. Блокируется до отмены контекста.
func (s *ReviewService) RunRevealSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.revealExpired(ctx)
		}
	}
}
