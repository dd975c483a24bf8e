package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/colaboreaza/collab-backend/internal/logger"
	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/payment"
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

// CollaborationSource отдаёт коллаборацию по идентификатору.
type CollaborationSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Collaboration, error)
}

// EscrowRepo описывает зависимости от хранилища escrow.
type EscrowRepo interface {
	Create(ctx context.Context, escrow *models.Escrow) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error)
	GetByCollaborationID(ctx context.Context, collabID uuid.UUID) (*models.Escrow, error)
	Secure(ctx context.Context, id uuid.UUID, paymentReference string) (*models.Escrow, error)
	Release(ctx context.Context, id uuid.UUID, expectedEscrowStatus string) (*models.Escrow, *models.CommissionRecord, error)
	Refund(ctx context.Context, id uuid.UUID, expectedStatuses []string) (*models.Escrow, error)
}

// CommissionRateSource возвращает текущую глобальную ставку комиссии.
type CommissionRateSource interface {
	CurrentRate(ctx context.Context) (float64, error)
}

// EscrowService владеет денежным состоянием сделок: создание, удержание,
// выплата и возврат средств с расчётом комиссии платформы.
type EscrowService struct {
	escrows EscrowRepo
	collabs CollaborationSource
	rates   CommissionRateSource
	gateway payment.Gateway
}

// NewEscrowService создаёт сервис escrow.
func NewEscrowService(escrows EscrowRepo, collabs CollaborationSource, rates CommissionRateSource, gateway payment.Gateway) *EscrowService {
	return &EscrowService{
		escrows: escrows,
		collabs: collabs,
		rates:   rates,
		gateway: gateway,
	}
}

// SplitCommission раскладывает сумму на комиссию и выплату инфлюенсеру.
// Комиссия округляется банковским округлением до цента, выплата берётся
// как точный остаток, поэтому сумма частей всегда равна total.
func SplitCommission(total, rate float64) (commission, payout float64) {
	t := decimal.NewFromFloat(total)
	c := t.Mul(decimal.NewFromFloat(rate)).Div(decimal.NewFromInt(100)).RoundBank(2)
	p := t.Sub(c)
	commission, _ = c.Float64()
	payout, _ = p.Float64()
	return commission, payout
}

// CreateEscrow открывает custody-запись для оплачиваемой коллаборации.
func (s *EscrowService) CreateEscrow(ctx context.Context, collabID, actorID uuid.UUID) (*models.Escrow, error) {
	collab, err := s.collabs.GetByID(ctx, collabID)
	if err != nil {
		if errors.Is(err, repository.ErrCollaborationNotFound) {
			return nil, apperror.ErrCollaborationNotFound
		}
		return nil, err
	}

	if collab.BrandID != actorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "escrow может создать только владелец коллаборации")
	}

	if collab.CollabType != models.CollabTypePaid {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "escrow доступен только для оплачиваемых коллабораций")
	}

	total, ok := collab.EscrowTotal()
	if !ok || total <= 0 {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "у коллаборации не задан бюджет")
	}

	rate, err := s.rates.CurrentRate(ctx)
	if err != nil {
		return nil, err
	}

	commission, payout := SplitCommission(total, rate)

	escrow := &models.Escrow{
		CollaborationID:    collab.ID,
		BrandID:            collab.BrandID,
		TotalAmount:        total,
		CommissionRate:     rate,
		PlatformCommission: commission,
		InfluencerPayout:   payout,
	}

	if err := s.escrows.Create(ctx, escrow); err != nil {
		if errors.Is(err, repository.ErrEscrowExists) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "escrow для этой коллаборации уже существует")
		}
		return nil, err
	}

	return escrow, nil
}

// SecureEscrow удерживает средства через платёжный шлюз: pending → secured.
// Локальный статус меняется только после подтверждения шлюза.
func (s *EscrowService) SecureEscrow(ctx context.Context, escrowID, actorID uuid.UUID) (*models.Escrow, error) {
	escrow, err := s.getOwned(ctx, escrowID, actorID)
	if err != nil {
		return nil, err
	}

	if escrow.Status != models.EscrowStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("escrow в статусе %s нельзя перевести в secured", escrow.Status))
	}

	checkout, err := s.gateway.CreateCheckout(ctx, escrow.ID, escrow.TotalAmount, "USD")
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstream, "платёжный шлюз недоступен")
	}

	status, err := s.gateway.GetStatus(ctx, checkout.Reference)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstream, "платёжный шлюз недоступен")
	}
	if status != payment.StatusSucceeded {
		return nil, apperror.New(apperror.ErrCodeUpstream, "платёж не подтверждён шлюзом")
	}

	secured, err := s.escrows.Secure(ctx, escrow.ID, checkout.Reference)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "escrow уже обработан")
		}
		return nil, err
	}

	return secured, nil
}

// ReleaseEscrow выплачивает средства инфлюенсеру: secured → released.
// Требует, чтобы коллаборация была завершена и не находилась в споре.
func (s *EscrowService) ReleaseEscrow(ctx context.Context, escrowID, actorID uuid.UUID) (*models.Escrow, error) {
	escrow, err := s.getOwned(ctx, escrowID, actorID)
	if err != nil {
		return nil, err
	}

	if escrow.Status == models.EscrowStatusDisputed {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "escrow заблокирован открытым спором")
	}
	if escrow.Status != models.EscrowStatusSecured {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("escrow в статусе %s нельзя выплатить", escrow.Status))
	}

	collab, err := s.collabs.GetByID(ctx, escrow.CollaborationID)
	if err != nil {
		return nil, err
	}
	if collab.Status != models.CollabStatusCompletedPendingRelease {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "коллаборация ещё не завершена")
	}

	released, record, err := s.escrows.Release(ctx, escrow.ID, models.EscrowStatusSecured)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "escrow уже обработан")
		}
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"escrow_id":     released.ID,
		"payout_amount": record.PayoutAmount,
		"commission":    record.CommissionAmount,
	}).Info("escrow released")

	return released, nil
}

// RefundEscrow возвращает средства бренду: pending|secured → refunded.
func (s *EscrowService) RefundEscrow(ctx context.Context, escrowID, actorID uuid.UUID) (*models.Escrow, error) {
	escrow, err := s.getOwned(ctx, escrowID, actorID)
	if err != nil {
		return nil, err
	}

	if escrow.Status == models.EscrowStatusDisputed {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "escrow заблокирован открытым спором")
	}

	refunded, err := s.escrows.Refund(ctx, escrow.ID,
		[]string{models.EscrowStatusPending, models.EscrowStatusSecured})
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperror.New(apperror.ErrCodeInvalidState,
				fmt.Sprintf("escrow в статусе %s нельзя вернуть", escrow.Status))
		}
		return nil, err
	}

	return refunded, nil
}

// GetByCollaboration возвращает escrow коллаборации.
func (s *EscrowService) GetByCollaboration(ctx context.Context, collabID uuid.UUID) (*models.Escrow, error) {
	escrow, err := s.escrows.GetByCollaborationID(ctx, collabID)
	if err != nil {
		if errors.Is(err, repository.ErrEscrowNotFound) {
			return nil, apperror.ErrEscrowNotFound
		}
		return nil, err
	}
	return escrow, nil
}

// HandleWebhook обрабатывает callback платёжного шлюза. Ошибки обработки
// логируются и не возвращаются наружу: повторная доставка остаётся за шлюзом.
func (s *EscrowService) HandleWebhook(ctx context.Context, payload []byte, signature string) {
	event, err := s.gateway.HandleWebhook(payload, signature)
	if err != nil {
		logger.Log.WithError(err).Warn("webhook: payload отклонён")
		return
	}

	if event.Type != "payment.succeeded" && event.Type != "checkout.completed" {
		return
	}

	if _, err := s.escrows.Secure(ctx, event.EscrowID, event.Reference); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			// Повторная доставка уже обработанного события
			return
		}
		logger.Log.WithFields(logrus.Fields{
			"escrow_id": event.EscrowID,
			"reference": event.Reference,
			"error":     err.Error(),
		}).Error("webhook: не удалось перевести escrow в secured")
	}
}

// CalculateCommission считает комиссию по текущей ставке для произвольной суммы.
func (s *EscrowService) CalculateCommission(ctx context.Context, amount float64) (rate, commission, payout float64, err error) {
	if amount <= 0 {
		return 0, 0, 0, apperror.New(apperror.ErrCodeValidation, "сумма должна быть положительной")
	}

	rate, err = s.rates.CurrentRate(ctx)
	if err != nil {
		return 0, 0, 0, err
	}

	commission, payout = SplitCommission(amount, rate)
	return rate, commission, payout, nil
}

// getOwned загружает escrow и проверяет, что actor владеет сделкой.
func (s *EscrowService) getOwned(ctx context.Context, escrowID, actorID uuid.UUID) (*models.Escrow, error) {
	escrow, err := s.escrows.GetByID(ctx, escrowID)
	if err != nil {
		if errors.Is(err, repository.ErrEscrowNotFound) {
			return nil, apperror.ErrEscrowNotFound
		}
		return nil, err
	}

	if escrow.BrandID != actorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "операция доступна только владельцу escrow")
	}

	return escrow, nil
}
