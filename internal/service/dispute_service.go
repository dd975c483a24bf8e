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
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

// DisputeRepo описывает зависимости от хранилища споров и запросов на отмену.
type DisputeRepo interface {
	CreateDispute(ctx context.Context, dispute *models.Dispute) error
	GetDisputeByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	ListDisputesByCollaboration(ctx context.Context, collabID uuid.UUID) ([]models.Dispute, error)
	ListDisputes(ctx context.Context, status string, limit, offset int) ([]models.Dispute, int, error)
	ResolveDispute(ctx context.Context, id uuid.UUID, adminID uuid.UUID, resolution string, notes *string) (*models.Dispute, error)
	GetCancellationByID(ctx context.Context, id uuid.UUID) (*models.CancellationRequest, error)
	ListCancellationsByCollaboration(ctx context.Context, collabID uuid.UUID) ([]models.CancellationRequest, error)
	ListCancellations(ctx context.Context, status string, limit, offset int) ([]models.CancellationRequest, error)
	ResolveCancellation(ctx context.Context, id uuid.UUID, adminID uuid.UUID, resolution string, notes *string) (*models.CancellationRequest, error)
}

// DisputeEscrowRepo описывает денежные переходы, доступные резолюциям.
type DisputeEscrowRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error)
	GetByCollaborationID(ctx context.Context, collabID uuid.UUID) (*models.Escrow, error)
	Release(ctx context.Context, id uuid.UUID, expectedEscrowStatus string) (*models.Escrow, *models.CommissionRecord, error)
	Refund(ctx context.Context, id uuid.UUID, expectedStatuses []string) (*models.Escrow, error)
	CloseSplit(ctx context.Context, id uuid.UUID, expectedEscrowStatus string, payout, refund float64, collabStatus, collabPaymentStatus string) (*models.Escrow, *models.CommissionRecord, error)
}

// DisputeCollaborationRepo описывает зависимости от коллабораций.
type DisputeCollaborationRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Collaboration, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

// AcceptedApplicationSource отдаёт принятую заявку коллаборации.
type AcceptedApplicationSource interface {
	GetAcceptedByCollaboration(ctx context.Context, collabID uuid.UUID) (*models.Application, error)
}

// DisputeService владеет спорами и рассмотрением запросов на отмену.
// Решения администратора двигают деньги через условные переходы escrow,
// поэтому повторное применение одного решения невозможно.
type DisputeService struct {
	disputes     DisputeRepo
	escrows      DisputeEscrowRepo
	collabs      DisputeCollaborationRepo
	applications AcceptedApplicationSource
}

// NewDisputeService создаёт сервис споров.
func NewDisputeService(
	disputes DisputeRepo,
	escrows DisputeEscrowRepo,
	collabs DisputeCollaborationRepo,
	applications AcceptedApplicationSource,
) *DisputeService {
	return &DisputeService{
		disputes:     disputes,
		escrows:      escrows,
		collabs:      collabs,
		applications: applications,
	}
}

// SplitHalf делит сумму пополам с банковским округлением до цента.
// Остаток от округления достаётся второй стороне, сумма частей равна total.
func SplitHalf(total float64) (payout, refund float64) {
	t := decimal.NewFromFloat(total)
	p := t.Div(decimal.NewFromInt(2)).RoundBank(2)
	payout, _ = p.Float64()
	refund, _ = t.Sub(p).Float64()
	return payout, refund
}

// CreateDispute открывает спор по сданной работе. Доступно обеим сторонам
// коллаборации и только из состояния completed_pending_release.
func (s *DisputeService) CreateDispute(ctx context.Context, collabID, actorID uuid.UUID, reason string, details *string) (*models.Dispute, error) {
	collab, err := s.collabs.GetByID(ctx, collabID)
	if err != nil {
		if errors.Is(err, repository.ErrCollaborationNotFound) {
			return nil, apperror.ErrCollaborationNotFound
		}
		return nil, err
	}

	role, err := s.participantRole(ctx, collab, actorID)
	if err != nil {
		return nil, err
	}

	if collab.Status != models.CollabStatusCompletedPendingRelease {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			"спор можно открыть только после сдачи работы, до выплаты средств")
	}

	escrow, err := s.escrows.GetByCollaborationID(ctx, collabID)
	if err != nil {
		if errors.Is(err, repository.ErrEscrowNotFound) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "у коллаборации нет удержанных средств")
		}
		return nil, err
	}

	dispute := &models.Dispute{
		CollaborationID: collabID,
		EscrowID:        escrow.ID,
		OpenedBy:        actorID,
		OpenerRole:      role,
		Reason:          reason,
		Details:         details,
	}
	if err := s.disputes.CreateDispute(ctx, dispute); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperror.New(apperror.ErrCodeInvalidState,
				"спор можно открыть только после сдачи работы, до выплаты средств")
		}
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"dispute_id":       dispute.ID,
		"collaboration_id": collabID,
		"opened_by":        actorID,
	}).Info("dispute opened")

	return dispute, nil
}

// GetDispute возвращает спор участнику коллаборации или администратору.
func (s *DisputeService) GetDispute(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) (*models.Dispute, error) {
	dispute, err := s.disputes.GetDisputeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}

	if !isAdmin {
		collab, err := s.collabs.GetByID(ctx, dispute.CollaborationID)
		if err != nil {
			return nil, err
		}
		if _, err := s.participantRole(ctx, collab, actorID); err != nil {
			return nil, err
		}
	}

	return dispute, nil
}

// ListByCollaboration возвращает споры коллаборации для её участника.
func (s *DisputeService) ListByCollaboration(ctx context.Context, collabID, actorID uuid.UUID) ([]models.Dispute, error) {
	collab, err := s.collabs.GetByID(ctx, collabID)
	if err != nil {
		if errors.Is(err, repository.ErrCollaborationNotFound) {
			return nil, apperror.ErrCollaborationNotFound
		}
		return nil, err
	}
	if _, err := s.participantRole(ctx, collab, actorID); err != nil {
		return nil, err
	}
	return s.disputes.ListDisputesByCollaboration(ctx, collabID)
}

// ListDisputes возвращает споры для панели администратора.
func (s *DisputeService) ListDisputes(ctx context.Context, status string, limit, offset int) ([]models.Dispute, int, error) {
	return s.disputes.ListDisputes(ctx, status, limit, offset)
}

// ResolveDispute применяет решение администратора. Сначала двигаются деньги,
// запись спора закрывается последней: обрыв посреди операции оставляет спор
// открытым, а повтор безвреден, так как переходы escrow условные.
func (s *DisputeService) ResolveDispute(ctx context.Context, disputeID, adminID uuid.UUID, resolution string, notes *string) (*models.Dispute, error) {
	if _, ok := models.ValidDisputeResolutions[resolution]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестное решение %q", resolution))
	}

	dispute, err := s.disputes.GetDisputeByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}
	if dispute.Status != models.DisputeStatusOpen {
		return nil, apperror.New(apperror.ErrCodeConflict, "спор уже рассмотрен")
	}

	if err := s.applyDisputeResolution(ctx, dispute, resolution); err != nil {
		return nil, err
	}

	resolved, err := s.disputes.ResolveDispute(ctx, disputeID, adminID, resolution, notes)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperror.New(apperror.ErrCodeConflict, "спор уже рассмотрен")
		}
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"dispute_id": disputeID,
		"resolution": resolution,
		"admin_id":   adminID,
	}).Info("dispute resolved")

	return resolved, nil
}

// applyDisputeResolution двигает средства по решённому спору. Переходы escrow
// условные, поэтому повторная доставка того же решения безвредна.
func (s *DisputeService) applyDisputeResolution(ctx context.Context, dispute *models.Dispute, resolution string) error {
	switch resolution {
	case models.DisputeResolutionRelease:
		_, _, err := s.escrows.Release(ctx, dispute.EscrowID, models.EscrowStatusDisputed)
		if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
			return err
		}

	case models.DisputeResolutionRefund:
		_, err := s.escrows.Refund(ctx, dispute.EscrowID, []string{models.EscrowStatusDisputed})
		if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
			return err
		}
		if err := s.collabs.SetStatus(ctx, dispute.CollaborationID, models.CollabStatusCancelled); err != nil {
			return err
		}

	case models.DisputeResolutionSplit:
		escrow, err := s.escrows.GetByID(ctx, dispute.EscrowID)
		if err != nil {
			return err
		}
		payout, refund := SplitHalf(escrow.TotalAmount)
		_, _, err = s.escrows.CloseSplit(ctx, dispute.EscrowID, models.EscrowStatusDisputed,
			payout, refund, models.CollabStatusCompleted, models.PaymentStatusReleased)
		if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
			return err
		}
	}

	return nil
}

// GetCancellation возвращает запрос на отмену.
func (s *DisputeService) GetCancellation(ctx context.Context, id uuid.UUID) (*models.CancellationRequest, error) {
	req, err := s.disputes.GetCancellationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCancellationNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "запрос на отмену не найден")
		}
		return nil, err
	}
	return req, nil
}

// ListCancellationsByCollaboration возвращает запросы на отмену коллаборации
// её участнику: вместе с решениями администратора это полная история денег.
func (s *DisputeService) ListCancellationsByCollaboration(ctx context.Context, collabID, actorID uuid.UUID) ([]models.CancellationRequest, error) {
	collab, err := s.collabs.GetByID(ctx, collabID)
	if err != nil {
		if errors.Is(err, repository.ErrCollaborationNotFound) {
			return nil, apperror.ErrCollaborationNotFound
		}
		return nil, err
	}
	if _, err := s.participantRole(ctx, collab, actorID); err != nil {
		return nil, err
	}
	return s.disputes.ListCancellationsByCollaboration(ctx, collabID)
}

// ListCancellations возвращает запросы на отмену для панели администратора.
func (s *DisputeService) ListCancellations(ctx context.Context, status string, limit, offset int) ([]models.CancellationRequest, error) {
	return s.disputes.ListCancellations(ctx, status, limit, offset)
}

// ResolveCancellation применяет решение администратора по спорной отмене.
// Как и в спорах, деньги двигаются первыми, запись закрывается последней.
func (s *DisputeService) ResolveCancellation(ctx context.Context, requestID, adminID uuid.UUID, resolution string, notes *string) (*models.CancellationRequest, error) {
	if _, ok := models.ValidCancellationResolutions[resolution]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестное решение %q", resolution))
	}

	req, err := s.GetCancellation(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.CancellationStatusPendingReview {
		return nil, apperror.New(apperror.ErrCodeConflict, "запрос на отмену уже рассмотрен")
	}

	if err := s.applyCancellationResolution(ctx, req, resolution); err != nil {
		return nil, err
	}

	resolved, err := s.disputes.ResolveCancellation(ctx, requestID, adminID, resolution, notes)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperror.New(apperror.ErrCodeConflict, "запрос на отмену уже рассмотрен")
		}
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"cancellation_id": requestID,
		"resolution":      resolution,
		"admin_id":        adminID,
	}).Info("cancellation resolved")

	return resolved, nil
}

// applyCancellationResolution закрывает коллаборацию по решению администратора.
// Для бартера и бесплатных коллабораций escrow отсутствует, двигается только статус.
func (s *DisputeService) applyCancellationResolution(ctx context.Context, req *models.CancellationRequest, resolution string) error {
	escrow, err := s.escrows.GetByCollaborationID(ctx, req.CollaborationID)
	if err != nil && !errors.Is(err, repository.ErrEscrowNotFound) {
		return err
	}
	hasEscrow := err == nil

	switch resolution {
	case models.CancellationResolutionFullRefund:
		if hasEscrow {
			_, err := s.escrows.Refund(ctx, escrow.ID,
				[]string{models.EscrowStatusPending, models.EscrowStatusSecured})
			if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
				return err
			}
		}
		return s.collabs.SetStatus(ctx, req.CollaborationID, models.CollabStatusCancelled)

	case models.CancellationResolutionNoRefund:
		if hasEscrow {
			// Работа признана выполненной: выплата инфлюенсеру, коллаборация закрывается отменой
			_, _, err := s.escrows.Release(ctx, escrow.ID, models.EscrowStatusSecured)
			if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
				return err
			}
		}
		return s.collabs.SetStatus(ctx, req.CollaborationID, models.CollabStatusCancelled)

	case models.CancellationResolutionPartialRefund:
		if hasEscrow {
			payout, refund := SplitHalf(escrow.TotalAmount)
			_, _, err := s.escrows.CloseSplit(ctx, escrow.ID, models.EscrowStatusSecured,
				payout, refund, models.CollabStatusCancelled, models.PaymentStatusReleased)
			if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
				return err
			}
			return nil
		}
		return s.collabs.SetStatus(ctx, req.CollaborationID, models.CollabStatusCancelled)
	}

	return nil
}

// participantRole возвращает роль actor-а в коллаборации.
func (s *DisputeService) participantRole(ctx context.Context, collab *models.Collaboration, actorID uuid.UUID) (string, error) {
	if collab.BrandID == actorID {
		return models.RoleBrand, nil
	}

	accepted, err := s.applications.GetAcceptedByCollaboration(ctx, collab.ID)
	if err == nil && accepted.InfluencerID == actorID {
		return models.RoleInfluencer, nil
	}
	if err != nil && !errors.Is(err, repository.ErrApplicationNotFound) {
		return "", err
	}

	return "", apperror.New(apperror.ErrCodeForbidden, "вы не участник этой коллаборации")
}
