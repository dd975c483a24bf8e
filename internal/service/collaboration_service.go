package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/colaboreaza/collab-backend/internal/logger"
	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

// CollaborationRepo описывает зависимости от хранилища коллабораций.
type CollaborationRepo interface {
	Create(ctx context.Context, collab *models.Collaboration) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Collaboration, error)
	List(ctx context.Context, params repository.CollaborationListParams) ([]models.Collaboration, error)
	ListByBrand(ctx context.Context, brandID uuid.UUID, limit, offset int) ([]models.Collaboration, error)
	CountActiveByBrand(ctx context.Context, brandID uuid.UUID) (int, error)
	Update(ctx context.Context, collab *models.Collaboration) error
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string) error
	UpdateStatusAndPayment(ctx context.Context, id uuid.UUID, expectedStatus, newStatus, newPaymentStatus string) error
}

// ApplicationRepo описывает зависимости от хранилища заявок.
type ApplicationRepo interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetAcceptedByCollaboration(ctx context.Context, collabID uuid.UUID) (*models.Application, error)
	ListByInfluencer(ctx context.Context, influencerID uuid.UUID, limit, offset int) ([]models.Application, error)
	ListByCollaboration(ctx context.Context, collabID uuid.UUID) ([]models.Application, error)
	Accept(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID) error
}

// CancellationWriter фиксирует запросы на отмену.
type CancellationWriter interface {
	CreateCancellation(ctx context.Context, req *models.CancellationRequest) error
}

// UserSource отдаёт пользователя по идентификатору.
type UserSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// InfluencerProfileSource отдаёт профиль инфлюенсера.
type InfluencerProfileSource interface {
	GetInfluencerProfile(ctx context.Context, userID uuid.UUID) (*models.InfluencerProfile, error)
}

// CollaborationService владеет жизненным циклом коллабораций и заявок:
// создание с проверкой квоты, переходы статусов, принятие заявок и отмена.
type CollaborationService struct {
	collabs       CollaborationRepo
	applications  ApplicationRepo
	escrows       EscrowRepo
	cancellations CancellationWriter
	users         UserSource
	profiles      InfluencerProfileSource

	freeTierActiveLimit int
}

// NewCollaborationService создаёт сервис коллабораций.
func NewCollaborationService(
	collabs CollaborationRepo,
	applications ApplicationRepo,
	escrows EscrowRepo,
	cancellations CancellationWriter,
	users UserSource,
	profiles InfluencerProfileSource,
	freeTierActiveLimit int,
) *CollaborationService {
	return &CollaborationService{
		collabs:             collabs,
		applications:        applications,
		escrows:             escrows,
		cancellations:       cancellations,
		users:               users,
		profiles:            profiles,
		freeTierActiveLimit: freeTierActiveLimit,
	}
}

// CreateInput содержит данные новой коллаборации.
type CreateInput struct {
	Title          string
	Description    string
	CollabType     string
	BudgetMin      *float64
	BudgetMax      *float64
	Platform       *string
	Niche          *string
	Deliverables   *string
	CreatorsNeeded int
	IsPublic       bool
	DeadlineAt     *time.Time
}

// Create создаёт коллаборацию. Бренды без PRO ограничены квотой
// одновременно активных коллабораций.
func (s *CollaborationService) Create(ctx context.Context, brandID uuid.UUID, in CreateInput) (*models.Collaboration, error) {
	user, err := s.users.GetByID(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleBrand {
		return nil, apperror.New(apperror.ErrCodeForbidden, "создавать коллаборации могут только бренды")
	}

	if _, ok := models.ValidCollabTypes[in.CollabType]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("неизвестный тип коллаборации %q", in.CollabType))
	}

	if !user.HasActivePro(time.Now()) {
		active, err := s.collabs.CountActiveByBrand(ctx, brandID)
		if err != nil {
			return nil, err
		}
		if active >= s.freeTierActiveLimit {
			return nil, apperror.New(apperror.ErrCodeQuotaExceeded,
				fmt.Sprintf("на бесплатном тарифе доступно не более %d активных коллабораций", s.freeTierActiveLimit))
		}
	}

	if in.CreatorsNeeded <= 0 {
		in.CreatorsNeeded = 1
	}

	collab := &models.Collaboration{
		BrandID:        brandID,
		Title:          in.Title,
		Description:    in.Description,
		CollabType:     in.CollabType,
		Status:         models.CollabStatusActive,
		PaymentStatus:  models.InitialPaymentStatus(in.CollabType),
		BudgetMin:      in.BudgetMin,
		BudgetMax:      in.BudgetMax,
		Platform:       in.Platform,
		Niche:          in.Niche,
		Deliverables:   in.Deliverables,
		CreatorsNeeded: in.CreatorsNeeded,
		IsPublic:       in.IsPublic,
		DeadlineAt:     in.DeadlineAt,
	}

	if err := s.collabs.Create(ctx, collab); err != nil {
		return nil, err
	}

	return collab, nil
}

// Get возвращает коллаборацию по идентификатору.
func (s *CollaborationService) Get(ctx context.Context, id uuid.UUID) (*models.Collaboration, error) {
	collab, err := s.collabs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCollaborationNotFound) {
			return nil, apperror.ErrCollaborationNotFound
		}
		return nil, err
	}
	return collab, nil
}

// List возвращает публичные коллаборации с фильтрами.
func (s *CollaborationService) List(ctx context.Context, params repository.CollaborationListParams) ([]models.Collaboration, error) {
	return s.collabs.List(ctx, params)
}

// ListMy возвращает коллаборации бренда.
func (s *CollaborationService) ListMy(ctx context.Context, brandID uuid.UUID, limit, offset int) ([]models.Collaboration, error) {
	return s.collabs.ListByBrand(ctx, brandID, limit, offset)
}

// Update обновляет редактируемые поля. Доступно только владельцу.
func (s *CollaborationService) Update(ctx context.Context, id, actorID uuid.UUID, in CreateInput) (*models.Collaboration, error) {
	collab, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	collab.Title = in.Title
	collab.Description = in.Description
	collab.BudgetMin = in.BudgetMin
	collab.BudgetMax = in.BudgetMax
	collab.Platform = in.Platform
	collab.Niche = in.Niche
	collab.Deliverables = in.Deliverables
	if in.CreatorsNeeded > 0 {
		collab.CreatorsNeeded = in.CreatorsNeeded
	}
	collab.IsPublic = in.IsPublic
	collab.DeadlineAt = in.DeadlineAt

	if err := s.collabs.Update(ctx, collab); err != nil {
		return nil, err
	}

	return collab, nil
}

// UpdateStatus переводит коллаборацию в новый статус по запросу владельца.
// Перевод в completed для оплачиваемой коллаборации с незакрытым escrow
// принудительно становится completed_pending_release.
func (s *CollaborationService) UpdateStatus(ctx context.Context, id, actorID uuid.UUID, newStatus string) (*models.Collaboration, error) {
	collab, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if _, ok := models.ValidCollabStatuses[newStatus]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный статус %q", newStatus))
	}

	if newStatus == models.CollabStatusCompleted &&
		collab.CollabType == models.CollabTypePaid &&
		collab.PaymentStatus != models.PaymentStatusReleased &&
		collab.PaymentStatus != models.PaymentStatusNone {
		// Оплата ещё не выплачена: завершение ждёт release escrow
		err = s.collabs.UpdateStatusAndPayment(ctx, collab.ID, collab.Status,
			models.CollabStatusCompletedPendingRelease, models.PaymentStatusCompletedPendingRelease)
		if err != nil {
			if errors.Is(err, repository.ErrStatusConflict) {
				return nil, apperror.New(apperror.ErrCodeConflict, "статус коллаборации изменился, повторите запрос")
			}
			return nil, err
		}
		collab.Status = models.CollabStatusCompletedPendingRelease
		collab.PaymentStatus = models.PaymentStatusCompletedPendingRelease
		return collab, nil
	}

	if err := s.collabs.UpdateStatus(ctx, collab.ID, collab.Status, newStatus); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperror.New(apperror.ErrCodeConflict, "статус коллаборации изменился, повторите запрос")
		}
		return nil, err
	}
	collab.Status = newStatus
	return collab, nil
}

// Cancel отменяет коллаборацию. Для active возврат происходит мгновенно,
// для in_progress запрос уходит на рассмотрение администратору.
func (s *CollaborationService) Cancel(ctx context.Context, id, actorID uuid.UUID, reason string, details *string) (*models.Collaboration, *models.CancellationRequest, error) {
	collab, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	role, err := s.participantRole(ctx, collab, actorID)
	if err != nil {
		return nil, nil, err
	}

	switch collab.Status {
	case models.CollabStatusActive:
		return s.cancelInstant(ctx, collab, actorID, role, reason, details)

	case models.CollabStatusInProgress:
		newStatus := models.CollabStatusCancelRequestedByBrand
		if role == models.RoleInfluencer {
			newStatus = models.CollabStatusCancelRequestedByInf
		}

		if err := s.collabs.UpdateStatus(ctx, collab.ID, models.CollabStatusInProgress, newStatus); err != nil {
			if errors.Is(err, repository.ErrStatusConflict) {
				return nil, nil, apperror.New(apperror.ErrCodeConflict, "статус коллаборации изменился, повторите запрос")
			}
			return nil, nil, err
		}

		req := &models.CancellationRequest{
			CollaborationID: collab.ID,
			RequestedBy:     actorID,
			RequesterRole:   role,
			Reason:          reason,
			Details:         details,
			Status:          models.CancellationStatusPendingReview,
		}
		if err := s.cancellations.CreateCancellation(ctx, req); err != nil {
			return nil, nil, err
		}

		collab.Status = newStatus
		return collab, req, nil

	case models.CollabStatusCompletedPendingRelease:
		return nil, nil, apperror.New(apperror.ErrCodeInvalidState,
			"работа уже сдана: для возврата средств откройте спор")

	default:
		return nil, nil, apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("коллаборацию в статусе %s нельзя отменить", collab.Status))
	}
}

// cancelInstant отменяет ещё не начатую коллаборацию с мгновенным возвратом.
func (s *CollaborationService) cancelInstant(ctx context.Context, collab *models.Collaboration, actorID uuid.UUID, role, reason string, details *string) (*models.Collaboration, *models.CancellationRequest, error) {
	if err := s.collabs.UpdateStatus(ctx, collab.ID, models.CollabStatusActive, models.CollabStatusCancelled); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, nil, apperror.New(apperror.ErrCodeInvalidState, "коллаборация уже не активна")
		}
		return nil, nil, err
	}
	collab.Status = models.CollabStatusCancelled

	if collab.CollabType == models.CollabTypePaid {
		escrow, err := s.escrows.GetByCollaborationID(ctx, collab.ID)
		if err == nil {
			if _, err := s.escrows.Refund(ctx, escrow.ID,
				[]string{models.EscrowStatusPending, models.EscrowStatusSecured}); err != nil {
				if !errors.Is(err, repository.ErrStatusConflict) {
					return nil, nil, err
				}
				// Escrow уже закрыт другим переходом, его payment_status не трогаем
			} else {
				collab.PaymentStatus = models.PaymentStatusRefunded
			}
		} else if !errors.Is(err, repository.ErrEscrowNotFound) {
			return nil, nil, err
		}
	}

	resolution := models.CancellationResolutionFullRefund
	req := &models.CancellationRequest{
		CollaborationID: collab.ID,
		RequestedBy:     actorID,
		RequesterRole:   role,
		Reason:          reason,
		Details:         details,
		Status:          models.CancellationStatusAutoApproved,
		Resolution:      &resolution,
	}
	if err := s.cancellations.CreateCancellation(ctx, req); err != nil {
		return nil, nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"collaboration_id": collab.ID,
		"requested_by":     actorID,
	}).Info("collaboration cancelled instantly")

	return collab, req, nil
}

// Apply создаёт заявку инфлюенсера на активную коллаборацию.
func (s *CollaborationService) Apply(ctx context.Context, collabID, influencerID uuid.UUID, coverLetter string, proposedPrice *float64, deliverables *string) (*models.Application, error) {
	user, err := s.users.GetByID(ctx, influencerID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleInfluencer {
		return nil, apperror.New(apperror.ErrCodeForbidden, "подавать заявки могут только инфлюенсеры")
	}

	if _, err := s.profiles.GetInfluencerProfile(ctx, influencerID); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "сначала заполните профиль инфлюенсера")
		}
		return nil, err
	}

	collab, err := s.Get(ctx, collabID)
	if err != nil {
		return nil, err
	}
	if collab.Status != models.CollabStatusActive {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "коллаборация не принимает заявки")
	}

	app := &models.Application{
		CollaborationID:      collabID,
		InfluencerID:         influencerID,
		CoverLetter:          coverLetter,
		ProposedPrice:        proposedPrice,
		SelectedDeliverables: deliverables,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			return nil, apperror.New(apperror.ErrCodeConflict, "вы уже подали заявку на эту коллаборацию")
		}
		return nil, err
	}

	return app, nil
}

// ListMyApplications возвращает заявки инфлюенсера вместе с коллаборациями.
func (s *CollaborationService) ListMyApplications(ctx context.Context, influencerID uuid.UUID, limit, offset int) ([]models.Application, error) {
	apps, err := s.applications.ListByInfluencer(ctx, influencerID, limit, offset)
	if err != nil {
		return nil, err
	}

	for i := range apps {
		collab, err := s.collabs.GetByID(ctx, apps[i].CollaborationID)
		if err != nil {
			continue
		}
		apps[i].Collaboration = collab
	}
	return apps, nil
}

// ListApplications возвращает заявки на коллаборацию. Доступно только владельцу.
func (s *CollaborationService) ListApplications(ctx context.Context, collabID, actorID uuid.UUID) ([]models.Application, error) {
	if _, err := s.getOwned(ctx, collabID, actorID); err != nil {
		return nil, err
	}

	apps, err := s.applications.ListByCollaboration(ctx, collabID)
	if err != nil {
		return nil, err
	}

	for i := range apps {
		profile, err := s.profiles.GetInfluencerProfile(ctx, apps[i].InfluencerID)
		if err != nil {
			continue
		}
		apps[i].Influencer = profile
	}
	return apps, nil
}

// DecideApplication принимает или отклоняет заявку. Принятие переводит
// коллаборацию в in_progress; вторая принятая заявка не допускается.
func (s *CollaborationService) DecideApplication(ctx context.Context, appID, actorID uuid.UUID, status string) (*models.Application, error) {
	app, err := s.applications.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, err
	}

	collab, err := s.getOwned(ctx, app.CollaborationID, actorID)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.ApplicationStatusAccepted:
		if _, err := s.applications.GetAcceptedByCollaboration(ctx, collab.ID); err == nil {
			return nil, apperror.New(apperror.ErrCodeConflict, "по коллаборации уже принята другая заявка")
		} else if !errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, err
		}

		if err := s.applications.Accept(ctx, appID); err != nil {
			if errors.Is(err, repository.ErrAlreadyAccepted) {
				return nil, apperror.New(apperror.ErrCodeConflict, "по коллаборации уже принята другая заявка")
			}
			if errors.Is(err, repository.ErrStatusConflict) {
				return nil, apperror.New(apperror.ErrCodeInvalidState, "заявка уже рассмотрена")
			}
			return nil, err
		}
		app.Status = models.ApplicationStatusAccepted

		// Работа началась; гонку с параллельной отменой решает условный UPDATE
		if err := s.collabs.UpdateStatus(ctx, collab.ID, models.CollabStatusActive, models.CollabStatusInProgress); err != nil &&
			!errors.Is(err, repository.ErrStatusConflict) {
			return nil, err
		}

	case models.ApplicationStatusRejected:
		if err := s.applications.Reject(ctx, appID); err != nil {
			if errors.Is(err, repository.ErrStatusConflict) {
				return nil, apperror.New(apperror.ErrCodeInvalidState, "заявка уже рассмотрена")
			}
			return nil, err
		}
		app.Status = models.ApplicationStatusRejected

	default:
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("недопустимый статус заявки %q", status))
	}

	return app, nil
}

// getOwned загружает коллаборацию и проверяет владельца.
func (s *CollaborationService) getOwned(ctx context.Context, id, actorID uuid.UUID) (*models.Collaboration, error) {
	collab, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if collab.BrandID != actorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "операция доступна только владельцу коллаборации")
	}
	return collab, nil
}

// participantRole возвращает роль actor-а в коллаборации: владелец-бренд
// или инфлюенсер принятой заявки.
func (s *CollaborationService) participantRole(ctx context.Context, collab *models.Collaboration, actorID uuid.UUID) (string, error) {
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
