package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

// MessagePublisher доставляет новое сообщение подключённому получателю.
type MessagePublisher interface {
	Publish(userID uuid.UUID, msg *models.Message)
}

// MessageRepo описывает зависимости от хранилища сообщений.
type MessageRepo interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByCollaboration(ctx context.Context, collabID uuid.UUID, limit, offset int) ([]models.Message, error)
}

// MessageService владеет перепиской внутри коллаборации. Чат открывается
// после принятия заявки и блокируется на запись на время спора.
type MessageService struct {
	messages     MessageRepo
	collabs      CollaborationSource
	applications AcceptedApplicationSource
	publisher    MessagePublisher
}

// NewMessageService создаёт сервис сообщений. publisher может быть nil.
func NewMessageService(
	messages MessageRepo,
	collabs CollaborationSource,
	applications AcceptedApplicationSource,
	publisher MessagePublisher,
) *MessageService {
	return &MessageService{
		messages:     messages,
		collabs:      collabs,
		applications: applications,
		publisher:    publisher,
	}
}

// SendMessage отправляет сообщение второй стороне коллаборации.
func (s *MessageService) SendMessage(ctx context.Context, collabID, senderID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "сообщение не может быть пустым")
	}

	collab, app, err := s.thread(ctx, collabID)
	if err != nil {
		return nil, err
	}

	role, counterpartID, err := participants(collab, app, senderID)
	if err != nil {
		return nil, err
	}

	if collab.Status == models.CollabStatusDisputed {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "чат заблокирован на время спора")
	}

	msg := &models.Message{
		CollaborationID: collabID,
		SenderID:        senderID,
		SenderType:      role,
		Content:         content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(counterpartID, msg)
	}

	return msg, nil
}

// GetThread возвращает историю чата. Во время спора чат доступен на чтение,
// но помечен заблокированным.
func (s *MessageService) GetThread(ctx context.Context, collabID, actorID uuid.UUID, limit, offset int) (*models.MessageThread, error) {
	collab, app, err := s.thread(ctx, collabID)
	if err != nil {
		return nil, err
	}

	if _, _, err := participants(collab, app, actorID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByCollaboration(ctx, collabID, limit, offset)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}

	return &models.MessageThread{
		Messages: messages,
		IsLocked: collab.Status == models.CollabStatusDisputed,
	}, nil
}

// thread загружает коллаборацию и принятую заявку, открывающую чат.
func (s *MessageService) thread(ctx context.Context, collabID uuid.UUID) (*models.Collaboration, *models.Application, error) {
	collab, err := s.collabs.GetByID(ctx, collabID)
	if err != nil {
		if errors.Is(err, repository.ErrCollaborationNotFound) {
			return nil, nil, apperror.ErrCollaborationNotFound
		}
		return nil, nil, err
	}

	app, err := s.applications.GetAcceptedByCollaboration(ctx, collabID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, nil, apperror.New(apperror.ErrCodeInvalidState, "чат открывается после принятия заявки")
		}
		return nil, nil, err
	}

	return collab, app, nil
}

// participants проверяет, что actor является стороной переписки,
// и возвращает его роль вместе с идентификатором второй стороны.
func participants(collab *models.Collaboration, app *models.Application, actorID uuid.UUID) (role string, counterpartID uuid.UUID, err error) {
	switch actorID {
	case collab.BrandID:
		return models.RoleBrand, app.InfluencerID, nil
	case app.InfluencerID:
		return models.RoleInfluencer, collab.BrandID, nil
	default:
		return "", uuid.Nil, apperror.New(apperror.ErrCodeForbidden, "вы не участник этой переписки")
	}
}
