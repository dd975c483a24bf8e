package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockMessageRepo) ListByCollaboration(ctx context.Context, collabID uuid.UUID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, collabID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(userID uuid.UUID, msg *models.Message) {
	m.Called(userID, msg)
}

func newMessageService() (*MessageService, *mockMessageRepo, *mockCollabRepo, *mockAcceptedAppSource, *mockPublisher) {
	messages := new(mockMessageRepo)
	collabs := new(mockCollabRepo)
	apps := new(mockAcceptedAppSource)
	publisher := new(mockPublisher)
	return NewMessageService(messages, collabs, apps, publisher), messages, collabs, apps, publisher
}

func TestMessageService_SendMessage_DeliversToCounterpart(t *testing.T) {
	svc, messages, collabs, apps, publisher := newMessageService()
	ctx := context.Background()

	brandID := uuid.New()
	influencerID := uuid.New()
	collab := &models.Collaboration{ID: uuid.New(), BrandID: brandID, Status: models.CollabStatusInProgress}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	apps.On("GetAcceptedByCollaboration", ctx, collab.ID).
		Return(&models.Application{InfluencerID: influencerID}, nil)
	messages.On("Create", ctx, mock.MatchedBy(func(m *models.Message) bool {
		return m.CollaborationID == collab.ID &&
			m.SenderID == brandID &&
			m.SenderType == models.RoleBrand
	})).Return(nil)
	publisher.On("Publish", influencerID, mock.Anything).Return()

	msg, err := svc.SendMessage(ctx, collab.ID, brandID, "  привет!  ")
	assert.NoError(t, err)
	assert.Equal(t, "привет!", msg.Content)
	publisher.AssertExpectations(t)
}

func TestMessageService_SendMessage_LockedDuringDispute(t *testing.T) {
	svc, messages, collabs, apps, _ := newMessageService()
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{ID: uuid.New(), BrandID: brandID, Status: models.CollabStatusDisputed}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	apps.On("GetAcceptedByCollaboration", ctx, collab.ID).
		Return(&models.Application{InfluencerID: uuid.New()}, nil)

	_, err := svc.SendMessage(ctx, collab.ID, brandID, "ну что там?")
	assert.True(t, apperror.IsInvalidState(err))
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMessageService_SendMessage_NoAcceptedApplication(t *testing.T) {
	svc, messages, collabs, apps, _ := newMessageService()
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{ID: uuid.New(), BrandID: brandID, Status: models.CollabStatusActive}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	apps.On("GetAcceptedByCollaboration", ctx, collab.ID).Return(nil, repository.ErrApplicationNotFound)

	_, err := svc.SendMessage(ctx, collab.ID, brandID, "привет")
	assert.True(t, apperror.IsInvalidState(err))
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMessageService_SendMessage_Outsider(t *testing.T) {
	svc, _, collabs, apps, _ := newMessageService()
	ctx := context.Background()

	collab := &models.Collaboration{ID: uuid.New(), BrandID: uuid.New(), Status: models.CollabStatusInProgress}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	apps.On("GetAcceptedByCollaboration", ctx, collab.ID).
		Return(&models.Application{InfluencerID: uuid.New()}, nil)

	_, err := svc.SendMessage(ctx, collab.ID, uuid.New(), "привет")
	assert.True(t, apperror.IsForbidden(err))
}

// Во время спора история остаётся читаемой, но тред помечен заблокированным.
func TestMessageService_GetThread_DisputedReadableButLocked(t *testing.T) {
	svc, messages, collabs, apps, _ := newMessageService()
	ctx := context.Background()

	brandID := uuid.New()
	influencerID := uuid.New()
	collab := &models.Collaboration{ID: uuid.New(), BrandID: brandID, Status: models.CollabStatusDisputed}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	apps.On("GetAcceptedByCollaboration", ctx, collab.ID).
		Return(&models.Application{InfluencerID: influencerID}, nil)
	messages.On("ListByCollaboration", ctx, collab.ID, 50, 0).
		Return([]models.Message{{CollaborationID: collab.ID, SenderID: brandID}}, nil)

	thread, err := svc.GetThread(ctx, collab.ID, influencerID, 50, 0)
	assert.NoError(t, err)
	assert.True(t, thread.IsLocked)
	assert.Len(t, thread.Messages, 1)
}

func TestMessageService_GetThread_EmptyHistory(t *testing.T) {
	svc, messages, collabs, apps, _ := newMessageService()
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{ID: uuid.New(), BrandID: brandID, Status: models.CollabStatusInProgress}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	apps.On("GetAcceptedByCollaboration", ctx, collab.ID).
		Return(&models.Application{InfluencerID: uuid.New()}, nil)
	messages.On("ListByCollaboration", ctx, collab.ID, 50, 0).Return(nil, nil)

	thread, err := svc.GetThread(ctx, collab.ID, brandID, 50, 0)
	assert.NoError(t, err)
	assert.False(t, thread.IsLocked)
	assert.NotNil(t, thread.Messages)
	assert.Empty(t, thread.Messages)
}
