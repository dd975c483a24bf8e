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

type mockCollaborationRepo struct {
	mock.Mock
}

func (m *mockCollaborationRepo) Create(ctx context.Context, collab *models.Collaboration) error {
	args := m.Called(ctx, collab)
	return args.Error(0)
}

func (m *mockCollaborationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Collaboration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collaboration), args.Error(1)
}

func (m *mockCollaborationRepo) List(ctx context.Context, params repository.CollaborationListParams) ([]models.Collaboration, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collaboration), args.Error(1)
}

func (m *mockCollaborationRepo) ListByBrand(ctx context.Context, brandID uuid.UUID, limit, offset int) ([]models.Collaboration, error) {
	args := m.Called(ctx, brandID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collaboration), args.Error(1)
}

func (m *mockCollaborationRepo) CountActiveByBrand(ctx context.Context, brandID uuid.UUID) (int, error) {
	args := m.Called(ctx, brandID)
	return args.Int(0), args.Error(1)
}

func (m *mockCollaborationRepo) Update(ctx context.Context, collab *models.Collaboration) error {
	args := m.Called(ctx, collab)
	return args.Error(0)
}

func (m *mockCollaborationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string) error {
	args := m.Called(ctx, id, expectedStatus, newStatus)
	return args.Error(0)
}

func (m *mockCollaborationRepo) UpdateStatusAndPayment(ctx context.Context, id uuid.UUID, expectedStatus, newStatus, newPaymentStatus string) error {
	args := m.Called(ctx, id, expectedStatus, newStatus, newPaymentStatus)
	return args.Error(0)
}

type mockApplicationRepo struct {
	mock.Mock
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationRepo) GetAcceptedByCollaboration(ctx context.Context, collabID uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, collabID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationRepo) ListByInfluencer(ctx context.Context, influencerID uuid.UUID, limit, offset int) ([]models.Application, error) {
	args := m.Called(ctx, influencerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Application), args.Error(1)
}

func (m *mockApplicationRepo) ListByCollaboration(ctx context.Context, collabID uuid.UUID) ([]models.Application, error) {
	args := m.Called(ctx, collabID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Application), args.Error(1)
}

func (m *mockApplicationRepo) Accept(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockApplicationRepo) Reject(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUserSource struct {
	mock.Mock
}

func (m *mockUserSource) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockProfileSource struct {
	mock.Mock
}

func (m *mockProfileSource) GetInfluencerProfile(ctx context.Context, userID uuid.UUID) (*models.InfluencerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InfluencerProfile), args.Error(1)
}

func newCollaborationService(freeLimit int) (*CollaborationService, *mockCollaborationRepo, *mockApplicationRepo, *mockEscrowRepo, *mockDisputeRepo, *mockUserSource) {
	collabs := new(mockCollaborationRepo)
	apps := new(mockApplicationRepo)
	escrows := new(mockEscrowRepo)
	cancellations := new(mockDisputeRepo)
	users := new(mockUserSource)
	profiles := new(mockProfileSource)
	svc := NewCollaborationService(collabs, apps, escrows, cancellations, users, profiles, freeLimit)
	return svc, collabs, apps, escrows, cancellations, users
}

func TestCollaborationService_Create_FreeTierQuota(t *testing.T) {
	svc, collabs, _, _, _, users := newCollaborationService(3)
	ctx := context.Background()

	brandID := uuid.New()
	users.On("GetByID", ctx, brandID).Return(&models.User{ID: brandID, Role: models.RoleBrand}, nil)
	collabs.On("CountActiveByBrand", ctx, brandID).Return(3, nil)

	_, err := svc.Create(ctx, brandID, CreateInput{
		Title:      "Обзор продукта",
		CollabType: models.CollabTypePaid,
	})
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeQuotaExceeded, appErr.Code)
	collabs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCollaborationService_Create_ProBypassesQuota(t *testing.T) {
	svc, collabs, _, _, _, users := newCollaborationService(3)
	ctx := context.Background()

	brandID := uuid.New()
	users.On("GetByID", ctx, brandID).Return(&models.User{ID: brandID, Role: models.RoleBrand, IsPro: true}, nil)
	collabs.On("Create", ctx, mock.MatchedBy(func(c *models.Collaboration) bool {
		return c.BrandID == brandID &&
			c.Status == models.CollabStatusActive &&
			c.PaymentStatus == models.PaymentStatusAwaitingEscrow &&
			c.CreatorsNeeded == 1
	})).Return(nil)

	_, err := svc.Create(ctx, brandID, CreateInput{
		Title:      "Обзор продукта",
		CollabType: models.CollabTypePaid,
	})
	assert.NoError(t, err)
	collabs.AssertNotCalled(t, "CountActiveByBrand", mock.Anything, mock.Anything)
	collabs.AssertExpectations(t)
}

func TestCollaborationService_Cancel_ActiveRefundsInstantly(t *testing.T) {
	svc, collabs, _, escrows, cancellations, _ := newCollaborationService(3)
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{
		ID:         uuid.New(),
		BrandID:    brandID,
		CollabType: models.CollabTypePaid,
		Status:     models.CollabStatusActive,
	}
	escrow := &models.Escrow{ID: uuid.New(), CollaborationID: collab.ID, Status: models.EscrowStatusSecured}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	collabs.On("UpdateStatus", ctx, collab.ID, models.CollabStatusActive, models.CollabStatusCancelled).Return(nil)
	escrows.On("GetByCollaborationID", ctx, collab.ID).Return(escrow, nil)
	escrows.On("Refund", ctx, escrow.ID, []string{models.EscrowStatusPending, models.EscrowStatusSecured}).
		Return(&models.Escrow{ID: escrow.ID, Status: models.EscrowStatusRefunded}, nil)
	cancellations.On("CreateCancellation", ctx, mock.MatchedBy(func(r *models.CancellationRequest) bool {
		return r.Status == models.CancellationStatusAutoApproved &&
			r.Resolution != nil && *r.Resolution == models.CancellationResolutionFullRefund
	})).Return(nil)

	got, req, err := svc.Cancel(ctx, collab.ID, brandID, "передумали", nil)
	assert.NoError(t, err)
	assert.Equal(t, models.CollabStatusCancelled, got.Status)
	assert.Equal(t, models.PaymentStatusRefunded, got.PaymentStatus)
	assert.Equal(t, models.CancellationStatusAutoApproved, req.Status)
	cancellations.AssertExpectations(t)
}

// Параллельный переход мог уже закрыть escrow: отмена проходит,
// но payment_status не объявляется refunded без фактического возврата.
func TestCollaborationService_Cancel_EscrowAlreadyClosed(t *testing.T) {
	svc, collabs, _, escrows, cancellations, _ := newCollaborationService(3)
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{
		ID:            uuid.New(),
		BrandID:       brandID,
		CollabType:    models.CollabTypePaid,
		Status:        models.CollabStatusActive,
		PaymentStatus: models.PaymentStatusAwaitingEscrow,
	}
	escrow := &models.Escrow{ID: uuid.New(), CollaborationID: collab.ID}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	collabs.On("UpdateStatus", ctx, collab.ID, models.CollabStatusActive, models.CollabStatusCancelled).Return(nil)
	escrows.On("GetByCollaborationID", ctx, collab.ID).Return(escrow, nil)
	escrows.On("Refund", ctx, escrow.ID, mock.Anything).Return(nil, repository.ErrStatusConflict)
	cancellations.On("CreateCancellation", ctx, mock.Anything).Return(nil)

	got, _, err := svc.Cancel(ctx, collab.ID, brandID, "передумали", nil)
	assert.NoError(t, err)
	assert.NotEqual(t, models.PaymentStatusRefunded, got.PaymentStatus)
}

func TestCollaborationService_Cancel_InProgressGoesToReview(t *testing.T) {
	svc, collabs, _, escrows, cancellations, _ := newCollaborationService(3)
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{
		ID:         uuid.New(),
		BrandID:    brandID,
		CollabType: models.CollabTypePaid,
		Status:     models.CollabStatusInProgress,
	}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	collabs.On("UpdateStatus", ctx, collab.ID, models.CollabStatusInProgress, models.CollabStatusCancelRequestedByBrand).Return(nil)
	cancellations.On("CreateCancellation", ctx, mock.MatchedBy(func(r *models.CancellationRequest) bool {
		return r.Status == models.CancellationStatusPendingReview &&
			r.RequesterRole == models.RoleBrand &&
			r.Resolution == nil
	})).Return(nil)

	got, req, err := svc.Cancel(ctx, collab.ID, brandID, "сроки сорваны", nil)
	assert.NoError(t, err)
	assert.Equal(t, models.CollabStatusCancelRequestedByBrand, got.Status)
	assert.Equal(t, models.CancellationStatusPendingReview, req.Status)
	escrows.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
	cancellations.AssertExpectations(t)
}

func TestCollaborationService_Cancel_CompletedPendingReleaseRejected(t *testing.T) {
	svc, collabs, _, _, cancellations, _ := newCollaborationService(3)
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{
		ID:      uuid.New(),
		BrandID: brandID,
		Status:  models.CollabStatusCompletedPendingRelease,
	}
	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)

	_, _, err := svc.Cancel(ctx, collab.ID, brandID, "передумали", nil)
	assert.True(t, apperror.IsInvalidState(err))
	cancellations.AssertNotCalled(t, "CreateCancellation", mock.Anything, mock.Anything)
}

func TestCollaborationService_DecideApplication_SecondAcceptConflict(t *testing.T) {
	svc, collabs, apps, _, _, _ := newCollaborationService(3)
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{ID: uuid.New(), BrandID: brandID, Status: models.CollabStatusInProgress}
	app := &models.Application{ID: uuid.New(), CollaborationID: collab.ID, Status: models.ApplicationStatusPending}

	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	apps.On("GetAcceptedByCollaboration", ctx, collab.ID).
		Return(&models.Application{ID: uuid.New(), Status: models.ApplicationStatusAccepted}, nil)

	_, err := svc.DecideApplication(ctx, app.ID, brandID, models.ApplicationStatusAccepted)
	assert.True(t, apperror.IsConflict(err))
	apps.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything)
}

func TestCollaborationService_DecideApplication_AcceptStartsWork(t *testing.T) {
	svc, collabs, apps, _, _, _ := newCollaborationService(3)
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{ID: uuid.New(), BrandID: brandID, Status: models.CollabStatusActive}
	app := &models.Application{ID: uuid.New(), CollaborationID: collab.ID, Status: models.ApplicationStatusPending}

	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	apps.On("GetAcceptedByCollaboration", ctx, collab.ID).Return(nil, repository.ErrApplicationNotFound)
	apps.On("Accept", ctx, app.ID).Return(nil)
	collabs.On("UpdateStatus", ctx, collab.ID, models.CollabStatusActive, models.CollabStatusInProgress).Return(nil)

	got, err := svc.DecideApplication(ctx, app.ID, brandID, models.ApplicationStatusAccepted)
	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, got.Status)
	collabs.AssertExpectations(t)
}
