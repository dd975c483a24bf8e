package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
)

type mockDisputeRepo struct {
	mock.Mock
}

func (m *mockDisputeRepo) CreateDispute(ctx context.Context, dispute *models.Dispute) error {
	args := m.Called(ctx, dispute)
	return args.Error(0)
}

func (m *mockDisputeRepo) GetDisputeByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListDisputesByCollaboration(ctx context.Context, collabID uuid.UUID) ([]models.Dispute, error) {
	args := m.Called(ctx, collabID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListDisputes(ctx context.Context, status string, limit, offset int) ([]models.Dispute, int, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Dispute), args.Int(1), args.Error(2)
}

func (m *mockDisputeRepo) ResolveDispute(ctx context.Context, id uuid.UUID, adminID uuid.UUID, resolution string, notes *string) (*models.Dispute, error) {
	args := m.Called(ctx, id, adminID, resolution, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) CreateCancellation(ctx context.Context, req *models.CancellationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockDisputeRepo) GetCancellationByID(ctx context.Context, id uuid.UUID) (*models.CancellationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CancellationRequest), args.Error(1)
}

func (m *mockDisputeRepo) ListCancellationsByCollaboration(ctx context.Context, collabID uuid.UUID) ([]models.CancellationRequest, error) {
	args := m.Called(ctx, collabID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CancellationRequest), args.Error(1)
}

func (m *mockDisputeRepo) ListCancellations(ctx context.Context, status string, limit, offset int) ([]models.CancellationRequest, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CancellationRequest), args.Error(1)
}

func (m *mockDisputeRepo) ResolveCancellation(ctx context.Context, id uuid.UUID, adminID uuid.UUID, resolution string, notes *string) (*models.CancellationRequest, error) {
	args := m.Called(ctx, id, adminID, resolution, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CancellationRequest), args.Error(1)
}

type mockDisputeCollabRepo struct {
	mock.Mock
}

func (m *mockDisputeCollabRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Collaboration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collaboration), args.Error(1)
}

func (m *mockDisputeCollabRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockAcceptedAppSource struct {
	mock.Mock
}

func (m *mockAcceptedAppSource) GetAcceptedByCollaboration(ctx context.Context, collabID uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, collabID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func newDisputeService() (*DisputeService, *mockDisputeRepo, *mockEscrowRepo, *mockDisputeCollabRepo, *mockAcceptedAppSource) {
	disputes := new(mockDisputeRepo)
	escrows := new(mockEscrowRepo)
	collabs := new(mockDisputeCollabRepo)
	apps := new(mockAcceptedAppSource)
	return NewDisputeService(disputes, escrows, collabs, apps), disputes, escrows, collabs, apps
}

func strPtr(v string) *string {
	return &v
}

func TestSplitHalf(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		payout float64
		refund float64
	}{
		{"ровная сумма", 500, 250, 250},
		{"нечётный цент", 100.01, 50, 50.01},
		{"один цент", 0.01, 0, 0.01},
		{"три цента", 0.03, 0.02, 0.01},
		{"крупная сумма", 99999.99, 50000, 49999.99},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payout, refund := SplitHalf(tc.total)
			assert.InDelta(t, tc.payout, payout, 1e-9)
			assert.InDelta(t, tc.refund, refund, 1e-9)
			assert.InDelta(t, tc.total, payout+refund, 1e-9)
		})
	}
}

func TestDisputeService_CreateDispute_Success(t *testing.T) {
	svc, disputes, escrows, collabs, _ := newDisputeService()
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{
		ID:      uuid.New(),
		BrandID: brandID,
		Status:  models.CollabStatusCompletedPendingRelease,
	}
	escrow := &models.Escrow{ID: uuid.New(), CollaborationID: collab.ID, Status: models.EscrowStatusSecured}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	escrows.On("GetByCollaborationID", ctx, collab.ID).Return(escrow, nil)
	disputes.On("CreateDispute", ctx, mock.MatchedBy(func(d *models.Dispute) bool {
		return d.CollaborationID == collab.ID &&
			d.EscrowID == escrow.ID &&
			d.OpenedBy == brandID &&
			d.OpenerRole == models.RoleBrand
	})).Return(nil)

	dispute, err := svc.CreateDispute(ctx, collab.ID, brandID, "работа не соответствует брифу", nil)
	assert.NoError(t, err)
	assert.Equal(t, escrow.ID, dispute.EscrowID)
	disputes.AssertExpectations(t)
}

func TestDisputeService_CreateDispute_WrongStatus(t *testing.T) {
	svc, disputes, _, collabs, _ := newDisputeService()
	ctx := context.Background()

	brandID := uuid.New()
	collab := &models.Collaboration{
		ID:      uuid.New(),
		BrandID: brandID,
		Status:  models.CollabStatusInProgress,
	}
	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)

	_, err := svc.CreateDispute(ctx, collab.ID, brandID, "работа не соответствует брифу", nil)
	assert.True(t, apperror.IsInvalidState(err))
	disputes.AssertNotCalled(t, "CreateDispute", mock.Anything, mock.Anything)
}

func TestDisputeService_CreateDispute_NotParticipant(t *testing.T) {
	svc, _, _, collabs, apps := newDisputeService()
	ctx := context.Background()

	collab := &models.Collaboration{
		ID:      uuid.New(),
		BrandID: uuid.New(),
		Status:  models.CollabStatusCompletedPendingRelease,
	}
	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	apps.On("GetAcceptedByCollaboration", ctx, collab.ID).
		Return(&models.Application{InfluencerID: uuid.New()}, nil)

	_, err := svc.CreateDispute(ctx, collab.ID, uuid.New(), "работа не соответствует брифу", nil)
	assert.True(t, apperror.IsForbidden(err))
}

func TestDisputeService_ResolveDispute_Release(t *testing.T) {
	svc, disputes, escrows, _, _ := newDisputeService()
	ctx := context.Background()

	adminID := uuid.New()
	dispute := &models.Dispute{
		ID:       uuid.New(),
		EscrowID: uuid.New(),
		Status:   models.DisputeStatusOpen,
	}
	resolved := &models.Dispute{ID: dispute.ID, Status: models.DisputeStatusResolved}

	disputes.On("GetDisputeByID", ctx, dispute.ID).Return(dispute, nil)
	escrows.On("Release", ctx, dispute.EscrowID, models.EscrowStatusDisputed).
		Return(&models.Escrow{ID: dispute.EscrowID, Status: models.EscrowStatusReleased},
			&models.CommissionRecord{EscrowID: dispute.EscrowID}, nil)
	disputes.On("ResolveDispute", ctx, dispute.ID, adminID, models.DisputeResolutionRelease, (*string)(nil)).
		Return(resolved, nil)

	got, err := svc.ResolveDispute(ctx, dispute.ID, adminID, models.DisputeResolutionRelease, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, got.Status)
	disputes.AssertExpectations(t)
	escrows.AssertExpectations(t)
}

// Обрыв на денежном переходе не должен закрывать спор: открытая запись
// позволяет повторить рассмотрение, средства не зависают в disputed.
func TestDisputeService_ResolveDispute_EscrowFailureKeepsDisputeOpen(t *testing.T) {
	svc, disputes, escrows, _, _ := newDisputeService()
	ctx := context.Background()

	dispute := &models.Dispute{
		ID:       uuid.New(),
		EscrowID: uuid.New(),
		Status:   models.DisputeStatusOpen,
	}
	disputes.On("GetDisputeByID", ctx, dispute.ID).Return(dispute, nil)
	escrows.On("Release", ctx, dispute.EscrowID, models.EscrowStatusDisputed).
		Return(nil, nil, errors.New("escrow repository: connection reset"))

	_, err := svc.ResolveDispute(ctx, dispute.ID, uuid.New(), models.DisputeResolutionRelease, nil)
	assert.Error(t, err)
	disputes.AssertNotCalled(t, "ResolveDispute",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_ResolveDispute_AlreadyResolved(t *testing.T) {
	svc, disputes, escrows, _, _ := newDisputeService()
	ctx := context.Background()

	dispute := &models.Dispute{
		ID:       uuid.New(),
		EscrowID: uuid.New(),
		Status:   models.DisputeStatusResolved,
	}
	disputes.On("GetDisputeByID", ctx, dispute.ID).Return(dispute, nil)

	_, err := svc.ResolveDispute(ctx, dispute.ID, uuid.New(), models.DisputeResolutionRefund, nil)
	assert.True(t, apperror.IsConflict(err))
	escrows.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_ResolveDispute_Split(t *testing.T) {
	svc, disputes, escrows, _, _ := newDisputeService()
	ctx := context.Background()

	adminID := uuid.New()
	dispute := &models.Dispute{
		ID:              uuid.New(),
		CollaborationID: uuid.New(),
		EscrowID:        uuid.New(),
		Status:          models.DisputeStatusOpen,
	}
	escrow := &models.Escrow{ID: dispute.EscrowID, TotalAmount: 100.01, Status: models.EscrowStatusDisputed}
	resolved := &models.Dispute{ID: dispute.ID, Status: models.DisputeStatusResolved}

	disputes.On("GetDisputeByID", ctx, dispute.ID).Return(dispute, nil)
	escrows.On("GetByID", ctx, dispute.EscrowID).Return(escrow, nil)
	escrows.On("CloseSplit", ctx, dispute.EscrowID, models.EscrowStatusDisputed,
		50.0, 50.01, models.CollabStatusCompleted, models.PaymentStatusReleased).
		Return(&models.Escrow{ID: dispute.EscrowID}, &models.CommissionRecord{}, nil)
	disputes.On("ResolveDispute", ctx, dispute.ID, adminID, models.DisputeResolutionSplit, (*string)(nil)).
		Return(resolved, nil)

	_, err := svc.ResolveDispute(ctx, dispute.ID, adminID, models.DisputeResolutionSplit, nil)
	assert.NoError(t, err)
	escrows.AssertExpectations(t)
}

func TestDisputeService_ResolveDispute_UnknownResolution(t *testing.T) {
	svc, _, _, _, _ := newDisputeService()

	_, err := svc.ResolveDispute(context.Background(), uuid.New(), uuid.New(), "annul", nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestDisputeService_ResolveCancellation_FullRefund(t *testing.T) {
	svc, disputes, escrows, collabs, _ := newDisputeService()
	ctx := context.Background()

	adminID := uuid.New()
	req := &models.CancellationRequest{
		ID:              uuid.New(),
		CollaborationID: uuid.New(),
		Status:          models.CancellationStatusPendingReview,
	}
	escrow := &models.Escrow{ID: uuid.New(), CollaborationID: req.CollaborationID, Status: models.EscrowStatusSecured}
	resolved := &models.CancellationRequest{ID: req.ID, Status: models.CancellationStatusResolved}

	disputes.On("GetCancellationByID", ctx, req.ID).Return(req, nil)
	escrows.On("GetByCollaborationID", ctx, req.CollaborationID).Return(escrow, nil)
	escrows.On("Refund", ctx, escrow.ID, []string{models.EscrowStatusPending, models.EscrowStatusSecured}).
		Return(&models.Escrow{ID: escrow.ID, Status: models.EscrowStatusRefunded}, nil)
	collabs.On("SetStatus", ctx, req.CollaborationID, models.CollabStatusCancelled).Return(nil)
	disputes.On("ResolveCancellation", ctx, req.ID, adminID, models.CancellationResolutionFullRefund,
		strPtr("вина бренда")).Return(resolved, nil)

	got, err := svc.ResolveCancellation(ctx, req.ID, adminID,
		models.CancellationResolutionFullRefund, strPtr("вина бренда"))
	assert.NoError(t, err)
	assert.Equal(t, models.CancellationStatusResolved, got.Status)
	escrows.AssertExpectations(t)
	collabs.AssertExpectations(t)
}

func TestDisputeService_ResolveCancellation_EscrowFailureKeepsRequestOpen(t *testing.T) {
	svc, disputes, escrows, _, _ := newDisputeService()
	ctx := context.Background()

	req := &models.CancellationRequest{
		ID:              uuid.New(),
		CollaborationID: uuid.New(),
		Status:          models.CancellationStatusPendingReview,
	}
	escrow := &models.Escrow{ID: uuid.New(), CollaborationID: req.CollaborationID, Status: models.EscrowStatusSecured}

	disputes.On("GetCancellationByID", ctx, req.ID).Return(req, nil)
	escrows.On("GetByCollaborationID", ctx, req.CollaborationID).Return(escrow, nil)
	escrows.On("Refund", ctx, escrow.ID, mock.Anything).
		Return(nil, errors.New("escrow repository: connection reset"))

	_, err := svc.ResolveCancellation(ctx, req.ID, uuid.New(),
		models.CancellationResolutionFullRefund, nil)
	assert.Error(t, err)
	disputes.AssertNotCalled(t, "ResolveCancellation",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_ListCancellationsByCollaboration(t *testing.T) {
	svc, disputes, _, collabs, apps := newDisputeService()
	ctx := context.Background()

	brandID := uuid.New()
	influencerID := uuid.New()
	collab := &models.Collaboration{ID: uuid.New(), BrandID: brandID, Status: models.CollabStatusInProgress}

	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	apps.On("GetAcceptedByCollaboration", ctx, collab.ID).
		Return(&models.Application{InfluencerID: influencerID}, nil)
	disputes.On("ListCancellationsByCollaboration", ctx, collab.ID).
		Return([]models.CancellationRequest{{CollaborationID: collab.ID}}, nil)

	reqs, err := svc.ListCancellationsByCollaboration(ctx, collab.ID, influencerID)
	assert.NoError(t, err)
	assert.Len(t, reqs, 1)

	_, err = svc.ListCancellationsByCollaboration(ctx, collab.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))
}
