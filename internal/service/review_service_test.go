package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Upsert(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]models.Review, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListRevealedByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]models.Application, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Application), args.Error(1)
}

func (m *mockReviewRepo) RevealExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockApplicationSource struct {
	mock.Mock
}

func (m *mockApplicationSource) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func newReviewService(revealTimeout time.Duration) (*ReviewService, *mockReviewRepo, *mockApplicationSource, *mockCollabRepo) {
	reviews := new(mockReviewRepo)
	apps := new(mockApplicationSource)
	collabs := new(mockCollabRepo)
	return NewReviewService(reviews, apps, collabs, revealTimeout), reviews, apps, collabs
}

func TestReviewService_SubmitReview_Success(t *testing.T) {
	svc, reviews, apps, collabs := newReviewService(14 * 24 * time.Hour)
	ctx := context.Background()

	brandID := uuid.New()
	influencerID := uuid.New()
	app := &models.Application{
		ID:              uuid.New(),
		CollaborationID: uuid.New(),
		InfluencerID:    influencerID,
		Status:          models.ApplicationStatusAccepted,
	}
	collab := &models.Collaboration{
		ID:            app.CollaborationID,
		BrandID:       brandID,
		Status:        models.CollabStatusCompleted,
		PaymentStatus: models.PaymentStatusReleased,
	}

	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	collabs.On("GetByID", ctx, collab.ID).Return(collab, nil)
	reviews.On("Upsert", ctx, mock.MatchedBy(func(r *models.Review) bool {
		return r.ApplicationID == app.ID &&
			r.ReviewerID == brandID &&
			r.ReviewedID == influencerID &&
			r.ReviewerRole == models.RoleBrand &&
			r.Rating == 5
	})).Return(nil)

	review, err := svc.SubmitReview(ctx, app.ID, brandID, 5, strPtr("отличная работа"))
	assert.NoError(t, err)
	assert.Equal(t, influencerID, review.ReviewedID)
	reviews.AssertExpectations(t)
}

func TestReviewService_SubmitReview_RatingOutOfRange(t *testing.T) {
	svc, reviews, _, _ := newReviewService(14 * 24 * time.Hour)

	_, err := svc.SubmitReview(context.Background(), uuid.New(), uuid.New(), 6, nil)
	assert.True(t, apperror.IsValidation(err))
	reviews.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestReviewService_SubmitReview_CollabNotCompleted(t *testing.T) {
	svc, reviews, apps, collabs := newReviewService(14 * 24 * time.Hour)
	ctx := context.Background()

	brandID := uuid.New()
	app := &models.Application{
		ID:              uuid.New(),
		CollaborationID: uuid.New(),
		InfluencerID:    uuid.New(),
		Status:          models.ApplicationStatusAccepted,
	}
	collabs.On("GetByID", ctx, app.CollaborationID).Return(&models.Collaboration{
		ID:      app.CollaborationID,
		BrandID: brandID,
		Status:  models.CollabStatusInProgress,
	}, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)

	_, err := svc.SubmitReview(ctx, app.ID, brandID, 4, nil)
	assert.True(t, apperror.IsInvalidState(err))
	reviews.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestReviewService_SubmitReview_PaymentNotReleased(t *testing.T) {
	svc, reviews, apps, collabs := newReviewService(14 * 24 * time.Hour)
	ctx := context.Background()

	brandID := uuid.New()
	app := &models.Application{
		ID:              uuid.New(),
		CollaborationID: uuid.New(),
		InfluencerID:    uuid.New(),
		Status:          models.ApplicationStatusAccepted,
	}
	collabs.On("GetByID", ctx, app.CollaborationID).Return(&models.Collaboration{
		ID:            app.CollaborationID,
		BrandID:       brandID,
		Status:        models.CollabStatusCompletedPendingRelease,
		PaymentStatus: models.PaymentStatusCompletedPendingRelease,
	}, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)

	_, err := svc.SubmitReview(ctx, app.ID, brandID, 4, nil)
	assert.True(t, apperror.IsInvalidState(err))
	reviews.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestReviewService_SubmitReview_NotParticipant(t *testing.T) {
	svc, _, apps, collabs := newReviewService(14 * 24 * time.Hour)
	ctx := context.Background()

	app := &models.Application{
		ID:              uuid.New(),
		CollaborationID: uuid.New(),
		InfluencerID:    uuid.New(),
		Status:          models.ApplicationStatusAccepted,
	}
	collabs.On("GetByID", ctx, app.CollaborationID).Return(&models.Collaboration{
		ID:            app.CollaborationID,
		BrandID:       uuid.New(),
		Status:        models.CollabStatusCompleted,
		PaymentStatus: models.PaymentStatusReleased,
	}, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)

	_, err := svc.SubmitReview(ctx, app.ID, uuid.New(), 4, nil)
	assert.True(t, apperror.IsForbidden(err))
}

// Нераскрытый отзыв второй стороны не виден, свой нераскрытый виден всегда.
func TestReviewService_ListByApplication_HidesUnrevealedCounterpart(t *testing.T) {
	timeout := 14 * 24 * time.Hour
	svc, reviews, apps, collabs := newReviewService(timeout)
	ctx := context.Background()

	brandID := uuid.New()
	influencerID := uuid.New()
	app := &models.Application{
		ID:              uuid.New(),
		CollaborationID: uuid.New(),
		InfluencerID:    influencerID,
	}
	collabs.On("GetByID", ctx, app.CollaborationID).Return(&models.Collaboration{
		ID:      app.CollaborationID,
		BrandID: brandID,
	}, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)

	reviews.On("RevealExpired", ctx, mock.MatchedBy(func(before time.Time) bool {
		want := time.Now().Add(-timeout)
		return before.After(want.Add(-time.Minute)) && before.Before(want.Add(time.Minute))
	})).Return(int64(0), nil)
	reviews.On("ListByApplication", ctx, app.ID).Return([]models.Review{
		{ApplicationID: app.ID, ReviewerID: brandID, IsRevealed: false},
		{ApplicationID: app.ID, ReviewerID: influencerID, IsRevealed: false},
	}, nil)

	visible, err := svc.ListByApplication(ctx, app.ID, brandID)
	assert.NoError(t, err)
	assert.Len(t, visible, 1)
	assert.Equal(t, brandID, visible[0].ReviewerID)
	reviews.AssertExpectations(t)
}

func TestReviewService_ListByApplication_RevealedPairVisibleToBoth(t *testing.T) {
	svc, reviews, apps, collabs := newReviewService(14 * 24 * time.Hour)
	ctx := context.Background()

	brandID := uuid.New()
	influencerID := uuid.New()
	app := &models.Application{
		ID:              uuid.New(),
		CollaborationID: uuid.New(),
		InfluencerID:    influencerID,
	}
	collabs.On("GetByID", ctx, app.CollaborationID).Return(&models.Collaboration{
		ID:      app.CollaborationID,
		BrandID: brandID,
	}, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	reviews.On("RevealExpired", ctx, mock.Anything).Return(int64(2), nil)
	reviews.On("ListByApplication", ctx, app.ID).Return([]models.Review{
		{ApplicationID: app.ID, ReviewerID: brandID, IsRevealed: true},
		{ApplicationID: app.ID, ReviewerID: influencerID, IsRevealed: true},
	}, nil)

	visible, err := svc.ListByApplication(ctx, app.ID, influencerID)
	assert.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestReviewService_ListByApplication_Outsider(t *testing.T) {
	svc, reviews, apps, collabs := newReviewService(14 * 24 * time.Hour)
	ctx := context.Background()

	app := &models.Application{
		ID:              uuid.New(),
		CollaborationID: uuid.New(),
		InfluencerID:    uuid.New(),
	}
	collabs.On("GetByID", ctx, app.CollaborationID).Return(&models.Collaboration{
		ID:      app.CollaborationID,
		BrandID: uuid.New(),
	}, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	reviews.On("RevealExpired", ctx, mock.Anything).Return(int64(0), nil)

	_, err := svc.ListByApplication(ctx, app.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))
	reviews.AssertNotCalled(t, "ListByApplication", mock.Anything, mock.Anything)
}

func TestReviewService_ListForUser_SweepsBeforeReading(t *testing.T) {
	svc, reviews, _, _ := newReviewService(14 * 24 * time.Hour)
	ctx := context.Background()

	userID := uuid.New()
	reviews.On("RevealExpired", ctx, mock.Anything).Return(int64(1), nil)
	reviews.On("ListRevealedByUser", ctx, userID, 20, 0).
		Return([]models.Review{{ReviewedID: userID, IsRevealed: true}}, nil)

	got, err := svc.ListForUser(ctx, userID, 20, 0)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	reviews.AssertExpectations(t)
}
