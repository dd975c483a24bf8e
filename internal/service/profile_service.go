package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/colaboreaza/collab-backend/internal/models"
	"github.com/colaboreaza/collab-backend/internal/pkg/apperror"
	"github.com/colaboreaza/collab-backend/internal/repository"
)

// ProfileService управляет профилями брендов и инфлюенсеров.
type ProfileService struct {
	profiles *repository.ProfileRepository
	users    *repository.UserRepository
}

// NewProfileService создаёт сервис профилей.
func NewProfileService(profiles *repository.ProfileRepository, users *repository.UserRepository) *ProfileService {
	return &ProfileService{profiles: profiles, users: users}
}

// UpsertBrandProfile создаёт или обновляет профиль бренда.
func (s *ProfileService) UpsertBrandProfile(ctx context.Context, userID uuid.UUID, profile *models.BrandProfile) (*models.BrandProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleBrand {
		return nil, apperror.New(apperror.ErrCodeForbidden, "профиль бренда доступен только брендам")
	}
	if profile.CompanyName == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название компании обязательно")
	}

	profile.UserID = userID
	if err := s.profiles.UpsertBrandProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetBrandProfile возвращает профиль бренда.
func (s *ProfileService) GetBrandProfile(ctx context.Context, userID uuid.UUID) (*models.BrandProfile, error) {
	profile, err := s.profiles.GetBrandProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "профиль бренда не найден")
		}
		return nil, err
	}
	return profile, nil
}

// UpsertInfluencerProfile создаёт или обновляет профиль инфлюенсера.
func (s *ProfileService) UpsertInfluencerProfile(ctx context.Context, userID uuid.UUID, profile *models.InfluencerProfile) (*models.InfluencerProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleInfluencer {
		return nil, apperror.New(apperror.ErrCodeForbidden, "профиль инфлюенсера доступен только инфлюенсерам")
	}
	if profile.DisplayName == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "отображаемое имя обязательно")
	}

	profile.UserID = userID
	if err := s.profiles.UpsertInfluencerProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetInfluencerProfile возвращает профиль инфлюенсера.
func (s *ProfileService) GetInfluencerProfile(ctx context.Context, userID uuid.UUID) (*models.InfluencerProfile, error) {
	profile, err := s.profiles.GetInfluencerProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "профиль инфлюенсера не найден")
		}
		return nil, err
	}
	return profile, nil
}

// GetInfluencerByUsername возвращает публичный профиль инфлюенсера.
func (s *ProfileService) GetInfluencerByUsername(ctx context.Context, username string) (*models.InfluencerProfile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != models.RoleInfluencer {
		return nil, apperror.ErrUserNotFound
	}
	return s.GetInfluencerProfile(ctx, user.ID)
}

// SearchInfluencers возвращает каталог инфлюенсеров с фильтрами.
func (s *ProfileService) SearchInfluencers(ctx context.Context, params repository.InfluencerSearchParams) ([]*models.InfluencerSearchResult, error) {
	return s.profiles.SearchInfluencers(ctx, params)
}

// SetPro включает или выключает PRO-подписку пользователя. Админская операция.
func (s *ProfileService) SetPro(ctx context.Context, userID uuid.UUID, isPro bool, expiresAt *time.Time) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}
	return s.users.SetPro(ctx, userID, isPro, expiresAt)
}
