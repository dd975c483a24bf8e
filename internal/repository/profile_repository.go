package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colaboreaza/collab-backend/internal/models"
)

// ErrProfileNotFound возвращается, когда профиль отсутствует.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository работает с таблицами brand_profiles и influencer_profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository создаёт экземпляр репозитория.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// UpsertBrandProfile создаёт или обновляет профиль бренда.
func (r *ProfileRepository) UpsertBrandProfile(ctx context.Context, profile *models.BrandProfile) error {
	query := `
		INSERT INTO brand_profiles (user_id, company_name, description, industry, website, logo_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET company_name = EXCLUDED.company_name,
			description = EXCLUDED.description,
			industry = EXCLUDED.industry,
			website = EXCLUDED.website,
			logo_id = EXCLUDED.logo_id,
			updated_at = NOW()
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		profile.UserID,
		profile.CompanyName,
		profile.Description,
		profile.Industry,
		profile.Website,
		profile.LogoID,
	).Scan(&profile.UpdatedAt); err != nil {
		return fmt.Errorf("profile repository: upsert brand profile %w", err)
	}

	return nil
}

// GetBrandProfile возвращает профиль бренда.
func (r *ProfileRepository) GetBrandProfile(ctx context.Context, userID uuid.UUID) (*models.BrandProfile, error) {
	var profile models.BrandProfile
	if err := r.db.GetContext(ctx, &profile, `SELECT * FROM brand_profiles WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile repository: get brand profile %w", err)
	}

	return &profile, nil
}

// UpsertInfluencerProfile создаёт или обновляет профиль инфлюенсера.
func (r *ProfileRepository) UpsertInfluencerProfile(ctx context.Context, profile *models.InfluencerProfile) error {
	query := `
		INSERT INTO influencer_profiles (user_id, display_name, bio, platform, niche, followers_count,
			engagement_rate, price_per_post, location, photo_id, is_available, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			platform = EXCLUDED.platform,
			niche = EXCLUDED.niche,
			followers_count = EXCLUDED.followers_count,
			engagement_rate = EXCLUDED.engagement_rate,
			price_per_post = EXCLUDED.price_per_post,
			location = EXCLUDED.location,
			photo_id = EXCLUDED.photo_id,
			is_available = EXCLUDED.is_available,
			updated_at = NOW()
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		profile.UserID,
		profile.DisplayName,
		profile.Bio,
		profile.Platform,
		profile.Niche,
		profile.FollowersCount,
		profile.EngagementRate,
		profile.PricePerPost,
		profile.Location,
		profile.PhotoID,
		profile.IsAvailable,
	).Scan(&profile.UpdatedAt); err != nil {
		return fmt.Errorf("profile repository: upsert influencer profile %w", err)
	}

	return nil
}

// GetInfluencerProfile возвращает профиль инфлюенсера.
func (r *ProfileRepository) GetInfluencerProfile(ctx context.Context, userID uuid.UUID) (*models.InfluencerProfile, error) {
	var profile models.InfluencerProfile
	if err := r.db.GetContext(ctx, &profile, `SELECT * FROM influencer_profiles WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile repository: get influencer profile %w", err)
	}

	return &profile, nil
}

// InfluencerSearchParams параметры поиска инфлюенсеров.
type InfluencerSearchParams struct {
	Query         string
	Platform      string
	Niche         string
	OnlyAvailable bool
	Limit         int
	Offset        int
}

// SearchInfluencers ищет инфлюенсеров по параметрам вместе с рейтингом.
func (r *ProfileRepository) SearchInfluencers(ctx context.Context, params InfluencerSearchParams) ([]*models.InfluencerSearchResult, error) {
	query := `
		SELECT
			u.id, u.username, u.created_at,
			p.display_name, p.bio, p.platform, p.niche, p.followers_count,
			p.engagement_rate, p.price_per_post, p.location, p.photo_id,
			COALESCE(AVG(rv.rating) FILTER (WHERE rv.is_revealed), 0) AS avg_rating,
			COUNT(rv.id) FILTER (WHERE rv.is_revealed) AS review_count
		FROM users u
		JOIN influencer_profiles p ON u.id = p.user_id
		LEFT JOIN reviews rv ON u.id = rv.reviewed_id
		WHERE u.role = 'influencer' AND u.is_active = TRUE
	`
	args := []interface{}{}
	argNum := 1

	if params.Query != "" {
		query += fmt.Sprintf(` AND (p.display_name ILIKE $%d OR p.bio ILIKE $%d OR u.username ILIKE $%d)`, argNum, argNum, argNum)
		args = append(args, "%"+params.Query+"%")
		argNum++
	}
	if params.Platform != "" {
		query += fmt.Sprintf(` AND p.platform = $%d`, argNum)
		args = append(args, params.Platform)
		argNum++
	}
	if params.Niche != "" {
		query += fmt.Sprintf(` AND p.niche = $%d`, argNum)
		args = append(args, params.Niche)
		argNum++
	}
	if params.OnlyAvailable {
		query += ` AND p.is_available = TRUE`
	}

	query += ` GROUP BY u.id, u.username, u.created_at, p.display_name, p.bio, p.platform, p.niche,
		p.followers_count, p.engagement_rate, p.price_per_post, p.location, p.photo_id`
	query += ` ORDER BY avg_rating DESC, review_count DESC`
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argNum, argNum+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("profile repository: search influencers %w", err)
	}
	defer rows.Close()

	var results []*models.InfluencerSearchResult
	for rows.Next() {
		var res models.InfluencerSearchResult
		if err := rows.Scan(
			&res.ID, &res.Username, &res.CreatedAt,
			&res.DisplayName, &res.Bio, &res.Platform, &res.Niche, &res.FollowersCount,
			&res.EngagementRate, &res.PricePerPost, &res.Location, &res.PhotoID,
			&res.AvgRating, &res.ReviewCount,
		); err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}
