package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей
const (
	RoleBrand      = "brand"
	RoleInfluencer = "influencer"
)

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleBrand:      {},
	RoleInfluencer: {},
}

// User описывает сущность пользователя платформы.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsAdmin      bool       `db:"is_admin" json:"is_admin"`
	IsPro        bool       `db:"is_pro" json:"is_pro"`
	ProExpiresAt *time.Time `db:"pro_expires_at" json:"pro_expires_at,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// HasActivePro проверяет, действует ли PRO-подписка на момент now.
func (u *User) HasActivePro(now time.Time) bool {
	if !u.IsPro {
		return false
	}
	if u.ProExpiresAt == nil {
		return true
	}
	return u.ProExpiresAt.After(now)
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// BrandProfile описывает профиль бренда.
type BrandProfile struct {
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	CompanyName string     `db:"company_name" json:"company_name"`
	Description *string    `db:"description" json:"description,omitempty"`
	Industry    *string    `db:"industry" json:"industry,omitempty"`
	Website     *string    `db:"website" json:"website,omitempty"`
	LogoID      *uuid.UUID `db:"logo_id" json:"logo_id,omitempty"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// InfluencerProfile описывает публичный профиль инфлюенсера.
type InfluencerProfile struct {
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	DisplayName    string     `db:"display_name" json:"display_name"`
	Bio            *string    `db:"bio" json:"bio,omitempty"`
	Platform       *string    `db:"platform" json:"platform,omitempty"`
	Niche          *string    `db:"niche" json:"niche,omitempty"`
	FollowersCount *int       `db:"followers_count" json:"followers_count,omitempty"`
	EngagementRate *float64   `db:"engagement_rate" json:"engagement_rate,omitempty"`
	PricePerPost   *float64   `db:"price_per_post" json:"price_per_post,omitempty"`
	Location       *string    `db:"location" json:"location,omitempty"`
	PhotoID        *uuid.UUID `db:"photo_id" json:"photo_id,omitempty"`
	IsAvailable    bool       `db:"is_available" json:"is_available"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// InfluencerSearchResult результат поиска инфлюенсера вместе с рейтингом.
type InfluencerSearchResult struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	DisplayName    *string    `json:"display_name,omitempty"`
	Bio            *string    `json:"bio,omitempty"`
	Platform       *string    `json:"platform,omitempty"`
	Niche          *string    `json:"niche,omitempty"`
	FollowersCount *int       `json:"followers_count,omitempty"`
	EngagementRate *float64   `json:"engagement_rate,omitempty"`
	PricePerPost   *float64   `json:"price_per_post,omitempty"`
	Location       *string    `json:"location,omitempty"`
	PhotoID        *uuid.UUID `json:"photo_id,omitempty"`
	AvgRating      float64    `json:"avg_rating"`
	ReviewCount    int        `json:"review_count"`
	CreatedAt      time.Time  `json:"created_at"`
}
