package repository

import (
	"context"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProfileRepository - реализация ProfileRepository для базы данных.
type PostgresProfileRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProfileRepository создаёт новый экземпляр PostgresProfileRepository.
func NewPostgresProfileRepository(db *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{DB: db}
}

// GetUserById возвращает пользователя по ID.
func (r *PostgresProfileRepository) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	var user models.User
	query := `SELECT id, full_name, email, avatar_url, account_type FROM users WHERE id = $1`
	err := r.DB.QueryRow(ctx, query, userId).Scan(&user.ID, &user.FullName, &user.Email, &user.AvatarURL, &user.AccountType)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetCommunityProfileByUserId возвращает профиль участника сообщества.
func (r *PostgresProfileRepository) GetCommunityProfileByUserId(ctx context.Context, userId string) (*models.CommunityProfile, error) {
	var profile models.CommunityProfile
	query := `SELECT id, user_id, role, property_name, property_location FROM community_profiles WHERE user_id = $1`
	err := r.DB.QueryRow(ctx, query, userId).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Role,
		&profile.PropertyName,
		&profile.PropertyLocation,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &profile, nil
}

// GetVendorProfileByUserId возвращает профиль подрядчика.
func (r *PostgresProfileRepository) GetVendorProfileByUserId(ctx context.Context, userId string) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	query := `SELECT id, user_id, company_name, service_categories, service_areas, business_description
	          FROM vendor_profiles WHERE user_id = $1`
	err := r.DB.QueryRow(ctx, query, userId).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.CompanyName,
		&profile.ServiceCategories,
		&profile.ServiceAreas,
		&profile.BusinessDescription,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &profile, nil
}
