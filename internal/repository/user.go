package repository

import (
	"context"
	"errors"
	"strings"

	"mentorcircles/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxSearchResults caps SearchUsers.
const maxSearchResults = 10

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	ListMentors(ctx context.Context) ([]models.User, error)
	Search(ctx context.Context, query string) ([]models.UserSummary, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert inserts the user or refreshes email and name of an existing row.
// Role and reputation are never overwritten by a sign-in.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
		}).
		Create(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) ListMentors(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("role = ?", models.UserRoleMentor).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Search matches name or email case-insensitively.
func (r *userRepository) Search(ctx context.Context, query string) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	query = strings.TrimSpace(query)
	if query == "" {
		return users, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id, name, email").
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(maxSearchResults).
		Scan(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
