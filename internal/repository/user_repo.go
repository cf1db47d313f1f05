package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/manara-platform/manara-api/internal/models"
)

// UserRepository handles persistence for user accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	SetBanned(ctx context.Context, id string, banned bool) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) SetBanned(ctx context.Context, id string, banned bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_banned", banned)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
