package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/manara-platform/manara-api/internal/models"
)

// NotificationRepository handles persistence for notification entities.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) (int64, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint, userID string) (models.Notification, error)
	ListNotifiedUserIDs(ctx context.Context, title string, since time.Time) ([]string, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs a repository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// CreateBatch inserts all rows in one statement so a run either lands whole
// or not at all at the row-set granularity the store provides.
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) (int64, error) {
	if len(notifications) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Create(&notifications)
	return result.RowsAffected, result.Error
}

// ListForUser returns the user's own notifications plus broadcasts.
func (r *notificationRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var notifications []models.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ? OR user_id IS NULL", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint, userID string) (models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).
		Where("id = ? AND (user_id = ? OR user_id IS NULL)", id, userID).
		First(&notification).Error; err != nil {
		return models.Notification{}, err
	}

	if notification.Read {
		return notification, nil
	}

	notification.Read = true
	if err := r.db.WithContext(ctx).Save(&notification).Error; err != nil {
		return models.Notification{}, err
	}

	return notification, nil
}

// ListNotifiedUserIDs returns the distinct users that already hold a
// notification with the given title created at or after the cutoff. The
// expiry job uses it for same-day de-duplication.
func (r *notificationRepository) ListNotifiedUserIDs(ctx context.Context, title string, since time.Time) ([]string, error) {
	var userIDs []string
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Distinct("user_id").
		Where("title = ? AND created_at >= ? AND user_id IS NOT NULL", title, since).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}

	return userIDs, nil
}
