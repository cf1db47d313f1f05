package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/manara-platform/manara-api/internal/models"
)

// ExpiringSubscription is a subscription row joined with the display fields
// the expiry job needs for message rendering.
type ExpiringSubscription struct {
	SubscriptionID uint      `json:"subscription_id"`
	StudentID      string    `json:"student_id"`
	StudentName    string    `json:"student_name"`
	SubjectID      uint      `json:"subject_id"`
	SubjectName    string    `json:"subject_name"`
	EndDate        time.Time `json:"end_date"`
}

// SubscriptionRepository handles persistence for subscription entitlements.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.Subscription, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]ExpiringSubscription, error)
	SetActive(ctx context.Context, id uint, active bool) error
	FindByID(ctx context.Context, id uint) (models.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository constructs a repository backed by GORM.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).Create(subscription).Error
}

func (r *subscriptionRepository) ListActiveByStudent(ctx context.Context, studentID string) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND is_active = ?", studentID, true).
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}

	return subscriptions, nil
}

func (r *subscriptionRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]ExpiringSubscription, error) {
	var rows []ExpiringSubscription
	if err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Select("subscriptions.id AS subscription_id, subscriptions.student_id, users.display_name AS student_name, subscriptions.subject_id, subjects.name AS subject_name, subscriptions.end_date").
		Joins("JOIN subjects ON subjects.id = subscriptions.subject_id").
		Joins("JOIN users ON users.id = subscriptions.student_id").
		Where("subscriptions.is_active = ? AND subscriptions.end_date >= ? AND subscriptions.end_date < ?", true, from, to).
		Order("subscriptions.end_date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *subscriptionRepository) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *subscriptionRepository) FindByID(ctx context.Context, id uint) (models.Subscription, error) {
	var subscription models.Subscription
	if err := r.db.WithContext(ctx).First(&subscription, id).Error; err != nil {
		return models.Subscription{}, err
	}
	return subscription, nil
}
