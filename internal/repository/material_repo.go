package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/manara-platform/manara-api/internal/models"
)

// MaterialRepository handles persistence for uploaded reference material.
type MaterialRepository interface {
	Create(ctx context.Context, record *models.MaterialRecord) error
	Update(ctx context.Context, record *models.MaterialRecord) error
	FindByID(ctx context.Context, id uint) (models.MaterialRecord, error)
	ListBySubject(ctx context.Context, subjectID uint) ([]models.MaterialRecord, error)
	FileNamesBySubject(ctx context.Context, subjectID uint) ([]string, error)
}

type materialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository constructs a repository backed by GORM.
func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, record *models.MaterialRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *materialRepository) Update(ctx context.Context, record *models.MaterialRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *materialRepository) FindByID(ctx context.Context, id uint) (models.MaterialRecord, error) {
	var record models.MaterialRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return models.MaterialRecord{}, err
	}
	return record, nil
}

func (r *materialRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.MaterialRecord, error) {
	var records []models.MaterialRecord
	if err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *materialRepository) FileNamesBySubject(ctx context.Context, subjectID uint) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Model(&models.MaterialRecord{}).
		Where("subject_id = ?", subjectID).
		Order("file_name ASC").
		Pluck("file_name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
