package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/manara-platform/manara-api/internal/models"
)

// SubjectFilter captures the supported catalog filters. Zero values are
// ignored; an unset filter never widens to match-all by accident because the
// category key is validated before it reaches this layer.
type SubjectFilter struct {
	Category string
	Stage    string
	Grade    int
	Section  string
}

// SubjectRepository exposes read access to the subject catalog.
type SubjectRepository interface {
	FindByID(ctx context.Context, id uint) (models.Subject, error)
	List(ctx context.Context, filter SubjectFilter) ([]models.Subject, error)
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository constructs a repository backed by GORM.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) FindByID(ctx context.Context, id uint) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

func (r *subjectRepository) List(ctx context.Context, filter SubjectFilter) ([]models.Subject, error) {
	query := r.db.WithContext(ctx).Model(&models.Subject{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}
	if filter.Grade > 0 {
		query = query.Where("grade = ?", filter.Grade)
	}
	if filter.Section != "" {
		query = query.Where("section = ?", filter.Section)
	}

	var subjects []models.Subject
	if err := query.Order("category ASC, grade ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}

	return subjects, nil
}
