package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/manara-platform/manara-api/internal/models"
)

// EligibleTeacherRow is one (teacher, grade) pairing produced by joining
// assignments against approved profiles. Grade aggregation happens in the
// service layer.
type EligibleTeacherRow struct {
	TeacherID   string `json:"teacher_id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
	Bio         string `json:"bio"`
	Grade       int    `json:"grade"`
}

// TeacherRepository handles teacher assignments, approval lookups and the
// student's binding teacher choice.
type TeacherRepository interface {
	ListEligible(ctx context.Context, category, stage string) ([]EligibleTeacherRow, error)
	HasAssignment(ctx context.Context, teacherID, category, stage string, grade int) (bool, error)
	IsApproved(ctx context.Context, teacherID string) (bool, error)
	SetApproved(ctx context.Context, teacherID string, approved bool) error
	UpsertChoice(ctx context.Context, choice *models.TeacherChoice) error
	FindChoice(ctx context.Context, studentID, category, stage string, grade int) (models.TeacherChoice, error)
}

type teacherRepository struct {
	db *gorm.DB
}

// NewTeacherRepository constructs a repository backed by GORM.
func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) ListEligible(ctx context.Context, category, stage string) ([]EligibleTeacherRow, error) {
	var rows []EligibleTeacherRow
	if err := r.db.WithContext(ctx).
		Model(&models.TeacherAssignment{}).
		Select("teacher_assignments.teacher_id, users.display_name, teacher_profiles.photo_url, teacher_profiles.bio, teacher_assignments.grade").
		Joins("JOIN teacher_profiles ON teacher_profiles.user_id = teacher_assignments.teacher_id").
		Joins("JOIN users ON users.id = teacher_assignments.teacher_id").
		Where("teacher_assignments.category = ? AND teacher_assignments.stage = ?", category, stage).
		Where("teacher_profiles.is_approved = ?", true).
		Order("users.display_name ASC, teacher_assignments.grade ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *teacherRepository) HasAssignment(ctx context.Context, teacherID, category, stage string, grade int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TeacherAssignment{}).
		Where("teacher_id = ? AND category = ? AND stage = ? AND grade = ?", teacherID, category, stage, grade).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *teacherRepository) IsApproved(ctx context.Context, teacherID string) (bool, error) {
	var profile models.TeacherProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", teacherID).First(&profile).Error; err != nil {
		return false, err
	}

	return profile.IsApproved, nil
}

func (r *teacherRepository) SetApproved(ctx context.Context, teacherID string, approved bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.TeacherProfile{}).
		Where("user_id = ?", teacherID).
		Update("is_approved", approved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpsertChoice inserts the binding or updates teacher_id in place. The unique
// key on (student_id, category, stage, grade) is the serialization point; a
// second binding for the same key is never created.
func (r *teacherRepository) UpsertChoice(ctx context.Context, choice *models.TeacherChoice) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_id"},
			{Name: "category"},
			{Name: "stage"},
			{Name: "grade"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"teacher_id", "updated_at"}),
	}).Create(choice).Error
}

func (r *teacherRepository) FindChoice(ctx context.Context, studentID, category, stage string, grade int) (models.TeacherChoice, error) {
	var choice models.TeacherChoice
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND category = ? AND stage = ? AND grade = ?", studentID, category, stage, grade).
		First(&choice).Error; err != nil {
		return models.TeacherChoice{}, err
	}

	return choice, nil
}
